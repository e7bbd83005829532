package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/docsmith/internal/chain"
	"github.com/alexisbeaulieu97/docsmith/internal/config"
	"github.com/alexisbeaulieu97/docsmith/internal/logger"
)

type stepsOptions struct {
	ConfigPath string
}

func newStepsCmd(_ *rootFlags) *cobra.Command {
	opts := stepsOptions{}

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List the steps of a chain in declaration order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a chain definition file (defaults to the built-in documentation chain)")

	return cmd
}

func runSteps(opts stepsOptions, out io.Writer) error {
	log, err := logger.New(logger.Options{Level: "error", Writer: io.Discard})
	if err != nil {
		return err
	}

	var c *chain.Chain
	if opts.ConfigPath != "" {
		cfg, err := config.ParseConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
		c = cfg.ToChain(log)
	} else {
		c = chain.NewDocumentationChain(chain.Settings{}, log)
	}

	for _, name := range c.StepNames() {
		step, _ := c.Step(name)
		if len(step.DependsOn) == 0 {
			fmt.Fprintln(out, name)
			continue
		}
		fmt.Fprintf(out, "%s (depends on %s)\n", name, strings.Join(step.DependsOn, ", "))
	}
	return nil
}
