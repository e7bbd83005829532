package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/docsmith/internal/cache"
	"github.com/alexisbeaulieu97/docsmith/internal/chain"
	"github.com/alexisbeaulieu97/docsmith/internal/config"
	"github.com/alexisbeaulieu97/docsmith/internal/docgen"
	"github.com/alexisbeaulieu97/docsmith/internal/llm"
	"github.com/alexisbeaulieu97/docsmith/internal/logger"
	"github.com/alexisbeaulieu97/docsmith/internal/source"
)

const cacheTTL = 24 * time.Hour

type generateOptions struct {
	ConfigPath string
	Dir        string
	OutputPath string
	Model      string
	BaseURL    string
	Inputs     []string
	NoCache    bool
	FailFast   bool
	Verbose    bool
}

var generateCmdRunner = runGenerate

func newGenerateCmd(root *rootFlags) *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the documentation chain over a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			return generateCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a chain definition file (defaults to the built-in documentation chain)")
	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", ".", "Project directory to document")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "DOCUMENTATION.md", "Output document path")
	cmd.Flags().StringVar(&opts.Model, "model", "", "Backend model name")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "Backend API base URL (for OpenAI-compatible servers)")
	cmd.Flags().StringArrayVar(&opts.Inputs, "input", nil, "Additional chain input as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", true, "Abort on the first required step failure (built-in chain only)")

	return cmd
}

func runGenerate(opts generateOptions) error {
	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: term.IsTerminal(int(os.Stderr.Fd())),
	})
	if err != nil {
		return err
	}

	docChain, err := buildChain(opts, log)
	if err != nil {
		return err
	}

	project, err := source.Scan(opts.Dir, source.Options{}, log)
	if err != nil {
		return err
	}

	inputs := project.Inputs()
	for _, pair := range opts.Inputs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("invalid --input %q, expected key=value", pair)
		}
		inputs[key] = value
	}

	invoker, cleanup, err := buildInvoker(opts, log)
	if err != nil {
		return err
	}
	defer cleanup()

	execCtx, err := docChain.Execute(context.Background(), invoker, inputs)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	execCtx.SetMetadata("run_id", runID)

	doc := docgen.Assemble(project.Name, execCtx)
	if err := os.WriteFile(opts.OutputPath, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	if err := writeRunRecord(opts.Dir, runID, execCtx); err != nil {
		log.Error(err, "failed to persist run record")
	}

	fmt.Fprint(os.Stdout, docgen.Summary(execCtx))

	if failed := execCtx.FailedSteps(); len(failed) > 0 {
		return fmt.Errorf("chain completed with failed steps: %s", strings.Join(failed, ", "))
	}
	return nil
}

// buildChain resolves the chain to run: a parsed definition file when
// given, the built-in documentation chain otherwise.
func buildChain(opts generateOptions, log *logger.Logger) (*chain.Chain, error) {
	if opts.ConfigPath != "" {
		cfg, err := config.ParseConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		return cfg.ToChain(log), nil
	}
	return chain.NewDocumentationChain(chain.Settings{FailFast: opts.FailFast}, log), nil
}

// buildInvoker constructs the backend client, wrapped in the response
// cache unless disabled.
func buildInvoker(opts generateOptions, log *logger.Logger) (chain.Invoker, func(), error) {
	client, err := llm.NewClient(llm.Options{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: opts.BaseURL,
		Model:   opts.Model,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	if opts.NoCache {
		return client, func() {}, nil
	}

	store, err := cache.Open(filepath.Join(opts.Dir, ".docsmith", "cache"), cacheTTL, log)
	if err != nil {
		log.Error(err, "cache unavailable, continuing without it")
		return client, func() {}, nil
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Error(err, "failed to close cache")
		}
	}
	return cache.Wrap(client, store, log), cleanup, nil
}

func writeRunRecord(dir, runID string, execCtx *chain.Context) error {
	runsDir := filepath.Join(dir, ".docsmith", "runs")
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(execCtx.ToRecord(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(runsDir, runID+".json"), data, 0o644)
}
