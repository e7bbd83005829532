package config

import (
	"time"

	"github.com/alexisbeaulieu97/docsmith/internal/chain"
	"github.com/alexisbeaulieu97/docsmith/internal/logger"
)

// Config represents a full chain definition document.
type Config struct {
	Version     string   `yaml:"version" validate:"required,semver"`
	Name        string   `yaml:"name" validate:"required,min=1,max=100"`
	Description string   `yaml:"description,omitempty"`
	Settings    Settings `yaml:"settings,omitempty"`
	Steps       []Step   `yaml:"steps" validate:"required,min=1,dive"`
}

// Settings holds chain-level execution parameters.
type Settings struct {
	FailFast    bool `yaml:"fail_fast,omitempty"`
	MaxParallel int  `yaml:"max_parallel,omitempty" validate:"omitempty,min=1,max=32"`
}

// Step describes one prompting step in the chain definition.
type Step struct {
	Name      string            `yaml:"name" validate:"required,step_name"`
	Template  string            `yaml:"template" validate:"required,min=1"`
	DependsOn []string          `yaml:"depends_on,omitempty"`
	Policy    *Policy           `yaml:"policy,omitempty"`
	Metadata  map[string]string `yaml:"metadata,omitempty"`
}

// Policy carries the recognized per-step options. Absent fields fall back
// to the engine defaults.
type Policy struct {
	TimeoutSeconds    *int  `yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1,max=86400"`
	RetryCount        *int  `yaml:"retry_count,omitempty" validate:"omitempty,min=0,max=10"`
	RetryDelaySeconds *int  `yaml:"retry_delay_seconds,omitempty" validate:"omitempty,min=0,max=3600"`
	Required          *bool `yaml:"required,omitempty"`
	SkipOnFailure     *bool `yaml:"skip_on_failure,omitempty"`
}

// ToChain converts the parsed definition into an executable chain.
func (c *Config) ToChain(log *logger.Logger) *chain.Chain {
	settings := chain.Settings{
		FailFast:    c.Settings.FailFast,
		MaxParallel: c.Settings.MaxParallel,
	}

	out := chain.New(c.Name, settings, log)
	for _, step := range c.Steps {
		s := chain.NewStep(step.Name, step.Template, step.DependsOn...)
		s.Metadata = step.Metadata
		s.Policy = step.Policy.toEngine()
		out.AddStep(s)
	}
	return out
}

// toEngine resolves the declared policy against the engine defaults.
func (p *Policy) toEngine() chain.Policy {
	policy := chain.DefaultPolicy()
	if p == nil {
		return policy
	}
	if p.TimeoutSeconds != nil {
		policy.Timeout = time.Duration(*p.TimeoutSeconds) * time.Second
	}
	if p.RetryCount != nil {
		policy.RetryCount = *p.RetryCount
	}
	if p.RetryDelaySeconds != nil {
		policy.RetryDelay = time.Duration(*p.RetryDelaySeconds) * time.Second
	}
	if p.Required != nil {
		policy.Required = *p.Required
	}
	if p.SkipOnFailure != nil {
		policy.SkipOnFailure = *p.SkipOnFailure
	}
	return policy
}
