// Package config loads the run configuration. The pipeline treats the
// resulting Config as an injected read-only object; nothing reads viper
// after Load returns.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/avoronov/smb-tagger/internal/common"
)

// Config is the full run configuration.
type Config struct {
	LLM     LLM
	Prompts Prompts
	Sources Sources
	Output  Output
	Run     Run
}

// LLM configures the classification client.
type LLM struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Prompts carries the system instruction and the per-schema user templates.
// Placeholders use {name} syntax, matching the source templates.
type Prompts struct {
	System         string
	UserTemplate   string
	Payments       string
	Cash           string
	VED            string
	DiscoverSystem string
}

// Sources names the four input tables.
type Sources struct {
	Products  string
	Outgoing  string
	Incoming  string
	Contracts string
}

// Output configures the result table.
type Output struct {
	Path   string
	Format string // csv, xlsx or both
}

// Run holds orchestrator policy.
type Run struct {
	Concurrency   int
	RetryAttempts int
	RetryDelay    time.Duration
	Progress      bool
}

// SetDefaults registers every configuration default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 300)
	v.SetDefault("llm.timeout", "60s")

	v.SetDefault("prompts.system", defaultSystemPrompt)
	v.SetDefault("prompts.user_template", defaultUserTemplate)
	v.SetDefault("prompts.payments", defaultPaymentsContext)
	v.SetDefault("prompts.cash", defaultCashContext)
	v.SetDefault("prompts.ved", defaultVEDContext)
	v.SetDefault("prompts.discover_system", defaultDiscoverSystem)

	v.SetDefault("output.path", "client_tags_results")
	v.SetDefault("output.format", "csv")

	v.SetDefault("run.concurrency", 1)
	v.SetDefault("run.retry_attempts", 1)
	v.SetDefault("run.retry_delay", "1s")
	v.SetDefault("run.progress", true)
}

// Load materializes a Config from v. The API key comes from the
// OPENAI_API_KEY environment variable unless set explicitly.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		LLM: LLM{
			Provider:    v.GetString("llm.provider"),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Timeout:     v.GetDuration("llm.timeout"),
		},
		Prompts: Prompts{
			System:         v.GetString("prompts.system"),
			UserTemplate:   v.GetString("prompts.user_template"),
			Payments:       v.GetString("prompts.payments"),
			Cash:           v.GetString("prompts.cash"),
			VED:            v.GetString("prompts.ved"),
			DiscoverSystem: v.GetString("prompts.discover_system"),
		},
		Sources: Sources{
			Products:  ExpandPath(v.GetString("sources.products")),
			Outgoing:  ExpandPath(v.GetString("sources.outgoing")),
			Incoming:  ExpandPath(v.GetString("sources.incoming")),
			Contracts: ExpandPath(v.GetString("sources.contracts")),
		},
		Output: Output{
			Path:   ExpandPath(v.GetString("output.path")),
			Format: strings.ToLower(v.GetString("output.format")),
		},
		Run: Run{
			Concurrency:   v.GetInt("run.concurrency"),
			RetryAttempts: v.GetInt("run.retry_attempts"),
			RetryDelay:    v.GetDuration("run.retry_delay"),
			Progress:      v.GetBool("run.progress"),
		},
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	switch cfg.Output.Format {
	case "csv", "xlsx", "both":
	default:
		return nil, fmt.Errorf("%w: output.format must be csv, xlsx or both, got %q",
			common.ErrInvalidConfig, cfg.Output.Format)
	}

	if cfg.Run.Concurrency < 1 {
		cfg.Run.Concurrency = 1
	}

	return cfg, nil
}

// ValidateSources checks that all four input tables are configured.
func (c *Config) ValidateSources() error {
	missing := []string{}
	for name, path := range map[string]string{
		"sources.products":  c.Sources.Products,
		"sources.outgoing":  c.Sources.Outgoing,
		"sources.incoming":  c.Sources.Incoming,
		"sources.contracts": c.Sources.Contracts,
	} {
		if path == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Render substitutes {name} placeholders in a prompt template.
func Render(tmpl string, vars map[string]string) string {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}
