package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avoronov/smb-tagger/internal/assemble"
	"github.com/avoronov/smb-tagger/internal/common"
	"github.com/avoronov/smb-tagger/internal/config"
	"github.com/avoronov/smb-tagger/internal/discover"
	"github.com/avoronov/smb-tagger/internal/llm"
)

func discoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Brainstorm candidate new tags from transaction text",
		Long: `One-shot report: samples recent transaction descriptions per client
and asks the LLM for candidate new single tags. Suggestions are appended
to the report file; nothing feeds back into the tagging run.`,
		RunE: runDiscover,
	}

	cmd.Flags().String("report", "new_tag_candidates.log", "append-only report file")
	cmd.Flags().Int("sample", 15, "transaction descriptions sampled per client")
	cmd.Flags().Int("clients", 0, "max clients to analyze (0 = all)")

	_ = viper.BindPFlag("discover.report", cmd.Flags().Lookup("report"))
	_ = viper.BindPFlag("discover.sample", cmd.Flags().Lookup("sample"))
	_ = viper.BindPFlag("discover.clients", cmd.Flags().Lookup("clients"))

	return cmd
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.ValidateSources(); err != nil {
		return common.NewUserError("all four source tables must be configured", err)
	}

	tables, err := assemble.LoadTables(cfg.Sources)
	if err != nil {
		return common.NewUserError("failed to load source tables", err)
	}

	data, err := assemble.New(tables)
	if err != nil {
		return common.NewUserError("failed to assemble client data", err)
	}

	// Brainstorming benefits from more sampling freedom than
	// classification gets.
	analyzer, err := llm.NewAnalyzer(llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: 0.5,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return common.NewUserError("failed to create LLM client", err)
	}

	reporter := discover.NewReporter(analyzer, data, discover.Options{
		SystemPrompt: cfg.Prompts.DiscoverSystem,
		ReportPath:   config.ExpandPath(viper.GetString("discover.report")),
		SampleSize:   viper.GetInt("discover.sample"),
		MaxClients:   viper.GetInt("discover.clients"),
	})

	if err := reporter.Run(ctx); err != nil {
		return common.NewUserError("discovery run failed", err)
	}

	return nil
}
