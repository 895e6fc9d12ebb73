package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avoronov/smb-tagger/internal/assemble"
	"github.com/avoronov/smb-tagger/internal/common"
	"github.com/avoronov/smb-tagger/internal/config"
	"github.com/avoronov/smb-tagger/internal/engine"
	"github.com/avoronov/smb-tagger/internal/export"
	"github.com/avoronov/smb-tagger/internal/llm"
	"github.com/avoronov/smb-tagger/internal/taggers"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tag every client and write the result table",
		Long: `Reads the four source tables (products, outgoing transactions,
incoming transactions, contracts), tags each client, and writes one
result row per client.

Examples:
  tagger run --products products.xlsx --outgoing out.xlsx --incoming in.xlsx --contracts contracts.xlsx
  tagger run --format both --concurrency 4`,
		RunE: runRun,
	}

	cmd.Flags().String("products", "", "products/profile table (xlsx)")
	cmd.Flags().String("outgoing", "", "outgoing transactions table (xlsx)")
	cmd.Flags().String("incoming", "", "incoming transactions table (xlsx)")
	cmd.Flags().String("contracts", "", "contracts table (xlsx)")
	cmd.Flags().StringP("output", "o", "", "output path without extension")
	cmd.Flags().String("format", "", "output format (csv, xlsx, both)")
	cmd.Flags().IntP("concurrency", "c", 0, "clients tagged in parallel (default 1)")

	_ = viper.BindPFlag("sources.products", cmd.Flags().Lookup("products"))
	_ = viper.BindPFlag("sources.outgoing", cmd.Flags().Lookup("outgoing"))
	_ = viper.BindPFlag("sources.incoming", cmd.Flags().Lookup("incoming"))
	_ = viper.BindPFlag("sources.contracts", cmd.Flags().Lookup("contracts"))
	_ = viper.BindPFlag("output.path", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("run.concurrency", cmd.Flags().Lookup("concurrency"))

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	start := time.Now()

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

	client, err := llm.NewClient(llm.Config{
		Provider:     cfg.LLM.Provider,
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		BaseURL:      cfg.LLM.BaseURL,
		SystemPrompt: cfg.Prompts.System,
		UserTemplate: cfg.Prompts.UserTemplate,
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
		Timeout:      cfg.LLM.Timeout,
	})
	if err != nil {
		return common.NewUserError("failed to create LLM client", err)
	}

	// Retry is our policy, not the client's.
	client = engine.WithRetryPolicy(client, common.RetryOptions{
		MaxAttempts:  cfg.Run.RetryAttempts,
		InitialDelay: cfg.Run.RetryDelay,
	})

	eng := engine.NewWithConfig(data, taggers.NewSet(client, cfg.Prompts), engine.Config{
		Concurrency: cfg.Run.Concurrency,
		Progress:    cfg.Run.Progress,
	})

	results, err := eng.Run(ctx)
	if err != nil {
		return common.NewUserError("tagging run failed", err)
	}

	if err := export.Write(cfg.Output.Path, cfg.Output.Format, results); err != nil {
		return common.NewUserError("failed to write results", err)
	}

	slog.Info("Run complete",
		"clients", len(results),
		"output", cfg.Output.Path,
		"elapsed", time.Since(start).Round(time.Millisecond))

	fmt.Println(TitleStyle.Render("Tagging complete"))
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("  %d clients tagged in %s", len(results), time.Since(start).Round(time.Second))))
	fmt.Println(SubtleStyle.Render(fmt.Sprintf("  results: %s (%s)", cfg.Output.Path, cfg.Output.Format)))

	return nil
}
