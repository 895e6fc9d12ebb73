// Package engine orchestrates tagging: for each client it runs every
// rule-based and LLM-backed tagger and unions their outputs into one
// deduplicated tag set.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/avoronov/smb-tagger/internal/assemble"
	"github.com/avoronov/smb-tagger/internal/model"
	"github.com/avoronov/smb-tagger/internal/rules"
	"github.com/avoronov/smb-tagger/internal/taggers"
)

// Config holds orchestrator policy.
type Config struct {
	// Concurrency bounds the number of clients tagged in parallel.
	// Clients share no mutable state, so the only practical limit is the
	// LLM service's rate limit.
	Concurrency int
	// Progress renders a terminal progress bar over the client loop.
	Progress bool
}

// DefaultConfig returns the sequential baseline configuration.
func DefaultConfig() Config {
	return Config{Concurrency: 1, Progress: false}
}

// Engine is the tagging orchestrator.
type Engine struct {
	data    *assemble.Assembler
	taggers *taggers.Set
	now     func() time.Time
	cfg     Config
}

// New creates an engine with the default configuration.
func New(data *assemble.Assembler, set *taggers.Set) *Engine {
	return NewWithConfig(data, set, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(data *assemble.Assembler, set *taggers.Set, cfg Config) *Engine {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Engine{
		data:    data,
		taggers: set,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run produces one result per profile-table client, in source row order.
// Identical inputs and identical LLM responses always yield identical tag
// sets; the only nondeterminism is the LLM call outcomes themselves.
func (e *Engine) Run(ctx context.Context) ([]model.ClientTagResult, error) {
	profiles := e.data.Profiles()
	results := make([]model.ClientTagResult, len(profiles))

	slog.Info("Starting tagging run", "clients", len(profiles), "concurrency", e.cfg.Concurrency)

	var bar *progressbar.ProgressBar
	if e.cfg.Progress {
		bar = progressbar.Default(int64(len(profiles)), "tagging clients")
	}

	if e.cfg.Concurrency == 1 {
		for i, profile := range profiles {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			results[i] = e.tagClient(ctx, profile)
			if bar != nil {
				_ = bar.Add(1)
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, profile := range profiles {
		i, profile := i, profile
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns its result slot; no lock needed.
			results[i] = e.tagClient(gctx, profile)
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// tagClient resolves one client fully, LLM calls included. It always
// terminates with a defined tag set: field-parse and classification
// failures degrade to documented fallbacks inside the taggers.
func (e *Engine) tagClient(ctx context.Context, profile model.ClientProfile) model.ClientTagResult {
	today := e.now()
	descriptions := e.data.Descriptions(profile.ID)
	contracts := e.data.Contracts(profile.ID)

	tags := model.NewTagSet()

	tags.Add(rules.CompanySize(profile.StaffGroup)...)
	tags.Add(rules.CompanyAge(profile.BankOpen, today)...)
	tags.Add(rules.Geo(profile.City)...)
	tags.Add(rules.Loyalty(profile.BankOpen, today)...)
	tags.Add(rules.Acquiring(profile.IsAcquiring)...)
	tags.Add(rules.SalaryProject(profile.IsSalary)...)
	tags.Add(rules.DebtLoad(profile.IsCredit, contracts)...)

	tags.Add(e.taggers.PaymentTypes(ctx, descriptions)...)
	tags.Add(e.taggers.CashActivity(ctx, descriptions, profile.CashCommission)...)
	tags.Add(e.taggers.ForeignTrade(ctx, profile.IsVED, descriptions)...)

	slog.Info("Client tagged",
		"client_id", profile.ID,
		"client_name", profile.Name,
		"tags", tags.Sorted())

	return model.ClientTagResult{
		ClientID: profile.ID,
		Name:     profile.Name,
		Tags:     tags,
	}
}
