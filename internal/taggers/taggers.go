// Package taggers implements the LLM-backed taggers. Each tagger builds a
// bounded context from transaction text, calls the classification client,
// and degrades to a deterministic fallback tag when classification fails.
// No tagger ever surfaces an error to the orchestrator.
package taggers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avoronov/smb-tagger/internal/config"
	"github.com/avoronov/smb-tagger/internal/llm"
	"github.com/avoronov/smb-tagger/internal/model"
	"github.com/avoronov/smb-tagger/internal/parse"
)

// Context caps: payment-type classification reads more history than the
// cash and foreign-trade signals need.
const (
	paymentSampleLimit = 20
	cashSampleLimit    = 10
	vedSampleLimit     = 10
)

// Set bundles the three LLM-backed taggers around one classification
// client and the run's prompt templates.
type Set struct {
	classifier llm.Client
	prompts    config.Prompts
}

// NewSet creates the tagger set. The classifier is injected so tests can
// substitute a deterministic double.
func NewSet(classifier llm.Client, prompts config.Prompts) *Set {
	return &Set{classifier: classifier, prompts: prompts}
}

// PaymentTypes emits one tag per payment purpose found in the transaction
// descriptions. Classification failure is silent: the caller sees an
// empty set, not an error.
func (s *Set) PaymentTypes(ctx context.Context, descriptions []string) []string {
	if len(descriptions) == 0 {
		return nil
	}

	input := config.Render(s.prompts.Payments, map[string]string{
		"sample_descriptions": sample(descriptions, paymentSampleLimit),
	})

	resp, err := s.classifier.Classify(ctx, model.SchemaPaymentTypes, input)
	if err != nil {
		slog.Warn("payment-type classification failed, emitting no tags", "error", err)
		return nil
	}

	pt, ok := resp.(model.PaymentTypes)
	if !ok {
		return nil
	}

	var tags []string
	if pt.ToSuppliers {
		tags = append(tags, model.TagPaymentsToSuppliers)
	}
	if pt.SalaryRelated {
		tags = append(tags, model.TagPaymentsSalaryRelated)
	}
	if pt.Tax {
		tags = append(tags, model.TagPaymentsTax)
	}
	return tags
}

// CashActivity emits exactly one of the high/low cash tags. With neither
// transaction text nor a positive cash-handling commission it
// short-circuits to low without calling the LLM; on failure it falls back
// to high when the commission signal is positive, low otherwise.
func (s *Set) CashActivity(ctx context.Context, descriptions []string, cashCommission float64) []string {
	hasCashSignal := cashCommission > 0

	if len(descriptions) == 0 && !hasCashSignal {
		return []string{model.TagCashOperationsLow}
	}

	sampleText := sample(descriptions, cashSampleLimit)
	if sampleText == "" {
		sampleText = "Нет описаний транзакций для анализа."
	}

	additional := ""
	if hasCashSignal {
		additional = fmt.Sprintf("Дополнительная информация: есть данные о комиссиях по кассовым операциям на общую сумму %.2f.", cashCommission)
	}

	input := config.Render(s.prompts.Cash, map[string]string{
		"sample_descriptions":  sampleText,
		"additional_cash_info": additional,
	})

	fallback := model.TagCashOperationsLow
	if hasCashSignal {
		fallback = model.TagCashOperationsHigh
	}

	resp, err := s.classifier.Classify(ctx, model.SchemaCashActivity, input)
	if err != nil {
		slog.Warn("cash-activity classification failed, using fallback",
			"fallback", fallback, "error", err)
		return []string{fallback}
	}

	ca, ok := resp.(model.CashActivity)
	if !ok {
		return []string{fallback}
	}

	switch ca.Level {
	case model.CashLevelHigh:
		return []string{model.TagCashOperationsHigh}
	case model.CashLevelLow:
		return []string{model.TagCashOperationsLow}
	default:
		// Unreachable for a schema-validated response; keep the tag set
		// fully defined anyway.
		return []string{fallback}
	}
}

// ForeignTrade emits exactly one of the ved_active/ved_absent tags. An
// explicitly raised profile flag short-circuits to active without calling
// the LLM; failures and missing evidence resolve to absent.
func (s *Set) ForeignTrade(ctx context.Context, vedFlag any, descriptions []string) []string {
	if parse.BoolFlag(vedFlag) {
		return []string{model.TagVEDActive}
	}

	if len(descriptions) == 0 {
		return []string{model.TagVEDAbsent}
	}

	input := config.Render(s.prompts.VED, map[string]string{
		"sample_descriptions": sample(descriptions, vedSampleLimit),
	})

	resp, err := s.classifier.Classify(ctx, model.SchemaForeignTrade, input)
	if err != nil {
		slog.Warn("foreign-trade classification failed, tagging absent", "error", err)
		return []string{model.TagVEDAbsent}
	}

	if signs, ok := resp.(model.ForeignTradeSigns); ok && signs.HasSigns {
		return []string{model.TagVEDActive}
	}
	return []string{model.TagVEDAbsent}
}

// sample joins up to limit descriptions, one per line. Callers pass
// descriptions most-recent-first when the source provides ordering.
func sample(descriptions []string, limit int) string {
	if len(descriptions) > limit {
		descriptions = descriptions[:limit]
	}
	return strings.Join(descriptions, "\n")
}
