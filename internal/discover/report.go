// Package discover produces a one-shot report of candidate new tags
// brainstormed by the LLM from sampled transaction text. It is a reporting
// tool only; nothing here feeds back into the tagging contract.
package discover

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/avoronov/smb-tagger/internal/assemble"
	"github.com/avoronov/smb-tagger/internal/llm"
)

// existingTags describes the aspects the pipeline already extracts, so the
// model proposes genuinely new ones.
const existingTags = `- PaymentTypes: платежи поставщикам, выплаты похожие на зарплату, налоговые платежи
- CashOperations: уровень активности операций с наличными (high/low)
- VedSigns: признаки внешнеэкономической деятельности`

const promptTemplate = `Я анализирую банковские транзакции компании (МСБ) '{client_name}' для ее семантической сегментации.
С помощью LLM я уже извлекаю информацию о следующих аспектах:
{existing_tags}

Вот примеры последних транзакций (поле ENTRY_DESCR) для этой компании:
---
{descriptions}
---

Предложи список новых, дополнительных ОДИНОЧНЫХ тегов, которые можно было бы извлекать из подобных текстовых описаний: специфические виды операционных расходов, особенности финансовых операций, взаимодействия с типами контрагентов, признаки событий или активностей.

Для каждого тега укажи:
Тег: [имя_тега_маленькими_буквами_через_подчеркивание]
Значение: [пояснение]
Основание (ключевые слова/паттерны из транзакций): [примеры]`

// Reporter brainstorms candidate tags per client and appends the findings
// to an append-only report file.
type Reporter struct {
	analyzer     llm.Analyzer
	data         *assemble.Assembler
	systemPrompt string
	reportPath   string
	sampleSize   int
	maxClients   int
}

// Options configures a discovery run.
type Options struct {
	SystemPrompt string
	ReportPath   string
	SampleSize   int // transaction descriptions per client
	MaxClients   int // 0 means all clients
}

// NewReporter creates a discovery reporter.
func NewReporter(analyzer llm.Analyzer, data *assemble.Assembler, opts Options) *Reporter {
	if opts.SampleSize <= 0 {
		opts.SampleSize = 15
	}
	if opts.ReportPath == "" {
		opts.ReportPath = "new_tag_candidates.log"
	}
	return &Reporter{
		analyzer:     analyzer,
		data:         data,
		systemPrompt: opts.SystemPrompt,
		reportPath:   opts.ReportPath,
		sampleSize:   opts.SampleSize,
		maxClients:   opts.MaxClients,
	}
}

// Run queries the LLM once per client with transaction text and appends
// each suggestion block to the report file. Clients without transaction
// text are skipped.
func (r *Reporter) Run(ctx context.Context) error {
	f, err := os.OpenFile(r.reportPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open report %s: %w", r.reportPath, err)
	}
	defer func() { _ = f.Close() }()

	processed := 0
	for _, profile := range r.data.Profiles() {
		if r.maxClients > 0 && processed >= r.maxClients {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		descriptions := r.data.Descriptions(profile.ID)
		if len(descriptions) == 0 {
			slog.Debug("No transaction text, skipping", "client_id", profile.ID)
			continue
		}
		if len(descriptions) > r.sampleSize {
			descriptions = descriptions[:r.sampleSize]
		}

		lines := make([]string, len(descriptions))
		for i, d := range descriptions {
			lines[i] = "- " + d
		}

		prompt := strings.NewReplacer(
			"{client_name}", profile.Name,
			"{existing_tags}", existingTags,
			"{descriptions}", strings.Join(lines, "\n"),
		).Replace(promptTemplate)

		suggestion, err := r.analyzer.Analyze(ctx, prompt, r.systemPrompt)
		if err != nil {
			slog.Warn("Discovery query failed, skipping client",
				"client_id", profile.ID, "error", err)
			continue
		}

		entry := fmt.Sprintf("=== %s | CLI_ID=%s | %s ===\n%s\n\n",
			time.Now().Format(time.RFC3339), profile.ID, profile.Name, suggestion)
		if _, err := f.WriteString(entry); err != nil {
			return fmt.Errorf("append report: %w", err)
		}

		processed++
		slog.Info("Candidate tags recorded", "client_id", profile.ID)
	}

	slog.Info("Discovery report finished", "clients", processed, "report", r.reportPath)
	return nil
}
