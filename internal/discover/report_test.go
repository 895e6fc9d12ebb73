package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/smb-tagger/internal/assemble"
)

// fakeAnalyzer returns canned suggestions and records prompts.
type fakeAnalyzer struct {
	err     error
	answer  string
	prompts []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, prompt, _ string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func testData(t *testing.T) *assemble.Assembler {
	t.Helper()
	data, err := assemble.New(&assemble.Tables{
		Profiles: []assemble.Row{
			{assemble.ColClientID: "1", assemble.ColClientName: "ООО Ромашка"},
			{assemble.ColClientID: "2", assemble.ColClientName: "Без операций"},
		},
		Outgoing: []assemble.Row{
			{assemble.ColClientID: "1", assemble.ColDescription: "аренда оборудования"},
		},
	})
	require.NoError(t, err)
	return data
}

func TestReporterAppendsSuggestions(t *testing.T) {
	report := filepath.Join(t.TempDir(), "candidates.log")
	analyzer := &fakeAnalyzer{answer: "Тег: аренда_оборудования"}

	r := NewReporter(analyzer, testData(t), Options{ReportPath: report})
	require.NoError(t, r.Run(context.Background()))

	content, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(content), "CLI_ID=1")
	assert.Contains(t, string(content), "Тег: аренда_оборудования")
	assert.NotContains(t, string(content), "CLI_ID=2", "clients without transaction text are skipped")

	require.Len(t, analyzer.prompts, 1)
	assert.Contains(t, analyzer.prompts[0], "ООО Ромашка")
	assert.Contains(t, analyzer.prompts[0], "- аренда оборудования")

	// Append-only: a second run adds to the file.
	require.NoError(t, r.Run(context.Background()))
	second, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Greater(t, len(second), len(content))
}

func TestReporterSkipsFailedQueries(t *testing.T) {
	report := filepath.Join(t.TempDir(), "candidates.log")
	analyzer := &fakeAnalyzer{err: errors.New("down")}

	r := NewReporter(analyzer, testData(t), Options{ReportPath: report})
	require.NoError(t, r.Run(context.Background()), "a failed query is logged, not fatal")

	content, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Empty(t, content)
}
