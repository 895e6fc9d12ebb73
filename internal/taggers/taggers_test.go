package taggers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/smb-tagger/internal/config"
	"github.com/avoronov/smb-tagger/internal/llm"
	"github.com/avoronov/smb-tagger/internal/model"
)

var testPrompts = config.Prompts{
	System:       "system",
	UserTemplate: "{tool_name}: {tags_context}",
	Payments:     "payments: {sample_descriptions}",
	Cash:         "cash: {sample_descriptions} | {additional_cash_info}",
	VED:          "ved: {sample_descriptions}",
}

func descriptions(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("операция %d", i+1)
	}
	return out
}

func TestPaymentTypesMapsBooleansToTags(t *testing.T) {
	mock := llm.NewMockClient().Respond(model.SchemaPaymentTypes, model.PaymentTypes{
		ToSuppliers: true,
		Tax:         true,
	})
	set := NewSet(mock, testPrompts)

	tags := set.PaymentTypes(context.Background(), []string{"оплата по счету"})

	assert.ElementsMatch(t, []string{model.TagPaymentsToSuppliers, model.TagPaymentsTax}, tags)
}

func TestPaymentTypesNoDescriptionsSkipsLLM(t *testing.T) {
	mock := llm.NewMockClient()
	set := NewSet(mock, testPrompts)

	assert.Empty(t, set.PaymentTypes(context.Background(), nil))
	assert.Zero(t, mock.CallCount(model.SchemaPaymentTypes))
}

func TestPaymentTypesFailureIsSilent(t *testing.T) {
	mock := llm.NewMockClient().Fail(model.SchemaPaymentTypes, errors.New("boom"))
	set := NewSet(mock, testPrompts)

	assert.Empty(t, set.PaymentTypes(context.Background(), []string{"x"}))
}

func TestPaymentTypesCapsContextAtTwenty(t *testing.T) {
	mock := llm.NewMockClient().Respond(model.SchemaPaymentTypes, model.PaymentTypes{})
	set := NewSet(mock, testPrompts)

	set.PaymentTypes(context.Background(), descriptions(30))

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Input, "операция 20")
	assert.NotContains(t, calls[0].Input, "операция 21")
}

func TestCashActivityAlwaysExactlyOneTag(t *testing.T) {
	// Every combination of {empty, nonempty} descriptions and
	// {zero, positive} cash signal, with the LLM up and down.
	scenarios := []struct {
		setup      func() *llm.MockClient
		name       string
		descrs     []string
		commission float64
		want       string
		wantCalls  int
	}{
		{
			name:       "no text no signal short-circuits low",
			setup:      llm.NewMockClient,
			descrs:     nil,
			commission: 0,
			want:       model.TagCashOperationsLow,
			wantCalls:  0,
		},
		{
			name: "no text positive signal asks LLM",
			setup: func() *llm.MockClient {
				return llm.NewMockClient().Respond(model.SchemaCashActivity, model.CashActivity{Level: model.CashLevelHigh})
			},
			descrs:     nil,
			commission: 120.5,
			want:       model.TagCashOperationsHigh,
			wantCalls:  1,
		},
		{
			name: "text no signal LLM says low",
			setup: func() *llm.MockClient {
				return llm.NewMockClient().Respond(model.SchemaCashActivity, model.CashActivity{Level: model.CashLevelLow})
			},
			descrs:     []string{"внесение наличных"},
			commission: 0,
			want:       model.TagCashOperationsLow,
			wantCalls:  1,
		},
		{
			name: "text and signal LLM says high",
			setup: func() *llm.MockClient {
				return llm.NewMockClient().Respond(model.SchemaCashActivity, model.CashActivity{Level: model.CashLevelHigh})
			},
			descrs:     []string{"внесение наличных"},
			commission: 50,
			want:       model.TagCashOperationsHigh,
			wantCalls:  1,
		},
		{
			name: "failure with positive signal falls back high",
			setup: func() *llm.MockClient {
				return llm.NewMockClient().Fail(model.SchemaCashActivity, errors.New("down"))
			},
			descrs:     []string{"внесение наличных"},
			commission: 50,
			want:       model.TagCashOperationsHigh,
			wantCalls:  1,
		},
		{
			name: "failure without signal falls back low",
			setup: func() *llm.MockClient {
				return llm.NewMockClient().Fail(model.SchemaCashActivity, errors.New("down"))
			},
			descrs:     []string{"оплата картой"},
			commission: 0,
			want:       model.TagCashOperationsLow,
			wantCalls:  1,
		},
	}

	for _, tt := range scenarios {
		t.Run(tt.name, func(t *testing.T) {
			mock := tt.setup()
			set := NewSet(mock, testPrompts)

			tags := set.CashActivity(context.Background(), tt.descrs, tt.commission)

			require.Len(t, tags, 1, "exactly one of high/low, never both, never neither")
			assert.Equal(t, tt.want, tags[0])
			assert.Equal(t, tt.wantCalls, mock.CallCount(model.SchemaCashActivity))
		})
	}
}

func TestCashActivityContextCarriesCommission(t *testing.T) {
	mock := llm.NewMockClient().Respond(model.SchemaCashActivity, model.CashActivity{Level: model.CashLevelLow})
	set := NewSet(mock, testPrompts)

	set.CashActivity(context.Background(), []string{"x"}, 1500.75)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Input, "1500.75")
}

func TestCashActivityCapsContextAtTen(t *testing.T) {
	mock := llm.NewMockClient().Respond(model.SchemaCashActivity, model.CashActivity{Level: model.CashLevelLow})
	set := NewSet(mock, testPrompts)

	set.CashActivity(context.Background(), descriptions(15), 0)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Input, "операция 10")
	assert.NotContains(t, calls[0].Input, "операция 11")
}

func TestForeignTradeExplicitFlagShortCircuits(t *testing.T) {
	mock := llm.NewMockClient()
	set := NewSet(mock, testPrompts)

	tags := set.ForeignTrade(context.Background(), "да", []string{"валютный перевод"})

	assert.Equal(t, []string{model.TagVEDActive}, tags)
	assert.Zero(t, mock.CallCount(model.SchemaForeignTrade), "explicit signal must not reach the LLM")
}

func TestForeignTradeNoEvidence(t *testing.T) {
	mock := llm.NewMockClient()
	set := NewSet(mock, testPrompts)

	tags := set.ForeignTrade(context.Background(), "0", nil)

	assert.Equal(t, []string{model.TagVEDAbsent}, tags)
	assert.Zero(t, mock.CallCount(model.SchemaForeignTrade))
}

func TestForeignTradeLLMPaths(t *testing.T) {
	tests := []struct {
		setup func() *llm.MockClient
		name  string
		want  string
	}{
		{
			name: "signs present",
			setup: func() *llm.MockClient {
				return llm.NewMockClient().Respond(model.SchemaForeignTrade, model.ForeignTradeSigns{HasSigns: true})
			},
			want: model.TagVEDActive,
		},
		{
			name: "signs absent",
			setup: func() *llm.MockClient {
				return llm.NewMockClient().Respond(model.SchemaForeignTrade, model.ForeignTradeSigns{})
			},
			want: model.TagVEDAbsent,
		},
		{
			name: "failure tags absent",
			setup: func() *llm.MockClient {
				return llm.NewMockClient().Fail(model.SchemaForeignTrade, errors.New("down"))
			},
			want: model.TagVEDAbsent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewSet(tt.setup(), testPrompts)

			tags := set.ForeignTrade(context.Background(), nil, []string{"платеж нерезиденту"})

			require.Len(t, tags, 1)
			assert.Equal(t, tt.want, tags[0])
		})
	}
}

func TestSampleJoinsMostRecentFirstInput(t *testing.T) {
	// Callers hand descriptions most-recent-first; sample preserves order.
	got := sample([]string{"c", "b", "a"}, 2)
	assert.Equal(t, "c\nb", got)
	assert.Equal(t, 2, len(strings.Split(got, "\n")))
}
