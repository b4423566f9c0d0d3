package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"expense-assistant/internal/domain"
)

func newTestExtractService(t *testing.T, llm LLMClient) *ExtractService {
	t.Helper()
	svc, err := NewExtractService(llm, "", WithClock(fixedClock(refTime)))
	require.NoError(t, err)
	return svc
}

func expectUsecaseError(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var usecaseErr *Error
	require.ErrorAs(t, err, &usecaseErr)
	require.Equal(t, code, usecaseErr.Code)
	require.Equal(t, reason, usecaseErr.Reason)
}

func TestNewExtractService_ValidatesDependencies(t *testing.T) {
	_, err := NewExtractService(nil, "gpt-4o-mini")
	require.Error(t, err)
}

func TestExtract_HappyPath(t *testing.T) {
	llm := &mockLLM{answer: `{"amount": 450, "category": "Groceries", "title": "Groceries"}`}
	svc := newTestExtractService(t, llm)

	out, err := svc.Extract(context.Background(), ExtractInput{Text: "Paid 450 for groceries"})
	require.NoError(t, err)
	require.Equal(t, domain.Expense{
		Title:    "Groceries",
		Amount:   450,
		Currency: "INR",
		Category: domain.CategoryGroceries,
		SpentAt:  "2024-03-15",
		Raw:      "Paid 450 for groceries",
	}, out)

	require.Equal(t, DefaultModel, llm.model)
	require.Len(t, llm.captured, 2)
	require.Equal(t, "system", llm.captured[0].Role)
	require.Contains(t, llm.captured[0].Content, "expense extraction assistant")
	require.Equal(t, "user", llm.captured[1].Role)
	require.Equal(t, "Message: Paid 450 for groceries\nToday (IST): 2024-03-15", llm.captured[1].Content)
}

func TestExtract_GarbageModelOutputDegradesToDefaults(t *testing.T) {
	svc := newTestExtractService(t, &mockLLM{answer: "Sure! The amount is around 450."})

	out, err := svc.Extract(context.Background(), ExtractInput{Text: "Paid 450 for groceries"})
	require.NoError(t, err)
	require.Equal(t, "Expense", out.Title)
	require.Zero(t, out.Amount)
	require.Equal(t, domain.CategoryMisc, out.Category)
	require.Equal(t, "INR", out.Currency)
	require.Equal(t, "2024-03-15", out.SpentAt)
	require.Equal(t, "Paid 450 for groceries", out.Raw)
}

func TestExtract_EmptyCompletionDegradesToDefaults(t *testing.T) {
	svc := newTestExtractService(t, &mockLLM{answer: ""})
	out, err := svc.Extract(context.Background(), ExtractInput{Text: "coffee"})
	require.NoError(t, err)
	require.Equal(t, domain.CategoryMisc, out.Category)
}

func TestExtract_MissingText(t *testing.T) {
	llm := &mockLLM{}
	svc := newTestExtractService(t, llm)

	_, err := svc.Extract(context.Background(), ExtractInput{Text: "  "})
	expectUsecaseError(t, err, ErrorInvalidInput, "missing_text")
	require.Zero(t, llm.calls)
}

func TestExtract_LLMFailure(t *testing.T) {
	svc := newTestExtractService(t, &mockLLM{err: errors.New("dial tcp: connection refused")})

	_, err := svc.Extract(context.Background(), ExtractInput{Text: "coffee 80"})
	expectUsecaseError(t, err, ErrorUpstream, "openai_error")
	var usecaseErr *Error
	require.ErrorAs(t, err, &usecaseErr)
	require.Equal(t, "dial tcp: connection refused", usecaseErr.Message())
}

func TestExtract_OutOfRangeAmountDefaultsQuickly(t *testing.T) {
	llm := &mockLLM{answer: `{"amount": 1e20000000, "category": "Food", "title": "Lunch"}`}
	svc := newTestExtractService(t, llm)

	start := time.Now()
	out, err := svc.Extract(context.Background(), ExtractInput{Text: "lunch for a googol rupees"})
	require.NoError(t, err)
	require.Zero(t, out.Amount)
	require.Less(t, time.Since(start), time.Second)
}
