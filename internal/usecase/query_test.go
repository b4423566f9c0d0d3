package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"expense-assistant/internal/domain"
)

func newTestQueryService(t *testing.T, llm LLMClient, store ExpenseFinder) *QueryService {
	t.Helper()
	svc, err := NewQueryService(llm, store, "gpt-4o-mini", 0, WithClock(fixedClock(refTime)))
	require.NoError(t, err)
	return svc
}

func TestNewQueryService_ValidatesDependencies(t *testing.T) {
	_, err := NewQueryService(nil, &mockStore{}, "", 0)
	require.Error(t, err)

	_, err = NewQueryService(&mockLLM{}, nil, "", 0)
	require.Error(t, err)
}

func TestAnswer_HappyPath(t *testing.T) {
	llm := &mockLLM{answer: `{"period":"last_month","metric":"sum","field":"amount","filter_category":"Food","answer_style":"short"}`}
	store := &mockStore{rows: []domain.StoredExpense{{Amount: float64(120)}, {Amount: "80.5"}}}
	svc := newTestQueryService(t, llm, store)

	out, err := svc.Answer(context.Background(), AnswerInput{Question: "How much on food last month?", GroupCode: "flat-42"})
	require.NoError(t, err)
	require.Equal(t, domain.Answer{
		Question: "How much on food last month?",
		Period:   domain.PeriodLastMonth,
		Category: "Food",
		Total:    200.5,
	}, out)

	require.Equal(t, domain.ExpenseQuery{
		GroupCode: "flat-42",
		Range:     &domain.DateRange{From: "2024-02-01", To: "2024-02-29"},
		Term:      "Food",
		Limit:     DefaultRowCap,
	}, store.query)
	require.Equal(t, "Question: How much on food last month?\nToday (IST): 2024-03-15", llm.captured[1].Content)
}

func TestAnswer_UnparseableIntentQueriesEverything(t *testing.T) {
	store := &mockStore{}
	svc := newTestQueryService(t, &mockLLM{answer: "I think you spent a lot"}, store)

	out, err := svc.Answer(context.Background(), AnswerInput{Question: "total?", GroupCode: "g1"})
	require.NoError(t, err)
	require.Equal(t, domain.PeriodAllTime, out.Period)
	require.Equal(t, "all", out.Category)
	require.Zero(t, out.Total)
	require.Nil(t, store.query.Range)
	require.Empty(t, store.query.Term)
}

func TestAnswer_ValidationErrors(t *testing.T) {
	llm := &mockLLM{}
	svc := newTestQueryService(t, llm, &mockStore{})

	_, err := svc.Answer(context.Background(), AnswerInput{Question: "total?"})
	expectUsecaseError(t, err, ErrorInvalidInput, "missing_question_or_group")

	_, err = svc.Answer(context.Background(), AnswerInput{GroupCode: "g1"})
	expectUsecaseError(t, err, ErrorInvalidInput, "missing_question_or_group")
	require.Zero(t, llm.calls)
}

func TestAnswer_LLMFailureSkipsStore(t *testing.T) {
	store := &mockStore{}
	svc := newTestQueryService(t, &mockLLM{err: errors.New("openai down")}, store)

	_, err := svc.Answer(context.Background(), AnswerInput{Question: "total?", GroupCode: "g1"})
	expectUsecaseError(t, err, ErrorUpstream, "openai_error")
	require.Zero(t, store.calls)
}

func TestAnswer_StoreFailure(t *testing.T) {
	store := &mockStore{err: errors.New("store: status 503: upstream unavailable")}
	svc := newTestQueryService(t, &mockLLM{answer: `{}`}, store)

	_, err := svc.Answer(context.Background(), AnswerInput{Question: "total?", GroupCode: "g1"})
	expectUsecaseError(t, err, ErrorUpstream, "store_query_error")
	var usecaseErr *Error
	require.ErrorAs(t, err, &usecaseErr)
	require.Contains(t, usecaseErr.Message(), "503")
}

func TestAnswer_RowCapIsPassedToStore(t *testing.T) {
	store := &mockStore{rows: []domain.StoredExpense{{Amount: 1.0}, {Amount: 2.0}}}
	svc, err := NewQueryService(&mockLLM{answer: `{"period":"this_month"}`}, store, "", 2, WithClock(fixedClock(refTime)))
	require.NoError(t, err)

	out, err := svc.Answer(context.Background(), AnswerInput{Question: "total?", GroupCode: "g1"})
	require.NoError(t, err)
	require.Equal(t, 2, store.query.Limit)
	require.Equal(t, &domain.DateRange{From: "2024-03-01", To: "2024-03-15"}, store.query.Range)
	require.Equal(t, float64(3), out.Total)
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, "Missing text", newError(ErrorInvalidInput, reasonMissingText, nil).Message())
	require.Equal(t, "Missing question/group_code", newError(ErrorInvalidInput, reasonMissingQuestionGroup, nil).Message())
	require.Equal(t, "boom", newError(ErrorInternal, "x", errors.New("boom")).Message())
	require.Equal(t, "x", newError(ErrorInternal, "x", nil).Message())
}
