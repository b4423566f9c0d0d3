package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"expense-assistant/internal/domain"
)

const (
	DefaultRowCap = 1000
	allCategories = "all"
)

type ExpenseFinder interface {
	FindExpenses(ctx context.Context, q domain.ExpenseQuery) ([]domain.StoredExpense, error)
}

type AnswerInput struct {
	Question  string
	GroupCode string
}

// QueryService answers finance questions by summing matching store rows.
type QueryService struct {
	intents intentExtractor
	store   ExpenseFinder
	rowCap  int
	now     func() time.Time
	log     *slog.Logger
}

func NewQueryService(llm LLMClient, store ExpenseFinder, model string, rowCap int, opts ...Option) (*QueryService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: expense store must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if rowCap <= 0 {
		rowCap = DefaultRowCap
	}
	o := buildOptions(opts)
	return &QueryService{
		intents: intentExtractor{llm: llm, model: model, log: o.logger},
		store:   store,
		rowCap:  rowCap,
		now:     o.now,
		log:     o.logger,
	}, nil
}

func (s *QueryService) Answer(ctx context.Context, in AnswerInput) (domain.Answer, error) {
	question := strings.TrimSpace(in.Question)
	groupCode := strings.TrimSpace(in.GroupCode)
	if question == "" || groupCode == "" {
		return domain.Answer{}, newError(ErrorInvalidInput, reasonMissingQuestionGroup, nil)
	}

	now := s.now()
	intent, err := s.intents.extract(ctx, querySystemPrompt(), queryUserPrompt(question, todayIST(now)))
	if err != nil {
		return domain.Answer{}, newError(ErrorUpstream, reasonOpenAI, err)
	}
	spec := parseQuerySpec(intent)

	rows, err := s.store.FindExpenses(ctx, domain.ExpenseQuery{
		GroupCode: groupCode,
		Range:     ResolvePeriod(spec.Period, now),
		Term:      spec.FilterCategory,
		Limit:     s.rowCap,
	})
	if err != nil {
		return domain.Answer{}, newError(ErrorUpstream, reasonStoreQuery, err)
	}
	if len(rows) >= s.rowCap {
		s.log.WarnContext(ctx, "row cap reached, total may be incomplete",
			"group_code", groupCode, "period", spec.Period, "row_cap", s.rowCap)
	}

	category := spec.FilterCategory
	if category == "" {
		category = allCategories
	}
	return domain.Answer{
		Question: in.Question,
		Period:   spec.Period,
		Category: category,
		Total:    SumAmounts(rows),
	}, nil
}
