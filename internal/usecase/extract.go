package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"expense-assistant/internal/domain"
)

type ExtractInput struct {
	Text string
}

// ExtractService turns a free-text expense message into an Expense.
type ExtractService struct {
	intents intentExtractor
	now     func() time.Time
}

type Option func(*options)

type options struct {
	now    func() time.Time
	logger *slog.Logger
}

// WithClock overrides the reference time used for date defaults.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewExtractService(llm LLMClient, model string, opts ...Option) (*ExtractService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	o := buildOptions(opts)
	return &ExtractService{
		intents: intentExtractor{llm: llm, model: model, log: o.logger},
		now:     o.now,
	}, nil
}

func (s *ExtractService) Extract(ctx context.Context, in ExtractInput) (domain.Expense, error) {
	if strings.TrimSpace(in.Text) == "" {
		return domain.Expense{}, newError(ErrorInvalidInput, reasonMissingText, nil)
	}
	now := s.now()
	intent, err := s.intents.extract(ctx, expenseSystemPrompt(), expenseUserPrompt(in.Text, todayIST(now)))
	if err != nil {
		return domain.Expense{}, newError(ErrorUpstream, reasonOpenAI, err)
	}
	return normalizeExpense(intent, in.Text, now), nil
}
