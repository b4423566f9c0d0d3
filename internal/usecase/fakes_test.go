package usecase

import (
	"context"
	"time"

	"expense-assistant/internal/domain"
)

type mockLLM struct {
	answer   string
	err      error
	model    string
	captured []domain.ChatMessage
	calls    int
}

func (m *mockLLM) Chat(_ context.Context, model string, msgs []domain.ChatMessage) (string, error) {
	m.calls++
	m.model = model
	m.captured = msgs
	return m.answer, m.err
}

type mockStore struct {
	rows  []domain.StoredExpense
	err   error
	query domain.ExpenseQuery
	calls int
}

func (m *mockStore) FindExpenses(_ context.Context, q domain.ExpenseQuery) ([]domain.StoredExpense, error) {
	m.calls++
	m.query = q
	return m.rows, m.err
}

// refTime is 2024-03-15 10:00 IST.
var refTime = time.Date(2024, 3, 15, 4, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
