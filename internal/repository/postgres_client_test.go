package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"expense-assistant/internal/domain"
)

type fakeRows struct {
	data    [][]any
	idx     int
	scanErr error
	err     error
	closed  bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.idx-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx-1]
	for i, d := range dest {
		switch p := d.(type) {
		case **string:
			if row[i] == nil {
				*p = nil
			} else {
				s := row[i].(string)
				*p = &s
			}
		case *string:
			*p = row[i].(string)
		}
	}
	return nil
}

type fakePG struct {
	rows     *fakeRows
	queryErr error
	sql      string
	args     []any
}

func (f *fakePG) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sql, f.args = sql, args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func TestNewPostgresClient_Validates(t *testing.T) {
	_, err := NewPostgresClient(nil, "expenses")
	require.Error(t, err)
	_, err = NewPostgresClient(&fakePG{}, "  ")
	require.Error(t, err)
}

func TestPostgresFindExpenses_ScansRows(t *testing.T) {
	rows := &fakeRows{data: [][]any{
		{"120.50", "Food", "Lunch", "2024-02-03"},
		{nil, "Misc", "Unknown", "2024-02-04"},
	}}
	db := &fakePG{rows: rows}
	c, err := NewPostgresClient(db, "expenses")
	require.NoError(t, err)

	got, err := c.FindExpenses(context.Background(), domain.ExpenseQuery{GroupCode: "g1", Limit: 1000})
	require.NoError(t, err)
	require.Equal(t, []domain.StoredExpense{
		{Title: "Lunch", Category: "Food", SpentAt: "2024-02-03", Amount: "120.50"},
		{Title: "Unknown", Category: "Misc", SpentAt: "2024-02-04"},
	}, got)
	require.True(t, rows.closed)
	require.Equal(t, []any{"g1", 1000}, db.args)
}

func TestPostgresFindExpenses_Errors(t *testing.T) {
	c, err := NewPostgresClient(&fakePG{queryErr: errors.New("connection refused")}, "expenses")
	require.NoError(t, err)
	_, err = c.FindExpenses(context.Background(), domain.ExpenseQuery{GroupCode: "g1"})
	require.ErrorContains(t, err, "connection refused")

	c, err = NewPostgresClient(&fakePG{rows: &fakeRows{data: [][]any{{"1", "", "", ""}}, scanErr: errors.New("bad type")}}, "expenses")
	require.NoError(t, err)
	_, err = c.FindExpenses(context.Background(), domain.ExpenseQuery{GroupCode: "g1"})
	require.ErrorContains(t, err, "scan")

	c, err = NewPostgresClient(&fakePG{rows: &fakeRows{err: errors.New("conn reset")}}, "expenses")
	require.NoError(t, err)
	_, err = c.FindExpenses(context.Background(), domain.ExpenseQuery{GroupCode: "g1"})
	require.ErrorContains(t, err, "conn reset")
}

func TestBuildPostgresQuery_AllFilters(t *testing.T) {
	sql, args, err := buildPostgresQuery("expenses", domain.ExpenseQuery{
		GroupCode: "g1",
		Range:     &domain.DateRange{From: "2024-02-01", To: "2024-02-29"},
		Term:      " 50%_off ",
		Limit:     10,
	})
	require.NoError(t, err)
	require.Contains(t, sql, `FROM "expenses"`)
	require.Contains(t, sql, "spent_at >= $2 AND spent_at <= $3")
	require.Contains(t, sql, "(category ILIKE $4 OR title ILIKE $4)")
	require.Contains(t, sql, "LIMIT $5")
	require.Equal(t, []any{
		"g1",
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		`%50\%\_off%`,
		10,
	}, args)
}

func TestBuildPostgresQuery_GroupOnly(t *testing.T) {
	sql, args, err := buildPostgresQuery(`odd"name`, domain.ExpenseQuery{GroupCode: "g1"})
	require.NoError(t, err)
	require.Contains(t, sql, `FROM "odd""name"`)
	require.False(t, strings.Contains(sql, "ILIKE"))
	require.False(t, strings.Contains(sql, "LIMIT"))
	require.Equal(t, []any{"g1"}, args)
}

func TestBuildPostgresQuery_BadRange(t *testing.T) {
	_, _, err := buildPostgresQuery("expenses", domain.ExpenseQuery{
		GroupCode: "g1",
		Range:     &domain.DateRange{From: "yesterday", To: "2024-02-29"},
	})
	require.ErrorContains(t, err, "range start")
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `a\\b\%c\_d`, escapeLike(`a\b%c_d`))
}
