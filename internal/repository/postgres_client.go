package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"expense-assistant/internal/domain"
)

const dateLayout = "2006-01-02"

// pgQuerier is the part of *pgxpool.Pool the client needs.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresClient reads expenses straight from Postgres.
type PostgresClient struct {
	db    pgQuerier
	table string
}

func NewPostgresClient(db pgQuerier, table string) (*PostgresClient, error) {
	if db == nil {
		return nil, errors.New("repository: db must not be nil")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &PostgresClient{db: db, table: table}, nil
}

func (c *PostgresClient) FindExpenses(ctx context.Context, q domain.ExpenseQuery) ([]domain.StoredExpense, error) {
	sql, args, err := buildPostgresQuery(c.table, q)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: FindExpenses query: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredExpense
	for rows.Next() {
		var (
			amount                   *string
			category, title, spentAt string
		)
		if err := rows.Scan(&amount, &category, &title, &spentAt); err != nil {
			return nil, fmt.Errorf("repository: FindExpenses scan: %w", err)
		}
		row := domain.StoredExpense{Title: title, Category: category, SpentAt: spentAt}
		if amount != nil {
			row.Amount = *amount
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: FindExpenses rows: %w", err)
	}
	return out, nil
}

func buildPostgresQuery(table string, q domain.ExpenseQuery) (string, []any, error) {
	sql := `
		SELECT amount::text, coalesce(category, ''), coalesce(title, ''), coalesce(spent_at::text, '')
		FROM ` + pgx.Identifier{table}.Sanitize() + `
		WHERE group_code = $1
		`
	args := []any{q.GroupCode}
	if q.Range != nil {
		from, err := time.Parse(dateLayout, q.Range.From)
		if err != nil {
			return "", nil, fmt.Errorf("repository: range start: %w", err)
		}
		to, err := time.Parse(dateLayout, q.Range.To)
		if err != nil {
			return "", nil, fmt.Errorf("repository: range end: %w", err)
		}
		args = append(args, from, to)
		sql += fmt.Sprintf(" AND spent_at >= $%d AND spent_at <= $%d ", len(args)-1, len(args))
	}
	if term := strings.TrimSpace(q.Term); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		sql += fmt.Sprintf(" AND (category ILIKE $%d OR title ILIKE $%d) ", len(args), len(args))
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d ", len(args))
	}
	return sql, args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
