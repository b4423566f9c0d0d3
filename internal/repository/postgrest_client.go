package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expense-assistant/internal/domain"
)

const postgrestSelect = "amount,category,title,spent_at"

// StoreStatusError captures a non-2xx answer from the REST store.
type StoreStatusError struct {
	StatusCode int
	Message    string
}

func (e *StoreStatusError) Error() string {
	return fmt.Sprintf("store: unexpected status %d: %s", e.StatusCode, e.Message)
}

func (e *StoreStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// postgrestRow mirrors the selected columns. Amount is decoded as a JSON
// number or string, whichever the column type produces.
type postgrestRow struct {
	Amount   any    `json:"amount"`
	Category string `json:"category"`
	Title    string `json:"title"`
	SpentAt  string `json:"spent_at"`
}

// PostgRESTClient queries a PostgREST (Supabase) table over plain HTTP.
type PostgRESTClient struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
}

type PostgRESTOption func(*PostgRESTClient)

func WithPostgRESTHTTPClient(hc *http.Client) PostgRESTOption {
	return func(c *PostgRESTClient) {
		c.httpClient = hc
	}
}

func NewPostgRESTClient(baseURL, apiKey, table string, opts ...PostgRESTOption) (*PostgRESTClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("repository: store URL must not be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("repository: store key must not be empty")
	}
	if strings.TrimSpace(table) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	c := &PostgRESTClient{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(apiKey),
		table:      table,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *PostgRESTClient) FindExpenses(ctx context.Context, q domain.ExpenseQuery) ([]domain.StoredExpense, error) {
	endpoint := c.baseURL + "/rest/v1/" + url.PathEscape(c.table) + "?" + postgrestQuery(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("repository: FindExpenses request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &StoreStatusError{StatusCode: res.StatusCode, Message: storeMessage(buf)}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("repository: read response body: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var payload []postgrestRow
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("repository: decode rows: %w", err)
	}

	rows := make([]domain.StoredExpense, 0, len(payload))
	for _, r := range payload {
		rows = append(rows, domain.StoredExpense{
			Title:    r.Title,
			Category: r.Category,
			SpentAt:  r.SpentAt,
			Amount:   r.Amount,
		})
	}
	return rows, nil
}

// postgrestQuery renders the filter in PostgREST's query syntax. The term is
// quoted inside or=() so commas and parentheses in it stay literal, and its
// LIKE metacharacters are escaped as in the Postgres binding.
func postgrestQuery(q domain.ExpenseQuery) string {
	v := url.Values{}
	v.Set("select", postgrestSelect)
	v.Set("group_code", "eq."+q.GroupCode)
	if q.Range != nil {
		v.Add("spent_at", "gte."+q.Range.From)
		v.Add("spent_at", "lte."+q.Range.To)
	}
	if term := strings.TrimSpace(q.Term); term != "" {
		pattern := quotePostgREST("*" + escapeLike(term) + "*")
		v.Set("or", "(category.ilike."+pattern+",title.ilike."+pattern+")")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v.Encode()
}

func quotePostgREST(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// storeMessage extracts the human-readable part of a PostgREST error body.
func storeMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}
