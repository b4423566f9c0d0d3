package usecase

import (
	"regexp"
	"strings"
	"time"

	"expense-assistant/internal/domain"
)

const (
	maxTitleLen     = 120
	defaultTitle    = "Expense"
	defaultCurrency = "INR"
)

var reDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// normalizeExpense turns whatever the model returned into a complete record.
// Each field is sanitized on its own; none can fail.
func normalizeExpense(intent map[string]any, raw string, now time.Time) domain.Expense {
	return domain.Expense{
		Title:    normalizeTitle(intent["title"]),
		Amount:   toFloat(intent["amount"]),
		Currency: normalizeCurrency(intent["currency"]),
		Category: normalizeCategory(intent["category"]),
		SpentAt:  normalizeSpentAt(intent["spent_at"], now),
		Raw:      raw,
	}
}

func normalizeTitle(v any) string {
	s := toText(v)
	if r := []rune(s); len(r) > maxTitleLen {
		s = string(r[:maxTitleLen])
	}
	if s == "" {
		return defaultTitle
	}
	return s
}

func normalizeCurrency(v any) string {
	s := strings.ToUpper(strings.TrimSpace(toText(v)))
	if s == "" {
		return defaultCurrency
	}
	return s
}

func normalizeCategory(v any) domain.Category {
	s, ok := v.(string)
	if !ok || !domain.IsCategory(s) {
		return domain.CategoryMisc
	}
	return domain.Category(s)
}

func normalizeSpentAt(v any, now time.Time) string {
	if s, ok := v.(string); ok && reDate.MatchString(s) {
		return s
	}
	return todayIST(now)
}
