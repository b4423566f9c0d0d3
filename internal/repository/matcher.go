package repository

import (
	"strings"

	"expense-assistant/internal/domain"
)

// termMatcher applies the category-or-title substring filter in process for
// stores that cannot express it.
type termMatcher struct {
	term string
}

func newTermMatcher(term string) termMatcher {
	return termMatcher{term: strings.ToLower(strings.TrimSpace(term))}
}

func (m termMatcher) matches(row domain.StoredExpense) bool {
	if m.term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(row.Category), m.term) ||
		strings.Contains(strings.ToLower(row.Title), m.term)
}
