package domain

// Period is a relative time window token resolved against a reference date.
type Period string

const (
	PeriodLastMonth Period = "last_month"
	PeriodThisMonth Period = "this_month"
	PeriodAllTime   Period = "all_time"
)

// QuerySpec is the typed form of the model's answer to a finance question.
// Only Period and FilterCategory influence the result; the total is always a
// sum over amount.
type QuerySpec struct {
	Period         Period
	FilterCategory string
	Metric         string
	Field          string
	AnswerStyle    string
}

// DateRange is an inclusive range of YYYY-MM-DD dates.
type DateRange struct {
	From string
	To   string
}

// ExpenseQuery describes the rows a store binding must return.
type ExpenseQuery struct {
	GroupCode string
	// Range is nil when no date bound applies.
	Range *DateRange
	// Term, when non-empty, matches case-insensitively as a substring of either
	// the category or the title.
	Term  string
	Limit int
}

// Answer is the response to a finance question.
type Answer struct {
	Question string  `json:"question"`
	Period   Period  `json:"period"`
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}
