package usecase

import (
	"strings"
	"time"

	"expense-assistant/internal/domain"
)

const (
	defaultMetric      = "sum"
	defaultField       = "amount"
	defaultAnswerStyle = "short"
)

// parseQuerySpec reads the model's intent for a finance question. Unknown or
// missing periods fall back to all_time.
func parseQuerySpec(intent map[string]any) domain.QuerySpec {
	return domain.QuerySpec{
		Period:         parsePeriod(intent["period"]),
		FilterCategory: strings.TrimSpace(toText(intent["filter_category"])),
		Metric:         textOr(intent["metric"], defaultMetric),
		Field:          textOr(intent["field"], defaultField),
		AnswerStyle:    textOr(intent["answer_style"], defaultAnswerStyle),
	}
}

func parsePeriod(v any) domain.Period {
	s, _ := v.(string)
	switch p := domain.Period(s); p {
	case domain.PeriodLastMonth, domain.PeriodThisMonth:
		return p
	default:
		return domain.PeriodAllTime
	}
}

func textOr(v any, def string) string {
	if s := strings.TrimSpace(toText(v)); s != "" {
		return s
	}
	return def
}

// ResolvePeriod maps a period token to inclusive calendar bounds in the
// Asia/Kolkata calendar. It returns nil when no date bound applies.
func ResolvePeriod(p domain.Period, now time.Time) *domain.DateRange {
	local := now.In(kolkata)
	y, m, _ := local.Date()
	switch p {
	case domain.PeriodLastMonth:
		first := time.Date(y, m-1, 1, 0, 0, 0, 0, kolkata)
		// Day 0 of the current month is the last day of the previous one.
		last := time.Date(y, m, 0, 0, 0, 0, 0, kolkata)
		return &domain.DateRange{From: first.Format(dateLayout), To: last.Format(dateLayout)}
	case domain.PeriodThisMonth:
		first := time.Date(y, m, 1, 0, 0, 0, 0, kolkata)
		return &domain.DateRange{From: first.Format(dateLayout), To: local.Format(dateLayout)}
	default:
		return nil
	}
}
