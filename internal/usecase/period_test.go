package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"expense-assistant/internal/domain"
)

func TestResolvePeriod(t *testing.T) {
	require.Equal(t, &domain.DateRange{From: "2024-02-01", To: "2024-02-29"}, ResolvePeriod(domain.PeriodLastMonth, refTime))
	require.Equal(t, &domain.DateRange{From: "2024-03-01", To: "2024-03-15"}, ResolvePeriod(domain.PeriodThisMonth, refTime))
	require.Nil(t, ResolvePeriod(domain.PeriodAllTime, refTime))
	require.Nil(t, ResolvePeriod(domain.Period("anything_else"), refTime))
	require.Nil(t, ResolvePeriod("", refTime))
}

func TestResolvePeriod_LastMonthAcrossYearBoundary(t *testing.T) {
	jan := time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC)
	require.Equal(t, &domain.DateRange{From: "2024-12-01", To: "2024-12-31"}, ResolvePeriod(domain.PeriodLastMonth, jan))
}

func TestResolvePeriod_MonthTurnoverInKolkata(t *testing.T) {
	// 2024-03-31 19:00 UTC is 2024-04-01 00:30 in Kolkata.
	now := time.Date(2024, 3, 31, 19, 0, 0, 0, time.UTC)
	require.Equal(t, &domain.DateRange{From: "2024-04-01", To: "2024-04-01"}, ResolvePeriod(domain.PeriodThisMonth, now))
	require.Equal(t, &domain.DateRange{From: "2024-03-01", To: "2024-03-31"}, ResolvePeriod(domain.PeriodLastMonth, now))
}

func TestParseQuerySpec(t *testing.T) {
	spec := parseQuerySpec(map[string]any{
		"period":          "last_month",
		"metric":          "sum",
		"field":           "amount",
		"filter_category": " Food ",
		"answer_style":    "short",
	})
	require.Equal(t, domain.QuerySpec{
		Period:         domain.PeriodLastMonth,
		FilterCategory: "Food",
		Metric:         "sum",
		Field:          "amount",
		AnswerStyle:    "short",
	}, spec)
}

func TestParseQuerySpec_Defaults(t *testing.T) {
	spec := parseQuerySpec(map[string]any{"period": "last_year", "filter_category": nil})
	require.Equal(t, domain.PeriodAllTime, spec.Period)
	require.Empty(t, spec.FilterCategory)
	require.Equal(t, "sum", spec.Metric)
	require.Equal(t, "amount", spec.Field)
	require.Equal(t, "short", spec.AnswerStyle)

	require.Equal(t, domain.PeriodAllTime, parseQuerySpec(map[string]any{}).Period)
	require.Equal(t, domain.PeriodAllTime, parseQuerySpec(map[string]any{"period": 3.0}).Period)
}
