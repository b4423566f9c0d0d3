package usecase

import (
	"github.com/shopspring/decimal"

	"expense-assistant/internal/domain"
)

// SumAmounts totals the amount of every row. Rows whose amount is missing or
// not numeric count as zero.
func SumAmounts(rows []domain.StoredExpense) float64 {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(toDecimal(r.Amount))
	}
	return toFloat(total)
}
