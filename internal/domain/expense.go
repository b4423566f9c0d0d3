package domain

// Category is one of the fixed expense buckets the extractor may assign.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryGroceries     Category = "Groceries"
	CategoryTransport     Category = "Transport"
	CategoryFuel          Category = "Fuel"
	CategoryRent          Category = "Rent"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryMisc          Category = "Misc"
)

// Categories lists every accepted category in prompt order.
var Categories = []Category{
	CategoryFood,
	CategoryGroceries,
	CategoryTransport,
	CategoryFuel,
	CategoryRent,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryShopping,
	CategoryHealth,
	CategoryEducation,
	CategoryMisc,
}

// IsCategory reports whether s names a member of the closed category set.
// The comparison is case-sensitive.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Expense is a fully populated expense record produced from free text.
type Expense struct {
	Title    string   `json:"title"`
	Amount   float64  `json:"amount"`
	Currency string   `json:"currency"`
	Category Category `json:"category"`
	SpentAt  string   `json:"spent_at"`
	Raw      string   `json:"raw"`
}

// StoredExpense is a row fetched from the record store. Amount is left as the
// store returned it (number, numeric string or nil).
type StoredExpense struct {
	Title    string
	Category string
	SpentAt  string
	Amount   any
}
