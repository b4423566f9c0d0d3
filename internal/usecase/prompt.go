package usecase

import (
	"fmt"
	"strings"

	"expense-assistant/internal/domain"
)

func expenseSystemPrompt() string {
	names := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		names = append(names, string(c))
	}
	return strings.Join([]string{
		"You are an expense extraction assistant. Given a short message about a purchase, extract a clean expense.",
		"Return JSON with: title (short), amount (number), currency (ISO like INR), category (" +
			strings.Join(names, ", ") + "), spent_at (YYYY-MM-DD), raw (original).",
		"If you cannot find amount, set amount to 0 and category to 'Misc'. If date is missing, use today's date in IST.",
	}, "\n")
}

func expenseUserPrompt(text, today string) string {
	return fmt.Sprintf("Message: %s\nToday (IST): %s", text, today)
}

func querySystemPrompt() string {
	return strings.Join([]string{
		"You convert finance questions into a JSON spec.",
		"Fields: period ('last_month'|'this_month'|'all_time'), metric ('sum'), field ('amount'),",
		"filter_category (optional free text), answer_style ('short').",
	}, "\n")
}

func queryUserPrompt(question, today string) string {
	return fmt.Sprintf("Question: %s\nToday (IST): %s", question, today)
}
