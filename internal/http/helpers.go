package http

import (
	"strings"
	"time"

	"mykhata/internal/core"
)

// nowUTC is swappable in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }

// formatRupees renders a cents amount for display, e.g. "₹ 1000.00".
func formatRupees(m core.Money) string {
	return "₹ " + m.String()
}

// sanitizeInput trims whitespace and strips control characters from form
// values before they reach the services.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// categoryIcon picks the glyph shown next to a transaction row.
func categoryIcon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return "📝"
}

var categoryIcons = map[string]string{
	"Food":             "🍔",
	"Transport":        "🚗",
	"Rent":             "🏠",
	"Utilities":        "💡",
	"Shopping":         "🛍️",
	"Entertainment":    "🎬",
	"Health":           "🏥",
	"Education":        "📚",
	"Salary":           "💰",
	"Freelance":        "💼",
	"Investment":       "📈",
	"Gift":             "🎁",
	"Personal Loan":    "💳",
	"Home Loan":        "🏡",
	"Car Loan":         "🚗",
	"Student Loan":     "🎓",
	"Loan Repayment":   "💸",
	"Credit Card Bill": "💳",
	"Other Income":     "➕",
	"Other Expense":    "➖",
	"Other Loan":       "🤝",
	"Other EMI":        "🔄",
}

// percentOf returns part as a whole-number percentage of whole. The ratio
// is taken in float64 so part*100 cannot overflow int64 on large ledgers.
func percentOf(part, whole core.Money) int {
	if whole.Cents <= 0 {
		return 0
	}
	return int(float64(part.Cents) / float64(whole.Cents) * 100)
}

// amountClass maps a kind to the CSS class coloring its amount.
func amountClass(kind core.Kind) string {
	switch kind {
	case core.Income:
		return "amount-income"
	case core.Expense:
		return "amount-expense"
	case core.Loan:
		return "amount-loan"
	default:
		return "amount-emi"
	}
}
