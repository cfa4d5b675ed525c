package core

import "sort"

// builtinCategories are the fixed per-kind sets that always exist,
// independent of what any user has defined.
var builtinCategories = map[Kind][]string{
	Income:      {"Salary", "Freelance", "Investment", "Gift", "Other Income"},
	Expense:     {"Food", "Transport", "Rent", "Utilities", "Shopping", "Entertainment", "Health", "Education", "Other Expense"},
	Loan:        {"Personal Loan", "Home Loan", "Car Loan", "Student Loan", "Other Loan"},
	Installment: {"Loan Repayment", "Credit Card Bill", "Other EMI"},
}

// BuiltinCategories returns a copy of the fixed category names for a kind.
func BuiltinCategories(kind Kind) []string {
	names := builtinCategories[kind]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// MergeCategories unions the built-in set for kind with the matching
// user-defined categories. The result is case-sensitive, deduplicated and
// sorted lexicographically for display.
func MergeCategories(kind Kind, userDefined []Category) []string {
	seen := make(map[string]struct{})
	for _, name := range builtinCategories[kind] {
		seen[name] = struct{}{}
	}
	for _, c := range userDefined {
		if c.Kind != kind || c.Name == "" {
			continue
		}
		seen[c.Name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
