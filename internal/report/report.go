// Package report derives balances, category breakdowns and time-bucketed
// series from a transaction snapshot. Every function here is a pure
// function of its input slice; nothing reads storage or mutates state.
package report

import (
	"sort"

	"mykhata/internal/core"
)

const (
	Day   Period = "Day"
	Month Period = "Month"
	Year  Period = "Year"
)

type (
	// Period selects the truncation granularity for time-series buckets.
	Period string

	Totals struct {
		Income          core.Money
		Expense         core.Money
		LoanTaken       core.Money
		InstallmentPaid core.Money
		Balance         core.Money
	}

	CategoryAmount struct {
		Category string
		Amount   core.Money
	}

	// Point is one bucket of a single-kind series.
	Point struct {
		Bucket string
		Amount core.Money
	}

	// CategoryPoint is one (bucket, category) row of the per-period
	// category spending series.
	CategoryPoint struct {
		Bucket   string
		Category string
		Amount   core.Money
	}

	// SeriesPoint is one bucket row of a dual-kind series, tagged with the
	// kind it sums.
	SeriesPoint struct {
		Bucket string
		Kind   core.Kind
		Amount core.Money
	}
)

// ParsePeriod maps a report filter value to a Period, defaulting to Month.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case Day, Year:
		return Period(s)
	}
	return Month
}

// Bucket truncates a date to the period granularity: "2006-01-02" for Day,
// "2006-01" for Month, "2006" for Year. The formats sort chronologically
// as plain strings.
func (p Period) Bucket(d core.Date) string {
	switch p {
	case Day:
		return d.Format("2006-01-02")
	case Year:
		return d.Format("2006")
	default:
		return d.Format("2006-01")
	}
}

// Sum computes the headline figures for a snapshot. The balance is
// income - expense - installments paid + loans taken. An empty snapshot
// yields all-zero totals.
func Sum(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Kind {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		case core.Loan:
			t.LoanTaken = t.LoanTaken.Add(tx.Amount)
		case core.Installment:
			t.InstallmentPaid = t.InstallmentPaid.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense).Sub(t.InstallmentPaid).Add(t.LoanTaken)
	return t
}

// NetLoans is the outstanding figure shown on the wallet screen:
// loans taken minus installments paid.
func (t Totals) NetLoans() core.Money {
	return t.LoanTaken.Sub(t.InstallmentPaid)
}

// ExpenseByCategory sums Expense transactions per category. Categories
// without any expense row are absent from the result. Rows are ordered by
// descending amount, category name breaking ties, to match the breakdown
// chart's ordering.
func ExpenseByCategory(txs []core.Transaction) []CategoryAmount {
	sums := make(map[string]core.Money)
	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}
	out := make([]CategoryAmount, 0, len(sums))
	for cat, amount := range sums {
		out = append(out, CategoryAmount{Category: cat, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ExpenseByCategorySeries buckets Expense transactions by the period and
// sums each (bucket, category) pair. Rows are in ascending bucket order;
// within a bucket they follow the ExpenseByCategory ordering, descending
// amount with the category name breaking ties.
func ExpenseByCategorySeries(txs []core.Transaction, p Period) []CategoryPoint {
	type key struct {
		bucket   string
		category string
	}
	sums := make(map[key]core.Money)
	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		k := key{bucket: p.Bucket(tx.Date), category: tx.Category}
		sums[k] = sums[k].Add(tx.Amount)
	}
	out := make([]CategoryPoint, 0, len(sums))
	for k, amount := range sums {
		out = append(out, CategoryPoint{Bucket: k.bucket, Category: k.category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TimeSeries buckets transactions of one kind by the period and sums each
// bucket. Buckets with no matching transactions are omitted, not
// zero-filled. The result is in ascending chronological order.
func TimeSeries(txs []core.Transaction, kind core.Kind, p Period) []Point {
	sums := make(map[string]core.Money)
	for _, tx := range txs {
		if tx.Kind != kind {
			continue
		}
		b := p.Bucket(tx.Date)
		sums[b] = sums[b].Add(tx.Amount)
	}
	out := make([]Point, 0, len(sums))
	for b, amount := range sums {
		out = append(out, Point{Bucket: b, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out
}

// IncomeVsExpenseSeries unions the Income and Expense series by bucket,
// tagging each row with its kind. It feeds the dual-line report chart.
func IncomeVsExpenseSeries(txs []core.Transaction, p Period) []SeriesPoint {
	return dualSeries(txs, core.Income, core.Expense, p)
}

// LoanVsInstallmentSeries is the loan-taken vs installment-paid
// counterpart of IncomeVsExpenseSeries.
func LoanVsInstallmentSeries(txs []core.Transaction, p Period) []SeriesPoint {
	return dualSeries(txs, core.Loan, core.Installment, p)
}

func dualSeries(txs []core.Transaction, first, second core.Kind, p Period) []SeriesPoint {
	var out []SeriesPoint
	for _, pt := range TimeSeries(txs, first, p) {
		out = append(out, SeriesPoint{Bucket: pt.Bucket, Kind: first, Amount: pt.Amount})
	}
	for _, pt := range TimeSeries(txs, second, p) {
		out = append(out, SeriesPoint{Bucket: pt.Bucket, Kind: second, Amount: pt.Amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		// first kind sorts ahead of second within a bucket
		return out[i].Kind == first && out[j].Kind == second
	})
	return out
}
