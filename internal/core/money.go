// Package core defines the domain model of the tracker: accounts,
// transactions, categories, money and input validation.
//
// Money is held as int64 cents so that ledger summation never drifts the
// way float64 accumulation would. Parsing and display go through
// shopspring/decimal with half-up rounding to two places.
package core

import "github.com/shopspring/decimal"

// Money is a currency amount in cents.
type Money struct {
	Cents int64
}

// ParseAmount converts a user-entered decimal string to Money.
// It returns ErrInvalidAmount for non-numeric input and for values <= 0.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o. Derived figures such as balances may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// String renders the amount with exactly two decimal places, e.g. "1000.00".
func (m Money) String() string {
	return decimal.NewFromInt(m.Cents).Shift(-2).StringFixed(2)
}
