// Package core holds the domain model of the finance tracker: budgets,
// transactions, notifications, budget period resolution and the
// spend-vs-budget progress math.
//
// This file contains money parsing helpers. Amounts are decimal.Decimal
// throughout the codebase; float64 never touches monetary values.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an exact amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative amounts are rejected; transactions and budgets only carry
// non-negative values, direction is expressed by the transaction type.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	// Monetary precision: half-up rounding on the third decimal place.
	return d.Round(2), nil
}

// SumAmounts accumulates transaction amounts without floating-point drift.
func SumAmounts(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}
