package core

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Progress is the computed spend-vs-budget state for one window.
type Progress struct {
	TotalSpent      decimal.Decimal
	Remaining       decimal.Decimal
	PercentageSpent decimal.Decimal
	IsOverspent     bool
	Period          Period
}

// NewProgress computes progress from a budget amount and the spend total
// for its window. Pure arithmetic: remaining = amount - spent (may go
// negative), percentage = spent/amount*100, overspent iff spent > amount.
//
// A non-positive amount cannot occur through validated budgets, but the
// division is still guarded: zero spend reads as 0%, any spend reads as
// fully exceeded. No NaN or infinity can escape this function.
func NewProgress(amount, totalSpent decimal.Decimal, period Period) Progress {
	p := Progress{
		TotalSpent: totalSpent,
		Remaining:  amount.Sub(totalSpent),
		Period:     period,
	}
	switch {
	case amount.IsPositive():
		p.PercentageSpent = totalSpent.Div(amount).Mul(hundred).Round(4)
		p.IsOverspent = totalSpent.GreaterThan(amount)
	case totalSpent.IsPositive():
		p.PercentageSpent = hundred
		p.IsOverspent = true
	default:
		p.PercentageSpent = decimal.Zero
	}
	return p
}

// Overage returns how far past 100% the window is, as an absolute amount
// and a percentage over the limit. Both are zero while within budget.
func (p Progress) Overage(amount decimal.Decimal) (over decimal.Decimal, overPct decimal.Decimal) {
	if !p.IsOverspent {
		return decimal.Zero, decimal.Zero
	}
	over = p.TotalSpent.Sub(amount)
	overPct = p.PercentageSpent.Sub(hundred)
	if overPct.IsNegative() {
		overPct = decimal.Zero
	}
	return over, overPct
}
