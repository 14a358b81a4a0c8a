package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthFlow is one calendar month's income, expense and net totals.
type MonthFlow struct {
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// CategoryTotal is one category's expense total and its share of the
// overall spend, in percent.
type CategoryTotal struct {
	Category   string
	Total      decimal.Decimal
	Percentage decimal.Decimal
}

// CategoryReport aggregates expenses per category over a date range,
// largest first.
type CategoryReport struct {
	Total decimal.Decimal
	Items []CategoryTotal
}

// CashFlowReport is the per-month flow plus range summary.
type CashFlowReport struct {
	Months       []MonthFlow
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
}
