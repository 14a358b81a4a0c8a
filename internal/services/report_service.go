package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// ReportService aggregates transactions into monthly, category and
// cash-flow views. All arithmetic is decimal; grouping happens in Go over
// the rows the store returns, so both backends report identically.
type ReportService struct {
	txs storage.TransactionStore
}

func NewReportService(txs storage.TransactionStore) *ReportService {
	return &ReportService{txs: txs}
}

// MonthlyReport returns income/expense/net per calendar month inside the
// range, in chronological order. Months without transactions are omitted.
func (s *ReportService) MonthlyReport(ctx context.Context, userID int64, from, to time.Time) ([]core.MonthFlow, error) {
	txs, err := s.txs.ListTransactions(ctx, userID, storage.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return groupByMonth(txs), nil
}

// CategoryReport totals expenses per category over the range, descending
// by amount, with each category's share of the overall spend.
func (s *ReportService) CategoryReport(ctx context.Context, userID int64, from, to time.Time) (core.CategoryReport, error) {
	txs, err := s.txs.ListTransactions(ctx, userID, storage.TransactionFilter{
		Type: core.Expense,
		From: from,
		To:   to,
	})
	if err != nil {
		return core.CategoryReport{}, fmt.Errorf("list expenses: %w", err)
	}

	byCategory := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, tx := range txs {
		byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
		total = total.Add(tx.Amount)
	}

	report := core.CategoryReport{Total: total}
	for category, sum := range byCategory {
		item := core.CategoryTotal{Category: category, Total: sum}
		if total.IsPositive() {
			item.Percentage = sum.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
		}
		report.Items = append(report.Items, item)
	}
	sort.Slice(report.Items, func(i, j int) bool {
		if !report.Items[i].Total.Equal(report.Items[j].Total) {
			return report.Items[i].Total.GreaterThan(report.Items[j].Total)
		}
		return report.Items[i].Category < report.Items[j].Category
	})
	return report, nil
}

// CashFlowReport is the monthly flow plus totals for the whole range.
func (s *ReportService) CashFlowReport(ctx context.Context, userID int64, from, to time.Time) (core.CashFlowReport, error) {
	txs, err := s.txs.ListTransactions(ctx, userID, storage.TransactionFilter{From: from, To: to})
	if err != nil {
		return core.CashFlowReport{}, fmt.Errorf("list transactions: %w", err)
	}

	report := core.CashFlowReport{Months: groupByMonth(txs)}
	for _, m := range report.Months {
		report.TotalIncome = report.TotalIncome.Add(m.Income)
		report.TotalExpense = report.TotalExpense.Add(m.Expense)
	}
	report.Net = report.TotalIncome.Sub(report.TotalExpense)
	return report, nil
}

func groupByMonth(txs []core.Transaction) []core.MonthFlow {
	type ym struct {
		year  int
		month time.Month
	}
	byMonth := make(map[ym]*core.MonthFlow)
	for _, tx := range txs {
		key := ym{tx.Date.Year(), tx.Date.Month()}
		flow, ok := byMonth[key]
		if !ok {
			flow = &core.MonthFlow{Year: key.year, Month: key.month}
			byMonth[key] = flow
		}
		switch tx.Type {
		case core.Income:
			flow.Income = flow.Income.Add(tx.Amount)
		case core.Expense:
			flow.Expense = flow.Expense.Add(tx.Amount)
		}
	}

	months := make([]core.MonthFlow, 0, len(byMonth))
	for _, flow := range byMonth {
		flow.Net = flow.Income.Sub(flow.Expense)
		months = append(months, *flow)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})
	return months
}
