// Package services contains the business logic tying the domain model to
// storage, messaging and mail: the budget progress engine, the
// notification dispatcher, the transaction write path and reporting.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// BudgetService computes spend-vs-budget progress and drives threshold
// checks for every budget matching a transaction's category.
type BudgetService struct {
	budgets  storage.BudgetStore
	txs      storage.TransactionStore
	notifier *Notifier
}

func NewBudgetService(budgets storage.BudgetStore, txs storage.TransactionStore, notifier *Notifier) *BudgetService {
	return &BudgetService{
		budgets:  budgets,
		txs:      txs,
		notifier: notifier,
	}
}

// SumExpenses returns the exact-decimal total of expense transactions for
// (userID, category) inside the window, both bounds inclusive. Matching is
// case-sensitive. Rows are summed in Go so no float arithmetic is involved.
func (s *BudgetService) SumExpenses(ctx context.Context, userID int64, category string, period core.Period) (decimal.Decimal, error) {
	txs, err := s.txs.ListTransactions(ctx, userID, storage.TransactionFilter{
		Category: category,
		Type:     core.Expense,
		From:     period.Start,
		To:       period.End,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("list expenses: %w", err)
	}
	return core.SumAmounts(txs), nil
}

// ComputeProgress resolves the budget's current window and evaluates
// spending against it. The budget's stored start and end dates act as
// explicit overrides to the period resolver. Idempotent: recomputing with
// an unchanged transaction set yields identical results.
func (s *BudgetService) ComputeProgress(ctx context.Context, budget core.Budget, now time.Time) (core.Progress, error) {
	period := core.ResolvePeriod(budget.Period, budget.StartDate, budget.EndDate, now)

	totalSpent, err := s.SumExpenses(ctx, budget.UserID, budget.Category, period)
	if err != nil {
		return core.Progress{}, fmt.Errorf("aggregate spend for budget %d: %w", budget.ID, err)
	}

	return core.NewProgress(budget.Amount, totalSpent, period), nil
}

// CheckBudgetsForCategory recomputes progress for every budget of the user
// that matches the category and lets the notifier evaluate thresholds.
// Notification or mail failures are logged by the notifier and never
// propagate; only storage failures surface to the caller.
func (s *BudgetService) CheckBudgetsForCategory(ctx context.Context, userID int64, category string, now time.Time) error {
	budgets, err := s.budgets.ListBudgetsByCategory(ctx, userID, category)
	if err != nil {
		return fmt.Errorf("list budgets for category %q: %w", category, err)
	}
	if len(budgets) == 0 {
		return nil
	}

	for _, budget := range budgets {
		progress, err := s.ComputeProgress(ctx, budget, now)
		if err != nil {
			return err
		}
		if err := s.notifier.EvaluateAndNotify(ctx, userID, budget, progress.TotalSpent); err != nil {
			// Persistence trouble on the notification row. The budget check
			// keeps going; the triggering write must not fail because of it.
			slog.ErrorContext(ctx, "budget notification failed",
				log.FieldBudgetID, budget.ID,
				log.FieldUserID, userID,
				log.FieldCategory, category,
				log.FieldError, err)
		}
	}
	return nil
}
