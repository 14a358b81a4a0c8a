// Package worker processes budget-check messages on the consumer side of
// the broker: recompute spend for the affected budgets, evaluate alert
// thresholds, dispatch notifications.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// CheckWorker runs the budget progress engine for incoming check messages.
type CheckWorker struct {
	budgets *services.BudgetService
	// perCheck bounds one message's processing, mail delivery included,
	// so a stalled provider cannot block the queue forever.
	perCheck time.Duration
}

func NewCheckWorker(budgets *services.BudgetService, perCheck time.Duration) *CheckWorker {
	if perCheck <= 0 {
		perCheck = 60 * time.Second
	}
	return &CheckWorker{budgets: budgets, perCheck: perCheck}
}

// HandleBudgetCheck processes one message. Returning an error requeues
// the delivery; since checks recompute from storage they are safe to
// repeat.
func (w *CheckWorker) HandleBudgetCheck(ctx context.Context, msg *amqp.BudgetCheckMessage) error {
	slog.InfoContext(ctx, "processing budget check",
		log.FieldUserID, msg.UserID,
		log.FieldCategory, msg.Category,
		"enqueued_at", msg.Timestamp)

	checkCtx, cancel := context.WithTimeout(ctx, w.perCheck)
	defer cancel()

	if err := w.budgets.CheckBudgetsForCategory(checkCtx, msg.UserID, msg.Category, time.Now()); err != nil {
		return fmt.Errorf("check budgets for user %d category %q: %w", msg.UserID, msg.Category, err)
	}
	return nil
}
