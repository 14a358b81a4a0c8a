// Package scheduler sweeps recurring budgets on a cron schedule so alerts
// still fire for windows that roll over without any new transaction
// (a monthly budget entering a new month, for example).
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type BudgetSweeper struct {
	cronEngine *cron.Cron
	budgets    storage.BudgetStore
	service    *services.BudgetService
	spec       string
	// sweepTimeout bounds one full sweep across all users.
	sweepTimeout time.Duration
}

func NewBudgetSweeper(budgets storage.BudgetStore, service *services.BudgetService, spec string, sweepTimeout time.Duration) *BudgetSweeper {
	if sweepTimeout <= 0 {
		sweepTimeout = 5 * time.Minute
	}
	return &BudgetSweeper{
		cronEngine:   cron.New(),
		budgets:      budgets,
		service:      service,
		spec:         spec,
		sweepTimeout: sweepTimeout,
	}
}

func (s *BudgetSweeper) Start() error {
	if _, err := s.cronEngine.AddFunc(s.spec, s.runSweep); err != nil {
		return err
	}
	s.cronEngine.Start()
	slog.Info("budget sweep scheduled", "spec", s.spec)
	return nil
}

// Stop halts the cron engine and waits for a running sweep to finish.
func (s *BudgetSweeper) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
}

func (s *BudgetSweeper) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.sweepTimeout)
	defer cancel()

	started := time.Now()
	budgets, err := s.budgets.ListRecurringBudgets(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "budget sweep failed to list budgets", log.FieldError, err)
		return
	}

	// One check covers every budget of a (user, category) pair; visiting
	// the pair again would re-evaluate and re-notify.
	type pair struct {
		userID   int64
		category string
	}
	seen := make(map[pair]bool)

	var checked, failed int
	for _, budget := range budgets {
		key := pair{budget.UserID, budget.Category}
		if seen[key] {
			continue
		}
		seen[key] = true
		if err := s.service.CheckBudgetsForCategory(ctx, budget.UserID, budget.Category, time.Now()); err != nil {
			slog.ErrorContext(ctx, "budget sweep check failed",
				log.FieldBudgetID, budget.ID,
				log.FieldUserID, budget.UserID,
				log.FieldCategory, budget.Category,
				log.FieldError, err)
			failed++
			continue
		}
		checked++
	}

	slog.InfoContext(ctx, "budget sweep finished",
		"budgets", len(budgets),
		"checked", checked,
		"failed", failed,
		"duration", time.Since(started))
}
