package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// BudgetCheckPublisher hands a budget check off to the worker through the
// message broker. amqp.Client implements it.
type BudgetCheckPublisher interface {
	PublishBudgetCheck(ctx context.Context, userID int64, category string) error
}

// TransactionService owns the transaction write path. Expense writes
// trigger a budget check for the transaction's category: through the
// broker when one is configured, otherwise in a bounded background
// goroutine. Either way the check never delays or fails the write.
type TransactionService struct {
	txs       storage.TransactionStore
	checker   *BudgetService
	publisher BudgetCheckPublisher
	// checkTimeout bounds the in-process fallback check, mail round-trips
	// included.
	checkTimeout time.Duration
}

func NewTransactionService(txs storage.TransactionStore, checker *BudgetService, publisher BudgetCheckPublisher, checkTimeout time.Duration) *TransactionService {
	if checkTimeout <= 0 {
		checkTimeout = 30 * time.Second
	}
	return &TransactionService{
		txs:          txs,
		checker:      checker,
		publisher:    publisher,
		checkTimeout: checkTimeout,
	}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, tx *core.Transaction) error {
	if err := s.txs.CreateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "transaction created",
		log.FieldTransactionID, tx.ID,
		log.FieldUserID, tx.UserID,
		"type", tx.Type,
		log.FieldCategory, tx.Category,
		log.FieldAmount, tx.Amount.String())

	s.triggerBudgetCheck(ctx, *tx)
	return nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, tx *core.Transaction) error {
	if err := s.txs.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	slog.InfoContext(ctx, "transaction updated",
		log.FieldTransactionID, tx.ID,
		log.FieldUserID, tx.UserID,
		log.FieldCategory, tx.Category)

	s.triggerBudgetCheck(ctx, *tx)
	return nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	return s.txs.DeleteTransaction(ctx, userID, id)
}

func (s *TransactionService) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.txs.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) ListTransactions(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	return s.txs.ListTransactions(ctx, userID, filter)
}

// triggerBudgetCheck dispatches the check-and-notify sequence for an
// expense write. Income never affects budgets. Failures are logged only;
// the caller's write has already succeeded.
func (s *TransactionService) triggerBudgetCheck(ctx context.Context, tx core.Transaction) {
	if tx.Type != core.Expense {
		return
	}

	if s.publisher != nil {
		if err := s.publisher.PublishBudgetCheck(ctx, tx.UserID, tx.Category); err == nil {
			return
		} else {
			slog.ErrorContext(ctx, "failed to publish budget check, falling back to in-process check",
				log.FieldUserID, tx.UserID,
				log.FieldCategory, tx.Category,
				log.FieldError, err)
		}
	}

	// In-process fallback. Detached from the request context so a finished
	// response does not cancel the check, but bounded so a stalled mail
	// provider cannot leak the goroutine.
	go func() {
		checkCtx, cancel := context.WithTimeout(context.Background(), s.checkTimeout)
		defer cancel()
		if err := s.checker.CheckBudgetsForCategory(checkCtx, tx.UserID, tx.Category, time.Now()); err != nil {
			slog.ErrorContext(checkCtx, "in-process budget check failed",
				log.FieldUserID, tx.UserID,
				log.FieldCategory, tx.Category,
				log.FieldError, err)
		}
	}()
}
