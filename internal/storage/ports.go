package storage

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/core"
)

// ErrNotFound is returned when a row does not exist or belongs to a
// different user. Callers treat both cases identically.
var ErrNotFound = errors.New("not found")

// TransactionFilter narrows ListTransactions. Zero values mean "no
// constraint"; Category matching is exact and case-sensitive, date bounds
// are inclusive on both ends.
type TransactionFilter struct {
	Category string
	Type     core.TransactionType
	From     time.Time
	To       time.Time
}

// Ports for the persistence adapters. Services depend on these small
// interfaces, never on a concrete repository.
type (
	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx *core.Transaction) error
		GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx *core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id int64) error
		ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]core.Transaction, error)
	}

	BudgetStore interface {
		CreateBudget(ctx context.Context, b *core.Budget) error
		GetBudget(ctx context.Context, userID, id int64) (core.Budget, error)
		UpdateBudget(ctx context.Context, b *core.Budget) error
		DeleteBudget(ctx context.Context, userID, id int64) error
		ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
		ListBudgetsByCategory(ctx context.Context, userID int64, category string) ([]core.Budget, error)
		// ListRecurringBudgets spans all users; the scheduler sweep uses it.
		ListRecurringBudgets(ctx context.Context) ([]core.Budget, error)
	}

	NotificationStore interface {
		CreateNotification(ctx context.Context, n *core.Notification) error
		ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]core.Notification, error)
		MarkNotificationRead(ctx context.Context, userID, id int64) error
		CountUnreadNotifications(ctx context.Context, userID int64) (int64, error)
	}

	UserStore interface {
		GetUserByID(ctx context.Context, id int64) (core.User, error)
	}
)

// Store is the full persistence surface a backend must provide.
type Store interface {
	TransactionStore
	BudgetStore
	NotificationStore
	UserStore
	Close() error
}
