package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/mail"
	"fintrack/internal/storage"
)

// fakeStore is an in-memory storage.Store for service tests. Error fields
// inject failures per concern.
type fakeStore struct {
	transactions  []core.Transaction
	budgets       []core.Budget
	notifications []core.Notification
	users         map[int64]core.User

	listTxErr     error
	listBudgetErr error
	createNotErr  error

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]core.User{}}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx *core.Transaction) error {
	tx.ID = f.id()
	f.transactions = append(f.transactions, *tx)
	return nil
}

func (f *fakeStore) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	for _, tx := range f.transactions {
		if tx.ID == id && tx.UserID == userID {
			return tx, nil
		}
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (f *fakeStore) UpdateTransaction(_ context.Context, tx *core.Transaction) error {
	for i, existing := range f.transactions {
		if existing.ID == tx.ID && existing.UserID == tx.UserID {
			f.transactions[i] = *tx
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DeleteTransaction(_ context.Context, userID, id int64) error {
	for i, tx := range f.transactions {
		if tx.ID == id && tx.UserID == userID {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) ListTransactions(_ context.Context, userID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	if f.listTxErr != nil {
		return nil, f.listTxErr
	}
	var out []core.Transaction
	for _, tx := range f.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && tx.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && tx.Date.After(filter.To) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeStore) CreateBudget(_ context.Context, b *core.Budget) error {
	b.ID = f.id()
	f.budgets = append(f.budgets, *b)
	return nil
}

func (f *fakeStore) GetBudget(_ context.Context, userID, id int64) (core.Budget, error) {
	for _, b := range f.budgets {
		if b.ID == id && b.UserID == userID {
			return b, nil
		}
	}
	return core.Budget{}, storage.ErrNotFound
}

func (f *fakeStore) UpdateBudget(_ context.Context, b *core.Budget) error {
	for i, existing := range f.budgets {
		if existing.ID == b.ID && existing.UserID == b.UserID {
			f.budgets[i] = *b
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DeleteBudget(_ context.Context, userID, id int64) error {
	for i, b := range f.budgets {
		if b.ID == id && b.UserID == userID {
			f.budgets = append(f.budgets[:i], f.budgets[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) ListBudgets(_ context.Context, userID int64) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range f.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListBudgetsByCategory(_ context.Context, userID int64, category string) ([]core.Budget, error) {
	if f.listBudgetErr != nil {
		return nil, f.listBudgetErr
	}
	var out []core.Budget
	for _, b := range f.budgets {
		if b.UserID == userID && b.Category == category {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRecurringBudgets(_ context.Context) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range f.budgets {
		if b.IsRecurring {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateNotification(_ context.Context, n *core.Notification) error {
	if f.createNotErr != nil {
		return f.createNotErr
	}
	n.ID = f.id()
	n.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeStore) ListNotifications(_ context.Context, userID int64, unreadOnly bool) ([]core.Notification, error) {
	var out []core.Notification
	for _, n := range f.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, userID, id int64) error {
	for i, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) CountUnreadNotifications(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (core.User, error) {
	u, ok := f.users[id]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) Close() error { return nil }

// fakeMailer records every message handed to the chain.
type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m mail.Message) (*mail.Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, m)
	return &mail.Receipt{Provider: "fake"}, nil
}

// newTestNotifier wires a Notifier whose chain is the given mailer.
func newTestNotifier(store *fakeStore, mailer Mailer) *Notifier {
	n := NewNotifier(store, store, mail.ChainConfig{})
	n.newMailer = func(mail.ChainConfig) Mailer { return mailer }
	return n
}
