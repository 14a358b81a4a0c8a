// Package storage provides the persistence adapters behind the Store
// ports: an embedded SQLite backend (default) and a Postgres backend.
//
// Monetary amounts cross the SQL boundary as strings and are parsed back
// into decimals; no float conversion happens anywhere in this package.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Transactions

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx *core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, amount, type, category, description, date, receipt_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Amount.String(), string(tx.Type), tx.Category, tx.Description, tx.Date, tx.ReceiptURL)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	tx.ID = id
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount, type, category, description, date, receipt_url, created_at
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx *core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, type = ?, category = ?, description = ?, date = ?, receipt_url = ?
		WHERE id = ? AND user_id = ?`,
		tx.Amount.String(), string(tx.Type), tx.Category, tx.Description, tx.Date, tx.ReceiptURL,
		tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRows(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRows(res)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]core.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, category, description, date, receipt_url, created_at
		FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if !filter.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, filter.To)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Budgets

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b *core.Budget) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, name, category, amount, period, start_date, end_date, is_recurring, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Category, b.Amount.String(), string(b.Period),
		b.StartDate, nullableTime(b.EndDate), b.IsRecurring, b.Description)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("budget id: %w", err)
	}
	b.ID = id
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, budgetColumns+` WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Budget{}, ErrNotFound
		}
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b *core.Budget) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets
		SET name = ?, category = ?, amount = ?, period = ?, start_date = ?, end_date = ?, is_recurring = ?, description = ?
		WHERE id = ? AND user_id = ?`,
		b.Name, b.Category, b.Amount.String(), string(b.Period), b.StartDate,
		nullableTime(b.EndDate), b.IsRecurring, b.Description, b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRows(res)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRows(res)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	return r.queryBudgets(ctx, budgetColumns+` WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (r *SQLiteRepository) ListBudgetsByCategory(ctx context.Context, userID int64, category string) ([]core.Budget, error) {
	return r.queryBudgets(ctx, budgetColumns+` WHERE user_id = ? AND category = ? ORDER BY id`, userID, category)
}

func (r *SQLiteRepository) ListRecurringBudgets(ctx context.Context) ([]core.Budget, error) {
	return r.queryBudgets(ctx, budgetColumns+` WHERE is_recurring = 1 ORDER BY user_id, id`)
}

func (r *SQLiteRepository) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// Notifications

func (r *SQLiteRepository) CreateNotification(ctx context.Context, n *core.Notification) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, type, message, is_read, related_entity_id, related_entity_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, string(n.Type), n.Message, n.IsRead, nullableID(n.RelatedEntityID), n.RelatedEntityType)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("notification id: %w", err)
	}
	n.ID = id
	return nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]core.Notification, error) {
	query := `
		SELECT id, user_id, type, message, is_read, related_entity_id, related_entity_type, created_at
		FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []core.Notification
	for rows.Next() {
		var (
			n         core.Notification
			ntype     string
			relatedID sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &ntype, &n.Message, &n.IsRead,
			&relatedID, &n.RelatedEntityType, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = core.NotificationType(ntype)
		if relatedID.Valid {
			id := relatedID.Int64
			n.RelatedEntityID = &id
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireRows(res)
}

func (r *SQLiteRepository) CountUnreadNotifications(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// Users

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name FROM users WHERE id = ?`, id).Scan(&u.ID, &u.Email, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, ErrNotFound
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Scan helpers shared with the Postgres repository.

const budgetColumns = `
	SELECT id, user_id, name, category, amount, period, start_date, end_date, is_recurring, description, created_at
	FROM budgets`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx     core.Transaction
		amount string
		ttype  string
	)
	if err := row.Scan(&tx.ID, &tx.UserID, &amount, &ttype, &tx.Category,
		&tx.Description, &tx.Date, &tx.ReceiptURL, &tx.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	tx.Amount = d
	tx.Type = core.TransactionType(ttype)
	return tx, nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b       core.Budget
		amount  string
		period  string
		endDate sql.NullTime
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Category, &amount, &period,
		&b.StartDate, &endDate, &b.IsRecurring, &b.Description, &b.CreatedAt); err != nil {
		return core.Budget{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	b.Amount = d
	b.Period = core.PeriodKind(period)
	if endDate.Valid {
		t := endDate.Time
		b.EndDate = &t
	}
	return b, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func requireRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
