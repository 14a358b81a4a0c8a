package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// PostgresRepository is the pgx-backed Store used when DATA_BACKEND is
// postgres. Amounts are NUMERIC columns, selected back as text so the
// decimal round-trip stays exact.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// Transactions

func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx *core.Transaction) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (user_id, amount, type, category, description, date, receipt_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		tx.UserID, tx.Amount.String(), string(tx.Type), tx.Category, tx.Description, tx.Date, tx.ReceiptURL).
		Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, amount::text, type, category, description, date, receipt_url, created_at
		FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Transaction{}, ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *PostgresRepository) UpdateTransaction(ctx context.Context, tx *core.Transaction) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transactions
		SET amount = $1, type = $2, category = $3, description = $4, date = $5, receipt_url = $6
		WHERE id = $7 AND user_id = $8`,
		tx.Amount.String(), string(tx.Type), tx.Category, tx.Description, tx.Date, tx.ReceiptURL,
		tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]core.Transaction, error) {
	query := `
		SELECT id, user_id, amount::text, type, category, description, date, receipt_url, created_at
		FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
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

const pgBudgetColumns = `
	SELECT id, user_id, name, category, amount::text, period, start_date, end_date, is_recurring, description, created_at
	FROM budgets`

func (r *PostgresRepository) CreateBudget(ctx context.Context, b *core.Budget) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (user_id, name, category, amount, period, start_date, end_date, is_recurring, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		b.UserID, b.Name, b.Category, b.Amount.String(), string(b.Period),
		b.StartDate, b.EndDate, b.IsRecurring, b.Description).
		Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetBudget(ctx context.Context, userID, id int64) (core.Budget, error) {
	row := r.pool.QueryRow(ctx, pgBudgetColumns+` WHERE id = $1 AND user_id = $2`, id, userID)
	b, err := scanPgBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Budget{}, ErrNotFound
		}
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) UpdateBudget(ctx context.Context, b *core.Budget) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE budgets
		SET name = $1, category = $2, amount = $3, period = $4, start_date = $5, end_date = $6, is_recurring = $7, description = $8
		WHERE id = $9 AND user_id = $10`,
		b.Name, b.Category, b.Amount.String(), string(b.Period), b.StartDate,
		b.EndDate, b.IsRecurring, b.Description, b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	return r.queryBudgets(ctx, pgBudgetColumns+` WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *PostgresRepository) ListBudgetsByCategory(ctx context.Context, userID int64, category string) ([]core.Budget, error) {
	return r.queryBudgets(ctx, pgBudgetColumns+` WHERE user_id = $1 AND category = $2 ORDER BY id`, userID, category)
}

func (r *PostgresRepository) ListRecurringBudgets(ctx context.Context) ([]core.Budget, error) {
	return r.queryBudgets(ctx, pgBudgetColumns+` WHERE is_recurring ORDER BY user_id, id`)
}

func (r *PostgresRepository) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanPgBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func scanPgBudget(row rowScanner) (core.Budget, error) {
	var (
		b       core.Budget
		amount  string
		period  string
		endDate *time.Time
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
	b.EndDate = endDate
	return b, nil
}

// Notifications

func (r *PostgresRepository) CreateNotification(ctx context.Context, n *core.Notification) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, message, is_read, related_entity_id, related_entity_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		n.UserID, string(n.Type), n.Message, n.IsRead, n.RelatedEntityID, n.RelatedEntityType).
		Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]core.Notification, error) {
	query := `
		SELECT id, user_id, type, message, is_read, related_entity_id, related_entity_type, created_at
		FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []core.Notification
	for rows.Next() {
		var (
			n     core.Notification
			ntype string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &ntype, &n.Message, &n.IsRead,
			&n.RelatedEntityID, &n.RelatedEntityType, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = core.NotificationType(ntype)
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CountUnreadNotifications(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// Users

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name FROM users WHERE id = $1`, id).Scan(&u.ID, &u.Email, &u.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.User{}, ErrNotFound
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
