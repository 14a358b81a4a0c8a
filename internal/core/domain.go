package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily   PeriodKind = "daily"
	Weekly  PeriodKind = "weekly"
	Monthly PeriodKind = "monthly"
	Yearly  PeriodKind = "yearly"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	NotificationBudgetOverrun NotificationType = "budget_overrun"
	NotificationSystem        NotificationType = "system"
	NotificationReminder      NotificationType = "reminder"
)

type (
	PeriodKind       string
	TransactionType  string
	NotificationType string

	// Budget caps spending for one category over a recurring window.
	// The link to transactions is deliberately implicit: matching happens
	// on (UserID, Category) string equality, there is no foreign key.
	Budget struct {
		ID          int64
		UserID      int64
		Name        string
		Category    string
		Amount      decimal.Decimal
		Period      PeriodKind
		StartDate   time.Time
		EndDate     *time.Time
		IsRecurring bool
		Description string
		CreatedAt   time.Time
	}

	Transaction struct {
		ID          int64
		UserID      int64
		Amount      decimal.Decimal
		Type        TransactionType
		Category    string
		Description string
		Date        time.Time
		ReceiptURL  string
		CreatedAt   time.Time
	}

	Notification struct {
		ID                int64
		UserID            int64
		Type              NotificationType
		Message           string
		IsRead            bool
		RelatedEntityID   *int64
		RelatedEntityType string
		CreatedAt         time.Time
	}

	User struct {
		ID    int64
		Email string
		Name  string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidDates  = errors.New("end date before start date")
	ErrMissingDate   = errors.New("missing date")
)

func (k PeriodKind) IsValid() bool {
	switch k {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	// Zero-amount budgets would make percentage-spent undefined, reject
	// them at the boundary instead of special-casing every division.
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !b.Period.IsValid() {
		return ErrInvalidPeriod
	}
	if b.StartDate.IsZero() {
		return ErrMissingDate
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return ErrInvalidDates
	}
	if len(b.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if len(b.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
