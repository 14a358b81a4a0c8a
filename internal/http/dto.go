package http

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Wire DTOs. Dates travel as ISO-8601 strings (RFC 3339), amounts as
// decimal strings: shopspring decimals marshal quoted, which keeps them
// exact across the wire.

type budgetDTO struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Period      string          `json:"period"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	IsRecurring bool            `json:"isRecurring"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type transactionDTO struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	ReceiptURL  string          `json:"receiptUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type notificationDTO struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"userId"`
	Type              string    `json:"type"`
	Message           string    `json:"message"`
	IsRead            bool      `json:"isRead"`
	RelatedEntityID   *int64    `json:"relatedEntityId,omitempty"`
	RelatedEntityType string    `json:"relatedEntityType,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type progressDTO struct {
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	Remaining       decimal.Decimal `json:"remaining"`
	PercentageSpent decimal.Decimal `json:"percentageSpent"`
	IsOverspent     bool            `json:"isOverspent"`
}

type periodDTO struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// budgetProgressResponse is the budget-detail read shape:
// {budget, progress, period}.
type budgetProgressResponse struct {
	Budget   budgetDTO   `json:"budget"`
	Progress progressDTO `json:"progress"`
	Period   periodDTO   `json:"period"`
}

type monthFlowDTO struct {
	Month   string          `json:"month"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type categoryTotalDTO struct {
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

type categoryReportDTO struct {
	Total decimal.Decimal    `json:"total"`
	Items []categoryTotalDTO `json:"items"`
}

type cashFlowReportDTO struct {
	Months       []monthFlowDTO  `json:"months"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Net          decimal.Decimal `json:"net"`
}

func toBudgetDTO(b core.Budget) budgetDTO {
	return budgetDTO{
		ID:          b.ID,
		UserID:      b.UserID,
		Name:        b.Name,
		Category:    b.Category,
		Amount:      b.Amount,
		Period:      string(b.Period),
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		IsRecurring: b.IsRecurring,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
	}
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date,
		ReceiptURL:  tx.ReceiptURL,
		CreatedAt:   tx.CreatedAt,
	}
}

func toNotificationDTO(n core.Notification) notificationDTO {
	return notificationDTO{
		ID:                n.ID,
		UserID:            n.UserID,
		Type:              string(n.Type),
		Message:           n.Message,
		IsRead:            n.IsRead,
		RelatedEntityID:   n.RelatedEntityID,
		RelatedEntityType: n.RelatedEntityType,
		CreatedAt:         n.CreatedAt,
	}
}

func toMonthFlowDTOs(months []core.MonthFlow) []monthFlowDTO {
	out := make([]monthFlowDTO, len(months))
	for i, m := range months {
		out[i] = monthFlowDTO{
			Month:   time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			Income:  m.Income,
			Expense: m.Expense,
			Net:     m.Net,
		}
	}
	return out
}
