package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/mail"
	"fintrack/internal/storage"
)

// Threshold bands for budget alerts, in percent of the budget amount.
var (
	approachThreshold = decimal.NewFromInt(80)
	exceedThreshold   = decimal.NewFromInt(100)
)

// Mailer is the delivery side of the notifier. mail.Chain satisfies it.
type Mailer interface {
	Send(ctx context.Context, m mail.Message) (*mail.Receipt, error)
}

// Notifier evaluates a budget's percentage spent and, on a threshold
// crossing, persists a notification row and attempts email delivery
// through a freshly built transport chain.
//
// Every qualifying evaluation creates a new notification; there is no
// per-window deduplication. Repeated edits around a threshold therefore
// re-notify each time.
type Notifier struct {
	notifications storage.NotificationStore
	users         storage.UserStore
	mailCfg       mail.ChainConfig

	// newMailer builds the per-dispatch transport chain; tests swap it.
	newMailer func(mail.ChainConfig) Mailer
}

func NewNotifier(notifications storage.NotificationStore, users storage.UserStore, mailCfg mail.ChainConfig) *Notifier {
	return &Notifier{
		notifications: notifications,
		users:         users,
		mailCfg:       mailCfg,
		newMailer:     func(cfg mail.ChainConfig) Mailer { return mail.NewChain(cfg) },
	}
}

// EvaluateAndNotify checks totalSpent against the budget's thresholds.
// Below 80% nothing happens. A missing user or empty email address logs
// and returns without side effects. The returned error is non-nil only
// when persisting the notification row fails; email failures are logged
// and swallowed here.
func (n *Notifier) EvaluateAndNotify(ctx context.Context, userID int64, budget core.Budget, totalSpent decimal.Decimal) error {
	progress := core.NewProgress(budget.Amount, totalSpent, core.Period{})
	pct := progress.PercentageSpent

	if pct.LessThan(approachThreshold) {
		return nil
	}

	user, err := n.users.GetUserByID(ctx, userID)
	if err != nil || user.Email == "" {
		slog.WarnContext(ctx, "cannot send budget notification: user missing or has no email",
			log.FieldUserID, userID,
			log.FieldBudgetID, budget.ID,
			log.FieldError, err)
		return nil
	}

	var message, subject string
	if pct.LessThan(exceedThreshold) {
		message = fmt.Sprintf("You've used %s%% of your %s budget for this %s period.",
			pct.StringFixed(2), budget.Category, budget.Period)
		subject = "Budget Alert: Approaching your limit"
	} else {
		_, overPct := progress.Overage(budget.Amount)
		message = fmt.Sprintf("Alert: You've exceeded your %s budget for this %s period! You've spent %s which is %s%% over your budget of %s.",
			budget.Category, budget.Period,
			totalSpent.StringFixed(2), overPct.StringFixed(2), budget.Amount.StringFixed(2))
		subject = "Budget Alert: You've exceeded your budget"
	}

	budgetID := budget.ID
	notification := &core.Notification{
		UserID:            userID,
		Type:              core.NotificationBudgetOverrun,
		Message:           message,
		RelatedEntityID:   &budgetID,
		RelatedEntityType: "Budget",
	}
	if err := n.notifications.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	slog.InfoContext(ctx, "budget notification created",
		log.FieldNotificationID, notification.ID,
		log.FieldUserID, userID,
		log.FieldBudgetID, budget.ID,
		log.FieldPercentSpent, pct.StringFixed(2))

	n.sendEmail(ctx, user.Email, subject, message)
	return nil
}

// sendEmail delivers best-effort through the fallback chain. All failures
// end here: logged, never propagated.
func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) {
	receipt, err := n.newMailer(n.mailCfg).Send(ctx, mail.Message{
		To:      to,
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		slog.ErrorContext(ctx, "budget alert email not delivered",
			"to", to,
			"subject", subject,
			log.FieldError, err)
		return
	}
	if receipt.PreviewURL != "" {
		slog.InfoContext(ctx, "budget alert email delivered to test sink",
			log.FieldProvider, receipt.Provider,
			"preview_url", receipt.PreviewURL)
	}
}
