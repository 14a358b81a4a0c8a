// Package mail implements best-effort email delivery through an ordered
// chain of SMTP transports: SendGrid (API key relay), a generic
// username/password SMTP server, and an auto-provisioned Ethereal test
// account as the terminal fallback.
//
// Every transport is constructed per chain instance from explicit
// configuration; there is no process-wide transporter cache.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
)

// Message is the provider-independent email payload. HTML is optional;
// when empty a branded HTML variant is derived from Text.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Receipt identifies a successful delivery. PreviewURL is only set by the
// ephemeral test transport.
type Receipt struct {
	Provider   string
	MessageID  string
	PreviewURL string
}

// Transport is one provider in the fallback chain. Verify must be cheap
// enough to run before every send; it dials and authenticates without
// transmitting a message.
type Transport interface {
	Name() string
	Verify(ctx context.Context) error
	Send(ctx context.Context, m Message) (*Receipt, error)
}

// ErrAllTransportsFailed is the terminal error when no provider in the
// chain verifies. Callers on the notification path log it and degrade to
// "no email sent"; it must never abort the triggering write.
var ErrAllTransportsFailed = errors.New("all mail transports failed verification")

func (m Message) htmlBody() string {
	if m.HTML != "" {
		return m.HTML
	}
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 5px;">
  <h2 style="color: #3b82f6;">Finance Tracker Notification</h2>
  <p style="font-size: 16px; line-height: 1.5; color: #333;">%s</p>
  <hr style="border: 0; height: 1px; background: #eee; margin: 20px 0;">
  <p style="font-size: 12px; color: #666;">This is an automated message from your Finance Tracker application.</p>
</div>`, html.EscapeString(m.Text))
}
