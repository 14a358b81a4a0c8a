package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const sendGridHost = "smtp.sendgrid.net"

// smtpTransport sends through a single SMTP endpoint with PLAIN auth.
// Both the SendGrid relay and the generic SMTP provider reduce to this.
type smtpTransport struct {
	name     string
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

// NewSendGridTransport builds the primary API-key transport. SendGrid's
// SMTP relay authenticates with the literal username "apikey".
func NewSendGridTransport(apiKey, from string, timeout time.Duration) Transport {
	return &smtpTransport{
		name:     "sendgrid",
		host:     sendGridHost,
		port:     587,
		username: "apikey",
		password: apiKey,
		from:     from,
		timeout:  timeout,
	}
}

// NewSMTPTransport builds the secondary username/password transport.
func NewSMTPTransport(host string, port int, username, password, from string, timeout time.Duration) Transport {
	return &smtpTransport{
		name:     "smtp",
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  timeout,
	}
}

func (t *smtpTransport) Name() string { return t.name }

func (t *smtpTransport) client() (*gomail.Client, error) {
	return gomail.NewClient(t.host,
		gomail.WithPort(t.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(t.username),
		gomail.WithPassword(t.password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(t.timeout),
	)
}

// Verify dials and authenticates without sending anything.
func (t *smtpTransport) Verify(ctx context.Context) error {
	c, err := t.client()
	if err != nil {
		return fmt.Errorf("%s: build client: %w", t.name, err)
	}
	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("%s: dial %s:%d: %w", t.name, t.host, t.port, err)
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("%s: close: %w", t.name, err)
	}
	return nil
}

func (t *smtpTransport) Send(ctx context.Context, m Message) (*Receipt, error) {
	c, err := t.client()
	if err != nil {
		return nil, fmt.Errorf("%s: build client: %w", t.name, err)
	}

	msg, err := buildMessage(t.from, m)
	if err != nil {
		return nil, fmt.Errorf("%s: build message: %w", t.name, err)
	}

	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return nil, fmt.Errorf("%s: send: %w", t.name, err)
	}

	return &Receipt{
		Provider:  t.name,
		MessageID: msg.GetMessageID(),
	}, nil
}

func buildMessage(from string, m Message) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from address %q: %w", from, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("to address %q: %w", m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextPlain, m.Text)
	msg.AddAlternativeString(gomail.TypeTextHTML, m.htmlBody())
	return msg, nil
}
