package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const (
	etherealAccountAPI = "https://api.nodemailer.com/user"
	etherealHost       = "smtp.ethereal.email"
	etherealPort       = 587
)

// EtherealTransport is the always-available test sink at the end of the
// chain. On first use it provisions a throwaway account through the
// Ethereal account API; mail never leaves the service and can be inspected
// through the preview URL on the receipt.
type EtherealTransport struct {
	from    string
	timeout time.Duration
	httpc   *http.Client

	mu      sync.Mutex
	account *etherealAccount
}

type etherealAccount struct {
	User string `json:"user"`
	Pass string `json:"pass"`
	Web  string `json:"web"`
}

func NewEtherealTransport(from string, timeout time.Duration) *EtherealTransport {
	return &EtherealTransport{
		from:    from,
		timeout: timeout,
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (t *EtherealTransport) Name() string { return "ethereal" }

// provision creates (or reuses) the throwaway account. The account is
// cached for the transport's lifetime; the chain builds a fresh transport
// per dispatch, so no account outlives one send attempt sequence.
func (t *EtherealTransport) provision(ctx context.Context) (*etherealAccount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.account != nil {
		return t.account, nil
	}

	body, err := json.Marshal(map[string]string{
		"requestor": "fintrack",
		"version":   "1.0.0",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal account request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, etherealAccountAPI, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build account request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request test account: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request test account: unexpected status %s", resp.Status)
	}

	var account etherealAccount
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("decode test account: %w", err)
	}
	if account.User == "" || account.Pass == "" {
		return nil, fmt.Errorf("decode test account: empty credentials")
	}

	t.account = &account
	return t.account, nil
}

func (t *EtherealTransport) client(account *etherealAccount) (*gomail.Client, error) {
	return gomail.NewClient(etherealHost,
		gomail.WithPort(etherealPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(account.User),
		gomail.WithPassword(account.Pass),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(t.timeout),
	)
}

func (t *EtherealTransport) Verify(ctx context.Context) error {
	account, err := t.provision(ctx)
	if err != nil {
		return fmt.Errorf("ethereal: provision: %w", err)
	}
	c, err := t.client(account)
	if err != nil {
		return fmt.Errorf("ethereal: build client: %w", err)
	}
	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("ethereal: dial %s:%d: %w", etherealHost, etherealPort, err)
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("ethereal: close: %w", err)
	}
	return nil
}

func (t *EtherealTransport) Send(ctx context.Context, m Message) (*Receipt, error) {
	account, err := t.provision(ctx)
	if err != nil {
		return nil, fmt.Errorf("ethereal: provision: %w", err)
	}
	c, err := t.client(account)
	if err != nil {
		return nil, fmt.Errorf("ethereal: build client: %w", err)
	}

	msg, err := buildMessage(t.from, m)
	if err != nil {
		return nil, fmt.Errorf("ethereal: build message: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return nil, fmt.Errorf("ethereal: send: %w", err)
	}

	return &Receipt{
		Provider:   t.Name(),
		MessageID:  msg.GetMessageID(),
		PreviewURL: fmt.Sprintf("https://ethereal.email/message/%s", msg.GetMessageID()),
	}, nil
}
