package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/log"
)

// ChainConfig carries the credentials for the ordered providers. Empty
// credentials drop the corresponding provider from the chain; the
// ephemeral test transport is always appended last.
type ChainConfig struct {
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	From           string
	// AttemptTimeout bounds every verify and send round-trip so a stalled
	// provider cannot hang the chain. Defaults to 10s.
	AttemptTimeout time.Duration
}

// Chain tries transports in order and delivers through the first one that
// verifies.
type Chain struct {
	transports []Transport
	timeout    time.Duration
}

// NewChain builds a chain from explicit configuration. Constructed per
// dispatch by the notifier; nothing here is shared or cached globally.
func NewChain(cfg ChainConfig) *Chain {
	timeout := cfg.AttemptTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var transports []Transport
	if cfg.SendGridAPIKey != "" {
		transports = append(transports, NewSendGridTransport(cfg.SendGridAPIKey, cfg.From, timeout))
	}
	if cfg.SMTPHost != "" && cfg.SMTPUsername != "" {
		transports = append(transports, NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From, timeout))
	}
	transports = append(transports, NewEtherealTransport(cfg.From, timeout))

	return &Chain{transports: transports, timeout: timeout}
}

// newChainFromTransports exists for tests.
func newChainFromTransports(timeout time.Duration, transports ...Transport) *Chain {
	return &Chain{transports: transports, timeout: timeout}
}

// Send walks the chain: verify, then deliver through the first transport
// whose verification succeeds. A transport that verifies but fails to send
// does not fall through; its error is terminal, mirroring a provider that
// accepted the connection but rejected the message.
//
// When every provider fails verification the returned error wraps
// ErrAllTransportsFailed together with each provider's diagnostic.
func (c *Chain) Send(ctx context.Context, m Message) (*Receipt, error) {
	verifyErrs := []error{ErrAllTransportsFailed}

	for _, t := range c.transports {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := t.Verify(attemptCtx)
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "mail transport failed verification, trying next",
				log.FieldProvider, t.Name(),
				log.FieldError, err)
			verifyErrs = append(verifyErrs, err)
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, c.timeout)
		receipt, err := t.Send(sendCtx, m)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("deliver via %s: %w", t.Name(), err)
		}

		slog.InfoContext(ctx, "email delivered",
			log.FieldProvider, receipt.Provider,
			log.FieldMessageID, receipt.MessageID,
			"to", m.To)
		return receipt, nil
	}

	return nil, errors.Join(verifyErrs...)
}
