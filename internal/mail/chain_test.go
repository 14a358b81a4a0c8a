package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeTransport scripts verify/send outcomes and records calls.
type fakeTransport struct {
	name      string
	verifyErr error
	sendErr   error

	verified int
	sent     []Message
}

func (f *fakeTransport) Name() string { return f.name }

func (f *fakeTransport) Verify(context.Context) error {
	f.verified++
	return f.verifyErr
}

func (f *fakeTransport) Send(_ context.Context, m Message) (*Receipt, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, m)
	return &Receipt{Provider: f.name, MessageID: "<test@localhost>"}, nil
}

func testMessage() Message {
	return Message{To: "user@example.com", Subject: "hello", Text: "body"}
}

func TestChainFirstTransportWins(t *testing.T) {
	first := &fakeTransport{name: "first"}
	second := &fakeTransport{name: "second"}
	chain := newChainFromTransports(time.Second, first, second)

	receipt, err := chain.Send(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if receipt.Provider != "first" {
		t.Errorf("Provider = %q, want first", receipt.Provider)
	}
	if second.verified != 0 {
		t.Error("second transport should never be touched")
	}
}

func TestChainFallsThroughOnVerifyFailure(t *testing.T) {
	first := &fakeTransport{name: "first", verifyErr: errors.New("auth rejected")}
	second := &fakeTransport{name: "second"}
	chain := newChainFromTransports(time.Second, first, second)

	receipt, err := chain.Send(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if receipt.Provider != "second" {
		t.Errorf("Provider = %q, want second", receipt.Provider)
	}
	if len(first.sent) != 0 {
		t.Error("a transport that failed verification must not send")
	}
	if second.verified != 1 || len(second.sent) != 1 {
		t.Errorf("second transport verified %d sent %d, want 1/1", second.verified, len(second.sent))
	}
}

func TestChainSendFailureIsTerminal(t *testing.T) {
	first := &fakeTransport{name: "first", sendErr: errors.New("message rejected")}
	second := &fakeTransport{name: "second"}
	chain := newChainFromTransports(time.Second, first, second)

	_, err := chain.Send(context.Background(), testMessage())
	if err == nil {
		t.Fatal("expected send failure to surface")
	}
	if !strings.Contains(err.Error(), "deliver via first") {
		t.Errorf("error %q should name the failing provider", err)
	}
	if second.verified != 0 {
		t.Error("send failure after successful verify must not fall through")
	}
}

func TestChainAllTransportsFail(t *testing.T) {
	first := &fakeTransport{name: "first", verifyErr: errors.New("down")}
	second := &fakeTransport{name: "second", verifyErr: errors.New("also down")}
	chain := newChainFromTransports(time.Second, first, second)

	_, err := chain.Send(context.Background(), testMessage())
	if !errors.Is(err, ErrAllTransportsFailed) {
		t.Fatalf("error = %v, want ErrAllTransportsFailed", err)
	}
	for _, msg := range []string{"down", "also down"} {
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("joined error %q missing %q", err, msg)
		}
	}
}

func TestNewChainProviderSelection(t *testing.T) {
	tests := []struct {
		name string
		cfg  ChainConfig
		want int
	}{
		{"no credentials leaves only the test sink", ChainConfig{}, 1},
		{"sendgrid key adds one provider", ChainConfig{SendGridAPIKey: "SG.key"}, 2},
		{
			"full configuration builds all three",
			ChainConfig{SendGridAPIKey: "SG.key", SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUsername: "u", SMTPPassword: "p"},
			3,
		},
		{"smtp host without username is skipped", ChainConfig{SMTPHost: "smtp.example.com"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain(tt.cfg)
			if len(chain.transports) != tt.want {
				t.Errorf("got %d transports, want %d", len(chain.transports), tt.want)
			}
		})
	}
}

func TestMessageHTMLBody(t *testing.T) {
	t.Run("explicit html passes through", func(t *testing.T) {
		m := Message{Text: "plain", HTML: "<p>custom</p>"}
		if m.htmlBody() != "<p>custom</p>" {
			t.Error("explicit HTML should be used verbatim")
		}
	})

	t.Run("derived html escapes the text", func(t *testing.T) {
		m := Message{Text: `alert <script>"x"</script>`}
		body := m.htmlBody()
		if strings.Contains(body, "<script>") {
			t.Error("text must be HTML-escaped")
		}
		if !strings.Contains(body, "Finance Tracker Notification") {
			t.Error("derived body should carry the notification header")
		}
	})
}
