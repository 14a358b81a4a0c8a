package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewProgress(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		spent         string
		wantRemaining string
		wantPct       string
		wantOverspent bool
	}{
		{"no spend", "500", "0", "500", "0", false},
		{"half spent", "500", "250", "250", "50", false},
		{"at the limit", "500", "500", "0", "100", false},
		{"over the limit", "500", "750", "-250", "150", true},
		{"cent precision", "100", "33.33", "66.67", "33.33", false},
		{"repeating division rounds", "300", "100", "200", "33.3333", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgress(dec(tt.amount), dec(tt.spent), Period{})

			if !p.Remaining.Equal(dec(tt.wantRemaining)) {
				t.Errorf("Remaining = %s, want %s", p.Remaining, tt.wantRemaining)
			}
			if !p.PercentageSpent.Equal(dec(tt.wantPct)) {
				t.Errorf("PercentageSpent = %s, want %s", p.PercentageSpent, tt.wantPct)
			}
			if p.IsOverspent != tt.wantOverspent {
				t.Errorf("IsOverspent = %v, want %v", p.IsOverspent, tt.wantOverspent)
			}
			// spent + remaining must reconstruct the budget amount exactly.
			if !p.TotalSpent.Add(p.Remaining).Equal(dec(tt.amount)) {
				t.Errorf("spent %s + remaining %s != amount %s", p.TotalSpent, p.Remaining, tt.amount)
			}
		})
	}
}

func TestNewProgressZeroAmountGuard(t *testing.T) {
	t.Run("zero amount, zero spend", func(t *testing.T) {
		p := NewProgress(decimal.Zero, decimal.Zero, Period{})
		if !p.PercentageSpent.IsZero() {
			t.Errorf("PercentageSpent = %s, want 0", p.PercentageSpent)
		}
		if p.IsOverspent {
			t.Error("empty budget with no spend must not be overspent")
		}
	})

	t.Run("zero amount, positive spend", func(t *testing.T) {
		p := NewProgress(decimal.Zero, dec("10"), Period{})
		if !p.PercentageSpent.Equal(dec("100")) {
			t.Errorf("PercentageSpent = %s, want 100", p.PercentageSpent)
		}
		if !p.IsOverspent {
			t.Error("any spend against a zero budget is overspend")
		}
	})
}

func TestOverage(t *testing.T) {
	amount := dec("200")

	t.Run("within budget", func(t *testing.T) {
		p := NewProgress(amount, dec("150"), Period{})
		over, overPct := p.Overage(amount)
		if !over.IsZero() || !overPct.IsZero() {
			t.Errorf("Overage = (%s, %s), want (0, 0)", over, overPct)
		}
	})

	t.Run("over budget", func(t *testing.T) {
		p := NewProgress(amount, dec("250"), Period{})
		over, overPct := p.Overage(amount)
		if !over.Equal(dec("50")) {
			t.Errorf("over = %s, want 50", over)
		}
		if !overPct.Equal(dec("25")) {
			t.Errorf("overPct = %s, want 25", overPct)
		}
	})
}
