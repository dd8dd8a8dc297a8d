package pricing

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/money"
)

func newRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func spec(marginType models.MarginType, marginValue string) Spec {
	return Spec{
		MarginType:   marginType,
		MarginValue:  decimal.RequireFromString(marginValue),
		RoundingRule: money.RoundNearest,
		Currency:     "USD",
	}
}

func TestEngine_Price_Margin(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name      string
		base      string
		spec      Spec
		wantUnits int64
	}{
		{"zero margin is identity", "5.00", spec(models.MarginFixed, "0"), 500},
		{"ten percent margin", "5.00", spec(models.MarginPercentage, "10"), 550},
		{"fixed margin per unit", "5.00", spec(models.MarginFixed, "1.25"), 625},
		{"percentage on zero base", "0", spec(models.MarginPercentage, "10"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Price(decimal.RequireFromString(tt.base), tt.spec, newRng(1))
			if err != nil {
				t.Fatalf("Price() unexpected error: %v", err)
			}
			if got.Units() != tt.wantUnits {
				t.Errorf("Price() = %d units, want %d", got.Units(), tt.wantUnits)
			}
		})
	}
}

func TestEngine_Price_RoundingRules(t *testing.T) {
	engine := NewEngine()

	// 10.001 after a fixed zero margin exercises the rounding step alone.
	base := decimal.RequireFromString("10.001")

	tests := []struct {
		rule money.RoundingRule
		want int64
	}{
		{money.RoundUp, 1001},
		{money.RoundDown, 1000},
		{money.RoundNearest, 1000},
	}

	for _, tt := range tests {
		s := spec(models.MarginFixed, "0")
		s.RoundingRule = tt.rule
		got, err := engine.Price(base, s, newRng(1))
		if err != nil {
			t.Fatalf("Price() unexpected error: %v", err)
		}
		if got.Units() != tt.want {
			t.Errorf("rule %s: Price() = %d units, want %d", tt.rule, got.Units(), tt.want)
		}
	}
}

func TestEngine_Price_DiscountAndMarkup(t *testing.T) {
	engine := NewEngine()

	discount := decimal.RequireFromString("20")
	markup := decimal.RequireFromString("0.50")

	s := spec(models.MarginFixed, "0")
	s.DiscountPercent = &discount
	s.FixedMarkup = &markup

	// 10.00 - 20% = 8.00, + 0.50 = 8.50
	got, err := engine.Price(decimal.RequireFromString("10.00"), s, newRng(1))
	if err != nil {
		t.Fatalf("Price() unexpected error: %v", err)
	}
	if got.Units() != 850 {
		t.Errorf("Price() = %d units, want 850", got.Units())
	}
}

func TestEngine_Price_FluctuationBounded(t *testing.T) {
	engine := NewEngine()

	s := spec(models.MarginFixed, "0")
	s.FluctuationRange = decimal.RequireFromString("5")
	base := decimal.RequireFromString("100.00")

	rng := newRng(42)
	for i := 0; i < 200; i++ {
		got, err := engine.Price(base, s, rng)
		if err != nil {
			t.Fatalf("Price() unexpected error: %v", err)
		}
		// 100 ± 5% stays within [95.00, 105.00]
		if got.Units() < 9500 || got.Units() > 10500 {
			t.Fatalf("draw %d: Price() = %d units, outside [9500, 10500]", i, got.Units())
		}
	}
}

func TestEngine_Price_SeedReproducible(t *testing.T) {
	engine := NewEngine()

	s := spec(models.MarginPercentage, "10")
	s.FluctuationRange = decimal.RequireFromString("3")
	base := decimal.RequireFromString("49.99")

	first, err := engine.Price(base, s, newRng(7))
	if err != nil {
		t.Fatalf("Price() unexpected error: %v", err)
	}
	second, err := engine.Price(base, s, newRng(7))
	if err != nil {
		t.Fatalf("Price() unexpected error: %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("same seed produced %v and %v", first, second)
	}

	other, err := engine.Price(base, s, newRng(8))
	if err != nil {
		t.Fatalf("Price() unexpected error: %v", err)
	}
	if first.Equal(other) {
		t.Logf("different seeds coincided at %v; possible but unlikely", other)
	}
}

func TestEngine_Price_ZeroFluctuationConsumesNoDraw(t *testing.T) {
	engine := NewEngine()

	s := spec(models.MarginPercentage, "10")
	rng := newRng(3)
	before := rng.Int63()

	rng = newRng(3)
	if _, err := engine.Price(decimal.RequireFromString("5.00"), s, rng); err != nil {
		t.Fatalf("Price() unexpected error: %v", err)
	}
	if got := rng.Int63(); got != before {
		t.Errorf("zero fluctuation consumed a draw: next = %d, want %d", got, before)
	}
}

func TestEngine_Price_Errors(t *testing.T) {
	engine := NewEngine()

	t.Run("negative margin", func(t *testing.T) {
		_, err := engine.Price(decimal.RequireFromString("5.00"), spec(models.MarginFixed, "-1"), newRng(1))
		if !errors.Is(err, ErrNegativeMargin) {
			t.Errorf("error = %v, want ErrNegativeMargin", err)
		}
	})

	t.Run("discount over one hundred percent", func(t *testing.T) {
		discount := decimal.RequireFromString("150")
		s := spec(models.MarginFixed, "0")
		s.DiscountPercent = &discount

		_, err := engine.Price(decimal.RequireFromString("5.00"), s, newRng(1))
		if !errors.Is(err, ErrNegativePrice) {
			t.Errorf("error = %v, want ErrNegativePrice", err)
		}
	})

	t.Run("unknown margin type", func(t *testing.T) {
		s := spec(models.MarginFixed, "0")
		s.MarginType = "WEIRD"
		if _, err := engine.Price(decimal.RequireFromString("5.00"), s, newRng(1)); err == nil {
			t.Error("expected error for unknown margin type")
		}
	})
}
