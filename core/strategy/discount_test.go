package strategy

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDiscountInflate(t *testing.T) {
	out := Discount([]float64{10, 10, 10}, 8, 0.03, Inflate)
	if len(out) != 3 {
		t.Fatalf("expected 3 entries got %d", len(out))
	}
	if !almostEqual(out[0], 10) || !almostEqual(out[1], 10.3) || !almostEqual(out[2], 10*1.03*1.03) {
		t.Fatalf("unexpected inflated series %v", out)
	}
}

func TestDiscountDeflate(t *testing.T) {
	out := Discount([]float64{10, 10}, 8, 0.07, Deflate)
	if !almostEqual(out[0], 10) || !almostEqual(out[1], 9.3) {
		t.Fatalf("unexpected deflated series %v", out)
	}
}

func TestDiscountHorizonTruncates(t *testing.T) {
	out := Discount([]float64{1, 2, 3, 4}, 2, 0.03, Inflate)
	if len(out) != 2 {
		t.Fatalf("expected horizon truncation to 2 got %d", len(out))
	}
}

func TestDiscountEmpty(t *testing.T) {
	if out := Discount(nil, 8, 0.03, Inflate); out != nil {
		t.Fatalf("expected nil for empty input got %v", out)
	}
	if out := Discount([]float64{1}, 0, 0.03, Inflate); out != nil {
		t.Fatalf("expected nil for zero horizon got %v", out)
	}
}
