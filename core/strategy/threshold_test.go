package strategy

import (
	"testing"

	"github.com/mpons/battarb/core/model"
)

func TestSellThresholdSentinelWithoutForecast(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{SellPrice: 50, MaxDischargeKWhPerPeriod: 2.5}
	// A high live price alone never justifies selling without forecast
	// support.
	if thr := SellThreshold(snap, 10, nil, nil, cfg); thr != NeverSell {
		t.Fatalf("expected sentinel got %v", thr)
	}
	// Entries exist but none positive.
	if thr := SellThreshold(snap, 10, []float64{-1, 0}, nil, cfg); thr != NeverSell {
		t.Fatalf("expected sentinel for non-positive forecast got %v", thr)
	}
}

func TestSellThresholdSentinelWithoutEnergy(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{MaxDischargeKWhPerPeriod: 2.5}
	if thr := SellThreshold(snap, 0, []float64{10, 20}, nil, cfg); thr != NeverSell {
		t.Fatalf("expected sentinel without available energy got %v", thr)
	}
}

func TestSellThresholdRankAndMargin(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{MaxDischargeKWhPerPeriod: 2.5}
	// 10 kWh at 2.5 kWh/period needs 4 periods: candidate is the 4th best
	// positive price (4). The buy-margin bound wins: 3 + 5 = 8.
	sell := []float64{10, 2, 8, -5, 6, 4}
	buy := []float64{3, 7}
	if thr := SellThreshold(snap, 10, sell, buy, cfg); !almostEqual(thr, 8) {
		t.Fatalf("expected threshold 8 got %v", thr)
	}
}

func TestSellThresholdBaseMinimum(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{MaxDischargeKWhPerPeriod: 2.5}
	// Low candidate, no positive buys: the base minimum holds.
	if thr := SellThreshold(snap, 10, []float64{1, 1, 1, 1}, []float64{-2}, cfg); !almostEqual(thr, cfg.BaseMinSellPrice) {
		t.Fatalf("expected base minimum got %v", thr)
	}
}

func TestSellThresholdMoreEnergyLowersCandidate(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{MaxDischargeKWhPerPeriod: 2.5}
	sell := []float64{30, 25, 20, 15}
	// 2.5 kWh: one period, candidate 30. 10 kWh: four periods, candidate 15.
	high := SellThreshold(snap, 2.5, sell, nil, cfg)
	low := SellThreshold(snap, 10, sell, nil, cfg)
	if high <= low {
		t.Fatalf("expected threshold to fall with more energy: %v vs %v", high, low)
	}
}
