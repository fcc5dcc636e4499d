package strategy

import (
	"testing"

	"github.com/mpons/battarb/core/model"
)

func TestAnalyzeOvernightRanking(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		Hour: 22, SunriseHour: 6.5, SOC: 60, CapacityWh: 10000,
		MaxDischargeKWhPerPeriod: 2.5,
	}
	// Drain from 60% to the 15% midpoint on 10 kWh: 4.5 kWh, 2 periods.
	sell := []float64{5, 8, 3, 9, 1, 2, 2.5, 4}

	opp := AnalyzeOvernight(snap, sell, cfg)
	if opp == nil {
		t.Fatal("expected opportunity")
	}
	if opp.PeriodsNeeded != 2 {
		t.Fatalf("expected 2 periods needed got %d", opp.PeriodsNeeded)
	}
	if len(opp.Best) != 2 || opp.Best[0].Index != 3 || opp.Best[1].Index != 1 {
		t.Fatalf("unexpected best set %+v", opp.Best)
	}
	if opp.CurrentRank != 3 || opp.CurrentIsBest {
		t.Fatalf("expected current rank 3 outside best, got rank %d best %v", opp.CurrentRank, opp.CurrentIsBest)
	}
	if !almostEqual(opp.WorstAcceptablePrice, 8) {
		t.Fatalf("expected worst acceptable 8 got %v", opp.WorstAcceptablePrice)
	}
}

func TestAnalyzeOvernightCurrentBest(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		Hour: 22, SunriseHour: 6.5, SOC: 60, CapacityWh: 10000,
		MaxDischargeKWhPerPeriod: 2.5,
	}
	opp := AnalyzeOvernight(snap, []float64{9, 8, 3, 5}, cfg)
	if opp == nil || !opp.CurrentIsBest || opp.CurrentRank != 1 {
		t.Fatalf("expected current period best, got %+v", opp)
	}
}

func TestAnalyzeOvernightNoWindowPeriods(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		Hour: 10, SunriseHour: 6.5, SOC: 60, CapacityWh: 10000,
		MaxDischargeKWhPerPeriod: 2.5,
	}
	// All periods fall between 10:00 and 13:30, outside [16, 6.5).
	if opp := AnalyzeOvernight(snap, repeat(5, 8), cfg); opp != nil {
		t.Fatalf("expected nil outside window, got %+v", opp)
	}
	if opp := AnalyzeOvernight(snap, nil, cfg); opp != nil {
		t.Fatal("expected nil for empty forecast")
	}
}

func TestNextBest(t *testing.T) {
	best := NextBest([]float64{5, 4, 7, 3}, 10, 16)
	if best == nil || best.Index != 3 || !almostEqual(best.Price, 3) {
		t.Fatalf("unexpected next best %+v", best)
	}
	if best := NextBest([]float64{5}, 10, 16); best != nil {
		t.Fatalf("expected nil with no upcoming periods, got %+v", best)
	}
}

func TestNextBestSell(t *testing.T) {
	opp := &OvernightOpportunity{
		Best: []OvernightPeriod{{Index: 0, Price: 9}, {Index: 4, Price: 7}},
	}
	next := opp.NextBestSell()
	if next == nil || next.Index != 4 {
		t.Fatalf("unexpected next best sell %+v", next)
	}
	var nilOpp *OvernightOpportunity
	if nilOpp.NextBestSell() != nil {
		t.Fatal("nil opportunity must yield nil")
	}
}
