package strategy

import (
	"strings"
	"testing"

	"github.com/mpons/battarb/core/model"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestPlanChargeNeverAtOrAfterPeak(t *testing.T) {
	cfg := testConfig()
	for hour := cfg.PeakStart; hour <= 23; hour++ {
		snap := model.Snapshot{
			Hour: hour, SOC: 5, BuyPrice: 1, CapacityWh: 50000,
			MaxChargeKWhPerPeriod: 5,
		}
		plan := PlanCharge(snap, 80, repeat(1, 48), repeat(50, 48), cfg)
		if plan.ShouldCharge {
			t.Fatalf("charging planned at hour %d", hour)
		}
	}
}

func TestPlanChargeNoForecastNoCharge(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{Hour: 10, SOC: 5, BuyPrice: 1, CapacityWh: 50000, MaxChargeKWhPerPeriod: 5}
	if plan := PlanCharge(snap, 80, nil, nil, cfg); plan.ShouldCharge {
		t.Fatal("charging planned with empty forecast")
	}
	// Forecast shorter than the periods remaining until peak.
	if plan := PlanCharge(snap, 80, repeat(1, 3), repeat(1, 3), cfg); plan.ShouldCharge {
		t.Fatal("charging planned with short forecast")
	}
}

func TestPlanChargePhase1NeedsAllPeriods(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		Hour: 15, SOC: 10, BuyPrice: 5, CapacityWh: 50000,
		MaxChargeKWhPerPeriod: 5,
	}
	// 45 kWh to full at 5 kWh/period needs 9 periods; only 2 remain.
	plan := PlanCharge(snap, 80, repeat(6, 8), repeat(30, 16), cfg)
	if !plan.ShouldCharge || plan.Priority != PriorityChargeOptimal {
		t.Fatalf("expected optimal charge, got %+v", plan)
	}
	if !strings.Contains(plan.Reason, "need all") {
		t.Fatalf("unexpected reason %q", plan.Reason)
	}
}

func TestPlanChargePhase1RankGate(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		Hour: 15, SOC: 90, BuyPrice: 2.9, CapacityWh: 50000,
		MaxChargeKWhPerPeriod: 5,
	}
	// One period needed; current price beats the cheapest remaining.
	plan := PlanCharge(snap, 80, []float64{3.5, 3.0}, repeat(30, 16), cfg)
	if !plan.ShouldCharge || plan.Priority != PriorityChargeOptimal {
		t.Fatalf("expected optimal charge, got %+v", plan)
	}

	// A cheaper period lies ahead: wait for it.
	snap.BuyPrice = 5
	plan = PlanCharge(snap, 80, []float64{3.0, 4.0}, repeat(30, 16), cfg)
	if plan.ShouldCharge {
		t.Fatalf("expected to wait for cheaper period, got %+v", plan)
	}
}

func TestPlanChargePhase2CheapestRemaining(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		Hour: 15, SOC: 20, BuyPrice: 15, CapacityWh: 50000,
		MaxChargeKWhPerPeriod: 5,
	}
	plan := PlanCharge(snap, 60, []float64{18, 20}, nil, cfg)
	if !plan.ShouldCharge || plan.Priority != PriorityChargeEconomic {
		t.Fatalf("expected economic charge, got %+v", plan)
	}
	if !strings.Contains(plan.Reason, "cheapest") {
		t.Fatalf("unexpected reason %q", plan.Reason)
	}
}

func TestPlanChargePhase2ProfitableRevenue(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		Hour: 15, SOC: 20, BuyPrice: 15, CapacityWh: 50000,
		MaxChargeKWhPerPeriod: 5,
	}
	// Cheaper future buy exists, but peak sells at 40c make buying now
	// profitable: 20 kWh * 40c = $8 revenue vs $3 cost.
	sell := repeat(40, 16)
	plan := PlanCharge(snap, 60, []float64{15, 12}, sell, cfg)
	if !plan.ShouldCharge || plan.Priority != PriorityChargeEconomic {
		t.Fatalf("expected economic charge, got %+v", plan)
	}
	if !strings.Contains(plan.Reason, "profitable") {
		t.Fatalf("unexpected reason %q", plan.Reason)
	}
}

func TestPlanChargePhase2UrgentNoSlack(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		Hour: 15, SOC: 20, BuyPrice: 15, CapacityWh: 50000,
		MaxChargeKWhPerPeriod: 5,
	}
	// 20 kWh to floor needs 4 periods, only 2 remain; no revenue case and
	// not the cheapest price.
	plan := PlanCharge(snap, 60, []float64{15, 12}, repeat(1, 2), cfg)
	if !plan.ShouldCharge || plan.Priority != PriorityChargeUrgent {
		t.Fatalf("expected urgent charge, got %+v", plan)
	}
}

func TestPlanChargePhase2AboveFloorWaits(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		Hour: 15, SOC: 70, BuyPrice: 15, CapacityWh: 50000,
		MaxChargeKWhPerPeriod: 5,
	}
	plan := PlanCharge(snap, 60, []float64{18, 20}, repeat(30, 16), cfg)
	if plan.ShouldCharge {
		t.Fatalf("expected no charge above floor at high price, got %+v", plan)
	}
}
