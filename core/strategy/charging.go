package strategy

import (
	"fmt"
	"math"
	"sort"

	"github.com/mpons/battarb/core/model"
	"gonum.org/v1/gonum/stat"
)

// Charge plan priorities. Lower numbers rank below "optimal" in the
// resolver's table; the names match their economic justification.
const (
	PriorityChargeEconomic = 45
	PriorityChargeUrgent   = 48
	PriorityChargeOptimal  = 50
)

// ChargePlan is the charging planner's verdict for the current period.
type ChargePlan struct {
	ShouldCharge bool
	Priority     int
	Reason       string
}

func noCharge() ChargePlan {
	return ChargePlan{ShouldCharge: false, Priority: PriorityChargeOptimal, Reason: "auto"}
}

// periodsFor returns the number of half-hour periods (rounded up, minimum
// one) needed to move the given energy at the per-period limit.
func periodsFor(energyKWh, perPeriodKWh float64) int {
	if perPeriodKWh <= 0 {
		return 1
	}
	p := int(math.Ceil(energyKWh / perPeriodKWh))
	if p < 1 {
		return 1
	}
	return p
}

// PlanCharge decides whether to import this period using the two-phase
// algorithm over the discounted forecasts.
//
// Phase 1 (optimal timing) applies while the buy price is at or below the
// acceptable daytime maximum: charge now only when the current price ranks
// among the cheapest N remaining pre-peak periods, N being the periods
// needed to reach 100% SOC.
//
// Phase 2 (floor protection) applies when the price is unattractive but
// SOC sits below the export floor: charge only when waiting is provably
// worse — current price is the cheapest remaining, buying now is cheaper
// than the peak revenue it unlocks, or no slack periods remain.
//
// Charging is never planned at or after peak start, and never without a
// forecast covering the remaining pre-peak periods.
func PlanCharge(snap model.Snapshot, exportFloorSOC float64, buyDisc, sellDisc []float64, cfg Config) ChargePlan {
	if snap.Hour >= cfg.PeakStart || len(buyDisc) == 0 {
		return noCharge()
	}

	batteryKWh := snap.BatteryKWh()
	energyToFull := (100.0 - snap.SOC) / 100.0 * batteryKWh
	energyToFloor := (exportFloorSOC - snap.SOC) / 100.0 * batteryKWh
	if energyToFloor < 0 {
		energyToFloor = 0
	}
	periodsFull := periodsFor(energyToFull, snap.MaxChargeKWhPerPeriod)
	periodsFloor := periodsFor(energyToFloor, snap.MaxChargeKWhPerPeriod)
	periodsLeft := (cfg.PeakStart - snap.Hour) * 2

	if periodsLeft <= 0 || len(buyDisc) < periodsLeft {
		return noCharge()
	}

	futureBuys := buyDisc[:periodsLeft]
	peakPeriods := (cfg.PeakEnd - cfg.PeakStart) * 2
	var avgPeakSell float64
	if periodsLeft < len(sellDisc) {
		end := periodsLeft + peakPeriods
		if end > len(sellDisc) {
			end = len(sellDisc)
		}
		avgPeakSell = stat.Mean(sellDisc[periodsLeft:end], nil)
	}

	switch {
	case snap.BuyPrice <= cfg.MaxAMBuyPrice:
		// Phase 1: optimal timing to reach 100%.
		if periodsFull >= periodsLeft {
			return ChargePlan{
				ShouldCharge: true,
				Priority:     PriorityChargeOptimal,
				Reason:       fmt.Sprintf("Optimal charge @ %.2fc (need all %dp)", snap.BuyPrice, periodsLeft),
			}
		}
		sorted := append([]float64(nil), futureBuys...)
		sort.Float64s(sorted)
		rank := periodsFull - 1
		if rank > len(sorted)-1 {
			rank = len(sorted) - 1
		}
		if snap.BuyPrice <= sorted[rank] {
			return ChargePlan{
				ShouldCharge: true,
				Priority:     PriorityChargeOptimal,
				Reason:       fmt.Sprintf("Optimal charge @ %.2fc (top %d cheapest)", snap.BuyPrice, periodsFull),
			}
		}

	case snap.SOC < exportFloorSOC:
		// Phase 2: floor protection at an unattractive price.
		minBuy := futureBuys[0]
		for _, b := range futureBuys[1:] {
			if b < minBuy {
				minBuy = b
			}
		}
		cost := energyToFloor * snap.BuyPrice / 100.0
		exportable := math.Min(energyToFloor, cfg.PeakExportCapKWh)
		revenue := exportable * avgPeakSell / 100.0

		switch {
		case snap.BuyPrice < minBuy:
			return ChargePlan{
				ShouldCharge: true,
				Priority:     PriorityChargeEconomic,
				Reason:       fmt.Sprintf("Floor protect cheapest @ %.2fc vs %.2fc", snap.BuyPrice, minBuy),
			}
		case revenue > cost:
			return ChargePlan{
				ShouldCharge: true,
				Priority:     PriorityChargeEconomic,
				Reason:       fmt.Sprintf("Floor protect profitable (rev $%.2f > cost $%.2f)", revenue, cost),
			}
		case periodsFloor >= periodsLeft:
			return ChargePlan{
				ShouldCharge: true,
				Priority:     PriorityChargeUrgent,
				Reason:       fmt.Sprintf("Floor protect urgent (need all %dp)", periodsLeft),
			}
		}
	}

	return noCharge()
}
