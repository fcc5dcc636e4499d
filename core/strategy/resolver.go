package strategy

import (
	"fmt"

	"github.com/mpons/battarb/core/model"
)

// Rule priorities, highest wins. The charging priorities 45-50 come from
// the planner itself.
const (
	PrioritySpike          = 100
	PriorityNegativeBuy    = 90
	PriorityDaytimeSell    = 75
	PriorityOvernightDrain = 65
	PriorityArbitrageSell  = 60
	PriorityNegFiTCurtail  = 42
	PriorityNegFiTCharge   = 41
	PriorityMissedSell     = 40
	PriorityDefault        = 1
)

// evaluation bundles every derived quantity of one pipeline run for the
// resolver and the diagnostic default reason.
type evaluation struct {
	snap     model.Snapshot
	buyDisc  []float64
	sellDisc []float64

	gti      float64
	gtiSrc   string
	class    SolarClass
	premium  float64
	floor    FloorBudget
	plan     ChargePlan
	availSOC float64
	availKWh float64
	thr      float64
	opp      *OvernightOpportunity
	nextBuy  *OvernightPeriod
}

// resolve evaluates the fixed rule table and keeps the highest-priority
// match. It is total: every input combination produces exactly one action
// with a non-empty reason.
func resolve(ev evaluation, cfg Config) model.Decision {
	best := defaultDecision(ev, cfg)
	consider := func(d model.Decision, ok bool) {
		if ok && d.Priority > best.Priority {
			best = d
		}
	}

	consider(spikeSell(ev, cfg))
	consider(negativeBuy(ev, cfg))
	consider(daytimeOpportunisticSell(ev, cfg))
	consider(overnightDrain(ev, cfg))
	consider(arbitrageSell(ev, cfg))
	consider(smartCharge(ev, cfg))
	consider(negativeFiT(ev, cfg))
	consider(missedSell(ev, cfg))

	best.Truncate()
	return best
}

// spikeSell exports on extreme prices regardless of floors and budgets.
func spikeSell(ev evaluation, cfg Config) (model.Decision, bool) {
	s := ev.snap
	if s.SellPrice >= cfg.AlwaysSellPrice && s.SOC > 5 {
		return model.Decision{
			Action:   model.ActionExport,
			Priority: PrioritySpike,
			Rule:     "spike_sell",
			Reason:   fmt.Sprintf("Spike %.1fc >= %.0fc", s.SellPrice, cfg.AlwaysSellPrice),
		}, true
	}
	return model.Decision{}, false
}

// negativeBuy imports whenever the grid pays for consumption, outside the
// peak window. A full battery still imports for the house but curtails
// solar so nothing is exported at a loss.
func negativeBuy(ev evaluation, cfg Config) (model.Decision, bool) {
	s := ev.snap
	if s.BuyPrice >= 0 || (s.Hour >= cfg.PeakStart && s.Hour <= cfg.PeakEnd) {
		return model.Decision{}, false
	}
	if s.SOC >= 98 {
		return model.Decision{
			Action:       model.ActionImport,
			Priority:     PriorityNegativeBuy,
			Rule:         "negative_buy",
			Reason:       fmt.Sprintf("PAID %.2fc to import, battery full, curtailing solar", -s.BuyPrice),
			FeedInLimitW: model.FeedInLimit(10),
			Solar:        model.SolarCurtail,
		}, true
	}
	return model.Decision{
		Action:       model.ActionImport,
		Priority:     PriorityNegativeBuy,
		Rule:         "negative_buy",
		Reason:       fmt.Sprintf("PAID %.2fc to charge", -s.BuyPrice),
		FeedInLimitW: model.FeedInLimit(10000),
	}, true
}

// daytimeOpportunisticSell catches profitable sells between sunrise and
// peak start. Before PV generation kicks in it sells aggressively, keeping
// only enough SOC to bridge to generation; afterwards it arbitrages against
// the next cheap buy period with a wider safety margin.
func daytimeOpportunisticSell(ev evaluation, cfg Config) (model.Decision, bool) {
	s := ev.snap
	hour := float64(s.Hour)
	if !(hour >= s.SunriseHour && s.Hour < cfg.PeakStart) || s.SellPrice < cfg.DaytimeOpportunisticSellPrice {
		return model.Decision{}, false
	}
	periodsUntilPeak := (cfg.PeakStart - s.Hour) * 2
	if len(ev.buyDisc) == 0 || periodsUntilPeak <= 0 {
		return model.Decision{}, false
	}
	n := periodsUntilPeak
	if n > len(ev.buyDisc) {
		n = len(ev.buyDisc)
	}
	minFutureBuy := ev.buyDisc[0]
	for _, b := range ev.buyDisc[1:n] {
		if b < minFutureBuy {
			minFutureBuy = b
		}
	}
	opportunity := s.SellPrice >= s.BuyPrice-2.0 ||
		s.SellPrice >= minFutureBuy+cfg.DaytimeArbitrageMargin
	if !opportunity {
		return model.Decision{}, false
	}

	var pvOffset float64
	switch ev.class {
	case SolarRainy:
		pvOffset = cfg.RainyPVOffsetHours
	case SolarSunny:
		pvOffset = cfg.SunnyPVOffsetHours
	default:
		pvOffset = cfg.NormalPVOffsetHours
	}
	pvGenHour := s.SunriseHour + pvOffset

	if hour < pvGenHour {
		// Pre-generation: only the bridge to PV must survive.
		hoursToPV := pvGenHour - hour
		minSOCForPV := 100.0
		if kwh := s.BatteryKWh(); kwh > 0 {
			minSOCForPV = hoursToPV * cfg.HouseLoadKWhPerHour / kwh * 100.0
		}
		if s.SOC > minSOCForPV+5 {
			return model.Decision{
				Action:   model.ActionExport,
				Priority: PriorityDaytimeSell,
				Rule:     "daytime_sell",
				Reason:   fmt.Sprintf("Morning arb %.1fc, PV in %.1fh @ %.1f", s.SellPrice, hoursToPV, pvGenHour),
			}, true
		}
		return model.Decision{}, false
	}

	// Post-generation arbitrage against the next cheap buy window.
	minSOCNeeded := 20.0
	if ev.nextBuy != nil {
		hoursToCheapBuy := float64(ev.nextBuy.Index) * 0.5
		energy := hoursToCheapBuy * cfg.HouseLoadKWhPerHour * cfg.DaytimeSafetyMargin
		if kwh := s.BatteryKWh(); kwh > 0 {
			minSOCNeeded = energy / kwh * 100.0
		}
	}
	if s.SOC > minSOCNeeded+15 {
		return model.Decision{
			Action:   model.ActionExport,
			Priority: PriorityDaytimeSell,
			Rule:     "daytime_sell",
			Reason:   fmt.Sprintf("Day arb %.1fc vs buy %.1fc", s.SellPrice, minFutureBuy),
		}, true
	}
	return model.Decision{}, false
}

// overnightDrain sells during the ranked best overnight periods to reach
// the morning target SOC, with urgency overrides as sunrise approaches.
func overnightDrain(ev evaluation, cfg Config) (model.Decision, bool) {
	s := ev.snap
	opp := ev.opp
	if opp == nil || s.SOC <= cfg.TargetMorningSOCMax {
		return model.Decision{}, false
	}
	hrs := HoursUntil(float64(s.Hour), s.SunriseHour)

	var why string
	switch {
	case opp.CurrentIsBest:
		why = fmt.Sprintf("best period (rank %d/%d)", opp.CurrentRank, len(opp.Ranked))
	case hrs <= 1.0:
		why = fmt.Sprintf("urgent (%.1fh to sunrise)", hrs)
	case hrs <= 2.0 && s.SOC > cfg.TargetMorningSOCMax+15:
		why = fmt.Sprintf("critical (%.1fh, %.0f%%)", hrs, s.SOC)
	default:
		return model.Decision{}, false
	}

	var minPrice float64
	switch {
	case hrs <= 0.5:
		minPrice = 0.01
	case opp.CurrentIsBest:
		minPrice = opp.WorstAcceptablePrice
		if minPrice < 0.01 {
			minPrice = 0.01
		}
	case hrs <= 2.0:
		minPrice = cfg.BaseMinSellPrice * 0.5
	default:
		minPrice = cfg.BaseMinSellPrice * 0.7
	}

	if s.SellPrice >= minPrice && s.SOC > ev.floor.ExportFloorSOC {
		return model.Decision{
			Action:   model.ActionExport,
			Priority: PriorityOvernightDrain,
			Rule:     "overnight_drain",
			Reason:   fmt.Sprintf("Drain to %.0f%% - %s @ %.2fc", MorningTarget(cfg), why, s.SellPrice),
		}, true
	}
	return model.Decision{}, false
}

// arbitrageSell exports above the dynamic threshold while energy remains
// above the export floor. Overnight the threshold is relaxed to encourage
// draining.
func arbitrageSell(ev evaluation, cfg Config) (model.Decision, bool) {
	s := ev.snap
	if s.SellPrice < 0 || ev.availSOC <= 0 {
		return model.Decision{}, false
	}
	thr := ev.thr
	if s.Hour >= cfg.PeakEnd || float64(s.Hour) < s.SunriseHour {
		thr *= cfg.OvernightThresholdFactor
	}
	if s.SellPrice >= thr {
		return model.Decision{
			Action:   model.ActionExport,
			Priority: PriorityArbitrageSell,
			Rule:     "arbitrage_sell",
			Reason:   fmt.Sprintf("Arb sell %.2fc thr %.2fc floor %.0f%%", s.SellPrice, thr, ev.floor.ExportFloorSOC),
		}, true
	}
	return model.Decision{}, false
}

// smartCharge imports per the two-phase planner, never inside the peak
// window.
func smartCharge(ev evaluation, cfg Config) (model.Decision, bool) {
	s := ev.snap
	if !ev.plan.ShouldCharge || (s.Hour >= cfg.PeakStart && s.Hour <= cfg.PeakEnd) {
		return model.Decision{}, false
	}
	return model.Decision{
		Action:       model.ActionImport,
		Priority:     ev.plan.Priority,
		Rule:         "smart_charge",
		Reason:       ev.plan.Reason,
		FeedInLimitW: model.FeedInLimit(s.OptimalChargingW),
	}, true
}

// negativeFiT handles export prices below zero when not charging: a full
// battery curtails solar, otherwise solar charges the battery uncurtailed.
func negativeFiT(ev evaluation, cfg Config) (model.Decision, bool) {
	s := ev.snap
	if s.SellPrice >= 0 || ev.plan.ShouldCharge {
		return model.Decision{}, false
	}
	if s.SOC >= 98 {
		return model.Decision{
			Action:       model.ActionCurtail,
			Priority:     PriorityNegFiTCurtail,
			Rule:         "negative_fit",
			Reason:       fmt.Sprintf("Neg FiT %.2fc, battery full, curtail solar", s.SellPrice),
			FeedInLimitW: model.FeedInLimit(10),
			Solar:        model.SolarCurtail,
		}, true
	}
	return model.Decision{
		Action:       model.ActionAuto,
		Priority:     PriorityNegFiTCharge,
		Rule:         "negative_fit",
		Reason:       fmt.Sprintf("Neg FiT %.2fc, battery charging from solar", s.SellPrice),
		FeedInLimitW: model.FeedInLimit(10000),
	}, true
}

// missedSell logs sellable prices the floor prevented acting on. The
// action stays auto; the reason is what matters for floor tuning.
func missedSell(ev evaluation, cfg Config) (model.Decision, bool) {
	s := ev.snap
	if len(ev.sellDisc) == 0 || ev.availSOC > 0 {
		return model.Decision{}, false
	}
	maxSell := ev.sellDisc[0]
	for _, v := range ev.sellDisc[1:] {
		if v > maxSell {
			maxSell = v
		}
	}
	if s.SellPrice >= maxSell && s.SellPrice >= cfg.BaseMinSellPrice {
		return model.Decision{
			Action:   model.ActionAuto,
			Priority: PriorityMissedSell,
			Rule:     "missed_sell",
			Reason:   fmt.Sprintf("Missed sell %.2fc - SOC at floor %.0f%%", s.SellPrice, ev.floor.ExportFloorSOC),
		}, true
	}
	return model.Decision{}, false
}

// defaultDecision always applies: auto, with every intermediate quantity in
// the reason for observability.
func defaultDecision(ev evaluation, cfg Config) model.Decision {
	s := ev.snap
	period := "Night"
	switch {
	case s.Hour >= cfg.PeakStart && s.Hour <= cfg.PeakEnd:
		period = "Peak"
	case float64(s.Hour) >= s.SunriseHour && s.Hour < cfg.PeakStart:
		period = "Day"
	}
	reason := fmt.Sprintf(
		"%s buy=%.2f sell=%.2f soc=%.1f class=%s gti=%.0f(%s) premium=%.2f import_floor=%.1f export_floor=%.1f reserve=%.1f overnight_h=%.1f budget=%.1f avail=%.1f thr=%.2f charge=%v(%s) sunrise=%.2f",
		period, s.BuyPrice, s.SellPrice, s.SOC, ev.class, ev.gti, ev.gtiSrc,
		ev.premium, ev.floor.ImportFloorSOC, ev.floor.ExportFloorSOC,
		ev.floor.OvernightReserveSOC, ev.floor.OvernightHours,
		ev.floor.ExportBudgetKWh, ev.availSOC, ev.thr,
		ev.plan.ShouldCharge, ev.plan.Reason, s.SunriseHour,
	)
	if ev.nextBuy != nil {
		reason += fmt.Sprintf(" next_buy=%.1fh@%.2fc", ev.nextBuy.Hour, ev.nextBuy.Price)
	}
	if next := ev.opp.NextBestSell(); next != nil {
		reason += fmt.Sprintf(" next_sell=%.1fh@%.2fc", next.Hour, next.Price)
	}
	return model.Decision{
		Action:   model.ActionAuto,
		Priority: PriorityDefault,
		Rule:     "default",
		Reason:   reason,
	}
}
