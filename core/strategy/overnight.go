package strategy

import (
	"sort"

	"github.com/mpons/battarb/core/model"
)

// OvernightPeriod is one forecast period inside the overnight window.
type OvernightPeriod struct {
	Index int
	Hour  float64
	Price float64
}

// OvernightOpportunity ranks the overnight sell periods needed to drain the
// battery to the morning target by sunrise.
type OvernightOpportunity struct {
	// Ranked holds every overnight period sorted by price descending,
	// ties broken by forecast index.
	Ranked []OvernightPeriod
	// Best is the top PeriodsNeeded slice of Ranked.
	Best          []OvernightPeriod
	PeriodsNeeded int
	// CurrentRank is the 1-based rank of the current period, 0 when the
	// current period lies outside the window.
	CurrentRank   int
	CurrentIsBest bool
	// WorstAcceptablePrice is the lowest price in Best.
	WorstAcceptablePrice float64
}

// MorningTarget is the midpoint of the configured morning SOC band.
func MorningTarget(cfg Config) float64 {
	return (cfg.TargetMorningSOCMin + cfg.TargetMorningSOCMax) / 2.0
}

// AnalyzeOvernight ranks the sell periods between peak start and sunrise
// and determines whether the current period is one of the best N needed to
// drain the battery to the morning target. Returns nil when the forecast is
// empty or no period falls inside the overnight window.
func AnalyzeOvernight(snap model.Snapshot, sellDisc []float64, cfg Config) *OvernightOpportunity {
	if len(sellDisc) == 0 {
		return nil
	}

	drainKWh := (snap.SOC - MorningTarget(cfg)) / 100.0 * snap.BatteryKWh()
	if drainKWh < 0 {
		drainKWh = 0
	}

	var periods []OvernightPeriod
	for i, price := range sellDisc {
		h := PeriodHour(snap.Hour, i)
		if InWrappingWindow(h, float64(cfg.PeakStart), snap.SunriseHour) {
			periods = append(periods, OvernightPeriod{Index: i, Hour: h, Price: price})
		}
	}
	if len(periods) == 0 {
		return nil
	}

	sort.SliceStable(periods, func(a, b int) bool { return periods[a].Price > periods[b].Price })

	needed := periodsFor(drainKWh, snap.MaxDischargeKWhPerPeriod)
	nBest := needed
	if nBest > len(periods) {
		nBest = len(periods)
	}

	opp := &OvernightOpportunity{
		Ranked:        periods,
		Best:          periods[:nBest],
		PeriodsNeeded: needed,
	}
	for rank, p := range periods {
		if p.Index == 0 {
			opp.CurrentRank = rank + 1
			opp.CurrentIsBest = rank < nBest
			break
		}
	}
	if nBest > 0 {
		opp.WorstAcceptablePrice = opp.Best[nBest-1].Price
	}
	return opp
}

// NextBest returns the cheapest upcoming period before `endHour`, excluding
// the current one. Used to anticipate the next charging window. Returns nil
// when nothing lies ahead.
func NextBest(forecast []float64, hour int, endHour float64) *OvernightPeriod {
	var best *OvernightPeriod
	for i := 1; i < len(forecast); i++ {
		h := float64(hour) + float64(i)*0.5
		if h >= endHour {
			continue
		}
		if best == nil || forecast[i] < best.Price {
			best = &OvernightPeriod{Index: i, Hour: h, Price: forecast[i]}
		}
	}
	return best
}

// NextBestSell returns the best-ranked upcoming overnight sell period, nil
// when the current period is the only ranked one.
func (o *OvernightOpportunity) NextBestSell() *OvernightPeriod {
	if o == nil {
		return nil
	}
	for _, p := range o.Best {
		if p.Index > 0 {
			q := p
			return &q
		}
	}
	return nil
}
