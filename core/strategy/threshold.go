package strategy

import (
	"sort"

	"github.com/mpons/battarb/core/model"
)

// NeverSell is the sentinel threshold returned when no sale can be
// justified; no realistic price clears it.
const NeverSell = 9999.0

// SellThreshold derives the minimum acceptable sell price from the energy
// available above the export floor and the ranked discounted sell forecast.
//
// The candidate is the price at the rank matching the number of periods
// needed to export the available energy: accepting a lower price is only
// justified when enough energy exists to need that many selling periods.
// The result never drops below the configured base minimum nor below the
// cheapest forecast buy price plus the desired margin.
func SellThreshold(snap model.Snapshot, availableKWh float64, sellDisc, buyDisc []float64, cfg Config) float64 {
	if availableKWh <= 0 {
		return NeverSell
	}
	var positive []float64
	for _, s := range sellDisc {
		if s > 0 {
			positive = append(positive, s)
		}
	}
	if len(positive) == 0 {
		return NeverSell
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(positive)))

	periods := periodsFor(availableKWh, snap.MaxDischargeKWhPerPeriod)
	var candidate float64
	if periods >= len(positive) {
		candidate = positive[len(positive)-1]
	} else {
		candidate = positive[periods-1]
	}

	minBuy := 0.0
	for _, b := range buyDisc {
		if b > 0 && (minBuy == 0 || b < minBuy) {
			minBuy = b
		}
	}

	thr := cfg.BaseMinSellPrice
	if candidate > thr {
		thr = candidate
	}
	if m := minBuy + cfg.DesiredMargin; m > thr {
		thr = m
	}
	return thr
}
