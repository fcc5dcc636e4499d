package strategy

import "github.com/mpons/battarb/core/model"

// FloorBudget carries the time-of-day dependent SOC floors and the export
// energy budget for the current interval.
type FloorBudget struct {
	ImportFloorSOC      float64
	ExportFloorSOC      float64
	ExportBudgetKWh     float64
	OvernightReserveSOC float64
	OvernightHours      float64
}

// baseFloorBudget returns the weather-keyed base floor (SOC %) and base
// export budget (kWh). Sunnier days trust tomorrow's recharge, so they get
// a lower floor and a larger budget.
func baseFloorBudget(class SolarClass, cfg Config) (floorSOC, budgetKWh float64) {
	switch class {
	case SolarSunny:
		return cfg.SunnyFloorSOC, cfg.SunnyExportBudget
	case SolarRainy:
		return cfg.RainyFloorSOC, cfg.RainyExportBudget
	default:
		return cfg.NormalFloorSOC, cfg.NormalExportBudget
	}
}

// EveningPremium measures the arbitrage opportunity between peak-window
// sell prices and pre-peak daytime buy prices, using the undiscounted
// forecasts. Zero when either side of the comparison is empty.
func EveningPremium(buyFC, sellFC []float64, hour int, cfg Config) float64 {
	n := len(buyFC)
	if len(sellFC) < n {
		n = len(sellFC)
	}
	var (
		minDay  float64
		maxPeak float64
		hasDay  bool
		hasPeak bool
	)
	for i := 0; i < n; i++ {
		h := PeriodHour(hour, i)
		if InWrappingWindow(h, float64(cfg.DaytimeBuyStartHour), float64(cfg.PeakStart)) {
			if !hasDay || buyFC[i] < minDay {
				minDay = buyFC[i]
				hasDay = true
			}
		}
		if h >= float64(cfg.PeakStart) && h <= float64(cfg.PeakEnd) {
			if !hasPeak || sellFC[i] > maxPeak {
				maxPeak = sellFC[i]
				hasPeak = true
			}
		}
	}
	if !hasDay || !hasPeak {
		return 0
	}
	return maxPeak - minDay
}

// ComputeFloor derives the import/export SOC floors and the export budget
// for the interval.
//
// The floor is the weather-keyed base plus the overnight house-load
// reserve. Before peak the import floor targets 100% (be full going into
// peak) while the export floor protects the full peak-to-sunrise stretch.
// After peak starts both floors step down together as sunrise approaches.
func ComputeFloor(class SolarClass, eveningPremium float64, snap model.Snapshot, cfg Config) FloorBudget {
	baseFloor, baseBudget := baseFloorBudget(class, cfg)

	batteryKWh := snap.BatteryKWh()
	reserveSOC := func(hours float64) float64 {
		if batteryKWh <= 0 {
			return 0
		}
		return hours * cfg.HouseLoadKWhPerHour / batteryKWh * 100.0
	}

	peakToSunrise := HoursUntil(float64(cfg.PeakStart), snap.SunriseHour)

	var fb FloorBudget
	if snap.Hour < cfg.PeakStart {
		fb.OvernightHours = peakToSunrise
		fb.OvernightReserveSOC = reserveSOC(peakToSunrise)
		fb.ImportFloorSOC = 100.0
		fb.ExportFloorSOC = baseFloor + fb.OvernightReserveSOC
	} else {
		hours := HoursUntil(float64(snap.Hour), snap.SunriseHour)
		if hours < 0 {
			hours = 0
		}
		fb.OvernightHours = hours
		fb.OvernightReserveSOC = reserveSOC(hours)
		fb.ImportFloorSOC = baseFloor + fb.OvernightReserveSOC
		fb.ExportFloorSOC = baseFloor + fb.OvernightReserveSOC
	}
	if fb.ImportFloorSOC < 0 {
		fb.ImportFloorSOC = 0
	}
	if fb.ExportFloorSOC < 0 {
		fb.ExportFloorSOC = 0
	}

	// Budget scales with the evening premium: no margin, no selling.
	var factor float64
	switch {
	case eveningPremium <= cfg.DesiredMargin:
		factor = 0.0
	case eveningPremium <= 2*cfg.DesiredMargin:
		factor = 0.5
	default:
		factor = 1.0
	}
	budget := baseBudget * factor
	if avail := snap.EnergyAboveKWh(fb.ExportFloorSOC); budget > avail {
		budget = avail
	}
	fb.ExportBudgetKWh = budget
	return fb
}
