package strategy

import (
	"github.com/mpons/battarb/core/model"
	"gonum.org/v1/gonum/floats"
)

// SolarClass buckets a day's irradiance forecast.
type SolarClass string

const (
	SolarSunny  SolarClass = "sunny"
	SolarNormal SolarClass = "normal"
	SolarRainy  SolarClass = "rainy"
)

// ClassifySolar buckets an aggregate GTI value (W·h/m²) against the
// configured thresholds.
func ClassifySolar(gti float64, cfg Config) SolarClass {
	switch {
	case gti >= cfg.GTISunnyThreshold:
		return SolarSunny
	case gti >= cfg.GTINormalThreshold:
		return SolarNormal
	default:
		return SolarRainy
	}
}

// FloorGTI selects the irradiance aggregate that governs tonight's floor.
//
// Before sunrise the remaining irradiance of *today* still lies ahead and
// will recharge the battery before the next overnight window, so today's
// aggregate is used. At or after sunrise the floor being computed must
// survive until tomorrow's recharge, so tomorrow's aggregate is used —
// summed from the hourly series when 48 entries are available, because the
// host's rolling gti_sum_tomorrow mixes today and tomorrow.
func FloorGTI(snap model.Snapshot) (gti float64, source string) {
	if float64(snap.Hour) >= snap.SunriseHour {
		if len(snap.HourlyGTI) >= 48 {
			return floats.Sum(snap.HourlyGTI[24:48]), "tomorrow_pure"
		}
		return snap.GTITomorrow, "tomorrow_mixed"
	}
	return snap.GTIToday, "today"
}
