package strategy

import (
	"strconv"
	"strings"
	"time"

	"github.com/mpons/battarb/core/model"
)

// Normalize coerces a loosely typed host snapshot into a fully defaulted
// model.Snapshot. It never fails: fields that cannot be coerced fall back
// to documented safe values so every downstream stage can assume typed,
// non-empty-safe inputs.
//
// Sentinel policy for forecasts: an unusable buy entry becomes NeverSell
// (so "cheap" comparisons can never spuriously trigger) and an unusable
// sell entry becomes 0 (so "worth selling" comparisons can never
// spuriously trigger). Entirely absent forecasts stay empty; the planner
// and threshold stages treat empty as "no decision support".
func Normalize(raw model.RawSnapshot, cfg Config) model.Snapshot {
	snap := model.Snapshot{
		Site:         raw.SiteID,
		Hour:         hourOfDay(raw.IntervalTime),
		SunriseHour:  fractionalHour(raw.Sunrise, cfg.DefaultSunrise),
		SunsetHour:   fractionalHour(raw.Sunset, cfg.DefaultSunset),
		BuyPrice:     coerceOr(raw.BuyPrice, NeverSell),
		SellPrice:    coerceOr(raw.SellPrice, 0),
		RRP:          coerceOr(raw.RRP, 0),
		CapacityWh:   coerceOr(raw.BatteryCapacity, 0),
		SolarPowerW:  coerceOr(raw.SolarPower, 0),
		GTIToday:     coerceOr(raw.GTIToday, 0),
		GTITomorrow:  coerceOr(raw.GTITomorrow, 0),
		BuyForecast:  coerceSeries(raw.BuyForecast, NeverSell),
		SellForecast: coerceSeries(raw.SellForecast, 0),
	}

	snap.SOC = combinedSOC(raw)

	chargeW := coerceOr(raw.OptimalCharging, cfg.DefaultChargeW)
	dischargeW := coerceOr(raw.OptimalDischarging, cfg.DefaultDischargeW)
	snap.OptimalChargingW = chargeW
	snap.MaxChargeKWhPerPeriod = chargeW / 1000.0 * 0.5
	snap.MaxDischargeKWhPerPeriod = dischargeW / 1000.0 * 0.5

	snap.HourlyGTI = hourlyGTI(raw.WeatherData)

	if est, ok := raw.MQTTData["solar_estimate"].(map[string]any); ok {
		snap.PVRemainingKWh = coerceOr(est["solar_estimate_remaining"], 0)
		snap.SurplusDeficitKWh = coerceOr(est["solar_surplus_deficit"], 0)
	}
	return snap
}

// combinedSOC averages the per-inverter SOC readings when the site reports
// them, falling back to the directly reported scalar.
func combinedSOC(raw model.RawSnapshot) float64 {
	var sum float64
	var n int
	for _, params := range raw.Inverters {
		if soc, ok := coerceFloat(params["battery_soc"]); ok {
			sum += soc
			n++
		}
	}
	if n > 0 {
		return sum / float64(n)
	}
	return coerceOr(raw.BatterySOC, 0)
}

// coerceFloat extracts a float from the formats hosts are known to send:
// numbers, numeric strings, and {"value": x} wrappers.
func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case map[string]any:
		if inner, ok := x["value"]; ok {
			return coerceFloat(inner)
		}
	}
	return 0, false
}

func coerceOr(v any, def float64) float64 {
	if f, ok := coerceFloat(v); ok {
		return f
	}
	return def
}

func coerceSeries(in []any, entryDefault float64) []float64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = coerceOr(v, entryDefault)
	}
	return out
}

// hourOfDay extracts the local hour from whatever the host sent as the
// interval time. A missing timestamp yields hour 0, which biases every
// time-gated rule toward the conservative overnight path.
func hourOfDay(v any) int {
	switch x := v.(type) {
	case time.Time:
		return x.Hour()
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, x); err == nil {
				return t.Hour()
			}
		}
	case float64:
		h := int(x) % 24
		if h < 0 {
			h += 24
		}
		return h
	}
	return 0
}

// fractionalHour parses sunrise/sunset style values: a time.Time, an ISO
// timestamp string, or an already fractional hour number.
func fractionalHour(v any, def float64) float64 {
	switch x := v.(type) {
	case time.Time:
		return float64(x.Hour()) + float64(x.Minute())/60.0
	case float64:
		if x >= 0 && x < 24 {
			return x
		}
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return float64(t.Hour()) + float64(t.Minute())/60.0
		}
		// "2024-11-07T04:47:00+10:00" variants that RFC3339 rejects:
		// take the clock part between 'T' and the zone suffix.
		if i := strings.Index(x, "T"); i >= 0 {
			clock := x[i+1:]
			for _, sep := range []string{"+", "-", ".", "Z"} {
				if j := strings.Index(clock, sep); j >= 0 {
					clock = clock[:j]
				}
			}
			parts := strings.Split(clock, ":")
			if len(parts) >= 2 {
				h, err1 := strconv.Atoi(parts[0])
				m, err2 := strconv.Atoi(parts[1])
				if err1 == nil && err2 == nil && h >= 0 && h < 24 {
					return float64(h) + float64(m)/60.0
				}
			}
		}
	}
	return def
}

func hourlyGTI(weather map[string]any) []float64 {
	hourly, ok := weather["hourly"].(map[string]any)
	if !ok {
		return nil
	}
	series, ok := hourly["global_tilted_irradiance_instant"].([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(series))
	for _, v := range series {
		out = append(out, coerceOr(v, 0))
	}
	return out
}
