package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpons/battarb/core/model"
)

func TestNormalizeCoercesMixedScalarFormats(t *testing.T) {
	cfg := testConfig()
	raw := model.RawSnapshot{
		SiteID:          "site-1",
		BuyPrice:        "12.5",
		SellPrice:       map[string]any{"value": 7.25},
		RRP:             int64(120),
		BatterySOC:      float32(55),
		BatteryCapacity: 50000.0,
	}
	snap := Normalize(raw, cfg)
	assert.Equal(t, "site-1", snap.Site)
	assert.InDelta(t, 12.5, snap.BuyPrice, 1e-9)
	assert.InDelta(t, 7.25, snap.SellPrice, 1e-9)
	assert.InDelta(t, 120, snap.RRP, 1e-9)
	assert.InDelta(t, 55, snap.SOC, 1e-3)
	assert.InDelta(t, 50, snap.BatteryKWh(), 1e-9)
}

func TestNormalizeDefaultsForMissingFields(t *testing.T) {
	cfg := testConfig()
	snap := Normalize(model.RawSnapshot{}, cfg)
	// Missing buy price must not look cheap.
	assert.Equal(t, NeverSell, snap.BuyPrice)
	assert.Zero(t, snap.SellPrice)
	assert.Zero(t, snap.SOC)
	assert.Equal(t, 0, snap.Hour)
	assert.InDelta(t, cfg.DefaultSunrise, snap.SunriseHour, 1e-9)
	assert.InDelta(t, cfg.DefaultSunset, snap.SunsetHour, 1e-9)
	assert.Nil(t, snap.BuyForecast)
	assert.Nil(t, snap.SellForecast)
}

func TestNormalizeForecastEntrySentinels(t *testing.T) {
	cfg := testConfig()
	raw := model.RawSnapshot{
		BuyForecast:  []any{10.0, "garbage", 12.0},
		SellForecast: []any{8.0, nil, 6.0},
	}
	snap := Normalize(raw, cfg)
	require.Len(t, snap.BuyForecast, 3)
	require.Len(t, snap.SellForecast, 3)
	// An unusable buy entry must never look cheap; an unusable sell entry
	// must never look worth selling.
	assert.Equal(t, NeverSell, snap.BuyForecast[1])
	assert.Zero(t, snap.SellForecast[1])
}

func TestNormalizeAveragesInverterSOC(t *testing.T) {
	cfg := testConfig()
	raw := model.RawSnapshot{
		BatterySOC: 99.0, // ignored when per-inverter data exists
		Inverters: map[string]map[string]any{
			"inv1": {"battery_soc": 40.0},
			"inv2": {"battery_soc": "60"},
		},
	}
	snap := Normalize(raw, cfg)
	assert.InDelta(t, 50, snap.SOC, 1e-9)
}

func TestNormalizeParsesTimes(t *testing.T) {
	cfg := testConfig()
	raw := model.RawSnapshot{
		IntervalTime: "2024-11-07T14:30:00+10:00",
		Sunrise:      "2024-11-07T04:47:00+10:00",
		Sunset:       time.Date(2024, 11, 7, 18, 15, 0, 0, time.FixedZone("AEST", 10*3600)),
	}
	snap := Normalize(raw, cfg)
	assert.Equal(t, 14, snap.Hour)
	assert.InDelta(t, 4.0+47.0/60.0, snap.SunriseHour, 1e-6)
	assert.InDelta(t, 18.25, snap.SunsetHour, 1e-6)
}

func TestNormalizeInverterRatings(t *testing.T) {
	cfg := testConfig()
	raw := model.RawSnapshot{OptimalCharging: 6000.0, OptimalDischarging: 4000.0}
	snap := Normalize(raw, cfg)
	assert.InDelta(t, 3.0, snap.MaxChargeKWhPerPeriod, 1e-9)
	assert.InDelta(t, 2.0, snap.MaxDischargeKWhPerPeriod, 1e-9)
	assert.InDelta(t, 6000, snap.OptimalChargingW, 1e-9)

	// Fallback ratings apply when the host omits them.
	snap = Normalize(model.RawSnapshot{}, cfg)
	assert.InDelta(t, cfg.DefaultChargeW/1000.0*0.5, snap.MaxChargeKWhPerPeriod, 1e-9)
}

func TestNormalizeHourlyGTI(t *testing.T) {
	cfg := testConfig()
	series := make([]any, 48)
	for i := range series {
		series[i] = 100.0
	}
	raw := model.RawSnapshot{
		WeatherData: map[string]any{
			"hourly": map[string]any{"global_tilted_irradiance_instant": series},
		},
	}
	snap := Normalize(raw, cfg)
	require.Len(t, snap.HourlyGTI, 48)
	assert.InDelta(t, 100, snap.HourlyGTI[30], 1e-9)
}

func TestNormalizeSolarEstimates(t *testing.T) {
	cfg := testConfig()
	raw := model.RawSnapshot{
		MQTTData: map[string]any{
			"solar_estimate": map[string]any{
				"solar_estimate_remaining": 12.5,
				"solar_surplus_deficit":    -3.0,
			},
		},
	}
	snap := Normalize(raw, cfg)
	assert.InDelta(t, 12.5, snap.PVRemainingKWh, 1e-9)
	assert.InDelta(t, -3.0, snap.SurplusDeficitKWh, 1e-9)
}
