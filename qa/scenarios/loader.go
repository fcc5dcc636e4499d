package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mpons/battarb/core/model"
)

// SnapshotDef is the YAML-friendly shape of one dispatch interval. Omitted
// fields stay nil so the normalizer applies its usual defaults and sentinels.
type SnapshotDef struct {
	SiteID          string    `yaml:"site_id"`
	IntervalTime    string    `yaml:"interval_time"`
	Sunrise         *float64  `yaml:"sunrise,omitempty"`
	Sunset          *float64  `yaml:"sunset,omitempty"`
	BuyPrice        *float64  `yaml:"buy_price,omitempty"`
	SellPrice       *float64  `yaml:"sell_price,omitempty"`
	RRP             *float64  `yaml:"rrp,omitempty"`
	BatterySOC      *float64  `yaml:"battery_soc,omitempty"`
	BatteryCapacity *float64  `yaml:"battery_capacity,omitempty"`
	BuyForecast     []float64 `yaml:"buy_forecast,omitempty"`
	SellForecast    []float64 `yaml:"sell_forecast,omitempty"`
	SolarPower      *float64  `yaml:"solar_power,omitempty"`
	GTIToday        *float64  `yaml:"gti_today,omitempty"`
	GTITomorrow     *float64  `yaml:"gti_sum_tomorrow,omitempty"`
	OptimalCharging *float64  `yaml:"optimal_charging,omitempty"`
}

func (s SnapshotDef) ToRaw() model.RawSnapshot {
	return model.RawSnapshot{
		SiteID:          s.SiteID,
		IntervalTime:    s.IntervalTime,
		Sunrise:         optional(s.Sunrise),
		Sunset:          optional(s.Sunset),
		BuyPrice:        optional(s.BuyPrice),
		SellPrice:       optional(s.SellPrice),
		RRP:             optional(s.RRP),
		BatterySOC:      optional(s.BatterySOC),
		BatteryCapacity: optional(s.BatteryCapacity),
		BuyForecast:     toAnySlice(s.BuyForecast),
		SellForecast:    toAnySlice(s.SellForecast),
		SolarPower:      optional(s.SolarPower),
		GTIToday:        optional(s.GTIToday),
		GTITomorrow:     optional(s.GTITomorrow),
		OptimalCharging: optional(s.OptimalCharging),
	}
}

type Expected struct {
	Action string `yaml:"action"`
	Rule   string `yaml:"rule,omitempty"`
}

type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	// Region selects a regional rule table; empty runs the arbitrage engine.
	Region   string      `yaml:"region,omitempty"`
	Snapshot SnapshotDef `yaml:"snapshot"`
	Expected Expected    `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func optional(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func toAnySlice(vs []float64) []any {
	if len(vs) == 0 {
		return nil
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
