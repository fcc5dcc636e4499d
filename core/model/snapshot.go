package model

// RawSnapshot mirrors the loosely typed payload the rules-engine host
// supplies once per dispatch interval. Scalar fields are declared as `any`
// because hosts have been observed to send numbers, numeric strings, or
// `{"value": x}` wrappers for the same field; the strategy normalizer is
// responsible for coercion and defaulting.
type RawSnapshot struct {
	SiteID       string `json:"site_id"`
	IntervalTime any    `json:"interval_time"`
	Sunrise      any    `json:"sunrise"`
	Sunset       any    `json:"sunset"`

	BuyPrice        any `json:"buy_price"`
	SellPrice       any `json:"sell_price"`
	RRP             any `json:"rrp"`
	BatterySOC      any `json:"battery_soc"`
	BatteryCapacity any `json:"battery_capacity"` // Wh

	BuyForecast  []any `json:"buy_forecast"`
	SellForecast []any `json:"sell_forecast"`

	SolarPower  any            `json:"solar_power"` // W
	GTIToday    any            `json:"gti_today"`
	GTITomorrow any            `json:"gti_sum_tomorrow"`
	WeatherData map[string]any `json:"weather_data"`
	MQTTData    map[string]any `json:"mqtt_data"`

	// Inverters maps inverter identifiers to their reported parameters for
	// multi-inverter sites. Values follow the host's per-inverter schema
	// (battery_soc, house_power, battery_power, solar_power).
	Inverters map[string]map[string]any `json:"inverters"`

	OptimalCharging    any `json:"optimal_charging"`    // W
	OptimalDischarging any `json:"optimal_discharging"` // W
}

// Snapshot is the fully typed, defaulted view of one dispatch interval.
// Every field is safe to use without further nil or range checks.
type Snapshot struct {
	Site        string
	Hour        int     // local hour of day [0,24)
	SunriseHour float64 // fractional, e.g. 4.78 = 04:47
	SunsetHour  float64

	BuyPrice   float64 // c/kWh
	SellPrice  float64 // c/kWh
	RRP        float64 // $/MWh as reported by the wholesale market
	SOC        float64 // percent, may transiently exceed 100
	CapacityWh float64

	BuyForecast  []float64 // half-hourly, c/kWh
	SellForecast []float64

	SolarPowerW float64
	GTIToday    float64
	GTITomorrow float64
	HourlyGTI   []float64 // 24 or 48 hourly entries, today then tomorrow

	// Per-period (0.5 h) energy limits derived from the inverter ratings.
	MaxChargeKWhPerPeriod    float64
	MaxDischargeKWhPerPeriod float64
	OptimalChargingW         float64

	// Solar estimates relayed through mqtt_data, zero when absent.
	PVRemainingKWh    float64
	SurplusDeficitKWh float64
}

// BatteryKWh returns the capacity in kWh.
func (s Snapshot) BatteryKWh() float64 { return s.CapacityWh / 1000.0 }

// EnergyAboveKWh returns the energy stored above the given SOC floor,
// never negative.
func (s Snapshot) EnergyAboveKWh(floorSOC float64) float64 {
	avail := (s.SOC - floorSOC) / 100.0 * s.BatteryKWh()
	if avail < 0 {
		return 0
	}
	return avail
}
