package strategy

import "fmt"

// Config holds every tunable of the dynamic arbitrage strategy. Values are
// per inverter, prices in c/kWh unless stated otherwise.
type Config struct {
	// Time windows (local hours).
	PeakStart           int `json:"peak_start"`
	PeakEnd             int `json:"peak_end"`
	DaytimeBuyStartHour int `json:"daytime_buy_start_hour"`

	// Price thresholds.
	MaxAMBuyPrice    float64 `json:"max_am_buy_price"`
	BaseMinSellPrice float64 `json:"base_min_sell_price"`
	AlwaysSellPrice  float64 `json:"always_sell_price"`
	DesiredMargin    float64 `json:"desired_margin"`

	// Forecast settings. The horizon is counted in forecast periods.
	ForecastHorizonPeriods int     `json:"forecast_horizon_periods"`
	BuyUncertaintyRate     float64 `json:"buy_uncertainty_rate"`
	SellUncertaintyRate    float64 `json:"sell_uncertainty_rate"`

	// Overnight house load reserve, per inverter.
	HouseLoadKWhPerHour float64 `json:"house_load_kwh_per_hour"`

	// Solar classification thresholds (GTI, W·h/m²).
	GTISunnyThreshold  float64 `json:"gti_sunny_threshold"`
	GTINormalThreshold float64 `json:"gti_normal_threshold"`

	// SOC floors and export budgets keyed by weather class.
	SunnyFloorSOC      float64 `json:"sunny_floor_soc"`
	NormalFloorSOC     float64 `json:"normal_floor_soc"`
	RainyFloorSOC      float64 `json:"rainy_floor_soc"`
	SunnyExportBudget  float64 `json:"sunny_export_budget"`  // kWh
	NormalExportBudget float64 `json:"normal_export_budget"` // kWh
	RainyExportBudget  float64 `json:"rainy_export_budget"`  // kWh

	// Morning target band the overnight drain aims for.
	TargetMorningSOCMin float64 `json:"target_morning_soc_min"`
	TargetMorningSOCMax float64 `json:"target_morning_soc_max"`

	// OvernightThresholdFactor relaxes the dynamic sell threshold after
	// peak end to encourage draining (0.70 accepts prices 30% lower).
	OvernightThresholdFactor float64 `json:"overnight_threshold_factor"`

	// Daytime opportunistic selling.
	DaytimeOpportunisticSellPrice float64 `json:"daytime_opportunistic_sell_price"`
	DaytimeArbitrageMargin        float64 `json:"daytime_arbitrage_margin"`
	DaytimeSafetyMargin           float64 `json:"daytime_safety_margin"`
	SunnyPVOffsetHours            float64 `json:"sunny_pv_offset_hours"`
	NormalPVOffsetHours           float64 `json:"normal_pv_offset_hours"`
	RainyPVOffsetHours            float64 `json:"rainy_pv_offset_hours"`

	// PeakExportCapKWh caps the revenue estimate used to justify floor
	// protection charging at a realistic per-peak export volume.
	PeakExportCapKWh float64 `json:"peak_export_cap_kwh"`

	// Fallback inverter ratings when the host omits them (W).
	DefaultChargeW    float64 `json:"default_charge_w"`
	DefaultDischargeW float64 `json:"default_discharge_w"`
	DefaultSunrise    float64 `json:"default_sunrise"`
	DefaultSunset     float64 `json:"default_sunset"`
}

// SetDefaults applies the tuned strategy defaults.
func (c *Config) SetDefaults() {
	if c.PeakStart == 0 {
		c.PeakStart = 16
	}
	if c.PeakEnd == 0 {
		c.PeakEnd = 20
	}
	if c.DaytimeBuyStartHour == 0 {
		c.DaytimeBuyStartHour = 9
	}
	if c.MaxAMBuyPrice == 0 {
		c.MaxAMBuyPrice = 10.0
	}
	if c.BaseMinSellPrice == 0 {
		c.BaseMinSellPrice = 5.0
	}
	if c.AlwaysSellPrice == 0 {
		c.AlwaysSellPrice = 35.0
	}
	if c.DesiredMargin == 0 {
		c.DesiredMargin = 5.0
	}
	if c.ForecastHorizonPeriods == 0 {
		c.ForecastHorizonPeriods = 8
	}
	if c.BuyUncertaintyRate == 0 {
		c.BuyUncertaintyRate = 0.03
	}
	if c.SellUncertaintyRate == 0 {
		c.SellUncertaintyRate = 0.07
	}
	if c.HouseLoadKWhPerHour == 0 {
		c.HouseLoadKWhPerHour = 2.75
	}
	if c.GTISunnyThreshold == 0 {
		c.GTISunnyThreshold = 6000
	}
	if c.GTINormalThreshold == 0 {
		c.GTINormalThreshold = 3500
	}
	if c.SunnyFloorSOC == 0 {
		c.SunnyFloorSOC = 7.5
	}
	if c.NormalFloorSOC == 0 {
		c.NormalFloorSOC = 17.5
	}
	if c.RainyFloorSOC == 0 {
		c.RainyFloorSOC = 30.0
	}
	if c.SunnyExportBudget == 0 {
		c.SunnyExportBudget = 20.0
	}
	if c.NormalExportBudget == 0 {
		c.NormalExportBudget = 12.5
	}
	if c.RainyExportBudget == 0 {
		c.RainyExportBudget = 5.0
	}
	if c.TargetMorningSOCMin == 0 {
		c.TargetMorningSOCMin = 10.0
	}
	if c.TargetMorningSOCMax == 0 {
		c.TargetMorningSOCMax = 20.0
	}
	if c.OvernightThresholdFactor == 0 {
		c.OvernightThresholdFactor = 0.70
	}
	if c.DaytimeOpportunisticSellPrice == 0 {
		c.DaytimeOpportunisticSellPrice = 5.0
	}
	if c.DaytimeArbitrageMargin == 0 {
		c.DaytimeArbitrageMargin = 3.0
	}
	if c.DaytimeSafetyMargin == 0 {
		c.DaytimeSafetyMargin = 1.5
	}
	if c.SunnyPVOffsetHours == 0 {
		c.SunnyPVOffsetHours = 1.0
	}
	if c.NormalPVOffsetHours == 0 {
		c.NormalPVOffsetHours = 2.0
	}
	if c.RainyPVOffsetHours == 0 {
		c.RainyPVOffsetHours = 3.0
	}
	if c.PeakExportCapKWh == 0 {
		c.PeakExportCapKWh = 20.0
	}
	if c.DefaultChargeW == 0 {
		c.DefaultChargeW = 10000
	}
	if c.DefaultDischargeW == 0 {
		c.DefaultDischargeW = 10000
	}
	if c.DefaultSunrise == 0 {
		c.DefaultSunrise = 6.0
	}
	if c.DefaultSunset == 0 {
		c.DefaultSunset = 18.0
	}
}

// Validate checks the window and band invariants.
func (c Config) Validate() error {
	if c.PeakStart < 0 || c.PeakStart > 23 || c.PeakEnd < 0 || c.PeakEnd > 23 {
		return fmt.Errorf("peak window hours must be within [0,23]")
	}
	if c.PeakEnd <= c.PeakStart {
		return fmt.Errorf("peak_end %d must be after peak_start %d", c.PeakEnd, c.PeakStart)
	}
	if c.TargetMorningSOCMax < c.TargetMorningSOCMin {
		return fmt.Errorf("target morning SOC band is inverted")
	}
	if c.GTISunnyThreshold < c.GTINormalThreshold {
		return fmt.Errorf("gti_sunny_threshold must be >= gti_normal_threshold")
	}
	if c.OvernightThresholdFactor <= 0 || c.OvernightThresholdFactor > 1 {
		return fmt.Errorf("overnight_threshold_factor must be in (0,1]")
	}
	return nil
}
