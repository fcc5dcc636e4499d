package strategy

import (
	"testing"

	"github.com/mpons/battarb/core/model"
)

func testConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

func TestClassifySolar(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		gti  float64
		want SolarClass
	}{
		{6500, SolarSunny},
		{6000, SolarSunny},
		{4000, SolarNormal},
		{3500, SolarNormal},
		{1000, SolarRainy},
		{0, SolarRainy},
	}
	for _, c := range cases {
		if got := ClassifySolar(c.gti, cfg); got != c.want {
			t.Fatalf("ClassifySolar(%v) = %v, want %v", c.gti, got, c.want)
		}
	}
}

func TestFloorGTIBeforeSunriseUsesToday(t *testing.T) {
	snap := model.Snapshot{Hour: 5, SunriseHour: 6, GTIToday: 4200, GTITomorrow: 100}
	gti, src := FloorGTI(snap)
	if gti != 4200 || src != "today" {
		t.Fatalf("expected today's 4200, got %v (%s)", gti, src)
	}
}

func TestFloorGTIAfterSunrisePrefersPureTomorrow(t *testing.T) {
	hourly := make([]float64, 48)
	for i := 24; i < 48; i++ {
		hourly[i] = 100
	}
	snap := model.Snapshot{Hour: 10, SunriseHour: 6, HourlyGTI: hourly, GTITomorrow: 999}
	gti, src := FloorGTI(snap)
	if gti != 2400 || src != "tomorrow_pure" {
		t.Fatalf("expected 2400 from hourly series, got %v (%s)", gti, src)
	}
}

func TestFloorGTIAfterSunriseFallsBackToMixedSum(t *testing.T) {
	snap := model.Snapshot{Hour: 10, SunriseHour: 6, GTITomorrow: 3100}
	gti, src := FloorGTI(snap)
	if gti != 3100 || src != "tomorrow_mixed" {
		t.Fatalf("expected mixed 3100, got %v (%s)", gti, src)
	}
}
