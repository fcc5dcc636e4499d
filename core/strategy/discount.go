package strategy

import "math"

// DiscountDirection selects whether uncertainty inflates or deflates a
// price forecast.
type DiscountDirection int

const (
	// Inflate compounds prices upward with horizon; used for buy
	// forecasts so distant cheap periods look less attractive.
	Inflate DiscountDirection = iota
	// Deflate compounds prices downward; used for sell forecasts so
	// distant revenue looks less certain.
	Deflate
)

// Discount applies exponential uncertainty discounting to a price forecast:
// out[i] = in[i] * (1 ± rate)^i over the first min(horizon, len(series))
// periods. An empty input or non-positive horizon yields an empty result;
// callers substitute sentinels per the normalizer's rules.
func Discount(series []float64, horizon int, rate float64, dir DiscountDirection) []float64 {
	if len(series) == 0 || horizon <= 0 {
		return nil
	}
	if dir == Deflate {
		rate = -rate
	}
	n := horizon
	if len(series) < n {
		n = len(series)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = series[i] * math.Pow(1+rate, float64(i))
	}
	return out
}
