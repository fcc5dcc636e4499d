package strategy

// InWrappingWindow reports whether hour falls inside [from, to), where the
// window may wrap past midnight (from >= to). Hours are fractional local
// hours of day.
func InWrappingWindow(hour, from, to float64) bool {
	if from < to {
		return hour >= from && hour < to
	}
	return hour >= from || hour < to
}

// HoursUntil returns the number of hours from `hour` forward to `target`,
// wrapping past midnight when target is numerically behind.
func HoursUntil(hour, target float64) float64 {
	if hour >= target {
		return (24 - hour) + target
	}
	return target - hour
}

// PeriodHour returns the wall-clock hour of the forecast period at the given
// index, with half-hourly periods starting at `hour`.
func PeriodHour(hour int, index int) float64 {
	h := float64(hour) + float64(index)*0.5
	for h >= 24 {
		h -= 24
	}
	return h
}
