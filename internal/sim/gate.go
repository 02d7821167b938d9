package sim

import (
	"math"
	"time"
)

// ShouldFire reports whether a control cycle is due at now given the time of
// the last accepted cycle. A non-positive period fires on every call.
func ShouldFire(now, last, period float64) bool {
	return Due(now-last, period)
}

// Due reports whether delta seconds cover one period.
func Due(delta, period float64) bool {
	if period <= 0 {
		return true
	}
	return delta >= period
}

// Since returns now-last in seconds, subtracting on the nanosecond grid of
// the engine clock so that whole periods come out exact.
func Since(now, last float64) float64 {
	return (clock(now) - clock(last)).Seconds()
}

func clock(t float64) time.Duration {
	return time.Duration(math.Round(t * float64(time.Second)))
}
