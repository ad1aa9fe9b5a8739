/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package draw

import (
	"math"
	"time"
)

// PRNG maps a seed to a float in [0, 1). The same seed always yields the same
// value, which is what makes the daily draw shared by every player.
type PRNG func(seed float64) float64

// SineHash is frac(sin(x) * 10000). It is not a good random source, only a
// reproducible one.
func SineHash(x float64) float64 {
	v := math.Sin(x) * 10000
	f := v - math.Floor(v)
	if f >= 1 || f < 0 {
		return 0
	}
	return f
}

// DailySeed returns the UTC calendar date of t as YYYYMMDD.
func DailySeed(t time.Time) int {
	u := t.UTC()
	return u.Year()*10000 + int(u.Month())*100 + u.Day()
}

// index scales a PRNG output to [0, n).
func index(f float64, n int) int {
	i := int(math.Floor(f * float64(n)))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
