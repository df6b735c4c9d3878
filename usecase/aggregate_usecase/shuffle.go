package aggregate_usecase

import (
	"math"
	"time"
)

// Xorshift32 returns a generator of floats in [0, 1] driven by a 32-bit
// xorshift state. A zero seed produces zeros forever.
func Xorshift32(seed uint32) func() float64 {
	x := seed
	return func() float64 {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		return float64(x) / math.MaxUint32
	}
}

// Shuffle permutes items in place with Fisher-Yates driven by Xorshift32.
// The result depends only on seed and the incoming order.
func Shuffle[T any](items []T, seed uint32) []T {
	rand := Xorshift32(seed)
	for i := len(items) - 1; i > 0; i-- {
		j := int(math.Floor(rand() * float64(i+1)))
		if j > i {
			j = i
		}
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// Period sub-tab keys that seed the aggregate shuffle by calendar.
const (
	SubToday   = "today"
	SubWeekly  = "weekly"
	SubMonthly = "monthly"
)

// SeedForSub derives the shuffle seed for an aggregate tab's sub key. Period
// keys are stable for the local calendar day, ISO week or month.
func SeedForSub(subKey string, now time.Time) uint32 {
	switch subKey {
	case "":
		return 1
	case SubToday:
		return uint32(now.Year()*10000 + int(now.Month())*100 + now.Day())
	case SubWeekly:
		year, week := now.ISOWeek()
		return uint32(year*100 + week)
	case SubMonthly:
		return uint32(now.Year()*100 + int(now.Month()))
	}
	return hashSeed(subKey)
}

// hashSeed is a base-31 hash over code points, never zero.
func hashSeed(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h*31 + uint32(r)
	}
	if h == 0 {
		return 1
	}
	return h
}
