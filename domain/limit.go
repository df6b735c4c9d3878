package domain

import (
	"math"
	"strconv"
	"strings"
)

// ClampLimit parses a limit query value. Unparseable input yields
// DefaultLimit; anything else is clamped into [1, MaxLimit].
func ClampLimit(raw string) int {
	n, ok := ParseLeadingInt(raw)
	if !ok {
		return DefaultLimit
	}
	return min(max(n, 1), MaxLimit)
}

// ParseLeadingInt reads an optionally signed run of decimal digits at the
// start of s after leading whitespace, ignoring whatever follows. "12px"
// parses as 12. Values beyond the int range saturate.
func ParseLeadingInt(s string) (int, bool) {
	f, ok := ParseLeadingNumber(s)
	if !ok {
		return 0, false
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(f), true
}

// ParseLeadingNumber is ParseLeadingInt without the int range: the digit run
// is rounded to the nearest float64, and a run too long to represent yields
// an infinity.
func ParseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign = s[:1]
		s = s[1:]
	}

	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return 0, false
	}

	// ErrRange still returns the signed infinity, which is the wanted value.
	f, _ := strconv.ParseFloat(sign+s[:digits], 64)
	return f, true
}

// Uint32Bits keeps the low 32 bits of the integer part of f, taken modulo
// 2^32. NaN and infinities map to 0.
func Uint32Bits(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return uint32(m)
}
