package dng

import "math"

const maxRationalDenominator = 1 << 20

// FloatToRational converts a non-negative float into a u32/u32 fraction
// via a continued-fraction expansion, capping the denominator so the
// result always fits TIFF's RATIONAL encoding.
func FloatToRational(v float64) (num, den uint32) {
	if v < 0 {
		v = 0
	}
	n, d := floatToFraction(v, maxRationalDenominator)
	if n < 0 {
		n = 0
	}
	return uint32(n), uint32(d)
}

// FloatToSRational converts an arbitrary-sign float into an i32/i32
// fraction the same way, preserving sign in the numerator.
func FloatToSRational(v float64) (num, den int32) {
	sign := int64(1)
	if v < 0 {
		sign = -1
		v = -v
	}
	n, d := floatToFraction(v, maxRationalDenominator)
	return int32(sign * n), int32(d)
}

// floatToFraction is the continued-fraction best-rational-approximation
// algorithm: at each step it takes the integer part, recurses on the
// fractional remainder, and stops once the denominator would exceed
// maxDenom or the remainder is negligible.
func floatToFraction(v float64, maxDenom int64) (num, den int64) {
	if v == 0 {
		return 0, 1
	}
	if math.IsInf(v, 1) {
		return maxDenom, 1
	}

	h1, h2 := int64(1), int64(0)
	k1, k2 := int64(0), int64(1)
	b := v
	for i := 0; i < 64; i++ {
		a := int64(math.Floor(b))
		h := a*h1 + h2
		k := a*k1 + k2
		if k > maxDenom {
			break
		}
		h2, h1 = h1, h
		k2, k1 = k1, k
		frac := b - float64(a)
		if frac < 1e-9 {
			break
		}
		b = 1 / frac
	}
	if k1 == 0 {
		return int64(math.Round(v * float64(maxDenom))), maxDenom
	}
	return h1, k1
}
