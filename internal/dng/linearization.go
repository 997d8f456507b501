package dng

import "math"

// BuildLinearizationTable produces the inverse of the log2 transfer
// curve applied by the frame renderer, so a log-encoded frame can
// advertise linear semantics to a DNG reader. Entry i maps a stored
// code i (out of dstWhite) back to a 16-bit linear-light value; the
// endpoints are forced to the exact bounds regardless of floating-point
// rounding near i==0 and i==dstWhite.
func BuildLinearizationTable(dstWhite int) []uint16 {
	n := dstWhite + 1
	table := make([]uint16, n)
	log2_61 := math.Log2(61)
	for i := 0; i < n; i++ {
		switch i {
		case 0:
			table[i] = 0
		case n - 1:
			table[i] = 65535
		default:
			normalized := float64(i) / float64(dstWhite)
			linear := (math.Exp2(normalized*log2_61) - 1) / 60
			if linear < 0 {
				linear = 0
			}
			if linear > 1 {
				linear = 1
			}
			table[i] = uint16(math.Round(linear * 65535))
		}
	}
	return table
}

// LinearizationApplies implements the exact presence guard used by the
// original renderer: the table is written whenever log transform is
// enabled at all, except for the specific combination of KeepInput
// without shading applied, where the log curve never touched pixels.
func LinearizationApplies(logTransformEnabled, logTransformIsKeepInput, shadingApplied bool) bool {
	if !logTransformEnabled {
		return false
	}
	if logTransformIsKeepInput && !shadingApplied {
		return false
	}
	return true
}
