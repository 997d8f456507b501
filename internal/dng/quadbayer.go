package dng

// QuadBayer4x4Pattern expands a 2x2 CFA pattern (channel indices in
// row-major order: top-left, top-right, bottom-left, bottom-right) into
// the 4x4 Quad-Bayer CFAPattern byte sequence DNG readers expect when
// CorrectQBCFAMetadata is requested. The tables are the literal ones the
// original renderer hardcodes per source 2x2 pattern; they are not
// derived algorithmically because the mapping isn't a simple tiling for
// every pattern.
func QuadBayer4x4Pattern(cfa2x2 [4]int) [16]byte {
	switch cfa2x2 {
	case [4]int{0, 1, 1, 2}: // RGGB
		return [16]byte{0, 0, 1, 1, 0, 0, 1, 1, 1, 1, 2, 2, 1, 1, 2, 2}
	case [4]int{2, 1, 1, 0}: // BGGR
		return [16]byte{2, 2, 1, 1, 2, 2, 1, 1, 1, 1, 0, 0, 1, 1, 0, 0}
	case [4]int{1, 0, 2, 1}: // GRBG
		return [16]byte{1, 1, 0, 0, 1, 1, 0, 0, 2, 2, 1, 1, 2, 2, 1, 1}
	default: // GBRG
		return [16]byte{1, 1, 2, 2, 1, 1, 2, 2, 0, 0, 1, 1, 0, 0, 1, 1}
	}
}
