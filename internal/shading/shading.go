// Package shading implements the lens-shading (vignette) gain map:
// bilinear sampling, the optional normalize/invert/color-only reduction
// operations, and the GainMap grid handed to the DNG writer's Opcode
// List 2 when the correction isn't baked directly into pixels.
package shading

import "math"

// Map holds four per-channel gain grids of identical dimensions, values
// nominally in [0, 16].
type Map struct {
	Width, Height int
	Planes        [4][]float32
}

// NewMap allocates a Map with zeroed planes of the given dimensions.
func NewMap(width, height int) *Map {
	m := &Map{Width: width, Height: height}
	for i := range m.Planes {
		m.Planes[i] = make([]float32, width*height)
	}
	return m
}

func (m *Map) at(plane, x, y int) float32 {
	if x < 0 {
		x = 0
	}
	if x >= m.Width {
		x = m.Width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= m.Height {
		y = m.Height - 1
	}
	return m.Planes[plane][y*m.Width+x]
}

// Sample performs clamp-to-edge bilinear interpolation of plane at
// normalized coordinates x, y in [0, 1].
func (m *Map) Sample(x, y float64, plane int) float64 {
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}
	if y < 0 {
		y = 0
	} else if y > 1 {
		y = 1
	}

	mapX := x * float64(m.Width-1)
	mapY := y * float64(m.Height-1)

	x0 := int(math.Floor(mapX))
	y0 := int(math.Floor(mapY))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= m.Width {
		x1 = m.Width - 1
	}
	if y1 >= m.Height {
		y1 = m.Height - 1
	}

	wx := mapX - float64(x0)
	wy := mapY - float64(y0)

	v00 := float64(m.at(plane, x0, y0))
	v01 := float64(m.at(plane, x1, y0))
	v10 := float64(m.at(plane, x0, y1))
	v11 := float64(m.at(plane, x1, y1))

	top := v00*(1-wx) + v01*wx
	bottom := v10*(1-wx) + v11*wx
	return top*(1-wy) + bottom*wy
}

// Normalize divides every value in every plane by the global maximum
// across all four planes. A no-op if that maximum is zero.
func (m *Map) Normalize() {
	max := float32(0)
	for _, plane := range m.Planes {
		for _, v := range plane {
			if v > max {
				max = v
			}
		}
	}
	if max == 0 {
		return
	}
	for _, plane := range m.Planes {
		for i := range plane {
			plane[i] /= max
		}
	}
}

// Invert replaces every value v with 1/v, but only if no plane contains
// a zero value anywhere — otherwise it is a no-op, matching the
// original renderer's "skip if any zero" guard.
func (m *Map) Invert() {
	for _, plane := range m.Planes {
		for _, v := range plane {
			if v == 0 {
				return
			}
		}
	}
	for _, plane := range m.Planes {
		for i, v := range plane {
			plane[i] = 1 / v
		}
	}
}

// ColorOnlyReduce divides each cell's four channel gains by the minimum
// of those four channels, leaving only the differential (color-cast)
// correction; a luminance-flat cell becomes (1,1,1,1). matchedGreens
// reports whether this CFA places its green planes at indices [1] and
// [2] (true for RGGB/BGGR, false for GRBG/GBRG); it is accepted but not
// used.
//
// The two green planes' minima are not equalized before the per-cell
// division; each cell is divided by its own four-channel minimum only.
func (m *Map) ColorOnlyReduce(matchedGreens bool) {
	n := m.Width * m.Height

	// The green-minima equalization step from the original implementation
	// is computed here for parity but has no observable effect: it only
	// feeds an "aggressive" per-channel divide that the original always
	// disables. Left out entirely rather than reproduced as dead code.
	_ = matchedGreens

	for cell := 0; cell < n; cell++ {
		local := m.Planes[0][cell]
		for p := 1; p < 4; p++ {
			if m.Planes[p][cell] < local {
				local = m.Planes[p][cell]
			}
		}
		if local == 0 {
			continue
		}
		for p := 0; p < 4; p++ {
			m.Planes[p][cell] /= local
		}
	}
}
