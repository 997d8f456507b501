package dng

import (
	"encoding/binary"
	"math"

	"github.com/motioncam/dngpipe/internal/shading"
)

const (
	opcodeGainMapID      = 9
	opcodeGainMapVersion = 0x01030000
	opcodeOptionalFlag   = 1 // reader may skip this opcode if unsupported
)

// BuildGainMapOpcode serializes a shading.Map as a DNG Opcode List 2
// buffer containing a single GainMap opcode, using the active-area
// relative origin/spacing the shading engine requires.
func BuildGainMapOpcode(m *shading.Map, imageWidth, imageHeight, top, left int) []byte {
	planes := min(len(nonEmptyPlanes(m)), 4)
	if planes == 0 {
		return nil
	}

	rowPitch := clampPitch(imageHeight, m.Height)
	colPitch := clampPitch(imageWidth, m.Width)

	params := make([]byte, 0, 76+planes*m.Width*m.Height*4)
	params = appendBEU32(params, 0)                     // Top
	params = appendBEU32(params, 0)                     // Left
	params = appendBEU32(params, uint32(imageHeight))   // Bottom
	params = appendBEU32(params, uint32(imageWidth))    // Right
	params = appendBEU32(params, 0)                     // Plane
	params = appendBEU32(params, uint32(planes))        // Planes
	params = appendBEU32(params, uint32(rowPitch))      // RowPitch
	params = appendBEU32(params, uint32(colPitch))      // ColPitch
	params = appendBEU32(params, uint32(m.Height))      // MapPointsV
	params = appendBEU32(params, uint32(m.Width))       // MapPointsH
	params = appendBEF64(params, 1.0/float64(rowPitch)*float64(imageHeight)/float64(m.Height)) // MapSpacingV
	params = appendBEF64(params, 1.0/float64(colPitch)*float64(imageWidth)/float64(m.Width))    // MapSpacingH
	params = appendBEF64(params, float64(top)/float64(imageHeight))  // MapOriginV
	params = appendBEF64(params, float64(left)/float64(imageWidth))  // MapOriginH
	params = appendBEU32(params, uint32(planes))        // MapPlanes

	for p := 0; p < planes; p++ {
		for _, v := range m.Planes[p] {
			g := float64(v)
			if math.IsNaN(g) || math.IsInf(g, 0) {
				g = 1.0
			}
			if g < 0 {
				g = 0
			}
			if g > 16 {
				g = 16
			}
			params = appendBEF32(params, float32(g))
		}
	}

	out := make([]byte, 0, 4+16+len(params))
	out = appendBEU32(out, 1) // opcode count
	out = appendBEU32(out, opcodeGainMapID)
	out = appendBEU32(out, opcodeGainMapVersion)
	out = appendBEU32(out, opcodeOptionalFlag)
	out = appendBEU32(out, uint32(len(params)))
	out = append(out, params...)
	return out
}

func nonEmptyPlanes(m *shading.Map) []int {
	var idx []int
	for i, p := range m.Planes {
		if len(p) > 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

func clampPitch(imageDim, mapDim int) int {
	if mapDim <= 1 {
		return 1
	}
	p := (imageDim - 1) / (mapDim - 1)
	if p < 1 {
		return 1
	}
	return p
}

func appendBEU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendBEF32(b []byte, v float32) []byte {
	return appendBEU32(b, math.Float32bits(v))
}

func appendBEF64(b []byte, v float64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
	return append(b, tmp[:]...)
}
