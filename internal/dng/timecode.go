package dng

import "math"

// toTimecodeByte packs a 0-99 value into one BCD byte: tens in the high
// nibble, units in the low nibble.
func toTimecodeByte(value int) byte {
	return byte(((value / 10) << 4) | (value % 10))
}

// BuildTimeCode produces the 8-byte SMPTE-shaped TimeCode tag value for
// frameNumber at the given recording framerate. Byte order is
// frames, seconds, minutes, hours — not the hh:mm:ss:ff reading order —
// matching the original renderer exactly; the remaining four bytes of
// the DNG TimeCode field are left zero.
func BuildTimeCode(frameNumber int, fps float64) [8]byte {
	var tc [8]byte
	if fps <= 0 {
		return tc
	}
	t := float64(frameNumber) / fps
	hours := int(math.Floor(t / 3600))
	minutes := int(math.Floor(t/60)) % 60
	seconds := int(math.Floor(t)) % 60

	frames := 0
	if fps > 1 {
		frames = frameNumber % int(math.Round(fps))
	}

	tc[0] = toTimecodeByte(frames) & 0x3F
	tc[1] = toTimecodeByte(seconds) & 0x7F
	tc[2] = toTimecodeByte(minutes) & 0x7F
	tc[3] = toTimecodeByte(hours) & 0x3F
	return tc
}
