package mcraw

import "encoding/binary"

const (
	blockTypeFrame     = 2
	blockTypeAudioAux  = 3

	minFrameSize = 1024
	maxFrameSize = 50 * 1024 * 1024
	minAuxSize   = 100
	maxAuxSize   = 10 * 1024 * 1024

	maxConsecutiveInvalid = 5
)

var zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

func hasZstdMagic(b []byte) bool {
	return len(b) >= 4 && b[0] == zstdMagic[0] && b[1] == zstdMagic[1] && b[2] == zstdMagic[2] && b[3] == zstdMagic[3]
}

// typedBlock is one {type, size, payload} record from strategy 1.
type typedBlock struct {
	kind   uint32
	offset int // offset of payload, not header
	size   int
}

// walkTypedBlocks implements detection strategy 1: walk the payload as a
// sequence of (type:u32, size:u32, payload) records. It tolerates
// corruption by advancing one byte and resetting a consecutive-invalid
// counter, aborting the whole strategy after maxConsecutiveInvalid
// straight misses — mirroring the byte-at-a-time resync approach the
// JPEG marker scanner in the pack uses for malformed segments.
func walkTypedBlocks(data []byte, start int) []typedBlock {
	var blocks []typedBlock
	pos := start
	invalid := 0
	for pos+8 <= len(data) && invalid < maxConsecutiveInvalid {
		kind := binary.LittleEndian.Uint32(data[pos : pos+4])
		size := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		payloadOff := pos + 8
		payloadEnd := payloadOff + int(size)

		valid := payloadEnd <= len(data) &&
			((kind == blockTypeFrame && int(size) >= minFrameSize && int(size) <= maxFrameSize) ||
				(kind == blockTypeAudioAux && int(size) >= minAuxSize && int(size) <= maxAuxSize))

		if !valid {
			invalid++
			pos++
			continue
		}
		invalid = 0
		blocks = append(blocks, typedBlock{kind: kind, offset: payloadOff, size: int(size)})
		pos = payloadEnd
	}
	return blocks
}
