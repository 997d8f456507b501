package dng

import (
	"encoding/binary"
	"sort"
)

// TIFF field types used by the tag set this writer emits.
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeUndefined = 7
	typeSRational = 10
)

var typeSize = map[uint16]int{
	typeByte: 1, typeASCII: 1, typeShort: 2, typeLong: 4,
	typeRational: 8, typeUndefined: 1, typeSRational: 8,
}

// entry is one not-yet-serialized IFD field.
type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte // already little-endian encoded, length == count*typeSize[typ]
}

// IFDWriter accumulates DNG tags and serializes them into a single-IFD
// little-endian TIFF stream, in the manner of a conventional Go binary
// tag writer: typed Add* methods build up entries, Write lays them out
// in ascending tag order with values over 4 bytes stored after the IFD.
type IFDWriter struct {
	entries []entry
	// stripOffsetIdx indexes the StripOffsets entry so its value can be
	// patched once the final image data offset is known.
	stripOffsetIdx int
	hasStripOffset bool
}

func NewIFDWriter() *IFDWriter {
	return &IFDWriter{}
}

func (w *IFDWriter) add(tag, typ uint16, count uint32, data []byte) {
	w.entries = append(w.entries, entry{tag: tag, typ: typ, count: count, data: data})
}

func (w *IFDWriter) AddByte(tag uint16, vals []byte) {
	w.add(tag, typeByte, uint32(len(vals)), append([]byte{}, vals...))
}

func (w *IFDWriter) AddASCII(tag uint16, s string) {
	b := append([]byte(s), 0)
	w.add(tag, typeASCII, uint32(len(b)), b)
}

func (w *IFDWriter) AddShort(tag uint16, vals []uint16) {
	buf := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	w.add(tag, typeShort, uint32(len(vals)), buf)
}

func (w *IFDWriter) AddLong(tag uint16, vals []uint32) {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	w.add(tag, typeLong, uint32(len(vals)), buf)
}

// AddLongReserveStripOffset adds a single-LONG StripOffsets placeholder,
// remembering its position so PatchStripOffset can fill in the real
// value once layout is finalized.
func (w *IFDWriter) AddLongReserveStripOffset(tag uint16) {
	w.stripOffsetIdx = len(w.entries)
	w.hasStripOffset = true
	w.AddLong(tag, []uint32{0})
}

func (w *IFDWriter) AddRational(tag uint16, pairs [][2]uint32) {
	buf := make([]byte, len(pairs)*8)
	for i, p := range pairs {
		binary.LittleEndian.PutUint32(buf[i*8:], p[0])
		binary.LittleEndian.PutUint32(buf[i*8+4:], p[1])
	}
	w.add(tag, typeRational, uint32(len(pairs)), buf)
}

func (w *IFDWriter) AddSRational(tag uint16, pairs [][2]int32) {
	buf := make([]byte, len(pairs)*8)
	for i, p := range pairs {
		binary.LittleEndian.PutUint32(buf[i*8:], uint32(p[0]))
		binary.LittleEndian.PutUint32(buf[i*8+4:], uint32(p[1]))
	}
	w.add(tag, typeSRational, uint32(len(pairs)), buf)
}

func (w *IFDWriter) AddUndefined(tag uint16, data []byte) {
	w.add(tag, typeUndefined, uint32(len(data)), append([]byte{}, data...))
}

// AddRationalArrayFromFloats converts floats to rationals via
// FloatToRational and adds them as a RATIONAL array.
func (w *IFDWriter) AddRationalArrayFromFloats(tag uint16, vals []float64) {
	pairs := make([][2]uint32, len(vals))
	for i, v := range vals {
		n, d := FloatToRational(v)
		pairs[i] = [2]uint32{uint32(n), uint32(d)}
	}
	w.AddRational(tag, pairs)
}

// AddSRationalArrayFromFloats converts floats to signed rationals and
// adds them as an SRATIONAL array.
func (w *IFDWriter) AddSRationalArrayFromFloats(tag uint16, vals []float64) {
	pairs := make([][2]int32, len(vals))
	for i, v := range vals {
		n, d := FloatToSRational(v)
		pairs[i] = [2]int32{int32(n), int32(d)}
	}
	w.AddSRational(tag, pairs)
}

// Write serializes the header and IFD, then appends imageData
// immediately after any out-of-line field values, patching the
// StripOffsets entry (if reserved) to point at it.
func (w *IFDWriter) Write(imageData []byte) []byte {
	sort.Slice(w.entries, func(i, j int) bool { return w.entries[i].tag < w.entries[j].tag })

	const headerSize = 8
	ifdSize := 2 + len(w.entries)*12 + 4

	// First pass: lay out extra-value area, tracking each entry's final
	// inline-or-offset encoding.
	extraOffset := headerSize + ifdSize
	extra := make([]byte, 0, 256)
	inlineOrOffset := make([]uint32, len(w.entries))
	usesOffset := make([]bool, len(w.entries))

	for i, e := range w.entries {
		if len(e.data) <= 4 {
			continue
		}
		usesOffset[i] = true
		inlineOrOffset[i] = uint32(extraOffset + len(extra))
		extra = append(extra, e.data...)
		if len(extra)%2 == 1 {
			extra = append(extra, 0)
		}
	}

	imageOffset := uint32(extraOffset + len(extra))
	if w.hasStripOffset {
		w.entries[w.stripOffsetIdx].data = encodeLong(imageOffset)
	}

	out := make([]byte, 0, extraOffset+len(extra)+len(imageData))
	// Header: byte order "II", version 42, offset to first IFD (8).
	out = append(out, 'I', 'I', 0x2A, 0x00)
	out = append(out, encodeLong(8)...)

	// IFD entry count.
	out = append(out, encodeShort(uint16(len(w.entries)))...)
	for i, e := range w.entries {
		out = append(out, encodeShort(e.tag)...)
		out = append(out, encodeShort(e.typ)...)
		out = append(out, encodeLong(e.count)...)
		if usesOffset[i] {
			out = append(out, encodeLong(inlineOrOffset[i])...)
		} else {
			v := make([]byte, 4)
			copy(v, e.data)
			out = append(out, v...)
		}
	}
	out = append(out, encodeLong(0)...) // no next IFD

	out = append(out, extra...)
	out = append(out, imageData...)
	return out
}

func encodeShort(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func encodeLong(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
