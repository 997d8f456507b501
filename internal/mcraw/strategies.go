package mcraw

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
)

// isCompressed reports whether a frame payload is zstd-compressed,
// either because it is magic-prefixed or because it's suspiciously
// small for an uncompressed 12-bit packed frame of the given geometry.
func isCompressed(payload []byte, width, height int) bool {
	if hasZstdMagic(payload) {
		return true
	}
	if width <= 0 || height <= 0 {
		return false
	}
	expected := float64(width) * float64(height) * 1.5
	return float64(len(payload)) < 0.9*expected
}

// detectFrames runs the five fallback strategies in order, stopping at
// the first one that yields at least one frame.
func detectFrames(data []byte, payloadStart int, meta *FileMetadata) []FrameRecord {
	if recs := strategyTypedBlocks(data, payloadStart, meta); len(recs) > 0 {
		return recs
	}
	if recs := strategySizePrefixedZstd(data, payloadStart, meta); len(recs) > 0 {
		return recs
	}
	if recs := strategyMagicScan(data, payloadStart, meta); len(recs) > 0 {
		return recs
	}
	if recs := strategyFixedPartition(data, payloadStart, meta); len(recs) > 0 {
		return recs
	}
	if recs := strategyRawBayerPartition(data, payloadStart, meta); len(recs) > 0 {
		return recs
	}
	return nil
}

// strategyTypedBlocks is detection strategy 1.
func strategyTypedBlocks(data []byte, start int, meta *FileMetadata) []FrameRecord {
	blocks := walkTypedBlocks(data, start)
	var recs []FrameRecord
	var pending *frameJSON

	for _, b := range blocks {
		payload := data[b.offset : b.offset+b.size]
		switch b.kind {
		case blockTypeAudioAux:
			if len(payload) > 0 && payload[0] == '{' {
				var fj frameJSON
				if json.Unmarshal(payload, &fj) == nil {
					pending = &fj
				}
			} else {
				meta.HasAudio = true
			}
		case blockTypeFrame:
			rec := FrameRecord{
				Offset:     b.offset,
				Size:       b.size,
				Compressed: isCompressed(payload, meta.Width, meta.Height),
			}
			if pending != nil {
				rec.Meta = perFrameMetaFrom(*pending)
				pending = nil
			}
			recs = append(recs, rec)
		}
	}
	return recs
}

func perFrameMetaFrom(fj frameJSON) PerFrameMeta {
	var pm PerFrameMeta
	if fj.ISO != nil {
		pm.ISO, pm.HasISO = *fj.ISO, true
	}
	if fj.ExposureTime != nil {
		pm.ExposureTime, pm.HasExposure = *fj.ExposureTime, true
	}
	if fj.Timestamp != nil {
		pm.Timestamp, pm.HasTimestamp = *fj.Timestamp, true
	}
	return pm
}

// strategySizePrefixedZstd is detection strategy 2.
func strategySizePrefixedZstd(data []byte, start int, meta *FileMetadata) []FrameRecord {
	var recs []FrameRecord
	pos := start
	for pos+4 <= len(data) {
		size := binary.LittleEndian.Uint32(data[pos : pos+4])
		payloadOff := pos + 4
		payloadEnd := payloadOff + int(size)
		if payloadEnd > len(data) || !hasZstdMagic(data[payloadOff:payloadEnd]) {
			break
		}
		if int(size) < minFrameSize || int(size) > maxFrameSize {
			break
		}
		recs = append(recs, FrameRecord{Offset: payloadOff, Size: int(size), Compressed: true})
		pos = payloadEnd
	}
	return recs
}

// strategyMagicScan is detection strategy 3: find every zstd magic
// occurrence; successive offsets bound a frame.
func strategyMagicScan(data []byte, start int, meta *FileMetadata) []FrameRecord {
	var offsets []int
	needle := zstdMagic[:]
	pos := start
	for {
		idx := bytes.Index(data[pos:], needle)
		if idx < 0 {
			break
		}
		offsets = append(offsets, pos+idx)
		pos = pos + idx + 4
	}
	if len(offsets) < 1 {
		return nil
	}
	var recs []FrameRecord
	for i, off := range offsets {
		end := len(data)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		if end <= off {
			continue
		}
		recs = append(recs, FrameRecord{Offset: off, Size: end - off, Compressed: true})
	}
	return recs
}

// strategyFixedPartition is detection strategy 4: split the remaining
// payload evenly into meta.NumSegments chunks, only when that metadata
// field is present and the resulting chunks clear the minimum frame
// size.
func strategyFixedPartition(data []byte, start int, meta *FileMetadata) []FrameRecord {
	if meta.NumSegments <= 0 {
		return nil
	}
	remaining := len(data) - start
	chunk := remaining / meta.NumSegments
	if chunk < minFrameSize {
		return nil
	}
	recs := make([]FrameRecord, 0, meta.NumSegments)
	for i := 0; i < meta.NumSegments; i++ {
		off := start + i*chunk
		size := chunk
		if i == meta.NumSegments-1 {
			size = remaining - i*chunk
		}
		recs = append(recs, FrameRecord{Offset: off, Size: size, Compressed: isCompressed(data[off:off+size], meta.Width, meta.Height)})
	}
	return recs
}

// strategyRawBayerPartition is detection strategy 5: assume uncompressed
// raw samples at 2 bytes/pixel and split evenly.
func strategyRawBayerPartition(data []byte, start int, meta *FileMetadata) []FrameRecord {
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil
	}
	frameSize := meta.Width * meta.Height * 2
	if frameSize <= 0 {
		return nil
	}
	remaining := len(data) - start
	count := remaining / frameSize
	if count < 1 {
		return nil
	}
	recs := make([]FrameRecord, 0, count)
	for i := 0; i < count; i++ {
		recs = append(recs, FrameRecord{Offset: start + i*frameSize, Size: frameSize, Compressed: false})
	}
	return recs
}
