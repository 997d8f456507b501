// Package mcraw parses the MCRAW container: locating its embedded JSON
// metadata, indexing frame and audio/aux blocks through five fallback
// detection strategies, and normalizing per-frame timestamps into a
// playable order.
package mcraw

import "github.com/motioncam/dngpipe/internal/cfr"

const assumedFPS = 24.0

// Parser holds a borrowed container view and its indexed frames. It is
// read-only after New and may be shared across concurrent renders.
type Parser struct {
	src     *Source
	meta    FileMetadata
	frames  []FrameRecord
}

// New indexes a container from src. src must outlive the returned
// Parser; the parser never copies container bytes.
func New(src *Source) (*Parser, error) {
	data := src.Bytes()

	jsonBytes, payloadStart, err := locateMetadata(data)
	if err != nil {
		return nil, err
	}
	doc, err := parseContainerJSON(jsonBytes)
	if err != nil {
		return nil, err
	}
	meta := doc.toFileMetadata()

	frames := detectFrames(data, payloadStart, &meta)
	if len(frames) == 0 {
		return nil, ErrParserExhausted
	}

	normalizeTimestamps(frames)

	meta.DetectionConfidence = confidenceFor(len(frames))
	meta.MedianFPS, meta.AverageFPS = estimateFPS(frames)

	return &Parser{src: src, meta: meta, frames: frames}, nil
}

// Metadata returns the container-wide metadata C6 produced.
func (p *Parser) Metadata() FileMetadata { return p.meta }

// FrameCount returns the number of indexed frames.
func (p *Parser) FrameCount() int { return len(p.frames) }

// Frame returns the frame record at index i.
func (p *Parser) Frame(i int) (FrameRecord, error) {
	if i < 0 || i >= len(p.frames) {
		return FrameRecord{}, ErrFrameOutOfRange
	}
	return p.frames[i], nil
}

// Frames returns every indexed frame record, in container order.
func (p *Parser) Frames() []FrameRecord {
	out := make([]FrameRecord, len(p.frames))
	copy(out, p.frames)
	return out
}

// ReadFramePayload returns the raw (possibly compressed) bytes for a
// frame, borrowed from the underlying source.
func (p *Parser) ReadFramePayload(rec FrameRecord) []byte {
	data := p.src.Bytes()
	return data[rec.Offset : rec.Offset+rec.Size]
}

// Timestamps returns every frame's timestamp, in container order.
func (p *Parser) Timestamps() []uint64 {
	out := make([]uint64, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.Timestamp
	}
	return out
}

// normalizeTimestamps fills in missing per-frame timestamps using the
// assumed framerate, in nanoseconds, so every frame carries comparable
// units regardless of which detection strategy produced it.
func normalizeTimestamps(frames []FrameRecord) {
	const nsPerSecond = 1e9
	for i := range frames {
		if frames[i].Meta.HasTimestamp {
			frames[i].Timestamp = frames[i].Meta.Timestamp
			continue
		}
		frames[i].Timestamp = uint64(float64(i) / assumedFPS * nsPerSecond)
	}
}

// estimateFPS defers to cfr's unit-classifying fps inference (§4.C6:
// timestamps may be in ns, us, ms, or s) rather than assuming a fixed
// unit, so a median/average delta is only ever turned into an fps after
// cfr.unitDivisor has classified its scale.
func estimateFPS(frames []FrameRecord) (median, average float64) {
	if len(frames) < 2 {
		return assumedFPS, assumedFPS
	}
	timestamps := make([]uint64, len(frames))
	for i, f := range frames {
		timestamps[i] = f.Timestamp
	}

	medianDelta, rawFps := cfr.InferFPS(timestamps)
	if medianDelta <= 0 || rawFps <= 0 {
		median = assumedFPS
	} else {
		median = rawFps
	}

	avgFps := cfr.AverageFPS(timestamps)
	if avgFps <= 0 {
		average = assumedFPS
	} else {
		average = avgFps
	}
	return median, average
}

// CandidateResolutions lists common sensor resolutions tried by the
// SizeMismatch resolution-inference fallback, largest first so a
// truncated payload is matched against the closest plausible geometry
// before smaller ones.
var CandidateResolutions = [][2]int{
	{4032, 3024},
	{4000, 3000},
	{3840, 2160},
	{1920, 1080},
	{1280, 720},
}

// ResolveSizeMismatch tries candidate resolutions in 12-bit packed and
// 16-bit raw forms, accepting the first whose expected size is within
// 1000 bytes of payloadSize.
func ResolveSizeMismatch(payloadSize int) (width, height, bits int, ok bool) {
	for _, wh := range CandidateResolutions {
		w, h := wh[0], wh[1]
		packed12 := (w * h * 12) / 8
		if abs(packed12-payloadSize) <= 1000 {
			return w, h, 12, true
		}
		raw16 := w * h * 2
		if abs(raw16-payloadSize) <= 1000 {
			return w, h, 16, true
		}
	}
	return 0, 0, 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
