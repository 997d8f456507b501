package mcraw

import (
	"encoding/binary"
	"testing"
)

func appendTypedBlock(data []byte, kind uint32, payload []byte) []byte {
	hdr := make([]byte, 8)
	binary.LittleEndian.PutUint32(hdr[0:4], kind)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	data = append(data, hdr...)
	data = append(data, payload...)
	return data
}

func buildContainer(t *testing.T, width, height int, frameCount int) []byte {
	t.Helper()
	meta := `{"width":` + itoa(width) + `,"height":` + itoa(height) + `,"bitsPerSample":12,"sensorArrangement":"rggb"}`

	header := make([]byte, fixedHeaderSize)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[5:9], uint32(fixedHeaderSize))
	binary.LittleEndian.PutUint32(header[9:13], uint32(len(meta)))

	data := append([]byte{}, header...)
	data = append(data, meta...)

	frameSize := minFrameSize + 16
	payload := make([]byte, frameSize)
	for i := 0; i < frameCount; i++ {
		data = appendTypedBlock(data, blockTypeFrame, payload)
	}
	return data
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	pos := len(buf)
	for v > 0 {
		pos--
		buf[pos] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func TestParserIndexesTypedBlocks(t *testing.T) {
	data := buildContainer(t, 1920, 1080, 5)
	p, err := New(FromBytes(data))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.FrameCount() != 5 {
		t.Fatalf("frame count: got %d want 5", p.FrameCount())
	}
	meta := p.Metadata()
	if meta.Width != 1920 || meta.Height != 1080 {
		t.Fatalf("geometry: got %dx%d want 1920x1080", meta.Width, meta.Height)
	}
	if meta.CFA != CFARGGB {
		t.Fatalf("cfa: got %v want RGGB", meta.CFA)
	}
	if meta.DetectionConfidence != ConfidenceLow {
		t.Fatalf("confidence: got %v want low (5 frames)", meta.DetectionConfidence)
	}
}

func TestParserNoMetadataFails(t *testing.T) {
	_, err := New(FromBytes([]byte("not a container")))
	if err != ErrContainerInvalid {
		t.Fatalf("got %v want ErrContainerInvalid", err)
	}
}

func TestResolveSizeMismatch(t *testing.T) {
	w, h, bits, ok := ResolveSizeMismatch((1920 * 1080 * 12) / 8)
	if !ok {
		t.Fatal("expected a resolved candidate")
	}
	if w != 1920 || h != 1080 || bits != 12 {
		t.Fatalf("got %dx%d@%d", w, h, bits)
	}
}

func TestIsCompressed(t *testing.T) {
	zstdPayload := append([]byte{0x28, 0xB5, 0x2F, 0xFD}, make([]byte, 100)...)
	if !isCompressed(zstdPayload, 100, 100) {
		t.Error("expected zstd-magic payload to be compressed")
	}
	tooSmall := make([]byte, 10)
	if !isCompressed(tooSmall, 100, 100) {
		t.Error("expected undersized payload to be flagged compressed")
	}
	fullSize := make([]byte, 100*100*2)
	if isCompressed(fullSize, 100, 100) {
		t.Error("full-size raw payload should not be flagged compressed")
	}
}
