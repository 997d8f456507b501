package dngpipe

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/motioncam/dngpipe/internal/settings"
)

func buildTestContainer(t *testing.T, width, height, frameCount int) []byte {
	t.Helper()
	meta := map[string]any{
		"width": width, "height": height, "bitsPerSample": 12,
		"sensorArrangement": "rggb", "iso": 100.0, "exposureTime": 1e7,
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}

	const fixedHeaderSize = 15
	header := make([]byte, fixedHeaderSize)
	copy(header, "MCRAW")
	binary.LittleEndian.PutUint32(header[5:9], uint32(fixedHeaderSize))
	binary.LittleEndian.PutUint32(header[9:13], uint32(len(metaBytes)))

	data := append([]byte{}, header...)
	data = append(data, metaBytes...)

	frameSize := (width*height*12)/8 + 16
	if frameSize < 1024 {
		frameSize = 1024
	}
	payload := make([]byte, frameSize)
	for i := 0; i < frameCount; i++ {
		blockHdr := make([]byte, 8)
		binary.LittleEndian.PutUint32(blockHdr[0:4], 2)
		binary.LittleEndian.PutUint32(blockHdr[4:8], uint32(len(payload)))
		data = append(data, blockHdr...)
		data = append(data, payload...)
	}
	return data
}

func TestOpenBytesAndDecodeOneFrame(t *testing.T) {
	data := buildTestContainer(t, 32, 32, 2)

	c, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer c.Close()

	info := c.Info(settings.Default())
	if info.TotalFrames != 2 || info.Width != 32 || info.Height != 32 {
		t.Fatalf("unexpected info: %+v", info)
	}

	job := c.NewJob("", "clip", settings.Default(), nil, nil)
	dngBytes, err := job.ReadFrame(context.Background(), 0)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(dngBytes) == 0 {
		t.Fatal("expected non-empty DNG bytes")
	}
}
