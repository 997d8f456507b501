package pipeline

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"testing"

	"github.com/motioncam/dngpipe/internal/mcraw"
	"github.com/motioncam/dngpipe/internal/settings"
)

// buildTestContainer assembles a minimal MCRAW container: the fixed
// 15-byte header pointing at a JSON metadata blob, followed by
// frameCount typed frame blocks each carrying a flat 12-bit payload.
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
		binary.LittleEndian.PutUint32(blockHdr[0:4], 2) // blockTypeFrame
		binary.LittleEndian.PutUint32(blockHdr[4:8], uint32(len(payload)))
		data = append(data, blockHdr...)
		data = append(data, payload...)
	}
	return data
}

func newTestParser(t *testing.T, width, height, frameCount int) *mcraw.Parser {
	t.Helper()
	data := buildTestContainer(t, width, height, frameCount)
	p, err := mcraw.New(mcraw.FromBytes(data))
	if err != nil {
		t.Fatalf("mcraw.New: %v", err)
	}
	return p
}

func TestNewJobGeneratesContainerID(t *testing.T) {
	parser := newTestParser(t, 64, 64, 3)
	j := NewJob("", "clip", parser, settings.Default(), nil, nil)
	if j.containerID == "" {
		t.Fatal("expected a generated container id")
	}
	if len(j.ListFrames()) != 3 {
		t.Fatalf("expected 3 planned frames, got %d", len(j.ListFrames()))
	}
}

func TestReadFrameOutOfRange(t *testing.T) {
	parser := newTestParser(t, 64, 64, 2)
	j := NewJob("test-container", "clip", parser, settings.Default(), nil, nil)

	if _, err := j.ReadFrame(context.Background(), 5); err != mcraw.ErrFrameOutOfRange {
		t.Fatalf("expected ErrFrameOutOfRange, got %v", err)
	}
}

func TestReadFrameCachesAndDedupsConcurrentCallers(t *testing.T) {
	parser := newTestParser(t, 32, 32, 1)
	cache := NewMemoryCache()
	j := NewJob("test-container", "clip", parser, settings.Default(), cache, nil)

	const n = 8
	var wg sync.WaitGroup
	results := make([][]byte, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = j.ReadFrame(context.Background(), 0)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: unexpected error %v", i, err)
		}
	}
	for i := 1; i < n; i++ {
		if len(results[i]) != len(results[0]) {
			t.Fatalf("call %d produced a differently sized frame than call 0", i)
		}
	}

	key := j.fingerprintKey(0)
	if _, ok := cache.Get(context.Background(), key); !ok {
		t.Fatal("expected the rendered frame to be cached after ReadFrame")
	}
}

func TestCancelStopsRunAll(t *testing.T) {
	parser := newTestParser(t, 32, 32, 4)
	j := NewJob("test-container", "clip", parser, settings.Default(), nil, nil)
	j.Cancel()

	_, _, err := j.RunAll(context.Background())
	if err != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestRunAllReportsStats(t *testing.T) {
	parser := newTestParser(t, 32, 32, 3)
	j := NewJob("test-container", "clip", parser, settings.Default(), nil, nil)

	stats, failures, err := j.RunAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected job error: %v", err)
	}
	if stats.Total != 3 || stats.Successful != 3 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %v", failures)
	}
}

func TestCameraModelOverrideRespectsOption(t *testing.T) {
	s := settings.Default()
	s.CameraModel = "Pixel 8"
	if got := cameraModelOverride(s); got != "" {
		t.Fatalf("expected no override without the option bit, got %q", got)
	}
	s.Options |= settings.OptCamModelOverride
	if got := cameraModelOverride(s); got != "Pixel 8" {
		t.Fatalf("expected override %q, got %q", "Pixel 8", got)
	}
}

func TestMedianOddAndEven(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("median([3,1,2]) = %v, want 2", got)
	}
	if got := median([]float64{1, 2, 3, 4}); got != 3 {
		t.Fatalf("median([1,2,3,4]) = %v, want 3 (upper-middle)", got)
	}
}
