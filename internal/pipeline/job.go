// Package pipeline implements the orchestrator (C7): given a container
// and a settings snapshot, it produces a lazy, random-access sequence of
// rendered DNG frames, enforcing single-flight rendering per
// (container, output index, settings fingerprint) and consulting an
// external cache around the render.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/motioncam/dngpipe/internal/bitpack"
	"github.com/motioncam/dngpipe/internal/cfr"
	"github.com/motioncam/dngpipe/internal/dng"
	"github.com/motioncam/dngpipe/internal/logging"
	"github.com/motioncam/dngpipe/internal/mcraw"
	"github.com/motioncam/dngpipe/internal/render"
	"github.com/motioncam/dngpipe/internal/settings"
	"github.com/motioncam/dngpipe/internal/shading"
)

// OutputEntry is one planned output frame: its index, the source frame it
// maps back to, the filename a batch CLI would write, and a projected
// byte size (the first successfully rendered frame's actual size, reused
// for the rest since every frame in a job shares geometry and bit depth).
type OutputEntry struct {
	Index         int
	SourceIndex   int
	FileName      string
	ProjectedSize int
}

// Stats summarizes a job's outcome across frames, per §7's "jobs report
// counts {successful, failed, total}".
type Stats struct {
	Successful int
	Failed     int
	Total      int
}

// FrameFailure records one frame's render failure without aborting the
// whole job, unless the cumulative threshold is crossed.
type FrameFailure struct {
	OutputIndex int
	Err         error
}

// Job renders frames from one container under one settings snapshot. A
// Job is safe for concurrent ReadFrame calls.
type Job struct {
	containerID string
	base        string
	parser      *mcraw.Parser
	settings    settings.RenderSettings
	cache       Cache
	logger      logging.Logger
	sf          singleflight.Group

	plan       cfr.Plan
	cfa        [4]int
	shadingMap *shading.Map
	baseline   float64

	cancelled atomic.Bool

	mu        sync.Mutex
	projected int
}

// NewJob builds a job over an already-parsed container. containerID
// identifies the source for cache/single-flight keying; an empty value
// gets a generated UUID, for callers rendering from an in-memory buffer
// with no stable identity of their own. base names the output files
// (e.g. "<base>_frame_00001.dng"); an empty value defaults to "clip".
func NewJob(containerID, base string, parser *mcraw.Parser, s settings.RenderSettings, cache Cache, logger logging.Logger) *Job {
	if containerID == "" {
		containerID = uuid.NewString()
	}
	if base == "" {
		base = "clip"
	}
	if cache == nil {
		cache = NoopCache{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	meta := parser.Metadata()
	timestamps := parser.Timestamps()

	var plan cfr.Plan
	if s.Options.Has(settings.OptFramerateConversion) {
		plan = cfr.BuildPlan(timestamps, s.CFRTarget)
	} else {
		plan = cfr.IdentityPlan(timestamps)
	}

	return &Job{
		containerID: containerID,
		base:        base,
		parser:      parser,
		settings:    s,
		cache:       cache,
		logger:      logger,
		plan:        plan,
		cfa:         meta.CFA.Pattern2x2(),
		shadingMap:  buildShadingMap(meta, s),
		baseline:    containerBaselineExposure(parser),
	}
}

// ListFrames precomputes the output-index -> source-index mapping and
// filenames; it does not render anything.
func (j *Job) ListFrames() []OutputEntry {
	entries := make([]OutputEntry, len(j.plan.SourceIndex))
	j.mu.Lock()
	projected := j.projected
	j.mu.Unlock()
	for i, src := range j.plan.SourceIndex {
		entries[i] = OutputEntry{
			Index:         i,
			SourceIndex:   src,
			FileName:      fmt.Sprintf("%s_frame_%05d.dng", j.base, i),
			ProjectedSize: projected,
		}
	}
	return entries
}

// Cancel sets the job's cancellation flag; it's checked between frames
// and propagates ErrCancelled at the next suspension point.
func (j *Job) Cancel() { j.cancelled.Store(true) }

func (j *Job) fingerprintKey(outputIndex int) string {
	return j.containerID + ":" + strconv.Itoa(outputIndex) + ":" + j.settings.Fingerprint()
}

// ReadFrame returns the DNG bytes for output frame outputIndex, sharing
// an in-flight render across concurrent callers with the same key and
// consulting the cache before and after.
func (j *Job) ReadFrame(ctx context.Context, outputIndex int) ([]byte, error) {
	if j.cancelled.Load() {
		return nil, ErrCancelled
	}
	if outputIndex < 0 || outputIndex >= len(j.plan.SourceIndex) {
		return nil, mcraw.ErrFrameOutOfRange
	}

	key := j.fingerprintKey(outputIndex)
	if cached, ok := j.cache.Get(ctx, key); ok {
		return cached, nil
	}

	v, err, _ := j.sf.Do(key, func() (interface{}, error) {
		if j.cancelled.Load() {
			return nil, ErrCancelled
		}
		bytes, err := j.renderOutputFrame(outputIndex)
		if err != nil {
			return nil, err
		}
		j.cache.Put(ctx, key, bytes)
		j.mu.Lock()
		if j.projected == 0 {
			j.projected = len(bytes)
		}
		j.mu.Unlock()
		return bytes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// RunAll renders every planned frame in order, recording per-frame
// failures and aborting once cumulative failures cross the 80% threshold
// (§4.7/§7). It checks cancellation between frames.
func (j *Job) RunAll(ctx context.Context) (Stats, []FrameFailure, error) {
	total := len(j.plan.SourceIndex)
	var successful, failed int
	var failures []FrameFailure

	for i := 0; i < total; i++ {
		if j.cancelled.Load() {
			return Stats{Successful: successful, Failed: failed, Total: total}, failures, ErrCancelled
		}
		if _, err := j.ReadFrame(ctx, i); err != nil {
			failed++
			failures = append(failures, FrameFailure{OutputIndex: i, Err: err})
			j.logger.Warn("frame render failed", "output_index", i, "error", err)
			if total > 0 && float64(failed)/float64(total) > failureAbortFraction {
				j.logger.Error("job aborted: cumulative failure threshold exceeded", "failed", failed, "total", total)
				return Stats{Successful: successful, Failed: failed, Total: total}, failures, ErrJobAborted
			}
			continue
		}
		successful++
	}
	return Stats{Successful: successful, Failed: failed, Total: total}, failures, nil
}

// renderOutputFrame does the actual decode+render+encode work for one
// output frame. ReadFrame's single-flight wrapper makes concurrent callers
// with the same key share one call; a later call for that key renders
// again unless the cache already holds the bytes.
func (j *Job) renderOutputFrame(outputIndex int) ([]byte, error) {
	meta := j.parser.Metadata()
	sourceIdx := j.plan.SourceIndex[outputIndex]

	rec, err := j.parser.Frame(sourceIdx)
	if err != nil {
		return nil, err
	}
	payload := j.parser.ReadFramePayload(rec)

	if rec.Compressed {
		payload, err = mcraw.Decompress(payload)
		if err != nil {
			return nil, fmt.Errorf("pipeline: frame %d: %w", outputIndex, err)
		}
	}

	fullW, fullH := meta.OriginalWidth, meta.OriginalHeight
	if fullW == 0 || fullH == 0 {
		fullW, fullH = meta.Width, meta.Height
	}

	bayer, bayerW, bayerH, err := unpackFrame(payload, fullW, fullH, meta.BitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("pipeline: frame %d: %w", outputIndex, err)
	}
	fullW, fullH = bayerW, bayerH

	frameISO, frameExposure := meta.ISO, meta.ExposureTime
	if rec.Meta.HasISO {
		frameISO = rec.Meta.ISO
	}
	if rec.Meta.HasExposure {
		frameExposure = rec.Meta.ExposureTime
	}

	in := render.Input{
		Bayer:             bayer,
		FullWidth:         fullW,
		FullHeight:        fullH,
		Settings:          j.settings,
		// No per-frame levels are parsed or computed, so "Dynamic" and
		// "Static" both resolve to the container's clip-level values.
		DynamicBlack:      meta.BlackLevel,
		DynamicWhite:      meta.WhiteLevel,
		StaticBlack:       meta.BlackLevel,
		StaticWhite:       meta.WhiteLevel,
		ShadingMap:        j.shadingMap,
		FrameISO:          frameISO,
		FrameExposureTime: frameExposure,
		ContainerBaseline: j.baseline,
		FrameNumber:       outputIndex,
	}

	out, err := render.Render(in)
	if err != nil {
		return nil, err
	}

	quadActive := j.settings.Options.Has(settings.OptInterpretAsQuadBayer) &&
		j.settings.DraftScale == 1 &&
		j.settings.QuadBayerOption == settings.QuadBayerCorrectQBCFAMetadata

	var opcode []byte
	if j.shadingMap != nil && !out.ShadingBaked {
		opcode = dng.BuildGainMapOpcode(j.shadingMap, out.Width, out.Height, out.CropTop, out.CropLeft)
	}

	linearized := dng.LinearizationApplies(
		j.settings.LogTransform != settings.LogTransformDisabled,
		j.settings.LogTransform == settings.LogTransformKeepInput,
		out.ShadingBaked,
	)

	params := dng.Params{
		Width: out.Width, Height: out.Height,
		EncodedBits: out.EncodeBits,
		ImageData:   out.Packed,

		CFA2x2:          j.cfa,
		QuadBayerActive: quadActive,

		Orientation: meta.Orientation,

		CameraModelOverride: cameraModelOverride(j.settings),
		BuildModel:          meta.BuildModel,

		BlackLevel: out.DstBlack,
		WhiteLevel: out.DstWhite,

		ColorMatrix1: meta.ColorMatrix1, ColorMatrix2: meta.ColorMatrix2,
		ForwardMatrix1: meta.ForwardMatrix1, ForwardMatrix2: meta.ForwardMatrix2,
		AsShotNeutral: meta.AsShotNeutral,
		Illuminant1:   meta.Illuminant1, Illuminant2: meta.Illuminant2,

		BaselineExposure:    out.BaselineExposure,
		ExposureTimeSeconds: frameExposure / 1e9,
		FNumber:             meta.Aperture,
		ISO:                 int(frameISO),
		FocalLength:         meta.FocalLength,

		FrameNumber:  outputIndex,
		RecordingFPS: j.plan.TargetFPS,

		Linearized: linearized,
		DstWhite:   int(out.DstWhite),

		OpcodeList2: opcode,
	}

	return dng.Assemble(params), nil
}

func cameraModelOverride(s settings.RenderSettings) string {
	if s.Options.Has(settings.OptCamModelOverride) {
		return s.CameraModel
	}
	return ""
}

// unpackFrame expands a frame payload into 16-bit Bayer samples at
// fullW x fullH, falling back to the resolution-inference table (and its
// own geometry) on a size mismatch (§7).
func unpackFrame(payload []byte, fullW, fullH, bits int) (samples []uint16, w, h int, err error) {
	if bits == 0 {
		bits = 12
	}
	samples, err = bitpack.Unpack(payload, fullW*fullH, bits)
	if err == nil {
		return samples, fullW, fullH, nil
	}
	rw, rh, inferredBits, ok := mcraw.ResolveSizeMismatch(len(payload))
	if !ok {
		return nil, 0, 0, mcraw.ErrSizeMismatch
	}
	samples, err = bitpack.Unpack(payload, rw*rh, inferredBits)
	if err != nil {
		return nil, 0, 0, err
	}
	return samples, rw, rh, nil
}

// buildShadingMap constructs the render-time gain map from the
// container's lens shading grid, applying the color-only-reduce,
// normalize, and invert operations per settings, in that order (matching
// the original renderer's fixed composition order).
func buildShadingMap(meta mcraw.FileMetadata, s settings.RenderSettings) *shading.Map {
	if meta.LensShadingMapWidth <= 0 || meta.LensShadingMapHeight <= 0 {
		return nil
	}
	m := shading.NewMap(meta.LensShadingMapWidth, meta.LensShadingMapHeight)
	for p := 0; p < 4 && p < len(meta.LensShadingMap); p++ {
		copy(m.Planes[p], meta.LensShadingMap[p])
	}

	if s.Options.Has(settings.OptVignetteOnlyColor) {
		matchedGreens := meta.CFA == mcraw.CFARGGB || meta.CFA == mcraw.CFABGGR
		m.ColorOnlyReduce(matchedGreens)
	}
	if s.Options.Has(settings.OptNormalizeShadingMap) {
		m.Normalize()
	}
	if s.Options.Has(settings.OptDebugShadingMap) {
		m.Invert()
	}
	return m
}

// containerBaselineExposure computes the median of iso*exposureTime
// across every indexed frame, the reference exposure normalization
// measures each frame against.
func containerBaselineExposure(parser *mcraw.Parser) float64 {
	frames := parser.Frames()
	meta := parser.Metadata()
	values := make([]float64, 0, len(frames))
	for _, f := range frames {
		iso, exposure := meta.ISO, meta.ExposureTime
		if f.Meta.HasISO {
			iso = f.Meta.ISO
		}
		if f.Meta.HasExposure {
			exposure = f.Meta.ExposureTime
		}
		if iso > 0 && exposure > 0 {
			values = append(values, iso*exposure)
		}
	}
	if len(values) == 0 {
		return 0
	}
	return median(values)
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted[len(sorted)/2]
}
