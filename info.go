package dngpipe

import (
	"github.com/motioncam/dngpipe/internal/cfr"
	"github.com/motioncam/dngpipe/internal/settings"
)

// FileInfo summarizes a container under a particular settings snapshot,
// the payload the CLI's "info" subcommand and a host UI's clip-inspector
// panel both want.
type FileInfo struct {
	MedianFPS        float64
	AverageFPS       float64
	TargetFPS        float64
	TotalFrames      int
	DroppedFrames    int
	DuplicatedFrames int
	Width            int
	Height           int
}

// Info summarizes the container: its native frame count and geometry,
// plus the CFR plan settings would produce if a job were started with
// them, without rendering anything.
func (c *Container) Info(s settings.RenderSettings) FileInfo {
	meta := c.parser.Metadata()
	timestamps := c.parser.Timestamps()

	var plan cfr.Plan
	if s.Options.Has(settings.OptFramerateConversion) {
		plan = cfr.BuildPlan(timestamps, s.CFRTarget)
	} else {
		plan = cfr.IdentityPlan(timestamps)
	}

	return FileInfo{
		MedianFPS:        meta.MedianFPS,
		AverageFPS:       meta.AverageFPS,
		TargetFPS:        plan.TargetFPS,
		TotalFrames:      c.parser.FrameCount(),
		DroppedFrames:    plan.Dropped,
		DuplicatedFrames: plan.Duplicated,
		Width:            meta.Width,
		Height:           meta.Height,
	}
}
