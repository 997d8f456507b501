package dngpipe

import (
	"github.com/motioncam/dngpipe/internal/mcraw"
	"github.com/motioncam/dngpipe/internal/pipeline"
	"github.com/motioncam/dngpipe/internal/render"
)

// Sentinel errors re-exported from the internal packages that produce
// them, so callers of the public API don't need to import internal
// paths to use errors.Is against them.
var (
	ErrContainerInvalid    = mcraw.ErrContainerInvalid
	ErrParserExhausted     = mcraw.ErrParserExhausted
	ErrFrameOutOfRange     = mcraw.ErrFrameOutOfRange
	ErrDecompressionFailed = mcraw.ErrDecompressionFailed
	ErrSizeMismatch        = mcraw.ErrSizeMismatch
	ErrEncodeOverflow      = render.ErrEncodeOverflow
	ErrCancelled           = pipeline.ErrCancelled
	ErrJobAborted          = pipeline.ErrJobAborted
)
