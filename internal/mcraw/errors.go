package mcraw

import "errors"

// Sentinel error kinds, matched by errors.Is at call sites that need to
// branch on kind rather than message.
var (
	ErrContainerInvalid  = errors.New("mcraw: no JSON metadata locatable, or geometry missing")
	ErrParserExhausted   = errors.New("mcraw: all frame detection strategies yielded zero frames")
	ErrFrameOutOfRange   = errors.New("mcraw: requested frame index beyond planned count")
	ErrDecompressionFailed = errors.New("mcraw: zstd stream malformed")
	ErrSizeMismatch      = errors.New("mcraw: unpacked frame size matches no supported layout")
)
