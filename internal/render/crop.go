package render

import (
	"strconv"
	"strings"

	"github.com/motioncam/dngpipe/internal/settings"
)

// parseCropTarget parses a "WxH" string, returning ok=false for anything
// that doesn't split into two positive integers.
func parseCropTarget(s string) (w, h int, ok bool) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	wv, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hv, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || wv <= 0 || hv <= 0 {
		return 0, 0, false
	}
	return wv, hv, true
}

// evenScale rounds draftScale down to the nearest even value, with a floor
// of 1 — 1 stays 1 (no downscaling), 2/3 become 2, 4/5 become 4, and so on.
func evenScale(draftScale int) int {
	if draftScale <= 1 {
		return 1
	}
	s := (draftScale / 2) * 2
	if s < 1 {
		s = 1
	}
	return s
}

func roundDownTo4(v int) int {
	return (v / 4) * 4
}

// cropGeometry resolves the crop rectangle and final output dimensions for
// a frame of fullW x fullH, per settings.
type cropGeometry struct {
	Left, Top       int
	CroppedW, CroppedH int
	OutW, OutH      int
	Scale           int
}

func computeCrop(fullW, fullH int, s settings.RenderSettings) cropGeometry {
	croppedW, croppedH := fullW, fullH
	if s.Options.Has(settings.OptCropping) {
		if w, h, ok := parseCropTarget(s.CropTarget); ok && w <= fullW && h <= fullH {
			croppedW, croppedH = w, h
		}
	}
	left := (fullW - croppedW) / 2
	top := (fullH - croppedH) / 2

	scale := evenScale(s.DraftScale)
	outW := roundDownTo4(croppedW / scale)
	outH := roundDownTo4(croppedH / scale)

	return cropGeometry{
		Left: left, Top: top,
		CroppedW: croppedW, CroppedH: croppedH,
		OutW: outW, OutH: outH,
		Scale: scale,
	}
}
