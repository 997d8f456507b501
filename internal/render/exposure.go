package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/motioncam/dngpipe/internal/settings"
)

// parseExposureCompensation accepts either a bare float ("0.5") or an EV
// suffix form ("0ev", "-1.5EV"); anything unparsable is treated as 0.
func parseExposureCompensation(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "EV"), "ev")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// cameraOffsetEV is the fixed per-model exposure offset folded into
// BaselineExposure; Panasonic clips read about 2 stops hot relative to the
// container's own baseline, so it's corrected down.
func cameraOffsetEV(cameraModel string) float64 {
	if cameraModel == "Panasonic" {
		return -2
	}
	return 0
}

// baselineExposureEV implements §4.4's exposure normalization: when
// enabled, it's the log2 ratio of this frame's iso*exposureTime against
// the container-wide median, plus the camera offset and any user EV
// compensation; when disabled, only the offset and compensation apply.
func baselineExposureEV(s settings.RenderSettings, frameISO, frameExposureTime, containerBaseline float64) float64 {
	offset := cameraOffsetEV(s.CameraModel) + parseExposureCompensation(s.ExposureCompensation)
	if !s.Options.Has(settings.OptNormalizeExposure) {
		return offset
	}
	exposure := frameISO * frameExposureTime
	if exposure <= 0 || containerBaseline <= 0 {
		return offset
	}
	return math.Log2(containerBaseline/exposure) + offset
}
