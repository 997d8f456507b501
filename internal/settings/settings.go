// Package settings defines the render job options accepted by the CLI
// and the pipeline orchestrator: the bitfield of render options, the
// enumerated modes for quad-Bayer handling, log transform and constant
// framerate targeting, and the defaults a job starts from when the
// caller doesn't override them.
package settings

import (
	"strconv"
	"strings"
)

// RenderOptions is a bitfield of optional render behaviors, mirrored one
// for one on the flags a caller can toggle independently of each other.
type RenderOptions uint32

const (
	OptNone                    RenderOptions = 0
	OptDraft                   RenderOptions = 1 << 0
	OptApplyVignetteCorrection RenderOptions = 1 << 1
	OptNormalizeShadingMap     RenderOptions = 1 << 2
	OptDebugShadingMap         RenderOptions = 1 << 3
	OptVignetteOnlyColor       RenderOptions = 1 << 4
	OptNormalizeExposure       RenderOptions = 1 << 5
	OptFramerateConversion     RenderOptions = 1 << 6
	OptCropping                RenderOptions = 1 << 7
	OptCamModelOverride        RenderOptions = 1 << 8
	OptLogTransform            RenderOptions = 1 << 9
	OptInterpretAsQuadBayer    RenderOptions = 1 << 10
)

// Has reports whether all bits of flag are set in o.
func (o RenderOptions) Has(flag RenderOptions) bool { return o&flag == flag }

// String renders o as a pipe-joined list of flag names, or "NONE".
func (o RenderOptions) String() string {
	if o == OptNone {
		return "NONE"
	}
	names := []struct {
		flag RenderOptions
		name string
	}{
		{OptDraft, "DRAFT"},
		{OptApplyVignetteCorrection, "VIGNETTE_CORRECTION"},
		{OptVignetteOnlyColor, "VIGNETTE_ONLY_COLOR"},
		{OptNormalizeShadingMap, "NORMALIZE_SHADING_MAP"},
		{OptDebugShadingMap, "DEBUG_SHADING_MAP"},
		{OptNormalizeExposure, "NORMALIZE_EXPOSURE"},
		{OptFramerateConversion, "FRAMERATE_CONVERSION"},
		{OptCropping, "CROPPING"},
		{OptCamModelOverride, "CAMMODEL_OVERRIDE"},
		{OptLogTransform, "LOG_TRANSFORM"},
		{OptInterpretAsQuadBayer, "INTERPRET_AS_QUAD_BAYER"},
	}
	var parts []string
	for _, n := range names {
		if o.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " | ")
}

// QuadBayerMode controls how a quad-Bayer sensor's 2x2 super-pixels are
// interpreted when rendering.
type QuadBayerMode int

const (
	QuadBayerRemosaic QuadBayerMode = iota
	QuadBayerWrongCFAMetadata
	QuadBayerCorrectQBCFAMetadata
)

func (m QuadBayerMode) String() string {
	switch m {
	case QuadBayerWrongCFAMetadata:
		return "Wrong CFA Metadata"
	case QuadBayerCorrectQBCFAMetadata:
		return "Correct QBCFA Metadata"
	default:
		return "Remosaic"
	}
}

// ParseQuadBayerMode inverts QuadBayerMode.String, defaulting to Remosaic.
func ParseQuadBayerMode(s string) QuadBayerMode {
	switch s {
	case "Wrong CFA Metadata":
		return QuadBayerWrongCFAMetadata
	case "Correct QBCFA Metadata":
		return QuadBayerCorrectQBCFAMetadata
	default:
		return QuadBayerRemosaic
	}
}

// LogTransformMode selects how much headroom is carved out of the
// destination bit depth for the log2 transfer curve, or disables it.
type LogTransformMode int

const (
	LogTransformDisabled LogTransformMode = iota
	LogTransformKeepInput
	LogTransformReduceBy2Bit
	LogTransformReduceBy4Bit
	LogTransformReduceBy6Bit
	LogTransformReduceBy8Bit
)

func (m LogTransformMode) String() string {
	switch m {
	case LogTransformDisabled:
		return ""
	case LogTransformReduceBy2Bit:
		return "Reduce by 2bit"
	case LogTransformReduceBy4Bit:
		return "Reduce by 4bit"
	case LogTransformReduceBy6Bit:
		return "Reduce by 6bit"
	case LogTransformReduceBy8Bit:
		return "Reduce by 8bit"
	default:
		return "Keep Input"
	}
}

// ParseLogTransformMode inverts LogTransformMode.String. An empty string
// means disabled; any unrecognized non-empty string falls back to
// KeepInput rather than Disabled, matching the original renderer.
func ParseLogTransformMode(s string) LogTransformMode {
	switch s {
	case "":
		return LogTransformDisabled
	case "Keep Input":
		return LogTransformKeepInput
	case "Reduce by 2bit":
		return LogTransformReduceBy2Bit
	case "Reduce by 4bit":
		return LogTransformReduceBy4Bit
	case "Reduce by 6bit":
		return LogTransformReduceBy6Bit
	case "Reduce by 8bit":
		return LogTransformReduceBy8Bit
	default:
		return LogTransformKeepInput
	}
}

// BitsDelta returns the signed bit-width reduction each mode names (0
// for Disabled and KeepInput). The renderer does not call it; its own
// table gives Disabled two bits of headroom instead.
func (m LogTransformMode) BitsDelta() int {
	switch m {
	case LogTransformReduceBy2Bit:
		return -2
	case LogTransformReduceBy4Bit:
		return -4
	case LogTransformReduceBy6Bit:
		return -6
	case LogTransformReduceBy8Bit:
		return -8
	default:
		return 0
	}
}

// CFRMode selects the strategy used to pick a constant target framerate.
type CFRMode int

const (
	CFRDisabled CFRMode = iota
	CFRPreferInteger
	CFRPreferDropFrame
	CFRMedianSlowMotion
	CFRAverageTesting
	CFRCustom
)

// CFRTarget pairs a CFRMode with the float value used only when the mode
// is CFRCustom.
type CFRTarget struct {
	Mode        CFRMode
	CustomValue float32
}

// DefaultCFRTarget matches the original renderer's zero-value CFRTarget.
func DefaultCFRTarget() CFRTarget {
	return CFRTarget{Mode: CFRPreferDropFrame}
}

func (t CFRTarget) String() string {
	switch t.Mode {
	case CFRDisabled:
		return ""
	case CFRPreferInteger:
		return "Prefer Integer"
	case CFRMedianSlowMotion:
		return "Median (Slowmotion)"
	case CFRAverageTesting:
		return "Average (Testing)"
	case CFRCustom:
		return strconv.FormatFloat(float64(t.CustomValue), 'f', -1, 32)
	default:
		return "Prefer Drop Frame"
	}
}

// ParseCFRTarget inverts CFRTarget.String. A numeric string not matching
// any named mode is parsed as CFRCustom; anything else unparsable falls
// back to PreferDropFrame, not Disabled, matching the original.
func ParseCFRTarget(s string) CFRTarget {
	switch s {
	case "":
		return CFRTarget{Mode: CFRDisabled}
	case "Prefer Integer":
		return CFRTarget{Mode: CFRPreferInteger}
	case "Prefer Drop Frame":
		return CFRTarget{Mode: CFRPreferDropFrame}
	case "Median (Slowmotion)":
		return CFRTarget{Mode: CFRMedianSlowMotion}
	case "Average (Testing)":
		return CFRTarget{Mode: CFRAverageTesting}
	}
	if v, err := strconv.ParseFloat(s, 32); err == nil {
		return CFRTarget{Mode: CFRCustom, CustomValue: float32(v)}
	}
	return CFRTarget{Mode: CFRPreferDropFrame}
}

// RenderSettings is the complete set of options for one decode job.
type RenderSettings struct {
	Options              RenderOptions
	DraftScale           int
	CFRTarget            CFRTarget
	CropTarget           string
	CameraModel          string
	Levels               string
	LogTransform         LogTransformMode
	ExposureCompensation string
	QuadBayerOption      QuadBayerMode
}

// Default returns the settings a job starts from absent any overrides,
// matching the original renderer's constructor defaults exactly.
func Default() RenderSettings {
	return RenderSettings{
		Options:              OptNone,
		DraftScale:           1,
		CFRTarget:            DefaultCFRTarget(),
		CropTarget:           "",
		CameraModel:          "Panasonic",
		Levels:               "Dynamic",
		LogTransform:         LogTransformKeepInput,
		ExposureCompensation: "0ev",
		QuadBayerOption:      QuadBayerRemosaic,
	}
}

// Fingerprint produces a stable string key for single-flight/cache
// keying, distinguishing any two settings that could render a frame
// differently.
func (s RenderSettings) Fingerprint() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(s.Options), 16))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(s.DraftScale))
	b.WriteByte(':')
	b.WriteString(s.CFRTarget.String())
	b.WriteByte(':')
	b.WriteString(s.CropTarget)
	b.WriteByte(':')
	b.WriteString(s.CameraModel)
	b.WriteByte(':')
	b.WriteString(s.Levels)
	b.WriteByte(':')
	b.WriteString(s.LogTransform.String())
	b.WriteByte(':')
	b.WriteString(s.ExposureCompensation)
	b.WriteByte(':')
	b.WriteString(s.QuadBayerOption.String())
	return b.String()
}
