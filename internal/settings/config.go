package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors RenderSettings as a YAML document, with string
// spellings for the enum fields so a config file reads the same names
// the CLI flags and String() methods use.
type fileConfig struct {
	Options struct {
		Draft                bool `yaml:"draft"`
		ApplyVignetteCorrection bool `yaml:"applyVignetteCorrection"`
		NormalizeShadingMap  bool `yaml:"normalizeShadingMap"`
		DebugShadingMap      bool `yaml:"debugShadingMap"`
		VignetteOnlyColor    bool `yaml:"vignetteOnlyColor"`
		NormalizeExposure    bool `yaml:"normalizeExposure"`
		FramerateConversion  bool `yaml:"framerateConversion"`
		Cropping             bool `yaml:"cropping"`
		CamModelOverride     bool `yaml:"camModelOverride"`
		LogTransform         bool `yaml:"logTransform"`
		InterpretAsQuadBayer bool `yaml:"interpretAsQuadBayer"`
	} `yaml:"options"`
	DraftScale           int    `yaml:"draftScale"`
	CFRTarget            string `yaml:"cfrTarget"`
	CropTarget           string `yaml:"cropTarget"`
	CameraModel          string `yaml:"cameraModel"`
	Levels               string `yaml:"levels"`
	LogTransform         string `yaml:"logTransformMode"`
	ExposureCompensation string `yaml:"exposureCompensation"`
	QuadBayerOption      string `yaml:"quadBayerOption"`
}

// LoadFile reads a YAML settings snapshot from path, falling back to
// Default() for any field the file leaves unset.
func LoadFile(path string) (RenderSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RenderSettings{}, fmt.Errorf("settings: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML settings snapshot from data.
func Parse(data []byte) (RenderSettings, error) {
	var fc fileConfig
	fc.DraftScale = 1
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return RenderSettings{}, fmt.Errorf("settings: parse: %w", err)
	}

	s := Default()
	if fc.DraftScale != 0 {
		s.DraftScale = fc.DraftScale
	}
	if fc.CropTarget != "" {
		s.CropTarget = fc.CropTarget
	}
	if fc.CameraModel != "" {
		s.CameraModel = fc.CameraModel
	}
	if fc.Levels != "" {
		s.Levels = fc.Levels
	}
	if fc.ExposureCompensation != "" {
		s.ExposureCompensation = fc.ExposureCompensation
	}
	if fc.LogTransform != "" {
		s.LogTransform = ParseLogTransformMode(fc.LogTransform)
	}
	if fc.QuadBayerOption != "" {
		s.QuadBayerOption = ParseQuadBayerMode(fc.QuadBayerOption)
	}
	if fc.CFRTarget != "" {
		s.CFRTarget = ParseCFRTarget(fc.CFRTarget)
	}

	var opts RenderOptions
	setIf := func(b bool, flag RenderOptions) {
		if b {
			opts |= flag
		}
	}
	o := fc.Options
	setIf(o.Draft, OptDraft)
	setIf(o.ApplyVignetteCorrection, OptApplyVignetteCorrection)
	setIf(o.NormalizeShadingMap, OptNormalizeShadingMap)
	setIf(o.DebugShadingMap, OptDebugShadingMap)
	setIf(o.VignetteOnlyColor, OptVignetteOnlyColor)
	setIf(o.NormalizeExposure, OptNormalizeExposure)
	setIf(o.FramerateConversion, OptFramerateConversion)
	setIf(o.Cropping, OptCropping)
	setIf(o.CamModelOverride, OptCamModelOverride)
	setIf(o.LogTransform, OptLogTransform)
	setIf(o.InterpretAsQuadBayer, OptInterpretAsQuadBayer)
	s.Options = opts

	return s, nil
}
