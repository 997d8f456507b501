package settings

import "testing"

func TestDefaultMatchesOriginalConstructor(t *testing.T) {
	d := Default()
	if d.Options != OptNone {
		t.Fatalf("options: got %v want NONE", d.Options)
	}
	if d.DraftScale != 1 {
		t.Fatalf("draft scale: got %d want 1", d.DraftScale)
	}
	if d.CFRTarget.Mode != CFRPreferDropFrame {
		t.Fatalf("cfr target: got %v want PreferDropFrame", d.CFRTarget.Mode)
	}
	if d.CameraModel != "Panasonic" {
		t.Fatalf("camera model: got %q want Panasonic", d.CameraModel)
	}
	if d.Levels != "Dynamic" {
		t.Fatalf("levels: got %q want Dynamic", d.Levels)
	}
	if d.LogTransform != LogTransformKeepInput {
		t.Fatalf("log transform: got %v want KeepInput", d.LogTransform)
	}
	if d.ExposureCompensation != "0ev" {
		t.Fatalf("exposure compensation: got %q want 0ev", d.ExposureCompensation)
	}
	if d.QuadBayerOption != QuadBayerRemosaic {
		t.Fatalf("quad bayer: got %v want Remosaic", d.QuadBayerOption)
	}
}

func TestRenderOptionsString(t *testing.T) {
	cases := []struct {
		opts RenderOptions
		want string
	}{
		{OptNone, "NONE"},
		{OptDraft, "DRAFT"},
		{OptDraft | OptCropping, "DRAFT | CROPPING"},
	}
	for _, c := range cases {
		if got := c.opts.String(); got != c.want {
			t.Errorf("String(%d) = %q, want %q", c.opts, got, c.want)
		}
	}
}

func TestCFRTargetRoundTrip(t *testing.T) {
	cases := []string{"", "Prefer Integer", "Prefer Drop Frame", "Median (Slowmotion)", "Average (Testing)", "23.976"}
	for _, s := range cases {
		got := ParseCFRTarget(s).String()
		if got != s {
			t.Errorf("round trip %q: got %q", s, got)
		}
	}
}

func TestParseCFRTargetFallback(t *testing.T) {
	target := ParseCFRTarget("not a number")
	if target.Mode != CFRPreferDropFrame {
		t.Fatalf("fallback mode: got %v want PreferDropFrame", target.Mode)
	}
}

func TestLogTransformBitsDelta(t *testing.T) {
	cases := map[LogTransformMode]int{
		LogTransformDisabled:     0,
		LogTransformKeepInput:    0,
		LogTransformReduceBy2Bit: -2,
		LogTransformReduceBy8Bit: -8,
	}
	for mode, want := range cases {
		if got := mode.BitsDelta(); got != want {
			t.Errorf("BitsDelta(%v) = %d, want %d", mode, got, want)
		}
	}
}
