package settings

import "testing"

func TestParseAppliesOptionsAndOverrides(t *testing.T) {
	data := []byte(`
options:
  applyVignetteCorrection: true
  logTransform: true
draftScale: 2
cameraModel: Pixel 8
logTransformMode: "Reduce by 4bit"
`)
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !s.Options.Has(OptApplyVignetteCorrection) || !s.Options.Has(OptLogTransform) {
		t.Fatalf("expected both option bits set, got %s", s.Options)
	}
	if s.DraftScale != 2 {
		t.Fatalf("DraftScale = %d, want 2", s.DraftScale)
	}
	if s.CameraModel != "Pixel 8" {
		t.Fatalf("CameraModel = %q, want %q", s.CameraModel, "Pixel 8")
	}
	if s.LogTransform != LogTransformReduceBy4Bit {
		t.Fatalf("LogTransform = %v, want ReduceBy4Bit", s.LogTransform)
	}
}

func TestParseEmptyDocumentMatchesDefault(t *testing.T) {
	s, err := Parse([]byte(``))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def := Default()
	if s.Fingerprint() != def.Fingerprint() {
		t.Fatalf("empty document produced %q, want default %q", s.Fingerprint(), def.Fingerprint())
	}
}
