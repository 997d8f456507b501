package dngtest

import "testing"

func TestVerifyGeometryMatches(t *testing.T) {
	d := Decoded{Width: 128, Height: 96}
	if err := VerifyGeometry(d, 128, 96); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyGeometryMismatch(t *testing.T) {
	d := Decoded{Width: 128, Height: 96}
	if err := VerifyGeometry(d, 64, 96); err == nil {
		t.Fatal("expected a geometry mismatch error")
	}
}
