package cfr

import (
	"testing"

	"github.com/motioncam/dngpipe/internal/settings"
)

func tsSeries(n int, deltaNanos uint64) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = uint64(i) * deltaNanos
	}
	return out
}

func TestInferFPSSnapsToNearCommonValue(t *testing.T) {
	// 1000/24 ms ~= 41666667ns deltas -> should snap to 24fps.
	ts := tsSeries(24, 41666667)
	_, fps := InferFPS(ts)
	if fps != 24 {
		t.Fatalf("InferFPS = %v, want 24", fps)
	}
}

func TestInferFPSDoesNotOversnap2997To30(t *testing.T) {
	deltaSeconds := 1e9 / 29.97
	deltaNanos := uint64(deltaSeconds)
	ts := tsSeries(30, deltaNanos)
	_, fps := InferFPS(ts)
	if fps != 29.97 {
		t.Fatalf("InferFPS = %v, want 29.97", fps)
	}
}

func TestBuildPlanSingleFrame(t *testing.T) {
	plan := BuildPlan([]uint64{0}, settings.DefaultCFRTarget())
	if len(plan.SourceIndex) != 1 || plan.SourceIndex[0] != 0 {
		t.Fatalf("single frame plan = %+v", plan)
	}
}

func TestBuildPlanConservesFrameCounts(t *testing.T) {
	ts := tsSeries(24, 41666667)
	plan := BuildPlan(ts, settings.CFRTarget{Mode: settings.CFRPreferInteger})

	served := make([]int, len(ts))
	for _, idx := range plan.SourceIndex {
		if idx < 0 || idx >= len(ts) {
			t.Fatalf("source index %d out of range for %d source frames", idx, len(ts))
		}
		served[idx]++
	}
	kept, dropped := 0, 0
	for _, c := range served {
		if c == 0 {
			dropped++
		} else {
			kept++
		}
	}
	if kept+dropped != len(ts) {
		t.Fatalf("kept(%d)+dropped(%d) != total_in(%d)", kept, dropped, len(ts))
	}
	if dropped != plan.Dropped {
		t.Fatalf("recomputed dropped %d != plan.Dropped %d", dropped, plan.Dropped)
	}
}
