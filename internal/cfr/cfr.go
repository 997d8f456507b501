// Package cfr infers a source framerate from a frame timestamp vector and
// plans the remapping from a constant output framerate back to source
// frame indices, per the render settings' chosen CFR target.
package cfr

import (
	"math"
	"sort"

	"github.com/motioncam/dngpipe/internal/settings"
)

// commonFPS is the snap table shared by FPS inference and PreferInteger
// target selection.
var commonFPS = []float64{18, 24, 25, 29.97, 30, 48, 50, 59.94, 60, 120}

// dropFrameFPS is the subset PreferDropFrame snaps to.
var dropFrameFPS = []float64{23.976, 29.97, 59.94}

func snapWithinPercent(v float64, table []float64, pct float64) (float64, bool) {
	for _, f := range table {
		if f == 0 {
			continue
		}
		if math.Abs(v-f)/f <= pct {
			return f, true
		}
	}
	return v, false
}

// unitDivisor classifies a median timestamp delta's unit and returns the
// divisor needed to express it in seconds.
func unitDivisor(medianDelta float64) float64 {
	switch {
	case medianDelta > 1e7:
		return 1e9 // ns
	case medianDelta > 1e4:
		return 1e6 // us
	case medianDelta > 10:
		return 1e3 // ms
	default:
		return 1 // s
	}
}

// InferFPS computes the median timestamp delta and the raw (snapped) fps from a vector of
// monotone source timestamps. Fewer than two timestamps yields rawFps 0.
func InferFPS(timestamps []uint64) (medianDelta float64, rawFps float64) {
	if len(timestamps) < 2 {
		return 0, 0
	}
	deltas := make([]float64, 0, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		d := float64(timestamps[i]) - float64(timestamps[i-1])
		if d > 0 {
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return 0, 0
	}
	sort.Float64s(deltas)
	medianDelta = deltas[len(deltas)/2]

	seconds := medianDelta / unitDivisor(medianDelta)
	if seconds <= 0 {
		return medianDelta, 0
	}
	raw := 1 / seconds
	if snapped, ok := snapWithinPercent(raw, commonFPS, 0.05); ok {
		return medianDelta, snapped
	}
	return medianDelta, raw
}

// AverageFPS computes the reciprocal of the mean positive delta, in the
// same inferred unit as InferFPS.
func AverageFPS(timestamps []uint64) float64 {
	if len(timestamps) < 2 {
		return 0
	}
	var sum float64
	var n int
	for i := 1; i < len(timestamps); i++ {
		d := float64(timestamps[i]) - float64(timestamps[i-1])
		if d > 0 {
			sum += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	seconds := mean / unitDivisor(mean)
	if seconds <= 0 {
		return 0
	}
	return 1 / seconds
}

func nearestInteger(v float64) float64 {
	best, bestDiff := commonFPS[0], math.Abs(v-commonFPS[0])
	for _, f := range commonFPS {
		if d := math.Abs(v - f); d < bestDiff {
			best, bestDiff = f, d
		}
	}
	return math.Round(best)
}

func nearestDropFrame(v float64) (float64, bool) {
	for _, f := range dropFrameFPS {
		if math.Abs(v-f)/f <= 0.05 {
			return f, true
		}
	}
	return 0, false
}

// TargetFPS resolves the constant output framerate for the given target
// policy, consulting the container's raw/median/average fps as needed.
func TargetFPS(target settings.CFRTarget, rawFps, medianFps, averageFps float64) float64 {
	switch target.Mode {
	case settings.CFRDisabled:
		return rawFps
	case settings.CFRPreferInteger:
		return nearestInteger(rawFps)
	case settings.CFRPreferDropFrame:
		if f, ok := nearestDropFrame(rawFps); ok {
			return f
		}
		return nearestInteger(rawFps)
	case settings.CFRMedianSlowMotion:
		return medianFps
	case settings.CFRAverageTesting:
		return averageFps
	case settings.CFRCustom:
		return float64(target.CustomValue)
	default:
		return rawFps
	}
}

// Plan maps each output frame index to a source frame index.
type Plan struct {
	SourceIndex []int // len == N_out
	Dropped     int   // source frames with no mapped output
	Duplicated  int   // count of source frames that serve 2+ outputs
	TargetFPS   float64
}

// IdentityPlan returns a one-to-one source-to-output mapping, used when
// framerate conversion is disabled: every source frame is kept, nothing
// is dropped or duplicated.
func IdentityPlan(timestamps []uint64) Plan {
	n := len(timestamps)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	_, rawFps := InferFPS(timestamps)
	return Plan{SourceIndex: idx, TargetFPS: rawFps}
}

// BuildPlan implements §4.5's frame remapping: for each of N_out output
// slots, pick the source frame whose timestamp is nearest k/targetFps.
// timestamps are in source units (ns, us, ms, or s); the same
// unitDivisor classification InferFPS uses is applied here so the
// duration/remap arithmetic stays in the unit the timestamps are
// actually expressed in.
func BuildPlan(timestamps []uint64, target settings.CFRTarget) Plan {
	n := len(timestamps)
	if n == 0 {
		return Plan{}
	}
	medianDelta, rawFps := InferFPS(timestamps)
	divisor := unitDivisor(medianDelta)
	medianFps := 0.0
	if seconds := medianDelta / divisor; seconds > 0 {
		medianFps = 1 / seconds
	}
	avg := AverageFPS(timestamps)
	targetFPS := TargetFPS(target, rawFps, medianFps, avg)
	if targetFPS <= 0 {
		targetFPS = rawFps
	}
	if targetFPS <= 0 || n == 1 {
		return Plan{SourceIndex: []int{0}, TargetFPS: targetFPS}
	}

	start := float64(timestamps[0])
	end := float64(timestamps[n-1])
	durationSec := (end - start) / divisor

	nOut := int(math.Round(durationSec*targetFPS)) + 1
	if nOut < 1 {
		nOut = 1
	}

	sourceIdx := make([]int, nOut)
	served := make([]int, n)
	for k := 0; k < nOut; k++ {
		wantSec := float64(k) / targetFPS
		want := start + wantSec*divisor
		idx := nearestTimestampIndex(timestamps, want)
		sourceIdx[k] = idx
		served[idx]++
	}

	dropped, duplicated := 0, 0
	for _, c := range served {
		switch {
		case c == 0:
			dropped++
		case c > 1:
			duplicated++
		}
	}

	return Plan{SourceIndex: sourceIdx, Dropped: dropped, Duplicated: duplicated, TargetFPS: targetFPS}
}

func nearestTimestampIndex(timestamps []uint64, want float64) int {
	// timestamps is sorted (parser-normalized), so binary search then
	// compare the two straddling candidates.
	i := sort.Search(len(timestamps), func(i int) bool { return float64(timestamps[i]) >= want })
	if i == 0 {
		return 0
	}
	if i >= len(timestamps) {
		return len(timestamps) - 1
	}
	if float64(timestamps[i])-want < want-float64(timestamps[i-1]) {
		return i
	}
	return i - 1
}
