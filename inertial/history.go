package inertial

import (
	"math"

	"github.com/finostro/loam-velodyne/spatialmath"
)

// DefaultCapacity is the default number of inertial samples retained.
const DefaultCapacity = 200

// History is a bounded, time-ordered sequence of inertial Samples. Stored
// stamps are strictly increasing: Push replaces the most recent sample when a
// new one repeats its stamp, and silently drops a sample whose stamp is older
// than the most recent stored stamp, incrementing DroppedCount instead of
// returning an error, since an out-of-order inertial sample is expected
// sensor jitter rather than a caller bug.
type History struct {
	capacity int
	samples  []Sample
	dropped  int
}

// NewHistory returns a History with the given capacity. A capacity <= 0
// falls back to DefaultCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Push appends sample, evicting the oldest sample if at capacity. A sample
// whose Stamp exactly matches the most recent stored stamp replaces it, per
// the data model's "duplicates replace the previous" rule. A sample whose
// Stamp is strictly less than the most recent stored stamp is out of order:
// it is dropped and counted, not stored.
func (h *History) Push(sample Sample) {
	if n := len(h.samples); n > 0 {
		switch {
		case sample.Stamp == h.samples[n-1].Stamp:
			h.samples[n-1] = sample
			return
		case sample.Stamp < h.samples[n-1].Stamp:
			h.dropped++
			return
		}
	}
	h.samples = append(h.samples, sample)
	if len(h.samples) > h.capacity {
		h.samples = h.samples[1:]
	}
}

// DroppedCount returns the number of samples dropped so far for arriving out
// of timestamp order.
func (h *History) DroppedCount() int {
	return h.dropped
}

// Len returns the number of samples currently retained.
func (h *History) Len() int {
	return len(h.samples)
}

// Snapshot returns a copy of the retained samples, oldest first. It is used
// to give process_sweep an inertial view that is stable across the sweep
// even if Push is called concurrently afterward.
func (h *History) Snapshot() []Sample {
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

// InterpolateAt returns the inertial state at time t, piecewise-linearly
// blended between the bracketing samples. If t precedes the oldest sample,
// the oldest sample is returned; if t is at or after the newest sample, the
// newest is returned. If the history is empty, the Zero state is returned.
func InterpolateAt(samples []Sample, t float64) Sample {
	if len(samples) == 0 {
		return Zero
	}
	if t <= samples[0].Stamp {
		return samples[0]
	}
	last := samples[len(samples)-1]
	if t >= last.Stamp {
		return last
	}
	for i := 0; i < len(samples)-1; i++ {
		start, end := samples[i], samples[i+1]
		if t >= start.Stamp && t < end.Stamp {
			ratio := (t - start.Stamp) / (end.Stamp - start.Stamp)
			return blend(start, end, ratio)
		}
	}
	return last
}

// InterpolateAt queries the live history at time t. See the package-level
// InterpolateAt for the blending contract.
func (h *History) InterpolateAt(t float64) Sample {
	return InterpolateAt(h.samples, t)
}

func blend(start, end Sample, ratio float64) Sample {
	invRatio := 1 - ratio
	startYaw := start.Yaw.Rad()
	endYaw := end.Yaw.Rad()
	switch {
	case startYaw-endYaw > math.Pi:
		endYaw += 2 * math.Pi
	case startYaw-endYaw < -math.Pi:
		endYaw -= 2 * math.Pi
	}
	return Sample{
		Stamp:    start.Stamp*invRatio + end.Stamp*ratio,
		Roll:     spatialmath.NewAngle(start.Roll.Rad()*invRatio + end.Roll.Rad()*ratio),
		Pitch:    spatialmath.NewAngle(start.Pitch.Rad()*invRatio + end.Pitch.Rad()*ratio),
		Yaw:      spatialmath.NewAngle(startYaw*invRatio + endYaw*ratio),
		Position: spatialmath.Lerp(start.Position, end.Position, ratio),
		Velocity: spatialmath.Lerp(start.Velocity, end.Velocity, ratio),
	}
}
