package pointcloud

import "github.com/pkg/errors"

// DefaultScanPeriod is the default sweep duration in seconds.
const DefaultScanPeriod = 0.1

// ErrEmptySweep is returned when a Sweep with no points is processed.
var ErrEmptySweep = errors.New("pointcloud: empty sweep")

// RingRange is the contiguous index range [Start, End) within a flat cloud
// occupied by a single ring.
type RingRange struct {
	Start, End int
}

// Sweep is an ordered sequence of Points grouped by ring: for ring r, its
// points occupy a contiguous range within Points. Ranges must be set by
// whoever builds the Sweep; the registration façade validates and copies
// them, and does not derive them from the points' ring indices.
type Sweep struct {
	ScanPeriod float64
	Rings      int
	Points     []Point
	Ranges     []RingRange
}

// NewSweep returns an empty Sweep configured for rings rings and the given
// scan period. A non-positive scanPeriod falls back to DefaultScanPeriod.
func NewSweep(rings int, scanPeriod float64) *Sweep {
	if scanPeriod <= 0 {
		scanPeriod = DefaultScanPeriod
	}
	return &Sweep{
		ScanPeriod: scanPeriod,
		Rings:      rings,
		Ranges:     make([]RingRange, rings),
	}
}

// Validate checks the Sweep's ring-range invariants: start_0 = 0,
// start_{r+1} = end_r, end_{R-1} = len(Points).
func (s *Sweep) Validate() error {
	if len(s.Points) == 0 {
		return ErrEmptySweep
	}
	if len(s.Ranges) != s.Rings {
		return errors.Errorf("pointcloud: expected %d ring ranges, got %d", s.Rings, len(s.Ranges))
	}
	if s.Rings == 0 {
		return nil
	}
	if s.Ranges[0].Start != 0 {
		return errors.New("pointcloud: ring 0 must start at index 0")
	}
	for r := 0; r < s.Rings-1; r++ {
		if s.Ranges[r].End != s.Ranges[r+1].Start {
			return errors.Errorf("pointcloud: ring %d end (%d) does not match ring %d start (%d)",
				r, s.Ranges[r].End, r+1, s.Ranges[r+1].Start)
		}
	}
	if last := s.Ranges[s.Rings-1].End; last != len(s.Points) {
		return errors.Errorf("pointcloud: last ring end (%d) does not match point count (%d)", last, len(s.Points))
	}
	return nil
}
