package registration

import "github.com/finostro/loam-velodyne/pointcloud"

// ringBuffers holds the per-ring scratch state used by the feature
// extractor: curvature, label, a picked/excluded flag, and a degenerate flag
// for points masked by the §7 numerical-glitch policy (as opposed to picked
// for occlusion/parallel-beam/selection exclusion, which must still count
// toward the less-flat pool). The ascending-curvature sort order is scoped
// to a single region rather than the whole ring, so it is built locally in
// selectRegionFeatures instead of living here. Buffers are re-initialized
// for every ring of every sweep and owned exclusively by the extractor.
type ringBuffers struct {
	curvature  []float64
	label      []pointcloud.Label
	picked     []bool
	degenerate []bool
}

// newRingBuffers allocates scratch buffers sized for a ring of n points,
// with label defaulted to SurfaceLessFlat (the zero value) and picked,
// degenerate defaulted to false per the data model.
func newRingBuffers(n int) *ringBuffers {
	return &ringBuffers{
		curvature:  make([]float64, n),
		label:      make([]pointcloud.Label, n),
		picked:     make([]bool, n),
		degenerate: make([]bool, n),
	}
}
