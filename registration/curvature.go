package registration

import (
	"math"
	"sort"

	"github.com/finostro/loam-velodyne/pointcloud"
	"github.com/finostro/loam-velodyne/spatialmath"
)

// FeatureSets is the façade's four labeled output clouds. Sharp is a subset
// of LessSharp and Flat is drawn from the same candidates that feed LessFlat,
// before LessFlat is voxel-downsampled.
type FeatureSets struct {
	CornerSharp     []pointcloud.Point
	CornerLessSharp []pointcloud.Point
	SurfaceFlat     []pointcloud.Point
	SurfaceLessFlat []pointcloud.Point
	// DegenerateMasked counts points excluded from every output this sweep
	// (selection and the less-flat pool alike) for a zero-range or
	// non-finite reading (§7's per-point glitch masking policy), for the
	// façade's rate-limited glitch log.
	DegenerateMasked int
}

const (
	occlusionDepthRatioThreshold = 0.1
	parallelBeamRatioThreshold   = 0.0002
	exclusionContinuationLimit   = 0.05
)

// extractFeatures runs the region-partitioned curvature evaluation over
// every ring of sweep and returns the four labeled subsets.
func extractFeatures(sweep *pointcloud.Sweep, cfg Config) FeatureSets {
	var sharp, lessSharp, flat []pointcloud.Point
	var lessFlatCandidates []pointcloud.Point
	var degenerateMasked int

	for _, rng := range sweep.Ranges {
		if rng.End <= rng.Start {
			continue
		}
		ring := sweep.Points[rng.Start:rng.End]
		buf, degenerate := computeRingFeatures(ring, cfg)
		if buf == nil {
			// Ring too short for even one curvature window; every point is
			// implicitly SurfaceLessFlat and contributes to the less-flat
			// candidate pool, except any that fail the numerical-glitch
			// check themselves (§7: a bad point is masked, not fatal).
			for _, p := range ring {
				if isDegenerate(p.Position) {
					degenerate++
					continue
				}
				lessFlatCandidates = append(lessFlatCandidates, p)
			}
			degenerateMasked += degenerate
			continue
		}
		degenerateMasked += degenerate

		for i, label := range buf.label {
			switch label {
			case pointcloud.CornerSharp:
				sharp = append(sharp, ring[i])
				lessSharp = append(lessSharp, ring[i])
			case pointcloud.CornerLessSharp:
				lessSharp = append(lessSharp, ring[i])
			case pointcloud.SurfaceFlat:
				flat = append(flat, ring[i])
				lessFlatCandidates = append(lessFlatCandidates, ring[i])
			case pointcloud.SurfaceLessFlat:
				if buf.degenerate[i] {
					continue
				}
				lessFlatCandidates = append(lessFlatCandidates, ring[i])
			}
		}
	}

	lessFlat := pointcloud.DownsampleLessFlat(lessFlatCandidates, cfg.LessFlatFilterSize)

	return FeatureSets{
		CornerSharp:      sharp,
		CornerLessSharp:  lessSharp,
		SurfaceFlat:      flat,
		SurfaceLessFlat:  lessFlat,
		DegenerateMasked: degenerateMasked,
	}
}

// computeRingFeatures evaluates curvature, applies occlusion/parallel-beam
// masking, and selects corner/surface points for one ring. It returns nil if
// the ring is too short to hold even one curvature window, alongside the
// count of points masked for a degenerate numerical condition.
func computeRingFeatures(ring []pointcloud.Point, cfg Config) (*ringBuffers, int) {
	n := len(ring)
	w := cfg.CurvatureRegion
	if n <= 2*w {
		return nil, 0
	}

	positions := make([]spatialmath.Vec3, n)
	for i, p := range ring {
		positions[i] = p.Position
	}

	buf := newRingBuffers(n)
	for i := w; i < n-w; i++ {
		var diff spatialmath.Vec3
		for k := -w; k <= w; k++ {
			if k == 0 {
				continue
			}
			diff = diff.Add(positions[i+k])
		}
		diff = diff.Sub(positions[i].Mul(2 * float64(w)))
		buf.curvature[i] = diff.Norm2()
	}

	degenerate := maskDegenerate(positions, buf)
	markOccludedAndParallel(positions, buf, w)
	selectRegionFeatures(positions, buf, cfg, w)

	return buf, degenerate
}

// isDegenerate reports whether p is a zero-range reading or carries a
// non-finite component, the two per-point glitch conditions §7 requires to
// be masked rather than allowed to abort or corrupt the sweep (a single NaN
// position must never propagate into downstream aggregation such as the
// less-flat voxel grid's bounding-box computation).
func isDegenerate(p spatialmath.Vec3) bool {
	if p.Norm() == 0 {
		return true
	}
	for _, c := range [...]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return true
		}
	}
	return false
}

// maskDegenerate marks any point whose range is zero or whose position is
// non-finite as both picked (excluded from corner/surface selection) and
// degenerate (excluded from the less-flat candidate pool too), per the
// numerical-glitch masking policy: a single bad point is excluded from every
// output rather than aborting the sweep. It returns the number of points
// masked this way.
func maskDegenerate(positions []spatialmath.Vec3, buf *ringBuffers) int {
	count := 0
	for i, p := range positions {
		if isDegenerate(p) || math.IsNaN(buf.curvature[i]) || math.IsInf(buf.curvature[i], 0) {
			if !buf.picked[i] {
				count++
			}
			buf.picked[i] = true
			buf.degenerate[i] = true
		}
	}
	return count
}

func markOccludedAndParallel(positions []spatialmath.Vec3, buf *ringBuffers, w int) {
	n := len(positions)
	for i := w; i < n-w-1; i++ {
		markOcclusion(positions, buf.picked, i, w)
	}
	for i := w; i < n-w; i++ {
		markParallelBeam(positions, buf.picked, i)
	}
}

// markOcclusion compares ring points i and i+1 and does nothing unless their
// squared gap exceeds depthJumpThreshold (a depth jump). At a jump, the
// farther point is rescaled along its own ray to the nearer point's depth; if
// the gap between that rescaled point and the nearer point is small relative
// to the far depth, the far side sits on a silhouette and the farther point
// plus the w points beyond it on its side are excluded from selection.
func markOcclusion(positions []spatialmath.Vec3, picked []bool, i, w int) {
	// Squared neighbour gap above which the pair counts as a depth jump.
	const depthJumpThreshold = 0.1

	pi, pNext := positions[i], positions[i+1]
	di, diNext := pi.Norm(), pNext.Norm()
	if di == 0 || diNext == 0 || math.IsNaN(di) || math.IsNaN(diNext) {
		picked[i] = true
		return
	}
	if pNext.Sub(pi).Norm2() <= depthJumpThreshold {
		return
	}

	if di > diNext {
		rescaled := pi.Mul(diNext / di)
		gap := pNext.Sub(rescaled).Norm2()
		if gap/(di*di) < occlusionDepthRatioThreshold {
			markRange(picked, i-w, i)
		}
	} else {
		rescaled := pNext.Mul(di / diNext)
		gap := pi.Sub(rescaled).Norm2()
		if gap/(diNext*diNext) < occlusionDepthRatioThreshold {
			markRange(picked, i+1, i+1+w)
		}
	}
}

// markParallelBeam excludes i if both its neighboring gaps are large
// relative to its own squared depth, indicating the beam grazes a surface
// nearly edge-on rather than hitting it perpendicularly.
func markParallelBeam(positions []spatialmath.Vec3, picked []bool, i int) {
	p := positions[i]
	d2 := p.Dot(p)
	diffPrev := p.Sub(positions[i-1]).Norm2()
	diffNext := positions[i+1].Sub(p).Norm2()
	if diffPrev > parallelBeamRatioThreshold*d2 && diffNext > parallelBeamRatioThreshold*d2 {
		picked[i] = true
	}
}

func markRange(picked []bool, lo, hi int) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(picked)-1 {
		hi = len(picked) - 1
	}
	for i := lo; i <= hi; i++ {
		picked[i] = true
	}
}

func selectRegionFeatures(positions []spatialmath.Vec3, buf *ringBuffers, cfg Config, w int) {
	n := len(positions)
	interiorLen := n - 2*w
	regions := cfg.FeatureRegions

	for q := 0; q < regions; q++ {
		start := w + q*interiorLen/regions
		end := w + (q+1)*interiorLen/regions
		if end <= start {
			continue
		}
		idx := make([]int, end-start)
		for i := range idx {
			idx[i] = start + i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return buf.curvature[idx[a]] < buf.curvature[idx[b]]
		})

		selectCorners(positions, buf, idx, cfg, w)
		selectSurfaces(positions, buf, idx, cfg, w)
	}
}

func selectCorners(positions []spatialmath.Vec3, buf *ringBuffers, ascending []int, cfg Config, w int) {
	sharpCount, lessSharpCount := 0, 0
	for i := len(ascending) - 1; i >= 0; i-- {
		if lessSharpCount >= cfg.MaxCornerLessSharp {
			break
		}
		idx := ascending[i]
		if buf.picked[idx] || buf.curvature[idx] <= cfg.SurfaceCurvatureThreshold {
			continue
		}

		label := pointcloud.CornerLessSharp
		if sharpCount < cfg.MaxCornerSharp {
			label = pointcloud.CornerSharp
			sharpCount++
		}
		buf.label[idx] = label
		buf.picked[idx] = true
		lessSharpCount++
		markNeighborsExcluded(positions, buf.picked, idx, w)
	}
}

func selectSurfaces(positions []spatialmath.Vec3, buf *ringBuffers, ascending []int, cfg Config, w int) {
	flatCount := 0
	for _, idx := range ascending {
		if flatCount >= cfg.MaxSurfaceFlat {
			break
		}
		if buf.picked[idx] || buf.curvature[idx] >= cfg.SurfaceCurvatureThreshold {
			continue
		}

		buf.label[idx] = pointcloud.SurfaceFlat
		buf.picked[idx] = true
		flatCount++
		markNeighborsExcluded(positions, buf.picked, idx, w)
	}
}

// markNeighborsExcluded marks up to w neighbors on each side of idx as
// picked, stopping in a direction as soon as two consecutive neighbors are
// no longer close together (their squared gap exceeds
// exclusionContinuationLimit) — a discontinuity means the neighbor no
// longer belongs to the same edge or surface patch.
func markNeighborsExcluded(positions []spatialmath.Vec3, picked []bool, idx, w int) {
	n := len(positions)
	for l := 1; l <= w; l++ {
		j := idx + l
		if j >= n {
			break
		}
		if positions[j].Sub(positions[j-1]).Norm2() > exclusionContinuationLimit {
			break
		}
		picked[j] = true
	}
	for l := 1; l <= w; l++ {
		j := idx - l
		if j < 0 {
			break
		}
		if positions[j].Sub(positions[j+1]).Norm2() > exclusionContinuationLimit {
			break
		}
		picked[j] = true
	}
}
