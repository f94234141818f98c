package pointcloud

import (
	"math"

	"github.com/finostro/loam-velodyne/spatialmath"
)

// VoxelCoords stores integer voxel coordinates in a VoxelGrid's axes,
// following the corpus's own pointcloud.VoxelCoords convention.
type VoxelCoords struct {
	I, J, K int64
}

// voxel accumulates the points assigned to one grid cell so a centroid can
// be produced once the grid is fully populated.
type voxel struct {
	sum   spatialmath.Vec3
	count int
}

// DownsampleLessFlat bucket-sorts points into a voxel grid of edge
// voxelSize and returns one representative point per occupied voxel, placed
// at the centroid of the points that fell in it. This mirrors
// go.viam.com/rdk/pointcloud's NewVoxelGridFromPointCloud, simplified to the
// single responsibility the less-flat filter needs: no plane/residual
// fitting, since downstream odometry only consumes the downsampled points,
// not per-voxel surface statistics. A point with a non-finite coordinate is
// skipped rather than allowed into the bounding-box/bucket computation,
// where a single NaN would otherwise collapse every point into one bucket.
func DownsampleLessFlat(points []Point, voxelSize float64) []Point {
	if voxelSize <= 0 {
		voxelSize = 0.2
	}

	var pMin spatialmath.Vec3
	haveMin := false
	for _, p := range points {
		if !finite(p.Position) {
			continue
		}
		if !haveMin {
			pMin = p.Position
			haveMin = true
			continue
		}
		pMin.X = math.Min(pMin.X, p.Position.X)
		pMin.Y = math.Min(pMin.Y, p.Position.Y)
		pMin.Z = math.Min(pMin.Z, p.Position.Z)
	}
	if !haveMin {
		return nil
	}

	grid := make(map[VoxelCoords]*voxel, len(points))
	order := make([]VoxelCoords, 0, len(points))
	for _, p := range points {
		if !finite(p.Position) {
			// A degenerate point should already have been filtered upstream
			// (§7); this is a last-resort guard so a single bad coordinate
			// can never collapse the whole voxel grid into one NaN bucket.
			continue
		}
		coords := voxelCoordinates(p.Position, pMin, voxelSize)
		v, ok := grid[coords]
		if !ok {
			v = &voxel{}
			grid[coords] = v
			order = append(order, coords)
		}
		v.sum = v.sum.Add(p.Position)
		v.count++
	}

	out := make([]Point, 0, len(order))
	for _, coords := range order {
		v := grid[coords]
		center := v.sum.Mul(1 / float64(v.count))
		out = append(out, Point{Position: center})
	}
	return out
}

func voxelCoordinates(p, pMin spatialmath.Vec3, voxelSize float64) VoxelCoords {
	return VoxelCoords{
		I: int64(math.Floor((p.X - pMin.X) / voxelSize)),
		J: int64(math.Floor((p.Y - pMin.Y) / voxelSize)),
		K: int64(math.Floor((p.Z - pMin.Z) / voxelSize)),
	}
}

// finite reports whether every component of p is a finite number, so a
// single NaN/Inf coordinate can be rejected before it poisons the grid's
// bounding box or bucket assignment.
func finite(p spatialmath.Vec3) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsNaN(p.Z) &&
		!math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0) && !math.IsInf(p.Z, 0)
}
