// Package pointcloud holds the point, label, and sweep types the
// registration core reads and produces, plus the voxel-grid downsampler used
// to build the less-flat surface output.
package pointcloud

import "github.com/finostro/loam-velodyne/spatialmath"

// Label is the feature classification assigned to a point by the extractor.
type Label int

// The four point labels, matching the fixed numeric contract of the source
// algorithm: downstream odometry keys off these exact values.
const (
	SurfaceFlat     Label = -1
	SurfaceLessFlat Label = 0
	CornerLessSharp Label = 1
	CornerSharp     Label = 2
)

// Point is a single measurement: a position plus an intensity-encoded
// channel whose integer part is the ring index and whose fractional part is
// the point's time within the sweep, in [0, scanPeriod).
type Point struct {
	Position  spatialmath.Vec3
	Intensity float64
}

// NewPoint packs a ring index and relative time into a single Point,
// following the channel-encoding convention described in the data model.
func NewPoint(pos spatialmath.Vec3, ring int, relTime float64) Point {
	return Point{Position: pos, Intensity: float64(ring) + relTime}
}

// Ring returns the ring index encoded in the point's intensity channel.
func (p Point) Ring() int {
	return int(p.Intensity)
}

// RelTime returns the sweep-relative time encoded in the point's intensity
// channel.
func (p Point) RelTime() float64 {
	return p.Intensity - float64(p.Ring())
}
