// Package inertial holds a bounded history of inertial states and the
// piecewise-linear interpolation used to query it at an arbitrary time.
package inertial

import (
	"github.com/finostro/loam-velodyne/spatialmath"
)

// Sample is a single inertial measurement: a rigid-body pose plus linear
// kinematics at a timestamp. The acceleration field is carried for
// completeness but is not used by interpolation or motion compensation.
type Sample struct {
	Stamp        float64
	Roll         spatialmath.Angle
	Pitch        spatialmath.Angle
	Yaw          spatialmath.Angle
	Position     spatialmath.Vec3
	Velocity     spatialmath.Vec3
	Acceleration spatialmath.Vec3
}

// Zero is the identity inertial state used when a sweep arrives before any
// inertial sample has been observed.
var Zero = Sample{}
