package registration

import (
	"math"

	"github.com/finostro/loam-velodyne/inertial"
	"github.com/finostro/loam-velodyne/spatialmath"
)

// compensateToSweepStart projects p, measured at sweep-relative time t, into
// the sweep-start frame. start is the interpolated inertial state at the
// sweep's first timestamp; cur is the interpolated inertial state at t.
//
// The algorithm is, in order:
//  1. rotate p from the sensor frame at time t toward the start frame by
//     applying Rz(roll_t), then Rx(pitch_t), then Ry(yaw_t) to the running
//     vector (roll around z, pitch around x, yaw around y, each applied to
//     the previous step's result);
//  2. subtract the acceleration-induced deviation from constant-velocity
//     motion, Δ = position_t - position0 - velocity0*t;
//  3. rotate the result back using the inverse of the start orientation, in
//     the reverse nesting: Ry(-yaw0), then Rx(-pitch0), then Rz(-roll0).
//
// Δ deliberately omits the constant-velocity component (it is absorbed by
// odometry downstream), which is why velocity0 appears at all.
func compensateToSweepStart(p spatialmath.Vec3, t float64, start, cur inertial.Sample) spatialmath.Vec3 {
	v := p
	v = rotateZ(v, cur.Roll.Rad())
	v = rotateX(v, cur.Pitch.Rad())
	v = rotateY(v, cur.Yaw.Rad())

	shift := start.Velocity.Mul(t)
	shift = cur.Position.Sub(start.Position).Sub(shift)
	v = v.Sub(shift)

	v = rotateY(v, -start.Yaw.Rad())
	v = rotateX(v, -start.Pitch.Rad())
	v = rotateZ(v, -start.Roll.Rad())
	return v
}

// rotateZ rotates v by angle around the z axis.
func rotateZ(v spatialmath.Vec3, angle float64) spatialmath.Vec3 {
	sin, cos := math.Sincos(angle)
	return spatialmath.Vec3{
		X: cos*v.X - sin*v.Y,
		Y: sin*v.X + cos*v.Y,
		Z: v.Z,
	}
}

// rotateX rotates v by angle around the x axis.
func rotateX(v spatialmath.Vec3, angle float64) spatialmath.Vec3 {
	sin, cos := math.Sincos(angle)
	return spatialmath.Vec3{
		X: v.X,
		Y: cos*v.Y - sin*v.Z,
		Z: sin*v.Y + cos*v.Z,
	}
}

// rotateY rotates v by angle around the y axis.
func rotateY(v spatialmath.Vec3, angle float64) spatialmath.Vec3 {
	sin, cos := math.Sincos(angle)
	return spatialmath.Vec3{
		X: sin*v.Z + cos*v.X,
		Y: v.Y,
		Z: cos*v.Z - sin*v.X,
	}
}
