// Package spatialmath provides the minimal angle and vector primitives used
// by the registration core to reason about sensor and inertial orientation.
package spatialmath

import "math"

// Angle is a scalar angle in radians, always normalized to (-pi, pi] on
// construction and after every addition.
type Angle float64

// NewAngle wraps rad into (-pi, pi] and returns the resulting Angle.
func NewAngle(rad float64) Angle {
	return Angle(rad).normalized()
}

// Rad returns the angle in radians, within (-pi, pi].
func (a Angle) Rad() float64 {
	return float64(a)
}

// Add returns a + b, normalized into (-pi, pi].
func (a Angle) Add(b Angle) Angle {
	return Angle(float64(a) + float64(b)).normalized()
}

// Sub returns a - b, normalized into (-pi, pi].
func (a Angle) Sub(b Angle) Angle {
	return Angle(float64(a) - float64(b)).normalized()
}

func (a Angle) normalized() Angle {
	v := math.Mod(float64(a)+math.Pi, 2*math.Pi)
	if v <= 0 {
		v += 2 * math.Pi
	}
	return Angle(v - math.Pi)
}
