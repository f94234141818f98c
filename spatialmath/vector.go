package spatialmath

import "github.com/golang/geo/r3"

// Vec3 is a three-dimensional real vector. It is an alias for r3.Vector so
// that this package interoperates directly with github.com/golang/geo/r3,
// the vector type used throughout the rest of the module.
type Vec3 = r3.Vector

// Lerp linearly interpolates between a and b by ratio, where ratio=0
// returns a and ratio=1 returns b.
func Lerp(a, b Vec3, ratio float64) Vec3 {
	return a.Mul(1 - ratio).Add(b.Mul(ratio))
}
