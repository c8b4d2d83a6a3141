package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxSATAxes is the candidate axis count of a box pair:
	// 3 face normals per box and 9 edge cross products.
	MaxSATAxes = 15

	// ParallelAxisEpsilon rejects cross products of nearly parallel edges
	ParallelAxisEpsilon = 1e-6
)

// SAT is a reusable scratch buffer for Separating Axis Theorem tests.
// It is owned by its caller and is not safe for concurrent use.
type SAT struct {
	axes       [MaxSATAxes]mgl64.Vec3
	halfProj0  [MaxSATAxes]float64
	halfProj1  [MaxSATAxes]float64
	axesLength int
}

// Reset empties the axis list
func (s *SAT) Reset() {
	s.axesLength = 0
}

// Len returns the number of accepted axes
func (s *SAT) Len() int {
	return s.axesLength
}

// AddAxis records a candidate axis with the half projections of both bodies.
// Near-zero axes and axes beyond MaxSATAxes are skipped; the return value
// reports whether the axis was kept.
func (s *SAT) AddAxis(dir mgl64.Vec3, halfProj0, halfProj1 float64) bool {
	if s.axesLength >= MaxSATAxes {
		return false
	}
	length := dir.Len()
	if length < ParallelAxisEpsilon {
		return false
	}

	s.axes[s.axesLength] = dir.Mul(1.0 / length)
	s.halfProj0[s.axesLength] = halfProj0
	s.halfProj1[s.axesLength] = halfProj1
	s.axesLength++

	return true
}

// Axis returns the i-th normalized axis
func (s *SAT) Axis(i int) mgl64.Vec3 {
	return s.axes[i]
}

// Intersect runs the test for deltaPos, the vector from the first body center to the second.
// The returned normal points from the second body toward the first, and depth is the
// minimum positive overlap over all axes. Any axis with a non-positive overlap separates
// the bodies.
func (s *SAT) Intersect(deltaPos mgl64.Vec3) (normal mgl64.Vec3, depth float64, ok bool) {
	if s.axesLength == 0 {
		return mgl64.Vec3{}, 0, false
	}

	minOverlap := math.MaxFloat64
	for i := 0; i < s.axesLength; i++ {
		dir := s.axes[i]

		dp := dir.Dot(deltaPos)
		sign := 1.0
		if dp < 0 {
			sign = -1.0
		}
		dp *= sign

		overlap := s.halfProj0[i] + s.halfProj1[i] - dp
		if overlap <= 0 {
			return mgl64.Vec3{}, 0, false
		}

		if overlap < minOverlap {
			minOverlap = overlap
			normal = dir.Mul(-sign)
		}
	}

	return normal, minOverlap, true
}
