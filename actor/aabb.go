package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB builds the world box enclosing an oriented box of the given half extents.
// Each local half extent is projected onto the world axes.
func NewAABB(pose Pose, halfExtents mgl64.Vec3) AABB {
	right := pose.Axis0().Mul(halfExtents.X())
	up := pose.Axis1().Mul(halfExtents.Y())
	forward := pose.Axis2().Mul(halfExtents.Z())

	var extent mgl64.Vec3
	for i := range 3 {
		extent[i] = math.Abs(right[i]) + math.Abs(up[i]) + math.Abs(forward[i])
	}

	return AABB{
		Min: pose.Position.Sub(extent),
		Max: pose.Position.Add(extent),
	}
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}
