// Package geometry holds the stateless routines used by the narrow phase:
// plane distances, plane clipping, sphere/plane sections and the
// Separating Axis Theorem overlap test.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PointPlaneDistance returns the signed distance of point to the plane
// passing through planePoint with the given unit normal.
func PointPlaneDistance(point, planeNormal, planePoint mgl64.Vec3) float64 {
	return point.Sub(planePoint).Dot(planeNormal)
}

// ClipPointByPlane moves a point lying behind an inward-facing plane onto the plane.
// Points already in front of the plane are returned unchanged.
func ClipPointByPlane(point, inwardNormal, planePoint mgl64.Vec3) mgl64.Vec3 {
	dot := planePoint.Sub(point).Dot(inwardNormal)
	if dot > 0 {
		point = point.Add(inwardNormal.Mul(dot))
	}

	return point
}

// SphereSection is the circle cut by a plane through a sphere
type SphereSection struct {
	Center mgl64.Vec3
	Radius float64
	// Depth is the sphere radius minus the center to plane distance
	Depth float64
}

// SphereIntersectsPlane computes the section of a sphere by a plane.
// It reports false when the plane does not touch the sphere.
func SphereIntersectsPlane(center mgl64.Vec3, radius float64, planeNormal, planePoint mgl64.Vec3) (SphereSection, bool) {
	dist := PointPlaneDistance(center, planeNormal, planePoint)
	absDist := math.Abs(dist)

	section := SphereSection{
		Center: center.Sub(planeNormal.Mul(dist)),
		Radius: math.Sqrt(math.Max(0, radius*radius-dist*dist)),
		Depth:  radius - absDist,
	}

	return section, absDist <= radius
}

// HalfProjection projects the half extents of a centrally symmetric box onto dir.
// It takes the largest of the 4 sign combinations of the extent vectors.
func HalfProjection(dir, e0, e1, e2 mgl64.Vec3) float64 {
	p0 := math.Abs(dir.Dot(e0.Add(e1).Add(e2)))
	p1 := math.Abs(dir.Dot(e0.Add(e1).Sub(e2)))
	p2 := math.Abs(dir.Dot(e0.Sub(e1).Add(e2)))
	p3 := math.Abs(dir.Dot(e0.Sub(e1).Sub(e2)))

	return math.Max(math.Max(p0, p1), math.Max(p2, p3))
}
