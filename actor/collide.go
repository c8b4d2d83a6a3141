package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/xpbd/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrUnsupportedPair is returned by Intersect when no routine handles a pair of shapes
var ErrUnsupportedPair = errors.New("unsupported collider pair")

// Up is the floor normal
var Up = mgl64.Vec3{0, 1, 0}

// coincidentEpsilon is the distance under which two sphere centers are treated as equal
const coincidentEpsilon = 1e-9

// faceAxisEpsilon tells a face normal from an edge cross product in box-box contacts
const faceAxisEpsilon = 1e-6

type intersectFunc func(c0 Collider, pose0 Pose, c1 Collider, pose1 Pose, sat *geometry.SAT) (Hit, bool)

// intersectTable dispatches on the (first, second) shape type pair
var intersectTable = [ShapeCount][ShapeCount]intersectFunc{
	ShapeTypeBox: {
		ShapeTypeBox:    intersectBoxBox,
		ShapeTypeSphere: intersectBoxSphere,
	},
	ShapeTypeSphere: {
		ShapeTypeBox:    intersectSphereBox,
		ShapeTypeSphere: intersectSphereSphere,
	},
}

// Intersect runs the narrow phase between two colliders at the given poses.
// The hit normal points from the second collider toward the first one.
// sat is a scratch buffer reused by the box-box test, it may be nil for other pairs.
func Intersect(c0 Collider, pose0 Pose, c1 Collider, pose1 Pose, sat *geometry.SAT) (Hit, bool, error) {
	t0, t1 := c0.Type(), c1.Type()
	if t0 < 0 || t0 >= ShapeCount || t1 < 0 || t1 >= ShapeCount || intersectTable[t0][t1] == nil {
		return Hit{}, false, fmt.Errorf("%w: %s-%s", ErrUnsupportedPair, t0, t1)
	}
	if sat == nil {
		sat = &geometry.SAT{}
	}

	hit, ok := intersectTable[t0][t1](c0, pose0, c1, pose1, sat)

	return hit, ok, nil
}

// ============================================================================
// Sphere
// ============================================================================

func intersectSphereSphere(c0 Collider, pose0 Pose, c1 Collider, pose1 Pose, _ *geometry.SAT) (Hit, bool) {
	s0 := c0.(*Sphere)
	s1 := c1.(*Sphere)

	dp := pose0.Position.Sub(pose1.Position)
	distance := dp.Len()

	normal := Up
	if distance > coincidentEpsilon {
		normal = dp.Mul(1.0 / distance)
	}
	depth := s0.Radius + s1.Radius - distance

	if depth <= 0 {
		return Hit{}, false
	}

	return Hit{
		// Halfway through the overlap, on the line between the centers
		Point:  pose0.Position.Sub(normal.Mul(s0.Radius - 0.5*depth)),
		Normal: normal,
		Depth:  depth,
	}, true
}

func (s *Sphere) IntersectFloor(pose Pose, level float64) (Hit, bool) {
	low := pose.Position.Sub(Up.Mul(s.Radius))
	depth := level - low.Y()
	if depth <= 0 {
		return Hit{}, false
	}

	return Hit{
		Point:  low.Add(Up.Mul(0.5 * depth)),
		Normal: Up,
		Depth:  depth,
	}, true
}

// ============================================================================
// Box - Sphere
// ============================================================================

func intersectBoxSphere(c0 Collider, pose0 Pose, c1 Collider, pose1 Pose, _ *geometry.SAT) (Hit, bool) {
	return intersectBoxWithSphere(c0.(*Box), pose0, c1.(*Sphere), pose1)
}

func intersectSphereBox(c0 Collider, pose0 Pose, c1 Collider, pose1 Pose, _ *geometry.SAT) (Hit, bool) {
	hit, ok := intersectBoxWithSphere(c1.(*Box), pose1, c0.(*Sphere), pose0)
	hit.Normal = hit.Normal.Mul(-1)

	return hit, ok
}

// boxFace is a box face plane with the two axes of its side planes
type boxFace struct {
	normal mgl64.Vec3
	point  mgl64.Vec3
	side1  mgl64.Vec3
	side2  mgl64.Vec3
}

// intersectBoxWithSphere tests the sphere against each of the 6 face planes, in a fixed order.
// A face whose section center lies inside all 4 side planes supports the sphere and ends
// the search. Otherwise the section is clipped against the nearest side plane, and the
// deepest clipped candidate wins.
func intersectBoxWithSphere(box *Box, boxPose Pose, sphere *Sphere, spherePose Pose) (Hit, bool) {
	right := boxPose.Axis0().Normalize()
	up := boxPose.Axis1().Normalize()
	forward := boxPose.Axis2().Normalize()

	fullExtent := right.Mul(box.HalfSize.X()).
		Add(up.Mul(box.HalfSize.Y())).
		Add(forward.Mul(box.HalfSize.Z()))
	pMax := boxPose.Position.Add(fullExtent)
	pMin := boxPose.Position.Sub(fullExtent)

	faces := [6]boxFace{
		{normal: right, point: pMax, side1: forward, side2: up},
		{normal: right.Mul(-1), point: pMin, side1: forward, side2: up},
		{normal: up, point: pMax, side1: right, side2: forward},
		{normal: up.Mul(-1), point: pMin, side1: right, side2: forward},
		{normal: forward, point: pMax, side1: right, side2: up},
		{normal: forward.Mul(-1), point: pMin, side1: right, side2: up},
	}

	center := spherePose.Position
	var best Hit
	found := false

	for _, face := range faces {
		section, ok := geometry.SphereIntersectsPlane(center, sphere.Radius, face.normal, face.point)
		if !ok {
			continue
		}

		sideNormals := [4]mgl64.Vec3{face.side1, face.side1.Mul(-1), face.side2, face.side2.Mul(-1)}
		sidePoints := [4]mgl64.Vec3{pMax, pMin, pMax, pMin}

		var depths [4]float64
		inside := true
		supported := true
		for i := range depths {
			depths[i] = section.Radius - geometry.PointPlaneDistance(section.Center, sideNormals[i], sidePoints[i])
			if depths[i] < 0 {
				inside = false
			}
			if depths[i] <= section.Radius {
				supported = false
			}
		}
		// The section center must lie inside the side planes, or no more than its radius outside
		if !inside {
			continue
		}

		if supported {
			return Hit{
				Point:  section.Center,
				Normal: face.normal.Mul(-1),
				Depth:  section.Depth,
			}, true
		}

		minSide := 0
		for i := 1; i < len(depths); i++ {
			if depths[i] < depths[minSide] {
				minSide = i
			}
		}
		depth := depths[minSide]
		if found && depth < best.Depth {
			continue
		}

		point := section.Center.Sub(sideNormals[minSide].Mul(section.Radius - 0.5*depth))
		normal := face.normal.Mul(-1)
		if toPoint := point.Sub(center); toPoint.Len() > coincidentEpsilon {
			normal = toPoint.Normalize()
		}

		best = Hit{Point: point, Normal: normal, Depth: depth}
		found = true
	}

	return best, found && best.Depth > 0
}

// ============================================================================
// Box - Box
// ============================================================================

func intersectBoxBox(c0 Collider, pose0 Pose, c1 Collider, pose1 Pose, sat *geometry.SAT) (Hit, bool) {
	box0 := c0.(*Box)
	box1 := c1.(*Box)

	r0, u0, f0 := box0.extents(pose0)
	r1, u1, f1 := box1.extents(pose1)
	axes0 := [3]mgl64.Vec3{pose0.Axis0().Normalize(), pose0.Axis1().Normalize(), pose0.Axis2().Normalize()}
	axes1 := [3]mgl64.Vec3{pose1.Axis0().Normalize(), pose1.Axis1().Normalize(), pose1.Axis2().Normalize()}

	sat.Reset()
	addAxis := func(dir mgl64.Vec3) {
		length := dir.Len()
		if length < geometry.ParallelAxisEpsilon {
			return
		}
		dir = dir.Mul(1.0 / length)
		sat.AddAxis(dir,
			geometry.HalfProjection(dir, r0, u0, f0),
			geometry.HalfProjection(dir, r1, u1, f1))
	}

	for _, axis := range axes0 {
		addAxis(axis)
	}
	for _, axis := range axes1 {
		addAxis(axis)
	}
	for _, a := range axes0 {
		for _, b := range axes1 {
			addAxis(a.Cross(b))
		}
	}

	normal, depth, ok := sat.Intersect(pose1.Position.Sub(pose0.Position))
	if !ok {
		return Hit{}, false
	}

	return Hit{
		Point:  boxBoxContactPoint(box0, pose0, axes0, box1, pose1, axes1, normal),
		Normal: normal,
		Depth:  depth,
	}, true
}

// dominantAxis returns the axis index with the largest absolute projection on dir
func dominantAxis(axes [3]mgl64.Vec3, dir mgl64.Vec3) (int, float64) {
	best, bestDot := 0, -1.0
	for i, axis := range axes {
		if d := math.Abs(axis.Dot(dir)); d > bestDot {
			best, bestDot = i, d
		}
	}

	return best, bestDot
}

// boxBoxContactPoint clips the incident face against the side planes of the reference face,
// then averages the clipped corners weighted by their penetration below the reference face.
// The reference face belongs to the box whose face is the most perpendicular to the normal.
func boxBoxContactPoint(box0 *Box, pose0 Pose, axes0 [3]mgl64.Vec3, box1 *Box, pose1 Pose, axes1 [3]mgl64.Vec3, normal mgl64.Vec3) mgl64.Vec3 {
	i0, dot0 := dominantAxis(axes0, normal)
	i1, dot1 := dominantAxis(axes1, normal)

	// The normal is an edge cross product: no face leads, the boxes touch where their edges cross
	if math.Max(dot0, dot1) < 1-faceAxisEpsilon {
		return boxBoxEdgeContactPoint(box0, pose0, axes0, box1, pose1, axes1, normal)
	}

	// normal points from box1 to box0: box0 faces box1 along -normal
	refBox, refPose, refAxes, refIndex := box0, pose0, axes0, i0
	incBox, incPose, incAxes := box1, pose1, axes1
	towardIncident := normal.Mul(-1)
	if dot1 > dot0 {
		refBox, refPose, refAxes, refIndex = box1, pose1, axes1, i1
		incBox, incPose, incAxes = box0, pose0, axes0
		towardIncident = normal
	}

	refNormal := refAxes[refIndex]
	if refNormal.Dot(towardIncident) < 0 {
		refNormal = refNormal.Mul(-1)
	}
	refFacePoint := refPose.Position.Add(refNormal.Mul(refBox.HalfSize[refIndex]))

	incIndex, _ := dominantAxis(incAxes, refNormal)
	incNormal := incAxes[incIndex]
	if incNormal.Dot(refNormal) > 0 {
		incNormal = incNormal.Mul(-1)
	}
	incFaceCenter := incPose.Position.Add(incNormal.Mul(incBox.HalfSize[incIndex]))

	k, l := (incIndex+1)%3, (incIndex+2)%3
	ek := incAxes[k].Mul(incBox.HalfSize[k])
	el := incAxes[l].Mul(incBox.HalfSize[l])
	points := [4]mgl64.Vec3{
		incFaceCenter.Add(ek).Add(el),
		incFaceCenter.Add(ek).Sub(el),
		incFaceCenter.Sub(ek).Sub(el),
		incFaceCenter.Sub(ek).Add(el),
	}

	for _, side := range [2]int{(refIndex + 1) % 3, (refIndex + 2) % 3} {
		axis := refAxes[side]
		half := refBox.HalfSize[side]
		positivePlane := refPose.Position.Add(axis.Mul(half))
		negativePlane := refPose.Position.Sub(axis.Mul(half))
		for i := range points {
			points[i] = geometry.ClipPointByPlane(points[i], axis.Mul(-1), positivePlane)
			points[i] = geometry.ClipPointByPlane(points[i], axis, negativePlane)
		}
	}

	var weights [4]float64
	signed := [4]float64{}
	total := 0.0
	for i, p := range points {
		signed[i] = refFacePoint.Sub(p).Dot(refNormal)
		weights[i] = math.Max(0, signed[i])
		total += weights[i]
	}

	// Degenerate weighting: tangent or touching faces
	if total <= 0 {
		total = 0
		for i := range weights {
			weights[i] = 0
			if signed[i] >= 0 {
				weights[i] = 1
			}
			total += weights[i]
		}
		if total == 0 {
			weights[0] = 1
			total = 1
		}
	}

	var point mgl64.Vec3
	for i, p := range points {
		point = point.Add(p.Mul(weights[i]))
	}

	return point.Mul(1.0 / total)
}

// supportEdge returns the center of the box edge parallel to axes[edge] lying furthest along dir
func supportEdge(box *Box, pose Pose, axes [3]mgl64.Vec3, edge int, dir mgl64.Vec3) mgl64.Vec3 {
	center := pose.Position
	for k, axis := range axes {
		if k == edge {
			continue
		}
		if axis.Dot(dir) < 0 {
			center = center.Sub(axis.Mul(box.HalfSize[k]))
		} else {
			center = center.Add(axis.Mul(box.HalfSize[k]))
		}
	}

	return center
}

// boxBoxEdgeContactPoint returns the midpoint of the closest points of the two colliding edges.
// Each edge runs along the box axis the most perpendicular to the normal.
func boxBoxEdgeContactPoint(box0 *Box, pose0 Pose, axes0 [3]mgl64.Vec3, box1 *Box, pose1 Pose, axes1 [3]mgl64.Vec3, normal mgl64.Vec3) mgl64.Vec3 {
	e0 := leastAlignedAxis(axes0, normal)
	e1 := leastAlignedAxis(axes1, normal)

	// normal points from box1 to box0
	c0 := supportEdge(box0, pose0, axes0, e0, normal.Mul(-1))
	c1 := supportEdge(box1, pose1, axes1, e1, normal)
	d0, d1 := axes0[e0], axes1[e1]
	h0, h1 := box0.HalfSize[e0], box1.HalfSize[e1]

	r := c0.Sub(c1)
	b := d0.Dot(d1)
	c := d0.Dot(r)
	f := d1.Dot(r)

	s := 0.0
	if denom := 1 - b*b; denom > geometry.ParallelAxisEpsilon {
		s = mgl64.Clamp((b*f-c)/denom, -h0, h0)
	}
	t := mgl64.Clamp(f+b*s, -h1, h1)
	s = mgl64.Clamp(b*t-c, -h0, h0)

	p0 := c0.Add(d0.Mul(s))
	p1 := c1.Add(d1.Mul(t))

	return p0.Add(p1).Mul(0.5)
}

// leastAlignedAxis returns the axis index with the smallest absolute projection on dir
func leastAlignedAxis(axes [3]mgl64.Vec3, dir mgl64.Vec3) int {
	best, bestDot := 0, math.Inf(1)
	for i, axis := range axes {
		if d := math.Abs(axis.Dot(dir)); d < bestDot {
			best, bestDot = i, d
		}
	}

	return best
}

// ============================================================================
// Box - Floor
// ============================================================================

func (b *Box) IntersectFloor(pose Pose, level float64) (Hit, bool) {
	right, up, forward := b.extents(pose)

	// Broad check: lowest reachable height of the box along the up axis
	if pose.Position.Y()-level > math.Abs(right.Y())+math.Abs(up.Y())+math.Abs(forward.Y()) {
		return Hit{}, false
	}

	var point mgl64.Vec3
	total, depth := 0.0, 0.0
	for _, sx := range [2]float64{1, -1} {
		for _, sy := range [2]float64{1, -1} {
			for _, sz := range [2]float64{1, -1} {
				corner := pose.Position.Add(right.Mul(sx)).Add(up.Mul(sy)).Add(forward.Mul(sz))
				shift := math.Max(0, level-corner.Y())
				point = point.Add(corner.Mul(shift))
				total += shift
				depth = math.Max(depth, shift)
			}
		}
	}

	if total <= 0 {
		return Hit{}, false
	}

	return Hit{
		Point:  point.Mul(1.0 / total),
		Normal: Up,
		Depth:  depth,
	}, true
}
