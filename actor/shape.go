package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeBox ShapeType = iota
	ShapeTypeSphere

	// ShapeCount is the number of shape variants, it sizes the pair dispatch table
	ShapeCount
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeBox:
		return "box"
	case ShapeTypeSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Collider is the interface implemented by the collision shapes.
// The variant set is closed: Box and Sphere.
//
// A collider caches its mass properties at construction. A zero or negative mass
// is a precondition violation: the inverse mass would be infinite or negative.
type Collider interface {
	Type() ShapeType
	// InverseMass is the reciprocal of the body mass
	InverseMass() float64
	// InverseInertia is the diagonal of the inverse inertia tensor, in body-local axes
	InverseInertia() mgl64.Vec3
	// Drag holds the per local axis linear drag coefficients
	Drag() mgl64.Vec3
	// ComputeAABB calculates the world axis-aligned bounding box at the given pose
	ComputeAABB(pose Pose) AABB
	// IntersectFloor tests the shape against the half-space below level on the Y axis
	IntersectFloor(pose Pose, level float64) (Hit, bool)
}

// Hit is the result of a narrow phase test.
// Normal points from the second body toward the first one.
type Hit struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
}

// Box represents an oriented box collision shape
type Box struct {
	Size     mgl64.Vec3
	HalfSize mgl64.Vec3

	invMass    float64
	invInertia mgl64.Vec3
	drag       mgl64.Vec3
}

// NewBox creates a solid box of full dimensions size
func NewBox(size mgl64.Vec3, mass float64, drag mgl64.Vec3) *Box {
	x, y, z := size.X(), size.Y(), size.Z()

	// I = (m/12) * (dimension1² + dimension2²)
	factor := mass / 12.0

	return &Box{
		Size:     size,
		HalfSize: size.Mul(0.5),
		invMass:  1.0 / mass,
		invInertia: mgl64.Vec3{
			1.0 / (factor * (y*y + z*z)),
			1.0 / (factor * (z*z + x*x)),
			1.0 / (factor * (x*x + y*y)),
		},
		drag: drag,
	}
}

// BoxMass returns the mass of a solid box of the given density
func BoxMass(size mgl64.Vec3, density float64) float64 {
	return size.X() * size.Y() * size.Z() * density
}

func (b *Box) Type() ShapeType            { return ShapeTypeBox }
func (b *Box) InverseMass() float64       { return b.invMass }
func (b *Box) InverseInertia() mgl64.Vec3 { return b.invInertia }
func (b *Box) Drag() mgl64.Vec3           { return b.drag }

func (b *Box) ComputeAABB(pose Pose) AABB {
	return NewAABB(pose, b.HalfSize)
}

// extents returns the half extents along the world-space box axes
func (b *Box) extents(pose Pose) (right, up, forward mgl64.Vec3) {
	return pose.Axis0().Normalize().Mul(b.HalfSize.X()),
		pose.Axis1().Normalize().Mul(b.HalfSize.Y()),
		pose.Axis2().Normalize().Mul(b.HalfSize.Z())
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64

	invMass    float64
	invInertia mgl64.Vec3
	drag       mgl64.Vec3
}

// NewSphere creates a solid sphere
func NewSphere(radius float64, mass float64, drag mgl64.Vec3) *Sphere {
	// I = (2/5) * m * r², identical on all axes
	i := 1.0 / (0.4 * mass * radius * radius)

	return &Sphere{
		Radius:     radius,
		invMass:    1.0 / mass,
		invInertia: mgl64.Vec3{i, i, i},
		drag:       drag,
	}
}

// SphereMass returns the mass of a solid sphere of the given density
func SphereMass(radius float64, density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	return density * (4.0 / 3.0) * math.Pi * radius * radius * radius
}

func (s *Sphere) Type() ShapeType            { return ShapeTypeSphere }
func (s *Sphere) InverseMass() float64       { return s.invMass }
func (s *Sphere) InverseInertia() mgl64.Vec3 { return s.invInertia }
func (s *Sphere) Drag() mgl64.Vec3           { return s.drag }

// ComputeAABB calculates the axis-aligned bounding box for the sphere.
// Sphere AABB is not affected by rotation, only by position
func (s *Sphere) ComputeAABB(pose Pose) AABB {
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	return AABB{
		Min: pose.Position.Sub(radiusVec),
		Max: pose.Position.Add(radiusVec),
	}
}
