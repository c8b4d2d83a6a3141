package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxRotationPerSubstep bounds the rotation applied in a single ApplyRotation call (radians)
const MaxRotationPerSubstep = 0.5

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// PreviousPose is the pose at the start of the current substep,
	// it is only used to derive the velocities
	PreviousPose Pose
	Pose         Pose

	Velocity mgl64.Vec3 // Linear velocity (m/s)
	// AngularVelocity is the rotation axis scaled by the rate (rad/s)
	AngularVelocity mgl64.Vec3

	// Collider is owned by the body and immutable after construction
	Collider Collider

	accumulatedForce mgl64.Vec3
}

// NewRigidBody creates a body at rest
func NewRigidBody(pose Pose, collider Collider) *RigidBody {
	pose = NewPose(pose.Position, pose.Rotation)

	return &RigidBody{
		PreviousPose: pose,
		Pose:         pose,
		Collider:     collider,
	}
}

func (rb *RigidBody) InverseMass() float64 {
	return rb.Collider.InverseMass()
}

// ApplyRotation rotates the body by the axis-angle vector rot scaled by scale.
// It uses the first order update q += 0.5 * (rot, 0) * q, then renormalizes.
func (rb *RigidBody) ApplyRotation(rot mgl64.Vec3, scale float64) {
	// Safety clamping, for solvers turning the body by more than 30 degrees in a few milliseconds
	phi := rot.Len()
	if phi*scale > MaxRotationPerSubstep {
		scale = MaxRotationPerSubstep / phi
	}

	dq := mgl64.Quat{W: 0, V: rot.Mul(scale)}.Mul(rb.Pose.Rotation)
	q := rb.Pose.Rotation.Add(dq.Scale(0.5))
	rb.Pose = rb.Pose.SetRotation(q)
}

// Integrate predicts the pose at the end of the substep from the current velocities
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	rb.PreviousPose = rb.Pose

	invMass := rb.Collider.InverseMass()

	// ========== LINEAR ==========
	rb.Velocity = rb.Velocity.Add(gravity.Mul(dt))
	rb.Velocity = rb.Velocity.Add(rb.accumulatedForce.Mul(invMass * dt))
	rb.applyDrag(invMass, dt)
	rb.Pose = rb.Pose.Translate(rb.Velocity.Mul(dt))

	// ========== ANGULAR ==========
	rb.ApplyRotation(rb.AngularVelocity, dt)
}

// applyDrag slows each local velocity component down, without reversing it
func (rb *RigidBody) applyDrag(invMass, dt float64) {
	drag := rb.Collider.Drag()
	if drag == (mgl64.Vec3{}) {
		return
	}

	local := rb.Pose.InvRotate(rb.Velocity)
	var delta mgl64.Vec3
	for i := range 3 {
		delta[i] = -local[i] * math.Min(1, drag[i]*invMass*dt)
	}
	rb.Velocity = rb.Velocity.Add(rb.Pose.Rotate(delta))
}

// Update derives the velocities from the pose change over the substep
func (rb *RigidBody) Update(dt float64) {
	rb.Velocity = rb.Pose.Position.Sub(rb.PreviousPose.Position).Mul(1.0 / dt)

	dq := rb.Pose.Rotation.Mul(rb.PreviousPose.Rotation.Conjugate())
	rb.AngularVelocity = dq.V.Mul(2.0 / dt)
	if dq.W < 0 {
		rb.AngularVelocity = rb.AngularVelocity.Mul(-1)
	}
}

// VelocityAt returns the velocity of the body point at world position point
func (rb *RigidBody) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	return rb.Velocity.Sub(point.Sub(rb.Pose.Position).Cross(rb.AngularVelocity))
}

// InverseMassAt returns the generalized inverse mass along the unit direction normal.
// Without a point, normal is an angular correction axis. With a point, the correction
// acts at that world point and the linear inverse mass is added.
func (rb *RigidBody) InverseMassAt(normal mgl64.Vec3, point *mgl64.Vec3) float64 {
	n := normal
	if point != nil {
		n = point.Sub(rb.Pose.Position).Cross(normal)
	}

	n = rb.Pose.InvRotate(n)
	invInertia := rb.Collider.InverseInertia()

	w := n.X()*n.X()*invInertia.X() +
		n.Y()*n.Y()*invInertia.Y() +
		n.Z()*n.Z()*invInertia.Z()

	if point != nil {
		w += rb.Collider.InverseMass()
	}

	return w
}

// ApplyCorrection applies this body's share of a generalized impulse.
// Without a point, corr is a pure angular displacement. At velocity level the velocities
// are changed instead of the pose.
func (rb *RigidBody) ApplyCorrection(corr mgl64.Vec3, point *mgl64.Vec3, velocityLevel bool) {
	dq := corr
	if point != nil {
		if velocityLevel {
			rb.Velocity = rb.Velocity.Add(corr.Mul(rb.Collider.InverseMass()))
		} else {
			rb.Pose = rb.Pose.Translate(corr.Mul(rb.Collider.InverseMass()))
		}
		dq = point.Sub(rb.Pose.Position).Cross(corr)
	}

	invInertia := rb.Collider.InverseInertia()
	local := rb.Pose.InvRotate(dq)
	local = mgl64.Vec3{local.X() * invInertia.X(), local.Y() * invInertia.Y(), local.Z() * invInertia.Z()}
	dq = rb.Pose.Rotate(local)

	if velocityLevel {
		rb.AngularVelocity = rb.AngularVelocity.Add(dq)
	} else {
		rb.ApplyRotation(dq, 1)
	}
}

// AddForce accumulates an external force (N), applied on every substep until ClearForces
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	rb.accumulatedForce = rb.accumulatedForce.Add(force)
}

// Force returns the accumulated external force
func (rb *RigidBody) Force() mgl64.Vec3 {
	return rb.accumulatedForce
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
}

// AABB computes the world bounding box at the current pose
func (rb *RigidBody) AABB() AABB {
	return rb.Collider.ComputeAABB(rb.Pose)
}
