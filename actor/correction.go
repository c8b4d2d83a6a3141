package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Anchor is one side of a constraint: either a body, or the fixed world.
// The world side has no inverse mass and ignores corrections.
type Anchor struct {
	body *RigidBody
}

// FixedToWorld is the anchor of a constraint side attached to the world
var FixedToWorld = Anchor{}

// Attached returns the anchor of a body. A nil body is fixed to the world.
func Attached(body *RigidBody) Anchor {
	return Anchor{body: body}
}

// Body returns the attached body, or nil when fixed to the world
func (a Anchor) Body() *RigidBody {
	return a.body
}

func (a Anchor) IsWorld() bool {
	return a.body == nil
}

// Pose returns the body pose, or the identity pose for the world
func (a Anchor) Pose() Pose {
	if a.body == nil {
		return IdentityPose()
	}
	return a.body.Pose
}

func (a Anchor) AngularVelocity() mgl64.Vec3 {
	if a.body == nil {
		return mgl64.Vec3{}
	}
	return a.body.AngularVelocity
}

func (a Anchor) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	if a.body == nil {
		return mgl64.Vec3{}
	}
	return a.body.VelocityAt(point)
}

func (a Anchor) inverseMass(normal mgl64.Vec3, point *mgl64.Vec3) float64 {
	if a.body == nil {
		return 0
	}
	return a.body.InverseMassAt(normal, point)
}

func (a Anchor) applyCorrection(corr mgl64.Vec3, point *mgl64.Vec3, velocityLevel bool) {
	if a.body == nil {
		return
	}
	a.body.ApplyCorrection(corr, point, velocityLevel)
}

// ApplyBodyPairCorrection solves the compliant constraint C = |corr| between two anchors,
// with a single XPBD update. corr is the desired change of anchor0 relative to anchor1:
// a positional or angular displacement, or a velocity change at velocity level.
// Nil points make the correction purely angular.
//
// It returns the Lagrange multiplier of the update, 0 when nothing was applied.
// dt must be positive.
func ApplyBodyPairCorrection(a0, a1 Anchor, corr mgl64.Vec3, compliance, dt float64, point0, point1 *mgl64.Vec3, velocityLevel bool) float64 {
	magnitude := corr.Len()
	if magnitude == 0 {
		return 0
	}

	normal := corr.Mul(1.0 / magnitude)

	w := a0.inverseMass(normal, point0) + a1.inverseMass(normal, point1)
	if w == 0 {
		return 0
	}

	lambda := -magnitude / (w + compliance/(dt*dt))
	impulse := normal.Mul(-lambda)

	a0.applyCorrection(impulse, point0, velocityLevel)
	a1.applyCorrection(impulse.Mul(-1), point1, velocityLevel)

	return lambda
}

// LimitAngle keeps the signed angle between a and b, measured around axis, inside
// [minAngle, maxAngle]. The correction is capped at maxCorrection radians.
// It reports whether a correction was issued.
func LimitAngle(a0, a1 Anchor, axis, a, b mgl64.Vec3, minAngle, maxAngle, compliance, dt, maxCorrection float64) bool {
	c := a.Cross(b)

	phi := math.Asin(mgl64.Clamp(c.Dot(axis), -1, 1))
	if a.Dot(b) < 0 {
		phi = math.Pi - phi
	}

	if phi > math.Pi {
		phi -= 2 * math.Pi
	}
	if phi < -math.Pi {
		phi += 2 * math.Pi
	}

	if phi >= minAngle && phi <= maxAngle {
		return false
	}

	phi = math.Min(math.Max(minAngle, phi), maxAngle)
	q := mgl64.QuatRotate(phi, axis)

	omega := q.Rotate(a).Cross(b)
	if length := omega.Len(); length > maxCorrection {
		omega = omega.Mul(maxCorrection / length)
	}

	ApplyBodyPairCorrection(a0, a1, omega, compliance, dt, nil, nil, false)

	return true
}
