package constraint

import (
	"math"

	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// tangentSpeedEpsilon is the tangential speed under which a contact is considered sticking
const tangentSpeedEpsilon = 1e-6

// Contact is recorded for one colliding pair during a substep.
// Normal points from Body1 toward Body0; Body1 is fixed to the world for floor contacts.
type Contact struct {
	Body0 actor.Anchor
	Body1 actor.Anchor

	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64

	// TangentDir and TangentSpeed decompose the tangential relative velocity of
	// Body0 with respect to Body1 at Point
	TangentDir   mgl64.Vec3
	TangentSpeed float64

	Friction float64
	// Lambda is the multiplier of the penetration correction, it bounds the friction
	Lambda float64
}

// NewContact records a contact and decomposes the current relative point velocity
func NewContact(body0, body1 actor.Anchor, point, normal mgl64.Vec3, depth float64) Contact {
	c := Contact{
		Body0:  body0,
		Body1:  body1,
		Point:  point,
		Normal: normal,
		Depth:  depth,
	}
	c.TangentDir, c.TangentSpeed = c.tangentVelocity()

	return c
}

func (c *Contact) relativeVelocity() mgl64.Vec3 {
	return c.Body0.VelocityAt(c.Point).Sub(c.Body1.VelocityAt(c.Point))
}

func (c *Contact) tangentVelocity() (mgl64.Vec3, float64) {
	v := c.relativeVelocity()
	vt := v.Sub(c.Normal.Mul(v.Dot(c.Normal)))

	speed := vt.Len()
	if speed < tangentSpeedEpsilon {
		return mgl64.Vec3{}, 0
	}

	return vt.Mul(1.0 / speed), speed
}

// SolvePosition is a no-op: penetration is resolved when the contact is detected
func (c *Contact) SolvePosition(dt float64) {}

// SolveVelocity applies Coulomb friction: the tangential velocity change is bounded by
// the friction coefficient times the normal force of the penetration correction.
func (c *Contact) SolveVelocity(dt float64) {
	if c.Friction <= 0 || c.Lambda == 0 {
		return
	}

	dir, speed := c.tangentVelocity()
	if speed == 0 {
		return
	}

	normalForce := math.Abs(c.Lambda) / (dt * dt)
	dv := math.Min(dt*c.Friction*normalForce, speed)

	point := c.Point
	actor.ApplyBodyPairCorrection(c.Body0, c.Body1, dir.Mul(-dv), 0, dt, &point, &point, true)
}

var _ Constraint = (*Contact)(nil)
