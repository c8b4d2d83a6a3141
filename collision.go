package xpbd

import (
	"log"

	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/constraint"
	"github.com/akmonengine/xpbd/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// FrictionProvider resolves the friction coefficient of a contact.
// body1 is fixed to the world for floor contacts.
type FrictionProvider interface {
	Friction(body0, body1 actor.Anchor, point, normal mgl64.Vec3, depth float64, tangentDir mgl64.Vec3, tangentSpeed float64) float64
}

// FrictionFunc adapts a function to the FrictionProvider interface
type FrictionFunc func(body0, body1 actor.Anchor, point, normal mgl64.Vec3, depth float64, tangentDir mgl64.Vec3, tangentSpeed float64) float64

func (f FrictionFunc) Friction(body0, body1 actor.Anchor, point, normal mgl64.Vec3, depth float64, tangentDir mgl64.Vec3, tangentSpeed float64) float64 {
	return f(body0, body1, point, normal, depth, tangentDir, tangentSpeed)
}

// ConstantFriction returns the same coefficient for every contact
type ConstantFriction float64

func (c ConstantFriction) Friction(_, _ actor.Anchor, _, _ mgl64.Vec3, _ float64, _ mgl64.Vec3, _ float64) float64 {
	return float64(c)
}

// CollisionSystem detects and resolves contacts between the world bodies and the floor.
// The body slice is borrowed from the World, the contact list is rebuilt every substep.
type CollisionSystem struct {
	FloorLevel float64
	Friction   FrictionProvider
	Logger     *log.Logger

	bodies   []*actor.RigidBody
	contacts []constraint.Contact
	sat      geometry.SAT
	reported map[[2]actor.ShapeType]bool
}

func NewCollisionSystem(floorLevel float64, friction FrictionProvider) *CollisionSystem {
	return &CollisionSystem{
		FloorLevel: floorLevel,
		Friction:   friction,
		Logger:     log.Default(),
		contacts:   make([]constraint.Contact, 0, 16),
		reported:   make(map[[2]actor.ShapeType]bool),
	}
}

// SetBodies sets the view of the bodies to collide. The slice is not copied.
func (cs *CollisionSystem) SetBodies(bodies []*actor.RigidBody) {
	cs.bodies = bodies
}

// Contacts returns the contacts recorded since the last ClearContacts
func (cs *CollisionSystem) Contacts() []constraint.Contact {
	return cs.contacts
}

func (cs *CollisionSystem) ClearContacts() {
	cs.contacts = cs.contacts[:0]
}

// Collide runs one collision pass: every body pair in insertion order, then every body
// against the floor. Penetrations are corrected immediately, with zero compliance.
func (cs *CollisionSystem) Collide(dt float64) {
	for i := 0; i < len(cs.bodies); i++ {
		for j := i + 1; j < len(cs.bodies); j++ {
			b0 := cs.bodies[i]
			b1 := cs.bodies[j]

			// Broad phase, with the bounding boxes at the current poses
			if !b0.AABB().Overlaps(b1.AABB()) {
				continue
			}

			hit, ok, err := actor.Intersect(b0.Collider, b0.Pose, b1.Collider, b1.Pose, &cs.sat)
			if err != nil {
				cs.reportUnsupported(b0.Collider.Type(), b1.Collider.Type(), err)
				continue
			}
			if !ok {
				continue
			}

			cs.resolve(actor.Attached(b0), actor.Attached(b1), hit, dt)
		}
	}

	for _, body := range cs.bodies {
		hit, ok := body.Collider.IntersectFloor(body.Pose, cs.FloorLevel)
		if !ok {
			continue
		}

		cs.resolve(actor.Attached(body), actor.FixedToWorld, hit, dt)
	}
}

// resolve records the contact, then pushes the bodies apart along the normal
func (cs *CollisionSystem) resolve(body0, body1 actor.Anchor, hit actor.Hit, dt float64) {
	contact := constraint.NewContact(body0, body1, hit.Point, hit.Normal, hit.Depth)
	if cs.Friction != nil {
		contact.Friction = cs.Friction.Friction(body0, body1, hit.Point, hit.Normal, hit.Depth, contact.TangentDir, contact.TangentSpeed)
	}

	point := hit.Point
	contact.Lambda = actor.ApplyBodyPairCorrection(body0, body1, hit.Normal.Mul(hit.Depth), 0, dt, &point, &point, false)

	cs.contacts = append(cs.contacts, contact)
}

// SolveVelocity applies the friction of every recorded contact, in order
func (cs *CollisionSystem) SolveVelocity(dt float64) {
	for i := range cs.contacts {
		cs.contacts[i].SolveVelocity(dt)
	}
}

// reportUnsupported logs a skipped pair once per shape pair
func (cs *CollisionSystem) reportUnsupported(t0, t1 actor.ShapeType, err error) {
	key := [2]actor.ShapeType{t0, t1}
	if cs.reported[key] {
		return
	}
	if cs.reported == nil {
		cs.reported = make(map[[2]actor.ShapeType]bool)
	}
	cs.reported[key] = true

	if cs.Logger != nil {
		cs.Logger.Printf("collision: skipping pair: %v", err)
	}
}
