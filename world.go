package xpbd

import (
	"errors"
	"fmt"

	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidConfig is returned by Config.Validate
var ErrInvalidConfig = errors.New("invalid world config")

// Config holds the world parameters. Changes take effect on the next Simulate.
type Config struct {
	// TimeStep is the duration of a Simulate call (s)
	TimeStep float64
	Substeps int
	// FloorLevel is the height of the floor half-space on the Y axis
	FloorLevel float64
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec3
	// CollisionPasses is 1 to collide once per substep, 2 to collide again after the joints
	CollisionPasses int
	// Friction resolves the contact friction coefficients, nil disables friction
	Friction FrictionProvider
}

func DefaultConfig() Config {
	return Config{
		TimeStep:        0.02,
		Substeps:        5,
		FloorLevel:      0,
		Gravity:         mgl64.Vec3{0, -9.81, 0},
		CollisionPasses: 2,
		Friction:        ConstantFriction(0.5),
	}
}

// Validate reports the parameters that would make Simulate divide by zero
func (c Config) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("%w: time step must be positive, got %v", ErrInvalidConfig, c.TimeStep)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, c.Substeps)
	}
	if c.CollisionPasses < 1 || c.CollisionPasses > 2 {
		return fmt.Errorf("%w: collision passes must be 1 or 2, got %d", ErrInvalidConfig, c.CollisionPasses)
	}

	return nil
}

// World owns the bodies, the joints and the collision system.
// It is not safe for concurrent use: bodies and joints must not be added during Simulate.
type World struct {
	Config Config
	Events Events

	// List of all rigid bodies in the world, in insertion order
	bodies []*actor.RigidBody
	joints []constraint.Constraint

	collision *CollisionSystem
	ticks     int
}

func NewWorld(config Config) *World {
	return &World{
		Config:    config,
		Events:    NewEvents(),
		collision: NewCollisionSystem(config.FloorLevel, config.Friction),
	}
}

// AddBody adds a rigid body to the world, once
func (w *World) AddBody(body *actor.RigidBody) {
	for _, b := range w.bodies {
		if b == body {
			return
		}
	}
	w.bodies = append(w.bodies, body)
}

// AddJoint adds a joint to the world, once. Joints are solved in insertion order.
func (w *World) AddJoint(joint constraint.Constraint) {
	for _, j := range w.joints {
		if j == joint {
			return
		}
	}
	w.joints = append(w.joints, joint)
}

func (w *World) Bodies() []*actor.RigidBody {
	return w.bodies
}

func (w *World) Joints() []constraint.Constraint {
	return w.joints
}

func (w *World) Collision() *CollisionSystem {
	return w.collision
}

// Ticks returns the number of completed Simulate calls
func (w *World) Ticks() int {
	return w.ticks
}

// Simulate advances the world by one TimeStep, split in Substeps.
// Each substep integrates the bodies, collides, solves the joints, collides again,
// derives the velocities from the pose changes and finally solves damping and friction.
func (w *World) Simulate() {
	h := w.Config.TimeStep / float64(w.Config.Substeps)
	w.collision.FloorLevel = w.Config.FloorLevel
	w.collision.Friction = w.Config.Friction
	w.collision.SetBodies(w.bodies)

	for range w.Config.Substeps {
		// Phase 1: predict poses
		w.integrate(h)

		// Phase 2: collide, contacts are corrected as they are found
		w.collision.ClearContacts()
		w.collision.Collide(h)

		// Phase 3: joints, a single iteration is enough thanks to substeps
		w.solvePosition(h)

		if w.Config.CollisionPasses > 1 {
			w.collision.Collide(h)
		}

		// Phase 4: derive velocities from the pose changes
		w.update(h)

		// Phase 5: velocity level, damping then friction
		w.solveVelocity(h)
		w.collision.SolveVelocity(h)

		w.Events.recordContacts(w.collision.Contacts())
	}

	for _, body := range w.bodies {
		body.ClearForces()
	}

	w.Events.flush()
	w.ticks++
}

func (w *World) integrate(h float64) {
	for _, body := range w.bodies {
		body.Integrate(h, w.Config.Gravity)
	}
}

func (w *World) solvePosition(h float64) {
	for _, joint := range w.joints {
		joint.SolvePosition(h)
	}
}

func (w *World) update(h float64) {
	for _, body := range w.bodies {
		body.Update(h)
	}
}

func (w *World) solveVelocity(h float64) {
	for _, joint := range w.joints {
		joint.SolveVelocity(h)
	}
}
