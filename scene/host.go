package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/akmonengine/xpbd"
	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Entity is a host object following a body
type Entity interface {
	SetPose(pose actor.Pose)
}

// EntityFunc adapts a function to Entity
type EntityFunc func(pose actor.Pose)

func (f EntityFunc) SetPose(pose actor.Pose) {
	f(pose)
}

type binding struct {
	body   *actor.RigidBody
	entity Entity
}

// Host drives a world on behalf of an application and copies the body poses back to its entities
type Host struct {
	world    *xpbd.World
	bindings []binding
}

func NewHost(world *xpbd.World) *Host {
	return &Host{world: world}
}

func (h *Host) World() *xpbd.World {
	return h.world
}

// Bind adds the body to the world if needed, and sends its pose to entity after each tick
func (h *Host) Bind(body *actor.RigidBody, entity Entity) {
	h.world.AddBody(body)
	h.bindings = append(h.bindings, binding{body: body, entity: entity})
}

// PushForce adds a force applied during the next tick
func (h *Host) PushForce(body *actor.RigidBody, force mgl64.Vec3) {
	body.AddForce(force)
}

// Tick advances the world by one time step
func (h *Host) Tick() {
	h.world.Simulate()
	for _, b := range h.bindings {
		b.entity.SetPose(b.body.Pose)
	}
}

// Run ticks in real time until the context is done.
// The time step must be at least one nanosecond.
func (h *Host) Run(ctx context.Context) error {
	if err := h.world.Config.Validate(); err != nil {
		return err
	}
	period := time.Duration(h.world.Config.TimeStep * float64(time.Second))
	if period <= 0 {
		return fmt.Errorf("%w: time step %v is below the timer resolution", xpbd.ErrInvalidConfig, h.world.Config.TimeStep)
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.Tick()
		}
	}
}
