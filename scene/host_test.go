package scene

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akmonengine/xpbd"
	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestHost_TickUpdatesEntities(t *testing.T) {
	world := xpbd.NewWorld(xpbd.DefaultConfig())
	host := NewHost(world)

	body := actor.NewRigidBody(actor.NewPose(mgl64.Vec3{0, 5, 0}, mgl64.QuatIdent()), actor.NewSphere(0.5, 1, mgl64.Vec3{}))
	var poses []actor.Pose
	host.Bind(body, EntityFunc(func(pose actor.Pose) {
		poses = append(poses, pose)
	}))

	if len(world.Bodies()) != 1 {
		t.Fatalf("Bind() should add the body to the world")
	}

	host.Tick()
	host.Tick()

	if len(poses) != 2 {
		t.Fatalf("entity received %d poses, want 2", len(poses))
	}
	if poses[1] != body.Pose {
		t.Errorf("entity pose = %v, want %v", poses[1], body.Pose)
	}
	if poses[1].Position.Y() >= poses[0].Position.Y() {
		t.Error("the body should fall")
	}
}

func TestHost_PushForce(t *testing.T) {
	config := xpbd.DefaultConfig()
	config.Gravity = mgl64.Vec3{}
	host := NewHost(xpbd.NewWorld(config))

	body := actor.NewRigidBody(actor.NewPose(mgl64.Vec3{0, 5, 0}, mgl64.QuatIdent()), actor.NewSphere(0.5, 2, mgl64.Vec3{}))
	host.Bind(body, EntityFunc(func(actor.Pose) {}))

	host.PushForce(body, mgl64.Vec3{0, 0, 10})
	host.Tick()

	// 10 N on 2 kg for 0.02 s
	if !almostEqual(body.Velocity.Z(), 0.1, 1e-9) {
		t.Errorf("Velocity.Z = %v, want 0.1", body.Velocity.Z())
	}
	if body.Force() != (mgl64.Vec3{}) {
		t.Errorf("Force() = %v, the force should last one tick", body.Force())
	}
}

func TestHost_Run(t *testing.T) {
	world := xpbd.NewWorld(xpbd.DefaultConfig())
	host := NewHost(world)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := host.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	if world.Ticks() == 0 {
		t.Error("Run() should tick the world")
	}
	if host.World() != world {
		t.Error("World() should return the hosted world")
	}
}

func TestHost_RunRejectsTimeSteps(t *testing.T) {
	tests := []struct {
		name     string
		timeStep float64
	}{
		{"zero", 0},
		{"negative", -0.01},
		{"below a nanosecond", 1e-12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := xpbd.DefaultConfig()
			config.TimeStep = tt.timeStep
			world := xpbd.NewWorld(config)

			err := NewHost(world).Run(context.Background())
			if !errors.Is(err, xpbd.ErrInvalidConfig) {
				t.Errorf("Run() error = %v, want %v", err, xpbd.ErrInvalidConfig)
			}
			if world.Ticks() != 0 {
				t.Errorf("Ticks() = %d, want 0", world.Ticks())
			}
		})
	}
}
