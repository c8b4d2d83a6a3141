package constraint

import (
	"testing"

	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNewContact_TangentDecomposition(t *testing.T) {
	body := newSphereBody(mgl64.Vec3{0, 0.5, 0}, mgl64.QuatIdent())
	body.Velocity = mgl64.Vec3{0, -1, 3}

	contact := NewContact(actor.Attached(body), actor.FixedToWorld, body.Pose.Position, mgl64.Vec3{0, 1, 0}, 0.1)

	if !vec3AlmostEqual(contact.TangentDir, mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("TangentDir = %v, want {0 0 1}", contact.TangentDir)
	}
	if !almostEqual(contact.TangentSpeed, 3, 1e-12) {
		t.Errorf("TangentSpeed = %v, want 3", contact.TangentSpeed)
	}
}

func TestNewContact_NormalMotionHasNoTangent(t *testing.T) {
	body := newSphereBody(mgl64.Vec3{}, mgl64.QuatIdent())
	body.Velocity = mgl64.Vec3{0, -4, 0}

	contact := NewContact(actor.Attached(body), actor.FixedToWorld, body.Pose.Position, mgl64.Vec3{0, 1, 0}, 0.1)

	if contact.TangentSpeed != 0 || contact.TangentDir != (mgl64.Vec3{}) {
		t.Errorf("tangent = %v x %v, want zero", contact.TangentDir, contact.TangentSpeed)
	}
}

func TestContact_SolveVelocityFriction(t *testing.T) {
	tests := []struct {
		name     string
		friction float64
		lambda   float64
		want     mgl64.Vec3
	}{
		// normal force |λ|/dt² = 100, velocity change dt·μ·100 = 0.5
		{"sliding", 0.5, -0.01, mgl64.Vec3{2.5, -1, 0}},
		// the change is capped by the tangential speed
		{"sticking", 10, -0.01, mgl64.Vec3{0, -1, 0}},
		{"frictionless", 0, -0.01, mgl64.Vec3{3, -1, 0}},
		{"no normal force", 0.5, 0, mgl64.Vec3{3, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newSphereBody(mgl64.Vec3{}, mgl64.QuatIdent())
			body.Velocity = mgl64.Vec3{3, -1, 0}

			contact := NewContact(actor.Attached(body), actor.FixedToWorld, body.Pose.Position, mgl64.Vec3{0, 1, 0}, 0.1)
			contact.Friction = tt.friction
			contact.Lambda = tt.lambda

			contact.SolveVelocity(0.01)

			if !vec3AlmostEqual(body.Velocity, tt.want, 1e-12) {
				t.Errorf("Velocity = %v, want %v", body.Velocity, tt.want)
			}
		})
	}
}

func TestContact_FrictionBetweenBodies(t *testing.T) {
	b0 := newSphereBody(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent())
	b1 := newSphereBody(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent())
	b0.Velocity = mgl64.Vec3{1, 0, 0}
	b1.Velocity = mgl64.Vec3{-1, 0, 0}
	point := mgl64.Vec3{0, 0.5, 0}

	contact := NewContact(actor.Attached(b0), actor.Attached(b1), point, mgl64.Vec3{0, 1, 0}, 0.1)
	contact.Friction = 100
	contact.Lambda = -1

	contact.SolveVelocity(0.01)

	// The relative point velocity is removed, equal masses share it
	relative := b0.VelocityAt(point).Sub(b1.VelocityAt(point))
	if !vec3AlmostEqual(relative, mgl64.Vec3{}, 1e-9) {
		t.Errorf("relative velocity = %v, want zero", relative)
	}
	total := b0.Velocity.Add(b1.Velocity)
	if !vec3AlmostEqual(total, mgl64.Vec3{}, 1e-12) {
		t.Errorf("total momentum = %v, want zero", total)
	}
}

func TestContact_SolvePositionIsNoOp(t *testing.T) {
	body := newSphereBody(mgl64.Vec3{}, mgl64.QuatIdent())
	before := *body

	contact := NewContact(actor.Attached(body), actor.FixedToWorld, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, 1)
	contact.SolvePosition(0.01)

	if *body != before {
		t.Error("SolvePosition should not move the body")
	}
}
