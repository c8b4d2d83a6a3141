package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestPose_RotateAndTransform(t *testing.T) {
	// 90 degrees around Y: X maps to -Z
	pose := NewPose(mgl64.Vec3{1, 2, 3}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))

	tests := []struct {
		name string
		got  mgl64.Vec3
		want mgl64.Vec3
	}{
		{"Rotate", pose.Rotate(mgl64.Vec3{1, 0, 0}), mgl64.Vec3{0, 0, -1}},
		{"InvRotate", pose.InvRotate(mgl64.Vec3{0, 0, -1}), mgl64.Vec3{1, 0, 0}},
		{"Transform", pose.Transform(mgl64.Vec3{1, 0, 0}), mgl64.Vec3{1, 2, 2}},
		{"InvTransform", pose.InvTransform(mgl64.Vec3{1, 2, 2}), mgl64.Vec3{1, 0, 0}},
		{"Axis0", pose.Axis0(), mgl64.Vec3{0, 0, -1}},
		{"Axis1", pose.Axis1(), mgl64.Vec3{0, 1, 0}},
		{"Axis2", pose.Axis2(), mgl64.Vec3{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !vec3AlmostEqual(tt.got, tt.want, 1e-12) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestPose_TransformPose(t *testing.T) {
	parent := NewPose(mgl64.Vec3{1, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))
	child := NewPose(mgl64.Vec3{1, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))

	world := parent.TransformPose(child)

	if !vec3AlmostEqual(world.Position, mgl64.Vec3{1, 0, -1}, 1e-12) {
		t.Errorf("Position = %v, want {1 0 -1}", world.Position)
	}
	want := mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0})
	if !quatAlmostEqual(world.Rotation, want, 1e-12) {
		t.Errorf("Rotation = %v, want %v", world.Rotation, want)
	}
}

func TestPose_SetRotationNormalizes(t *testing.T) {
	pose := IdentityPose().SetRotation(mgl64.Quat{W: 3, V: mgl64.Vec3{0, 4, 0}})

	if !almostEqual(pose.Rotation.Len(), 1, 1e-12) {
		t.Errorf("rotation length = %v, want 1", pose.Rotation.Len())
	}
	if !quatAlmostEqual(pose.Rotation, mgl64.Quat{W: 0.6, V: mgl64.Vec3{0, 0.8, 0}}, 1e-12) {
		t.Errorf("Rotation = %v, want {0.6 {0 0.8 0}}", pose.Rotation)
	}
}

func TestPose_TranslateKeepsRotation(t *testing.T) {
	rot := mgl64.QuatRotate(0.4, mgl64.Vec3{1, 0, 0})
	pose := NewPose(mgl64.Vec3{}, rot).Translate(mgl64.Vec3{1, 1, 1})

	if pose.Position != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("Position = %v, want {1 1 1}", pose.Position)
	}
	if pose.Rotation != rot {
		t.Errorf("Rotation = %v, want %v", pose.Rotation, rot)
	}
}
