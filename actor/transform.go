package actor

import "github.com/go-gl/mathgl/mgl64"

// Pose represents a position and an orientation in 3D space.
// Pose is a value type: every mutation returns a new Pose.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewPose creates a pose, normalizing the orientation
func NewPose(position mgl64.Vec3, rotation mgl64.Quat) Pose {
	return Pose{Position: position, Rotation: rotation.Normalize()}
}

// IdentityPose creates a pose at the origin with no rotation
func IdentityPose() Pose {
	return Pose{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// Rotate rotates v from pose-local axes to world axes
func (p Pose) Rotate(v mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Rotate(v)
}

// InvRotate rotates v from world axes to pose-local axes
func (p Pose) InvRotate(v mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Conjugate().Rotate(v)
}

// Transform maps a local point to world space
func (p Pose) Transform(v mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Rotate(v).Add(p.Position)
}

// InvTransform maps a world point to local space
func (p Pose) InvTransform(v mgl64.Vec3) mgl64.Vec3 {
	return p.InvRotate(v.Sub(p.Position))
}

// TransformPose composes a child pose expressed in p's frame into world space
func (p Pose) TransformPose(child Pose) Pose {
	return Pose{
		Position: p.Position.Add(p.Rotate(child.Position)),
		Rotation: p.Rotation.Mul(child.Rotation),
	}
}

func (p Pose) Translate(delta mgl64.Vec3) Pose {
	return Pose{Position: p.Position.Add(delta), Rotation: p.Rotation}
}

func (p Pose) SetRotation(rotation mgl64.Quat) Pose {
	return Pose{Position: p.Position, Rotation: rotation.Normalize()}
}

// Axis0 returns the local X axis in world space
func (p Pose) Axis0() mgl64.Vec3 {
	return p.Rotation.Rotate(mgl64.Vec3{1, 0, 0})
}

// Axis1 returns the local Y axis in world space
func (p Pose) Axis1() mgl64.Vec3 {
	return p.Rotation.Rotate(mgl64.Vec3{0, 1, 0})
}

// Axis2 returns the local Z axis in world space
func (p Pose) Axis2() mgl64.Vec3 {
	return p.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
}
