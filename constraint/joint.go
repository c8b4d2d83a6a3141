package constraint

import (
	"math"

	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// JointType selects the orientation handling of a joint
type JointType int

const (
	// JointFixed locks the relative orientation
	JointFixed JointType = iota
	// JointHinge aligns the local X axes, with optional swing limits around them
	JointHinge
	// JointSpherical leaves the orientation free, with optional swing and twist limits
	JointSpherical
	// JointDistance only keeps the attachment points within a rest distance
	JointDistance
)

func (t JointType) String() string {
	switch t {
	case JointFixed:
		return "fixed"
	case JointHinge:
		return "hinge"
	case JointSpherical:
		return "spherical"
	case JointDistance:
		return "distance"
	default:
		return "unknown"
	}
}

// twistGimbalThreshold is the cosine under which the twist axes are considered
// near antiparallel (about 120 degrees apart)
const twistGimbalThreshold = -0.5

// AngleLimit is a range of allowed angles in radians
type AngleLimit struct {
	Min        float64
	Max        float64
	Compliance float64
}

// JointParams holds the immutable parameters of a joint
type JointParams struct {
	Type JointType
	// LocalPose0 and LocalPose1 are the attachment frames, in their body space
	// (or world space for a side fixed to the world)
	LocalPose0 actor.Pose
	LocalPose1 actor.Pose

	Compliance float64
	// RotDamping and PosDamping are expressed in 1/s
	RotDamping float64
	PosDamping float64
	// Distance is the rest length of a JointDistance
	Distance float64

	// SwingLimit and TwistLimit are disabled when nil
	SwingLimit *AngleLimit
	TwistLimit *AngleLimit
}

// Joint connects two anchors. Either side may be fixed to the world.
type Joint struct {
	Anchor0 actor.Anchor
	Anchor1 actor.Anchor
	Params  JointParams

	globalPose0 actor.Pose
	globalPose1 actor.Pose
}

func NewJoint(anchor0, anchor1 actor.Anchor, params JointParams) *Joint {
	params.LocalPose0 = actor.NewPose(params.LocalPose0.Position, params.LocalPose0.Rotation)
	params.LocalPose1 = actor.NewPose(params.LocalPose1.Position, params.LocalPose1.Rotation)

	j := &Joint{
		Anchor0: anchor0,
		Anchor1: anchor1,
		Params:  params,
	}
	j.updateGlobalPoses()

	return j
}

// GlobalPoses returns the attachment frames in world space, as of the last solve
func (j *Joint) GlobalPoses() (actor.Pose, actor.Pose) {
	return j.globalPose0, j.globalPose1
}

func (j *Joint) updateGlobalPoses() {
	j.globalPose0 = j.Params.LocalPose0
	if body := j.Anchor0.Body(); body != nil {
		j.globalPose0 = body.Pose.TransformPose(j.globalPose0)
	}

	j.globalPose1 = j.Params.LocalPose1
	if body := j.Anchor1.Body(); body != nil {
		j.globalPose1 = body.Pose.TransformPose(j.globalPose1)
	}
}

func (j *Joint) SolvePosition(dt float64) {
	j.updateGlobalPoses()

	switch j.Params.Type {
	case JointFixed:
		j.solveFixed(dt)
	case JointHinge:
		j.solveHinge(dt)
	case JointSpherical:
		j.solveSpherical(dt)
	}

	j.solveAttachment(dt)
}

func (j *Joint) solveFixed(dt float64) {
	q := j.relativeRotation()
	omega := q.V.Mul(2)
	if q.W < 0 {
		omega = omega.Mul(-1)
	}

	actor.ApplyBodyPairCorrection(j.Anchor0, j.Anchor1, omega, j.Params.Compliance, dt, nil, nil, false)
}

func (j *Joint) solveHinge(dt float64) {
	// align axes
	a0 := j.globalPose0.Axis0()
	a1 := j.globalPose1.Axis0()
	actor.ApplyBodyPairCorrection(j.Anchor0, j.Anchor1, a0.Cross(a1), 0, dt, nil, nil, false)

	if limit := j.Params.SwingLimit; limit != nil {
		j.updateGlobalPoses()
		n := j.globalPose0.Axis0()
		b0 := j.globalPose0.Axis1()
		b1 := j.globalPose1.Axis1()
		actor.LimitAngle(j.Anchor0, j.Anchor1, n, b0, b1,
			limit.Min, limit.Max, limit.Compliance, dt, math.Pi)
	}
}

func (j *Joint) solveSpherical(dt float64) {
	if limit := j.Params.SwingLimit; limit != nil {
		j.updateGlobalPoses()
		a0 := j.globalPose0.Axis0()
		a1 := j.globalPose1.Axis0()
		n := a0.Cross(a1)
		// Parallel axes: no swing to limit
		if n.Len() > 0 {
			actor.LimitAngle(j.Anchor0, j.Anchor1, n.Normalize(), a0, a1,
				limit.Min, limit.Max, limit.Compliance, dt, math.Pi)
		}
	}

	if limit := j.Params.TwistLimit; limit != nil {
		j.updateGlobalPoses()
		n0 := j.globalPose0.Axis0()
		n1 := j.globalPose1.Axis0()

		sum := n0.Add(n1)
		if sum.Len() == 0 {
			return
		}
		n := sum.Normalize()

		a0 := j.globalPose0.Axis1()
		a0 = a0.Sub(n.Mul(n.Dot(a0))).Normalize()
		a1 := j.globalPose1.Axis1()
		a1 = a1.Sub(n.Mul(n.Dot(a1))).Normalize()

		// Near antiparallel axes flip the twist reference: only allow tiny corrections
		maxCorrection := 2 * math.Pi
		if n0.Dot(n1) <= twistGimbalThreshold {
			maxCorrection = dt
		}

		actor.LimitAngle(j.Anchor0, j.Anchor1, n, a0, a1,
			limit.Min, limit.Max, limit.Compliance, dt, maxCorrection)
	}
}

// solveAttachment pulls the attachment points together, or within the rest distance
func (j *Joint) solveAttachment(dt float64) {
	j.updateGlobalPoses()

	corr := j.globalPose1.Position.Sub(j.globalPose0.Position)
	if j.Params.Type == JointDistance {
		distance := corr.Len()
		if distance <= j.Params.Distance {
			return
		}
		corr = corr.Mul((distance - j.Params.Distance) / distance)
	}

	p0 := j.globalPose0.Position
	p1 := j.globalPose1.Position
	actor.ApplyBodyPairCorrection(j.Anchor0, j.Anchor1, corr, j.Params.Compliance, dt, &p0, &p1, false)
}

// SolveVelocity damps the relative motion of the two sides.
// The damping factor is clamped to 1 so it never reverses the relative velocity.
func (j *Joint) SolveVelocity(dt float64) {
	if j.Params.RotDamping > 0 {
		omega := j.Anchor1.AngularVelocity().Sub(j.Anchor0.AngularVelocity())
		omega = omega.Mul(math.Min(1, j.Params.RotDamping*dt))
		actor.ApplyBodyPairCorrection(j.Anchor0, j.Anchor1, omega, 0, dt, nil, nil, true)
	}

	if j.Params.PosDamping > 0 {
		j.updateGlobalPoses()
		p0 := j.globalPose0.Position
		p1 := j.globalPose1.Position

		vel := j.Anchor1.VelocityAt(p1).Sub(j.Anchor0.VelocityAt(p0))
		vel = vel.Mul(math.Min(1, j.Params.PosDamping*dt))
		actor.ApplyBodyPairCorrection(j.Anchor0, j.Anchor1, vel, 0, dt, &p0, &p1, true)
	}
}

var _ Constraint = (*Joint)(nil)

// relativeRotation is the rotation taking the frame of side 0 onto side 1, in world space
func (j *Joint) relativeRotation() mgl64.Quat {
	return j.globalPose1.Rotation.Mul(j.globalPose0.Rotation.Conjugate())
}
