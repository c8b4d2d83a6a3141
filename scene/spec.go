// Package scene describes worlds in YAML files and binds their bodies to host entities.
package scene

import (
	"errors"
	"fmt"
	"os"

	"github.com/akmonengine/xpbd"
	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidScene is returned when a scene description cannot be simulated
	ErrInvalidScene = errors.New("invalid scene")
	// ErrUnknownBody is returned when a joint references a missing body
	ErrUnknownBody = errors.New("unknown body")
)

// Spec is the root of a scene file
type Spec struct {
	World  WorldSpec   `yaml:"world"`
	Bodies []BodySpec  `yaml:"bodies"`
	Joints []JointSpec `yaml:"joints"`
}

// WorldSpec holds the world parameters. Zero values fall back to xpbd.DefaultConfig.
type WorldSpec struct {
	TimeStep        float64     `yaml:"time_step"`
	Substeps        int         `yaml:"substeps"`
	FloorLevel      float64     `yaml:"floor_level"`
	Gravity         *mgl64.Vec3 `yaml:"gravity"`
	CollisionPasses int         `yaml:"collision_passes"`
	Friction        *float64    `yaml:"friction"`
	// FrictionScript is a tengo script assigning the `friction` variable, see ScriptFriction
	FrictionScript string `yaml:"friction_script"`
}

// BodySpec describes a body. Exactly one of Box and Sphere must be set.
type BodySpec struct {
	Name     string     `yaml:"name"`
	Position mgl64.Vec3 `yaml:"position"`
	// Rotation holds XYZ Euler angles, in degrees
	Rotation        mgl64.Vec3  `yaml:"rotation"`
	Velocity        mgl64.Vec3  `yaml:"velocity"`
	AngularVelocity mgl64.Vec3  `yaml:"angular_velocity"`
	Box             *BoxSpec    `yaml:"box"`
	Sphere          *SphereSpec `yaml:"sphere"`
}

// BoxSpec gives either a mass or a density
type BoxSpec struct {
	Size    mgl64.Vec3 `yaml:"size"`
	Mass    float64    `yaml:"mass"`
	Density float64    `yaml:"density"`
	Drag    mgl64.Vec3 `yaml:"drag"`
}

// SphereSpec gives either a mass or a density
type SphereSpec struct {
	Radius  float64 `yaml:"radius"`
	Mass    float64 `yaml:"mass"`
	Density float64 `yaml:"density"`
	Drag    float64 `yaml:"drag"`
}

// JointSpec references bodies by name, an empty name anchors the side to the world
type JointSpec struct {
	Type           string     `yaml:"type"`
	Body0          string     `yaml:"body0"`
	Body1          string     `yaml:"body1"`
	LocalPosition0 mgl64.Vec3 `yaml:"local_position0"`
	LocalRotation0 mgl64.Vec3 `yaml:"local_rotation0"`
	LocalPosition1 mgl64.Vec3 `yaml:"local_position1"`
	LocalRotation1 mgl64.Vec3 `yaml:"local_rotation1"`
	Compliance     Compliance `yaml:"compliance"`
	RotDamping     float64    `yaml:"rot_damping"`
	PosDamping     float64    `yaml:"pos_damping"`
	Distance       float64    `yaml:"distance"`
	Swing          *LimitSpec `yaml:"swing"`
	Twist          *LimitSpec `yaml:"twist"`
}

// LimitSpec holds an angle range in degrees
type LimitSpec struct {
	Min        float64    `yaml:"min"`
	Max        float64    `yaml:"max"`
	Compliance Compliance `yaml:"compliance"`
}

// Compliance is written either as a number (m/N) or as a material name, e.g. `rubber`
type Compliance float64

func (c *Compliance) UnmarshalYAML(value *yaml.Node) error {
	var number float64
	if err := value.Decode(&number); err == nil {
		*c = Compliance(number)
		return nil
	}

	var material string
	if err := value.Decode(&material); err != nil {
		return err
	}
	compliance, ok := constraint.MaterialCompliance(material)
	if !ok {
		return fmt.Errorf("%w: unknown material %q", ErrInvalidScene, material)
	}
	*c = Compliance(compliance)

	return nil
}

// Parse decodes a scene description
func Parse(data []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("decode scene: %w", err)
	}

	return spec, nil
}

// Load reads and decodes a scene file
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, err
	}

	spec, err := Parse(data)
	if err != nil {
		return Spec{}, fmt.Errorf("%s: %w", path, err)
	}

	return spec, nil
}

// Scene is a built world with its named bodies
type Scene struct {
	World  *xpbd.World
	Joints []*constraint.Joint

	bodies map[string]*actor.RigidBody
	names  []string
}

// Body returns a body by name
func (s *Scene) Body(name string) (*actor.RigidBody, bool) {
	body, ok := s.bodies[name]
	return body, ok
}

// Names returns the body names, in world order
func (s *Scene) Names() []string {
	return s.names
}

// Config converts the world parameters, filling the zero values with the defaults
func (w WorldSpec) Config() (xpbd.Config, error) {
	config := xpbd.DefaultConfig()
	if w.TimeStep != 0 {
		config.TimeStep = w.TimeStep
	}
	if w.Substeps != 0 {
		config.Substeps = w.Substeps
	}
	if w.CollisionPasses != 0 {
		config.CollisionPasses = w.CollisionPasses
	}
	if w.Gravity != nil {
		config.Gravity = *w.Gravity
	}
	config.FloorLevel = w.FloorLevel

	base := 0.5
	if w.Friction != nil {
		base = *w.Friction
	}
	config.Friction = xpbd.ConstantFriction(base)
	if w.FrictionScript != "" {
		friction, err := NewScriptFriction(w.FrictionScript, base)
		if err != nil {
			return xpbd.Config{}, err
		}
		config.Friction = friction
	}

	if err := config.Validate(); err != nil {
		return xpbd.Config{}, err
	}

	return config, nil
}

// Build validates the description and creates the world
func (spec Spec) Build() (*Scene, error) {
	config, err := spec.World.Config()
	if err != nil {
		return nil, err
	}

	s := &Scene{
		World:  xpbd.NewWorld(config),
		bodies: make(map[string]*actor.RigidBody, len(spec.Bodies)),
		names:  make([]string, 0, len(spec.Bodies)),
	}

	for i, b := range spec.Bodies {
		if b.Name == "" {
			return nil, fmt.Errorf("%w: body %d has no name", ErrInvalidScene, i)
		}
		if _, exists := s.bodies[b.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate body %q", ErrInvalidScene, b.Name)
		}

		collider, err := b.collider()
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}

		body := actor.NewRigidBody(actor.NewPose(b.Position, eulerToQuat(b.Rotation)), collider)
		body.Velocity = b.Velocity
		body.AngularVelocity = b.AngularVelocity

		s.World.AddBody(body)
		s.bodies[b.Name] = body
		s.names = append(s.names, b.Name)
	}

	for i, j := range spec.Joints {
		joint, err := s.buildJoint(j)
		if err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
		s.World.AddJoint(joint)
		s.Joints = append(s.Joints, joint)
	}

	return s, nil
}

func (b BodySpec) collider() (actor.Collider, error) {
	switch {
	case b.Box != nil && b.Sphere != nil:
		return nil, fmt.Errorf("%w: both box and sphere are set", ErrInvalidScene)

	case b.Box != nil:
		size := b.Box.Size
		if size.X() <= 0 || size.Y() <= 0 || size.Z() <= 0 {
			return nil, fmt.Errorf("%w: box size must be positive, got %v", ErrInvalidScene, size)
		}
		mass := b.Box.Mass
		if mass == 0 {
			mass = actor.BoxMass(size, b.Box.Density)
		}
		if mass <= 0 {
			return nil, fmt.Errorf("%w: box mass must be positive, got %v", ErrInvalidScene, mass)
		}
		return actor.NewBox(size, mass, b.Box.Drag), nil

	case b.Sphere != nil:
		if b.Sphere.Radius <= 0 {
			return nil, fmt.Errorf("%w: sphere radius must be positive, got %v", ErrInvalidScene, b.Sphere.Radius)
		}
		mass := b.Sphere.Mass
		if mass == 0 {
			mass = actor.SphereMass(b.Sphere.Radius, b.Sphere.Density)
		}
		if mass <= 0 {
			return nil, fmt.Errorf("%w: sphere mass must be positive, got %v", ErrInvalidScene, mass)
		}
		drag := b.Sphere.Drag
		return actor.NewSphere(b.Sphere.Radius, mass, mgl64.Vec3{drag, drag, drag}), nil

	default:
		return nil, fmt.Errorf("%w: no collider", ErrInvalidScene)
	}
}

func (s *Scene) anchor(name string) (actor.Anchor, error) {
	if name == "" {
		return actor.FixedToWorld, nil
	}
	body, ok := s.bodies[name]
	if !ok {
		return actor.Anchor{}, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}

	return actor.Attached(body), nil
}

func (s *Scene) buildJoint(j JointSpec) (*constraint.Joint, error) {
	jointType, err := parseJointType(j.Type)
	if err != nil {
		return nil, err
	}
	anchor0, err := s.anchor(j.Body0)
	if err != nil {
		return nil, err
	}
	anchor1, err := s.anchor(j.Body1)
	if err != nil {
		return nil, err
	}
	if jointType == constraint.JointDistance && j.Distance < 0 {
		return nil, fmt.Errorf("%w: negative rest distance %v", ErrInvalidScene, j.Distance)
	}

	params := constraint.JointParams{
		Type:       jointType,
		LocalPose0: actor.NewPose(j.LocalPosition0, eulerToQuat(j.LocalRotation0)),
		LocalPose1: actor.NewPose(j.LocalPosition1, eulerToQuat(j.LocalRotation1)),
		Compliance: float64(j.Compliance),
		RotDamping: j.RotDamping,
		PosDamping: j.PosDamping,
		Distance:   j.Distance,
		SwingLimit: j.Swing.limit(),
		TwistLimit: j.Twist.limit(),
	}

	return constraint.NewJoint(anchor0, anchor1, params), nil
}

func parseJointType(name string) (constraint.JointType, error) {
	for _, t := range []constraint.JointType{
		constraint.JointFixed,
		constraint.JointHinge,
		constraint.JointSpherical,
		constraint.JointDistance,
	} {
		if t.String() == name {
			return t, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown joint type %q", ErrInvalidScene, name)
}

func (l *LimitSpec) limit() *constraint.AngleLimit {
	if l == nil {
		return nil
	}

	return &constraint.AngleLimit{
		Min:        mgl64.DegToRad(l.Min),
		Max:        mgl64.DegToRad(l.Max),
		Compliance: float64(l.Compliance),
	}
}

func eulerToQuat(degrees mgl64.Vec3) mgl64.Quat {
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(degrees.X()),
		mgl64.DegToRad(degrees.Y()),
		mgl64.DegToRad(degrees.Z()),
		mgl64.XYZ,
	)
}
