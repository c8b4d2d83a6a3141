package scene

import (
	"fmt"
	"log"

	"github.com/akmonengine/xpbd/actor"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
)

// ScriptFriction computes the friction coefficient of each contact with a tengo script.
//
// The script reads the globals depth, tangent_speed, normal_y and floor, and assigns
// the global friction. friction holds the base coefficient when the script starts:
//
//	if floor && normal_y > 0.9 { friction = 0.8 }
//
// Globals are predeclared, so the script assigns them with = instead of :=.
type ScriptFriction struct {
	Base   float64
	Logger *log.Logger

	compiled *tengo.Compiled
	failed   bool
}

// NewScriptFriction compiles the script source
func NewScriptFriction(src string, base float64) (*ScriptFriction, error) {
	script := tengo.NewScript([]byte(src))
	_ = script.Add("depth", 0.0)
	_ = script.Add("tangent_speed", 0.0)
	_ = script.Add("normal_y", 0.0)
	_ = script.Add("floor", false)
	_ = script.Add("friction", base)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile friction script: %w", err)
	}

	return &ScriptFriction{
		Base:     base,
		Logger:   log.Default(),
		compiled: compiled,
	}, nil
}

// Friction runs the script for one contact. A failing script yields the base coefficient.
func (s *ScriptFriction) Friction(_, body1 actor.Anchor, _, normal mgl64.Vec3, depth float64, _ mgl64.Vec3, tangentSpeed float64) float64 {
	friction, err := s.run(depth, tangentSpeed, normal.Y(), body1.IsWorld())
	if err != nil {
		if !s.failed && s.Logger != nil {
			s.Logger.Printf("friction script: %v", err)
		}
		s.failed = true
		return s.Base
	}

	return friction
}

func (s *ScriptFriction) run(depth, tangentSpeed, normalY float64, floor bool) (float64, error) {
	if err := s.compiled.Set("depth", depth); err != nil {
		return 0, err
	}
	if err := s.compiled.Set("tangent_speed", tangentSpeed); err != nil {
		return 0, err
	}
	if err := s.compiled.Set("normal_y", normalY); err != nil {
		return 0, err
	}
	if err := s.compiled.Set("floor", floor); err != nil {
		return 0, err
	}
	if err := s.compiled.Set("friction", s.Base); err != nil {
		return 0, err
	}
	if err := s.compiled.Run(); err != nil {
		return 0, err
	}

	friction := s.compiled.Get("friction").Float()
	if friction < 0 {
		return 0, fmt.Errorf("negative friction %v", friction)
	}

	return friction, nil
}
