package constraint

// Constraint is solved once per substep, first on poses, then on velocities
type Constraint interface {
	SolvePosition(dt float64)
	SolveVelocity(dt float64)
}

// Material compliances (inverse stiffness, m/N), 0 is perfectly rigid
const (
	RIGID_COMPLIANCE    = 0.0
	CONCRETE_COMPLIANCE = 0.04e-9
	WOOD_COMPLIANCE     = 0.16e-9
	LEATHER_COMPLIANCE  = 14e-8
	TENDON_COMPLIANCE   = 0.2e-7
	RUBBER_COMPLIANCE   = 1e-6
	MUSCLE_COMPLIANCE   = 0.2e-3
	FAT_COMPLIANCE      = 1e-3
)

var materialCompliances = map[string]float64{
	"rigid":    RIGID_COMPLIANCE,
	"concrete": CONCRETE_COMPLIANCE,
	"wood":     WOOD_COMPLIANCE,
	"leather":  LEATHER_COMPLIANCE,
	"tendon":   TENDON_COMPLIANCE,
	"rubber":   RUBBER_COMPLIANCE,
	"muscle":   MUSCLE_COMPLIANCE,
	"fat":      FAT_COMPLIANCE,
}

// MaterialCompliance returns the compliance of a material by its lowercase name
func MaterialCompliance(name string) (float64, bool) {
	compliance, ok := materialCompliances[name]
	return compliance, ok
}
