package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}

// =============================================================================
// Plane Tests
// =============================================================================

func TestPointPlaneDistance(t *testing.T) {
	tests := []struct {
		name  string
		point mgl64.Vec3
		want  float64
	}{
		{"in front", mgl64.Vec3{5, 3, -2}, 2},
		{"on the plane", mgl64.Vec3{0, 1, 7}, 0},
		{"behind", mgl64.Vec3{0, -1, 0}, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointPlaneDistance(tt.point, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0})
			if !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("PointPlaneDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClipPointByPlane(t *testing.T) {
	// Inward normal -X through x = 1: points beyond x = 1 are clipped
	normal := mgl64.Vec3{-1, 0, 0}
	planePoint := mgl64.Vec3{1, 0, 0}

	tests := []struct {
		name  string
		point mgl64.Vec3
		want  mgl64.Vec3
	}{
		{"outside is projected", mgl64.Vec3{3, 2, 1}, mgl64.Vec3{1, 2, 1}},
		{"inside is unchanged", mgl64.Vec3{0.5, 2, 1}, mgl64.Vec3{0.5, 2, 1}},
		{"on the plane is unchanged", mgl64.Vec3{1, -4, 0}, mgl64.Vec3{1, -4, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipPointByPlane(tt.point, normal, planePoint)
			if !vec3AlmostEqual(got, tt.want, 1e-12) {
				t.Errorf("ClipPointByPlane() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSphereIntersectsPlane(t *testing.T) {
	normal := mgl64.Vec3{0, 1, 0}

	t.Run("cut", func(t *testing.T) {
		section, ok := SphereIntersectsPlane(mgl64.Vec3{2, 0.6, 0}, 1, normal, mgl64.Vec3{})
		if !ok {
			t.Fatal("expected an intersection")
		}
		if !vec3AlmostEqual(section.Center, mgl64.Vec3{2, 0, 0}, 1e-12) {
			t.Errorf("Center = %v, want {2 0 0}", section.Center)
		}
		if !almostEqual(section.Radius, 0.8, 1e-12) {
			t.Errorf("Radius = %v, want 0.8", section.Radius)
		}
		if !almostEqual(section.Depth, 0.4, 1e-12) {
			t.Errorf("Depth = %v, want 0.4", section.Depth)
		}
	})

	t.Run("below the plane", func(t *testing.T) {
		section, ok := SphereIntersectsPlane(mgl64.Vec3{0, -0.6, 0}, 1, normal, mgl64.Vec3{})
		if !ok {
			t.Fatal("expected an intersection")
		}
		if !almostEqual(section.Depth, 0.4, 1e-12) {
			t.Errorf("Depth = %v, want 0.4", section.Depth)
		}
	})

	t.Run("tangent", func(t *testing.T) {
		section, ok := SphereIntersectsPlane(mgl64.Vec3{0, 1, 0}, 1, normal, mgl64.Vec3{})
		if !ok {
			t.Fatal("a tangent sphere touches the plane")
		}
		if section.Radius != 0 || section.Depth != 0 {
			t.Errorf("section = %+v, want a point", section)
		}
	})

	t.Run("apart", func(t *testing.T) {
		if _, ok := SphereIntersectsPlane(mgl64.Vec3{0, 1.5, 0}, 1, normal, mgl64.Vec3{}); ok {
			t.Error("expected no intersection")
		}
	})
}

func TestHalfProjection(t *testing.T) {
	e0 := mgl64.Vec3{1, 0, 0}
	e1 := mgl64.Vec3{0, 2, 0}
	e2 := mgl64.Vec3{0, 0, 3}

	tests := []struct {
		name string
		dir  mgl64.Vec3
		want float64
	}{
		{"X", mgl64.Vec3{1, 0, 0}, 1},
		{"-Y", mgl64.Vec3{0, -1, 0}, 2},
		{"Z", mgl64.Vec3{0, 0, 1}, 3},
		{"diagonal", mgl64.Vec3{1, 1, 0}.Normalize(), 3 / math.Sqrt2},
		{"mixed signs", mgl64.Vec3{1, -1, 1}.Normalize(), 6 / math.Sqrt(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HalfProjection(tt.dir, e0, e1, e2)
			if !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("HalfProjection() = %v, want %v", got, tt.want)
			}
		})
	}
}
