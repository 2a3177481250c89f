package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vec3Near(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestVec3Dot(t *testing.T) {
	if got := V3(1, 2, 3).Dot(V3(4, 5, 6)); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
}

func TestVec3Cross(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want Vec3
	}{
		{"x cross y", V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)},
		{"y cross z", V3(0, 1, 0), V3(0, 0, 1), V3(1, 0, 0)},
		{"z cross x", V3(0, 0, 1), V3(1, 0, 0), V3(0, 1, 0)},
		{"parallel", V3(2, 0, 0), V3(5, 0, 0), V3(0, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Cross(tc.b); !vec3Near(got, tc.want) {
				t.Errorf("%v x %v = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestVec3Normalize(t *testing.T) {
	n := V3(3, 0, 4).Normalize()
	if !vec3Near(n, V3(0.6, 0, 0.8)) {
		t.Errorf("Normalize = %v, want (0.6, 0, 0.8)", n)
	}
	if math.Abs(n.Len()-1) > eps {
		t.Errorf("normalized length = %v, want 1", n.Len())
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	// Zero-length input must come back unchanged rather than as NaNs.
	n := Zero3().Normalize()
	if n != Zero3() {
		t.Errorf("Normalize(zero) = %v, want zero vector", n)
	}
	if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
		t.Error("Normalize(zero) produced NaN")
	}
}

func TestVec3ClampMax(t *testing.T) {
	got := V3(0.5, 1.5, -2).ClampMax(1)
	want := V3(0.5, 1, -2)
	if got != want {
		t.Errorf("ClampMax = %v, want %v", got, want)
	}
}

func TestVec2Cross(t *testing.T) {
	// Counter-clockwise turn is positive.
	if got := V2(1, 0).Cross(V2(0, 1)); got != 1 {
		t.Errorf("Cross ccw = %v, want 1", got)
	}
	if got := V2(0, 1).Cross(V2(1, 0)); got != -1 {
		t.Errorf("Cross cw = %v, want -1", got)
	}
}

func TestVec4Vec3(t *testing.T) {
	v := V4FromV3(V3(1, 2, 3), 7)
	if v.W != 7 {
		t.Errorf("W = %v, want 7", v.W)
	}
	if v.Vec3() != V3(1, 2, 3) {
		t.Errorf("Vec3() = %v", v.Vec3())
	}
}
