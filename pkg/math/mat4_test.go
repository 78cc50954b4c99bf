package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
	if !m.IsIdentity() {
		t.Error("IsIdentity should be true")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestMulOrder(t *testing.T) {
	// Translate * Scale scales first, then translates.
	m := Translate(10, 0, 0).Mul(Scale(2, 2, 2))
	got := m.TransformPoint(Vec3{1, 1, 1})
	want := Vec3{12, 2, 2}
	if got != want {
		t.Errorf("T*S: got %v, want %v", got, want)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30).Mul(Scale(2, 2, 2))
	got := m.TransformDirection(Vec3{1, 0, 0})
	if got != (Vec3{2, 0, 0}) {
		t.Errorf("TransformDirection: got %v, want (2, 0, 0)", got)
	}
}

func TestRotateX90(t *testing.T) {
	m := RotateX(math.Pi / 2)
	result := m.TransformPoint(Vec3{0, 1, 0})

	// +Y maps onto +Z
	if math.Abs(result.X) > 1e-12 || math.Abs(result.Y) > 1e-12 || math.Abs(result.Z-1) > 1e-12 {
		t.Errorf("RotateX 90: got %v, want (0, 0, 1)", result)
	}
}

func TestMat4FromSlice(t *testing.T) {
	if _, ok := Mat4FromSlice([]float64{1, 2, 3}); ok {
		t.Error("expected short slice to be rejected")
	}
	s := make([]float64, 16)
	for i := range s {
		s[i] = float64(i)
	}
	m, ok := Mat4FromSlice(s)
	if !ok {
		t.Fatal("expected 16 element slice to be accepted")
	}
	if m[12] != 12 || m[15] != 15 {
		t.Errorf("unexpected matrix %v", m)
	}
}

func TestDeterminant3x3(t *testing.T) {
	if d := Scale(2, 3, 4).Determinant3x3(); d != 24 {
		t.Errorf("det = %v, want 24", d)
	}
	if d := Scale(-1, 1, 1).Determinant3x3(); d >= 0 {
		t.Errorf("mirror det = %v, want negative", d)
	}
}

// TestFromTRSMatchesExplicitSteps cross-checks the composed matrix against
// scaling, rotating and translating the point step by step.
func TestFromTRSMatchesExplicitSteps(t *testing.T) {
	cases := []struct {
		name string
		t    Vec3
		r    Quat
		s    Vec3
	}{
		{"identity", Vec3{}, QuatIdentity(), Vec3{1, 1, 1}},
		{"translate only", Vec3{3, -4, 5}, QuatIdentity(), Vec3{1, 1, 1}},
		{"rotate y", Vec3{}, QuatFromAxisAngle(Vec3{Y: 1}, math.Pi/3), Vec3{1, 1, 1}},
		{"non uniform", Vec3{1, 2, 3}, QuatFromAxisAngle(Vec3{X: 1, Y: 2, Z: -1}.Normalize(), 1.2), Vec3{2, 0.5, 3}},
		{"mirror", Vec3{-7, 0, 1}, QuatFromAxisAngle(Vec3{Z: 1}, -0.4), Vec3{-1, 1, 2}},
	}
	points := []Vec3{{0, 0, 0}, {1, 0, 0}, {0.5, -2, 3.25}, {-10, 4, 8}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := FromTRS(tc.t, tc.r, tc.s)
			for _, p := range points {
				viaMatrix := m.TransformPoint(p)
				stepwise := tc.r.Rotate(p.Mul(tc.s)).Add(tc.t)
				if viaMatrix.Distance(stepwise) > 1e-9 {
					t.Errorf("point %v: matrix %v, stepwise %v", p, viaMatrix, stepwise)
				}
			}
		})
	}
}
