package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	if math.Abs(n.Length()-1.0) > 1e-12 {
		t.Errorf("Normalized quaternion length should be 1, got %v", n.Length())
	}
}

func TestQuatNormalizeZero(t *testing.T) {
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", got)
	}
}

func TestQuatFromSlice(t *testing.T) {
	if got := QuatFromSlice([]float64{1, 2}); got != QuatIdentity() {
		t.Errorf("short slice should give identity, got %v", got)
	}
	want := Quat{X: 0.5, Y: 0.5, Z: 0.5, W: 0.5}
	if got := QuatFromSlice([]float64{0.5, 0.5, 0.5, 0.5}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQuatToMat4(t *testing.T) {
	// Identity quaternion should produce identity matrix
	m := QuatIdentity().ToMat4()

	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(m[i]-identity[i]) > 1e-12 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, math.Pi/2)

	expectedW := math.Cos(math.Pi / 4)
	expectedY := math.Sin(math.Pi / 4)

	if math.Abs(q.W-expectedW) > 1e-9 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(q.Y-expectedY) > 1e-9 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	quats := []Quat{
		QuatFromAxisAngle(Vec3{X: 1}, 0.3),
		QuatFromAxisAngle(Vec3{Y: 1}, math.Pi/2),
		QuatFromAxisAngle(Vec3{X: 1, Y: 1, Z: 1}.Normalize(), 2.1),
		{X: 0.1, Y: -0.7, Z: 0.2, W: 0.4},
	}
	p := Vec3{1.5, -2, 0.25}

	for i, q := range quats {
		direct := q.Rotate(p)
		viaMatrix := q.ToMat4().TransformPoint(p)
		if direct.Distance(viaMatrix) > 1e-9 {
			t.Errorf("quat %d: Rotate=%v matrix=%v", i, direct, viaMatrix)
		}
	}
}

func TestQuatMulComposesRotations(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{Z: 1}, math.Pi/2)
	b := QuatFromAxisAngle(Vec3{X: 1}, math.Pi/2)
	p := Vec3{0, 1, 0}

	combined := a.Mul(b).Rotate(p)
	sequential := a.Rotate(b.Rotate(p))
	if combined.Distance(sequential) > 1e-9 {
		t.Errorf("Mul: got %v, want %v", combined, sequential)
	}
}
