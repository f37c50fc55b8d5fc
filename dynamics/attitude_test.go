package dynamics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/gagandeepthapar/polaris-plant/integrator"
)

var diagJ = mat.NewDense(3, 3, []float64{10, 0, 0, 0, 20, 0, 0, 0, 30})

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("code did not panic")
		}
	}()
	f()
}

func randomQuaternion(r *rand.Rand) (q [4]float64) {
	for i := range q {
		q[i] = r.NormFloat64()
	}
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	for i := range q {
		q[i] /= n
	}
	return
}

func TestQuaternionRateOrthogonal(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		q := randomQuaternion(r)
		w := [3]float64{r.NormFloat64(), r.NormFloat64(), r.NormFloat64()}
		qdot := QuaternionRate(q, w)
		if d := floats.Dot(q[:], qdot[:]); !scalar.EqualWithinAbs(d, 0, 1e-12) {
			t.Fatalf("q.qdot = %e for q=%+v w=%+v", d, q, w)
		}
	}
}

func TestQuaternionRateIdentity(t *testing.T) {
	qdot := QuaternionRate([4]float64{0, 0, 0, 1}, [3]float64{1, -2, 3})
	if !floats.EqualApprox(qdot[:], []float64{0.5, -1, 1.5, 0}, 1e-15) {
		t.Fatalf("invalid rate from identity: %+v", qdot)
	}
}

func TestOmegaSkewSymmetric(t *testing.T) {
	O := Omega([3]float64{0.1, -0.4, 2})
	var sum mat.Dense
	sum.Add(O, O.T())
	if !mat.EqualApprox(&sum, mat.NewDense(4, 4, nil), 1e-15) {
		t.Fatalf("Omega is not skew symmetric:\n%v", mat.Formatted(O))
	}
}

func TestInvertInertia(t *testing.T) {
	inv, err := InvertInertia(diagJ)
	if err != nil {
		t.Fatal(err)
	}
	exp := mat.NewDense(3, 3, []float64{0.1, 0, 0, 0, 0.05, 0, 0, 0, 1 / 30.})
	if !mat.EqualApprox(inv, exp, 1e-15) {
		t.Fatalf("invalid inverse:\n%v", mat.Formatted(inv))
	}

	J := mat.NewDense(3, 3, []float64{12, 1.5, -0.3, 1.5, 18, 0.7, -0.3, 0.7, 25})
	inv, err = InvertInertia(J)
	if err != nil {
		t.Fatal(err)
	}
	var id mat.Dense
	id.Mul(J, inv)
	if !mat.EqualApprox(&id, mat.NewDiagDense(3, []float64{1, 1, 1}), 1e-12) {
		t.Fatalf("J*inv(J) is not identity:\n%v", mat.Formatted(&id))
	}
	var ref mat.Dense
	if err := ref.Inverse(J); err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(inv, &ref, 1e-12) {
		t.Fatal("cross product inverse differs from LU inverse")
	}
}

func TestInvertInertiaSingular(t *testing.T) {
	for _, J := range []*mat.Dense{
		mat.NewDense(3, 3, nil),
		mat.NewDense(3, 3, []float64{1, 2, 3, 2, 4, 6, 0, 0, 1}),
		mat.NewDense(3, 3, []float64{10, 0, 0, 0, 20, 0, 0, 0, 0}),
	} {
		if _, err := InvertInertia(J); !errors.Is(err, ErrSingularInertia) {
			t.Fatalf("expected singular inertia error, got %v", err)
		}
	}
	if _, err := InvertInertia(mat.NewDense(2, 2, []float64{1, 0, 0, 1})); !errors.Is(err, ErrSingularInertia) {
		t.Fatalf("expected dimension error, got %v", err)
	}
}

func TestCheckInertia(t *testing.T) {
	if err := CheckInertia(diagJ); err != nil {
		t.Fatal(err)
	}
	asym := mat.NewDense(3, 3, []float64{10, 1, 0, 0, 20, 0, 0, 0, 30})
	if err := CheckInertia(asym); !errors.Is(err, ErrInertiaNotPD) {
		t.Fatalf("asymmetric inertia accepted: %v", err)
	}
	negative := mat.NewDense(3, 3, []float64{-10, 0, 0, 0, 20, 0, 0, 0, 30})
	if err := CheckInertia(negative); !errors.Is(err, ErrInertiaNotPD) {
		t.Fatalf("negative inertia accepted: %v", err)
	}
	if _, err := NewRigidBody(mat.NewDense(3, 3, nil)); !errors.Is(err, ErrSingularInertia) {
		t.Fatalf("zero inertia accepted: %v", err)
	}
}

func TestEulerTorque(t *testing.T) {
	b, err := NewRigidBody(diagJ)
	if err != nil {
		t.Fatal(err)
	}
	// At rest, the angular acceleration is J^-1 tau.
	fDot := b.Func(0, []float64{0, 0, 0, 1, 0, 0, 0}, []float64{1, 2, 3})
	if !floats.EqualApprox(fDot, []float64{0, 0, 0, 0, 0.1, 0.1, 0.1}, 1e-15) {
		t.Fatalf("invalid rates at rest: %+v", fDot)
	}
	// Spinning about a principal axis without torque is an equilibrium.
	fDot = b.Func(0, []float64{0, 0, 0, 1, 0, 0, 0.5}, nil)
	if !floats.EqualApprox(fDot[4:], []float64{0, 0, 0}, 1e-15) {
		t.Fatalf("principal axis spin should not accelerate: %+v", fDot)
	}
}

func TestRigidBodyInputMatchesStatic(t *testing.T) {
	b, _ := NewRigidBody(diagJ)
	state := []float64{0.1, 0.2, 0.3, math.Sqrt(1 - 0.14), 0.05, -0.1, 0.2}
	tau := []float64{0.01, 0, -0.02}
	inputs := append(append([]float64{}, tau...), diagJ.RawMatrix().Data...)
	if !floats.EqualApprox(b.Func(0, state, tau), RigidBodyInput{}.Func(0, state, inputs), 1e-15) {
		t.Fatal("static and input inertia derivatives differ")
	}
	assertPanic(t, func() { RigidBodyInput{}.Func(0, state, tau) })
	singular := append(append([]float64{}, tau...), make([]float64, 9)...)
	assertPanic(t, func() { RigidBodyInput{}.Func(0, state, singular) })
	assertPanic(t, func() { b.Func(0, state[:6], tau) })
}

func momentum(state []float64) float64 {
	return math.Sqrt(math.Pow(10*state[4], 2) + math.Pow(20*state[5], 2) + math.Pow(30*state[6], 2))
}

func TestTorqueFreeConservation(t *testing.T) {
	b, _ := NewRigidBody(diagJ)
	for _, tc := range []struct {
		integrator integrator.Integrator
		tol        float64
	}{
		{integrator.NewRK5(0.1), 1e-8},
		{integrator.NewRK4(0.1), 1e-6},
		{integrator.NewRK2(0.1), 1e-4},
	} {
		state := []float64{0, 0, 0, 1, 0.1, -0.2, 0.3}
		h0 := momentum(state)
		for i := 0; i < 1000; i++ {
			state = tc.integrator.Integrate(b, 0, state, nil)
		}
		if h := momentum(state); !scalar.EqualWithinRel(h, h0, tc.tol) {
			t.Fatalf("|Jw| drifted from %f to %f with step %f", h0, h, tc.integrator.StepSize())
		}
		if n := floats.Norm(state[:4], 2); !scalar.EqualWithinAbs(n, 1, 1e-3) {
			t.Fatalf("quaternion norm drifted to %f", n)
		}
	}
}
