package dynamics

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingularInertia is returned when the inertia tensor cannot be inverted.
	ErrSingularInertia = errors.New("singular inertia tensor")
	// ErrInertiaNotPD is returned when the inertia tensor is not symmetric positive definite.
	ErrInertiaNotPD = errors.New("inertia tensor is not symmetric positive definite")
)

// singularTol is the determinant threshold, relative to the product of the column norms.
const singularTol = 1e-12

// Omega returns the 4x4 matrix such that qdot = 1/2 * Omega(w) * q for a scalar last quaternion.
func Omega(w [3]float64) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		0, w[2], -w[1], w[0],
		-w[2], 0, w[0], w[1],
		w[1], -w[0], 0, w[2],
		-w[0], -w[1], -w[2], 0,
	})
}

// QuaternionRate returns the time derivative of q when rotating at w (body frame, rad/s).
func QuaternionRate(q [4]float64, w [3]float64) (qdot [4]float64) {
	rate := mat.NewVecDense(4, nil)
	rate.MulVec(Omega(w), mat.NewVecDense(4, q[:]))
	for i := range qdot {
		qdot[i] = 0.5 * rate.AtVec(i)
	}
	return
}

// InvertInertia returns the inverse of the 3x3 matrix J from the cross products of its columns.
func InvertInertia(J mat.Matrix) (*mat.Dense, error) {
	if r, c := J.Dims(); r != 3 || c != 3 {
		return nil, errors.Wrapf(ErrSingularInertia, "inertia must be 3x3, got %dx%d", r, c)
	}
	a := column(J, 0)
	b := column(J, 1)
	c := column(J, 2)
	bc := cross(b, c)
	det := dot(a, bc)
	if scale := norm(a) * norm(b) * norm(c); scale == 0 || math.Abs(det) <= singularTol*scale {
		return nil, errors.Wrapf(ErrSingularInertia, "determinant %e", det)
	}
	ca := cross(c, a)
	ab := cross(a, b)
	inv := mat.NewDense(3, 3, nil)
	for i, row := range [3][3]float64{bc, ca, ab} {
		for j := range row {
			inv.Set(i, j, row[j]/det)
		}
	}
	return inv, nil
}

// CheckInertia returns an error if J is not a usable inertia tensor.
func CheckInertia(J mat.Matrix) error {
	if _, err := InvertInertia(J); err != nil {
		return err
	}
	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			if math.Abs(J.At(i, j)-J.At(j, i)) > 1e-9*(math.Abs(J.At(i, j))+math.Abs(J.At(j, i))) {
				return errors.Wrapf(ErrInertiaNotPD, "J[%d][%d]=%f but J[%d][%d]=%f", i, j, J.At(i, j), j, i, J.At(j, i))
			}
			sym.SetSym(i, j, J.At(i, j))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return errors.Wrap(ErrInertiaNotPD, "cholesky factorization failed")
	}
	return nil
}

// RigidBody is the attitude derivative for a rigid body with a fixed inertia tensor.
// The state is [q(4); w(3)] and the inputs are the body torque (3), which may be omitted.
type RigidBody struct {
	J, JInv *mat.Dense
}

// NewRigidBody returns a RigidBody after validating the inertia tensor.
func NewRigidBody(J mat.Matrix) (*RigidBody, error) {
	if err := CheckInertia(J); err != nil {
		return nil, err
	}
	inv, _ := InvertInertia(J)
	return &RigidBody{J: mat.DenseCopyOf(J), JInv: inv}, nil
}

// Func implements the integrator.Derivative interface.
func (b *RigidBody) Func(t float64, state, inputs []float64) []float64 {
	return eulerRates(b.J, b.JInv, state, torque(inputs))
}

// RigidBodyInput is the attitude derivative where the inertia tensor is threaded through the inputs.
// The inputs are the body torque (3) followed by J in row major order (9).
// A singular inertia panics as it is a configuration error.
type RigidBodyInput struct{}

// Func implements the integrator.Derivative interface.
func (RigidBodyInput) Func(t float64, state, inputs []float64) []float64 {
	if len(inputs) != 12 {
		panic(fmt.Errorf("expected 12 inputs (torque and inertia), got %d", len(inputs)))
	}
	J := mat.NewDense(3, 3, append([]float64(nil), inputs[3:]...))
	inv, err := InvertInertia(J)
	if err != nil {
		panic(err)
	}
	return eulerRates(J, inv, state, torque(inputs))
}

// eulerRates returns [qdot; wdot] with wdot = J^-1 (tau - w x Jw).
func eulerRates(J, JInv mat.Matrix, state []float64, tau [3]float64) []float64 {
	if len(state) != 7 {
		panic(fmt.Errorf("attitude state must have 7 components, got %d", len(state)))
	}
	q := [4]float64{state[0], state[1], state[2], state[3]}
	w := [3]float64{state[4], state[5], state[6]}

	Jw := mat.NewVecDense(3, nil)
	Jw.MulVec(J, mat.NewVecDense(3, w[:]))
	gyro := cross(w, [3]float64{Jw.AtVec(0), Jw.AtVec(1), Jw.AtVec(2)})
	net := mat.NewVecDense(3, []float64{tau[0] - gyro[0], tau[1] - gyro[1], tau[2] - gyro[2]})
	wdot := mat.NewVecDense(3, nil)
	wdot.MulVec(JInv, net)

	qdot := QuaternionRate(q, w)
	return []float64{qdot[0], qdot[1], qdot[2], qdot[3], wdot.AtVec(0), wdot.AtVec(1), wdot.AtVec(2)}
}

func torque(inputs []float64) (tau [3]float64) {
	if len(inputs) >= 3 {
		copy(tau[:], inputs[:3])
	}
	return
}
