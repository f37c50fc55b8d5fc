package plant

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// R3R1R3 is the 3-1-3 Euler angle DCM, i.e. R3(θ3)·R1(θ2)·R3(θ1).
func R3R1R3(θ1, θ2, θ3 float64) *mat.Dense {
	sθ1, cθ1 := math.Sincos(θ1)
	sθ2, cθ2 := math.Sincos(θ2)
	sθ3, cθ3 := math.Sincos(θ3)
	return mat.NewDense(3, 3, []float64{cθ3*cθ1 - sθ3*cθ2*sθ1, cθ3*sθ1 + sθ3*cθ2*cθ1, sθ3 * sθ2,
		-sθ3*cθ1 - cθ3*cθ2*sθ1, -sθ3*sθ1 + cθ3*cθ2*cθ1, cθ3 * sθ2,
		sθ2 * sθ1, -sθ2 * cθ1, cθ2})
}

// Rot313Vec rotates v by the 3-1-3 DCM.
// Rot313Vec(-u, -i, -Ω, v) converts v from the orbit frame (argument of latitude u) to the inertial frame.
func Rot313Vec(θ1, θ2, θ3 float64, v [3]float64) [3]float64 {
	return mxv33(R3R1R3(θ1, θ2, θ3), v)
}

func mxv33(m mat.Matrix, v [3]float64) (o [3]float64) {
	var r mat.VecDense
	r.MulVec(m, mat.NewVecDense(3, v[:]))
	for i := range o {
		o[i] = r.AtVec(i)
	}
	return
}
