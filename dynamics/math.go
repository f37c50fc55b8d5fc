package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

func column(m mat.Matrix, j int) (c [3]float64) {
	for i := range c {
		c[i] = m.At(i, j)
	}
	return
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func norm(v [3]float64) float64 {
	return math.Sqrt(dot(v, v))
}
