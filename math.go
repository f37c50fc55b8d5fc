package plant

import "math"

// norm returns the norm of a 3x1 vector.
func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// dot performs the inner product.
func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// cross performs the cross product.
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]} // Cross product R x V.
}

// quatMul returns p*q for scalar last quaternions.
func quatMul(p, q [4]float64) [4]float64 {
	pv := [3]float64{p[0], p[1], p[2]}
	qv := [3]float64{q[0], q[1], q[2]}
	c := cross(pv, qv)
	var r [4]float64
	for i := 0; i < 3; i++ {
		r[i] = p[3]*qv[i] + q[3]*pv[i] + c[i]
	}
	r[3] = p[3]*q[3] - dot(pv, qv)
	return r
}

// finite returns whether none of the values is NaN or infinite.
func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
