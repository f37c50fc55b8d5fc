package plant

import "math"

// RNorm returns the norm of the radius vector.
func (s EphemerisSignal) RNorm() float64 {
	return norm(s.R)
}

// VNorm returns the norm of the velocity vector.
func (s EphemerisSignal) VNorm() float64 {
	return norm(s.V)
}

// Energyξ returns the specific mechanical energy ξ in J/kg.
func (s EphemerisSignal) Energyξ(μ float64) float64 {
	return math.Pow(s.VNorm(), 2)/2 - μ/s.RNorm()
}

// H returns the orbital angular momentum vector.
func (s EphemerisSignal) H() [3]float64 {
	return cross(s.R, s.V)
}

// HNorm returns the norm of orbital angular momentum.
func (s EphemerisSignal) HNorm() float64 {
	return norm(s.H())
}

// SemiMajorAxis returns the semi major axis in meters from the vis-viva equation.
func (s EphemerisSignal) SemiMajorAxis(μ float64) float64 {
	return -μ / (2 * s.Energyξ(μ))
}

// Altitude returns the height above the equatorial radius of the body.
func (s EphemerisSignal) Altitude(body CelestialObject) float64 {
	return s.RNorm() - body.Radius
}

// CircularOrbit returns the ephemeris of an equatorial circular orbit at the provided altitude.
func CircularOrbit(body CelestialObject, altitude float64) EphemerisSignal {
	a := body.Radius + altitude
	return EphemerisSignal{R: [3]float64{a, 0, 0}, V: [3]float64{0, math.Sqrt(body.GM() / a), 0}}
}

// InclinedCircularOrbit returns the ephemeris of a circular orbit of inclination i, right ascension of the ascending node Ω,
// at the argument of latitude u. Angles are in radians.
func InclinedCircularOrbit(body CelestialObject, altitude, i, Ω, u float64) EphemerisSignal {
	eq := CircularOrbit(body, altitude)
	return EphemerisSignal{R: Rot313Vec(-u, -i, -Ω, eq.R), V: Rot313Vec(-u, -i, -Ω, eq.V)}
}
