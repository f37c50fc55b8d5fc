package plant

import (
	"strings"

	"github.com/pkg/errors"
)

// CelestialObject defines the central body of the two body problem.
type CelestialObject struct {
	Name   string
	Radius float64 // Equatorial radius in meters.
	μ      float64 // Gravitational parameter in m^3/s^2.
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c CelestialObject) GM() float64 {
	return c.μ
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.μ == b.μ
}

// CelestialObjectFromString returns the object from its name.
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "earth", "":
		return Earth, nil
	case "moon":
		return Moon, nil
	case "mars":
		return Mars, nil
	default:
		return CelestialObject{}, errors.Wrapf(ErrUnknownBody, "'%s'", name)
	}
}

/* Definitions */

// Earth is home.
var Earth = CelestialObject{"Earth", 6378136.3, 3.98600433e14}

// Moon is Earth's natural satellite.
var Moon = CelestialObject{"Moon", 1737400, 4.902800066e12}

// Mars is the fourth planet.
var Mars = CelestialObject{"Mars", 3396190, 4.28283100e13}
