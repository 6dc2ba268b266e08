package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Mod2Pi wraps a into [0, 2π).
func Mod2Pi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// NormalizeAngle wraps a into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = Mod2Pi(a)
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// TurnAngle returns the unsigned angle in [0, π] between directions a and b.
func TurnAngle(a, b v2.Vec) float64 {
	return math.Atan2(math.Abs(Cross(a, b)), a.Dot(b))
}

// SignedTurn returns the signed angle in (-π, π] that rotates a onto b.
// Positive is counter-clockwise.
func SignedTurn(a, b v2.Vec) float64 {
	return math.Atan2(Cross(a, b), a.Dot(b))
}

// CCWAngle returns the counter-clockwise angle in [0, 2π) from a to b.
func CCWAngle(a, b v2.Vec) float64 {
	return Mod2Pi(SignedTurn(a, b))
}
