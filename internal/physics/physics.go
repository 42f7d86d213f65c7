package physics

import (
	"math"
)

const (
	RadiusScale       = 2.0
	SpeedFactorMass   = 120.0
	MinSpeedFactor    = 0.2
	BasePixelsPerSec  = 80.0
	DirectionDeadZone = 5.0
)

// Radius is the collision radius of a body with the given mass.
func Radius(mass float64) float64 {
	return math.Sqrt(mass) * RadiusScale
}

// MassSpeedFactor slows heavier bodies down, never below MinSpeedFactor.
func MassSpeedFactor(mass float64) float64 {
	if mass <= 0 {
		return MinSpeedFactor
	}
	return math.Max(MinSpeedFactor, SpeedFactorMass/math.Sqrt(mass))
}

func Distance(ax, ay, bx, by float64) float64 {
	dx := bx - ax
	dy := by - ay
	return math.Sqrt(dx*dx + dy*dy)
}

func DistanceSquared(ax, ay, bx, by float64) float64 {
	dx := bx - ax
	dy := by - ay
	return dx*dx + dy*dy
}

// Overlaps reports whether two circles intersect. Touching circles do not overlap.
func Overlaps(ax, ay, ar, bx, by, br float64) bool {
	reach := ar + br
	return DistanceSquared(ax, ay, bx, by) < reach*reach
}

func Normalize(x, y float64) (float64, float64) {
	length := math.Sqrt(x*x + y*y)
	if length == 0 {
		return 0, 0
	}
	return x / length, y / length
}

func Clamp(value, low, high float64) float64 {
	if high < low {
		return (low + high) / 2
	}
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// ClampToBounds keeps a point at least margin away from every edge of a width x height world.
func ClampToBounds(x, y, margin, width, height float64) (float64, float64) {
	return Clamp(x, margin, width-margin), Clamp(y, margin, height-margin)
}
