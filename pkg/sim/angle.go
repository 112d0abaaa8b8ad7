package sim

import "math"

// SectorDegrees is the electrical angle covered by one commutation step.
const SectorDegrees = 60

// Angle is an electrical angle in degrees, normalized to [0, 360).
type Angle float64

// AngleFromDegrees creates Angle from degrees.
func AngleFromDegrees(d float64) Angle {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return Angle(d)
}

// AngleFromSteps creates Angle from a commutation step count.
func AngleFromSteps(steps float64) Angle {
	return AngleFromDegrees(steps * SectorDegrees)
}

// AddDegrees adds degrees to current angle.
func (a Angle) AddDegrees(d float64) Angle {
	return AngleFromDegrees(float64(a) + d)
}

// Degrees gets angle in degrees, in [0, 360).
func (a Angle) Degrees() float64 {
	return float64(a)
}

// Radians gets angle in radians, in [0, 2π).
func (a Angle) Radians() float64 {
	return float64(a) * math.Pi / 180
}

// Sector returns the commutation sector, 0..5.
func (a Angle) Sector() int {
	s := int(float64(a) / SectorDegrees)
	if s > 5 {
		s = 5
	}
	return s
}

// Cos returns the cosine of the angle.
func (a Angle) Cos() float64 {
	return math.Cos(a.Radians())
}
