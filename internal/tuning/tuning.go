// Package tuning maps degrees of an equal division of the octave to
// frequencies. 19-TET is the default, but any positive step count works.
package tuning

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLayout reports a layout that cannot produce frequencies.
var ErrInvalidLayout = errors.New("invalid tuning layout")

// Layout describes an N-TET tuning space anchored at a reference pitch.
type Layout struct {
	BaseFrequency  float64 // frequency of BaseDegree in Hz
	BaseDegree     int     // degree that sounds at BaseFrequency
	StepsPerOctave int     // equal divisions of the octave
}

// DefaultLayout returns 19-TET anchored at 220 Hz on degree 0.
func DefaultLayout() Layout {
	return Layout{
		BaseFrequency:  220.0,
		BaseDegree:     0,
		StepsPerOctave: 19,
	}
}

func (l Layout) Validate() error {
	if l.StepsPerOctave <= 0 {
		return fmt.Errorf("%w: steps per octave must be positive, got %d", ErrInvalidLayout, l.StepsPerOctave)
	}
	if l.BaseFrequency <= 0 || math.IsInf(l.BaseFrequency, 0) || math.IsNaN(l.BaseFrequency) {
		return fmt.Errorf("%w: base frequency must be positive and finite, got %g", ErrInvalidLayout, l.BaseFrequency)
	}
	return nil
}

// CentsPerStep returns the width of one degree in cents
// (1200/19 ≈ 63.16 for the default layout).
func (l Layout) CentsPerStep() float64 {
	return 1200.0 / float64(l.StepsPerOctave)
}

// Frequency converts a degree to Hz. Degrees outside [0, StepsPerOctave)
// select other octaves; the mapping is exponential, so the result is
// strictly positive for any finite degree. Extreme degrees may overflow
// to +Inf or underflow toward zero in float64; callers that accept
// arbitrary input should check with math.IsInf.
func (l Layout) Frequency(degree int) float64 {
	cents := float64(degree-l.BaseDegree) * l.CentsPerStep()
	return l.BaseFrequency * math.Pow(2, cents/1200.0)
}
