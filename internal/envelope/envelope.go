// Package envelope generates ADSR amplitude curves over fixed-length
// sample buffers.
package envelope

import "math"

// Params holds ADSR stage parameters. Times are in seconds, Sustain is a
// level in [0,1].
type Params struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Plucked returns the envelope used for discrete notes: an audible attack
// transient and a long release tail.
func Plucked() Params {
	return Params{Attack: 0.05, Decay: 0.15, Sustain: 0.8, Release: 0.3}
}

// Legato returns near-zero attack and release so consecutive notes read
// as one continuous tone.
func Legato() Params {
	return Params{Attack: 0.001, Decay: 0.02, Sustain: 0.95, Release: 0.001}
}

// Sequence returns the single envelope applied across a whole glide
// sequence: gentle attack at the start, gentle release at the end.
func Sequence() Params {
	return Params{Attack: 0.05, Decay: 0.1, Sustain: 0.9, Release: 0.2}
}

// Render produces the amplitude curve for totalSamples samples. Stage
// lengths are converted to sample counts and capped so no combination can
// overflow the buffer: attack at 1/3, decay at 1/4, release at 1/3 of the
// total. The sustain stage fills whatever remains and is clamped to zero
// for buffers too short to hold all stages. All values are in [0,1].
func Render(p Params, totalSamples, sampleRate int) []float64 {
	env := make([]float64, totalSamples)
	if totalSamples <= 0 || sampleRate <= 0 {
		return env
	}

	attackSamples := min(int(p.Attack*float64(sampleRate)), totalSamples/3)
	decaySamples := min(int(p.Decay*float64(sampleRate)), totalSamples/4)
	releaseSamples := min(int(p.Release*float64(sampleRate)), totalSamples/3)
	sustainSamples := totalSamples - attackSamples - decaySamples - releaseSamples
	if sustainSamples < 0 {
		sustainSamples = 0
	}

	idx := 0

	// Attack: concave exponential rise 1 - e^(-4x), x in [0,1].
	for i := 0; i < attackSamples; i++ {
		env[idx] = 1 - math.Exp(-4*unit(i, attackSamples))
		idx++
	}

	// Decay: exponential approach from 1 toward the sustain level.
	for i := 0; i < decaySamples; i++ {
		env[idx] = p.Sustain + (1-p.Sustain)*math.Exp(-3*unit(i, decaySamples))
		idx++
	}

	for i := 0; i < sustainSamples && idx < totalSamples; i++ {
		env[idx] = p.Sustain
		idx++
	}

	// Release: exponential fall from the sustain level.
	for i := 0; i < releaseSamples && idx < totalSamples; i++ {
		env[idx] = p.Sustain * math.Exp(-4*unit(i, releaseSamples))
		idx++
	}

	return env
}

// unit maps sample index i of an n-sample stage onto [0,1], endpoint
// inclusive.
func unit(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
