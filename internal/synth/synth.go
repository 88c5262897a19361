// Package synth renders N-TET notes and glide sequences to interleaved
// stereo 16-bit PCM.
package synth

import (
	"errors"
	"fmt"
	"math"

	"github.com/VH-abc/tet19/internal/envelope"
	"github.com/VH-abc/tet19/internal/tuning"
)

const twoPi = math.Pi * 2

// BytesPerFrame is the size of one interleaved stereo frame (two int16
// channels, little endian).
const BytesPerFrame = 4

const (
	// Discrete tones sum harmonics 2..16; glide sequences stop at 8,
	// trading timbral richness for render speed on long buffers.
	toneHarmonics  = 16
	glideHarmonics = 8

	// Headroom scaled by the convergent sum of the 1/h^3 series, so the
	// summed harmonics cannot clip.
	toneNorm  = 0.2 / 1.645
	glideNorm = 0.2 / 1.202
)

var (
	// ErrInvalidParameter reports a rejected render argument.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrRenderFailure reports non-finite samples from pathological input.
	ErrRenderFailure = errors.New("render failure")
)

// Step is one (degree, duration) element of a glide sequence.
type Step struct {
	Degree   int
	Duration float64 // seconds
}

// TotalDuration sums the step durations in seconds.
func TotalDuration(steps []Step) float64 {
	var total float64
	for _, st := range steps {
		total += st.Duration
	}
	return total
}

// Synth renders tones in a fixed tuning layout at a fixed sample rate.
// It is stateless between calls: identical inputs produce identical
// buffers.
type Synth struct {
	sampleRate int
	layout     tuning.Layout
}

func New(sampleRate int, layout tuning.Layout) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParameter, sampleRate)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Synth{sampleRate: sampleRate, layout: layout}, nil
}

func (s *Synth) SampleRate() int       { return s.sampleRate }
func (s *Synth) Layout() tuning.Layout { return s.layout }

// Frequency converts a degree to Hz under the synth's layout.
func (s *Synth) Frequency(degree int) float64 {
	return s.layout.Frequency(degree)
}

// Tone renders a single note at the given degree. The legato flag swaps
// the plucked envelope for near-zero attack/release so back-to-back tones
// connect without transients.
func (s *Synth) Tone(degree int, duration, velocity float64, legato bool) ([]byte, error) {
	env := envelope.Plucked()
	if legato {
		env = envelope.Legato()
	}
	return s.ToneAt(s.layout.Frequency(degree), duration, velocity, env)
}

// ToneAt renders a fixed-frequency note: a sine fundamental plus
// harmonics 2..16 decaying as 1/h^3, shaped by the ADSR envelope and
// scaled by velocity.
func (s *Synth) ToneAt(freq, duration, velocity float64, env envelope.Params) ([]byte, error) {
	if err := checkNote(duration, velocity); err != nil {
		return nil, err
	}
	if freq <= 0 || math.IsInf(freq, 0) || math.IsNaN(freq) {
		return nil, fmt.Errorf("%w: frequency must be positive and finite, got %g", ErrInvalidParameter, freq)
	}
	n := int(math.Round(duration * float64(s.sampleRate)))
	if n == 0 {
		return nil, nil
	}

	wave := make([]float64, n)
	for i := range wave {
		t := float64(i) / float64(s.sampleRate)
		v := math.Sin(twoPi * freq * t)
		for h := 2; h <= toneHarmonics; h++ {
			v += math.Sin(twoPi*freq*float64(h)*t) / float64(h*h*h)
		}
		wave[i] = v * toneNorm
	}

	applyEnvelope(wave, envelope.Render(env, n, s.sampleRate), velocity)
	return quantizeStereo(wave)
}

// Glide renders a sequence of steps as one continuous buffer: a single
// per-sample frequency envelope, one running phase integrated across the
// whole sequence, harmonics 2..8, and one ADSR envelope spanning all
// steps. This is what keeps pitch transitions free of clicks.
func (s *Synth) Glide(steps []Step, velocity, glideTime float64) ([]byte, error) {
	if err := checkNote(0, velocity); err != nil {
		return nil, err
	}
	if glideTime < 0 {
		return nil, fmt.Errorf("%w: glide time must be non-negative, got %g", ErrInvalidParameter, glideTime)
	}
	for i, st := range steps {
		if st.Duration < 0 {
			return nil, fmt.Errorf("%w: step %d has negative duration %g", ErrInvalidParameter, i, st.Duration)
		}
	}
	n := int(math.Round(TotalDuration(steps) * float64(s.sampleRate)))
	if n == 0 {
		return nil, nil
	}

	freqs := s.frequencyEnvelope(steps, glideTime, n)

	// Integrate instantaneous frequency into a running phase. Per-note
	// phases would reset at every boundary and click.
	dt := 1.0 / float64(s.sampleRate)
	wave := make([]float64, n)
	var phase float64
	for i := range wave {
		phase += twoPi * freqs[i] * dt
		v := math.Sin(phase)
		for h := 2; h <= glideHarmonics; h++ {
			v += math.Sin(phase*float64(h)) / float64(h*h*h)
		}
		wave[i] = v * glideNorm
	}

	applyEnvelope(wave, envelope.Render(envelope.Sequence(), n, s.sampleRate), velocity)
	return quantizeStereo(wave)
}

// frequencyEnvelope builds the per-sample target frequency curve. The
// first step holds its frequency; every later step glides linearly from
// the frequency at the transition boundary to its own target over
// glideTime (capped to the step's duration), then holds.
func (s *Synth) frequencyEnvelope(steps []Step, glideTime float64, totalSamples int) []float64 {
	freqs := make([]float64, totalSamples)
	rate := float64(s.sampleRate)
	current := 0.0
	last := 0.0

	for i, st := range steps {
		target := s.layout.Frequency(st.Degree)
		start := int(current * rate)
		end := int((current + st.Duration) * rate)
		if end > totalSamples {
			end = totalSamples
		}
		if start >= end {
			current += st.Duration
			last = target
			continue
		}

		if i == 0 {
			for j := start; j < end; j++ {
				freqs[j] = target
			}
		} else {
			glideSamples := int(glideTime * rate)
			if glideSamples > end-start {
				glideSamples = end - start
			}
			prev := target
			if start > 0 {
				prev = freqs[start-1]
			}
			for j := 0; j < glideSamples; j++ {
				freqs[start+j] = lerp(prev, target, j, glideSamples)
			}
			for j := start + glideSamples; j < end; j++ {
				freqs[j] = target
			}
		}
		current += st.Duration
		last = target
	}

	// Rounding can leave a stray sample past the last step boundary;
	// keep holding the final target there.
	for j := totalSamples - 1; j >= 0 && freqs[j] == 0; j-- {
		freqs[j] = last
	}
	return freqs
}

func checkNote(duration, velocity float64) error {
	if duration < 0 || math.IsNaN(duration) {
		return fmt.Errorf("%w: duration must be non-negative, got %g", ErrInvalidParameter, duration)
	}
	if velocity < 0 || velocity > 1 || math.IsNaN(velocity) {
		return fmt.Errorf("%w: velocity must be in [0,1], got %g", ErrInvalidParameter, velocity)
	}
	return nil
}

func applyEnvelope(wave, env []float64, velocity float64) {
	for i := range wave {
		wave[i] *= env[i] * velocity
	}
}

// lerp interpolates from a to b over n samples, endpoint inclusive.
func lerp(a, b float64, i, n int) float64 {
	if n <= 1 {
		return b
	}
	return a + (b-a)*float64(i)/float64(n-1)
}

// quantizeStereo converts a mono float64 signal to interleaved stereo
// 16-bit little-endian PCM, duplicating the channel. It fails without
// producing a buffer if any sample is non-finite.
func quantizeStereo(wave []float64) ([]byte, error) {
	for i, v := range wave {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite sample at %d", ErrRenderFailure, i)
		}
	}
	pcm := make([]byte, len(wave)*BytesPerFrame)
	for i, v := range wave {
		n := int32(v * 32767)
		if n > 32767 {
			n = 32767
		} else if n < -32768 {
			n = -32768
		}
		lo, hi := byte(n), byte(n>>8)
		pcm[i*4] = lo
		pcm[i*4+1] = hi
		pcm[i*4+2] = lo
		pcm[i*4+3] = hi
	}
	return pcm, nil
}
