package tet19

import "github.com/VH-abc/tet19/internal/synth"

// RenderTone renders a single note to interleaved stereo 16-bit LE PCM
// without touching any audio device.
func RenderTone(degree int, duration, velocity float64, legato bool, sampleRate int, layout Layout) ([]byte, error) {
	s, err := synth.New(sampleRate, layout)
	if err != nil {
		return nil, err
	}
	return s.Tone(degree, duration, velocity, legato)
}

// RenderSequence renders a legato sequence to interleaved stereo 16-bit
// LE PCM without touching any audio device. The result is cached on the
// sequence; rendering again without mutation returns the same buffer.
func RenderSequence(q *LegatoSequence, sampleRate int, layout Layout) ([]byte, error) {
	s, err := synth.New(sampleRate, layout)
	if err != nil {
		return nil, err
	}
	return q.render(s)
}
