// Package tet19 synthesizes and schedules microtonal audio in N-tone
// equal temperament, 19-TET by default. Compositions are built from
// discrete note events and phase-continuous legato sequences, rendered to
// stereo 16-bit PCM and played through a pluggable audio sink.
package tet19

import (
	"strconv"
	"strings"
	"sync"

	"github.com/VH-abc/tet19/internal/audio"
	"github.com/VH-abc/tet19/internal/synth"
	"github.com/VH-abc/tet19/internal/tuning"
)

// Layout describes the tuning space (base frequency, base degree, steps
// per octave).
type Layout = tuning.Layout

// DefaultLayout returns 19-TET anchored at 220 Hz on degree 0.
func DefaultLayout() Layout { return tuning.DefaultLayout() }

// Step is one (degree, duration) pair of a legato sequence.
type Step = synth.Step

// Sink is the audio output boundary: it accepts finished interleaved
// stereo 16-bit PCM buffers and plays them asynchronously.
type Sink = audio.Sink

// Sound is one in-flight buffer on a sink.
type Sound = audio.Sound

// NewHeadlessSink returns a sink that accepts buffers without an audio
// device, for tests and headless environments.
func NewHeadlessSink(sampleRate int) Sink { return audio.NewHeadlessSink(sampleRate) }

// Error sentinels for the render and playback boundary.
var (
	ErrInvalidParameter = synth.ErrInvalidParameter
	ErrRenderFailure    = synth.ErrRenderFailure
	ErrSinkUnavailable  = audio.ErrUnavailable
)

// NoteEvent is one discretely-triggered note within a voice. It is
// read-only once handed to the scheduler.
type NoteEvent struct {
	Degree   int     // tuning degree; 0 is the reference pitch
	Duration float64 // seconds
	Start    float64 // offset from the voice's start, seconds
	Velocity float64 // 0..1
	Legato   bool    // near-zero attack/release envelope
}

// Melody is a voice of independently timed discrete notes. Notes need not
// be sorted; the scheduler orders them by start offset.
type Melody []NoteEvent

// LegatoSequence is a voice rendered as one continuous buffer with smooth
// pitch glides between notes and no phase reset at note boundaries.
//
// The rendered buffer is cached on the sequence, keyed by the full
// parameter set plus the rendering sample rate and tuning layout. The key
// is recomputed and compared on every render, so mutating any field, or
// rendering through a differently configured synth, produces a fresh
// render on the next call. Renders of a shared sequence from concurrent
// goroutines are safe; mutate fields only between playbacks.
type LegatoSequence struct {
	Notes     []Step  // ordered (degree, duration) pairs; order is musically significant
	Start     float64 // offset from the shared origin, seconds
	Velocity  float64 // 0..1
	GlideTime float64 // seconds per pitch transition

	mu       sync.Mutex
	cacheKey string
	cachePCM []byte
}

// NewLegatoSequence builds a sequence with the given notes at full
// velocity and a 20 ms glide.
func NewLegatoSequence(notes []Step) *LegatoSequence {
	return &LegatoSequence{Notes: notes, Velocity: 1.0, GlideTime: 0.02}
}

// TotalDuration is the sum of all note durations in seconds.
func (q *LegatoSequence) TotalDuration() float64 {
	return synth.TotalDuration(q.Notes)
}

// key serializes the full parameter tuple, including the synth's sample
// rate and layout so one sequence can safely be rendered through
// differently configured synths. TotalDuration is derived from Notes and
// therefore redundant in the key, but it is kept for key stability.
func (q *LegatoSequence) key(s *synth.Synth) string {
	layout := s.Layout()
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.SampleRate()))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(layout.BaseFrequency, 'g', -1, 64))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(layout.BaseDegree))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(layout.StepsPerOctave))
	b.WriteByte('|')
	for _, st := range q.Notes {
		b.WriteString(strconv.Itoa(st.Degree))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(st.Duration, 'g', -1, 64))
		b.WriteByte(';')
	}
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(q.Velocity, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(q.GlideTime, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(q.TotalDuration(), 'g', -1, 64))
	return b.String()
}

// render returns the cached buffer when the key still matches, otherwise
// renders and caches. Failed renders are never cached.
func (q *LegatoSequence) render(s *synth.Synth) ([]byte, error) {
	key := q.key(s)
	q.mu.Lock()
	if q.cachePCM != nil && q.cacheKey == key {
		pcm := q.cachePCM
		q.mu.Unlock()
		return pcm, nil
	}
	q.mu.Unlock()

	pcm, err := s.Glide(q.Notes, q.Velocity, q.GlideTime)
	if err != nil {
		return nil, err
	}
	q.mu.Lock()
	q.cacheKey = key
	q.cachePCM = pcm
	q.mu.Unlock()
	return pcm, nil
}

// Voice is one independent line of a polyphonic performance: either a
// Melody or a *LegatoSequence. The unexported method seals the set; the
// scheduler's blocking wait tracks each buffer's handle rather than
// computed end offsets.
type Voice interface {
	voice()
}

func (Melody) voice() {}

func (*LegatoSequence) voice() {}
