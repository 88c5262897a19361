package tet19

import (
	"errors"
	"testing"
	"time"
)

func newTestPlayer(t *testing.T) *Player {
	t.Helper()
	p, err := NewPlayer(44100, WithSink(NewHeadlessSink(44100)))
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestNewPlayerRejectsBadConfig(t *testing.T) {
	if _, err := NewPlayer(0, WithSink(NewHeadlessSink(44100))); err == nil {
		t.Error("expected error for zero sample rate")
	}
	bad := Layout{BaseFrequency: 220, StepsPerOctave: 0}
	if _, err := NewPlayer(44100, WithSink(NewHeadlessSink(44100)), WithTuning(bad)); err == nil {
		t.Error("expected error for invalid layout")
	}
}

func TestPlayNoteBlocking(t *testing.T) {
	p := newTestPlayer(t)
	start := time.Now()
	h, err := p.PlayNote(0, 0.1, 1.0, true, false)
	if err != nil {
		t.Fatalf("PlayNote: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("blocking PlayNote returned after %v, want >= 100ms", elapsed)
	}
	if h.State() != StateFinished {
		t.Errorf("state = %v, want finished", h.State())
	}
	if p.ActiveHandles() != 0 {
		t.Errorf("ActiveHandles = %d, want 0", p.ActiveHandles())
	}
}

func TestPlayNoteRejectsInvalidParameters(t *testing.T) {
	p := newTestPlayer(t)
	if _, err := p.PlayNote(0, -1, 1.0, false, false); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}
	if _, err := p.PlayNote(0, 0.1, 1.5, false, false); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestPlayChord(t *testing.T) {
	p := newTestPlayer(t)
	handles, err := p.PlayChord([]int{0, 6, 11}, 0.1, 0.8, true)
	if err != nil {
		t.Fatalf("PlayChord: %v", err)
	}
	if len(handles) != 3 {
		t.Fatalf("len(handles) = %d, want 3", len(handles))
	}
	for _, h := range handles {
		if h.State() != StateFinished {
			t.Errorf("handle %d state = %v, want finished", h.ID(), h.State())
		}
	}
}

// The scheduling scenario: voice A runs 0..0.2s, voice B runs 0.1..0.3s
// against the shared origin, so blocking Play must hold the caller for at
// least 0.3s.
func TestPlayBlockingWaitsForLongestVoice(t *testing.T) {
	p := newTestPlayer(t)
	voiceA := Melody{
		{Degree: 0, Duration: 0.1, Start: 0, Velocity: 1.0},
		{Degree: 6, Duration: 0.1, Start: 0.1, Velocity: 1.0},
	}
	voiceB := Melody{
		{Degree: -19, Duration: 0.2, Start: 0.1, Velocity: 1.0},
	}
	start := time.Now()
	all, err := p.Play([]Voice{voiceA, voiceB}, true)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Errorf("blocking Play returned after %v, want >= 300ms", elapsed)
	}
	if len(all) != 2 || len(all[0]) != 2 || len(all[1]) != 1 {
		t.Fatalf("handle shape = %v, want [2 1]", all)
	}
	for _, hs := range all {
		for _, h := range hs {
			if h.State() != StateFinished {
				t.Errorf("handle %d state = %v, want finished", h.ID(), h.State())
			}
		}
	}
}

func TestPlayNonBlockingReturnsImmediately(t *testing.T) {
	p := newTestPlayer(t)
	voice := Melody{{Degree: 0, Duration: 0.5, Start: 0.2, Velocity: 1.0}}
	start := time.Now()
	all, err := p.Play([]Voice{voice}, false)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("non-blocking Play took %v", elapsed)
	}
	if got := all[0][0].State(); got != StateScheduled {
		t.Errorf("state right after Play = %v, want scheduled", got)
	}
	p.StopAll()
}

func TestPlaySequenceBlocking(t *testing.T) {
	p := newTestPlayer(t)
	seq := NewLegatoSequence([]Step{{Degree: 0, Duration: 0.1}, {Degree: 19, Duration: 0.1}})
	start := time.Now()
	h, err := p.PlaySequence(seq, true)
	if err != nil {
		t.Fatalf("PlaySequence: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("blocking PlaySequence returned after %v, want >= 200ms", elapsed)
	}
	if h.State() != StateFinished {
		t.Errorf("state = %v, want finished", h.State())
	}
}

func TestVoiceFailureDoesNotBlockSiblings(t *testing.T) {
	p := newTestPlayer(t)
	bad := Melody{{Degree: 0, Duration: 0.1, Start: 0, Velocity: 2.0}} // velocity out of range
	good := Melody{{Degree: 0, Duration: 0.15, Start: 0, Velocity: 1.0}}
	all, err := p.Play([]Voice{bad, good}, true)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if gotErr := all[0][0].Err(); !errors.Is(gotErr, ErrInvalidParameter) {
		t.Errorf("bad voice handle err = %v, want ErrInvalidParameter", gotErr)
	}
	if gotErr := all[1][0].Err(); gotErr != nil {
		t.Errorf("good voice handle err = %v, want nil", gotErr)
	}
	if got := all[1][0].State(); got != StateFinished {
		t.Errorf("good voice state = %v, want finished", got)
	}
}

func TestStopAllClearsHandles(t *testing.T) {
	p := newTestPlayer(t)
	voice := Melody{
		{Degree: 0, Duration: 0.1, Start: 0, Velocity: 1.0},
		{Degree: 3, Duration: 0.1, Start: 5.0, Velocity: 1.0}, // far in the future
	}
	all, err := p.Play([]Voice{voice}, false)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	p.StopAll()
	if got := p.ActiveHandles(); got != 0 {
		t.Errorf("ActiveHandles after StopAll = %d, want 0", got)
	}
	for _, h := range all[0] {
		select {
		case <-h.Done():
		case <-time.After(time.Second):
			t.Fatalf("handle %d not finished after StopAll", h.ID())
		}
	}
}

func TestPrecomputeWarmsCache(t *testing.T) {
	p := newTestPlayer(t)
	seq := NewLegatoSequence([]Step{{Degree: 0, Duration: 0.2}})
	if err := p.Precompute(seq); err != nil {
		t.Fatalf("Precompute: %v", err)
	}
	a, err := RenderSequence(seq, 44100, DefaultLayout())
	if err != nil {
		t.Fatalf("RenderSequence: %v", err)
	}
	b, err := RenderSequence(seq, 44100, DefaultLayout())
	if err != nil {
		t.Fatalf("RenderSequence: %v", err)
	}
	if &a[0] != &b[0] {
		t.Error("expected cache hit to return the same buffer")
	}
}

type failingSink struct{}

func (failingSink) Play(pcm []byte) (Sound, error) { return nil, ErrSinkUnavailable }
func (failingSink) Close() error                   { return nil }

func TestSinkFailureSurfacesOnPlay(t *testing.T) {
	p, err := NewPlayer(44100, WithSink(failingSink{}))
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	defer p.Close()
	if _, err := p.PlayNote(0, 0.05, 1.0, false, false); !errors.Is(err, ErrSinkUnavailable) {
		t.Errorf("err = %v, want ErrSinkUnavailable", err)
	}
}
