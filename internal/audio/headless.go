package audio

import (
	"sync"
	"time"
)

// HeadlessSink accepts buffers without a device, tracking only wall-clock
// playback state. It keeps tests and headless environments working with
// the full scheduling path.
type HeadlessSink struct {
	mu         sync.Mutex
	sampleRate int
	played     int
}

func NewHeadlessSink(sampleRate int) *HeadlessSink {
	return &HeadlessSink{sampleRate: sampleRate}
}

func (s *HeadlessSink) Play(pcm []byte) (Sound, error) {
	frames := len(pcm) / 4
	d := time.Duration(float64(frames) / float64(s.sampleRate) * float64(time.Second))
	s.mu.Lock()
	s.played++
	s.mu.Unlock()
	return &headlessSound{deadline: time.Now().Add(d)}, nil
}

func (s *HeadlessSink) Close() error { return nil }

// PlayCount reports how many buffers have been handed to the sink.
func (s *HeadlessSink) PlayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played
}

type headlessSound struct {
	mu       sync.Mutex
	deadline time.Time
	stopped  bool
}

func (h *headlessSound) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.stopped && time.Now().Before(h.deadline)
}

func (h *headlessSound) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
}
