// Package audio is the output boundary: sinks accept finished interleaved
// stereo 16-bit PCM buffers and play them asynchronously.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// ErrUnavailable reports that the audio backend could not be initialized.
var ErrUnavailable = errors.New("audio sink unavailable")

// Sink plays finished PCM buffers. Play is fire-and-forget: it returns as
// soon as the buffer has been handed to the device.
type Sink interface {
	Play(pcm []byte) (Sound, error)
	Close() error
}

// Sound is one in-flight buffer on a sink.
type Sound interface {
	Playing() bool
	Stop()
}

var (
	otoOnce    sync.Once
	otoCtx     *oto.Context
	otoRate    int
	otoInitErr error
)

// The process-wide oto context is created once; oto does not support
// re-initialization at a different rate.
func sharedContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		otoRate = sampleRate
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
		if otoInitErr == nil {
			<-ready
		}
	})
	if otoInitErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, otoInitErr)
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("%w: context already initialized at %d Hz (requested %d Hz)", ErrUnavailable, otoRate, sampleRate)
	}
	return otoCtx, nil
}

// DeviceSink plays buffers on the system audio device through oto.
type DeviceSink struct {
	ctx *oto.Context
}

func NewDeviceSink(sampleRate int) (*DeviceSink, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &DeviceSink{ctx: ctx}, nil
}

func (s *DeviceSink) Play(pcm []byte) (Sound, error) {
	p := s.ctx.NewPlayer(bytes.NewReader(pcm))
	p.Play()
	return &deviceSound{player: p}, nil
}

// Close releases nothing: the oto context is process-wide and cannot be
// torn down, so remaining sounds are simply left to drain.
func (s *DeviceSink) Close() error { return nil }

type deviceSound struct {
	mu     sync.Mutex
	player *oto.Player
	closed bool
}

func (d *deviceSound) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	return d.player.IsPlaying()
}

func (d *deviceSound) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.player.Pause()
	_ = d.player.Close()
}
