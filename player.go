package tet19

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/VH-abc/tet19/internal/audio"
	"github.com/VH-abc/tet19/internal/synth"
)

// cleanupMargin keeps a handle alive slightly past its nominal end so the
// sink's internal buffering is never truncated.
const cleanupMargin = 100 * time.Millisecond

// HandleState tracks one scheduled buffer through its lifecycle.
type HandleState int

const (
	StateScheduled HandleState = iota
	StatePlaying
	StateFinished
)

func (s HandleState) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Handle identifies one scheduled note or sequence buffer. Handles move
// Scheduled → Playing → Finished and are removed from the player's
// registry on finish.
type Handle struct {
	id int

	mu    sync.Mutex
	state HandleState
	sound audio.Sound
	err   error
	done  chan struct{}
}

func (h *Handle) ID() int { return h.id }

func (h *Handle) State() HandleState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Err reports the render or sink error that finished the handle early,
// if any.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Done is closed once the handle reaches StateFinished.
func (h *Handle) Done() <-chan struct{} { return h.done }

type Option func(*playerConfig)

type playerConfig struct {
	layout Layout
	sink   Sink
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{layout: DefaultLayout()}
}

// WithTuning replaces the default 19-TET layout.
func WithTuning(layout Layout) Option {
	return func(cfg *playerConfig) {
		cfg.layout = layout
	}
}

// WithSink replaces the default device sink, e.g. with NewHeadlessSink
// for environments without audio hardware.
func WithSink(sink Sink) Option {
	return func(cfg *playerConfig) {
		cfg.sink = sink
	}
}

// Player renders notes in its tuning layout and schedules their playback
// on an audio sink. All methods are safe for concurrent use.
type Player struct {
	synth *synth.Synth
	sink  Sink

	mu      sync.Mutex
	handles map[int]*Handle
	nextID  int
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewPlayer opens a player at the given sample rate. Without WithSink it
// initializes the system audio device; a failure there surfaces
// ErrSinkUnavailable once, at construction.
func NewPlayer(sampleRate int, opts ...Option) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	sy, err := synth.New(sampleRate, cfg.layout)
	if err != nil {
		return nil, err
	}
	sink := cfg.sink
	if sink == nil {
		sink, err = audio.NewDeviceSink(sampleRate)
		if err != nil {
			return nil, err
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		synth:   sy,
		sink:    sink,
		handles: make(map[int]*Handle),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

func (p *Player) SampleRate() int { return p.synth.SampleRate() }
func (p *Player) Layout() Layout  { return p.synth.Layout() }

// Frequency converts a degree to Hz under the player's layout.
func (p *Player) Frequency(degree int) float64 { return p.synth.Frequency(degree) }

// Play schedules all voices against one time origin captured at the call,
// so their relative timing is preserved regardless of per-voice goroutine
// jitter (a few milliseconds at worst; timing drift is best-effort, not an
// error). It returns one handle slice per voice, every handle already
// registered in StateScheduled.
//
// With blocking set, Play returns only after every voice has finished
// playing; render failures are per-voice, never abort sibling voices, and
// the first one is returned (each handle also carries its own Err).
func (p *Player) Play(voices []Voice, blocking bool) ([][]*Handle, error) {
	origin := time.Now()
	ctx := p.playbackContext()
	all := make([][]*Handle, len(voices))
	g := new(errgroup.Group)
	for i, v := range voices {
		switch voice := v.(type) {
		case Melody:
			all[i] = p.scheduleMelody(ctx, g, voice, origin)
		case *LegatoSequence:
			all[i] = []*Handle{p.scheduleSequence(ctx, g, voice, origin)}
		}
	}
	if !blocking {
		return all, nil
	}
	err := g.Wait()
	for _, hs := range all {
		for _, h := range hs {
			<-h.Done()
		}
	}
	return all, err
}

// PlayNote renders and immediately plays a single note.
func (p *Player) PlayNote(degree int, duration, velocity float64, blocking, legato bool) (*Handle, error) {
	pcm, err := p.synth.Tone(degree, duration, velocity, legato)
	if err != nil {
		return nil, err
	}
	h := p.newHandle()
	if err := p.startPlayback(p.playbackContext(), h, pcm, duration); err != nil {
		return nil, err
	}
	if blocking {
		<-h.Done()
	}
	return h, nil
}

// PlayChord plays several degrees simultaneously.
func (p *Player) PlayChord(degrees []int, duration, velocity float64, blocking bool) ([]*Handle, error) {
	handles := make([]*Handle, 0, len(degrees))
	for _, d := range degrees {
		h, err := p.PlayNote(d, duration, velocity, false, false)
		if err != nil {
			return handles, err
		}
		handles = append(handles, h)
	}
	if blocking {
		for _, h := range handles {
			<-h.Done()
		}
	}
	return handles, nil
}

// PlayMelody schedules one discrete-note voice.
func (p *Player) PlayMelody(notes Melody, blocking bool) ([]*Handle, error) {
	all, err := p.Play([]Voice{notes}, blocking)
	if len(all) == 0 {
		return nil, err
	}
	return all[0], err
}

// PlaySequence schedules one legato sequence voice.
func (p *Player) PlaySequence(q *LegatoSequence, blocking bool) (*Handle, error) {
	all, err := p.Play([]Voice{q}, blocking)
	if len(all) == 0 || len(all[0]) == 0 {
		return nil, err
	}
	return all[0][0], err
}

// Precompute renders and caches a legato sequence ahead of playback, so
// the first trigger pays no synthesis cost.
func (p *Player) Precompute(q *LegatoSequence) error {
	_, err := q.render(p.synth)
	return err
}

// ActiveHandles reports the number of handles not yet finished.
func (p *Player) ActiveHandles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

// StopAll halts playback best-effort: pending voice triggers and cleanup
// timers are cancelled, every registered sound is told to stop, and the
// handle table is cleared. Not sample-accurate.
func (p *Player) StopAll() {
	p.mu.Lock()
	p.cancel()
	p.ctx, p.cancel = context.WithCancel(context.Background())
	handles := make([]*Handle, 0, len(p.handles))
	for _, h := range p.handles {
		handles = append(handles, h)
	}
	p.mu.Unlock()

	for _, h := range handles {
		h.mu.Lock()
		sound := h.sound
		h.mu.Unlock()
		if sound != nil {
			sound.Stop()
		}
		p.finish(h, nil)
	}
}

// Close stops playback and releases the sink.
func (p *Player) Close() error {
	p.StopAll()
	return p.sink.Close()
}

func (p *Player) playbackContext() context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx
}

func (p *Player) newHandle() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := &Handle{id: p.nextID, done: make(chan struct{})}
	p.nextID++
	p.handles[h.id] = h
	return h
}

func (p *Player) finish(h *Handle, err error) {
	h.mu.Lock()
	if h.state == StateFinished {
		h.mu.Unlock()
		return
	}
	h.state = StateFinished
	if h.err == nil {
		h.err = err
	}
	h.mu.Unlock()
	close(h.done)

	p.mu.Lock()
	delete(p.handles, h.id)
	p.mu.Unlock()
}

// scheduleMelody sorts the notes by start offset and walks them on one
// goroutine, rendering each note at its trigger time.
func (p *Player) scheduleMelody(ctx context.Context, g *errgroup.Group, m Melody, origin time.Time) []*Handle {
	notes := make(Melody, len(m))
	copy(notes, m)
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Start < notes[j].Start })

	handles := make([]*Handle, len(notes))
	for i := range handles {
		handles[i] = p.newHandle()
	}

	g.Go(func() error {
		var firstErr error
		for i, note := range notes {
			if !sleepUntil(ctx, origin.Add(secs(note.Start))) {
				for _, h := range handles[i:] {
					p.finish(h, nil)
				}
				return firstErr
			}
			pcm, err := p.synth.Tone(note.Degree, note.Duration, note.Velocity, note.Legato)
			if err != nil {
				// Synthesis failure is fatal for this voice only.
				for _, h := range handles[i:] {
					p.finish(h, err)
				}
				if firstErr == nil {
					firstErr = err
				}
				return firstErr
			}
			if err := p.startPlayback(ctx, handles[i], pcm, note.Duration); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})
	return handles
}

// scheduleSequence renders the whole buffer (through the sequence cache)
// and hands it to the sink once the start offset has elapsed.
func (p *Player) scheduleSequence(ctx context.Context, g *errgroup.Group, q *LegatoSequence, origin time.Time) *Handle {
	h := p.newHandle()
	g.Go(func() error {
		pcm, err := q.render(p.synth)
		if err != nil {
			p.finish(h, err)
			return err
		}
		if !sleepUntil(ctx, origin.Add(secs(q.Start))) {
			p.finish(h, nil)
			return nil
		}
		return p.startPlayback(ctx, h, pcm, q.TotalDuration())
	})
	return h
}

// startPlayback hands the buffer to the sink and schedules the handle's
// cleanup for when playback should have drained.
func (p *Player) startPlayback(ctx context.Context, h *Handle, pcm []byte, duration float64) error {
	sound, err := p.sink.Play(pcm)
	if err != nil {
		p.finish(h, err)
		return err
	}
	h.mu.Lock()
	if h.state == StateFinished {
		// StopAll won the race; do not resurrect the handle.
		h.mu.Unlock()
		sound.Stop()
		return nil
	}
	h.state = StatePlaying
	h.sound = sound
	h.mu.Unlock()

	go func() {
		if !sleepCtx(ctx, secs(duration)+cleanupMargin) {
			// StopAll took over; it finishes the handle itself.
			return
		}
		p.finish(h, nil)
	}()
	return nil
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func sleepUntil(ctx context.Context, t time.Time) bool {
	return sleepCtx(ctx, time.Until(t))
}

// sleepCtx sleeps for d or until the context is cancelled, reporting
// whether the full duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
