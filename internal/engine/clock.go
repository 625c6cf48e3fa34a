package engine

import (
	"github.com/rs/zerolog"
)

// Backend is the playback capability the clock drives.
type Backend interface {
	// Loaded reports whether a track is ready to play.
	Loaded() bool
	// Start begins or resumes playback, seeking to resumeAt seconds first
	// when resumeAt > 0.
	Start(resumeAt float64) error
	Pause()
	// Rewind seeks back to the beginning of the track.
	Rewind()
	// Position and Duration are in seconds; Duration is 0 when unknown.
	Position() float64
	Duration() float64
}

// Finisher is implemented by backends that know when a track ran out.
type Finisher interface {
	Finished() bool
}

// Seeker is implemented by backends that can jump within the loaded track.
type Seeker interface {
	Seek(sec float64) error
}

// ClockEvent tells observers what changed.
type ClockEvent int

const (
	EventPlay ClockEvent = iota
	EventPause
	EventStop
	// EventTrack follows a track change; the clock is stopped at the top.
	EventTrack
)

func (e ClockEvent) String() string {
	switch e {
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventStop:
		return "stop"
	case EventTrack:
		return "track"
	default:
		return "unknown"
	}
}

// PlaybackPosition is what the animation reads from the clock each tick.
type PlaybackPosition struct {
	CurrentTime float64
	Duration    float64
	IsPlaying   bool
}

// Clock wraps a Backend with toggle semantics and the start marker used to
// pace the animation.
type Clock struct {
	backend   Backend
	sink      Sink
	now       func() float64
	log       zerolog.Logger
	observers []func(ClockEvent)

	playing     bool
	stopped     bool
	startMarker float64
}

// NewClock creates a stopped clock. now returns the current tick timestamp in ms.
func NewClock(b Backend, sink Sink, now func() float64, log zerolog.Logger) *Clock {
	if now == nil {
		now = func() float64 { return 0 }
	}
	return &Clock{
		backend: b,
		sink:    Guard(sink),
		now:     now,
		log:     log,
		stopped: true,
	}
}

// OnChange registers fn to be called after every play state change.
func (c *Clock) OnChange(fn func(ClockEvent)) {
	c.observers = append(c.observers, fn)
}

func (c *Clock) IsPlaying() bool { return c.playing }
func (c *Clock) IsStopped() bool { return c.stopped }

// StartMarker is the tick timestamp (ms) of the last Play call.
func (c *Clock) StartMarker() float64 { return c.startMarker }

func (c *Clock) loaded() bool { return c.backend != nil && c.backend.Loaded() }

func (c *Clock) Position() float64 {
	if !c.loaded() {
		return 0
	}
	return c.backend.Position()
}

func (c *Clock) Duration() float64 {
	if !c.loaded() {
		return 0
	}
	return c.backend.Duration()
}

// Snapshot reads position, duration and play state in one go.
func (c *Clock) Snapshot() PlaybackPosition {
	return PlaybackPosition{
		CurrentTime: c.Position(),
		Duration:    c.Duration(),
		IsPlaying:   c.playing,
	}
}

// Play starts playback, or pauses it when already playing. A positive
// resumeAt seeks there before resuming.
func (c *Clock) Play(resumeAt float64) {
	c.startMarker = c.now()
	if c.playing {
		c.Pause()
		return
	}
	if !c.loaded() {
		return
	}
	if err := c.backend.Start(resumeAt); err != nil {
		c.log.Warn().Err(err).Float64("resume_at", resumeAt).Msg("playback start failed")
		return
	}
	c.playing = true
	c.stopped = false
	c.notify(EventPlay)
}

func (c *Clock) Pause() {
	if !c.loaded() {
		return
	}
	c.backend.Pause()
	c.playing = false
	c.notify(EventPause)
}

// Stop pauses and rewinds to the start of the track.
func (c *Clock) Stop() {
	if !c.loaded() {
		return
	}
	c.backend.Pause()
	c.backend.Rewind()
	c.playing = false
	c.stopped = true
	c.notify(EventStop)
}

// Seek moves the playhead to sec seconds. A stopped clock becomes paused so
// the next Play resumes from there.
func (c *Clock) Seek(sec float64) {
	s, ok := c.backend.(Seeker)
	if !ok || !c.loaded() {
		return
	}
	if err := s.Seek(sec); err != nil {
		c.log.Warn().Err(err).Float64("position", sec).Msg("seek failed")
		return
	}
	c.stopped = false
}

// TrackChanged resets the clock after the backend swapped tracks, or lost
// its track to a failed load. Observers see EventTrack either way.
func (c *Clock) TrackChanged() {
	c.playing = false
	c.stopped = true
	c.notify(EventTrack)
}

// Poll folds a track that played to its end back into the stopped state.
func (c *Clock) Poll() {
	f, ok := c.backend.(Finisher)
	if !ok || !c.playing || !f.Finished() {
		return
	}
	c.log.Debug().Msg("track finished")
	c.playing = false
	c.stopped = true
	c.notify(EventStop)
}

func (c *Clock) notify(e ClockEvent) {
	c.sink.SetUniform(UniformPlaying, boolValue(e == EventPlay))
	c.log.Debug().Stringer("event", e).Float64("position", c.Position()).Msg("playback")
	for _, fn := range c.observers {
		fn(e)
	}
}
