package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestClock(b *fakeBackend, now *float64) (*Clock, *Recorder, *[]ClockEvent) {
	rec := NewRecorder()
	c := NewClock(b, rec, func() float64 { return *now }, zerolog.Nop())
	events := &[]ClockEvent{}
	c.OnChange(func(e ClockEvent) { *events = append(*events, e) })
	return c, rec, events
}

func TestClockNoTrackIsNoop(t *testing.T) {
	now := 0.0
	c, rec, events := newTestClock(&fakeBackend{}, &now)
	c.Play(0)
	c.Pause()
	c.Stop()
	assert.False(t, c.IsPlaying())
	assert.True(t, c.IsStopped())
	assert.Empty(t, *events)
	assert.Empty(t, rec.Order)
	assert.Zero(t, c.Duration())
}

func TestClockPlayToggles(t *testing.T) {
	now := 1234.0
	b := &fakeBackend{loaded: true, duration: 200}
	c, rec, events := newTestClock(b, &now)

	c.Play(0)
	assert.True(t, c.IsPlaying())
	assert.False(t, c.IsStopped())
	assert.Equal(t, 1234.0, c.StartMarker())
	assert.Equal(t, []float64{0}, b.starts)
	assert.Equal(t, 1.0, rec.Values[UniformPlaying])

	now = 2000
	c.Play(0)
	assert.False(t, c.IsPlaying())
	assert.False(t, b.playing)
	assert.Equal(t, 2000.0, c.StartMarker())
	assert.Equal(t, 0.0, rec.Values[UniformPlaying])
	assert.Equal(t, []ClockEvent{EventPlay, EventPause}, *events)
}

func TestClockResumeSeeks(t *testing.T) {
	now := 0.0
	b := &fakeBackend{loaded: true, duration: 200}
	c, _, _ := newTestClock(b, &now)
	c.Play(42)
	assert.Equal(t, []float64{42}, b.starts)
	assert.Equal(t, 42.0, c.Position())
	assert.Equal(t, PlaybackPosition{CurrentTime: 42, Duration: 200, IsPlaying: true}, c.Snapshot())
}

func TestClockStopRewinds(t *testing.T) {
	now := 0.0
	b := &fakeBackend{loaded: true, duration: 200}
	c, rec, events := newTestClock(b, &now)
	c.Play(30)
	c.Stop()
	assert.False(t, c.IsPlaying())
	assert.True(t, c.IsStopped())
	assert.Equal(t, 1, b.rewinds)
	assert.Zero(t, c.Position())
	assert.Equal(t, 0.0, rec.Values[UniformPlaying])
	assert.Equal(t, []ClockEvent{EventPlay, EventStop}, *events)
}

func TestClockStartFailure(t *testing.T) {
	now := 0.0
	b := &fakeBackend{loaded: true, failNext: true}
	c, rec, events := newTestClock(b, &now)
	c.Play(0)
	assert.False(t, c.IsPlaying())
	assert.True(t, c.IsStopped())
	assert.Empty(t, *events)
	assert.Empty(t, rec.Order)
}

func TestClockPollFinished(t *testing.T) {
	now := 0.0
	b := &fakeBackend{loaded: true}
	c, _, events := newTestClock(b, &now)
	c.Poll()
	assert.Empty(t, *events)

	c.Play(0)
	c.Poll()
	assert.True(t, c.IsPlaying())

	b.finished = true
	c.Poll()
	assert.False(t, c.IsPlaying())
	assert.True(t, c.IsStopped())
	assert.Equal(t, []ClockEvent{EventPlay, EventStop}, *events)
}

func TestClockEventString(t *testing.T) {
	assert.Equal(t, "play", EventPlay.String())
	assert.Equal(t, "stop", EventStop.String())
	assert.Equal(t, "unknown", ClockEvent(9).String())
}

func TestClockSeekFromStopped(t *testing.T) {
	now := 0.0
	b := &fakeBackend{loaded: true, duration: 200}
	c, _, events := newTestClock(b, &now)

	c.Seek(50)
	assert.Equal(t, []float64{50}, b.seeks)
	assert.False(t, c.IsStopped())
	assert.False(t, c.IsPlaying())
	assert.Empty(t, *events)

	c.Play(c.Position())
	assert.Equal(t, []float64{50}, b.starts)
	assert.Equal(t, 50.0, c.Position())
}

func TestClockSeekWithoutTrack(t *testing.T) {
	now := 0.0
	b := &fakeBackend{}
	c, _, _ := newTestClock(b, &now)
	c.Seek(10)
	assert.Empty(t, b.seeks)
	assert.True(t, c.IsStopped())
}

func TestClockTrackChanged(t *testing.T) {
	now := 0.0
	b := &fakeBackend{loaded: true, duration: 200}
	c, rec, events := newTestClock(b, &now)
	c.Play(0)

	c.TrackChanged()
	assert.False(t, c.IsPlaying())
	assert.True(t, c.IsStopped())
	assert.Equal(t, 0.0, rec.Values[UniformPlaying])
	assert.Equal(t, []ClockEvent{EventPlay, EventTrack}, *events)
	assert.Equal(t, "track", EventTrack.String())

	// a failed load leaves nothing loaded; observers still hear about it
	b.loaded = false
	c.TrackChanged()
	assert.Equal(t, EventTrack, (*events)[len(*events)-1])
}
