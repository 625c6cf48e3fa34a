package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/also-radio/internal/config"
)

type rig struct {
	e       *Engine
	backend *fakeBackend
	sampler *fakeSampler
	rec     *Recorder
	resizer *fakeResizer
}

func newRig() *rig {
	r := &rig{
		backend: &fakeBackend{loaded: true, duration: 200},
		sampler: &fakeSampler{sample: make([]uint8, 512)},
		rec:     NewRecorder(),
		resizer: &fakeResizer{},
	}
	r.e = New(Options{
		Config:  config.Default(),
		Backend: r.backend,
		Sampler: r.sampler,
		Sink:    r.rec,
		Resizer: r.resizer,
		Log:     zerolog.Nop(),
	})
	return r
}

func TestEngineInitialState(t *testing.T) {
	r := newRig()
	assert.Equal(t, float64(config.WindowWidth*2), r.e.Metrics.Width)
	assert.Equal(t, float64(config.WindowHeight*2), r.e.Metrics.Height)

	r.e.PushInitial()
	assert.Equal(t, 0.2, r.rec.Values[UniformBallSpeed])
	assert.Equal(t, 1.0, r.rec.Values[UniformTOD])
	assert.Equal(t, 0.0, r.rec.Values[UniformPlaying])
}

func TestTickTooSoonSkipsAdvance(t *testing.T) {
	r := newRig()
	r.backend.position = 10

	assert.True(t, r.e.Tick(20))
	assert.Equal(t, 1, r.e.Advances())
	assert.Equal(t, 10.0, r.e.Display().Position)

	r.backend.position = 10.005
	r.rec.Reset()
	assert.False(t, r.e.Tick(25))
	assert.Equal(t, 1, r.e.Advances())
	assert.Empty(t, r.rec.Order)
	assert.Equal(t, 10.005, r.e.Display().Position)
	assert.Equal(t, 25.0, r.e.LastTick())

	assert.True(t, r.e.Tick(37))
	assert.Equal(t, 2, r.e.Advances())
}

func TestTickPushesAllUniforms(t *testing.T) {
	r := newRig()
	fill(r.sampler.sample, 0, 4, 255)
	r.e.Tick(10)
	r.e.Clock.Play(0)
	r.backend.position = 16.5

	r.rec.Reset()
	require.True(t, r.e.Tick(40))
	assert.Equal(t, []string{
		UniformBass, UniformMid, UniformHigh, UniformPlaying,
		UniformDistort, UniformDistort2, UniformDistort3, UniformDistort4,
		UniformBallSpeed, UniformCurrentTime, UniformTOD,
	}, r.rec.Order)
	assert.Equal(t, 1.8, r.rec.Values[UniformBallSpeed])
	assert.Equal(t, 1.0, r.rec.Values[UniformDistort])
	assert.Equal(t, 1.0, r.rec.Values[UniformBass])
	assert.InDelta(t, 0.03, r.rec.Values[UniformCurrentTime], 1e-9)

	snap := r.e.Snapshot()
	assert.True(t, snap.Playing)
	assert.True(t, snap.Distort1)
	assert.Equal(t, 1.0, snap.Bass)
	assert.InDelta(t, 8.25, r.e.Display().Percent, 1e-9)
}

func TestTickWithoutDuration(t *testing.T) {
	r := newRig()
	r.backend.duration = 0
	r.backend.position = 100
	r.e.Clock.Play(0)
	r.rec.Reset()

	r.e.Tick(20)
	assert.NotContains(t, r.rec.Order, UniformTOD)
	assert.Zero(t, r.e.Display().Percent)
	assert.Zero(t, r.e.Snapshot().Distort4)
}

func TestTickWithoutTrack(t *testing.T) {
	r := newRig()
	r.backend.loaded = false
	r.e.Clock.Play(0)
	for ts := 20.0; ts < 2000; ts += 17 {
		r.e.Tick(ts)
	}
	snap := r.e.Snapshot()
	assert.False(t, snap.Playing)
	assert.Equal(t, 0.2, snap.BallSpeed)
	assert.Zero(t, r.e.Display())
}

func TestSlowTicksShrinkResolution(t *testing.T) {
	r := newRig()
	ts := 0.0
	for i := 0; i < 4*config.NumAverageFrames; i++ {
		ts += 1000.0 / 30
		r.e.Tick(ts)
	}
	assert.Equal(t, 1, r.e.Metrics.Shrinks)
	require.Len(t, r.resizer.calls, 1)
	assert.Equal(t, [2]int{1706, 853}, r.resizer.calls[0])
}

func TestMaskMeasurementFromEngine(t *testing.T) {
	r := newRig()
	r.e.Tick(100)
	r.e.MaskMeasurement()
	assert.True(t, r.e.Scheduler().Masked(3000))
	assert.False(t, r.e.Scheduler().Masked(3100))
}

func TestGuardSwallowsPanics(t *testing.T) {
	s := Guard(SinkFunc(func(string, float64) { panic("renderer gone") }))
	assert.NotPanics(t, func() { s.SetUniform(UniformBass, 1) })
	assert.NotPanics(t, func() { Guard(nil).SetUniform(UniformBass, 1) })
}

func TestMultiSink(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Multi{a, b}.SetUniform(UniformMid, 0.5)
	assert.Equal(t, 0.5, a.Values[UniformMid])
	assert.Equal(t, 0.5, b.Values[UniformMid])
}

func TestRunStopsOnClosedTicks(t *testing.T) {
	r := newRig()
	ticks := make(chan float64, 3)
	ticks <- 20
	ticks <- 40
	ticks <- 60
	close(ticks)
	require.NoError(t, r.e.Run(context.Background(), ticks))
	assert.Equal(t, 3, r.e.Advances())
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRig()
	ctx, cancel := context.WithCancel(context.Background())
	ticks := Ticker(ctx, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- r.e.Run(ctx, ticks) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}
