// Package engine turns playback position and spectrum snapshots into the
// uniforms that drive the visual. All of it runs on a single tick goroutine.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/also-radio/internal/config"
)

// Display holds the cheap fields refreshed on every tick, gated or not.
type Display struct {
	Position float64
	Duration float64
	// Percent is the playhead position in [0,100]; 0 while duration is unknown.
	Percent float64
}

// Scalars is a read-only copy of everything the engine last pushed.
type Scalars struct {
	AnimationState
	Bands
	Playing bool
}

// Options wires an Engine to its collaborators.
type Options struct {
	Config  config.Config
	Backend Backend
	Sampler Sampler
	Sink    Sink
	Resizer Resizer
	Log     zerolog.Logger
}

type Engine struct {
	Clock    *Clock
	Analyzer *Analyzer
	Metrics  FrameMetrics

	state     AnimationState
	scheduler *Scheduler
	sink      Sink
	display   Display
	lastTick  float64
	advances  int
	log       zerolog.Logger
}

func New(o Options) *Engine {
	e := &Engine{
		state: NewAnimationState(),
		sink:  Guard(o.Sink),
		log:   o.Log,
		Metrics: FrameMetrics{
			Width:  float64(o.Config.Width) * config.PixelRatio,
			Height: float64(o.Config.Height) * config.PixelRatio,
		},
	}
	e.Clock = NewClock(o.Backend, e.sink, e.LastTick, o.Log.With().Str("component", "clock").Logger())
	e.Analyzer = NewAnalyzer(o.Sampler, o.Config.FFTSize/2)
	e.scheduler = NewScheduler(LimitsFrom(o.Config), &e.Metrics, o.Resizer, o.Log.With().Str("component", "scheduler").Logger())
	return e
}

// PushInitial sends the uniforms the visual needs before the first tick.
func (e *Engine) PushInitial() {
	e.sink.SetUniform(UniformBallSpeed, e.state.BallSpeed)
	e.sink.SetUniform(UniformTOD, 1)
	e.sink.SetUniform(UniformPlaying, 0)
}

// LastTick is the timestamp (ms) of the most recent tick.
func (e *Engine) LastTick() float64 { return e.lastTick }

// Advances counts gated ticks so far.
func (e *Engine) Advances() int { return e.advances }

func (e *Engine) Display() Display { return e.display }

func (e *Engine) Scheduler() *Scheduler { return e.scheduler }

func (e *Engine) Snapshot() Scalars {
	return Scalars{
		AnimationState: e.state,
		Bands:          e.Analyzer.Last(),
		Playing:        e.Clock.IsPlaying(),
	}
}

// MaskMeasurement keeps unrelated UI animation out of the fps average.
func (e *Engine) MaskMeasurement() { e.scheduler.MaskMeasurement(e.lastTick) }

// Tick runs one frame at ts, milliseconds since the tick source started.
// It reports whether the animation advanced.
func (e *Engine) Tick(ts float64) bool {
	e.lastTick = ts
	e.Clock.Poll()
	e.scheduler.Observe(ts)

	advanced := false
	if e.scheduler.Due(ts) {
		e.advance(ts)
		advanced = true
	}

	pos, dur := e.Clock.Position(), e.Clock.Duration()
	e.display = Display{Position: pos, Duration: dur}
	if f, ok := fraction(pos, dur); ok {
		e.display.Percent = clamp(f*100, 0, 100)
	}
	return advanced
}

func (e *Engine) advance(ts float64) {
	p := e.Clock.Snapshot()
	e.state.Advance(ts, e.Clock.StartMarker(), p)
	e.advances++

	b := e.Analyzer.Sample()
	e.Analyzer.Push(e.sink, b, p.IsPlaying)
	e.state.Push(e.sink)
}

// Run feeds ticks to the engine until ctx is done or ticks is closed.
func (e *Engine) Run(ctx context.Context, ticks <-chan float64) error {
	e.log.Info().Msg("engine running")
	defer e.log.Info().Int("advances", e.advances).Int("shrinks", e.Metrics.Shrinks).Msg("engine stopped")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts, ok := <-ticks:
			if !ok {
				return ctx.Err()
			}
			e.Tick(ts)
		}
	}
}

// Ticker emits millisecond timestamps, measured from its start, every
// interval until ctx is done. Slow consumers drop ticks.
func Ticker(ctx context.Context, interval time.Duration) <-chan float64 {
	out := make(chan float64, 1)
	go func() {
		defer close(out)
		t := time.NewTicker(interval)
		defer t.Stop()
		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				ms := float64(now.Sub(start)) / float64(time.Millisecond)
				select {
				case out <- ms:
				default:
				}
			}
		}
	}()
	return out
}
