package engine

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/also-radio/internal/config"
	"github.com/iburimskiy/also-radio/internal/timing"
)

// Resizer changes the render surface size.
type Resizer interface {
	Resize(width, height int)
}

// FrameMetrics is the frame rate and resolution bookkeeping of a session.
type FrameMetrics struct {
	Sum   float64
	Count int

	// LastAverage is the floored mean of the last completed window.
	LastAverage float64
	Windows     int
	Offenses    int
	Shrinks     int

	Width, Height float64
}

// Limits are the scheduler tunables.
type Limits struct {
	FPSLimit     float64
	EpsilonMS    float64
	MinFrameRate float64
	AverageOver  int
	MaxOffenses  int
	ShrinkFactor float64
	MeasureMask  time.Duration
}

// LimitsFrom picks the scheduler tunables out of a config.
func LimitsFrom(c config.Config) Limits {
	return Limits{
		FPSLimit:     c.FPSLimit,
		EpsilonMS:    config.FrameEpsilonMS,
		MinFrameRate: c.MinFrameRate,
		AverageOver:  c.AverageOver,
		MaxOffenses:  c.MaxOffenses,
		ShrinkFactor: c.ShrinkFactor,
		MeasureMask:  c.MeasureMask,
	}
}

// Scheduler measures the achieved frame rate, shrinks the render surface
// when it stays low and decides which ticks advance the animation.
type Scheduler struct {
	limits  Limits
	metrics *FrameMetrics
	resizer Resizer
	log     zerolog.Logger

	lastTimestamp float64
	previousTick  float64
	mask          timing.Deferred
}

func NewScheduler(l Limits, m *FrameMetrics, r Resizer, log zerolog.Logger) *Scheduler {
	if l.AverageOver <= 0 {
		l.AverageOver = config.NumAverageFrames
	}
	if l.FPSLimit <= 0 {
		l.FPSLimit = config.FPSLimit
	}
	return &Scheduler{limits: l, metrics: m, resizer: r, log: log}
}

// FrameBudget is the minimum spacing between animation advances in ms.
func (s *Scheduler) FrameBudget() float64 {
	return 1000/s.limits.FPSLimit - s.limits.EpsilonMS
}

// MaskMeasurement suspends fps sampling until now+MeasureMask. Calling it
// again pushes the deadline out.
func (s *Scheduler) MaskMeasurement(now float64) {
	s.mask.Schedule(now, s.limits.MeasureMask)
}

func (s *Scheduler) Masked(now float64) bool { return s.mask.Active(now) }

// Observe takes one fps sample from ts. It reports whether the sample
// completed an averaging window.
func (s *Scheduler) Observe(ts float64) bool {
	last := s.lastTimestamp
	s.lastTimestamp = ts
	if s.mask.Active(ts) {
		return false
	}
	delta := ts - last
	if delta <= 0 {
		return false
	}

	m := s.metrics
	m.Sum += 1000 / delta
	m.Count++
	if m.Count < s.limits.AverageOver {
		return false
	}

	framerate := math.Floor(m.Sum / float64(s.limits.AverageOver))
	m.Sum = 0
	m.Count = 0
	m.LastAverage = framerate
	m.Windows++
	s.log.Debug().Float64("fps", framerate).Int("offenses", m.Offenses).Msg("frame window")

	if framerate > 0 && framerate < s.limits.MinFrameRate {
		m.Offenses++
		if m.Offenses > s.limits.MaxOffenses {
			s.shrink()
			m.Offenses = 0
		}
	}
	return true
}

func (s *Scheduler) shrink() {
	m := s.metrics
	m.Width /= s.limits.ShrinkFactor
	m.Height /= s.limits.ShrinkFactor
	m.Shrinks++
	s.log.Info().Float64("width", m.Width).Float64("height", m.Height).Msg("lowering render resolution")
	if s.resizer != nil {
		s.resizer.Resize(int(m.Width), int(m.Height))
	}
}

// Due reports whether ts is far enough past the last advance to run
// another one, and records it if so.
func (s *Scheduler) Due(ts float64) bool {
	if ts-s.previousTick > s.FrameBudget() {
		s.previousTick = ts
		return true
	}
	return false
}
