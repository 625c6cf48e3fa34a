package engine

import (
	"math"

	"github.com/iburimskiy/also-radio/internal/config"
)

// Trigger windows, in seconds of playback position.
const (
	distort1Period, distort1After = 25.0, 16.0
	distort2Period, distort2After = 180.0, 160.0
	distort3Period, distort3After = 230.0, 210.0

	distort4From, distort4To = 0.43, 0.58
)

// AnimationState is the set of scalars driving the visual.
type AnimationState struct {
	BallSpeed   float64
	CurrentTime float64

	Distort1 bool
	Distort2 float64
	Distort3 float64
	Distort4 float64

	TOD      float64
	TODKnown bool
}

func NewAnimationState() AnimationState {
	return AnimationState{BallSpeed: config.BallSpeedInit, TOD: 1}
}

// Advance moves the state one gated tick forward. startMarker is the tick
// timestamp (ms) at which playback last started.
func (s *AnimationState) Advance(ts, startMarker float64, p PlaybackPosition) {
	if p.IsPlaying {
		s.CurrentTime = (ts - startMarker) / 1000
	}

	if p.IsPlaying && s.BallSpeed < config.BallSpeedNormal {
		s.BallSpeed = math.Min(s.BallSpeed+config.BallAcc, config.BallSpeedNormal)
	}
	if p.IsPlaying && !s.Distort1 && s.BallSpeed > config.BallSpeedNormal {
		s.BallSpeed = config.BallSpeedNormal
	}

	pos := p.CurrentTime
	s.Distort1 = p.IsPlaying && math.Mod(pos, distort1Period) > distort1After
	if s.Distort1 {
		s.BallSpeed = config.BallSpeedFast
	}
	s.BallSpeed = clamp(s.BallSpeed, 0, config.BallSpeedFast)

	s.Distort2 = seek(s.Distort2, p.IsPlaying && math.Mod(pos, distort2Period) > distort2After, config.EnvelopeRate)
	s.Distort3 = seek(s.Distort3, p.IsPlaying && math.Mod(pos, distort3Period) > distort3After, config.EnvelopeRate)

	progress, ok := fraction(pos, p.Duration)
	inWindow := ok && progress > distort4From && progress < distort4To
	s.Distort4 = seek(s.Distort4, inWindow && p.IsPlaying, config.ProgressRate)

	s.TOD, s.TODKnown = timeOfDay(pos, p.Duration)
}

// Push forwards the animation scalars. TOD is skipped when unknown.
func (s *AnimationState) Push(sink Sink) {
	sink.SetUniform(UniformDistort, boolValue(s.Distort1))
	sink.SetUniform(UniformDistort2, s.Distort2)
	sink.SetUniform(UniformDistort3, s.Distort3)
	sink.SetUniform(UniformDistort4, s.Distort4)
	sink.SetUniform(UniformBallSpeed, s.BallSpeed)
	sink.SetUniform(UniformCurrentTime, s.CurrentTime)
	if s.TODKnown {
		sink.SetUniform(UniformTOD, s.TOD)
	}
}

// timeOfDay maps playback progress onto a night, day, night arc. Both
// position and duration must be non-zero. progress == 0.5 takes the
// second branch.
func timeOfDay(position, duration float64) (float64, bool) {
	if position == 0 || duration == 0 {
		return 0, false
	}
	f, ok := fraction(position, duration)
	if !ok {
		return 0, false
	}
	progress := 1 - f
	if progress > 0.5 {
		return math.Min(1, progress*1.2), true
	}
	return math.Min(1, (1-progress)*1.2), true
}

// seek moves v one step toward 1 when on, toward 0 otherwise.
func seek(v float64, on bool, rate float64) float64 {
	if on {
		return clamp(v+rate, 0, 1)
	}
	return clamp(v-rate, 0, 1)
}

func fraction(num, den float64) (float64, bool) {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) || math.IsNaN(num) {
		return 0, false
	}
	return num / den, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
