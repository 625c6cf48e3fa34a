package engine

import (
	"github.com/rs/zerolog"
)

// Uniform names understood by the visual.
const (
	UniformBass        = "u_bass"
	UniformMid         = "u_mid"
	UniformHigh        = "u_high"
	UniformPlaying     = "u_playing"
	UniformDistort     = "u_distort"
	UniformDistort2    = "u_distort_2"
	UniformDistort3    = "u_distort_3"
	UniformDistort4    = "u_distort_4"
	UniformBallSpeed   = "u_ballSpeed"
	UniformCurrentTime = "u_currentTime"
	UniformTOD         = "u_tod"
)

// Sink forwards named scalars to the renderer. Implementations must not
// panic and drop names they do not know; callers never check for failure.
type Sink interface {
	SetUniform(name string, value float64)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(name string, value float64)

func (f SinkFunc) SetUniform(name string, value float64) { f(name, value) }

// Guard wraps a sink so a panicking renderer costs one stale value
// instead of the animation loop.
func Guard(s Sink) Sink {
	if s == nil {
		return SinkFunc(func(string, float64) {})
	}
	return SinkFunc(func(name string, value float64) {
		defer func() { _ = recover() }()
		s.SetUniform(name, value)
	})
}

// Multi fans a send out to every sink in order.
type Multi []Sink

func (m Multi) SetUniform(name string, value float64) {
	for _, s := range m {
		s.SetUniform(name, value)
	}
}

// Recorder keeps the last value sent for each name plus the send order.
type Recorder struct {
	Values map[string]float64
	Order  []string
}

func NewRecorder() *Recorder {
	return &Recorder{Values: map[string]float64{}}
}

func (r *Recorder) SetUniform(name string, value float64) {
	r.Values[name] = value
	r.Order = append(r.Order, name)
}

// Reset clears the recorded send order, keeping last values.
func (r *Recorder) Reset() { r.Order = r.Order[:0] }

// LogSink writes every uniform at trace level.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) SetUniform(name string, value float64) {
	s.Log.Trace().Str("uniform", name).Float64("value", value).Send()
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
