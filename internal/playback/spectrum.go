package playback

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// MonoSource supplies the most recent mono samples.
type MonoSource interface {
	Mono(dst []float64) int
}

// Spectrum produces byte frequency snapshots the way browser analyser
// nodes do: Blackman window, magnitude smoothing over time, then decibels
// mapped linearly from [minDB, maxDB] onto 0..255.
type Spectrum struct {
	src       MonoSource
	size      int
	smoothing float64
	minDB     float64
	maxDB     float64

	fft      *fourier.FFT
	frame    []float64
	coeffs   []complex128
	smoothed []float64
	out      []uint8
}

func NewSpectrum(src MonoSource, size int, smoothing, minDB, maxDB float64) *Spectrum {
	return &Spectrum{
		src:       src,
		size:      size,
		smoothing: smoothing,
		minDB:     minDB,
		maxDB:     maxDB,
		fft:       fourier.NewFFT(size),
		frame:     make([]float64, size),
		smoothed:  make([]float64, size/2),
		out:       make([]uint8, size/2),
	}
}

// Bins is the length of every snapshot.
func (s *Spectrum) Bins() int { return s.size / 2 }

// Reset drops the smoothing history, e.g. on track change.
func (s *Spectrum) Reset() {
	for i := range s.smoothed {
		s.smoothed[i] = 0
	}
}

// FrequencySample analyses the latest frame. The returned slice is reused
// by the next call. Without a source it is all zeros.
func (s *Spectrum) FrequencySample() []uint8 {
	if s.src == nil {
		for i := range s.out {
			s.out[i] = 0
		}
		return s.out
	}
	n := s.src.Mono(s.frame)
	for i := n; i < len(s.frame); i++ {
		s.frame[i] = 0
	}
	window.Blackman(s.frame)
	s.coeffs = s.fft.Coefficients(s.coeffs, s.frame)

	scale := 1 / float64(s.size)
	span := s.maxDB - s.minDB
	if span <= 0 {
		span = 1
	}
	for i := range s.smoothed {
		mag := cmplx.Abs(s.coeffs[i]) * scale
		s.smoothed[i] = s.smoothing*s.smoothed[i] + (1-s.smoothing)*mag
		db := -math.MaxFloat64
		if s.smoothed[i] > 0 {
			db = 20 * math.Log10(s.smoothed[i])
		}
		v := 255 * (db - s.minDB) / span
		switch {
		case v < 0:
			s.out[i] = 0
		case v > 255:
			s.out[i] = 255
		default:
			s.out[i] = uint8(v)
		}
	}
	return s.out
}
