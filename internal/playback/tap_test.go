package playback

import (
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
)

// ramp streams stereo samples whose left channel counts up from 1.
func ramp() beep.Streamer {
	next := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			next++
			samples[i] = [2]float64{next, next + 2}
		}
		return len(samples), true
	})
}

func TestTapMonoChronological(t *testing.T) {
	tap := NewTap(ramp(), 8)
	buf := make([][2]float64, 5)
	tap.Stream(buf)
	tap.Stream(buf) // wraps the ring

	dst := make([]float64, 4)
	assert.Equal(t, 4, tap.Mono(dst))
	// last four left values are 7..10, mono adds 1
	assert.Equal(t, []float64{8, 9, 10, 11}, dst)
}

func TestTapMonoLongerThanRing(t *testing.T) {
	tap := NewTap(ramp(), 4)
	tap.Stream(make([][2]float64, 6))

	dst := make([]float64, 10)
	assert.Equal(t, 4, tap.Mono(dst))
	assert.Equal(t, []float64{4, 5, 6, 7}, dst[:4])
}

func TestTapClear(t *testing.T) {
	tap := NewTap(ramp(), 4)
	tap.Stream(make([][2]float64, 3))
	tap.Clear()

	dst := make([]float64, 4)
	tap.Mono(dst)
	assert.Equal(t, []float64{0, 0, 0, 0}, dst)
	assert.NoError(t, tap.Err())
}
