package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestControlsHideWhilePlaying(t *testing.T) {
	masks := 0
	playing := true
	c := newControls(3*time.Second, 200*time.Millisecond, func() { masks++ }, func() bool { return playing })

	c.update(0, 10, 10)
	assert.False(t, c.hidden)
	assert.Zero(t, masks)

	c.update(2999, 10, 10)
	assert.False(t, c.hidden)

	c.update(3000, 10, 10)
	assert.True(t, c.hidden)
	assert.Equal(t, 1, masks)

	// moving again shows the HUD and masks once more
	c.update(3100, 11, 10)
	assert.False(t, c.hidden)
	assert.Equal(t, 2, masks)

	// throttled: the timer keeps its 6100 deadline
	c.update(3150, 12, 10)
	c.update(6099, 12, 10)
	assert.False(t, c.hidden)
	c.update(6100, 12, 10)
	assert.True(t, c.hidden)
	assert.Equal(t, 3, masks)
}

func TestControlsStayWhilePaused(t *testing.T) {
	masks := 0
	playing := false
	c := newControls(3*time.Second, 200*time.Millisecond, func() { masks++ }, func() bool { return playing })

	c.update(0, 5, 5)
	c.update(3000, 5, 5)
	assert.False(t, c.hidden)
	assert.Zero(t, masks)

	// the timer fired while paused, so starting playback alone does not hide
	playing = true
	c.update(9000, 5, 5)
	assert.False(t, c.hidden)
}
