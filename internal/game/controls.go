package game

import (
	"context"
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/also-radio/internal/playback"
	"github.com/iburimskiy/also-radio/internal/timing"
)

// controls tracks whether the HUD is shown. Mouse movement shows it, and it
// hides again after a quiet period while playing. Showing or hiding masks
// frame rate measurement through mask.
type controls struct {
	hidden    bool
	hide      timing.Deferred
	throttle  *timing.Throttle
	after     time.Duration
	lastMouse [2]int

	mask    func()
	playing func() bool
}

func newControls(after, throttle time.Duration, mask func(), playing func() bool) controls {
	return controls{
		after:    after,
		throttle: timing.NewThrottle(throttle),
		mask:     mask,
		playing:  playing,
	}
}

// moved restarts the hide timer and brings the HUD back.
func (c *controls) moved(now float64) {
	c.hide.Schedule(now, c.after)
	if c.hidden {
		// the HUD fade would otherwise count against the frame rate
		c.mask()
		c.hidden = false
	}
}

// update feeds the cursor position at now and hides the HUD once the timer
// runs out during playback.
func (c *controls) update(now float64, x, y int) {
	if pos := [2]int{x, y}; pos != c.lastMouse {
		c.lastMouse = pos
		if c.throttle.Allow(now) {
			c.moved(now)
		}
	}
	if c.hide.Fire(now) && c.playing() {
		c.mask()
		c.hidden = true
	}
}

func (g *Game) updateControls(now float64) {
	x, y := ebiten.CursorPosition()
	g.controls.update(now, x, y)
}

type dialogResult struct {
	tracks []playback.Track
	err    error
}

// openDialog asks for audio files off the game goroutine; the result is
// picked up by pollDialog.
func (g *Game) openDialog() {
	if g.dialogOpen {
		return
	}
	g.dialogOpen = true
	go func() {
		paths, err := zenity.SelectFileMultiple(
			zenity.Title("Open Audio Files"),
			zenity.FileFilters{{
				Name:     "Audio",
				Patterns: []string{"*.wav", "*.mp3", "*.flac"},
			}},
		)
		if err != nil {
			if errors.Is(err, zenity.ErrCanceled) {
				err = nil
			}
			g.dialog <- dialogResult{err: err}
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tracks, err := playback.Probe(ctx, paths, g.log)
		g.dialog <- dialogResult{tracks: tracks, err: err}
	}()
}

func (g *Game) pollDialog() {
	select {
	case res := <-g.dialog:
		g.dialogOpen = false
		if res.err != nil {
			g.lastErr = res.err
			g.log.Warn().Err(res.err).Msg("open dialog failed")
			return
		}
		if len(res.tracks) == 0 {
			return
		}
		first := g.playlist.Len() == 0
		g.playlist.Add(res.tracks...)
		g.log.Info().Int("added", len(res.tracks)).Int("total", g.playlist.Len()).Msg("tracks added")
		if first {
			g.loadSelected()
		}
	default:
	}
}
