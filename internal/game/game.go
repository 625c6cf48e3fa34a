// Package game hosts the windowed player: ebiten drives the tick, draws the
// shader and HUD, and handles input.
package game

import (
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/iburimskiy/also-radio/internal/config"
	"github.com/iburimskiy/also-radio/internal/engine"
	"github.com/iburimskiy/also-radio/internal/playback"
	"github.com/iburimskiy/also-radio/internal/timing"
)

type Game struct {
	cfg config.Config
	log zerolog.Logger

	engine   *engine.Engine
	deck     *playback.Deck
	spectrum *playback.Spectrum
	playlist *playback.Playlist

	shader   *ebiten.Shader
	uniforms *uniformTable
	surface  *surface
	clock    tickClock

	controls   controls
	dialog     chan dialogResult
	dialogOpen bool

	// input edge detection
	prevKey map[ebiten.Key]bool

	buttonHovered bool
	buttonPressed bool
	seeking       bool
	seekThrottle  *timing.Throttle
	showInfo      bool
	lastErr       error
}

// New compiles the shader and wires the engine to the deck, spectrum and
// render surface.
func New(cfg config.Config, deck *playback.Deck, spectrum *playback.Spectrum, playlist *playback.Playlist, log zerolog.Logger) (*Game, error) {
	shader, err := compileShader()
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	var logo *ebiten.Image
	if cfg.Texture != "" {
		img, _, err := ebitenutil.NewImageFromFile(cfg.Texture)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Texture).Msg("texture not loaded")
		} else {
			logo = img
		}
	}

	g := &Game{
		cfg:      cfg,
		log:      log,
		deck:     deck,
		spectrum: spectrum,
		playlist: playlist,
		shader:   shader,
		uniforms: newUniformTable(),
		dialog:   make(chan dialogResult, 1),
		prevKey:  map[ebiten.Key]bool{},

		seekThrottle: timing.NewThrottle(config.SeekCooldown),
	}
	g.surface = newSurface(int(float64(cfg.Width)*config.PixelRatio), int(float64(cfg.Height)*config.PixelRatio),
		logo, log.With().Str("component", "surface").Logger())
	g.engine = engine.New(engine.Options{
		Config:  cfg,
		Backend: deck,
		Sampler: spectrum,
		Sink:    g.uniforms,
		Resizer: g.surface,
		Log:     log,
	})
	g.controls = newControls(cfg.HideControlsAfter, config.MouseThrottle, g.engine.MaskMeasurement, g.engine.Clock.IsPlaying)
	g.engine.Clock.OnChange(func(e engine.ClockEvent) {
		if e != engine.EventPlay {
			g.controls.hidden = false
		}
	})
	g.engine.PushInitial()
	g.loadSelected()
	return g, nil
}

// tickClock reports milliseconds since its first reading, so the first
// frame lands on the origin and is left out of the fps average.
type tickClock struct {
	start time.Time
}

func (c *tickClock) at(t time.Time) float64 {
	if c.start.IsZero() {
		c.start = t
	}
	return float64(t.Sub(c.start)) / float64(time.Millisecond)
}

func (g *Game) now() float64 { return g.clock.at(time.Now()) }

func (g *Game) Update() error {
	now := g.now()
	g.engine.Tick(now)

	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	g.pollDialog()
	g.updateControls(now)

	mouseX, mouseY := ebiten.CursorPosition()
	g.buttonHovered = mouseX >= config.ButtonX && mouseX <= config.ButtonX+config.ButtonWidth &&
		mouseY >= config.ButtonY && mouseY <= config.ButtonY+config.ButtonHeight
	if g.buttonHovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.buttonPressed = true
	}

	// Progress bar click and drag
	bar := progressBar(g.Layout(0, 0))
	if d := g.engine.Display(); d.Duration > 0 && !g.controls.hidden {
		if bar.contains(mouseX, mouseY) && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.seeking = true
			g.seekTo(now, bar.fraction(mouseX), d.Duration)
		} else if g.seeking && math.Abs(bar.fraction(mouseX)-d.Percent/100) > config.SeekDragThreshold {
			g.seekTo(now, bar.fraction(mouseX), d.Duration)
		}
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.buttonPressed && g.buttonHovered && !g.controls.hidden {
			g.togglePlay()
		}
		g.buttonPressed = false
		g.seeking = false
	}

	if justPressed(ebiten.KeySpace) {
		g.togglePlay()
	}
	if justPressed(ebiten.KeyN) {
		g.step(g.playlist.Next)
	}
	if justPressed(ebiten.KeyP) {
		g.step(g.playlist.Previous)
	}
	if justPressed(ebiten.KeyI) {
		g.showInfo = !g.showInfo
	}
	if justPressed(ebiten.KeyO) {
		g.openDialog()
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	return nil
}

// togglePlay starts from the top when stopped and resumes in place otherwise.
func (g *Game) togglePlay() {
	c := g.engine.Clock
	if c.IsStopped() {
		c.Play(0)
		return
	}
	c.Play(c.Position())
}

// seekTo jumps to frac of the track, at most once per cooldown.
func (g *Game) seekTo(now, frac, duration float64) {
	if !g.seekThrottle.Allow(now) {
		return
	}
	g.engine.Clock.Seek(seekSeconds(frac, duration))
}

// step moves through the playlist. Playback always stops, like a deck's
// skip buttons; the new track is loaded only if the selection moved. A
// track that fails to load puts the cursor back on the previous one.
func (g *Game) step(move func() bool) {
	prev := g.playlist.Index()
	changed := move()
	g.engine.Clock.Stop()
	if !changed || g.loadSelected() {
		return
	}
	err := g.lastErr
	if g.playlist.Select(prev) {
		g.loadSelected()
	}
	g.lastErr = err
}

// loadSelected puts the playlist selection into the deck. It reports
// whether the deck now holds it.
func (g *Game) loadSelected() bool {
	track, ok := g.playlist.Selected()
	if !ok {
		return false
	}
	defer g.engine.Clock.TrackChanged()
	if err := g.deck.Load(track); err != nil {
		g.lastErr = err
		g.log.Warn().Err(err).Str("path", track.Path).Msg("load failed")
		return false
	}
	g.spectrum.Reset()
	g.lastErr = nil
	return true
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.render(g.shader, g.uniforms)
	g.surface.drawTo(screen)
	g.drawHUD(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
