package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/also-radio/internal/config"
)

func (g *Game) drawHUD(screen *ebiten.Image) {
	if g.controls.hidden {
		return
	}
	g.drawButton(screen)
	g.drawTrackInfo(screen)
	g.drawProgressBar(screen)

	status := "Space: play/pause  N/P: next/previous  I: info  O: open  Esc/Q: quit"
	if g.playlist.Len() == 0 {
		status = "Press O to open audio files"
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}

func (g *Game) drawButton(screen *ebiten.Image) {
	// Button background
	var bgColor color.Color
	if g.buttonPressed {
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255} // Pressed
	} else if g.buttonHovered {
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255} // Hovered
	} else {
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255} // Normal
	}

	vector.DrawFilledRect(screen, float32(config.ButtonX), float32(config.ButtonY), float32(config.ButtonWidth), float32(config.ButtonHeight), bgColor, false)

	borderColor := color.RGBA{R: 150, G: 170, B: 200, A: 255}
	vector.StrokeRect(screen, float32(config.ButtonX), float32(config.ButtonY), float32(config.ButtonWidth), float32(config.ButtonHeight), 2, borderColor, false)

	text := "Play"
	if g.engine.Clock.IsPlaying() {
		text = "Pause"
	}
	textWidth := len(text) * 6
	textX := config.ButtonX + (config.ButtonWidth-textWidth)/2
	textY := config.ButtonY + (config.ButtonHeight-16)/2
	ebitenutil.DebugPrintAt(screen, text, textX, textY)
}

// drawTrackInfo shows what the deck holds, falling back to the playlist
// selection when nothing is loaded.
func (g *Game) drawTrackInfo(screen *ebiten.Image) {
	track := g.deck.Track()
	if !g.deck.Loaded() {
		sel, ok := g.playlist.Selected()
		if !ok {
			return
		}
		track = sel
	}
	x := config.ButtonX + config.ButtonWidth + 20
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d/%d  %s", g.playlist.Index()+1, g.playlist.Len(), track.Title), x, config.ButtonY)
	ebitenutil.DebugPrintAt(screen, formatDuration(track.Duration), x, config.ButtonY+16)
	if g.showInfo && track.Description != "" {
		ebitenutil.DebugPrintAt(screen, track.Description, x, config.ButtonY+32)
	}
}

// barRect is the progress bar's area in layout pixels.
type barRect struct {
	x, y, w, h int
}

func progressBar(w, h int) barRect {
	return barRect{x: 20, y: h - 60, w: w - 40, h: 12}
}

func (r barRect) contains(x, y int) bool {
	return x >= r.x && x <= r.x+r.w && y >= r.y && y <= r.y+r.h
}

// fraction maps a cursor x onto [0,1] along the bar.
func (r barRect) fraction(x int) float64 {
	if r.w <= 0 {
		return 0
	}
	return clamp01(float64(x-r.x) / float64(r.w))
}

// seekSeconds turns a bar fraction into a playback offset.
func seekSeconds(frac, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return clamp01(frac) * duration
}

func (g *Game) drawProgressBar(screen *ebiten.Image) {
	d := g.engine.Display()
	if d.Duration == 0 {
		return
	}

	bar := progressBar(g.Layout(0, 0))
	progress := clamp01(d.Percent / 100)

	border := color.RGBA{R: 70, G: 80, B: 100, A: 255}
	if g.seeking {
		border = color.RGBA{R: 150, G: 170, B: 200, A: 255}
	}
	vector.DrawFilledRect(screen, float32(bar.x), float32(bar.y), float32(bar.w), float32(bar.h), color.RGBA{R: 25, G: 30, B: 40, A: 200}, false)
	vector.StrokeRect(screen, float32(bar.x), float32(bar.y), float32(bar.w), float32(bar.h), 2, border, false)

	if progress > 0 {
		fillWidth := progress * float64(bar.w)
		// hue walks with the time of day
		hue := 220 - 180*g.engine.Snapshot().TOD
		r, gv, b := hsvToRgb(hue, 0.8, 0.9)
		vector.DrawFilledRect(screen, float32(bar.x), float32(bar.y), float32(fillWidth), float32(bar.h), color.RGBA{R: r, G: gv, B: b, A: 180}, false)
	}

	// Playhead
	indicatorX := float64(bar.x) + progress*float64(bar.w)
	vector.DrawFilledCircle(screen, float32(indicatorX), float32(bar.y+bar.h/2), 6, color.RGBA{R: 255, G: 255, B: 255, A: 255}, false)

	ebitenutil.DebugPrintAt(screen, formatSeconds(d.Position), bar.x, bar.y+bar.h+5)
	total := formatSeconds(d.Duration)
	ebitenutil.DebugPrintAt(screen, total, bar.x+bar.w-len(total)*6, bar.y+bar.h+5)
}
