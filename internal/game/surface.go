package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// surface is the offscreen image the shader renders into. It is scaled up
// to the window, so shrinking it trades sharpness for frame time.
type surface struct {
	img     *ebiten.Image
	texture *ebiten.Image
	logo    *ebiten.Image
	log     zerolog.Logger
}

func newSurface(w, h int, logo *ebiten.Image, log zerolog.Logger) *surface {
	s := &surface{logo: logo, log: log}
	s.Resize(w, h)
	return s
}

// Resize reallocates the render target. Sizes below one pixel are held at one.
func (s *surface) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if s.img != nil {
		if b := s.img.Bounds(); b.Dx() == w && b.Dy() == h {
			return
		}
		s.img.Deallocate()
	}
	s.img = ebiten.NewImage(w, h)
	s.resampleLogo(w, h)
	s.log.Debug().Int("width", w).Int("height", h).Msg("render surface resized")
}

// resampleLogo stretches the logo to the surface size, since shader source
// images must match the rectangle they are drawn with.
func (s *surface) resampleLogo(w, h int) {
	if s.logo == nil {
		return
	}
	if s.texture != nil {
		s.texture.Deallocate()
	}
	s.texture = ebiten.NewImage(w, h)
	b := s.logo.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	op.Filter = ebiten.FilterLinear
	s.texture.DrawImage(s.logo, op)
}

func (s *surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *surface) render(shader *ebiten.Shader, u *uniformTable) {
	w, h := s.Size()
	u.setResolution(w, h)
	op := &ebiten.DrawRectShaderOptions{Uniforms: u.values}
	if s.texture != nil {
		op.Images[0] = s.texture
	}
	s.img.DrawRectShader(w, h, shader, op)
}

// drawTo stretches the surface over the whole screen.
func (s *surface) drawTo(screen *ebiten.Image) {
	w, h := s.Size()
	sb := screen.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sb.Dx())/float64(w), float64(sb.Dy())/float64(h))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(s.img, op)
}
