package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/also-radio/internal/engine"
)

var shaderSrc = []byte(`//kage:unit pixels

package main

var Resolution vec2
var Bass float
var Mid float
var High float
var Playing float
var Distort float
var Distort2 float
var Distort3 float
var Distort4 float
var BallSpeed float
var CurrentTime float
var TOD float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	uv := (dstPos.xy - imageDstOrigin()) / Resolution
	p := uv*2 - 1
	p = vec2(p.x*Resolution.x/Resolution.y, p.y)

	wave := vec2(sin(p.y*12+CurrentTime*3), cos(p.x*12+CurrentTime*3))
	p += Distort2 * 0.08 * wave
	p = mix(p, p*(1+0.3*sin(length(p)*8-CurrentTime*4)), Distort3)

	t := CurrentTime * BallSpeed
	ball := vec2(cos(t)*0.6, sin(t*1.3)*0.35)
	r := 0.18 + Bass*0.2
	d := length(p - ball)
	glow := 1 - smoothstep(r*0.6, r, d)
	glow += 0.04 / (d + 0.05) * (0.3 + High)

	night := vec3(0.02, 0.03, 0.09)
	day := vec3(0.45, 0.65, 0.95)
	sky := mix(night, day, TOD)
	horizon := 1 - smoothstep(-0.6, 0.2, p.y)
	col := mix(sky, vec3(1.0, 0.55, 0.3)*TOD, horizon*0.5*Mid)

	ballCol := mix(vec3(1.0, 0.85, 0.4), vec3(0.9, 0.2, 0.6), Distort)
	col += ballCol * glow

	shimmer := 0.5 + 0.5*sin(uv.y*200+CurrentTime*20)
	col = mix(col, col.bgr, Distort4*0.7*shimmer)

	// logo, if one is bound; unbound images read as transparent
	tex := imageSrc0At(srcPos)
	col = mix(col, tex.rgb, tex.a*0.5*(1-Distort))
	col *= 0.35 + 0.65*max(Playing, 0.3)
	return vec4(col, 1)
}
`)

// shaderUniforms maps engine uniform names onto the shader's variables.
var shaderUniforms = map[string]string{
	engine.UniformBass:        "Bass",
	engine.UniformMid:         "Mid",
	engine.UniformHigh:        "High",
	engine.UniformPlaying:     "Playing",
	engine.UniformDistort:     "Distort",
	engine.UniformDistort2:    "Distort2",
	engine.UniformDistort3:    "Distort3",
	engine.UniformDistort4:    "Distort4",
	engine.UniformBallSpeed:   "BallSpeed",
	engine.UniformCurrentTime: "CurrentTime",
	engine.UniformTOD:         "TOD",
}

// uniformTable is the engine.Sink that feeds the shader. Values land in the
// map handed to DrawRectShader on the next draw.
type uniformTable struct {
	values map[string]any
}

func newUniformTable() *uniformTable {
	return &uniformTable{values: map[string]any{}}
}

// SetUniform drops names the shader does not declare.
func (u *uniformTable) SetUniform(name string, value float64) {
	v, ok := shaderUniforms[name]
	if !ok {
		return
	}
	u.values[v] = float32(value)
}

func (u *uniformTable) setResolution(w, h int) {
	u.values["Resolution"] = []float32{float32(w), float32(h)}
}

func compileShader() (*ebiten.Shader, error) {
	return ebiten.NewShader(shaderSrc)
}
