package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512

	// Render surface is allocated at this multiple of the window size.
	PixelRatio = 2.0

	VisualRingSize = 8192

	// Button dimensions
	ButtonWidth  = 120
	ButtonHeight = 40
	ButtonX      = 20
	ButtonY      = 50

	// Animation parameters
	BallAcc         = 0.01
	BallSpeedInit   = 0.2
	BallSpeedNormal = 0.7
	BallSpeedFast   = 1.8
	EnvelopeRate    = 0.01
	ProgressRate    = 0.006

	// Frame control
	FPSLimit         = 60
	FrameEpsilonMS   = 0.1
	MinFrameRate     = 45
	NumAverageFrames = 20
	MaxOffenses      = 3
	ShrinkFactor     = 1.2

	// Analyser
	FFTSize         = 1024
	SmoothingFactor = 0.8
	MinDecibels     = -100.0
	MaxDecibels     = -30.0

	// UI timers
	MeasureMask       = 3 * time.Second
	HideControlsAfter = 3 * time.Second
	MouseThrottle     = 200 * time.Millisecond

	// Progress bar seeking
	SeekCooldown      = 50 * time.Millisecond
	SeekDragThreshold = 0.01
)

// Config holds the tunables that can be set from a YAML file or flags.
type Config struct {
	LogLevel string `yaml:"log_level"`
	Headless bool   `yaml:"headless"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	FPSLimit     float64 `yaml:"fps_limit"`
	MinFrameRate float64 `yaml:"min_frame_rate"`
	AverageOver  int     `yaml:"average_frames"`
	MaxOffenses  int     `yaml:"max_offenses"`
	ShrinkFactor float64 `yaml:"shrink_factor"`

	FFTSize   int     `yaml:"fft_size"`
	Smoothing float64 `yaml:"smoothing"`

	MeasureMask       time.Duration `yaml:"measure_mask"`
	HideControlsAfter time.Duration `yaml:"hide_controls_after"`

	Texture string   `yaml:"texture,omitempty"`
	Tracks  []string `yaml:"tracks,omitempty"`
}

// Default returns the configuration the player ships with.
func Default() Config {
	return Config{
		LogLevel:          "info",
		Width:             WindowWidth,
		Height:            WindowHeight,
		FPSLimit:          FPSLimit,
		MinFrameRate:      MinFrameRate,
		AverageOver:       NumAverageFrames,
		MaxOffenses:       MaxOffenses,
		ShrinkFactor:      ShrinkFactor,
		FFTSize:           FFTSize,
		Smoothing:         SmoothingFactor,
		MeasureMask:       MeasureMask,
		HideControlsAfter: HideControlsAfter,
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Merge overlays the non-zero fields of o onto c.
func (c *Config) Merge(o *Config) {
	if o == nil {
		return
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.Headless {
		c.Headless = true
	}
	if o.Width > 0 {
		c.Width = o.Width
	}
	if o.Height > 0 {
		c.Height = o.Height
	}
	if o.FPSLimit > 0 {
		c.FPSLimit = o.FPSLimit
	}
	if o.MinFrameRate > 0 {
		c.MinFrameRate = o.MinFrameRate
	}
	if o.AverageOver > 0 {
		c.AverageOver = o.AverageOver
	}
	if o.MaxOffenses > 0 {
		c.MaxOffenses = o.MaxOffenses
	}
	if o.ShrinkFactor > 1 {
		c.ShrinkFactor = o.ShrinkFactor
	}
	if o.FFTSize > 0 {
		c.FFTSize = o.FFTSize
	}
	if o.Smoothing > 0 {
		c.Smoothing = o.Smoothing
	}
	if o.MeasureMask > 0 {
		c.MeasureMask = o.MeasureMask
	}
	if o.HideControlsAfter > 0 {
		c.HideControlsAfter = o.HideControlsAfter
	}
	if o.Texture != "" {
		c.Texture = o.Texture
	}
	c.Tracks = append(c.Tracks, o.Tracks...)
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	case c.FPSLimit <= 0:
		return fmt.Errorf("fps_limit must be positive, got %v", c.FPSLimit)
	case c.AverageOver <= 0:
		return fmt.Errorf("average_frames must be positive, got %d", c.AverageOver)
	case c.ShrinkFactor <= 1:
		return fmt.Errorf("shrink_factor must be greater than 1, got %v", c.ShrinkFactor)
	case c.FFTSize < 32 || c.FFTSize&(c.FFTSize-1) != 0:
		return fmt.Errorf("fft_size must be a power of two >= 32, got %d", c.FFTSize)
	case c.Smoothing < 0 || c.Smoothing >= 1:
		return fmt.Errorf("smoothing must be in [0,1), got %v", c.Smoothing)
	}
	return nil
}
