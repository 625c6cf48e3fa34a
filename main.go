package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iburimskiy/also-radio/internal/config"
	"github.com/iburimskiy/also-radio/internal/engine"
	"github.com/iburimskiy/also-radio/internal/game"
	"github.com/iburimskiy/also-radio/internal/playback"
)

func main() {
	def := config.Default()
	var (
		configPath = flag.String("config", "", "path to config.yaml")
		logLevel   = flag.String("log-level", def.LogLevel, "log level: trace | debug | info | warn | error")
		headless   = flag.Bool("headless", false, "run the engine without a window")
		width      = flag.Int("width", def.Width, "window width")
		height     = flag.Int("height", def.Height, "window height")
		fpsLimit   = flag.Float64("fps-limit", def.FPSLimit, "animation updates per second ceiling")
		fftSize    = flag.Int("fft-size", def.FFTSize, "analyser transform size (power of two)")
		texture    = flag.String("texture", "", "optional logo image bound to the shader")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := def
	cfg.LogLevel = *logLevel
	cfg.Headless = *headless
	cfg.Width, cfg.Height = *width, *height
	cfg.FPSLimit = *fpsLimit
	cfg.FFTSize = *fftSize
	cfg.Texture = *texture
	cfg.Tracks = flag.Args()

	// ---- Config file overrides flags where set ----
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		} else {
			cfg.Merge(c)
		}
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracks, err := playback.Probe(ctx, cfg.Tracks, log.With().Str("component", "probe").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("probing tracks")
	}
	playlist := playback.NewPlaylist(tracks...)
	log.Info().Int("tracks", playlist.Len()).Msg("playlist ready")

	deck := playback.NewDeck(config.VisualRingSize, log.With().Str("component", "deck").Logger())
	defer deck.Close()
	spectrum := playback.NewSpectrum(deck, cfg.FFTSize, cfg.Smoothing, config.MinDecibels, config.MaxDecibels)

	if cfg.Headless {
		if err := runHeadless(ctx, cfg, deck, spectrum, playlist); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("headless run failed")
		}
		return
	}

	g, err := game.New(cfg, deck, spectrum, playlist, log.With().Str("component", "game").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("starting player")
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("also radio")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// one Update per displayed frame; the engine does its own limiting
	ebiten.SetTPS(ebiten.SyncWithFPS)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error().Err(err).Msg("player stopped")
		deck.Close()
		os.Exit(1)
	}
}

// runHeadless drives the engine from a wall clock ticker, logging uniforms
// at trace level, until ctx is canceled.
func runHeadless(ctx context.Context, cfg config.Config, deck *playback.Deck, spectrum *playback.Spectrum, playlist *playback.Playlist) error {
	logger := log.With().Str("component", "engine").Logger()
	e := engine.New(engine.Options{
		Config:  cfg,
		Backend: deck,
		Sampler: spectrum,
		Sink:    engine.LogSink{Log: logger},
		Resizer: resizeLogger{log: logger},
		Log:     logger,
	})
	e.PushInitial()

	// skip forward past tracks that fail to load
	advance := func() {
		for playlist.Next() {
			if loadAndPlay(e, deck, spectrum, playlist) {
				return
			}
		}
	}
	e.Clock.OnChange(func(ev engine.ClockEvent) {
		if ev == engine.EventStop && deck.Finished() {
			advance()
		}
	})
	if !loadAndPlay(e, deck, spectrum, playlist) {
		advance()
	}

	return e.Run(ctx, engine.Ticker(ctx, time.Second/60))
}

// loadAndPlay starts the playlist selection from the top. It reports whether
// the track loaded.
func loadAndPlay(e *engine.Engine, deck *playback.Deck, spectrum *playback.Spectrum, playlist *playback.Playlist) bool {
	track, ok := playlist.Selected()
	if !ok {
		log.Warn().Msg("nothing to play")
		return false
	}
	err := deck.Load(track)
	e.Clock.TrackChanged()
	if err != nil {
		log.Warn().Err(err).Str("path", track.Path).Msg("load failed")
		return false
	}
	spectrum.Reset()
	e.Clock.Play(0)
	return true
}

type resizeLogger struct {
	log zerolog.Logger
}

func (r resizeLogger) Resize(w, h int) {
	r.log.Info().Int("width", w).Int("height", h).Msg("render surface would shrink")
}
