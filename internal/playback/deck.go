// Package playback decodes local audio files and plays them through the
// speaker, exposing position, duration and a sample tap for analysis.
package playback

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog"
)

var ErrNoTrack = errors.New("no track loaded")

// Deck owns the speaker and one decoded track at a time.
type Deck struct {
	log      zerolog.Logger
	ringSize int

	currentFile *os.File
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	tap         *Tap
	track       Track
	initDone    bool

	// set from the speaker goroutine when the track runs out
	finished atomic.Bool
}

func NewDeck(ringSize int, log zerolog.Logger) *Deck {
	return &Deck{ringSize: ringSize, log: log}
}

// decode opens path and picks a decoder from its extension.
func decode(path string) (*os.File, beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, beep.Format{}, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, nil, beep.Format{}, errors.New("unsupported file type: " + ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return f, streamer, format, nil
}

// Load stops whatever is playing and queues track, paused at its start.
// On failure the previous track is released as well, so Loaded reports false.
func (d *Deck) Load(track Track) error {
	f, streamer, format, err := decode(track.Path)
	if err != nil {
		d.unload()
		return err
	}

	t := NewTap(streamer, d.ringSize)
	ctrl := &beep.Ctrl{Streamer: t, Paused: true}

	// (Re)initialize speaker if needed
	bufferSize := format.SampleRate.N(time.Second / 20)
	if !d.initDone {
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			_ = f.Close()
			d.unload()
			return fmt.Errorf("speaker init: %w", err)
		}
		d.initDone = true
	} else if d.format.SampleRate != format.SampleRate {
		// Re-init when sample rate changes
		speaker.Clear()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			_ = f.Close()
			d.initDone = false
			d.closeCurrent()
			return fmt.Errorf("speaker init: %w", err)
		}
	} else {
		speaker.Clear()
	}
	d.closeCurrent()

	d.currentFile = f
	d.streamer = streamer
	d.format = format
	d.ctrl = ctrl
	d.tap = t
	d.track = track
	d.finished.Store(false)

	speaker.Play(d.sequence())
	d.log.Info().Str("track", track.Title).Dur("duration", format.SampleRate.D(streamer.Len())).Msg("track loaded")
	return nil
}

func (d *Deck) sequence() beep.Streamer {
	return beep.Seq(d.ctrl, beep.Callback(func() {
		d.finished.Store(true)
	}))
}

func (d *Deck) Loaded() bool { return d.streamer != nil }

func (d *Deck) Track() Track { return d.track }

// Finished reports whether the loaded track played to its end.
func (d *Deck) Finished() bool { return d.finished.Load() }

// Start resumes playback. A track that already ran out starts over.
func (d *Deck) Start(resumeAt float64) error {
	if d.streamer == nil {
		return ErrNoTrack
	}
	restart := d.finished.Load()

	speaker.Lock()
	var err error
	if restart {
		err = d.seekLocked(0)
	}
	if err == nil && resumeAt > 0 {
		err = d.seekLocked(resumeAt)
	}
	if err == nil {
		d.ctrl.Paused = false
	}
	speaker.Unlock()
	if err != nil {
		return err
	}

	if restart {
		d.finished.Store(false)
		speaker.Play(d.sequence())
	}
	return nil
}

func (d *Deck) Pause() {
	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = true
	speaker.Unlock()
}

func (d *Deck) Rewind() {
	if d.streamer == nil {
		return
	}
	speaker.Lock()
	err := d.seekLocked(0)
	speaker.Unlock()
	if err != nil {
		d.log.Warn().Err(err).Msg("rewind failed")
	}
}

// Seek jumps to sec seconds without changing the pause state. A track that
// ran out is queued again, paused.
func (d *Deck) Seek(sec float64) error {
	if d.streamer == nil {
		return ErrNoTrack
	}
	requeue := d.finished.Load()

	speaker.Lock()
	err := d.seekLocked(sec)
	if err == nil && requeue {
		d.ctrl.Paused = true
	}
	speaker.Unlock()
	if err != nil {
		return err
	}

	if requeue {
		d.finished.Store(false)
		speaker.Play(d.sequence())
	}
	return nil
}

// seekLocked moves to sec seconds. The speaker lock must be held.
func (d *Deck) seekLocked(sec float64) error {
	seekPos := d.format.SampleRate.N(time.Duration(sec * float64(time.Second)))
	if seekPos < 0 {
		seekPos = 0
	}
	if maxPos := d.streamer.Len(); seekPos >= maxPos {
		seekPos = maxPos - 1
	}
	if seekPos < 0 {
		seekPos = 0
	}
	if err := d.streamer.Seek(seekPos); err != nil {
		return fmt.Errorf("seek to %.2fs: %w", sec, err)
	}
	d.tap.Clear()
	return nil
}

func (d *Deck) Position() float64 {
	if d.streamer == nil {
		return 0
	}
	speaker.Lock()
	p := d.streamer.Position()
	speaker.Unlock()
	return d.format.SampleRate.D(p).Seconds()
}

func (d *Deck) Duration() float64 {
	if d.streamer == nil {
		return 0
	}
	return d.format.SampleRate.D(d.streamer.Len()).Seconds()
}

// Mono reads recent samples from the current track's tap.
func (d *Deck) Mono(dst []float64) int {
	if d.tap == nil {
		return 0
	}
	return d.tap.Mono(dst)
}

// Close stops playback and releases the current track.
func (d *Deck) Close() { d.unload() }

func (d *Deck) unload() {
	if d.initDone {
		speaker.Clear()
	}
	d.closeCurrent()
}

func (d *Deck) closeCurrent() {
	if d.streamer != nil {
		_ = d.streamer.Close()
		d.streamer = nil
	}
	if d.currentFile != nil {
		_ = d.currentFile.Close()
		d.currentFile = nil
	}
	d.ctrl = nil
	d.tap = nil
	d.track = Track{}
	d.finished.Store(false)
}
