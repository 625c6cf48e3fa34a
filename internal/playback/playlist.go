package playback

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Track struct {
	Path        string
	Title       string
	Description string
	Duration    time.Duration
}

// TrackFromPath builds a track with a title taken from the file name.
func TrackFromPath(path string) Track {
	base := filepath.Base(path)
	return Track{
		Path:  path,
		Title: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// Playlist is an ordered list of tracks with a clamped selection cursor.
type Playlist struct {
	tracks   []Track
	selected int
}

func NewPlaylist(tracks ...Track) *Playlist {
	return &Playlist{tracks: tracks}
}

func (p *Playlist) Add(tracks ...Track) { p.tracks = append(p.tracks, tracks...) }

func (p *Playlist) Len() int { return len(p.tracks) }

func (p *Playlist) Index() int { return p.selected }

// Selected returns the current track, if any.
func (p *Playlist) Selected() (Track, bool) {
	if p.selected < 0 || p.selected >= len(p.tracks) {
		return Track{}, false
	}
	return p.tracks[p.selected], true
}

// Next moves the cursor forward, stopping at the last track. It reports
// whether the selection changed.
func (p *Playlist) Next() bool { return p.move(1) }

// Previous moves the cursor back, stopping at the first track.
func (p *Playlist) Previous() bool { return p.move(-1) }

// Select jumps to index i when it is in range.
func (p *Playlist) Select(i int) bool {
	if i < 0 || i >= len(p.tracks) || i == p.selected {
		return false
	}
	p.selected = i
	return true
}

func (p *Playlist) move(step int) bool {
	if len(p.tracks) == 0 {
		return false
	}
	i := p.selected + step
	if i >= len(p.tracks) {
		i = len(p.tracks) - 1
	}
	if i < 0 {
		i = 0
	}
	changed := i != p.selected
	p.selected = i
	return changed
}

// Probe decodes the header of every path concurrently to fill in durations
// and descriptions. Files that fail to decode are logged and left out.
func Probe(ctx context.Context, paths []string, log zerolog.Logger) ([]Track, error) {
	found := make([]*Track, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := probeOne(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("skipping track")
				return nil
			}
			found[i] = &t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(paths))
	for _, t := range found {
		if t != nil {
			tracks = append(tracks, *t)
		}
	}
	return tracks, nil
}

func probeOne(path string) (Track, error) {
	f, streamer, format, err := decode(path)
	if err != nil {
		return Track{}, err
	}
	defer f.Close()
	defer streamer.Close()

	t := TrackFromPath(path)
	t.Duration = format.SampleRate.D(streamer.Len())
	t.Description = fmt.Sprintf("%s · %d Hz · %d ch", strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."), int(format.SampleRate), format.NumChannels)
	return t, nil
}
