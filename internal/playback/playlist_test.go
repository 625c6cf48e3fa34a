package playback

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSilence(t *testing.T, path string, d time.Duration) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(format.SampleRate.N(d), beep.Silence(-1)), format))
}

func TestPlaylistClampsCursor(t *testing.T) {
	p := NewPlaylist(TrackFromPath("a.mp3"), TrackFromPath("b.mp3"))
	sel, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", sel.Title)

	assert.False(t, p.Previous())
	assert.Equal(t, 0, p.Index())
	assert.True(t, p.Next())
	assert.False(t, p.Next())
	assert.Equal(t, 1, p.Index())
	assert.True(t, p.Previous())

	assert.True(t, p.Select(1))
	assert.False(t, p.Select(5))
	assert.Equal(t, 2, p.Len())
}

func TestEmptyPlaylist(t *testing.T) {
	p := NewPlaylist()
	_, ok := p.Selected()
	assert.False(t, ok)
	assert.False(t, p.Next())
	assert.False(t, p.Previous())

	p.Add(TrackFromPath("/music/Night Drive.flac"))
	sel, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "Night Drive", sel.Title)
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "tone.wav")
	writeSilence(t, good, 2*time.Second)
	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("hello"), 0644))
	missing := filepath.Join(dir, "gone.mp3")

	tracks, err := Probe(context.Background(), []string{bad, good, missing}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "tone", tracks[0].Title)
	assert.Equal(t, 2*time.Second, tracks[0].Duration)
	assert.Contains(t, tracks[0].Description, "8000 Hz")
}

func TestProbeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Probe(ctx, []string{"a.wav"}, zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}
