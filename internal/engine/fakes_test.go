package engine

import "errors"

type fakeBackend struct {
	loaded   bool
	playing  bool
	finished bool
	failNext bool

	position float64
	duration float64

	starts  []float64
	seeks   []float64
	rewinds int
}

func (b *fakeBackend) Loaded() bool { return b.loaded }

func (b *fakeBackend) Start(resumeAt float64) error {
	if b.failNext {
		b.failNext = false
		return errors.New("device busy")
	}
	b.starts = append(b.starts, resumeAt)
	if resumeAt > 0 {
		b.position = resumeAt
	}
	b.playing = true
	return nil
}

func (b *fakeBackend) Pause() { b.playing = false }

func (b *fakeBackend) Rewind() {
	b.rewinds++
	b.position = 0
}

func (b *fakeBackend) Seek(sec float64) error {
	b.seeks = append(b.seeks, sec)
	b.position = sec
	return nil
}

func (b *fakeBackend) Position() float64 { return b.position }
func (b *fakeBackend) Duration() float64 { return b.duration }
func (b *fakeBackend) Finished() bool    { return b.finished }

type fakeSampler struct {
	sample []uint8
}

func (s *fakeSampler) FrequencySample() []uint8 { return s.sample }

type fakeResizer struct {
	calls [][2]int
}

func (r *fakeResizer) Resize(w, h int) { r.calls = append(r.calls, [2]int{w, h}) }
