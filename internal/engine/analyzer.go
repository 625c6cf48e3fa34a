package engine

// Sampler returns the latest byte frequency snapshot, one value per bin.
// The engine only reads it.
type Sampler interface {
	FrequencySample() []uint8
}

// referenceBins is the bin count the band ranges below were chosen for
// (a 1024 point transform).
const referenceBins = 512

type band struct{ lo, hi int }

var (
	bassBand = band{0, 4}
	midBand  = band{100, 300}
	highBand = band{300, 500}
)

// Bands are normalised band energies in [0,1].
type Bands struct {
	Bass, Mid, High float64
}

// Analyzer turns frequency snapshots into bass/mid/high energies.
type Analyzer struct {
	src  Sampler
	bins int
	bass band
	mid  band
	high band
	last Bands
}

// NewAnalyzer scales the reference band ranges to the given bin count.
func NewAnalyzer(src Sampler, bins int) *Analyzer {
	if bins <= 0 {
		bins = referenceBins
	}
	scale := func(b band) band {
		return band{b.lo * bins / referenceBins, b.hi * bins / referenceBins}
	}
	return &Analyzer{
		src:  src,
		bins: bins,
		bass: scale(bassBand),
		mid:  scale(midBand),
		high: scale(highBand),
	}
}

// Sample reads a fresh snapshot and returns its band energies.
// A missing snapshot yields zero energy.
func (a *Analyzer) Sample() Bands {
	var sample []uint8
	if a.src != nil {
		sample = a.src.FrequencySample()
	}
	a.last = Bands{
		Bass: mean(sample, a.bass) / 255,
		Mid:  mean(sample, a.mid) / 255,
		High: mean(sample, a.high) / 255,
	}
	return a.last
}

func (a *Analyzer) Last() Bands { return a.last }

// Push forwards the band energies and play state.
func (a *Analyzer) Push(s Sink, b Bands, playing bool) {
	s.SetUniform(UniformBass, b.Bass)
	s.SetUniform(UniformMid, b.Mid)
	s.SetUniform(UniformHigh, b.High)
	s.SetUniform(UniformPlaying, boolValue(playing))
}

// mean averages sample[b.lo:b.hi]. Bins past the end of a short sample
// count as silence; an empty range averages to zero.
func mean(sample []uint8, b band) float64 {
	width := b.hi - b.lo
	if width <= 0 {
		return 0
	}
	var sum int
	for i := b.lo; i < b.hi && i < len(sample); i++ {
		sum += int(sample[i])
	}
	return float64(sum) / float64(width)
}
