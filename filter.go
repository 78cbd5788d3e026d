package fmsynth

import "math"

type FilterKind int

const (
	Lowpass FilterKind = iota
	Highpass
)

// Filter is a one-pole RC filter. The cutoff may change every block; the
// state carries over so retuning does not click.
type Filter struct {
	kind       FilterKind
	sampleRate float64
	cutoffFreq float64
	alpha      float64

	prevRaw      float64
	prevFiltered float64
}

func NewLowPassFilter(sampleRate float64) *Filter {
	return newFilter(Lowpass, sampleRate)
}

func NewHighPassFilter(sampleRate float64) *Filter {
	return newFilter(Highpass, sampleRate)
}

func newFilter(kind FilterKind, sampleRate float64) *Filter {
	f := &Filter{kind: kind, sampleRate: sampleRate}
	f.SetCutoff(sampleRate / 4)
	return f
}

func (f *Filter) Kind() FilterKind {
	return f.kind
}

func (f *Filter) Cutoff() float64 {
	return f.cutoffFreq
}

func (f *Filter) SetCutoff(cutoff float64) {
	if math.IsNaN(cutoff) || f.sampleRate <= 0 {
		return
	}
	nyquist := f.sampleRate / 2
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff > nyquist {
		cutoff = nyquist
	}
	if cutoff == f.cutoffFreq {
		return
	}
	f.cutoffFreq = cutoff
	rc := 1.0 / (2 * math.Pi * cutoff)
	dt := 1.0 / f.sampleRate
	if f.kind == Highpass {
		f.alpha = rc / (rc + dt)
	} else {
		f.alpha = dt / (rc + dt)
	}
}

func (f *Filter) Reset() {
	f.prevRaw = 0
	f.prevFiltered = 0
}

func (f *Filter) Tick(cur float64) float64 {
	var fv float64
	if f.kind == Highpass {
		fv = f.alpha * (f.prevFiltered + cur - f.prevRaw)
	} else {
		fv = f.alpha*cur + (1-f.alpha)*f.prevFiltered
	}
	f.prevRaw = cur
	f.prevFiltered = fv
	return fv
}
