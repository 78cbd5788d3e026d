package fmsynth

import "math"

// Oscillator is a phase accumulating signal source. Tick returns the sample
// at the current phase and then advances it by one sample period.
type Oscillator interface {
	Tick() float64
	SetFrequency(hz float64)
	Reset()
}

var (
	_ Oscillator = (*Sine)(nil)
	_ Oscillator = (*Saw)(nil)
	_ Oscillator = (*WavetableOsc)(nil)
)

// phasor keeps a normalized phase in [0,1).
type phasor struct {
	sampleRate float64
	frequency  float64
	phase      float64
}

func (p *phasor) SetFrequency(hz float64) {
	if math.IsNaN(hz) || math.IsInf(hz, 0) {
		return
	}
	p.frequency = hz
}

func (p *phasor) Frequency() float64 {
	return p.frequency
}

func (p *phasor) Reset() {
	p.phase = 0
}

func (p *phasor) advance() {
	if p.sampleRate <= 0 {
		return
	}
	_, p.phase = math.Modf(p.phase + p.frequency/p.sampleRate)
	if p.phase < 0 {
		p.phase++
	}
}

type Sine struct {
	phasor
}

func NewSine(sampleRate float64) *Sine {
	return &Sine{phasor{sampleRate: sampleRate}}
}

func sineOsc(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

func (s *Sine) Tick() float64 {
	v := sineOsc(s.phase)
	s.advance()
	return v
}

const sawHarmonics = 8

// Saw is an additive sawtooth: the first eight harmonics of a sine series
// with 1/n amplitudes, all locked to one fundamental phase.
type Saw struct {
	phasor
}

func NewSaw(sampleRate float64) *Saw {
	return &Saw{phasor{sampleRate: sampleRate}}
}

func sawOsc(phase float64) float64 {
	v := 0.0
	for n := 1; n <= sawHarmonics; n++ {
		_, ph := math.Modf(phase * float64(n))
		v += sineOsc(ph) / float64(n)
	}
	return v
}

func (s *Saw) Tick() float64 {
	v := sawOsc(s.phase)
	s.advance()
	return v
}

// WavetableOsc reads a shared Wavetable cyclically with linear
// interpolation. The table is never written through the oscillator.
type WavetableOsc struct {
	sampleRate float64
	frequency  float64
	table      *Wavetable
	pos        float64
}

func NewWavetableOsc(sampleRate float64, table *Wavetable) *WavetableOsc {
	return &WavetableOsc{sampleRate: sampleRate, table: table}
}

func (w *WavetableOsc) SetTable(table *Wavetable) {
	w.table = table
	w.pos = 0
}

// SetFrequency sets the read rate. Negative values are allowed and play the
// table backwards, which is how through-zero FM reaches the oscillator.
// Non-finite values are ignored.
func (w *WavetableOsc) SetFrequency(hz float64) {
	if math.IsNaN(hz) || math.IsInf(hz, 0) {
		return
	}
	w.frequency = hz
}

func (w *WavetableOsc) Frequency() float64 {
	return w.frequency
}

func (w *WavetableOsc) Reset() {
	w.pos = 0
}

func (w *WavetableOsc) Tick() float64 {
	if w.table == nil || len(w.table.samples) == 0 || w.sampleRate <= 0 {
		return 0
	}
	samples := w.table.samples
	n := float64(len(samples))

	i := int(w.pos)
	frac := w.pos - float64(i)
	next := i + 1
	if next >= len(samples) {
		next = 0
	}
	v := samples[i]*(1-frac) + samples[next]*frac

	// FM can push the instantaneous frequency below zero, so the read
	// position wraps in both directions.
	w.pos = math.Mod(w.pos+w.table.increment(w.frequency, w.sampleRate), n)
	if w.pos < 0 {
		w.pos += n
	}
	if w.pos >= n || math.IsNaN(w.pos) {
		w.pos = 0
	}
	return v
}
