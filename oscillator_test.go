package fmsynth

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/maddyblue/go-dsp/fft"
)

func TestSineTick(t *testing.T) {
	s := NewSine(8)
	s.SetFrequency(1)

	expectNearlyEqual(t, s.Tick(), 0, 1e-12)
	expectNearlyEqual(t, s.Tick(), math.Sin(math.Pi/4), 1e-12)
	expectNearlyEqual(t, s.Tick(), 1, 1e-12)

	s.Reset()
	expectNearlyEqual(t, s.Tick(), 0, 1e-12)
}

func TestSineSpectrum(t *testing.T) {
	const n = 4096
	s := NewSine(n)
	s.SetFrequency(440)

	x := make([]float64, n)
	for i := range x {
		x[i] = s.Tick()
	}

	spec := fft.FFTReal(x)
	peak := 0
	for i := 1; i < n/2; i++ {
		if cmplx.Abs(spec[i]) > cmplx.Abs(spec[peak]) {
			peak = i
		}
	}
	if peak != 440 {
		t.Fatalf("expected spectral peak at bin 440, got %d", peak)
	}
}

func TestSawIsHarmonicSum(t *testing.T) {
	s := NewSaw(1000)
	s.SetFrequency(10)

	for k := 0; k < 200; k++ {
		phase := float64(k) * 10 / 1000
		want := 0.0
		for h := 1; h <= 8; h++ {
			want += math.Sin(2*math.Pi*phase*float64(h)) / float64(h)
		}
		expectNearlyEqual(t, s.Tick(), want, 1e-9)
	}
}

func TestNonFiniteFrequencyIgnored(t *testing.T) {
	s := NewSine(100)
	s.SetFrequency(5)
	s.SetFrequency(math.NaN())
	s.SetFrequency(math.Inf(1))
	if s.Frequency() != 5 {
		t.Fatalf("frequency changed to %v", s.Frequency())
	}

	w := NewWavetableOsc(100, SineTable(100))
	w.SetFrequency(3)
	w.SetFrequency(math.Inf(-1))
	if w.Frequency() != 3 {
		t.Fatalf("frequency changed to %v", w.Frequency())
	}
}

func TestWavetableOscMatchesSine(t *testing.T) {
	const sr = 44100
	w := NewWavetableOsc(sr, SineTable(sr))
	w.SetFrequency(441)

	for k := 0; k < 1000; k++ {
		want := math.Sin(2 * math.Pi * 441 * float64(k) / sr)
		expectNearlyEqual(t, w.Tick(), want, 1e-9)
	}
}

func TestWavetableOscNegativeFrequency(t *testing.T) {
	const sr = 44100
	w := NewWavetableOsc(sr, SineTable(sr))
	w.SetFrequency(-441)

	expectNearlyEqual(t, w.Tick(), 0, 1e-12)
	expectNearlyEqual(t, w.Tick(), -math.Sin(2*math.Pi*441/sr), 1e-9)
}

func TestWavetableOscWithoutTable(t *testing.T) {
	w := NewWavetableOsc(44100, nil)
	w.SetFrequency(440)
	if v := w.Tick(); v != 0 {
		t.Fatalf("expected silence, got %v", v)
	}

	w.SetTable(SilentWavetable(0, 44100))
	for i := 0; i < 10; i++ {
		if v := w.Tick(); v != 0 {
			t.Fatalf("expected silence, got %v", v)
		}
	}
}
