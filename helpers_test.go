package fmsynth

import (
	"math"
	"testing"
)

func expectNearlyEqual(t *testing.T, actual, expected, tolerance float64) {
	t.Helper()
	if math.Abs(actual-expected) > tolerance {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func newTestSynth(t *testing.T) *Synth {
	t.Helper()
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s.SetWavetable(SineTable(DefaultSampleRate))
	return s
}

func stereo(n int) [][]float64 {
	return [][]float64{make([]float64, n), make([]float64, n)}
}
