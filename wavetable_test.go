package fmsynth

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestSineTable(t *testing.T) {
	wt := SineTable(1000)
	if wt.Len() != 1000 {
		t.Fatalf("expected 1000 samples, got %d", wt.Len())
	}
	expectNearlyEqual(t, wt.At(250), 1, 1e-12)
	expectNearlyEqual(t, wt.At(750), -1, 1e-12)
	if wt.At(-1) != 0 || wt.At(1000) != 0 {
		t.Fatal("out of range reads should be zero")
	}
	if wt.BaseFrequency() != 1 {
		t.Fatalf("unexpected base frequency %v", wt.BaseFrequency())
	}
}

func TestWavetableSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Sine.wav")
	fi, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := SineTable(8000).Save(fi); err != nil {
		t.Fatal(err)
	}
	if err := fi.Close(); err != nil {
		t.Fatal(err)
	}

	wt, err := OpenWavetable(path)
	if err != nil {
		t.Fatal(err)
	}
	if wt.Len() != 8000 {
		t.Fatalf("expected 8000 samples, got %d", wt.Len())
	}
	if wt.SampleRate() != 8000 {
		t.Fatalf("expected 8000 Hz, got %v", wt.SampleRate())
	}
	for _, i := range []int{0, 100, 2000, 5000} {
		expectNearlyEqual(t, wt.At(i), math.Sin(2*math.Pi*float64(i)/8000), 1e-3)
	}
}

func TestOpenWavetableMissing(t *testing.T) {
	_, err := OpenWavetable(filepath.Join(t.TempDir(), "nope.wav"))
	if !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestLoadWavetableGarbage(t *testing.T) {
	_, err := LoadWavetable(bytes.NewReader([]byte("definitely not a wav file")))
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestWavetableIncrement(t *testing.T) {
	wt := SineTable(48000)
	wt.SetBaseFrequency(2)
	expectNearlyEqual(t, wt.increment(440, 48000), 220, 1e-12)
	// a table recorded at 48k played back at 24k moves twice as fast
	expectNearlyEqual(t, wt.increment(440, 24000), 440, 1e-12)

	wt.SetBaseFrequency(0)
	if wt.BaseFrequency() != 2 {
		t.Fatal("invalid base frequency should be ignored")
	}
}

func TestWavetableFullScaleRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "full.wav")
	fi, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := SineTable(8000).Save(fi); err != nil {
		t.Fatal(err)
	}
	fi.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	buf.Write(data)
	wt, err := LoadWavetable(&buf)
	if err != nil {
		t.Fatal(err)
	}

	peak := 0.0
	for i := 0; i < wt.Len(); i++ {
		peak = math.Max(peak, math.Abs(wt.At(i)))
	}
	expectNearlyEqual(t, peak, 1, 1e-3)
	expectNearlyEqual(t, wt.At(2000), 1, 1e-3)
	expectNearlyEqual(t, wt.At(6000), -1, 1e-3)
}

func TestPCMScale(t *testing.T) {
	expectNearlyEqual(t, pcmScale(2)*32767/65535, 1, 1e-12)
	expectNearlyEqual(t, pcmScale(3)*8388607/16777215, 1, 1e-12)
	if pcmScale(1) != 1 || pcmScale(4) != 1 {
		t.Fatal("only 16 and 24 bit samples are rescaled")
	}
}
