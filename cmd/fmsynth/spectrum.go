package main

import (
	"fmt"
	"math/cmplx"
	"sort"
	"time"

	"github.com/gopxl/beep"
	"github.com/maddyblue/go-dsp/fft"
	"github.com/spf13/cobra"
	"github.com/whyrusleeping/fmsynth"
)

type bin struct {
	Freq      float64
	Magnitude float64
}

// strongestBins returns the k largest local peaks of the magnitude spectrum,
// strongest first.
func strongestBins(samples []float64, sampleRate float64, k int) []bin {
	if len(samples) < 2 {
		return nil
	}
	fftResult := fft.FFTReal(samples)

	// Get the magnitude spectrum
	magnitudeSpectrum := make([]float64, len(fftResult)/2+1)
	for i, c := range fftResult[:len(magnitudeSpectrum)] {
		magnitudeSpectrum[i] = cmplx.Abs(c) / float64(len(samples))
	}

	var peaks []bin
	for i := 1; i < len(magnitudeSpectrum)-1; i++ {
		m := magnitudeSpectrum[i]
		if m > magnitudeSpectrum[i-1] && m >= magnitudeSpectrum[i+1] {
			peaks = append(peaks, bin{
				Freq:      float64(i) * sampleRate / float64(len(samples)),
				Magnitude: m,
			})
		}
	}
	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].Magnitude > peaks[j].Magnitude
	})
	if len(peaks) > k {
		peaks = peaks[:k]
	}
	return peaks
}

var (
	specNote     int
	specVelocity float64
	specFrames   int
	specSkip     time.Duration
	specTop      int
)

var spectrumCmd = &cobra.Command{
	Use:   "spectrum",
	Short: "Render one note and print its strongest partials",
	Long: `Render a held note offline and print the strongest peaks of its
spectrum. Useful for checking tuning, richness and the AM lead layer.

Examples:
  fmsynth spectrum --note 69
  fmsynth spectrum --note 57 --velocity 1 --set amratio=0.5`,
	Args: cobra.NoArgs,
	RunE: runSpectrum,
}

func init() {
	f := spectrumCmd.Flags()
	f.IntVarP(&specNote, "note", "n", 69, "MIDI note to analyse")
	f.Float64Var(&specVelocity, "velocity", 0.8, "note velocity, 1 selects the AM lead")
	f.IntVar(&specFrames, "frames", 16384, "FFT size in frames")
	f.DurationVar(&specSkip, "skip", 500*time.Millisecond, "audio to skip before analysing")
	f.IntVar(&specTop, "top", 8, "number of peaks to print")
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	log := newLogger()
	inst, err := newInstrument(log)
	if err != nil {
		return err
	}
	if specFrames < 2 {
		return fmt.Errorf("need at least 2 frames, got %d", specFrames)
	}

	sr := beep.SampleRate(sampleRate)
	inst.NoteOn(specNote, specVelocity)
	skip := make([][2]float64, sr.N(specSkip))
	inst.Stream(skip)

	buf := make([][2]float64, specFrames)
	inst.Stream(buf)
	mono := make([]float64, len(buf))
	for i, f := range buf {
		mono[i] = (f[0] + f[1]) / 2
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "note %d, carrier %.2f Hz, %d frames\n", specNote, fmsynth.NoteToFrequency(specNote), len(mono))
	for _, b := range strongestBins(mono, float64(sampleRate), specTop) {
		fmt.Fprintf(out, "%9.1f Hz  %.5f\n", b.Freq, b.Magnitude)
	}
	return nil
}
