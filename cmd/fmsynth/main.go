package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/spf13/cobra"
	"github.com/whyrusleeping/fmsynth"
	"github.com/whyrusleeping/fmsynth/internal/fx"
)

var (
	sampleRate int
	blockSize  int
	maxVoices  int
	resource   string
	paramSets  []string
	verbose    bool

	delayTime     time.Duration
	delayFeedback float64
	compThreshold float64
	compRatio     float64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fmsynth",
	Short: "Polyphonic FM/AM synthesizer",
	Long: `fmsynth plays a wavetable FM voice with an optional AM lead layer.

Notes come from a MIDI keyboard, an arpeggiator or a step sequence, and
can be heard live or rendered to a WAV file.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&sampleRate, "sample-rate", fmsynth.DefaultSampleRate, "output sample rate in Hz")
	pf.IntVar(&blockSize, "block", fmsynth.DefaultBlockSize, "frames rendered per voice block")
	pf.IntVar(&maxVoices, "voices", fmsynth.DefaultMaxVoices, "size of the voice pool")
	pf.StringVar(&resource, "resource", fmsynth.DefaultResource, "WAV file holding one cycle of a 1Hz sine")
	pf.StringArrayVar(&paramSets, "set", nil, "set a parameter, name=value (repeatable)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.DurationVar(&delayTime, "delay", 0, "echo time of the output delay, 0 disables it")
	pf.Float64Var(&delayFeedback, "feedback", 0.4, "delay feedback")
	pf.Float64Var(&compThreshold, "compress", 0, "compressor threshold, 0 disables it")
	pf.Float64Var(&compRatio, "ratio", 4, "compressor ratio")

	rootCmd.AddCommand(playCmd, renderCmd, spectrumCmd, gentableCmd, paramsCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func config(log *slog.Logger) fmsynth.Config {
	return fmsynth.Config{
		SampleRate: sampleRate,
		BlockSize:  blockSize,
		MaxVoices:  maxVoices,
		Resource:   resource,
		Logger:     log,
	}
}

// newInstrument builds the synth from the global flags. A missing resource
// is not fatal, the synth just plays without its primary carrier.
func newInstrument(log *slog.Logger) (*fmsynth.Instrument, error) {
	s, err := fmsynth.New(config(log))
	if err != nil {
		return nil, err
	}
	if err := s.Initialise(); err != nil {
		log.Warn("run `fmsynth gentable` to create the resource", "err", err)
	}
	if err := applyParams(s.Params(), paramSets); err != nil {
		return nil, err
	}
	return fmsynth.NewInstrument(s), nil
}

// withEffects puts the output effects selected on the command line after
// src.
func withEffects(src beep.Streamer) beep.Streamer {
	sr := beep.SampleRate(sampleRate)
	var effects []fx.Effect
	if delayTime > 0 {
		effects = append(effects, fx.NewDelay(sr, delayTime, delayFeedback))
	}
	if compThreshold > 0 {
		effects = append(effects, fx.NewCompressor(sr, compThreshold, compRatio, 0.005, 0.1))
	}
	return fx.Apply(src, effects...)
}

type assignment struct {
	name  string
	value float64
}

func parseAssignment(s string) (assignment, error) {
	name, val, ok := strings.Cut(s, "=")
	if !ok {
		return assignment{}, fmt.Errorf("expected name=value, got %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return assignment{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	return assignment{name: strings.TrimSpace(name), value: v}, nil
}

func applyParams(p *fmsynth.Params, sets []string) error {
	for _, s := range sets {
		a, err := parseAssignment(s)
		if err != nil {
			return err
		}
		if err := p.SetByName(a.name, a.value); err != nil {
			return err
		}
	}
	return nil
}

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the synth parameters and their defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for p := fmsynth.Param(0); p < fmsynth.NumParams; p++ {
			fmt.Fprintf(out, "%2d  %-10s %.2f\n", int(p), p, p.Default())
		}
		return nil
	},
}

var gentableCmd = &cobra.Command{
	Use:   "gentable [file]",
	Short: "Write the sine wavetable resource",
	Long: `Write one second of a 1Hz sine at the configured sample rate. This is
the wavetable the primary carrier reads from.

Example:
  fmsynth gentable Sine.wav`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resource
		if len(args) > 0 {
			path = args[0]
		}
		fi, err := os.Create(path)
		if err != nil {
			return err
		}
		defer fi.Close()

		if err := fmsynth.SineTable(sampleRate).Save(fi); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		newLogger().Info("wrote wavetable", "path", path, "samples", sampleRate)
		return fi.Close()
	},
}
