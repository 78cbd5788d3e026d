package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/spf13/cobra"
)

var (
	renderOut      string
	renderNotes    string
	renderBPM      int
	renderDiv      int
	renderVelocity float64
	renderTail     time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a note sequence to a WAV file",
	Long: `Render a step sequence offline. Each step holds one note for a
1/div of a bar at the given tempo; "-" is a rest.

Examples:
  fmsynth render --notes 57,60,64,69 --out arp.wav
  fmsynth render --notes 45,-,52,- --div 4 --velocity 1 --set amratio=0.25`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOut, "out", "o", "out.wav", "output WAV file")
	f.StringVar(&renderNotes, "notes", "60,64,67,72", "comma separated MIDI notes, - for a rest")
	f.IntVar(&renderBPM, "bpm", 120, "tempo")
	f.IntVar(&renderDiv, "div", 8, "steps per bar")
	f.Float64Var(&renderVelocity, "velocity", 0.8, "note velocity, 1 selects the AM lead")
	f.DurationVar(&renderTail, "tail", time.Second, "time left for releases after the last step")
}

func runRender(cmd *cobra.Command, args []string) error {
	log := newLogger()
	notes, err := parseNotes(renderNotes)
	if err != nil {
		return err
	}
	if renderBPM <= 0 || renderDiv <= 0 {
		return fmt.Errorf("bpm and div must be positive")
	}
	inst, err := newInstrument(log)
	if err != nil {
		return err
	}

	sr := beep.SampleRate(sampleRate)
	step := sr.N(stepInterval(renderBPM, renderDiv))
	clock := NewClock(inst, step, len(notes))
	clock.Sequences = append(clock.Sequences, &Sequencer{
		Notes:    notes,
		Velocity: renderVelocity,
		Inst:     inst,
	})
	total := step*len(notes) + sr.N(renderTail)

	fi, err := os.Create(renderOut)
	if err != nil {
		return err
	}
	defer fi.Close()

	format := beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
	if err := wav.Encode(fi, beep.Take(total, withEffects(clock)), format); err != nil {
		return fmt.Errorf("encoding %s: %w", renderOut, err)
	}
	log.Info("rendered", "path", renderOut, "frames", total, "seconds", sr.D(total).Seconds(),
		"dropped", inst.Dropped())
	return fi.Close()
}
