package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rakyll/portmidi"
	"github.com/spf13/cobra"
	"github.com/whyrusleeping/fmsynth"
	"golang.org/x/sync/errgroup"
)

var (
	playArp      string
	playArpRate  int
	playVelocity float64
	playDevice   int
	playLatency  time.Duration
	playHeadless bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play live from a MIDI keyboard or the arpeggiator",
	Long: `Open the default audio output and play. Notes come from the MIDI
input (controller n sets parameter n) or, with --arp, from a looping
arpeggio. A console accepts set/get/list/scope commands while playing.

Examples:
  fmsynth play
  fmsynth play --arp 60,64,67,72 --arp-rate 8 --set richness=0.4`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	f := playCmd.Flags()
	f.StringVar(&playArp, "arp", "", "comma separated notes to arpeggiate instead of reading MIDI")
	f.IntVar(&playArpRate, "arp-rate", 8, "arpeggio notes per second")
	f.Float64Var(&playVelocity, "velocity", 0.8, "arpeggio velocity")
	f.IntVar(&playDevice, "device", -1, "portmidi input device id, -1 for the default")
	f.DurationVar(&playLatency, "latency", time.Second/20, "speaker buffer length")
	f.BoolVar(&playHeadless, "no-console", false, "run without the interactive console")
}

func runPlay(cmd *cobra.Command, args []string) error {
	log := newLogger()
	inst, err := newInstrument(log)
	if err != nil {
		return err
	}

	var arp *Arp
	if playArp != "" {
		notes, err := parseNotes(playArp)
		if err != nil {
			return err
		}
		if playArpRate <= 0 {
			return fmt.Errorf("arp-rate must be positive")
		}
		arp = &Arp{
			notes:    notes,
			duration: time.Second / time.Duration(playArpRate),
			velocity: playVelocity,
			inst:     inst,
		}
	}

	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(playLatency)); err != nil {
		return fmt.Errorf("opening audio output: %w", err)
	}
	defer speaker.Close()

	rec := fmsynth.NewRecorder(withEffects(inst), 4096)
	speaker.Play(rec)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if arp != nil {
		g.Go(func() error {
			return arp.Run(ctx)
		})
	} else {
		mc, err := openMidi(inst, log)
		if err != nil {
			return err
		}
		defer portmidi.Terminate()
		defer mc.Shutdown()
		g.Go(func() error {
			return mc.Run(ctx)
		})
	}
	g.Go(func() error {
		return reportStats(ctx, inst, log)
	})

	if !playHeadless {
		// prompt.Input cannot be interrupted, so the console is not part of
		// the group; leaving it cancels everything else.
		go func() {
			NewConsole(inst, rec, cmd.OutOrStdout()).Run()
			cancel()
		}()
	}

	err = g.Wait()
	inst.AllNotesOff()
	return err
}

func openMidi(inst *fmsynth.Instrument, log *slog.Logger) (*MidiController, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("initialising portmidi: %w", err)
	}
	id := portmidi.DefaultInputDeviceID()
	if playDevice >= 0 {
		id = portmidi.DeviceID(playDevice)
	}
	if info := portmidi.Info(id); info != nil {
		log.Info("opening midi input", "device", info.Name, "id", id)
	}
	mc, err := OpenController(id, inst, log)
	if err != nil {
		portmidi.Terminate()
		return nil, fmt.Errorf("opening midi device %d: %w", id, err)
	}
	mc.BindParams(inst.Synth().Params())
	return mc, nil
}

func reportStats(ctx context.Context, inst *fmsynth.Instrument, log *slog.Logger) error {
	t := time.NewTicker(5 * time.Second)
	defer t.Stop()

	var lastDropped, lastLost uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		dropped, lost := inst.Dropped(), inst.EventsLost()
		if dropped != lastDropped || lost != lastLost {
			log.Warn("notes lost", "no_free_voice", dropped-lastDropped, "queue_full", lost-lastLost)
			lastDropped, lastLost = dropped, lost
		}
		log.Debug("voices", "active", inst.Active())
	}
}
