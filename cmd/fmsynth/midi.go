package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/rakyll/portmidi"
	"github.com/whyrusleeping/fmsynth"
)

// Player is what the note sources drive. *fmsynth.Instrument implements it.
type Player interface {
	NoteOn(pitch int, velocity float64)
	NoteOff(pitch int)
	Play(pitch int, velocity float64) func()
}

const (
	statusNoteOff = 0x80
	statusNoteOn  = 0x90
	statusCC      = 0xb0

	midiPollInterval = time.Millisecond
)

type MidiController struct {
	Target Player

	log    *slog.Logger
	stream *portmidi.Stream

	noteStates map[int64]func()

	knobBinds map[int64]*knobBind
}

type knobBind struct {
	mapf func(int64) float64
	sf   Setter
}

func (kb *knobBind) Update(val int64) {
	kb.sf(kb.mapf(val))
}

type Setter func(float64)

func OpenController(id portmidi.DeviceID, target Player, log *slog.Logger) (*MidiController, error) {
	in, err := portmidi.NewInputStream(id, 1024)
	if err != nil {
		return nil, err
	}
	mc := newController(target, log)
	mc.stream = in
	return mc, nil
}

func newController(target Player, log *slog.Logger) *MidiController {
	return &MidiController{
		Target:     target,
		log:        log,
		noteStates: make(map[int64]func()),
		knobBinds:  make(map[int64]*knobBind),
	}
}

func (mc *MidiController) Shutdown() error {
	if mc.stream == nil {
		return nil
	}
	return mc.stream.Close()
}

// Run reads the input stream until ctx is cancelled.
func (mc *MidiController) Run(ctx context.Context) error {
	defer mc.releaseAll()

	tick := time.NewTicker(midiPollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}

		ok, err := mc.stream.Poll()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		events, err := mc.stream.Read(1024)
		if err != nil {
			return err
		}
		for _, ev := range events {
			mc.handle(ev)
		}
	}
}

func (mc *MidiController) handle(ev portmidi.Event) {
	switch ev.Status & 0xf0 {
	case statusNoteOn:
		if ev.Data2 == 0 {
			mc.stopNote(ev.Data1)
			return
		}
		mc.startNote(ev.Data1, float64(ev.Data2)/127)
	case statusNoteOff:
		mc.stopNote(ev.Data1)
	case statusCC:
		// twisty knobs
		if kb, ok := mc.knobBinds[ev.Data1]; ok {
			kb.Update(ev.Data2)
		}
	default:
		mc.log.Debug("unhandled midi event", "status", ev.Status, "data1", ev.Data1, "data2", ev.Data2)
	}
}

func (mc *MidiController) startNote(note int64, velocity float64) {
	if oldstop, ok := mc.noteStates[note]; ok {
		mc.log.Debug("got start for already running note", "note", note)
		oldstop()
	}
	mc.noteStates[note] = mc.Target.Play(int(note), velocity)
}

func (mc *MidiController) stopNote(note int64) {
	stopf, ok := mc.noteStates[note]
	if !ok {
		mc.log.Debug("stop called on note we hadnt started", "note", note)
		return
	}
	stopf()
	delete(mc.noteStates, note)
}

func (mc *MidiController) releaseAll() {
	for note, stop := range mc.noteStates {
		stop()
		delete(mc.noteStates, note)
	}
}

func (mc *MidiController) BindKnob(knobid int64, s Setter, rangeMapFunc func(int64) float64) {
	if s == nil {
		mc.log.Warn("nil setter passed to bind knob", "knob", knobid)
		return
	}
	mc.knobBinds[knobid] = &knobBind{
		mapf: rangeMapFunc,
		sf:   s,
	}
}

func unitRange(v int64) float64 {
	return float64(v) / 127
}

// BindParams maps controller n to parameter n for every parameter.
func (mc *MidiController) BindParams(p *fmsynth.Params) {
	for i := fmsynth.Param(0); i < fmsynth.NumParams; i++ {
		mc.BindKnob(int64(i), p.GetSetter(i.String()), unitRange)
	}
}
