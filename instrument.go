package fmsynth

import (
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
)

const eventQueueSize = 1024

type eventKind int

const (
	eventNoteOn eventKind = iota
	eventNoteOff
	eventAllOff
)

type noteEvent struct {
	kind     eventKind
	pitch    int
	velocity float64
}

type slot struct {
	v     *Voice
	pitch int
	held  bool
}

// Instrument is the host side of the engine: it owns a fixed pool of voices,
// turns note events into StartNote/StopNote calls and mixes the active voices
// into a beep stream. Note events may come from any goroutine; everything
// else runs on the goroutine that calls Stream.
type Instrument struct {
	synth     *Synth
	blockSize int

	events chan noteEvent

	free   []*slot
	active []*slot

	scratch [2][]float64
	mix     [2][]float64

	dropped    atomic.Uint64
	numActive  atomic.Int32
	eventsLost atomic.Uint64
}

var _ beep.Streamer = (*Instrument)(nil)

func NewInstrument(s *Synth) *Instrument {
	cfg := s.Config()
	inst := &Instrument{
		synth:     s,
		blockSize: cfg.BlockSize,
		events:    make(chan noteEvent, eventQueueSize),
		free:      make([]*slot, 0, cfg.MaxVoices),
		active:    make([]*slot, 0, cfg.MaxVoices),
	}
	for i := 0; i < cfg.MaxVoices; i++ {
		inst.free = append(inst.free, &slot{v: s.CreateVoice()})
	}
	for ch := range inst.scratch {
		inst.scratch[ch] = make([]float64, cfg.BlockSize)
		inst.mix[ch] = make([]float64, cfg.BlockSize)
	}
	return inst
}

func (inst *Instrument) Synth() *Synth {
	return inst.synth
}

func (inst *Instrument) send(ev noteEvent) {
	select {
	case inst.events <- ev:
	default:
		inst.eventsLost.Add(1)
	}
}

func (inst *Instrument) NoteOn(pitch int, velocity float64) {
	inst.send(noteEvent{kind: eventNoteOn, pitch: pitch, velocity: velocity})
}

func (inst *Instrument) NoteOff(pitch int) {
	inst.send(noteEvent{kind: eventNoteOff, pitch: pitch})
}

// AllNotesOff releases every held voice.
func (inst *Instrument) AllNotesOff() {
	inst.send(noteEvent{kind: eventAllOff})
}

// Play starts a note and returns the func that releases it.
func (inst *Instrument) Play(pitch int, velocity float64) func() {
	inst.NoteOn(pitch, velocity)
	var once sync.Once
	return func() {
		once.Do(func() {
			inst.NoteOff(pitch)
		})
	}
}

// Active is the number of sounding voices as of the last rendered block.
func (inst *Instrument) Active() int {
	return int(inst.numActive.Load())
}

// Dropped counts note-ons that found no free voice.
func (inst *Instrument) Dropped() uint64 {
	return inst.dropped.Load()
}

// EventsLost counts events discarded because the queue was full.
func (inst *Instrument) EventsLost() uint64 {
	return inst.eventsLost.Load()
}

func (inst *Instrument) drain() {
	for {
		select {
		case ev := <-inst.events:
			inst.handle(ev)
		default:
			return
		}
	}
}

func (inst *Instrument) handle(ev noteEvent) {
	switch ev.kind {
	case eventNoteOn:
		if len(inst.free) == 0 {
			inst.dropped.Add(1)
			return
		}
		sl := inst.free[len(inst.free)-1]
		inst.free = inst.free[:len(inst.free)-1]
		sl.v.StartNote(ev.pitch, ev.velocity)
		sl.pitch = sl.v.Pitch()
		sl.held = true
		inst.active = append(inst.active, sl)
	case eventNoteOff:
		pitch := clampPitch(ev.pitch)
		for _, sl := range inst.active {
			if sl.held && sl.pitch == pitch {
				sl.held = false
				sl.v.StopNote()
			}
		}
	case eventAllOff:
		for _, sl := range inst.active {
			if sl.held {
				sl.held = false
				sl.v.StopNote()
			}
		}
	}
}

func (inst *Instrument) Stream(samples [][2]float64) (int, bool) {
	for off := 0; off < len(samples); {
		n := len(samples) - off
		if n > inst.blockSize {
			n = inst.blockSize
		}
		inst.drain()
		inst.render(n)
		for i := 0; i < n; i++ {
			samples[off+i][0] = inst.mix[0][i]
			samples[off+i][1] = inst.mix[1][i]
		}
		off += n
	}
	return len(samples), true
}

func (inst *Instrument) render(n int) {
	mixL, mixR := inst.mix[0][:n], inst.mix[1][:n]
	clear(mixL)
	clear(mixR)

	for j := 0; j < len(inst.active); {
		sl := inst.active[j]
		alive := sl.v.Process(inst.scratch[:], n)
		for i := range mixL {
			mixL[i] += inst.scratch[0][i]
			mixR[i] += inst.scratch[1][i]
		}
		if !alive {
			last := len(inst.active) - 1
			inst.active[j] = inst.active[last]
			inst.active[last] = nil
			inst.active = inst.active[:last]
			sl.held = false
			inst.free = append(inst.free, sl)
			continue
		}
		j++
	}
	inst.numActive.Store(int32(len(inst.active)))

	inst.synth.PostProcess(inst.mix[:], n)
}

func (inst *Instrument) Err() error {
	return nil
}
