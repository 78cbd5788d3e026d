package fmsynth

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

func newTestInstrument(t *testing.T, voices int) *Instrument {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxVoices = voices
	cfg.BlockSize = 64
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.SetWavetable(SineTable(cfg.SampleRate))
	p := s.Params()
	p.Set(ParamAttack, 0)
	p.Set(ParamDecay, 0)
	p.Set(ParamSustain, 1)
	p.Set(ParamRelease, 0)
	return NewInstrument(s)
}

func peak(buf [][2]float64) float64 {
	var m float64
	for _, f := range buf {
		m = math.Max(m, math.Max(math.Abs(f[0]), math.Abs(f[1])))
	}
	return m
}

func TestInstrumentPlayAndRelease(t *testing.T) {
	inst := newTestInstrument(t, 4)
	buf := make([][2]float64, 1000)

	n, ok := inst.Stream(buf)
	if n != len(buf) || !ok {
		t.Fatalf("stream returned %d, %v", n, ok)
	}
	if peak(buf) != 0 {
		t.Fatal("no notes should mean silence")
	}

	stop := inst.Play(69, 0.8)
	inst.Stream(buf)
	if inst.Active() != 1 {
		t.Fatalf("expected one active voice, got %d", inst.Active())
	}
	if peak(buf) == 0 {
		t.Fatal("expected sound from the held note")
	}

	stop()
	stop()
	inst.Stream(buf)
	if inst.Active() != 0 {
		t.Fatalf("voice should be reclaimed after its release, %d active", inst.Active())
	}
	if len(inst.free) != 4 {
		t.Fatalf("expected all voices free, got %d", len(inst.free))
	}
}

func TestInstrumentDropsWhenFull(t *testing.T) {
	inst := newTestInstrument(t, 2)
	buf := make([][2]float64, 64)

	inst.NoteOn(60, 0.5)
	inst.NoteOn(64, 0.5)
	inst.NoteOn(67, 0.5)
	inst.Stream(buf)

	if inst.Active() != 2 {
		t.Fatalf("expected 2 active voices, got %d", inst.Active())
	}
	if inst.Dropped() != 1 {
		t.Fatalf("expected 1 dropped note, got %d", inst.Dropped())
	}

	inst.AllNotesOff()
	inst.Stream(make([][2]float64, 1024))
	if inst.Active() != 0 {
		t.Fatalf("expected no voices after all notes off, got %d", inst.Active())
	}
}

func TestInstrumentNoteOffMatchesPitch(t *testing.T) {
	inst := newTestInstrument(t, 4)
	buf := make([][2]float64, 64)

	inst.NoteOn(60, 0.5)
	inst.NoteOn(64, 0.5)
	inst.NoteOff(64)
	inst.Stream(make([][2]float64, 1024))
	if inst.Active() != 1 {
		t.Fatalf("expected only the held note, got %d voices", inst.Active())
	}
	inst.Stream(buf)
	if inst.active[0].pitch != 60 {
		t.Fatalf("wrong voice released, %d still sounding", inst.active[0].pitch)
	}
}

func TestInstrumentQueueOverflow(t *testing.T) {
	inst := newTestInstrument(t, 1)
	for i := 0; i < eventQueueSize+10; i++ {
		inst.NoteOff(60)
	}
	if inst.EventsLost() != 10 {
		t.Fatalf("expected 10 lost events, got %d", inst.EventsLost())
	}
}

func TestInstrumentRenderToWav(t *testing.T) {
	inst := newTestInstrument(t, 4)
	inst.NoteOn(57, 1)
	inst.NoteOn(64, 0.6)

	sr := beep.SampleRate(DefaultSampleRate)
	path := filepath.Join(t.TempDir(), "out.wav")
	fi, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
	if err := wav.Encode(fi, beep.Take(sr.N(time.Second/10), inst), format); err != nil {
		t.Fatal(err)
	}
	fi.Close()

	fi, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fi.Close()
	st, f, err := wav.Decode(fi)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if f.NumChannels != 2 || f.SampleRate != sr {
		t.Fatalf("unexpected format %+v", f)
	}
	if st.Len() != sr.N(time.Second/10) {
		t.Fatalf("expected %d frames, got %d", sr.N(time.Second/10), st.Len())
	}
}

func TestInstrumentOutOfRangePitchReleases(t *testing.T) {
	inst := newTestInstrument(t, 2)
	buf := make([][2]float64, 1024)

	stop := inst.Play(200, 0.5)
	low := inst.Play(-3, 0.5)
	inst.Stream(buf)
	if inst.Active() != 2 {
		t.Fatalf("expected 2 active voices, got %d", inst.Active())
	}

	stop()
	low()
	inst.Stream(buf)
	if inst.Active() != 0 {
		t.Fatalf("clamped notes were not released, %d still active", inst.Active())
	}
	if len(inst.free) != 2 {
		t.Fatalf("expected both voices back in the pool, got %d", len(inst.free))
	}
}
