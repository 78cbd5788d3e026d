package main

import (
	"reflect"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

type frameCounter struct {
	p      *fakePlayer
	frames int
}

func (f *frameCounter) Stream(samples [][2]float64) (int, bool) {
	f.p.record("frames")
	f.frames += len(samples)
	return len(samples), true
}

func (f *frameCounter) Err() error { return nil }

func TestStepInterval(t *testing.T) {
	if d := stepInterval(120, 4); d != 500*time.Millisecond {
		t.Fatalf("quarter notes at 120bpm should be 500ms, got %s", d)
	}
	if d := stepInterval(120, 8); d != 250*time.Millisecond {
		t.Fatalf("eighth notes at 120bpm should be 250ms, got %s", d)
	}
}

func TestClockTicksOnStepBoundaries(t *testing.T) {
	p := &fakePlayer{}
	sub := &frameCounter{p: p}
	c := NewClock(sub, 10, 3)
	c.Sequences = append(c.Sequences, &Sequencer{
		Notes:    []int{60, 0, 62},
		Velocity: 0.5,
		Inst:     p,
	})

	n, ok := beep.Take(45, c).Stream(make([][2]float64, 64))
	if n != 45 || !ok {
		t.Fatalf("got %d, %v", n, ok)
	}
	if sub.frames != 45 {
		t.Fatalf("expected 45 frames streamed, got %d", sub.frames)
	}

	expected := []string{
		"on 60 0.50", "frames",
		"off 60", "frames",
		"on 62 0.50", "frames",
		"off 62", "frames",
	}
	if !reflect.DeepEqual(p.Events(), expected) {
		t.Fatalf("expected %v, got %v", expected, p.Events())
	}
}

func TestClockSmallBuffers(t *testing.T) {
	p := &fakePlayer{}
	c := NewClock(&frameCounter{p: &fakePlayer{}}, 4, 2)
	c.Sequences = append(c.Sequences, &Sequencer{Notes: []int{50, 51}, Velocity: 1, Inst: p})

	buf := make([][2]float64, 3)
	for i := 0; i < 5; i++ {
		c.Stream(buf)
	}
	expected := []string{"on 50 1.00", "off 50", "on 51 1.00", "off 51"}
	if !reflect.DeepEqual(p.Events(), expected) {
		t.Fatalf("expected %v, got %v", expected, p.Events())
	}
}
