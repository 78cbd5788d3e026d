package main

import (
	"time"

	"github.com/gopxl/beep"
)

// stepInterval is the length of one step when a whole note is split into
// div steps.
func stepInterval(bpm, div int) time.Duration {
	return (4 * time.Minute) / (time.Duration(bpm) * time.Duration(div))
}

// Sequencer plays Notes one per step, stopping the previous note as the next
// starts. Zero notes are rests.
type Sequencer struct {
	Notes    []int
	Velocity float64
	Inst     Player

	curnoteStop func()

	cur int
}

func (s *Sequencer) Tick() {
	s.Stop()
	if len(s.Notes) == 0 {
		return
	}
	if n := s.Notes[s.cur%len(s.Notes)]; n > 0 {
		s.curnoteStop = s.Inst.Play(n, s.Velocity)
	}
	s.cur++
}

func (s *Sequencer) Stop() {
	if s.curnoteStop != nil {
		s.curnoteStop()
		s.curnoteStop = nil
	}
}

// Clock drives sequences from the sample position of a stream rather than
// wall time, so offline renders are exact.
type Clock struct {
	sub     beep.Streamer
	stepLen int
	steps   int
	pos     int
	next    int

	Sequences []*Sequencer
}

// NewClock ticks every stepLen frames, steps times, then stops every
// sequence and keeps streaming sub so releases can ring out.
func NewClock(sub beep.Streamer, stepLen, steps int) *Clock {
	if stepLen < 1 {
		stepLen = 1
	}
	return &Clock{sub: sub, stepLen: stepLen, steps: steps}
}

func (c *Clock) tick() {
	for _, s := range c.Sequences {
		if c.next < c.steps {
			s.Tick()
		} else {
			s.Stop()
		}
	}
	c.next++
}

func (c *Clock) Stream(samples [][2]float64) (int, bool) {
	var done int
	for done < len(samples) {
		if c.next <= c.steps && c.pos == c.next*c.stepLen {
			c.tick()
		}

		n := len(samples) - done
		if c.next <= c.steps {
			if until := c.next*c.stepLen - c.pos; until < n {
				n = until
			}
		}
		got, ok := c.sub.Stream(samples[done : done+n])
		done += got
		c.pos += got
		if !ok {
			return done, done > 0
		}
		if got == 0 {
			break
		}
	}
	return done, true
}

func (c *Clock) Err() error {
	return c.sub.Err()
}
