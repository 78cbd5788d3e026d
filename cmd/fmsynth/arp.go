package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Arp cycles through notes forever, one per duration. Notes <= 0 are rests.
type Arp struct {
	notes    []int
	duration time.Duration
	velocity float64

	inst Player
}

func (a *Arp) Run(ctx context.Context) error {
	if len(a.notes) == 0 {
		return nil
	}
	t := time.NewTicker(a.duration)
	defer t.Stop()

	stop := func() {}
	defer func() { stop() }()
	for i := 0; ; i++ {
		stop()
		stop = func() {}
		if n := a.notes[i%len(a.notes)]; n > 0 {
			stop = a.inst.Play(n, a.velocity)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// parseNotes reads a comma separated list of MIDI note numbers. "-" is a
// rest.
func parseNotes(s string) ([]int, error) {
	var notes []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if f == "-" {
			notes = append(notes, 0)
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad note %q: %w", f, err)
		}
		if n < 1 || n > 127 {
			return nil, fmt.Errorf("note %d out of range", n)
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes in %q", s)
	}
	return notes, nil
}
