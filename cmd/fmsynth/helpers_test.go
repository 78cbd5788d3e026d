package main

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

type fakePlayer struct {
	lk     sync.Mutex
	events []string
}

func (f *fakePlayer) record(s string) {
	f.lk.Lock()
	defer f.lk.Unlock()
	f.events = append(f.events, s)
}

func (f *fakePlayer) NoteOn(pitch int, velocity float64) {
	f.record(fmt.Sprintf("on %d %.2f", pitch, velocity))
}

func (f *fakePlayer) NoteOff(pitch int) {
	f.record(fmt.Sprintf("off %d", pitch))
}

func (f *fakePlayer) Play(pitch int, velocity float64) func() {
	f.NoteOn(pitch, velocity)
	return func() { f.NoteOff(pitch) }
}

func (f *fakePlayer) Events() []string {
	f.lk.Lock()
	defer f.lk.Unlock()
	return append([]string(nil), f.events...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
