package main

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestParseNotes(t *testing.T) {
	notes, err := parseNotes("60, 64,-,72")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(notes, []int{60, 64, 0, 72}) {
		t.Fatalf("unexpected notes %v", notes)
	}

	for _, bad := range []string{"", "60,x", "128", ","} {
		if _, err := parseNotes(bad); err == nil {
			t.Fatalf("expected an error for %q", bad)
		}
	}
}

func TestArpStopsEveryNote(t *testing.T) {
	p := &fakePlayer{}
	a := &Arp{
		notes:    []int{60, 0, 67},
		duration: time.Millisecond,
		velocity: 0.5,
		inst:     p,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatal(err)
	}

	events := p.Events()
	if len(events) < 2 || events[0] != "on 60 0.50" || events[1] != "off 60" {
		t.Fatalf("unexpected events %v", events)
	}
	held := make(map[string]int)
	for _, e := range events {
		switch e[:2] {
		case "on":
			held[e[3:5]]++
		case "of":
			held[e[4:6]]--
		}
	}
	for note, n := range held {
		if n != 0 {
			t.Fatalf("note %s left with %d unmatched starts", note, n)
		}
	}
}
