package fmsynth

import (
	"sync"

	"github.com/gopxl/beep"
)

// Recorder passes a stream through unchanged and remembers the most recent
// frames so a UI goroutine can look at them. Blocks streamed while a
// Snapshot is in progress are skipped.
type Recorder struct {
	lk       sync.Mutex
	buf      [][2]float64
	position int

	sub beep.Streamer
}

func NewRecorder(sub beep.Streamer, frames int) *Recorder {
	if frames < 1 {
		frames = 1
	}
	return &Recorder{
		buf: make([][2]float64, frames),
		sub: sub,
	}
}

func (r *Recorder) Stream(samples [][2]float64) (int, bool) {
	n, ok := r.sub.Stream(samples)

	// skip the block rather than wait on Snapshot
	if !r.lk.TryLock() {
		return n, ok
	}
	defer r.lk.Unlock()

	for i := range samples[:n] {
		ix := r.position % len(r.buf)
		r.buf[ix] = samples[i]
		r.position++
	}
	return n, ok
}

// Snapshot copies the recorded frames into buf, oldest first, and returns how
// many were copied.
func (r *Recorder) Snapshot(buf [][2]float64) int {
	r.lk.Lock()
	defer r.lk.Unlock()

	lim := len(buf)
	if len(r.buf) < lim {
		lim = len(r.buf)
	}
	if r.position < lim {
		lim = r.position
	}

	start := r.position - lim
	for i := 0; i < lim; i++ {
		buf[i] = r.buf[(start+i)%len(r.buf)]
	}
	return lim
}

func (r *Recorder) Err() error {
	return r.sub.Err()
}
