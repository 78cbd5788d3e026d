package fx

import (
	"time"

	"github.com/gopxl/beep"
)

// Delay is a feedback echo: every frame comes back after the delay time,
// scaled by decay, and keeps repeating.
type Delay struct {
	buf      [][2]float64
	decay    float64
	position int
}

func NewDelay(sr beep.SampleRate, amount time.Duration, decay float64) *Delay {
	n := sr.N(amount)
	if n < 1 {
		n = 1
	}
	return &Delay{
		buf:   make([][2]float64, n),
		decay: clampDecay(decay),
	}
}

func clampDecay(v float64) float64 {
	// anything at or above 1 never dies away
	if v < 0 || v != v {
		return 0
	}
	if v > 0.95 {
		return 0.95
	}
	return v
}

func (d *Delay) GetSetter(k string) func(float64) {
	switch k {
	case "decay":
		return func(v float64) {
			d.decay = clampDecay(v)
		}
	default:
		return nil
	}
}

func (d *Delay) ProcessSample(samples [][2]float64) {
	for i := range samples {
		echo := &d.buf[d.position]
		samples[i][0] += echo[0]
		samples[i][1] += echo[1]
		echo[0] = samples[i][0] * d.decay
		echo[1] = samples[i][1] * d.decay

		d.position++
		if d.position == len(d.buf) {
			d.position = 0
		}
	}
}
