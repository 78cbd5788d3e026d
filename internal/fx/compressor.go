package fx

import (
	"math"

	"github.com/gopxl/beep"
)

// Compressor is a stereo linked peak compressor. Above threshold the level
// is reduced so that every ratio dB of input gives one dB of output.
type Compressor struct {
	threshold float64
	ratio     float64
	attack    float64
	release   float64
	envelope  float64
}

func NewCompressor(sr beep.SampleRate, threshold, ratio, attackSec, releaseSec float64) *Compressor {
	if ratio < 1 {
		ratio = 1
	}
	return &Compressor{
		threshold: threshold,
		ratio:     ratio,
		attack:    coefficient(sr, attackSec),
		release:   coefficient(sr, releaseSec),
	}
}

// coefficient is the per-sample smoothing factor for a time constant.
func coefficient(sr beep.SampleRate, seconds float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1 - math.Exp(-1/(float64(sr)*seconds))
}

func (c *Compressor) gain(level float64) float64 {
	if level > c.envelope {
		c.envelope += (level - c.envelope) * c.attack
	} else {
		c.envelope += (level - c.envelope) * c.release
	}

	if c.envelope <= c.threshold || c.threshold <= 0 {
		return 1
	}
	return math.Pow(c.threshold/c.envelope, 1-1/c.ratio)
}

func (c *Compressor) ProcessSample(samples [][2]float64) {
	for i := range samples {
		level := math.Max(math.Abs(samples[i][0]), math.Abs(samples[i][1]))
		g := c.gain(level)
		samples[i][0] *= g
		samples[i][1] *= g
	}
}

func (c *Compressor) GetSetter(k string) func(float64) {
	switch k {
	case "threshold":
		return func(v float64) { c.threshold = v }
	case "ratio":
		return func(v float64) { c.ratio = math.Max(1, v) }
	default:
		return nil
	}
}
