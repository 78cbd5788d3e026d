// Package fx holds the optional output effects the command line can put
// after the synth: a feedback delay and a compressor.
package fx

import "github.com/gopxl/beep"

// Effect processes stereo frames in place.
type Effect interface {
	ProcessSample(samples [][2]float64)
	GetSetter(k string) func(float64)
}

// Apply runs the effects, in order, over everything src streams.
func Apply(src beep.Streamer, effects ...Effect) beep.Streamer {
	if len(effects) == 0 {
		return src
	}
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		n, ok = src.Stream(samples)
		for _, e := range effects {
			e.ProcessSample(samples[:n])
		}
		return n, ok
	})
}
