package fmsynth

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Wavetable is a single-cycle (or longer) recording read by WavetableOsc.
// It is filled once while the synth is initialised and only read after that,
// so any number of voices may share one table without locking.
type Wavetable struct {
	samples       []float64
	sampleRate    float64
	baseFrequency float64
}

func NewWavetable(samples []float64, sampleRate float64) *Wavetable {
	wt := &Wavetable{
		samples:       make([]float64, len(samples)),
		sampleRate:    sampleRate,
		baseFrequency: 1,
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		wt.samples[i] = v
	}
	return wt
}

// SilentWavetable is what the synth falls back to when its resource cannot
// be loaded.
func SilentWavetable(n int, sampleRate float64) *Wavetable {
	if n < 1 {
		n = 1
	}
	return &Wavetable{
		samples:       make([]float64, n),
		sampleRate:    sampleRate,
		baseFrequency: 1,
	}
}

// SineTable renders one cycle of a 1 Hz sine at sampleRate, the same content
// as the Sine.wav resource.
func SineTable(sampleRate int) *Wavetable {
	samples := make([]float64, sampleRate)
	for i := range samples {
		samples[i] = sineOsc(float64(i) / float64(sampleRate))
	}
	return NewWavetable(samples, float64(sampleRate))
}

func (wt *Wavetable) Len() int {
	return len(wt.samples)
}

func (wt *Wavetable) At(i int) float64 {
	if i < 0 || i >= len(wt.samples) {
		return 0
	}
	return wt.samples[i]
}

func (wt *Wavetable) SampleRate() float64 {
	return wt.sampleRate
}

func (wt *Wavetable) BaseFrequency() float64 {
	return wt.baseFrequency
}

// SetBaseFrequency declares the pitch the table plays at when read one
// sample per output sample. It must be called before any voice renders.
func (wt *Wavetable) SetBaseFrequency(hz float64) {
	if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return
	}
	wt.baseFrequency = hz
}

// increment is the read position advance per output sample for hz.
func (wt *Wavetable) increment(hz, sampleRate float64) float64 {
	if wt.baseFrequency <= 0 || sampleRate <= 0 {
		return 0
	}
	rate := wt.sampleRate
	if rate <= 0 {
		rate = sampleRate
	}
	inc := hz / wt.baseFrequency * rate / sampleRate
	if math.IsNaN(inc) || math.IsInf(inc, 0) {
		return 0
	}
	return inc
}

// LoadWavetable decodes a WAV stream, mixing stereo files down to mono.
func LoadWavetable(r io.Reader) (*Wavetable, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	defer s.Close()

	scale := pcmScale(format.Precision)
	samples := make([]float64, 0, s.Len())
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := range buf[:n] {
			if format.NumChannels > 1 {
				samples = append(samples, scale*(buf[i][0]+buf[i][1])/2)
			} else {
				samples = append(samples, scale*buf[i][0])
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading wav samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, ErrEmptyResource
	}

	return NewWavetable(samples, float64(format.SampleRate)), nil
}

// pcmScale undoes the wav decoder dividing signed 16 and 24 bit samples by
// the unsigned range, which would leave the table at half amplitude.
func pcmScale(precision int) float64 {
	switch precision {
	case 2, 3:
		bits := uint(8 * precision)
		return float64(uint64(1)<<bits-1) / float64(uint64(1)<<(bits-1)-1)
	}
	return 1
}

func OpenWavetable(path string) (*Wavetable, error) {
	fi, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
		}
		return nil, err
	}
	defer fi.Close()

	wt, err := LoadWavetable(fi)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return wt, nil
}

// Streamer plays the table once from the start.
func (wt *Wavetable) Streamer() beep.Streamer {
	var pos int
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(wt.samples) {
			return 0, false
		}
		n := copy2(samples, wt.samples[pos:])
		pos += n
		return n, true
	})
}

func copy2(dst [][2]float64, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}

// Save writes the table as a mono 16 bit WAV file.
func (wt *Wavetable) Save(w io.WriteSeeker) error {
	return wav.Encode(w, wt.Streamer(), beep.Format{
		SampleRate:  beep.SampleRate(int(wt.sampleRate)),
		NumChannels: 1,
		Precision:   2,
	})
}
