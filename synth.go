package fmsynth

import (
	"log/slog"
)

const globalCutoff = 50.0 // Hz

// Synth owns what all voices share: the parameter bank, the wavetable and
// the global highpass applied to the mixed output.
type Synth struct {
	cfg        Config
	sampleRate float64
	log        *slog.Logger

	params    *Params
	wavetable *Wavetable

	// one filter state per output channel
	filterGlobal [2]*Filter
}

func New(cfg Config) (*Synth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sr := float64(cfg.SampleRate)
	s := &Synth{
		cfg:        cfg,
		sampleRate: sr,
		log:        cfg.logger(),
		params:     NewParams(),
		wavetable:  SilentWavetable(cfg.SampleRate, sr),
	}
	for i := range s.filterGlobal {
		s.filterGlobal[i] = NewHighPassFilter(sr)
	}
	return s, nil
}

// Initialise loads the configured resource, a single cycle of a 1 Hz sine.
// If it cannot be loaded the synth stays silent and the error is returned.
func (s *Synth) Initialise() error {
	if err := s.OpenResource(s.cfg.Resource); err != nil {
		return err
	}
	s.SetBaseFrequency(1)
	return nil
}

// OpenResource replaces the shared wavetable with the contents of the named
// WAV file. On failure the previous table is replaced by silence.
func (s *Synth) OpenResource(name string) error {
	wt, err := OpenWavetable(name)
	if err != nil {
		s.log.Warn("wavetable unavailable, using silence", "resource", name, "err", err)
		s.wavetable = SilentWavetable(s.cfg.SampleRate, s.sampleRate)
		return err
	}
	s.log.Debug("wavetable loaded", "resource", name, "samples", wt.Len(), "rate", wt.SampleRate())
	s.wavetable = wt
	return nil
}

// SetWavetable installs an in-memory table. Like OpenResource it must happen
// before voices are rendered.
func (s *Synth) SetWavetable(wt *Wavetable) {
	if wt == nil {
		wt = SilentWavetable(s.cfg.SampleRate, s.sampleRate)
	}
	s.wavetable = wt
}

func (s *Synth) SetBaseFrequency(hz float64) {
	s.wavetable.SetBaseFrequency(hz)
}

func (s *Synth) Wavetable() *Wavetable { return s.wavetable }
func (s *Synth) Params() *Params       { return s.params }
func (s *Synth) SampleRate() float64   { return s.sampleRate }
func (s *Synth) Config() Config        { return s.cfg }

// CreateVoice returns a voice bound to this synth. Pool sizing and stealing
// are up to the caller.
func (s *Synth) CreateVoice() *Voice {
	return newVoice(s)
}

// PostProcess runs the global highpass over the summed voices in place.
func (s *Synth) PostProcess(out [][]float64, numSamples int) {
	for ch := 0; ch < len(out) && ch < len(s.filterGlobal); ch++ {
		f := s.filterGlobal[ch]
		f.SetCutoff(globalCutoff)

		n := numSamples
		if len(out[ch]) < n {
			n = len(out[ch])
		}
		buf := out[ch]
		for i := 0; i < n; i++ {
			buf[i] = f.Tick(buf[i])
		}
	}
}
