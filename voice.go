package fmsynth

import "math"

const (
	releaseFloor  = 0.01 // seconds
	amFloor       = 20.0 // Hz
	lfoMinRate    = 0.1  // Hz
	lfoMaxRate    = 20.0 // Hz
	lfoDepthScale = 0.2
	cutoffMin     = 20.0    // Hz
	cutoffRange   = 19000.0 // Hz
	richnessScale = 16.0
)

// NoteToFrequency maps a MIDI note number to Hz, A4 (69) = 440 Hz.
func NoteToFrequency(note int) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

func clampPitch(pitch int) int {
	if pitch < 0 {
		return 0
	}
	if pitch > 127 {
		return 127
	}
	return pitch
}

// Voice renders one note. A full-velocity note is a "lead" and gets an extra
// amplitude modulator on top of the FM carrier pair.
type Voice struct {
	synth *Synth

	pitch       int
	carrierFreq float64
	level       float64
	lead        bool

	carrier1 WavetableOsc
	carrier2 Sine
	mod1     Sine
	mod2     Saw
	mod3     Sine
	lfo      Sine

	ampEnv Envelope
	pan1   Envelope
	pan2   Envelope

	filter Filter

	finished bool
}

func newVoice(s *Synth) *Voice {
	sr := s.sampleRate
	v := &Voice{
		synth:    s,
		carrier1: WavetableOsc{sampleRate: sr, table: s.wavetable},
		carrier2: Sine{phasor{sampleRate: sr}},
		mod1:     Sine{phasor{sampleRate: sr}},
		mod2:     Saw{phasor{sampleRate: sr}},
		mod3:     Sine{phasor{sampleRate: sr}},
		lfo:      Sine{phasor{sampleRate: sr}},
		ampEnv:   Envelope{sampleRate: sr},
		pan1:     Envelope{sampleRate: sr},
		pan2:     Envelope{sampleRate: sr},
	}
	v.filter = *NewLowPassFilter(sr)
	return v
}

func (v *Voice) Pitch() int                { return v.pitch }
func (v *Voice) Level() float64            { return v.level }
func (v *Voice) Lead() bool                { return v.lead }
func (v *Voice) CarrierFrequency() float64 { return v.carrierFreq }
func (v *Voice) Stage() Stage              { return v.ampEnv.Stage() }

// Active reports whether the amplitude envelope has not yet switched off.
func (v *Voice) Active() bool {
	return !v.ampEnv.Off()
}

// StartNote (re)initialises the voice for pitch. Attack, decay, sustain and
// pan are latched here; later edits to them only affect the next note.
func (v *Voice) StartNote(pitch int, velocity float64) {
	pitch = clampPitch(pitch)
	v.pitch = pitch
	v.carrierFreq = NoteToFrequency(pitch)

	params := v.synth.params
	attack := params.Get(ParamAttack)
	decay := params.Get(ParamDecay)
	sustain := params.Get(ParamSustain)
	pan := params.Get(ParamPan)

	v.carrier1.Reset()
	v.carrier2.Reset()
	v.mod1.Reset()
	v.mod2.Reset()
	v.mod3.Reset()
	v.lfo.Reset()
	v.filter.Reset()

	v.ampEnv.Set(Point{0, 0}, Point{attack, 1}, Point{attack + decay, sustain})
	v.ampEnv.SetLoop(2, 2)
	v.pan1.Set(Point{0, 1}, Point{1, pan})
	v.pan2.Set(Point{0, 0}, Point{1, 1 - pan})

	v.carrier1.SetTable(v.synth.wavetable)
	v.carrier2.SetFrequency(v.carrierFreq * 0.5)

	v.level = clamp01(velocity)
	v.lead = v.level == 1.0
	v.finished = false
}

// StopNote starts the release. It always returns false: the voice is never
// cut off here, it keeps rendering until Process reports it finished.
func (v *Voice) StopNote() bool {
	release := v.synth.params.Get(ParamRelease) + releaseFloor
	v.ampEnv.Release(release)
	return false
}

// Process overwrites the first numSamples frames of out[0] and out[1] with
// this voice's signal and reports whether the voice is still sounding. Once it
// has reported false it only writes silence.
func (v *Voice) Process(out [][]float64, numSamples int) bool {
	if len(out) > 2 {
		out = out[:2]
	}
	n := numSamples
	for _, ch := range out {
		if len(ch) < n {
			n = len(ch)
		}
	}
	if len(out) == 0 || n <= 0 {
		return !v.finished && v.Active()
	}
	if v.finished {
		for _, ch := range out {
			clear(ch[:n])
		}
		return false
	}

	p := v.synth.params.Snapshot()

	modFreq := v.carrierFreq * p.Get(ParamTuning)
	modIndex := 0.5 + 0.5*p.Get(ParamRichness)
	modIndex = modIndex * modIndex * modIndex * richnessScale
	gain := p.Get(ParamGain)
	sawMod := p.Get(ParamModType) != 0
	lfoRate := lfoMinRate + (lfoMaxRate-lfoMinRate)*p.Get(ParamLFORate)
	lfoDepth := p.Get(ParamLFODepth) * lfoDepthScale
	amFreq := v.carrierFreq*p.Get(ParamAMRatio) + amFloor
	deviation := modFreq * modIndex

	v.lfo.SetFrequency(lfoRate)
	v.filter.SetCutoff(cutoffMin + cutoffRange*p.Get(ParamCutoff))
	v.mod1.SetFrequency(modFreq)
	v.mod2.SetFrequency(modFreq)
	v.mod3.SetFrequency(amFreq)

	var modulator Oscillator = &v.mod1
	if sawMod {
		modulator = &v.mod2
	}

	left := out[0][:n]
	var right []float64
	if len(out) > 1 {
		right = out[1][:n]
	}

	for i := range left {
		mod := modulator.Tick() * deviation
		lfo := v.lfo.Tick()*lfoDepth + 0.5

		v.carrier1.SetFrequency(v.carrierFreq + mod)

		mix := v.carrier1.Tick()*v.pan1.Tick() + v.carrier2.Tick()*v.pan2.Tick()
		if v.lead {
			mix *= v.mod3.Tick()
		}
		mix *= v.level * v.ampEnv.Tick() * lfo * gain

		mix = v.filter.Tick(mix)
		left[i] = mix
		if right != nil {
			right[i] = mix
		}
	}

	if v.ampEnv.Off() {
		v.finished = true
		return false
	}
	return true
}
