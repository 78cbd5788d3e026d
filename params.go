package fmsynth

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

type Param int

const (
	ParamLFORate Param = iota
	ParamModType
	ParamTuning
	ParamCutoff
	ParamGain
	ParamLFODepth
	ParamReserved
	ParamRichness
	ParamAMRatio
	ParamRelease
	ParamAttack
	ParamDecay
	ParamSustain
	ParamPan

	NumParams int = iota
)

type paramInfo struct {
	name string
	def  float64
}

var paramTable = [NumParams]paramInfo{
	ParamLFORate:  {"lforate", 0.25},
	ParamModType:  {"modtype", 0},
	ParamTuning:   {"tuning", 0.5},
	ParamCutoff:   {"cutoff", 0.75},
	ParamGain:     {"gain", 0.5},
	ParamLFODepth: {"lfodepth", 0},
	ParamReserved: {"reserved", 0},
	ParamRichness: {"richness", 0},
	ParamAMRatio:  {"amratio", 0},
	ParamRelease:  {"release", 0},
	ParamAttack:   {"attack", 0.01},
	ParamDecay:    {"decay", 0.4},
	ParamSustain:  {"sustain", 0.6},
	ParamPan:      {"pan", 0.5},
}

func (p Param) Valid() bool {
	return p >= 0 && int(p) < NumParams
}

func (p Param) String() string {
	if !p.Valid() {
		return fmt.Sprintf("param(%d)", int(p))
	}
	return paramTable[p].name
}

// Default returns the value a fresh parameter bank starts with.
func (p Param) Default() float64 {
	if !p.Valid() {
		return 0
	}
	return paramTable[p].def
}

func ParamByName(name string) (Param, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := range paramTable {
		if paramTable[i].name == name {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

// Params is the shared parameter bank. The UI side writes with Set while the
// audio side reads; each slot is a single atomic word so neither side blocks.
type Params struct {
	vals [NumParams]atomic.Uint64
}

func NewParams() *Params {
	p := &Params{}
	p.Reset()
	return p
}

func (p *Params) Reset() {
	for i := range p.vals {
		p.vals[i].Store(math.Float64bits(paramTable[i].def))
	}
}

// Get returns the value of param clamped to [0,1].
func (p *Params) Get(param Param) float64 {
	if !param.Valid() {
		return 0
	}
	return clamp01(math.Float64frombits(p.vals[param].Load()))
}

func (p *Params) Set(param Param, v float64) {
	if !param.Valid() {
		return
	}
	p.vals[param].Store(math.Float64bits(v))
}

func (p *Params) SetByName(name string, v float64) error {
	param, err := ParamByName(name)
	if err != nil {
		return err
	}
	p.Set(param, v)
	return nil
}

// GetSetter returns a setter for the named parameter, or nil when the name is
// unknown.
func (p *Params) GetSetter(name string) func(float64) {
	param, err := ParamByName(name)
	if err != nil {
		return nil
	}
	return func(v float64) {
		p.Set(param, v)
	}
}

// Snapshot reads every parameter once.
func (p *Params) Snapshot() Values {
	var v Values
	for i := range v {
		v[i] = p.Get(Param(i))
	}
	return v
}

type Values [NumParams]float64

func (v *Values) Get(p Param) float64 {
	if !p.Valid() {
		return 0
	}
	return v[p]
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
