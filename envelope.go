package fmsynth

import "math"

type Stage int

const (
	StageIdle Stage = iota
	StageRamping
	StageLooping
	StageReleasing
	StageOff
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageRamping:
		return "ramping"
	case StageLooping:
		return "looping"
	case StageReleasing:
		return "releasing"
	case StageOff:
		return "off"
	}
	return "unknown"
}

// Point is an envelope breakpoint: Level is reached Time seconds after the
// envelope was set.
type Point struct {
	Time  float64
	Level float64
}

const maxPoints = 8

/*
  1 +     x
    |    / \
    |   /   \
  s +  /     x~~~~~~~~~x
    | /      |  loop   |\
    |/                   \
  0 +--------+---------+---x
    0    a   a+d       rel  off
*/

// Envelope is a piecewise-linear breakpoint generator with an optional loop
// range and a release that ramps to zero and switches the envelope off.
type Envelope struct {
	sampleRate float64

	points [maxPoints]Point
	n      int

	loopStart int
	loopEnd   int
	looping   bool

	pos   int64
	t     float64
	value float64
	stage Stage
}

func NewEnvelope(sampleRate float64) *Envelope {
	return &Envelope{sampleRate: sampleRate}
}

// Set replaces the breakpoints and restarts from time zero. Times are forced
// to be non-decreasing and at most eight points are kept.
func (e *Envelope) Set(points ...Point) {
	e.n = 0
	prev := 0.0
	for _, p := range points {
		if e.n == maxPoints {
			break
		}
		t := p.Time
		if math.IsNaN(t) || t < prev {
			t = prev
		}
		if math.IsInf(t, 1) {
			t = math.MaxFloat64
		}
		l := p.Level
		if math.IsNaN(l) || math.IsInf(l, 0) {
			l = 0
		}
		e.points[e.n] = Point{Time: t, Level: l}
		e.n++
		prev = t
	}

	e.looping = false
	e.pos = 0
	e.t = 0
	if e.n == 0 {
		e.value = 0
		e.stage = StageIdle
		return
	}
	e.value = e.points[0].Level
	e.stage = StageRamping
}

// SetLoop makes time wrap from point end back to point start instead of
// running past the end. start == end holds the level of that point.
func (e *Envelope) SetLoop(start, end int) {
	if e.n == 0 {
		return
	}
	if start > end {
		start, end = end, start
	}
	e.loopStart = clampIndex(start, e.n)
	e.loopEnd = clampIndex(end, e.n)
	e.looping = true
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Release ramps from the current value to zero over seconds, after which the
// envelope is off. Any loop is cancelled.
func (e *Envelope) Release(seconds float64) {
	if e.stage == StageOff {
		return
	}
	if e.stage == StageIdle {
		e.value = 0
		e.stage = StageOff
		return
	}
	if math.IsNaN(seconds) || seconds <= 0 {
		seconds = 1 / e.sampleRate
	}
	e.points[0] = Point{Time: 0, Level: e.value}
	e.points[1] = Point{Time: seconds, Level: 0}
	e.n = 2
	e.looping = false
	e.pos = 0
	e.t = 0
	e.stage = StageReleasing
}

func (e *Envelope) Stage() Stage {
	return e.stage
}

func (e *Envelope) Off() bool {
	return e.stage == StageOff
}

func (e *Envelope) Value() float64 {
	return e.value
}

// Tick advances by one sample period and returns the level at the new time.
func (e *Envelope) Tick() float64 {
	switch e.stage {
	case StageIdle, StageOff:
		e.value = 0
		return 0
	}

	last := e.points[e.n-1].Time
	if e.t < last || e.looping {
		e.pos++
		e.t = float64(e.pos) / e.sampleRate
	}

	if e.stage == StageReleasing && e.t >= last {
		e.value = 0
		e.stage = StageOff
		return 0
	}

	if e.looping {
		start := e.points[e.loopStart].Time
		end := e.points[e.loopEnd].Time
		if e.t >= end {
			e.stage = StageLooping
			period := end - start
			if period <= 0 {
				e.t = end
				e.pos = int64(math.Round(e.t * e.sampleRate))
				e.value = e.points[e.loopEnd].Level
				return e.value
			}
			e.t = start + math.Mod(e.t-start, period)
			// keep the sample counter in step with the wrapped time so
			// it cannot grow without bound
			e.pos = int64(math.Round(e.t * e.sampleRate))
		}
	}

	e.value = e.levelAt(e.t)
	return e.value
}

func (e *Envelope) levelAt(t float64) float64 {
	if t < e.points[0].Time {
		return e.points[0].Level
	}
	for i := 1; i < e.n; i++ {
		p0, p1 := e.points[i-1], e.points[i]
		if t >= p1.Time {
			continue
		}
		span := p1.Time - p0.Time
		if span <= 0 {
			return p1.Level
		}
		frac := (t - p0.Time) / span
		return p0.Level + (p1.Level-p0.Level)*frac
	}
	return e.points[e.n-1].Level
}
