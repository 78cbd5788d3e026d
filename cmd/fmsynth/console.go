package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/whyrusleeping/fmsynth"
)

var errQuit = errors.New("quit")

// Console is the interactive parameter editor shown while playing.
type Console struct {
	params   *fmsynth.Params
	inst     Player
	recorder *fmsynth.Recorder
	out      io.Writer

	sampleRate float64
	scope      [][2]float64
	held       map[int]func()
}

func NewConsole(inst *fmsynth.Instrument, rec *fmsynth.Recorder, out io.Writer) *Console {
	return &Console{
		params:     inst.Synth().Params(),
		inst:       inst,
		recorder:   rec,
		out:        out,
		sampleRate: inst.Synth().SampleRate(),
		scope:      make([][2]float64, 4096),
		held:       make(map[int]func()),
	}
}

var commands = []prompt.Suggest{
	{Text: "set", Description: "set <param> <value>"},
	{Text: "get", Description: "get <param>"},
	{Text: "list", Description: "show every parameter"},
	{Text: "reset", Description: "restore default parameters"},
	{Text: "note", Description: "note <pitch> [velocity], toggles a held note"},
	{Text: "scope", Description: "level and dominant frequency of the output"},
	{Text: "exit", Description: "stop playing"},
}

func paramSuggestions() []prompt.Suggest {
	s := make([]prompt.Suggest, 0, fmsynth.NumParams)
	for p := fmsynth.Param(0); p < fmsynth.NumParams; p++ {
		s = append(s, prompt.Suggest{
			Text:        p.String(),
			Description: fmt.Sprintf("default %.2f", p.Default()),
		})
	}
	return s
}

func (c *Console) complete(d prompt.Document) []prompt.Suggest {
	args := strings.Fields(d.TextBeforeCursor())
	word := d.GetWordBeforeCursor()
	if len(args) == 0 || (len(args) == 1 && word != "") {
		return prompt.FilterHasPrefix(commands, word, true)
	}
	switch args[0] {
	case "set", "get":
		if len(args) == 1 || (len(args) == 2 && word != "") {
			return prompt.FilterHasPrefix(paramSuggestions(), word, true)
		}
	}
	return nil
}

// Run reads commands until "exit" or end of input.
func (c *Console) Run() {
	defer c.releaseAll()
	for {
		line := prompt.Input("> ", c.complete)
		if err := c.Exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			fmt.Fprintln(c.out, "ERROR: ", err)
		}
	}
}

func (c *Console) Exec(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "exit", "quit":
		return errQuit
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: set <param> <value>")
		}
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return err
		}
		return c.params.SetByName(args[1], v)
	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: get <param>")
		}
		p, err := fmsynth.ParamByName(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s = %.3f\n", p, c.params.Get(p))
	case "list":
		vals := c.params.Snapshot()
		for p := fmsynth.Param(0); p < fmsynth.NumParams; p++ {
			fmt.Fprintf(c.out, "%2d  %-10s %.3f\n", int(p), p, vals.Get(p))
		}
	case "reset":
		c.params.Reset()
	case "note":
		return c.toggleNote(args[1:])
	case "scope":
		return c.printScope()
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func (c *Console) toggleNote(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: note <pitch> [velocity]")
	}
	pitch, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	if stop, ok := c.held[pitch]; ok {
		stop()
		delete(c.held, pitch)
		return nil
	}
	vel := 0.8
	if len(args) == 2 {
		vel, err = strconv.ParseFloat(args[1], 64)
		if err != nil {
			return err
		}
	}
	c.held[pitch] = c.inst.Play(pitch, vel)
	return nil
}

func (c *Console) releaseAll() {
	for p, stop := range c.held {
		stop()
		delete(c.held, p)
	}
}

func (c *Console) printScope() error {
	if c.recorder == nil {
		return fmt.Errorf("no recorder attached")
	}
	n := c.recorder.Snapshot(c.scope)
	if n == 0 {
		fmt.Fprintln(c.out, "nothing recorded yet")
		return nil
	}
	mono := make([]float64, n)
	var sum, peak float64
	for i, f := range c.scope[:n] {
		mono[i] = (f[0] + f[1]) / 2
		sum += mono[i] * mono[i]
		peak = math.Max(peak, math.Abs(mono[i]))
	}
	fmt.Fprintf(c.out, "peak %.4f  rms %.4f\n", peak, math.Sqrt(sum/float64(n)))
	if peak == 0 {
		return nil
	}
	for _, b := range strongestBins(mono, c.sampleRate, 3) {
		fmt.Fprintf(c.out, "%9.1f Hz  %.4f\n", b.Freq, b.Magnitude)
	}
	return nil
}
