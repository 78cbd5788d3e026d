package fmsynth

import (
	"fmt"
	"io"
	"log/slog"
)

const (
	DefaultSampleRate = 44100
	DefaultBlockSize  = 256
	DefaultMaxVoices  = 16
	DefaultResource   = "Sine.wav"
)

type Config struct {
	SampleRate int
	// BlockSize is the largest number of frames the Instrument hands to a
	// voice in one Process call.
	BlockSize int
	MaxVoices int
	// Resource is the WAV file loaded into the shared wavetable.
	Resource string

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
		MaxVoices:  DefaultMaxVoices,
		Resource:   DefaultResource,
	}
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	}
	if c.MaxVoices <= 0 {
		return fmt.Errorf("%w: max voices %d", ErrInvalidConfig, c.MaxVoices)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
