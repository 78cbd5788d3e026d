package fmsynth

import "errors"

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrEmptyResource    = errors.New("resource contains no samples")
	ErrUnknownParam     = errors.New("unknown parameter")
	ErrInvalidConfig    = errors.New("invalid config")
)
