package config

import "errors"

// Validation errors. Validate wraps them with the offending field.
var (
	ErrParticleCount   = errors.New("config: particle count out of range")
	ErrBoxSize         = errors.New("config: box too small for particle radius")
	ErrLayoutOverflow  = errors.New("config: fluid layout does not fit the box")
	ErrParameterBounds = errors.New("config: parameter out of valid bounds")
	ErrUnknownLayout   = errors.New("config: unknown fluid layout")
)
