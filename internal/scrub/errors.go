package scrub

import "errors"

var (
	// ErrInvalidDuration is returned when a geometry is built with a
	// non-positive video duration
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrInvalidLayout is returned when pitch, thumbnail count, or viewport
	// width is non-positive
	ErrInvalidLayout = errors.New("invalid strip layout dimensions")

	// ErrGeometryNotSet is returned when a time/offset conversion is
	// requested before the strip geometry has been provided
	ErrGeometryNotSet = errors.New("strip geometry has not been set")

	// ErrGeometryAlreadySet is returned when SetGeometry is called twice;
	// geometry is fixed for the lifetime of a synchronizer
	ErrGeometryAlreadySet = errors.New("strip geometry has already been set")
)
