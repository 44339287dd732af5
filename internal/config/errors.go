package config

import "errors"

// Sentinel error kinds (spec §7), wrapped with context via fmt.Errorf's
// %w verb at each call site so errors.Is still matches through the chain.
var (
	// ErrConfiguration marks a bad CLI flag or ini value: missing video
	// path, out-of-range numeric flag, fra-meteor-max < fra-meteor-min,
	// fra-star-min < 2. Reported to stderr and exits 1 before any frame
	// is processed.
	ErrConfiguration = errors.New("configuration error")

	// ErrCapacity marks a resource bound being exceeded: ROI count over
	// MaxROI or history ring exhausted. These are programming/capacity
	// bugs, not recoverable.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrIO marks a failure writing an output path.
	ErrIO = errors.New("io error")
)
