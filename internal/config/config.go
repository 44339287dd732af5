// Package config holds the detector's tunables (spec §6 CLI surface) and
// their validation (spec §7 Configuration errors), independent of how
// they were sourced (flags or an ini file) so cmd/fmdt-detect and the
// pipeline package can share one struct.
package config

import "fmt"

// Config mirrors the detection binary's flag surface one field per flag.
type Config struct {
	InVideo   string
	OutBB     string
	OutFrames string
	OutStats  string

	FraStart int
	FraEnd   int
	SkipFra  int

	LightMin   uint8
	LightMax   uint8
	SurfaceMin uint32
	SurfaceMax uint32

	K         int
	RExtrapol float64
	AngleMax  float64
	DiffDev   float64
	DLine     float64

	FraStarMin   int
	FraMeteorMin int
	FraMeteorMax int
	TrackAll     bool

	// MaxROI bounds the Thresholder/CCL/FE/FM working set per frame (spec
	// §7 Capacity errors). No CLI flag; fixed generously for this project.
	MaxROI int

	// HistoryCapacity bounds the Tracker's ROI history ring (spec §3).
	HistoryCapacity int

	// Pipeline mode tunables (spec §5); only consulted when running in
	// pipeline mode rather than sequence mode.
	Workers    int
	QueueDepth int
}

// Defaults returns a Config with the source's documented defaults for
// every flag that has one.
func Defaults() Config {
	return Config{
		FraStart:   0,
		FraEnd:     -1,
		SkipFra:    0,
		LightMin:   0,
		LightMax:   255,
		SurfaceMin: 3,
		SurfaceMax: 1000,
		K:          3,
		RExtrapol:  10,
		AngleMax:   20,
		DiffDev:    3,
		DLine:      5,

		FraStarMin:   5,
		FraMeteorMin: 3,
		FraMeteorMax: 100,
		TrackAll:     false,

		MaxROI:          10000,
		HistoryCapacity: 4096,

		Workers:    4,
		QueueDepth: 16,
	}
}

// Validate checks every Configuration-error rule spec §7 names, plus the
// structural ones implied by the rest of spec.md (light-min < light-max,
// surface-min < surface-max, k >= 1). Every returned error wraps
// ErrConfiguration so callers can classify it with errors.Is.
func (c Config) Validate() error {
	if c.InVideo == "" {
		return fmt.Errorf("%w: --in-video is required", ErrConfiguration)
	}
	if c.LightMin >= c.LightMax {
		return fmt.Errorf("%w: --light-min (%d) must be less than --light-max (%d)", ErrConfiguration, c.LightMin, c.LightMax)
	}
	if c.SurfaceMin == 0 || c.SurfaceMin >= c.SurfaceMax {
		return fmt.Errorf("%w: --surface-min (%d) must be positive and less than --surface-max (%d)", ErrConfiguration, c.SurfaceMin, c.SurfaceMax)
	}
	if c.K < 1 {
		return fmt.Errorf("%w: -k (%d) must be at least 1", ErrConfiguration, c.K)
	}
	if c.FraStarMin < 2 {
		return fmt.Errorf("%w: --fra-star-min (%d) must be at least 2", ErrConfiguration, c.FraStarMin)
	}
	if c.FraMeteorMin < 2 {
		return fmt.Errorf("%w: --fra-meteor-min (%d) must be at least 2", ErrConfiguration, c.FraMeteorMin)
	}
	if c.FraMeteorMax < c.FraMeteorMin {
		return fmt.Errorf("%w: --fra-meteor-max (%d) must be at least --fra-meteor-min (%d)", ErrConfiguration, c.FraMeteorMax, c.FraMeteorMin)
	}
	if c.FraEnd >= 0 && c.FraEnd < c.FraStart {
		return fmt.Errorf("%w: --fra-end (%d) must be at least --fra-start (%d)", ErrConfiguration, c.FraEnd, c.FraStart)
	}
	if c.SkipFra < 0 {
		return fmt.Errorf("%w: --skip-fra (%d) must not be negative", ErrConfiguration, c.SkipFra)
	}
	return nil
}
