package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// LoadIni overlays flag defaults with values from an ini file (grounded on
// video.go's NewVideoFromFrames seqinfo.ini loader): every key is
// optional, and a missing key keeps whatever the caller already put in
// cfg (normally config.Defaults(), already overridden by any flags parsed
// before --config). Mirrors the detection section layout used in the
// original project's own config files.
func LoadIni(path string, cfg *Config) error {
	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("%w: failed to load %s: %v", ErrConfiguration, path, err)
	}

	section := file.Section("detection")

	cfg.FraStart = section.Key("fra_start").MustInt(cfg.FraStart)
	cfg.FraEnd = section.Key("fra_end").MustInt(cfg.FraEnd)
	cfg.SkipFra = section.Key("skip_fra").MustInt(cfg.SkipFra)

	cfg.LightMin = uint8(section.Key("light_min").MustInt(int(cfg.LightMin)))
	cfg.LightMax = uint8(section.Key("light_max").MustInt(int(cfg.LightMax)))
	cfg.SurfaceMin = uint32(section.Key("surface_min").MustInt(int(cfg.SurfaceMin)))
	cfg.SurfaceMax = uint32(section.Key("surface_max").MustInt(int(cfg.SurfaceMax)))

	cfg.K = section.Key("k").MustInt(cfg.K)
	cfg.RExtrapol = section.Key("r_extrapol").MustFloat64(cfg.RExtrapol)
	cfg.AngleMax = section.Key("angle_max").MustFloat64(cfg.AngleMax)
	cfg.DiffDev = section.Key("diff_dev").MustFloat64(cfg.DiffDev)
	cfg.DLine = section.Key("d_line").MustFloat64(cfg.DLine)

	cfg.FraStarMin = section.Key("fra_star_min").MustInt(cfg.FraStarMin)
	cfg.FraMeteorMin = section.Key("fra_meteor_min").MustInt(cfg.FraMeteorMin)
	cfg.FraMeteorMax = section.Key("fra_meteor_max").MustInt(cfg.FraMeteorMax)
	cfg.TrackAll = section.Key("track_all").MustBool(cfg.TrackAll)

	cfg.Workers = section.Key("workers").MustInt(cfg.Workers)
	cfg.QueueDepth = section.Key("queue_depth").MustInt(cfg.QueueDepth)

	return nil
}
