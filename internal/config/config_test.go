package config

import (
	"errors"
	"testing"
)

func TestDefaultsFailValidationOnlyForMissingVideo(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error (InVideo unset)")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("error = %v, want it to wrap ErrConfiguration", err)
	}

	cfg.InVideo = "clip.mp4"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil once InVideo is set", err)
	}
}

func TestValidateRejectsLightRange(t *testing.T) {
	cfg := Defaults()
	cfg.InVideo = "clip.mp4"
	cfg.LightMin = 200
	cfg.LightMax = 100
	if err := cfg.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Validate() error = %v, want ErrConfiguration for light-min >= light-max", err)
	}
}

func TestValidateRejectsSurfaceRange(t *testing.T) {
	cfg := Defaults()
	cfg.InVideo = "clip.mp4"
	cfg.SurfaceMin = 0
	if err := cfg.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Validate() error = %v, want ErrConfiguration for surface-min == 0", err)
	}
}

func TestValidateRejectsKBelowOne(t *testing.T) {
	cfg := Defaults()
	cfg.InVideo = "clip.mp4"
	cfg.K = 0
	if err := cfg.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Validate() error = %v, want ErrConfiguration for k < 1", err)
	}
}

func TestValidateRejectsFraMeteorMaxBelowMin(t *testing.T) {
	cfg := Defaults()
	cfg.InVideo = "clip.mp4"
	cfg.FraMeteorMin = 10
	cfg.FraMeteorMax = 5
	if err := cfg.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Validate() error = %v, want ErrConfiguration for fra-meteor-max < fra-meteor-min", err)
	}
}

func TestValidateRejectsFraEndBeforeFraStart(t *testing.T) {
	cfg := Defaults()
	cfg.InVideo = "clip.mp4"
	cfg.FraStart = 10
	cfg.FraEnd = 5
	if err := cfg.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Validate() error = %v, want ErrConfiguration for fra-end < fra-start", err)
	}
}

func TestValidateAllowsUnboundedFraEnd(t *testing.T) {
	cfg := Defaults()
	cfg.InVideo = "clip.mp4"
	cfg.FraStart = 100
	cfg.FraEnd = -1 // -1 means "until end of video", never compared against FraStart
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for the unbounded fra-end sentinel", err)
	}
}
