package difficulty

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile holds the tuning thresholds for the periodic adjustment algorithm.
// One parameterized algorithm serves every profile; callers pick a profile by
// name (env config) instead of the code hard-coding a variant.
type Profile struct {
	Name string `yaml:"name"`

	// Pops per rate window above which difficulty tightens.
	HighRateThreshold float64 `yaml:"highRateThreshold"`
	// Speed added per pop above the threshold, and its cap.
	SpeedGainPerPop float64 `yaml:"speedGainPerPop"`
	SpeedGainCap    float64 `yaml:"speedGainCap"`
	// Tolerance removed per pop above the threshold, and its floor.
	ToleranceLossPerPop float64 `yaml:"toleranceLossPerPop"`
	ToleranceLossFloor  float64 `yaml:"toleranceLossFloor"`

	// Pops per rate window below which the player counts as struggling.
	LowRateThreshold    float64 `yaml:"lowRateThreshold"`
	StrugglingSpeed     float64 `yaml:"strugglingSpeed"`
	StrugglingTolerance float64 `yaml:"strugglingTolerance"`

	// Idle easing applied on top of the rate branches.
	IdleSecondsThreshold float64 `yaml:"idleSecondsThreshold"`
	IdleSpeedFactor      float64 `yaml:"idleSpeedFactor"`
	IdleToleranceFactor  float64 `yaml:"idleToleranceFactor"`

	// Final clamp ranges for the computed targets.
	MinSpeed     float64 `yaml:"minSpeed"`
	MaxSpeed     float64 `yaml:"maxSpeed"`
	MinTolerance float64 `yaml:"minTolerance"`
	MaxTolerance float64 `yaml:"maxTolerance"`
}

// StandardProfile is the general-audience tuning.
func StandardProfile() Profile {
	return Profile{
		Name:                 "standard",
		HighRateThreshold:    3,
		SpeedGainPerPop:      0.1,
		SpeedGainCap:         1.5,
		ToleranceLossPerPop:  0.05,
		ToleranceLossFloor:   0.8,
		LowRateThreshold:     1,
		StrugglingSpeed:      0.7,
		StrugglingTolerance:  1.5,
		IdleSecondsThreshold: 5,
		IdleSpeedFactor:      0.7,
		IdleToleranceFactor:  1.3,
		MinSpeed:             0.5,
		MaxSpeed:             2.0,
		MinTolerance:         0.7,
		MaxTolerance:         1.8,
	}
}

// AccessibilityProfile is the gentler tuning for cognitively impaired
// players: slower to tighten, quicker to ease, wider tolerance ceiling.
func AccessibilityProfile() Profile {
	return Profile{
		Name:                 "accessibility",
		HighRateThreshold:    4,
		SpeedGainPerPop:      0.1,
		SpeedGainCap:         1.5,
		ToleranceLossPerPop:  0.05,
		ToleranceLossFloor:   0.8,
		LowRateThreshold:     2,
		StrugglingSpeed:      0.6,
		StrugglingTolerance:  1.7,
		IdleSecondsThreshold: 3,
		IdleSpeedFactor:      0.6,
		IdleToleranceFactor:  1.4,
		MinSpeed:             0.4,
		MaxSpeed:             1.8,
		MinTolerance:         0.8,
		MaxTolerance:         2.0,
	}
}

// BuiltinProfiles returns the compiled-in profiles keyed by name.
func BuiltinProfiles() map[string]Profile {
	return map[string]Profile{
		"standard":      StandardProfile(),
		"accessibility": AccessibilityProfile(),
	}
}

type profilesFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads additional profiles from a YAML file.
func LoadProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing profiles file: %w", err)
	}

	loaded := make(map[string]Profile, len(file.Profiles))
	for _, p := range file.Profiles {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		if _, dup := loaded[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		loaded[p.Name] = p
	}
	return loaded, nil
}

// ResolveProfile looks up name among the built-in profiles, extended and
// overridden by the YAML file at path when path is non-empty.
func ResolveProfile(name, path string) (Profile, error) {
	profiles := BuiltinProfiles()
	if path != "" {
		loaded, err := LoadProfiles(path)
		if err != nil {
			return Profile{}, err
		}
		for n, p := range loaded {
			profiles[n] = p
		}
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown difficulty profile %q", name)
	}
	return p, nil
}

func (p Profile) validate() error {
	if p.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if p.MinSpeed <= 0 || p.MinSpeed >= p.MaxSpeed {
		return fmt.Errorf("speed clamp range [%g, %g] is invalid", p.MinSpeed, p.MaxSpeed)
	}
	if p.MinTolerance <= 0 || p.MinTolerance >= p.MaxTolerance {
		return fmt.Errorf("tolerance clamp range [%g, %g] is invalid", p.MinTolerance, p.MaxTolerance)
	}
	if p.HighRateThreshold <= p.LowRateThreshold {
		return fmt.Errorf("highRateThreshold %g must exceed lowRateThreshold %g", p.HighRateThreshold, p.LowRateThreshold)
	}
	if p.SpeedGainPerPop < 0 || p.ToleranceLossPerPop < 0 {
		return fmt.Errorf("per-pop adjustments cannot be negative")
	}
	if p.IdleSecondsThreshold <= 0 {
		return fmt.Errorf("idleSecondsThreshold must be positive")
	}
	if p.IdleSpeedFactor <= 0 || p.IdleToleranceFactor <= 0 {
		return fmt.Errorf("idle factors must be positive")
	}
	return nil
}
