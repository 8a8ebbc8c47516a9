package difficulty

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStandardProfile(t *testing.T) {
	p := StandardProfile()
	if p.Name != "standard" {
		t.Errorf("Name = %q, want standard", p.Name)
	}
	if p.HighRateThreshold != 3 || p.LowRateThreshold != 1 {
		t.Errorf("rate thresholds = %g/%g, want 3/1", p.HighRateThreshold, p.LowRateThreshold)
	}
	if p.IdleSecondsThreshold != 5 {
		t.Errorf("IdleSecondsThreshold = %g, want 5", p.IdleSecondsThreshold)
	}
	if p.MinSpeed != 0.5 || p.MaxSpeed != 2.0 {
		t.Errorf("speed clamp = [%g, %g], want [0.5, 2.0]", p.MinSpeed, p.MaxSpeed)
	}
	if p.MinTolerance != 0.7 || p.MaxTolerance != 1.8 {
		t.Errorf("tolerance clamp = [%g, %g], want [0.7, 1.8]", p.MinTolerance, p.MaxTolerance)
	}
	if err := p.validate(); err != nil {
		t.Errorf("validate() error: %v", err)
	}
}

func TestAccessibilityProfile(t *testing.T) {
	p := AccessibilityProfile()
	if p.Name != "accessibility" {
		t.Errorf("Name = %q, want accessibility", p.Name)
	}
	if p.HighRateThreshold != 4 || p.LowRateThreshold != 2 {
		t.Errorf("rate thresholds = %g/%g, want 4/2", p.HighRateThreshold, p.LowRateThreshold)
	}
	if p.IdleSecondsThreshold != 3 {
		t.Errorf("IdleSecondsThreshold = %g, want 3", p.IdleSecondsThreshold)
	}
	if p.StrugglingSpeed != 0.6 || p.StrugglingTolerance != 1.7 {
		t.Errorf("struggling targets = %g/%g, want 0.6/1.7", p.StrugglingSpeed, p.StrugglingTolerance)
	}
	if p.MinSpeed != 0.4 || p.MaxSpeed != 1.8 {
		t.Errorf("speed clamp = [%g, %g], want [0.4, 1.8]", p.MinSpeed, p.MaxSpeed)
	}
	if err := p.validate(); err != nil {
		t.Errorf("validate() error: %v", err)
	}
}

func TestResolveProfile_Builtin(t *testing.T) {
	p, err := ResolveProfile("accessibility", "")
	if err != nil {
		t.Fatalf("ResolveProfile() error: %v", err)
	}
	if p.Name != "accessibility" {
		t.Errorf("Name = %q, want accessibility", p.Name)
	}
}

func TestResolveProfile_Unknown(t *testing.T) {
	_, err := ResolveProfile("nonexistent", "")
	if err == nil {
		t.Error("ResolveProfile() should error for unknown profile name")
	}
}

const profilesYAML = `profiles:
  - name: gentle
    highRateThreshold: 5
    speedGainPerPop: 0.05
    speedGainCap: 1.3
    toleranceLossPerPop: 0.02
    toleranceLossFloor: 0.9
    lowRateThreshold: 2
    strugglingSpeed: 0.6
    strugglingTolerance: 1.6
    idleSecondsThreshold: 4
    idleSpeedFactor: 0.7
    idleToleranceFactor: 1.3
    minSpeed: 0.4
    maxSpeed: 1.6
    minTolerance: 0.8
    maxTolerance: 1.9
`

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfiles(t *testing.T) {
	path := writeProfiles(t, profilesYAML)

	profiles, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles() error: %v", err)
	}
	p, ok := profiles["gentle"]
	if !ok {
		t.Fatal("gentle profile missing")
	}
	if p.HighRateThreshold != 5 {
		t.Errorf("HighRateThreshold = %g, want 5", p.HighRateThreshold)
	}
	if p.MaxSpeed != 1.6 {
		t.Errorf("MaxSpeed = %g, want 1.6", p.MaxSpeed)
	}
}

func TestLoadProfiles_InvalidClampRange(t *testing.T) {
	path := writeProfiles(t, `profiles:
  - name: broken
    highRateThreshold: 3
    lowRateThreshold: 1
    strugglingSpeed: 0.7
    strugglingTolerance: 1.5
    idleSecondsThreshold: 5
    idleSpeedFactor: 0.7
    idleToleranceFactor: 1.3
    minSpeed: 2.0
    maxSpeed: 0.5
    minTolerance: 0.7
    maxTolerance: 1.8
`)

	if _, err := LoadProfiles(path); err == nil {
		t.Error("LoadProfiles() should reject an inverted speed clamp range")
	}
}

func TestLoadProfiles_MissingFile(t *testing.T) {
	if _, err := LoadProfiles("/nonexistent/profiles.yaml"); err == nil {
		t.Error("LoadProfiles() should error for a missing file")
	}
}

func TestResolveProfile_FileOverridesBuiltin(t *testing.T) {
	path := writeProfiles(t, `profiles:
  - name: standard
    highRateThreshold: 6
    speedGainPerPop: 0.1
    speedGainCap: 1.5
    toleranceLossPerPop: 0.05
    toleranceLossFloor: 0.8
    lowRateThreshold: 1
    strugglingSpeed: 0.7
    strugglingTolerance: 1.5
    idleSecondsThreshold: 5
    idleSpeedFactor: 0.7
    idleToleranceFactor: 1.3
    minSpeed: 0.5
    maxSpeed: 2.0
    minTolerance: 0.7
    maxTolerance: 1.8
`)

	p, err := ResolveProfile("standard", path)
	if err != nil {
		t.Fatalf("ResolveProfile() error: %v", err)
	}
	if p.HighRateThreshold != 6 {
		t.Errorf("HighRateThreshold = %g, want 6 (file should override builtin)", p.HighRateThreshold)
	}
}
