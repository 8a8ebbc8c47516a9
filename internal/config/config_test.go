package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ROUND_DURATION", "")
	t.Setenv("GAME_MODE", "")
	t.Setenv("DIFFICULTY_PROFILE", "")
	t.Setenv("DIFFICULTY_PROFILES_PATH", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "")
	}
	if cfg.RoundDuration != 60 {
		t.Errorf("RoundDuration = %d, want %d", cfg.RoundDuration, 60)
	}
	if cfg.GameMode != "cooperative" {
		t.Errorf("GameMode = %q, want %q", cfg.GameMode, "cooperative")
	}
	if cfg.DifficultyProfile != "standard" {
		t.Errorf("DifficultyProfile = %q, want %q", cfg.DifficultyProfile, "standard")
	}
	if cfg.ProfilesPath != "" {
		t.Errorf("ProfilesPath = %q, want empty", cfg.ProfilesPath)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://localhost/balloonpop")
	t.Setenv("ROUND_DURATION", "30")
	t.Setenv("GAME_MODE", "competitive")
	t.Setenv("DIFFICULTY_PROFILE", "accessibility")
	t.Setenv("DIFFICULTY_PROFILES_PATH", "/etc/balloonpop/profiles.yaml")

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.DatabaseURL != "postgres://localhost/balloonpop" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "postgres://localhost/balloonpop")
	}
	if cfg.RoundDuration != 30 {
		t.Errorf("RoundDuration = %d, want %d", cfg.RoundDuration, 30)
	}
	if cfg.GameMode != "competitive" {
		t.Errorf("GameMode = %q, want %q", cfg.GameMode, "competitive")
	}
	if cfg.DifficultyProfile != "accessibility" {
		t.Errorf("DifficultyProfile = %q, want %q", cfg.DifficultyProfile, "accessibility")
	}
	if cfg.ProfilesPath != "/etc/balloonpop/profiles.yaml" {
		t.Errorf("ProfilesPath = %q, want %q", cfg.ProfilesPath, "/etc/balloonpop/profiles.yaml")
	}
}

func TestLoad_InvalidRoundDuration(t *testing.T) {
	t.Setenv("ROUND_DURATION", "abc")

	cfg := Load()

	if cfg.RoundDuration != 60 {
		t.Errorf("RoundDuration = %d, want %d (fallback)", cfg.RoundDuration, 60)
	}
}
