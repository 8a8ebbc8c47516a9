package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	RoundDuration     int // seconds
	GameMode          string
	DifficultyProfile string
	ProfilesPath      string // optional YAML file with extra profiles
}

func Load() Config {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RoundDuration:     getEnvInt("ROUND_DURATION", 60),
		GameMode:          getEnv("GAME_MODE", "cooperative"),
		DifficultyProfile: getEnv("DIFFICULTY_PROFILE", "standard"),
		ProfilesPath:      os.Getenv("DIFFICULTY_PROFILES_PATH"),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
