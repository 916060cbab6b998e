// config.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements configuration loading. A .env file is read if
// present, then individual settings come from the environment with
// sensible defaults.

package boggle

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all server settings
type Config struct {
	DatabaseURL       string
	Port              string
	DictionaryDir     string
	DiceConfigDir     string
	DefaultDiceConfig string

	RoundMinutes   int
	GracePeriod    time.Duration
	Countdown      time.Duration
	ScoringWorkers int

	DisableAsyncScoring bool
	EnableStats         bool

	// TestingSeed pins the board seed for every round; tests only
	TestingSeed []byte
}

// LoadConfig reads .env (if any) and the environment
func LoadConfig() *Config {
	// Missing .env is fine; env vars may be set directly
	_ = godotenv.Load()

	return &Config{
		DatabaseURL: envOr(
			"DATABASE_URL",
			"postgres://boggle@localhost:5432/boggle",
		),
		Port:              envOr("PORT", "8080"),
		DictionaryDir:     envOr("DICTIONARY_DIR", "dictionaries"),
		DiceConfigDir:     envOr("DICE_CONFIG_DIR", "dice"),
		DefaultDiceConfig: envOr("DEFAULT_DICE_CONFIG", "International"),
		RoundMinutes:      envInt("ROUND_DURATION_MINUTES", 3),
		GracePeriod: time.Duration(
			envInt("GRACE_PERIOD_SECONDS", 10),
		) * time.Second,
		Countdown: time.Duration(
			envInt("DEFAULT_COUNTDOWN_SECONDS", 15),
		) * time.Second,
		ScoringWorkers:      envInt("SCORING_WORKERS", 4),
		DisableAsyncScoring: envBool("DISABLE_ASYNC_SCORING", false),
		EnableStats:         envBool("ENABLE_STATS", true),
	}
}

// envOr returns the environment setting, stripped of surrounding
// quotes and spaces, or the default if unset
func envOr(key, dflt string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.Trim(val, `" `)
	}
	return dflt
}

func envInt(key string, dflt int) int {
	if n, err := strconv.Atoi(envOr(key, "")); err == nil {
		return n
	}
	return dflt
}

func envBool(key string, dflt bool) bool {
	if b, err := strconv.ParseBool(envOr(key, "")); err == nil {
		return b
	}
	return dflt
}
