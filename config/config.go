// Package config loads server configuration the way the teacher's
// config.Load does: start from in-code defaults, overlay an optional
// JSON file, then overlay environment variables — grounded on
// config/config.go of the example this module was built from.
package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
)

// BotProfile tunes one simulated player's play style, carried over from
// the teacher's AIParams (delay and forgetfulness, minus anything
// power-up specific).
type BotProfile struct {
	Name               string `json:"name"`
	DelayMinMS         int    `json:"delay_min_ms"`
	DelayMaxMS         int    `json:"delay_max_ms"`
	UseKnownPairChance int    `json:"use_known_pair_chance"` // 0-100
	ForgetChance       int    `json:"forget_chance"`         // 0-100
}

// Config holds every configurable parameter for the board server.
type Config struct {
	BoardFile string `json:"board_file"`

	ListenAddr        string `json:"listen_addr"`
	WatchTimeoutSec   int    `json:"watch_timeout_sec"`
	WSPingIntervalSec int    `json:"ws_ping_interval_sec"`

	// ResetToken gates POST /reset. Empty disables the endpoint entirely;
	// there is no general authentication layer (spec Non-goal), so this
	// is the one operator-facing credential the server checks.
	ResetToken string `json:"reset_token"`

	// RateLimitPerSec and RateLimitBurst bound how fast a single
	// player id may issue POST /flip requests.
	RateLimitPerSec float64 `json:"rate_limit_per_sec"`
	RateLimitBurst  int     `json:"rate_limit_burst"`

	// SimEnabled starts the in-process bot harness against the live
	// board on boot (useful for demos and load generation).
	SimEnabled  bool         `json:"sim_enabled"`
	SimPlayers  int          `json:"sim_players"`
	BotProfiles []BotProfile `json:"bot_profiles"`
}

// Defaults returns a Config with every field set to its default value.
func Defaults() *Config {
	return &Config{
		BoardFile:         "board.txt",
		ListenAddr:        ":8080",
		WatchTimeoutSec:   30,
		WSPingIntervalSec: 20,
		ResetToken:        "",
		RateLimitPerSec:   5,
		RateLimitBurst:    10,
		SimEnabled:        false,
		SimPlayers:        2,
		BotProfiles: []BotProfile{
			{Name: "Mnemosyne", DelayMinMS: 800, DelayMaxMS: 2200, UseKnownPairChance: 90, ForgetChance: 1},
			{Name: "Calliope", DelayMinMS: 400, DelayMaxMS: 1200, UseKnownPairChance: 75, ForgetChance: 15},
		},
	}
}

// Load reads configuration from an optional config.json file, then
// applies environment variable overrides. Fields absent from both
// sources keep their default values. Call godotenv.Load() before Load if
// a .env file should seed the process environment (see main.go).
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config.json", "tag", "config", "error", err)
		}
	}

	overrideString(&cfg.BoardFile, "BOARD_FILE")
	overrideString(&cfg.ListenAddr, "LISTEN_ADDR")
	overrideInt(&cfg.WatchTimeoutSec, "WATCH_TIMEOUT_SEC")
	overrideInt(&cfg.WSPingIntervalSec, "WS_PING_INTERVAL_SEC")
	overrideString(&cfg.ResetToken, "RESET_TOKEN")
	overrideFloat(&cfg.RateLimitPerSec, "RATE_LIMIT_PER_SEC")
	overrideInt(&cfg.RateLimitBurst, "RATE_LIMIT_BURST")
	overrideBool(&cfg.SimEnabled, "SIM_ENABLED")
	overrideInt(&cfg.SimPlayers, "SIM_PLAYERS")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid int override", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*field = f
		} else {
			slog.Warn("invalid float override", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*field = b
		} else {
			slog.Warn("invalid bool override", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
