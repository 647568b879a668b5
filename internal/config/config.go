package config

import "time"

// Config holds runtime settings for the scorecard CLI.
//
// Fields:
//   - BaseURL: root URL of the backend HTTP API.
//   - DatabasePath: path of the local sqlite file.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - SyncInterval: how often the queue processor runs while online.
//   - HTTPTimeout: per-request transport timeout.
//   - MaxSyncAttempts: failed deliveries before a queue item is quarantined.
type Config struct {
	BaseURL             string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	HTTPTimeout         time.Duration
	MaxSyncAttempts     int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "scorecard.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = 30 * time.Second
	c.HTTPTimeout = 10 * time.Second
	c.MaxSyncAttempts = 5
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
