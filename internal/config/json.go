package config

import (
	"encoding/json"
	"os"

	"github.com/fairwaylabs/scorecard/internal/flagx"
	"github.com/fairwaylabs/scorecard/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	BaseURL             string         `json:"base_url"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	HTTPTimeout         timex.Duration `json:"http_timeout"`
	MaxSyncAttempts     int            `json:"max_sync_attempts"`
}

// parseJson overlays cfg with values from the JSON file named by -c or
// -config. Zero-valued JSON fields leave the existing value in place, so a
// partial file overrides only what it mentions. Panics on read or unmarshal
// errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.OnlineCheckInterval.Std() != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Std()
	}
	if jc.SyncInterval.Std() != 0 {
		cfg.SyncInterval = jc.SyncInterval.Std()
	}
	if jc.HTTPTimeout.Std() != 0 {
		cfg.HTTPTimeout = jc.HTTPTimeout.Std()
	}
	if jc.MaxSyncAttempts != 0 {
		cfg.MaxSyncAttempts = jc.MaxSyncAttempts
	}
}
