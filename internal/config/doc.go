// Package config loads runtime configuration for the scorecard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://api.example.com",
//	  "database_path": "scorecard.db",
//	  "online_check_interval": "3s",
//	  "sync_interval": "30s",
//	  "http_timeout": "10s",
//	  "max_sync_attempts": 5
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
