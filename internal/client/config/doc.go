// Package config loads runtime configuration for wastectl, the WasteHub
// admin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file passed with --config.
//  3. Environment: WASTEHUB_SERVER and WASTEHUB_ADMIN.
//  4. Command-line flags, applied by the cli package on top of the result.
//
// # JSON schema
//
// Durations accept strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "request_timeout": "10s",
//	  "admin_id": "7d0c..."
//	}
package config
