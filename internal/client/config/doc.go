// Package config loads runtime configuration for the urgekeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file (see parseFile) selected via -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// The assembled Config is checked with go-playground/validator; LoadConfig
// panics on an invalid result.
//
// Supported flags
//
//	-a string   address:port of the record store ("" runs local-only)
//	-t string   access token
//	-d string   local SQLite database path
//	-p int      history poll interval (seconds)
//	-l int      events fetched per poll
//	-i int      online check interval (seconds)
//	-A string   comma separated admin identities
//
// # File schema
//
// Intervals use timex.Duration, so values can be either strings like "60s"
// or integer nanoseconds:
//
//	server_endpoint_addr: 127.0.0.1:50051
//	access_token: eyJhbGciOi...
//	database_path: /home/me/.urgekeeper.db
//	poll_interval: 60s
//	fetch_limit: 200
//	online_check_interval: 30s
//	admin_identities: [me]
//	debug: false
//
// The JSON form uses the same keys.
package config
