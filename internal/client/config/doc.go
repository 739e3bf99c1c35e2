// Package config loads runtime configuration for the pointpool CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. POINTPOOL_SERVER_ADDR and POINTPOOL_STATE_FILE from the environment.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-t int      request timeout (seconds)
//	-f string   sqlite file keeping the session between runs
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "state_file": "pointpool.db"
//	}
package config
