// Package config loads runtime configuration for the shopkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c/-config or the
//     CONFIG environment variable.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the server gRPC endpoint
//	-h string   base URL of the server HTTP API (image uploads)
//	-t int      per-request timeout (seconds)
//	-v          debug logging
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "5s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "http_base_url": "http://127.0.0.1:4000",
//	  "request_timeout": "5s",
//	  "debug": false
//	}
package config
