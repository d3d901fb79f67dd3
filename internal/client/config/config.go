package config

import "time"

// Config holds runtime settings for the shopkeeper CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the server gRPC endpoint.
//   - HTTPBaseURL: base URL of the server HTTP API, used for image uploads.
//   - RequestTimeout: deadline applied to each call to the server.
//   - Debug: log client diagnostics to stderr.
type Config struct {
	ServerEndpointAddr string
	HTTPBaseURL        string
	RequestTimeout     time.Duration
	Debug              bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.HTTPBaseURL = "http://127.0.0.1:4000"
	c.RequestTimeout = 5 * time.Second
	c.Debug = false
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
