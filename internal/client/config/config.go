package config

import "time"

// Config holds runtime settings for the pointpool CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - RequestTimeout: deadline applied to every call to the server.
//   - StateFile: sqlite file keeping the session between runs.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	StateFile          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.StateFile = "pointpool.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
