package config

import "time"

// Config holds runtime settings for the workload generator.
//
// Fields:
//   - ServerEndpointAddr: host:port of the library listener.
//   - ActivityLogPath: shared activity log the generator appends to.
//   - DialTimeout: how long a single connection attempt may take.
type Config struct {
	ServerEndpointAddr string
	ActivityLogPath    string
	DialTimeout        time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:8080"
	c.ActivityLogPath = "log.txt"
	c.DialTimeout = 5 * time.Second
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
