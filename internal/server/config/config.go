// Package config handles configuration for the library service,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the library service.
//
// Fields:
//   - EndpointAddr: bind address of the line-protocol listener.
//   - HealthAddrGRPC: bind address of the gRPC health endpoint; empty disables it.
//   - CatalogSource: initial catalog. Empty uses the built-in titles; otherwise a
//     file path or an s3://bucket/key URL.
//   - MaxUsers / MaxBooks: table capacities.
//   - MaxTokenLen: longest command or argument kept from a request.
//   - ReadBufferSize: size of the single read performed per connection.
//   - AcceptPollInterval: how long the listener blocks in accept before
//     re-checking for shutdown.
//   - ActivityLogPath: shared activity log file.
//   - S3Region / S3BaseEndpoint / S3RootUser / S3RootPassword: object storage
//     settings used when CatalogSource is an s3:// URL.
type Config struct {
	EndpointAddr       string
	HealthAddrGRPC     string
	CatalogSource      string
	MaxUsers           int
	MaxBooks           int
	MaxTokenLen        int
	ReadBufferSize     int
	AcceptPollInterval time.Duration
	ActivityLogPath    string
	S3Region           string
	S3BaseEndpoint     string
	S3RootUser         string
	S3RootPassword     string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.HealthAddrGRPC = ":50051"
	c.CatalogSource = ""
	c.MaxUsers = 100
	c.MaxBooks = 100
	c.MaxTokenLen = 49
	c.ReadBufferSize = 1024
	c.AcceptPollInterval = 1 * time.Second
	c.ActivityLogPath = "log.txt"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
