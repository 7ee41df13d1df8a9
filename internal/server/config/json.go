package config

import (
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/dmitrijs2005/librarian/internal/flagx"
	"github.com/dmitrijs2005/librarian/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "1s" and integer nanoseconds are accepted.
//
// Only keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddr       *string         `json:"endpoint_addr"`
	HealthAddrGRPC     *string         `json:"health_addr_grpc"`
	CatalogSource      *string         `json:"catalog_source"`
	MaxUsers           *int            `json:"max_users"`
	MaxBooks           *int            `json:"max_books"`
	MaxTokenLen        *int            `json:"max_token_len"`
	ReadBufferSize     *int            `json:"read_buffer_size"`
	AcceptPollInterval *timex.Duration `json:"accept_poll_interval"`
	ActivityLogPath    *string         `json:"activity_log_path"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	S3RootUser         *string         `json:"s3_root_user"`
	S3RootPassword     *string         `json:"s3_root_password"`
}

// parseJson overlays config with the file named by -c/-config. Without the
// flag nothing happens; an unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.EndpointAddr, c.EndpointAddr)
	setIf(&config.HealthAddrGRPC, c.HealthAddrGRPC)
	setIf(&config.CatalogSource, c.CatalogSource)
	setIf(&config.MaxUsers, c.MaxUsers)
	setIf(&config.MaxBooks, c.MaxBooks)
	setIf(&config.MaxTokenLen, c.MaxTokenLen)
	setIf(&config.ReadBufferSize, c.ReadBufferSize)
	setIf(&config.ActivityLogPath, c.ActivityLogPath)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)

	if c.AcceptPollInterval != nil {
		config.AcceptPollInterval = c.AcceptPollInterval.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
