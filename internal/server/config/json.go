package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/wastehub/internal/flagx"
	"github.com/dmitrijs2005/wastehub/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Duration
// fields accept "10s" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	LogLevel         string         `json:"log_level"`
	HubRegistryFile  string         `json:"hub_registry_file"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	DefaultPageSize  int            `json:"default_page_size"`
	MaxPageSize      int            `json:"max_page_size"`
}

// parseJson overlays values from the JSON file named by -c or -config.
// Keys missing from the file leave the current value untouched. An
// unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.HubRegistryFile, c.HubRegistryFile)
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.DefaultPageSize > 0 {
		config.DefaultPageSize = c.DefaultPageSize
	}
	if c.MaxPageSize > 0 {
		config.MaxPageSize = c.MaxPageSize
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
