package config

import "time"

const (
	EnvServer = "WASTEHUB_SERVER"
	EnvAdmin  = "WASTEHUB_ADMIN"
)

// Config holds runtime settings for wastectl.
//
// ServerURL is the base URL of the HTTP API. AdminID, when set, is used as
// the acting administrator for verify and reject.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	AdminID        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.AdminID = ""
}

// LoadConfig applies defaults, then the JSON file at path (skipped when
// path is empty), then the environment. lookupEnv is usually os.LookupEnv.
func LoadConfig(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	parseEnv(cfg, lookupEnv)
	return cfg, nil
}

func parseEnv(cfg *Config, lookupEnv func(string) (string, bool)) {
	if lookupEnv == nil {
		return
	}
	if v, ok := lookupEnv(EnvServer); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := lookupEnv(EnvAdmin); ok && v != "" {
		cfg.AdminID = v
	}
}
