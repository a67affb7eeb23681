package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:8081", "-g", ":50052", "-d", "db", "-l", "warn", "-r", "hubs.toml", "-t", "3",
			},
			expected: &Config{
				EndpointAddrHTTP: "127.0.0.1:8081",
				EndpointAddrGRPC: ":50052",
				DatabaseDSN:      "db",
				LogLevel:         "warn",
				HubRegistryFile:  "hubs.toml",
				ShutdownTimeout:  3 * time.Second,
			},
		},
		{
			name: "config flag is ignored here",
			args: []string{"cmd", "-c", "conf.json", "-d", "db2"},
			expected: &Config{
				DatabaseDSN: "db2",
			},
		},
		{
			name:        "bad int",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
