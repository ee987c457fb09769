package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	require.Equal(t, ":8080", c.Addr)
	require.Equal(t, 4, c.Concurrency)
	require.Equal(t, 15, c.LinkLimit)
	require.Equal(t, 10*time.Second, c.HTTPTimeout)
	require.Equal(t, "playwright", c.RenderBackend)
	require.Equal(t, 2*time.Second, c.SettleInterval)
	require.Equal(t, 30*time.Second, c.NavigationTimeout)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "chromedp upper", mutate: func(c *Config) { c.RenderBackend = "ChromeDP" }},
		{name: "negative concurrency", mutate: func(c *Config) { c.Concurrency = -1 }, wantErr: "invalid concurrency"},
		{name: "bad backend", mutate: func(c *Config) { c.RenderBackend = "lynx" }, wantErr: "invalid renderbackend"},
		{name: "too many retries", mutate: func(c *Config) { c.MaxRetries = 9 }, wantErr: "invalid maxretries"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "invalid logformat"},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimit = -2 }, wantErr: "invalid ratelimit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{}
			tt.mutate(&c)
			c.ApplyDefaults()

			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
