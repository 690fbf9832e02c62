package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 15*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, []int{7, 28, 90, 365}, c.Analytics.TrendWindows)
	assert.Equal(t, 25.0, c.Analytics.BarometerScale)
	assert.Equal(t, "keep_first", c.Analytics.DedupPolicy)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	require.NoError(t, c.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
backend:
  type: memory
analytics:
  barometer_scale: 30
  dedup_policy: sum_volume
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, "memory", c.Backend.Type)
	assert.Equal(t, 30.0, c.Analytics.BarometerScale)
	assert.Equal(t, "sum_volume", c.Analytics.DedupPolicy)
	assert.Equal(t, 28, c.Analytics.ShortWindowDays, "untouched keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	env := map[string]string{
		"BACKEND":       "postgres",
		"POSTGRES_DSN":  "postgres://u:p@localhost/db",
		"KAFKA_BROKERS": "a:9092,b:9092",
		"HTTP_PORT":     "9090",
		"REDIS_ADDR":    "redis:6379",
	}
	c.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "postgres", c.Backend.Type)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 9090, c.Server.Port)
	assert.True(t, c.Redis.Enabled)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend.Type = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Backend.Type = "postgres" }},
		{"bad dedup policy", func(c *Config) { c.Analytics.DedupPolicy = "latest" }},
		{"inverted window bounds", func(c *Config) { c.Analytics.MaxWindowDays = 0 }},
		{"consumer without brokers", func(c *Config) { c.Kafka.Consumer.Enabled = true }},
		{"zero scale", func(c *Config) { c.Analytics.BarometerScale = 0 }},
		{"negative trend window", func(c *Config) { c.Analytics.TrendWindows = []int{7, -1} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
