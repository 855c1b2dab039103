package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalYAML = `
app:
  name: m2sync
lmstfy:
  host: 127.0.0.1
  namespace: cover
  token: secret
workers:
  - name: status-update
    queue_name: magento2_status_update
    callback_queue: magento2_status_callback
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2, cfg.Magento2.Rest.Redelivery.Attempts)
	assert.Equal(t, 1000, cfg.Magento2.Rest.Redelivery.Delay)
	assert.Equal(t, time.Second, cfg.Magento2.Rest.Redelivery.DelayDuration())
	assert.Equal(t, 30*time.Second, cfg.Magento2.Rest.Timeout)
	assert.Equal(t, 7777, cfg.Lmstfy.Port)
	assert.Equal(t, "m2sync:cache:", cfg.Redis.CachePrefix)

	require.Len(t, cfg.Workers, 1)
	w := cfg.Workers[0]
	assert.Equal(t, 1, w.Subscriber.Threads)
	assert.Equal(t, 4, w.Processor.Threads)
	assert.Equal(t, 4, w.Processor.BufferSize)
	assert.Equal(t, 2*time.Minute, w.Processor.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	body := minimalYAML + `
magento2:
  shop_url: https://shop.example.com
  rest:
    timeout: 5s
    redelivery:
      attempts: 4
      delay: 250
`
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.Magento2.ShopURL)
	assert.Equal(t, 4, cfg.Magento2.Rest.Redelivery.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Magento2.Rest.Redelivery.DelayDuration())
	assert.Equal(t, 5*time.Second, cfg.Magento2.Rest.Timeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("M2SYNC_MAGENTO2_REST_REDELIVERY_ATTEMPTS", "7")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Magento2.Rest.Redelivery.Attempts)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(writeConfig(t, minimalYAML))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing app name", func(c *Config) { c.App.Name = "" }},
		{"missing lmstfy host", func(c *Config) { c.Lmstfy.Host = "" }},
		{"no workers", func(c *Config) { c.Workers = nil }},
		{"missing queue", func(c *Config) { c.Workers[0].QueueName = "" }},
		{"negative attempts", func(c *Config) { c.Magento2.Rest.Redelivery.Attempts = -1 }},
		{"negative delay", func(c *Config) { c.Magento2.Rest.Redelivery.Delay = -5 }},
		{"zero timeout", func(c *Config) { c.Magento2.Rest.Timeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
