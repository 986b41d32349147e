package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  flow_log_path: data/flowlogs.txt
  lookup_path: data/lookup.txt
writers:
  - type: text
    enabled: true
  - type: clickhouse
    enabled: false
    clickhouse:
      host: localhost
  - type: clickhouse
    enabled: true
    clickhouse:
      host: ch.internal
      port: 9440
  - type: nats
    enabled: true
    nats:
      url: nats://localhost:4222
api:
  listen_addr: ":18080"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Pipeline.Format)
	assert.Equal(t, "data/flowlogs.txt", cfg.Pipeline.FlowLogPath)
	assert.Equal(t, "data/lookup.txt", cfg.Pipeline.LookupPath)
	require.Len(t, cfg.Writers, 4)
	assert.Equal(t, "output.txt", cfg.Writers[0].Text.OutputPath)
	assert.Equal(t, 9000, cfg.Writers[1].ClickHouse.Port)
	assert.Equal(t, "flowtag.reports", cfg.Writers[3].NATS.Subject)
	assert.Equal(t, ":18080", cfg.API.ListenAddr)
	assert.Equal(t, ":9090", cfg.API.GRPCListenAddr)

	ch, ok := cfg.ClickHouse()
	require.True(t, ok)
	assert.Equal(t, "ch.internal", ch.Host)
	assert.Equal(t, 9440, ch.Port)
	assert.Equal(t, "default", ch.Database)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeConfig(t, "pipeline: [unclosed"))
	assert.ErrorContains(t, err, "failed to unmarshal config YAML")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "default", cfg.Pipeline.Format)
	require.Len(t, cfg.Writers, 1)
	assert.Equal(t, "output.txt", cfg.Writers[0].Text.OutputPath)

	_, ok := cfg.ClickHouse()
	assert.False(t, ok)
}

func TestLoadConfig_Shipped(t *testing.T) {
	cfg, err := LoadConfig("../../configs/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Pipeline.Format)
	assert.Equal(t, "data/flowlogs.txt", cfg.Pipeline.FlowLogPath)
	require.Len(t, cfg.Writers, 4)
	_, ok := cfg.ClickHouse()
	assert.False(t, ok)
}
