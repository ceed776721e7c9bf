package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
mqtt:
  enabled: true
  broker: tcp://broker:1883
  qos: 1
metrics:
  prometheus_enabled: true
api:
  enabled: true
  addr: ":8081"
simulator:
  technicians: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, ":8081", cfg.API.Addr)
	assert.Equal(t, 3, cfg.Simulator.Technicians)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "api:\n  enabled: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, ":9090", cfg.Metrics.PrometheusPort)
	assert.Equal(t, "fieldops-dispatch", cfg.MQTT.ClientID)
	assert.Equal(t, "fieldops/technicians/+/location", cfg.MQTT.LocationTopic)
	assert.Equal(t, "fieldops/notify/", cfg.MQTT.NotifyTopicPrefix)
	assert.Equal(t, 5, cfg.Simulator.Technicians)
	assert.Equal(t, 15, cfg.Simulator.IntervalSeconds)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"api":{"enabled":true,"addr":":9999"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.API.Addr)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingBrokerWhenEnabled(t *testing.T) {
	path := writeConfig(t, "config.yaml", "mqtt:\n  enabled: true\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "api:\n  enabled: true\n  addr: \":8080\"\n")
	t.Setenv("FO_API__ADDR", ":7070")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.API.Addr)
}
