package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_ID_REQUIRED", "")
	t.Setenv("RABBITMQ_USER", "")
	t.Setenv("GRAFANA_OTLP_ENDPOINT", "")
	t.Setenv("CATALOG_DEFAULT_PAGE_SIZE", "")

	cfg := LoadEnvConfig()

	assert.True(t, cfg.Session.Required)
	assert.Equal(t, "guest", cfg.RabbitMQ.Username)
	assert.Equal(t, "", cfg.Grafana.OTLPEndpoint)
	assert.Equal(t, 50, cfg.Catalog.DefaultPageSize)
	assert.Equal(t, time.Minute, cfg.Session.CacheTTL)
}

func TestLoadEnvConfigOverrides(t *testing.T) {
	t.Setenv("SESSION_ID_REQUIRED", "false")
	t.Setenv("GRAFANA_OTLP_ENDPOINT", "https://otlp.example.com")
	t.Setenv("SESSION_CACHE_TTL", "5")
	t.Setenv("CATALOG_DEFAULT_PAGE_SIZE", "not-a-number")

	cfg := LoadEnvConfig()

	assert.False(t, cfg.Session.Required)
	assert.Equal(t, "otlp.example.com", cfg.Grafana.OTLPEndpoint)
	assert.Equal(t, 5*time.Second, cfg.Session.CacheTTL)
	assert.Equal(t, 50, cfg.Catalog.DefaultPageSize)
}
