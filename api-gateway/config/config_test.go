package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	require.Contains(t, cfg.Services, "account")
	require.Contains(t, cfg.Services, "payment")
	assert.Equal(t, []string{"http://localhost:8081"}, cfg.Services["account"].Instances)
	assert.Equal(t, []string{"http://localhost:8083"}, cfg.Services["payment"].Instances)
	assert.Equal(t, "/health", cfg.Services["payment"].HealthCheck)
}

func TestLoadConfigMultipleInstances(t *testing.T) {
	t.Setenv("PAYMENT_SERVICE_URL", "http://pay-a:8083, http://pay-b:8083,")

	cfg := LoadConfig()

	assert.Equal(t, []string{"http://pay-a:8083", "http://pay-b:8083"}, cfg.Services["payment"].Instances)
}

func TestSplitURLs(t *testing.T) {
	assert.Equal(t, []string{"http://a"}, splitURLs("http://a"))
	assert.Equal(t, []string{"http://a", "http://b"}, splitURLs(" http://a , http://b "))
	assert.Empty(t, splitURLs(" , "))
}
