package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	APIURL  string        `env:"TEST_CFG_API_URL" envDefault:"http://localhost:5000/api"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"10s"`
	Debug   bool          `env:"TEST_CFG_DEBUG" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_API_URL", "https://api.example.com")
	t.Setenv("TEST_CFG_TIMEOUT", "3s")
	t.Setenv("TEST_CFG_DEBUG", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
}

func TestLoad_WithEnvironment(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg, WithEnvironment(map[string]string{
		"TEST_CFG_TIMEOUT": "250ms",
	})))

	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
}

func TestLoad_WithPrefix(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg,
		WithPrefix("SHOP_"),
		WithEnvironment(map[string]string{"SHOP_TEST_CFG_DEBUG": "true", "TEST_CFG_DEBUG": "false"}),
	))

	assert.True(t, cfg.Debug)
}

type requiredConfig struct {
	APIKey string `env:"TEST_CFG_API_KEY,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg, WithEnvironment(map[string]string{}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg, WithEnvironment(map[string]string{"TEST_CFG_TIMEOUT": "soon"}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
