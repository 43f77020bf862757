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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
tushare:
  token: abc
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, time.Hour, c.Cache.SeriesTTL)
	assert.Equal(t, 24*time.Hour, c.Cache.StaticTTL)
	assert.Equal(t, 20, c.Analysis.ShortWindow)
	assert.Equal(t, 60, c.Analysis.LongWindow)
	assert.Equal(t, 14, c.Analysis.RSIWindow)
	assert.Equal(t, "000905.SH", c.Analysis.Benchmarks["中证500"])
}

func TestLoadParsesDurations(t *testing.T) {
	path := writeConfig(t, `
environment: test
tushare:
  token: abc
  timeout: 3s
cache:
  series_ttl: 10m
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.Tushare.Timeout)
	assert.Equal(t, 10*time.Minute, c.Cache.SeriesTTL)
}

func TestLoadRequiresToken(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tushare.token")
}

func TestLoadWithEnvOverridesToken(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("FUNDLENS_TUSHARE_TOKEN", "from-env")
	t.Setenv("FUNDLENS_PORT", "9090")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Tushare.Token)
	assert.Equal(t, 9090, c.Server.Port)
}

func TestLoadWithEnvAcceptsUnprefixedToken(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("TUSHARE_TOKEN", "plain")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "plain", c.Tushare.Token)
}

func TestValidateRejectsBadWindows(t *testing.T) {
	path := writeConfig(t, `
environment: test
tushare:
  token: abc
analysis:
  short_window: 60
  long_window: 20
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRedisBackendNeedsHost(t *testing.T) {
	path := writeConfig(t, `
environment: test
tushare:
  token: abc
cache:
  backend: redis
`)
	_, err := Load(path)
	require.Error(t, err)
}
