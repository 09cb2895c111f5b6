package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env around

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "vpnl.db", cfg.Store.DSN)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 20.0, cfg.Server.RateLimit)
	assert.Equal(t, 40, cfg.Server.Burst)
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "vpnl.yaml")
	yaml := `
log:
  level: debug
store:
  driver: postgres
  dsn: postgres://localhost/pnl
server:
  listen: ":9000"
  burst: 5
quotes:
  file: prices.json
  price: $.prices.WETH
  exchangeRate: $.vaults["{vault}"].ppfs
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("PNL_LOG_FORMAT", "json")
	t.Setenv("PNL_LISTEN", "127.0.0.1:7000")
	t.Setenv("PNL_RATE_LIMIT", "2.5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/pnl", cfg.Store.DSN)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Listen)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, 5, cfg.Server.Burst)
	assert.Equal(t, "prices.json", cfg.Quotes.File)
	assert.Equal(t, "$.prices.WETH", cfg.Quotes.Price)
	assert.Equal(t, `$.vaults["{vault}"].ppfs`, cfg.Quotes.ExchangeRate)
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log: [unclosed"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("PNL_STORE_DRIVER", "mysql")
		_, err := Load("")
		assert.ErrorContains(t, err, "mysql")
	})
	t.Run("bad rate limit", func(t *testing.T) {
		t.Setenv("PNL_RATE_LIMIT", "fast")
		_, err := Load("")
		assert.ErrorContains(t, err, "PNL_RATE_LIMIT")
	})
}
