package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	// Defaults ship without a market mapping; detect mode requires one.
	cfg.Polymarket.Markets = map[string]string{"BTCUSDT": "tok-1"}
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.Binance.Symbols = nil
	cfg.Stream.SampleIntervalMs = 20_000 // larger than return window
	cfg.Poll.MaxBackoffMs = 1            // smaller than interval

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unknown mode "bogus"`)
	assert.Contains(t, msg, "at least one symbol is required")
	assert.Contains(t, msg, "sample_interval_ms must be smaller")
	assert.Contains(t, msg, "max_backoff_ms must be >= interval_ms")
}

func TestValidateModeScoping(t *testing.T) {
	// Poll mode does not need the trade stream configured.
	cfg := Defaults()
	cfg.Mode = "poll"
	cfg.Binance.WsHost = ""
	cfg.Binance.Symbols = nil
	cfg.Polymarket.Markets = map[string]string{"BTCUSDT": "tok-1"}
	assert.NoError(t, cfg.Validate())

	// Stream mode does not need the market mapping.
	cfg = Defaults()
	cfg.Mode = "stream"
	cfg.Polymarket.Markets = nil
	assert.NoError(t, cfg.Validate())
}

func TestValidateS3RequiresPostgres(t *testing.T) {
	cfg := Defaults()
	cfg.Polymarket.Markets = map[string]string{"BTCUSDT": "tok-1"}
	cfg.S3.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archiving requires postgres.enabled")

	cfg.Postgres.Enabled = true
	assert.NoError(t, cfg.Validate())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "detect"
log_level = "debug"

[binance]
symbols = ["SOLUSDT"]

[polymarket.markets]
SOLUSDT = "tok-sol"

[stream]
move_threshold_bps = 45.5

[signal]
cooldown_ms = 120000
`), 0o644))

	t.Setenv("POLYARB_MODE", "stream")
	t.Setenv("POLYARB_POLL_INTERVAL_MS", "2500")

	cfg, err := Load(path)
	require.NoError(t, err)

	// File overrides defaults.
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"SOLUSDT"}, cfg.Binance.Symbols)
	assert.Equal(t, "tok-sol", cfg.Polymarket.Markets["SOLUSDT"])
	assert.Equal(t, 45.5, cfg.Stream.MoveThresholdBps)
	assert.Equal(t, int64(120_000), cfg.Signal.CooldownMs)

	// Defaults survive where the file is silent.
	assert.Equal(t, "wss://stream.binance.com:9443", cfg.Binance.WsHost)
	assert.Equal(t, 10, cfg.Poll.DepthLevels)

	// Environment overrides both.
	assert.Equal(t, "stream", cfg.Mode)
	assert.Equal(t, int64(2500), cfg.Poll.IntervalMs)
}

func TestEnvOverrideSlices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("mode = \"stream\"\n"), 0o644))

	t.Setenv("POLYARB_BINANCE_SYMBOLS", "BTCUSDT, ETHUSDT ,SOLUSDT")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}, cfg.Binance.Symbols)
}
