package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_Defaults(t *testing.T) {
	clearSyncEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 2.0, cfg.Retry.Factor)
	assert.Equal(t, int64(5*1024*1024), cfg.Cache.ByteBudget)
	assert.Equal(t, 50, cfg.Cache.KeepCount)
	assert.Empty(t, cfg.Cache.StateDir)
	assert.True(t, cfg.EnableMetrics)
	assert.False(t, cfg.EnableTracing)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearSyncEnv(t)
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("SYNC_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("SYNC_RETRY_BASE_DELAY_MS", "100")
	t.Setenv("SYNC_RETRY_FACTOR", "1.5")
	t.Setenv("CACHE_KEEP_COUNT", "10")
	t.Setenv("ENABLE_TRACING", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ServerAddress)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 1.5, cfg.Retry.Factor)
	assert.Equal(t, 10, cfg.Cache.KeepCount)
	assert.True(t, cfg.EnableTracing)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfig_ProductionRequiresRemoteStore(t *testing.T) {
	clearSyncEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")

	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_ANON_KEY")

	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_RejectsNonsensePolicy(t *testing.T) {
	clearSyncEnv(t)
	t.Setenv("SYNC_RETRY_MAX_ATTEMPTS", "0")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry max attempts")
}

func TestLoadConfig_OverlayFile(t *testing.T) {
	clearSyncEnv(t)
	t.Setenv("SERVER_ADDRESS", ":7070")

	overlay := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte(
		"environment: staging\nretry:\n  maxAttempts: 7\n  baseDelayMs: 250\ncache:\n  keepCount: 20\n",
	), 0o644))
	t.Setenv("CONFIG_FILE", overlay)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// Overlay keys win; untouched keys keep their env values.
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 20, cfg.Cache.KeepCount)
	assert.Equal(t, ":7070", cfg.ServerAddress)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
}

func TestLoadConfig_MalformedOverlayFails(t *testing.T) {
	clearSyncEnv(t)
	overlay := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte("retry: [not a map"), 0o644))
	t.Setenv("CONFIG_FILE", overlay)

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestWatcher_ReloadsOnOverlayChange(t *testing.T) {
	clearSyncEnv(t)
	dir := t.TempDir()
	overlay := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte("logLevel: info\n"), 0o644))
	t.Setenv("CONFIG_FILE", overlay)

	initial, err := LoadConfig()
	require.NoError(t, err)

	w, err := NewWatcher(initial, overlay, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *Config, 1)
	w.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	require.NoError(t, os.WriteFile(overlay, []byte("logLevel: debug\n"), 0o644))

	select {
	case next := <-changed:
		assert.Equal(t, "debug", next.LogLevel)
		assert.Equal(t, "debug", w.Current().LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not deliver the reloaded configuration")
	}
}

func TestWatcher_KeepsConfigWhenReloadFails(t *testing.T) {
	clearSyncEnv(t)
	dir := t.TempDir()
	overlay := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte("logLevel: info\n"), 0o644))
	t.Setenv("CONFIG_FILE", overlay)

	initial, err := LoadConfig()
	require.NoError(t, err)

	w, err := NewWatcher(initial, overlay, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(overlay, []byte("retry: [broken"), 0o644))

	// The bad file must not displace the running configuration.
	time.Sleep(2 * debounceDelay)
	assert.Equal(t, "info", w.Current().LogLevel)
}

// clearSyncEnv pins every variable LoadConfig reads so ambient shell
// state cannot leak into assertions.
func clearSyncEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_ADDRESS", "ENVIRONMENT", "REQUEST_TIMEOUT_MS",
		"SUPABASE_URL", "SUPABASE_ANON_KEY",
		"CACHE_STATE_DIR", "CACHE_BYTE_BUDGET", "CACHE_KEEP_COUNT",
		"SYNC_RETRY_MAX_ATTEMPTS", "SYNC_RETRY_BASE_DELAY_MS",
		"SYNC_RETRY_MAX_DELAY_MS", "SYNC_RETRY_FACTOR",
		"LOG_LEVEL", "ENABLE_METRICS", "ENABLE_TRACING", "ENABLE_CORS",
		"OTLP_ENDPOINT", "CORS_ALLOWED_ORIGINS", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
}
