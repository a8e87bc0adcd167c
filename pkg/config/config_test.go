package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// ค่าว่าง = ใช้ default
	for _, key := range []string{
		"APP_PORT", "APP_ENV", "REDIS_ENABLED", "STORAGE_TYPE", "STORAGE_MAX_UPLOAD_SIZE",
		"GENERATION_API_KEY", "IMAGE_POLL_INTERVAL", "VIDEO_POLL_INTERVAL", "GENERATION_POLL_ATTEMPTS",
		"LLM_RETRY_ATTEMPTS", "LLM_RETRY_MIN_WAIT", "LLM_RETRY_MAX_WAIT",
		"PIPELINE_WORKERS", "PIPELINE_STALE_AFTER", "EXPORT_EXPIRES_IN", "REAPER_SWEEP_CRON",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.EqualValues(t, 50<<20, cfg.Storage.MaxUploadSize)

	// credentials ว่างได้ ไปเจอ ConfigurationError ตอนใช้งานจริง
	assert.Empty(t, cfg.Generation.APIKey)
	assert.Equal(t, 2*time.Second, cfg.Generation.ImagePollInterval)
	assert.Equal(t, 5*time.Second, cfg.Generation.VideoPollInterval)
	assert.Equal(t, 60, cfg.Generation.PollAttempts)

	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.LLM.MinWait)
	assert.Equal(t, 10*time.Second, cfg.LLM.MaxWait)

	assert.Zero(t, cfg.Pipeline.WorkerPoolSize)
	assert.Equal(t, 5*time.Minute, cfg.Pipeline.StaleAfter)
	assert.Equal(t, 3600, cfg.Pipeline.ExportExpiresIn)
	assert.Empty(t, cfg.Pipeline.ReaperSweepCron)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_ENABLED", "yes")
	t.Setenv("STORAGE_MAX_UPLOAD_SIZE", "1048576")
	t.Setenv("PIPELINE_STALE_AFTER", "90s")
	t.Setenv("VIDEO_POLL_INTERVAL", "7")
	t.Setenv("LLM_RETRY_MULTIPLIER", "1.5")
	t.Setenv("REAPER_SWEEP_CRON", "*/5 * * * *")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Redis.Enabled)
	assert.EqualValues(t, 1<<20, cfg.Storage.MaxUploadSize)
	assert.Equal(t, 90*time.Second, cfg.Pipeline.StaleAfter)
	assert.Equal(t, 7*time.Second, cfg.Generation.VideoPollInterval)
	assert.Equal(t, 1.5, cfg.LLM.Multiplier)
	assert.Equal(t, "*/5 * * * *", cfg.Pipeline.ReaperSweepCron)
}

func TestEnvParsersFallBack(t *testing.T) {
	t.Setenv("SF_TEST_INT", "abc")
	t.Setenv("SF_TEST_BOOL", "maybe")
	t.Setenv("SF_TEST_DURATION", "soon")

	assert.Equal(t, 4, getEnvInt("SF_TEST_INT", 4))
	assert.True(t, getEnvBool("SF_TEST_BOOL", true))
	assert.Equal(t, time.Minute, getEnvDuration("SF_TEST_DURATION", time.Minute))
	assert.Equal(t, "fallback", getEnv("SF_TEST_UNSET", "fallback"))
}
