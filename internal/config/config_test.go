package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "db:5432/insights")
	t.Setenv("INSIGHT_SYNC_TYPES", "engagement,recommendation")
	t.Setenv("INFERENCE_BASE_DELAY", "250ms")
	t.Setenv("INFERENCE_CALL_TIMEOUT", "0s")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://postgres:postgres@db:5432/insights", cfg.Database.DSN)
	assert.Equal(t, []string{"engagement", "recommendation"}, cfg.InsightSync.InsightTypes)
	assert.Equal(t, 250*time.Millisecond, cfg.Inference.BaseDelay)
	assert.Equal(t, 3, cfg.Inference.MaxAttempts)
	assert.Equal(t, 90*time.Second, cfg.Inference.CallTimeout)
	assert.InDelta(t, 0.2, cfg.Inference.JitterFactor, 1e-9)
	assert.Equal(t, 30, cfg.Pipeline.DefaultWindowDays)
	assert.Equal(t, "0 1 * * *", cfg.InsightSync.CronSchedule)
}

func TestNormalize(t *testing.T) {
	cfg := &Config{
		Pipeline: Pipeline{DefaultWindowDays: 14},
	}

	cfg.normalize()

	assert.Equal(t, 1, cfg.Inference.MaxAttempts)
	assert.Equal(t, int64(1), cfg.Inference.MaxConcurrentCalls)
	assert.Equal(t, DefaultCallTimeout, cfg.Inference.CallTimeout)
	assert.Equal(t, 1, cfg.Pipeline.MaxConcurrentUnits)
	assert.Equal(t, 5, cfg.Pipeline.TopContentLimit)
	assert.Equal(t, 14, cfg.Pipeline.DefaultWindowDays)
	assert.Equal(t, 14, cfg.InsightSync.LookbackDays)
}
