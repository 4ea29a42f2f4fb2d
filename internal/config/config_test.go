package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := New(path)
	require.NoError(t, cfg.Load())

	// Missing file gets created with defaults.
	_, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultDetector, cfg.Detection.Detector)
	assert.Equal(t, int64(DefaultPollIntervalMs), cfg.Detection.PollIntervalMs)
	assert.Equal(t, types.DefaultDebugPort, cfg.Detection.DebugPort)
	assert.True(t, cfg.Targets.Teams.Enabled)
	assert.NotEmpty(t, cfg.Targets.Teams.Patterns)
	assert.Equal(t, DefaultVirtualSinkName, cfg.Routing.VirtualSinkName)
	assert.False(t, cfg.Capture.Enabled)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"detection":{"detector":"hybrid"}}`), 0o600))

	cfg := New(path)
	require.NoError(t, cfg.Load())

	assert.Equal(t, "hybrid", cfg.Detection.Detector)
	// Unspecified fields fall back to defaults.
	assert.Equal(t, int64(DefaultCooldownMs), cfg.Detection.CooldownMs)
	assert.Equal(t, DefaultTeamsPatterns, cfg.Targets.Teams.Patterns)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown detector", `{"detection":{"detector":"sonar"}}`},
		{"port out of range", `{"detection":{"debug_port":70000}}`},
		{"poll interval too small", `{"detection":{"poll_interval_ms":10}}`},
		{"bad webhook url", `{"notifications":{"webhook":{"url":"not a url"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))

			cfg := New(path)
			assert.Error(t, cfg.Load())
		})
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	cfg := New(path)
	assert.Error(t, cfg.Load())
}

func TestSnapshot(t *testing.T) {
	cfg := New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())

	snap := cfg.Snapshot()
	assert.Equal(t, DefaultDetector, snap.Detector)
	assert.Equal(t, 2*time.Second, snap.PollInterval)
	assert.Equal(t, 30*time.Second, snap.Cooldown)
	assert.Equal(t, 5*time.Second, snap.IdleTimeout)
	assert.Equal(t, types.DefaultDebugPort, snap.DebugPort)
	assert.Equal(t, 30*time.Second, snap.GracePeriod)
	assert.Equal(t, DefaultCaptureSampleRate, snap.SampleRate)

	dc := snap.DetectorConfig()
	assert.Equal(t, snap.IdleTimeout, dc.IdleTimeout)
	assert.Equal(t, snap.DebugPort, dc.DebugPort)

	assert.False(t, snap.HasWebhook())
	assert.False(t, snap.HasLogPath())
}

func TestSnapshotIsolation(t *testing.T) {
	cfg := New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())

	snap := cfg.Snapshot()
	snap.Teams.Patterns[0] = "mutated"

	assert.NotEqual(t, "mutated", cfg.Targets.Teams.Patterns[0], "snapshot must not alias config slices")
}

func TestS3ConfigIsConfigured(t *testing.T) {
	assert.False(t, (&S3Config{}).IsConfigured())
	assert.False(t, (&S3Config{Bucket: "b", AccessKeyID: "k"}).IsConfigured())
	assert.True(t, (&S3Config{Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"}).IsConfigured())
}
