package daemon

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-audioscan/internal/config"
	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

func testSnapshot(t *testing.T) config.Snapshot {
	t.Helper()
	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())
	return cfg.Snapshot()
}

func TestMatchGroup(t *testing.T) {
	snap := testSnapshot(t)

	tests := []struct {
		name   string
		stream types.AudioStream
		want   string
	}{
		{"teams app", types.AudioStream{Application: "Microsoft Teams"}, GroupTeams},
		{"teams in media", types.AudioStream{Application: "Google Chrome", Media: "Teams Meeting | Standup"}, GroupTeams},
		{"youtube", types.AudioStream{Application: "Firefox", Media: "YouTube - Talk"}, GroupYouTube},
		{"no match", types.AudioStream{Application: "Spotify", Media: "Song"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchGroup(&snap, &tt.stream))
		})
	}
}

func TestMatchGroupDisabled(t *testing.T) {
	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())
	cfg.Targets.Teams.Enabled = false
	snap := cfg.Snapshot()

	s := types.AudioStream{Application: "Microsoft Teams"}
	assert.Empty(t, matchGroup(&snap, &s))
}

func TestMatchGroupCustomPatterns(t *testing.T) {
	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())
	cfg.Targets.Custom = config.TargetConfig{Enabled: true, Patterns: []string{"spotify"}}
	snap := cfg.Snapshot()

	s := types.AudioStream{Application: "Spotify"}
	assert.Equal(t, GroupCustom, matchGroup(&snap, &s))
}

func TestNewDaemonUnknownDetector(t *testing.T) {
	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())
	cfg.Detection.Detector = "sonar"

	d, err := New(cfg, false)
	require.Error(t, err)
	assert.Nil(t, d)
}

func TestNewDaemon(t *testing.T) {
	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())

	d, err := New(cfg, true)
	require.NoError(t, err)
	assert.NotNil(t, d)
}
