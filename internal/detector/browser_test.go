package detector

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

func TestBrowserDetectorUnreachableFallback(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	// No responder registered: discovery fails on every attempt.

	d := NewBrowserDetector(types.DetectorConfig{DebugPort: 9333})

	audible := &types.AudioStream{Volume: "65%"}
	assert.Equal(t, types.StateRunning, d.StreamState(context.Background(), audible))

	silent := &types.AudioStream{Volume: "0%"}
	assert.Equal(t, types.StateIdle, d.StreamState(context.Background(), silent))
}

func TestBestTabAudioState(t *testing.T) {
	tests := []struct {
		name string
		tabs []types.ChromeTab
		want types.TabAudioState
	}{
		{"no tabs", nil, types.TabUnknown},
		{
			"playing wins over everything",
			[]types.ChromeTab{
				{AudioState: types.TabPaused},
				{AudioState: types.TabMuted},
				{AudioState: types.TabPlaying},
			},
			types.TabPlaying,
		},
		{
			"muted beats paused",
			[]types.ChromeTab{
				{AudioState: types.TabPaused},
				{AudioState: types.TabMuted},
			},
			types.TabMuted,
		},
		{
			"paused only",
			[]types.ChromeTab{
				{AudioState: types.TabPaused},
				{AudioState: types.TabSilent},
			},
			types.TabPaused,
		},
		{
			"errors and silence give no signal",
			[]types.ChromeTab{
				{AudioState: types.TabError},
				{AudioState: types.TabSilent},
			},
			types.TabUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bestTabAudioState(tt.tabs))
		})
	}
}

func TestMapTabState(t *testing.T) {
	tests := []struct {
		in   types.TabAudioState
		want types.StreamState
	}{
		{types.TabPlaying, types.StateRunning},
		{types.TabPaused, types.StateCorked},
		{types.TabMuted, types.StateMuted},
		{types.TabSilent, types.StateIdle},
		{types.TabUnknown, types.StateIdle},
		{types.TabError, types.StateIdle},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapTabState(tt.in), "state %q", tt.in)
	}
}

func TestHybridDetectorFallsBackToMixer(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	d := NewHybridDetector(types.DetectorConfig{
		DebugPort:   9334,
		IdleTimeout: types.DefaultIdleTimeout,
	})

	// With the endpoint unreachable the browser strategy answers from the
	// mixer volume, and the hybrid passes that canonical state through.
	audible := &types.AudioStream{Volume: "65%"}
	assert.Equal(t, types.StateRunning, d.StreamState(context.Background(), audible))
	assert.True(t, d.IsActive(context.Background(), audible))

	silent := &types.AudioStream{Volume: "0%"}
	assert.Equal(t, types.StateIdle, d.StreamState(context.Background(), silent))
}
