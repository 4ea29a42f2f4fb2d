package detector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

func newLocal() *PulseDetector {
	return NewPulseDetector(types.DetectorConfig{IdleTimeout: types.DefaultIdleTimeout})
}

func TestPulseDetectorPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		stream types.AudioStream
		want   types.StreamState
	}{
		{"corked", types.AudioStream{Corked: true, Volume: "65%"}, types.StateCorked},
		{"corked beats muted", types.AudioStream{Corked: true, Muted: true}, types.StateCorked},
		{"muted", types.AudioStream{Muted: true, Volume: "65%"}, types.StateMuted},
		{"zero volume", types.AudioStream{Volume: "0%"}, types.StateIdle},
		{"unparseable volume", types.AudioStream{Volume: ""}, types.StateIdle},
		{"running", types.AudioStream{Volume: "65%"}, types.StateRunning},
	}

	d := newLocal()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.StreamState(context.Background(), &tt.stream))
		})
	}
}

func TestPulseDetectorIdleByTimeout(t *testing.T) {
	d := newLocal()

	// A stale carried-over timestamp outranks an audible volume.
	stale := &types.AudioStream{
		Volume:       "65%",
		LastActivity: time.Now().Add(-time.Minute),
	}
	assert.Equal(t, types.StateIdle, d.StreamState(context.Background(), stale))

	fresh := &types.AudioStream{
		Volume:       "65%",
		LastActivity: time.Now(),
	}
	assert.Equal(t, types.StateRunning, d.StreamState(context.Background(), fresh))
}

func TestPulseDetectorIsActive(t *testing.T) {
	d := newLocal()

	assert.True(t, d.IsActive(context.Background(), &types.AudioStream{Volume: "65%"}))
	assert.False(t, d.IsActive(context.Background(), &types.AudioStream{Corked: true}))
}

func TestPulseDetectorUpdateActivity(t *testing.T) {
	d := newLocal()

	running := &types.AudioStream{Volume: "65%"}
	d.UpdateActivity(context.Background(), running)
	assert.False(t, running.LastActivity.IsZero())

	corked := &types.AudioStream{Corked: true, Volume: "65%"}
	d.UpdateActivity(context.Background(), corked)
	assert.True(t, corked.LastActivity.IsZero())
}

func TestParseVolume(t *testing.T) {
	tests := []struct {
		volume string
		want   int
	}{
		{"65%", 65},
		{"0%", 0},
		{"100%", 100},
		{"", 0},
		{"loud", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseVolume(tt.volume), "volume %q", tt.volume)
	}
}
