package detector

import (
	"context"
	"time"

	"github.com/oszuidwest/zwfm-audioscan/internal/devtools"
	"github.com/oszuidwest/zwfm-audioscan/internal/pulse"
	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

// BrowserDetector derives stream state from browser tab telemetry obtained
// via the DevTools protocol. Mixer stream ids cannot be mapped to specific
// tabs, so the detector answers with the best signal across all tabs.
type BrowserDetector struct {
	client *devtools.Client
}

// NewBrowserDetector returns a browser-tab detector for the configured
// debugging port.
func NewBrowserDetector(cfg types.DetectorConfig) *BrowserDetector {
	return &BrowserDetector{client: devtools.NewClient(cfg.DebugPort)}
}

// Tabs returns the current page tabs with refreshed audio state.
func (d *BrowserDetector) Tabs(ctx context.Context) []types.ChromeTab {
	return d.client.ListTabs(ctx, true)
}

// StreamState determines the stream state from browser tab audio telemetry.
// When the debugging endpoint is unreachable the mixer volume decides:
// audible volume means RUNNING, zero volume means IDLE. The connection is
// re-attempted on the next call.
func (d *BrowserDetector) StreamState(ctx context.Context, stream *types.AudioStream) types.StreamState {
	if !d.client.Connected() && !d.client.Discover(ctx) {
		if stream.Volume != pulse.ZeroVolume {
			return types.StateRunning
		}
		return types.StateIdle
	}

	tabs := d.client.ListTabs(ctx, true)
	return mapTabState(bestTabAudioState(tabs))
}

// IsActive reports whether the stream is actively playing.
func (d *BrowserDetector) IsActive(ctx context.Context, stream *types.AudioStream) bool {
	return d.StreamState(ctx, stream) == types.StateRunning
}

// UpdateActivity stamps the activity timestamp for running streams.
func (d *BrowserDetector) UpdateActivity(ctx context.Context, stream *types.AudioStream) {
	if d.IsActive(ctx, stream) {
		stream.LastActivity = time.Now()
	}
}

// bestTabAudioState returns the strongest audio signal across all tabs, in
// priority order playing > muted > paused. Without any of those signals the
// result is unknown.
func bestTabAudioState(tabs []types.ChromeTab) types.TabAudioState {
	for _, want := range []types.TabAudioState{types.TabPlaying, types.TabMuted, types.TabPaused} {
		for _, tab := range tabs {
			if tab.AudioState == want {
				return want
			}
		}
	}
	return types.TabUnknown
}

// mapTabState maps a tab audio state onto the canonical stream states.
// Everything without a positive signal collapses to IDLE.
func mapTabState(state types.TabAudioState) types.StreamState {
	switch state {
	case types.TabPlaying:
		return types.StateRunning
	case types.TabPaused:
		return types.StateCorked
	case types.TabMuted:
		return types.StateMuted
	default:
		return types.StateIdle
	}
}
