package detector

import (
	"context"
	"time"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

// stateUnknown is the sentinel guarding the hybrid fallback. The browser
// detector maps every tab signal to one of the four canonical states, so
// the comparison below never triggers in practice; it is kept so that a
// future unknown result from the browser path degrades to the mixer
// heuristics instead of leaking upward.
const stateUnknown types.StreamState = "UNKNOWN"

// HybridDetector combines browser detection with the mixer heuristics.
// The browser answer wins whenever it produces a canonical state.
type HybridDetector struct {
	browser *BrowserDetector
	local   *PulseDetector
}

// NewHybridDetector returns a detector that prefers browser telemetry and
// falls back to mixer heuristics.
func NewHybridDetector(cfg types.DetectorConfig) *HybridDetector {
	return &HybridDetector{
		browser: NewBrowserDetector(cfg),
		local:   NewPulseDetector(cfg),
	}
}

// StreamState determines the stream state, preferring the browser signal.
func (d *HybridDetector) StreamState(ctx context.Context, stream *types.AudioStream) types.StreamState {
	if state := d.browser.StreamState(ctx, stream); state != stateUnknown {
		return state
	}
	return d.local.StreamState(ctx, stream)
}

// IsActive reports whether the stream is actively playing.
func (d *HybridDetector) IsActive(ctx context.Context, stream *types.AudioStream) bool {
	return d.StreamState(ctx, stream) == types.StateRunning
}

// UpdateActivity stamps the activity timestamp for running streams.
func (d *HybridDetector) UpdateActivity(ctx context.Context, stream *types.AudioStream) {
	if d.IsActive(ctx, stream) {
		stream.LastActivity = time.Now()
	}
}
