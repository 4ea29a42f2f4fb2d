// Package detector provides interchangeable audio stream state detection
// strategies. All strategies expose the same three-operation contract so
// callers stay strategy-agnostic; a factory selects the implementation by
// name.
package detector

import (
	"context"
	"fmt"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

// Detector type names accepted by New.
const (
	// TypePulse selects the mixer-heuristic strategy.
	TypePulse = "pulse"
	// TypeBrowser selects the remote browser-tab strategy.
	TypeBrowser = "browser"
	// TypeHybrid selects browser detection with a mixer fallback.
	TypeHybrid = "hybrid"
)

// StateDetector determines the live playback state of audio streams.
// Implementations recompute state from the current stream snapshot on every
// call; there is no persisted state machine.
type StateDetector interface {
	// StreamState determines the current state of the stream.
	StreamState(ctx context.Context, stream *types.AudioStream) types.StreamState

	// IsActive reports whether the stream is actively producing audio.
	IsActive(ctx context.Context, stream *types.AudioStream) bool

	// UpdateActivity refreshes the stream's activity tracking metadata.
	UpdateActivity(ctx context.Context, stream *types.AudioStream)
}

// New creates a state detector of the given type. Zero-value config fields
// fall back to the package defaults.
func New(detectorType string, cfg types.DetectorConfig) (StateDetector, error) {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = types.DefaultIdleTimeout
	}
	if cfg.DebugPort == 0 {
		cfg.DebugPort = types.DefaultDebugPort
	}

	switch detectorType {
	case TypePulse:
		return NewPulseDetector(cfg), nil
	case TypeBrowser:
		return NewBrowserDetector(cfg), nil
	case TypeHybrid:
		return NewHybridDetector(cfg), nil
	default:
		return nil, fmt.Errorf("unknown detector type: %s", detectorType)
	}
}

// Available returns the detector type names accepted by New.
func Available() []string {
	return []string{TypePulse, TypeBrowser, TypeHybrid}
}
