package detector

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

// PulseDetector derives stream state from the mixer snapshot alone: the
// corked and muted flags, the activity timestamp, and the volume.
type PulseDetector struct {
	idleTimeout time.Duration
}

// NewPulseDetector returns a mixer-heuristic detector.
func NewPulseDetector(cfg types.DetectorConfig) *PulseDetector {
	return &PulseDetector{idleTimeout: cfg.IdleTimeout}
}

// StreamState determines the stream state from mixer indicators, in
// precedence order: corked, muted, activity age, zero volume, running.
func (d *PulseDetector) StreamState(_ context.Context, stream *types.AudioStream) types.StreamState {
	if stream.Corked {
		return types.StateCorked
	}
	if stream.Muted {
		return types.StateMuted
	}

	// Streams without fresh activity are idle even when technically open.
	// In a single poll pass the timestamp is stamped by UpdateActivity at
	// the end of the same cycle that reads it here, so this branch only
	// fires when a caller carries timestamps across cycles.
	if !stream.LastActivity.IsZero() && time.Since(stream.LastActivity) > d.idleTimeout {
		return types.StateIdle
	}

	if parseVolume(stream.Volume) == 0 {
		return types.StateIdle
	}

	return types.StateRunning
}

// IsActive reports whether the stream is actively playing.
func (d *PulseDetector) IsActive(ctx context.Context, stream *types.AudioStream) bool {
	return d.StreamState(ctx, stream) == types.StateRunning
}

// UpdateActivity stamps the activity timestamp for running streams.
func (d *PulseDetector) UpdateActivity(ctx context.Context, stream *types.AudioStream) {
	if d.StreamState(ctx, stream) == types.StateRunning {
		stream.LastActivity = time.Now()
	}
}

// parseVolume extracts the numeric part of a volume string like "65%".
// Unparseable values count as zero.
func parseVolume(volume string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, volume)

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
