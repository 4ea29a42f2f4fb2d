package streams

import (
	"time"

	"github.com/oszuidwest/zwfm-audioscan/internal/pulse"
	"github.com/oszuidwest/zwfm-audioscan/internal/types"
	"github.com/oszuidwest/zwfm-audioscan/internal/wireplumber"
)

// SinkResolver maps a raw mixer sink reference to a sink name.
type SinkResolver func(sinkRef string) string

// List performs one full reconciliation pass: it gathers mixer and
// routing-graph records and merges them into canonical audio streams.
// The routing tool is optional; when absent the merge runs on mixer
// records alone.
func List() []types.AudioStream {
	mixer := pulse.ListSinkInputs()

	var routing []types.RawRoutingRecord
	if pulse.HasWpctl() {
		routing = wireplumber.ListStreams()
	}

	return Merge(mixer, routing, pulse.ResolveSinkName)
}

// Merge reconciles mixer records with routing-graph records into canonical
// audio streams, preserving mixer discovery order. The mixer is authoritative
// for identity: routing records without a matching mixer id are dropped.
func Merge(mixer []types.RawMixerRecord, routing []types.RawRoutingRecord, resolve SinkResolver) []types.AudioStream {
	routingByID := make(map[int]types.RawRoutingRecord, len(routing))
	for _, r := range routing {
		routingByID[r.ID] = r
	}

	streams := make([]types.AudioStream, 0, len(mixer))
	for _, m := range mixer {
		sinkName := resolve(m.SinkRef)

		state := resolveState(m, routingByID)

		var lastActivity time.Time
		if state == types.StateRunning {
			lastActivity = time.Now()
		}

		streams = append(streams, types.AudioStream{
			ID:           m.ID,
			State:        state,
			Application:  m.Application,
			Media:        m.Media,
			SinkRef:      m.SinkRef,
			SinkName:     sinkName,
			Monitor:      pulse.MonitorSource(sinkName),
			Volume:       m.VolumePct,
			IsTeams:      IsTeams(m.Application, m.Media),
			IsBrowser:    IsBrowser(m.Application, m.Media),
			Corked:       m.Corked,
			Muted:        m.Muted,
			LastActivity: lastActivity,
		})
	}

	return streams
}

// resolveState applies the first-pass state precedence: the routing graph
// wins when it knows the stream (it only lists active ones), then the mixer
// flags, then a zero volume, and RUNNING as the default.
func resolveState(m types.RawMixerRecord, routingByID map[int]types.RawRoutingRecord) types.StreamState {
	if r, ok := routingByID[m.ID]; ok {
		return r.State
	}
	switch {
	case m.Corked:
		return types.StateCorked
	case m.Muted:
		return types.StateMuted
	case m.VolumePct == pulse.ZeroVolume:
		return types.StateIdle
	default:
		return types.StateRunning
	}
}
