// Package types provides shared type definitions used across the scanner.
package types

import (
	"time"
)

// StreamState represents the playback state of an audio stream.
type StreamState string

const (
	// StateRunning indicates the stream is actively rendering audio.
	StateRunning StreamState = "RUNNING"
	// StateCorked indicates the stream is open but paused at the mixer level.
	StateCorked StreamState = "CORKED"
	// StateMuted indicates the stream is muted.
	StateMuted StreamState = "MUTED"
	// StateIdle indicates the stream is open but not producing audio.
	StateIdle StreamState = "IDLE"
)

// TabAudioState represents the aggregate audio state of a browser tab.
type TabAudioState string

const (
	// TabPlaying indicates at least one unmuted media element is playing.
	TabPlaying TabAudioState = "playing"
	// TabMuted indicates media is playing but every element is muted.
	TabMuted TabAudioState = "muted"
	// TabPaused indicates media elements exist but none are playing.
	TabPaused TabAudioState = "paused"
	// TabSilent indicates the tab has no media elements.
	TabSilent TabAudioState = "silent"
	// TabUnknown indicates the tab has not been queried yet.
	TabUnknown TabAudioState = "unknown"
	// TabError indicates the tab query failed.
	TabError TabAudioState = "error"
)

// RawMixerRecord is one sink input as reported by the mixer listing tool.
// Records are produced once per poll and discarded after the merge.
type RawMixerRecord struct {
	ID          int    `json:"id"`          // Sink input ID
	Application string `json:"application"` // application.name property
	Media       string `json:"media"`       // media.name property
	SinkRef     string `json:"sink_ref"`    // Sink reference (numeric ID or name)
	Corked      bool   `json:"corked"`      // Stream is corked (paused)
	Muted       bool   `json:"muted"`       // Stream is muted
	VolumePct   string `json:"volume_pct"`  // Volume up to the first '%' (e.g. "65%")
}

// RawRoutingRecord is one active stream node from the routing-graph dump.
// The routing tool only lists active streams, so State is always RUNNING.
type RawRoutingRecord struct {
	ID          int         `json:"id"`           // Node ID
	DisplayName string      `json:"display_name"` // Node display name
	State       StreamState `json:"state"`        // Always StateRunning
}

// AudioStream is the canonical per-stream record produced by one poll cycle.
// IDs are unique within a cycle but not stable across cycles. Instances are
// owned by the caller of the reconciliation pass and are not shared between
// concurrent refresh calls.
type AudioStream struct {
	ID           int         `json:"id"`            // Sink input ID
	State        StreamState `json:"state"`         // Current playback state
	Application  string      `json:"application"`   // Application name
	Media        string      `json:"media"`         // Media title
	SinkRef      string      `json:"sink_ref"`      // Raw sink reference from the mixer
	SinkName     string      `json:"sink_name"`     // Resolved sink name
	Monitor      string      `json:"monitor"`       // Monitor source (SinkName + ".monitor")
	Volume       string      `json:"volume"`        // Volume percentage string
	IsTeams      bool        `json:"is_teams"`      // Stream looks like Microsoft Teams
	IsBrowser    bool        `json:"is_browser"`    // Stream belongs to a web browser
	Corked       bool        `json:"corked"`        // Mixer corked flag
	Muted        bool        `json:"muted"`         // Mixer mute flag
	LastActivity time.Time   `json:"last_activity"` // Last time the stream was seen RUNNING (zero if never)
}

// IsRunning reports whether the stream is actively rendering audio.
func (s *AudioStream) IsRunning() bool {
	return s.State == StateRunning
}

// MediaElementSnapshot is a point-in-time read of one <audio> or <video>
// element inside a browser tab.
type MediaElementSnapshot struct {
	Tag         string  `json:"tag"`         // "audio" or "video"
	Paused      bool    `json:"paused"`      // Element is paused
	Muted       bool    `json:"muted"`       // Element is muted
	Volume      float64 `json:"volume"`      // Element volume (0.0-1.0)
	CurrentTime float64 `json:"currentTime"` // Playback position in seconds
	Duration    float64 `json:"duration"`    // Media duration in seconds (0 if unknown)
	Src         string  `json:"src"`         // Source URL, truncated to 120 chars
}

// ChromeTab describes one browser tab discovered via the DevTools endpoint.
// Tabs are rebuilt on each discovery call; MediaElements are refreshed on
// each audio-state query.
type ChromeTab struct {
	ID            string                 `json:"id"`             // DevTools target ID
	Title         string                 `json:"title"`          // Tab title
	URL           string                 `json:"url"`            // Tab URL
	Type          string                 `json:"type"`           // Target type ("page", "iframe", ...)
	FaviconURL    string                 `json:"favicon_url"`    // Favicon URL
	WSURL         string                 `json:"ws_url"`         // WebSocket debugger URL
	HasAudio      bool                   `json:"has_audio"`      // Tab has audible media
	AudioState    TabAudioState          `json:"audio_state"`    // Aggregate audio state
	MediaElements []MediaElementSnapshot `json:"media_elements"` // Per-element snapshots
}

// Timeouts for the DevTools client network operations. Each suspension
// point carries its own fixed timeout; there are no retries.
const (
	// TabDiscoveryTimeout is the timeout for the HTTP tab listing request.
	TabDiscoveryTimeout = 2000 * time.Millisecond
	// TabConnectTimeout is the timeout for the per-tab WebSocket dial.
	TabConnectTimeout = 2000 * time.Millisecond
	// TabResponseTimeout is the timeout for the per-tab RPC reply.
	TabResponseTimeout = 3000 * time.Millisecond
)

// DefaultIdleTimeout is the inactivity duration after which a technically
// open stream is reclassified as not producing audio.
const DefaultIdleTimeout = 5000 * time.Millisecond

// DefaultDebugPort is the Chrome remote debugging port.
const DefaultDebugPort = 9222

// DetectorConfig holds immutable configuration passed at strategy construction.
type DetectorConfig struct {
	IdleTimeout time.Duration // Inactivity duration before a stream counts as IDLE
	DebugPort   int           // Chrome remote debugging port
}

// StreamEvent is one entry in the detection event log.
type StreamEvent struct {
	Timestamp   string `json:"timestamp"`             // RFC3339 timestamp
	Event       string `json:"event"`                 // Event type (stream_detected, recording_started, ...)
	StreamID    int    `json:"stream_id,omitempty"`   // Sink input ID
	StreamType  string `json:"stream_type,omitempty"` // Matched pattern group (teams, youtube, custom)
	Application string `json:"application,omitempty"` // Application name
	Media       string `json:"media,omitempty"`       // Media title
	Monitor     string `json:"monitor,omitempty"`     // Monitor source name
	Capture     string `json:"capture,omitempty"`     // Suggested capture command
	Error       string `json:"error,omitempty"`       // Error message if the event reports a failure
}

// GraphConfig contains Microsoft Graph API settings for email notifications.
type GraphConfig struct {
	TenantID     string `json:"tenant_id,omitempty"`     // Azure AD tenant ID
	ClientID     string `json:"client_id,omitempty"`     // App registration client ID
	ClientSecret string `json:"client_secret,omitempty"` // App registration client secret
	FromAddress  string `json:"from_address,omitempty"`  // Shared mailbox address (sender)
	Recipients   string `json:"recipients,omitempty"`    // Comma-separated recipients
}

// VersionInfo contains version comparison data.
type VersionInfo struct {
	Current     string `json:"current"`              // Current version
	Latest      string `json:"latest,omitempty"`     // Latest available version
	UpdateAvail bool   `json:"update_available"`     // Update is available
	Commit      string `json:"commit,omitempty"`     // Git commit hash
	BuildTime   string `json:"build_time,omitempty"` // Build timestamp
}
