// Package notify delivers detection events to the configured channels:
// webhooks, a JSONL event log, and email via Microsoft Graph.
package notify

import (
	"fmt"
	"sync"

	"github.com/oszuidwest/zwfm-audioscan/internal/config"
	"github.com/oszuidwest/zwfm-audioscan/internal/types"
	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// StreamNotifier fans detection events out to the configured channels.
// Channel failures are logged and never block the poll loop.
type StreamNotifier struct {
	cfg *config.Config

	// mu protects the cached Graph client
	mu          sync.Mutex
	graphClient *GraphClient
}

// NewStreamNotifier returns a StreamNotifier backed by the given config.
func NewStreamNotifier(cfg *config.Config) *StreamNotifier {
	return &StreamNotifier{cfg: cfg}
}

// InvalidateGraphClient clears the cached Graph client.
// Call this when Graph configuration changes.
func (n *StreamNotifier) InvalidateGraphClient() {
	n.mu.Lock()
	n.graphClient = nil
	n.mu.Unlock()
}

// getOrCreateGraphClient returns the cached Graph client, creating it if needed.
func (n *StreamNotifier) getOrCreateGraphClient(cfg *types.GraphConfig) (*GraphClient, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.graphClient != nil {
		return n.graphClient, nil
	}

	client, err := NewGraphClient(cfg)
	if err != nil {
		return nil, err
	}
	n.graphClient = client
	return client, nil
}

// StreamDetected notifies all configured channels about a newly detected
// stream. Each channel is delivered on its own goroutine.
func (n *StreamNotifier) StreamDetected(streamType, capture string, stream *types.AudioStream) {
	cfg := n.cfg.Snapshot()
	s := *stream

	if cfg.HasWebhook() {
		go util.LogNotifyResult(
			func() error { return SendStreamWebhook(cfg.WebhookURL, streamType, capture, &s) },
			"Stream webhook",
		)
	}
	if cfg.HasLogPath() {
		go util.LogNotifyResult(
			func() error { return LogStreamDetected(cfg.LogPath, streamType, capture, &s) },
			"Stream log",
		)
	}
	if IsConfigured(&cfg.Graph) {
		go util.LogNotifyResult(
			func() error { return n.sendStreamEmail(&cfg.Graph, streamType, capture, &s) },
			"Stream email",
		)
	}
}

// StreamEnded notifies all configured channels that a tracked stream
// disappeared from the mixer.
func (n *StreamNotifier) StreamEnded(streamType string, streamID int, application string) {
	cfg := n.cfg.Snapshot()

	if cfg.HasWebhook() {
		go util.LogNotifyResult(
			func() error { return SendStreamEndedWebhook(cfg.WebhookURL, streamType, streamID, application) },
			"Stream-ended webhook",
		)
	}
	if cfg.HasLogPath() {
		go util.LogNotifyResult(
			func() error { return LogStreamEnded(cfg.LogPath, streamType, streamID, application) },
			"Stream-ended log",
		)
	}
}

// CaptureEvent records a capture lifecycle event in the event log.
func (n *StreamNotifier) CaptureEvent(event string, streamID int, monitor string, captureErr error) {
	cfg := n.cfg.Snapshot()

	if cfg.HasLogPath() {
		go util.LogNotifyResult(
			func() error { return LogCaptureEvent(cfg.LogPath, event, streamID, monitor, captureErr) },
			"Capture log",
		)
	}
}

// sendStreamEmail sends a detection alert email via the cached Graph client.
func (n *StreamNotifier) sendStreamEmail(cfg *types.GraphConfig, streamType, capture string, stream *types.AudioStream) error {
	client, err := n.getOrCreateGraphClient(cfg)
	if err != nil {
		return util.WrapError("create Graph client", err)
	}

	recipients := ParseRecipients(cfg.Recipients)
	if len(recipients) == 0 {
		return fmt.Errorf("no valid recipients")
	}

	subject := fmt.Sprintf("[ALERT] Audio Stream Detected (%s) - %s", streamType, AppName)
	body := fmt.Sprintf(
		"A matching audio stream was detected.\n\n"+
			"Application: %s\n"+
			"Media:       %s\n"+
			"Stream ID:   %d\n"+
			"Monitor:     %s\n"+
			"Time:        %s\n\n"+
			"Capture command:\n%s",
		stream.Application, stream.Media, stream.ID, stream.Monitor, util.HumanTime(), capture,
	)

	if err := client.SendMail(recipients, subject, body); err != nil {
		return util.WrapError("send email via Graph", err)
	}

	return nil
}
