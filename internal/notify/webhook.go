package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// WebhookPayload represents the data sent to webhook endpoints.
type WebhookPayload struct {
	Event       string `json:"event"`
	StreamID    int    `json:"stream_id,omitempty"`
	StreamType  string `json:"stream_type,omitempty"`
	Application string `json:"application,omitempty"`
	Media       string `json:"media,omitempty"`
	Monitor     string `json:"monitor,omitempty"`
	State       string `json:"state,omitempty"`
	Capture     string `json:"capture,omitempty"`
	Message     string `json:"message,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// SendStreamWebhook notifies the configured webhook of a newly detected stream.
func SendStreamWebhook(webhookURL, streamType, capture string, stream *types.AudioStream) error {
	return sendWebhook(webhookURL, &WebhookPayload{
		Event:       "stream_detected",
		StreamID:    stream.ID,
		StreamType:  streamType,
		Application: stream.Application,
		Media:       stream.Media,
		Monitor:     stream.Monitor,
		State:       string(stream.State),
		Capture:     capture,
		Timestamp:   timestampUTC(),
	})
}

// SendStreamEndedWebhook notifies the configured webhook that a tracked stream
// disappeared from the mixer.
func SendStreamEndedWebhook(webhookURL, streamType string, streamID int, application string) error {
	return sendWebhook(webhookURL, &WebhookPayload{
		Event:       "stream_ended",
		StreamID:    streamID,
		StreamType:  streamType,
		Application: application,
		Timestamp:   timestampUTC(),
	})
}

// SendTestWebhook sends a test webhook notification.
func SendTestWebhook(webhookURL string) error {
	if webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	return sendWebhook(webhookURL, &WebhookPayload{
		Event:     "test",
		Message:   "This is a test notification from " + AppName,
		Timestamp: timestampUTC(),
	})
}

// sendWebhook delivers a notification to the configured webhook endpoint.
func sendWebhook(webhookURL string, payload *WebhookPayload) error {
	if !util.IsConfigured(webhookURL) {
		return nil // Silently skip if not configured
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return util.WrapError("marshal payload", err)
	}

	client := &http.Client{Timeout: 10000 * time.Millisecond}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return util.WrapError("send webhook request", err)
	}
	defer util.SafeCloseFunc(resp.Body, "webhook response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
