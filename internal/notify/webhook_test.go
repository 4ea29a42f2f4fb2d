package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

const testWebhookURL = "https://hooks.example.com/audioscan"

func TestSendStreamWebhook(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var received WebhookPayload
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL,
		func(req *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(req.Body)
			require.NoError(t, json.Unmarshal(body, &received))
			return httpmock.NewStringResponse(http.StatusOK, "ok"), nil
		})

	stream := &types.AudioStream{
		ID:          42,
		State:       types.StateRunning,
		Application: "Microsoft Teams",
		Media:       "Weekly Standup",
		Monitor:     "audioscan_sink.monitor",
	}

	err := SendStreamWebhook(testWebhookURL, "teams", "ffmpeg -f pulse -i audioscan_sink.monitor -ac 1 -ar 16000 out.wav", stream)
	require.NoError(t, err)

	assert.Equal(t, "stream_detected", received.Event)
	assert.Equal(t, 42, received.StreamID)
	assert.Equal(t, "teams", received.StreamType)
	assert.Equal(t, "Microsoft Teams", received.Application)
	assert.Equal(t, "RUNNING", received.State)
	assert.NotEmpty(t, received.Timestamp)
}

func TestSendStreamEndedWebhook(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testWebhookURL,
		httpmock.NewStringResponder(http.StatusNoContent, ""))

	err := SendStreamEndedWebhook(testWebhookURL, "teams", 42, "Microsoft Teams")
	require.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSendWebhookErrorStatus(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testWebhookURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	err := SendStreamEndedWebhook(testWebhookURL, "teams", 42, "Microsoft Teams")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSendWebhookUnconfigured(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	// An empty URL is a silent no-op, not an error.
	err := SendStreamEndedWebhook("", "teams", 42, "Microsoft Teams")
	require.NoError(t, err)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestSendTestWebhookRequiresURL(t *testing.T) {
	err := SendTestWebhook("")
	require.Error(t, err)
}
