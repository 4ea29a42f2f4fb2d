package wireplumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

const statusDump = `PipeWire 'pipewire-0' [1.0.5]
 └─ Clients:
        32. WirePlumber

Audio
 ├─ Devices:
        46. Built-in Audio
 ├─ Sinks:
 *      51. Built-in Audio Analog Stereo
 └─ Streams:
        65. Google Chrome
        72. Firefox

Video
 ├─ Devices:
        80. Integrated Camera
`

func TestParseStatus(t *testing.T) {
	records := ParseStatus(statusDump)
	require.Len(t, records, 2)

	assert.Equal(t, 65, records[0].ID)
	assert.Equal(t, "Google Chrome", records[0].DisplayName)
	assert.Equal(t, types.StateRunning, records[0].State)

	assert.Equal(t, 72, records[1].ID)
	assert.Equal(t, "Firefox", records[1].DisplayName)
	assert.Equal(t, types.StateRunning, records[1].State)
}

func TestParseStatusSectionBoundary(t *testing.T) {
	// Entries before the Streams marker and after the closing unindented
	// line must not be captured.
	records := ParseStatus(statusDump)
	for _, r := range records {
		assert.NotEqual(t, 32, r.ID)
		assert.NotEqual(t, 51, r.ID)
		assert.NotEqual(t, 80, r.ID)
	}
}

func TestParseStatusNoStreamsSection(t *testing.T) {
	assert.Empty(t, ParseStatus("Audio\n ├─ Devices:\n        46. Built-in Audio\n"))
	assert.Empty(t, ParseStatus(""))
}

func TestParseStatusMalformedEntries(t *testing.T) {
	dump := ` └─ Streams:
        not a stream line
        99. Spotify
`
	records := ParseStatus(dump)
	require.Len(t, records, 1)
	assert.Equal(t, 99, records[0].ID)
	assert.Equal(t, "Spotify", records[0].DisplayName)
}
