package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeListing = `Sink Input #42
	Driver: protocol-native.c
	Owner Module: 12
	Client: 87
	Sink: 1
	Sample Specification: float32le 2ch 48000Hz
	Corked: no
	Mute: no
	Volume: front-left: 42598 /  65% / -11.22 dB,   front-right: 42598 /  65% / -11.22 dB
	        balance 0.00
	Properties:
		application.name = "Google Chrome"
		media.name = "YouTube - Conference Talk"
		module-stream-restore.id = "sink-input-by-application-name:Google Chrome"
`

func TestParseSinkInputs(t *testing.T) {
	records := ParseSinkInputs(chromeListing)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, 42, r.ID)
	assert.Equal(t, "Google Chrome", r.Application)
	assert.Equal(t, "YouTube - Conference Talk", r.Media)
	assert.Equal(t, "1", r.SinkRef)
	assert.False(t, r.Corked)
	assert.False(t, r.Muted)
	assert.Equal(t, "65%", r.VolumePct)
}

func TestParseSinkInputsDefaults(t *testing.T) {
	records := ParseSinkInputs("Sink Input #7\n\tDriver: protocol-native.c\n")
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, 7, r.ID)
	assert.Equal(t, UnknownName, r.Application)
	assert.Equal(t, UnknownName, r.Media)
	assert.Equal(t, ZeroVolume, r.VolumePct)
	assert.Empty(t, r.SinkRef)
}

func TestParseSinkInputsFlags(t *testing.T) {
	listing := `Sink Input #3
	Corked: yes
	Mute: yes
	Volume: front-left: 0 /  0% / -inf dB
`
	records := ParseSinkInputs(listing)
	require.Len(t, records, 1)
	assert.True(t, records[0].Corked)
	assert.True(t, records[0].Muted)
	assert.Equal(t, "0%", records[0].VolumePct)
}

func TestParseSinkInputsOrder(t *testing.T) {
	listing := `Sink Input #9
	Sink: 0
Sink Input #4
	Sink: 1
Sink Input #12
	Sink: 0
`
	records := ParseSinkInputs(listing)
	require.Len(t, records, 3)
	assert.Equal(t, 9, records[0].ID)
	assert.Equal(t, 4, records[1].ID)
	assert.Equal(t, 12, records[2].ID)
}

func TestParseSinkInputsNonIntegerID(t *testing.T) {
	listing := `Sink Input #42
	Sink: 1
Sink Input #garbage
	Sink: 0
`
	// A corrupted header poisons the whole listing.
	assert.Nil(t, ParseSinkInputs(listing))
}

func TestParseSinkInputsEmpty(t *testing.T) {
	assert.Empty(t, ParseSinkInputs(""))
	assert.Empty(t, ParseSinkInputs("Some unrelated output\nwith lines\n"))
}

func TestParseSinkInputsIdempotent(t *testing.T) {
	first := ParseSinkInputs(chromeListing)
	second := ParseSinkInputs(chromeListing)
	assert.Equal(t, first, second)
}
