package pulse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// UnknownSink is the sink reference used when the mixer reported none.
const UnknownSink = "unknown"

// ResolveSinkName resolves a mixer sink reference to a sink name.
// Numeric references are looked up via "pactl list sinks"; a failed lookup
// falls back to a synthetic name so downstream monitor-source construction
// always has something to work with. Non-numeric references pass through
// verbatim.
func ResolveSinkName(sinkRef string) string {
	if sinkRef == "" {
		return UnknownSink
	}

	id, err := strconv.Atoi(sinkRef)
	if err != nil {
		return sinkRef
	}

	output := runTool(pactlBinary, "list", "sinks")
	if output == "" {
		return fmt.Sprintf("alsa_output.%d", id)
	}
	return ExtractSinkName(output, id)
}

// ExtractSinkName finds the name of the sink with the given id in a sink
// listing. Blocks are headed by "Sink #<id>" with an indented "Name:" line.
func ExtractSinkName(output string, sinkID int) string {
	header := fmt.Sprintf("Sink #%d", sinkID)
	inBlock := false

	for line := range strings.Lines(output) {
		trimmed := strings.TrimSpace(line)
		if trimmed == header {
			inBlock = true
			continue
		}
		if inBlock {
			if name, ok := strings.CutPrefix(trimmed, "Name: "); ok {
				return strings.TrimSpace(name)
			}
			// A new sink header ends the block.
			if strings.HasPrefix(trimmed, "Sink #") {
				break
			}
		}
	}

	return fmt.Sprintf("unknown_sink_%d", sinkID)
}

// MonitorSource returns the monitor source name for a sink. The monitor is
// the companion virtual input that mirrors everything sent to the sink.
func MonitorSource(sinkName string) string {
	return sinkName + ".monitor"
}

// ValidateMonitorSource reports whether the monitor source exists.
func ValidateMonitorSource(monitor string) bool {
	output := runTool(pactlBinary, "list", "sources")
	return output != "" && strings.Contains(output, monitor)
}

// CreateNullSink creates a virtual null sink with the given name.
// The operation is idempotent: if a sink with that name already exists the
// call is a no-op.
func CreateNullSink(name string) error {
	output := runTool(pactlBinary, "list", "sinks")
	if strings.Contains(output, name) {
		return nil
	}

	err := runCommand(pactlBinary, "load-module", "module-null-sink", "sink_name="+name)
	return util.WrapError("create null sink "+name, err)
}

// MoveSinkInput moves a sink input to the named sink.
func MoveSinkInput(sinkInputID int, sinkName string) error {
	err := runCommand(pactlBinary, "move-sink-input", strconv.Itoa(sinkInputID), sinkName)
	return util.WrapError(fmt.Sprintf("move sink input %d to %s", sinkInputID, sinkName), err)
}

// CaptureCommand returns an ffmpeg command line that records the given
// monitor source as 16 kHz mono WAV, ready for transcription tooling.
func CaptureCommand(monitorSource, outputFile string) string {
	return fmt.Sprintf("ffmpeg -f pulse -i %s -ac 1 -ar 16000 %s", monitorSource, outputFile)
}

// ShortenSinkName strips common ALSA prefixes from a sink name for display.
func ShortenSinkName(name string) string {
	for _, prefix := range []string{"alsa_output.", "alsa_input."} {
		if short, ok := strings.CutPrefix(name, prefix); ok {
			return short
		}
	}
	return name
}
