package pulse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

// Defaults applied when a sink input block omits a property.
const (
	// UnknownName is used when application.name or media.name is absent.
	UnknownName = "Unknown"
	// ZeroVolume is used when no Volume line is present.
	ZeroVolume = "0%"
)

// volumePattern captures the first percentage value on a Volume line.
var volumePattern = regexp.MustCompile(`(\d+)%`)

// ListSinkInputs lists per-application audio streams via "pactl list sink-inputs".
func ListSinkInputs() []types.RawMixerRecord {
	return ParseSinkInputs(runTool(pactlBinary, "list", "sink-inputs"))
}

// ParseSinkInputs parses the text output of a sink-input listing into raw
// mixer records, in discovery order.
//
// A "Sink Input #<id>" header flushes the previous accumulator and starts a
// new record; subsequent property lines populate fields by prefix match.
// Unrecognized lines are ignored. A header with a non-integer id aborts the
// whole parse and yields an empty list: partial results from a corrupted
// listing are worse than none.
func ParseSinkInputs(output string) []types.RawMixerRecord {
	var records []types.RawMixerRecord
	var current *types.RawMixerRecord

	flush := func() {
		if current == nil {
			return
		}
		if current.Application == "" {
			current.Application = UnknownName
		}
		if current.Media == "" {
			current.Media = UnknownName
		}
		if current.VolumePct == "" {
			current.VolumePct = ZeroVolume
		}
		records = append(records, *current)
		current = nil
	}

	for line := range strings.Lines(output) {
		line = strings.TrimSpace(line)

		if idStr, ok := strings.CutPrefix(line, "Sink Input #"); ok {
			flush()
			id, err := strconv.Atoi(strings.TrimSpace(idStr))
			if err != nil {
				return nil
			}
			current = &types.RawMixerRecord{ID: id}
			continue
		}

		if current == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "application.name = "):
			current.Application = quotedValue(line)
		case strings.HasPrefix(line, "media.name = "):
			current.Media = quotedValue(line)
		case strings.HasPrefix(line, "Sink: "):
			current.SinkRef = colonValue(line)
		case strings.HasPrefix(line, "Corked: "):
			current.Corked = colonValue(line) == "yes"
		case strings.HasPrefix(line, "Mute: "):
			current.Muted = colonValue(line) == "yes"
		case strings.HasPrefix(line, "Volume: "):
			if m := volumePattern.FindStringSubmatch(line); m != nil {
				current.VolumePct = m[1] + "%"
			}
		}
	}
	flush()

	return records
}

// quotedValue extracts the first double-quoted value from a property line.
func quotedValue(line string) string {
	parts := strings.SplitN(line, `"`, 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

// colonValue extracts the value after the first ": " separator.
func colonValue(line string) string {
	_, value, ok := strings.Cut(line, ": ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
