// Package wireplumber binds to the PipeWire session-manager tool (wpctl) to
// list currently active stream nodes from the routing graph.
package wireplumber

import (
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// streamPattern matches active stream entries: "<id>. <name>".
var streamPattern = regexp.MustCompile(`^\s*(\d+)\.\s+(.+)$`)

// ListStreams lists active stream nodes via "wpctl status".
func ListStreams() []types.RawRoutingRecord {
	out, err := exec.Command("wpctl", "status").Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = util.ExtractLastError(string(exitErr.Stderr))
		}
		slog.Debug("wpctl status failed", "error", err, "stderr", stderr)
		return nil
	}
	return ParseStatus(string(out))
}

// ParseStatus extracts the active stream entries from a routing-graph status
// dump. Only the "Streams:" subsection is considered: the section opens at a
// line containing the marker and closes at the first unindented, non-blank
// line after it. Every captured entry is RUNNING because the tool lists only
// currently active streams.
func ParseStatus(output string) []types.RawRoutingRecord {
	var records []types.RawRoutingRecord
	inStreams := false

	for line := range strings.Lines(output) {
		line = strings.TrimRight(line, "\n")

		if strings.Contains(line, "Streams:") {
			inStreams = true
			continue
		}
		if inStreams && line != "" && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			inStreams = false
			continue
		}
		if !inStreams || strings.TrimSpace(line) == "" {
			continue
		}

		m := streamPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		records = append(records, types.RawRoutingRecord{
			ID:          id,
			DisplayName: strings.TrimSpace(m[2]),
			State:       types.StateRunning,
		})
	}

	return records
}
