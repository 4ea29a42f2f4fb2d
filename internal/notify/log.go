package notify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// LogStreamDetected records a newly detected stream in the event log.
func LogStreamDetected(logPath, streamType, capture string, stream *types.AudioStream) error {
	return appendLogEntry(logPath, &types.StreamEvent{
		Timestamp:   timestampUTC(),
		Event:       "stream_detected",
		StreamID:    stream.ID,
		StreamType:  streamType,
		Application: stream.Application,
		Media:       stream.Media,
		Monitor:     stream.Monitor,
		Capture:     capture,
	})
}

// LogStreamEnded records the disappearance of a tracked stream.
func LogStreamEnded(logPath, streamType string, streamID int, application string) error {
	return appendLogEntry(logPath, &types.StreamEvent{
		Timestamp:   timestampUTC(),
		Event:       "stream_ended",
		StreamID:    streamID,
		StreamType:  streamType,
		Application: application,
	})
}

// LogCaptureEvent records a capture lifecycle event (started, stopped, failed).
func LogCaptureEvent(logPath, event string, streamID int, monitor string, captureErr error) error {
	entry := &types.StreamEvent{
		Timestamp: timestampUTC(),
		Event:     event,
		StreamID:  streamID,
		Monitor:   monitor,
	}
	if captureErr != nil {
		entry.Error = captureErr.Error()
	}
	return appendLogEntry(logPath, entry)
}

// WriteTestLog writes a test log entry.
func WriteTestLog(logPath string) error {
	if logPath == "" {
		return fmt.Errorf("log file path not configured")
	}

	return appendLogEntry(logPath, &types.StreamEvent{
		Timestamp: timestampUTC(),
		Event:     "test",
	})
}

// appendLogEntry appends a log entry to the file.
func appendLogEntry(logPath string, entry *types.StreamEvent) error {
	if !util.IsConfigured(logPath) {
		return nil
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return util.WrapError("marshal log entry", err)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return util.WrapError("open log file", err)
	}
	defer util.SafeCloseFunc(f, "log file")()

	if _, err := f.Write(jsonData); err != nil {
		return util.WrapError("write log entry", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return util.WrapError("write newline", err)
	}

	return nil
}
