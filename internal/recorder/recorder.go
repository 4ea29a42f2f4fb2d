// Package recorder captures meeting audio from a stream's monitor source
// with FFmpeg and optionally uploads finished captures to S3.
package recorder

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-audioscan/internal/config"
	"github.com/oszuidwest/zwfm-audioscan/internal/notify"
	"github.com/oszuidwest/zwfm-audioscan/internal/types"
	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// ffmpegStopTimeout bounds the wait for FFmpeg to finalize a capture file.
const ffmpegStopTimeout = 10 * time.Second

// Recorder runs at most one capture at a time. The daemon feeds it one
// observation per poll cycle; the recorder decides when to start and when
// the grace period has run out.
type Recorder struct {
	mu       sync.Mutex
	cfg      *config.Config
	notifier *notify.StreamNotifier

	// Active capture
	cmd         *exec.Cmd
	cancel      context.CancelFunc
	stderr      *bytes.Buffer
	currentFile string
	streamID    int
	monitor     string
	startTime   time.Time
	lastAudio   time.Time

	durationTimer *time.Timer

	uploadWg sync.WaitGroup
}

// New returns a Recorder backed by the given config.
func New(cfg *config.Config, notifier *notify.StreamNotifier) *Recorder {
	return &Recorder{cfg: cfg, notifier: notifier}
}

// Observe feeds one poll-cycle observation to the recorder. A non-nil
// stream means matching meeting audio is currently running; nil means no
// matching stream was seen this cycle. Capture starts on the first active
// observation and stops once the grace period elapses without audio.
func (r *Recorder) Observe(stream *types.AudioStream) {
	snap := r.cfg.Snapshot()
	if !snap.CaptureEnabled {
		return
	}

	r.mu.Lock()
	recording := r.cmd != nil
	r.mu.Unlock()

	switch {
	case stream != nil && stream.IsRunning():
		if !recording {
			if err := r.start(&snap, stream); err != nil {
				slog.Error("capture start failed", "stream_id", stream.ID, "error", err)
				r.notifier.CaptureEvent("capture_failed", stream.ID, stream.Monitor, err)
				return
			}
		}
		r.mu.Lock()
		r.lastAudio = time.Now()
		r.mu.Unlock()

	case recording:
		r.mu.Lock()
		quiet := time.Since(r.lastAudio)
		r.mu.Unlock()
		if quiet > snap.GracePeriod {
			slog.Info("grace period elapsed, stopping capture", "quiet", quiet.Round(time.Second))
			r.Stop()
		}
	}
}

// Recording reports whether a capture is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// CurrentFile returns the path of the in-progress capture, or "".
func (r *Recorder) CurrentFile() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentFile
}

// start launches FFmpeg against the stream's monitor source.
func (r *Recorder) start(snap *config.Snapshot, stream *types.AudioStream) error {
	ffmpegPath := util.ResolveFFmpegPath(snap.FFmpegPath)
	if ffmpegPath == "" {
		return fmt.Errorf("ffmpeg not found")
	}

	if err := os.MkdirAll(snap.CaptureOutputDir, 0o755); err != nil {
		return util.WrapError("create capture directory", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("meeting-%s.wav", util.CaptureTimestamp(now))
	outPath := filepath.Join(snap.CaptureOutputDir, filename)

	ctx, cancel := context.WithCancel(context.Background())
	args := []string{
		"-f", "pulse",
		"-i", stream.Monitor,
		"-ac", fmt.Sprintf("%d", config.DefaultCaptureChannels),
		"-ar", fmt.Sprintf("%d", snap.SampleRate),
		"-hide_banner",
		"-loglevel", "warning",
		"-y",
		outPath,
	}
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return util.WrapError("start ffmpeg", err)
	}

	r.mu.Lock()
	r.cmd = cmd
	r.cancel = cancel
	r.stderr = &stderr
	r.currentFile = outPath
	r.streamID = stream.ID
	r.monitor = stream.Monitor
	r.startTime = now
	r.lastAudio = now
	r.durationTimer = time.AfterFunc(snap.MaxCaptureDuration, func() {
		slog.Info("capture max duration reached", "duration", snap.MaxCaptureDuration)
		r.Stop()
	})
	r.mu.Unlock()

	slog.Info("capture started", "stream_id", stream.ID, "monitor", stream.Monitor, "file", filename)
	r.notifier.CaptureEvent("capture_started", stream.ID, stream.Monitor, nil)
	return nil
}

// Stop finalizes the running capture, if any, and queues it for upload.
func (r *Recorder) Stop() {
	r.mu.Lock()
	cmd := r.cmd
	cancel := r.cancel
	stderr := r.stderr
	file := r.currentFile
	streamID := r.streamID
	monitor := r.monitor
	started := r.startTime
	if r.durationTimer != nil {
		r.durationTimer.Stop()
		r.durationTimer = nil
	}
	r.cmd = nil
	r.cancel = nil
	r.stderr = nil
	r.currentFile = ""
	r.mu.Unlock()

	if cmd == nil {
		return
	}

	// SIGINT lets FFmpeg write the file trailer before exiting
	if err := util.GracefulSignal(cmd.Process); err != nil {
		slog.Warn("failed to signal ffmpeg", "error", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			if msg := util.ExtractLastError(stderr.String()); msg != "" {
				slog.Warn("ffmpeg exited with error", "error", msg)
			}
		}
	case <-time.After(ffmpegStopTimeout):
		slog.Warn("ffmpeg did not stop in time, killing")
		cancel()
		<-done
	}
	cancel()

	slog.Info("capture stopped", "file", filepath.Base(file), "duration", time.Since(started).Round(time.Second))
	r.notifier.CaptureEvent("capture_stopped", streamID, monitor, nil)

	snap := r.cfg.Snapshot()
	if snap.S3.IsConfigured() {
		r.uploadWg.Add(1)
		go func() {
			defer r.uploadWg.Done()
			if err := UploadCapture(&snap.S3, file); err != nil {
				slog.Error("capture upload failed", "file", filepath.Base(file), "error", err)
				return
			}
			slog.Info("capture uploaded", "file", filepath.Base(file))
		}()
	}
}

// Close stops any running capture and waits for pending uploads.
func (r *Recorder) Close() {
	r.Stop()
	r.uploadWg.Wait()
}
