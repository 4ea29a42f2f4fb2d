// Package daemon runs the polling loop that watches the mixer for matching
// audio streams and dispatches notifications and captures.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/oszuidwest/zwfm-audioscan/internal/config"
	"github.com/oszuidwest/zwfm-audioscan/internal/detector"
	"github.com/oszuidwest/zwfm-audioscan/internal/notify"
	"github.com/oszuidwest/zwfm-audioscan/internal/pulse"
	"github.com/oszuidwest/zwfm-audioscan/internal/recorder"
	"github.com/oszuidwest/zwfm-audioscan/internal/streams"
	"github.com/oszuidwest/zwfm-audioscan/internal/types"
	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// Matched pattern group names.
const (
	GroupTeams   = "teams"
	GroupYouTube = "youtube"
	GroupCustom  = "custom"
)

// Daemon is the polling loop. It owns the tracker, the detector, the
// notifier, and the recorder for its lifetime.
type Daemon struct {
	cfg      *config.Config
	notifier *notify.StreamNotifier
	rec      *recorder.Recorder
	det      detector.StateDetector
	tracker  *Tracker
	dryRun   bool
}

// New creates a daemon. The detector strategy comes from the config snapshot.
func New(cfg *config.Config, dryRun bool) (*Daemon, error) {
	snap := cfg.Snapshot()

	det, err := detector.New(snap.Detector, snap.DetectorConfig())
	if err != nil {
		return nil, util.WrapError("create detector", err)
	}

	notifier := notify.NewStreamNotifier(cfg)

	return &Daemon{
		cfg:      cfg,
		notifier: notifier,
		rec:      recorder.New(cfg, notifier),
		det:      det,
		tracker:  NewTracker(),
		dryRun:   dryRun,
	}, nil
}

// Run executes the poll loop until the context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	snap := d.cfg.Snapshot()

	slog.Info("daemon started",
		"detector", snap.Detector,
		"poll_interval", snap.PollInterval,
		"cooldown", snap.Cooldown,
		"capture", snap.CaptureEnabled,
		"dry_run", d.dryRun,
	)

	ticker := time.NewTicker(snap.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("daemon stopping")
			d.rec.Close()
			return ctx.Err()
		case <-ticker.C:
			d.cycle(ctx)
		}
	}
}

// cycle performs one poll pass: list, detect, classify, notify, capture.
func (d *Daemon) cycle(ctx context.Context) {
	snap := d.cfg.Snapshot()
	list := streams.List()

	present := make(map[int]bool, len(list))
	var teamsStream *types.AudioStream

	for i := range list {
		s := &list[i]
		present[s.ID] = true

		// Carry activity timestamps across cycles so the idle timeout
		// has something to measure against.
		if ts, ok := d.tracker.CarriedActivity(s.ID); ok {
			s.LastActivity = ts
		}

		s.State = d.det.StreamState(ctx, s)
		d.det.UpdateActivity(ctx, s)
		d.tracker.StoreActivity(s.ID, s.LastActivity)

		group := matchGroup(&snap, s)
		if group == "" {
			continue
		}
		d.tracker.MarkSeen(s.ID, group, s.Application)

		if !s.IsRunning() {
			continue
		}

		if d.tracker.ShouldNotify(s.ID, group, snap.Cooldown) {
			d.dispatch(&snap, group, s)
		}

		if group == GroupTeams && teamsStream == nil {
			teamsStream = s
		}
	}

	d.tracker.PruneActivity(present)

	for _, ended := range d.tracker.FinishCycle() {
		slog.Info("stream ended", "stream_id", ended.ID, "type", ended.Type, "application", ended.Application)
		if !d.dryRun {
			d.notifier.StreamEnded(ended.Type, ended.ID, ended.Application)
		}
	}

	if !d.dryRun {
		d.rec.Observe(teamsStream)
	}
}

// dispatch sends detection notifications for a newly active match.
func (d *Daemon) dispatch(snap *config.Snapshot, group string, s *types.AudioStream) {
	capture := pulse.CaptureCommand(s.Monitor, suggestedCaptureFile(snap))

	slog.Info("stream detected",
		"stream_id", s.ID,
		"type", group,
		"application", s.Application,
		"media", s.Media,
		"state", s.State,
		"monitor", s.Monitor,
	)

	if d.dryRun {
		slog.Info("dry run, notifications suppressed", "stream_id", s.ID)
		return
	}

	d.notifier.StreamDetected(group, capture, s)
}

// suggestedCaptureFile builds the output path shown in notifications.
func suggestedCaptureFile(snap *config.Snapshot) string {
	name := fmt.Sprintf("meeting-%s.wav", util.CaptureTimestamp(time.Now()))
	return filepath.Join(snap.CaptureOutputDir, name)
}

// matchGroup returns the first enabled pattern group the stream matches.
func matchGroup(snap *config.Snapshot, s *types.AudioStream) string {
	groups := []struct {
		name   string
		target config.TargetConfig
	}{
		{GroupTeams, snap.Teams},
		{GroupYouTube, snap.YouTube},
		{GroupCustom, snap.Custom},
	}

	for _, g := range groups {
		if g.target.Enabled && streams.MatchesAny(g.target.Patterns, s.Application, s.Media) {
			return g.name
		}
	}
	return ""
}
