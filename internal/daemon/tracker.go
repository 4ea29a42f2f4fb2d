package daemon

import (
	"fmt"
	"time"
)

// TrackedStream identifies one matched stream across poll cycles.
type TrackedStream struct {
	ID          int    // Sink input ID
	Type        string // Matched pattern group (teams, youtube, custom)
	Application string // Application name at detection time
}

// Tracker holds all cross-cycle bookkeeping for the poll loop: notification
// cooldowns, the set of currently matched streams, and carried activity
// timestamps. The loop owns exactly one Tracker; nothing here is global.
type Tracker struct {
	lastNotified map[string]time.Time
	active       map[string]TrackedStream
	seen         map[string]TrackedStream
	lastActivity map[int]time.Time
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		lastNotified: make(map[string]time.Time),
		active:       make(map[string]TrackedStream),
		seen:         make(map[string]TrackedStream),
		lastActivity: make(map[int]time.Time),
	}
}

// key builds the cooldown key for a stream and its matched group.
func key(id int, streamType string) string {
	return fmt.Sprintf("%d:%s", id, streamType)
}

// ShouldNotify reports whether a notification for the stream is due, and
// stamps the cooldown window when it is.
func (t *Tracker) ShouldNotify(id int, streamType string, cooldown time.Duration) bool {
	k := key(id, streamType)
	if last, ok := t.lastNotified[k]; ok && time.Since(last) < cooldown {
		return false
	}
	t.lastNotified[k] = time.Now()
	return true
}

// MarkSeen records a matched stream for the current cycle.
func (t *Tracker) MarkSeen(id int, streamType, application string) {
	t.seen[key(id, streamType)] = TrackedStream{ID: id, Type: streamType, Application: application}
}

// FinishCycle closes out the current cycle. It returns the streams that were
// matched last cycle but vanished this cycle, and resets the seen set.
func (t *Tracker) FinishCycle() []TrackedStream {
	var ended []TrackedStream
	for k, s := range t.active {
		if _, ok := t.seen[k]; !ok {
			ended = append(ended, s)
			delete(t.lastNotified, k)
		}
	}

	t.active = t.seen
	t.seen = make(map[string]TrackedStream)
	return ended
}

// CarriedActivity returns the activity timestamp stored for a stream id in
// a previous cycle.
func (t *Tracker) CarriedActivity(id int) (time.Time, bool) {
	ts, ok := t.lastActivity[id]
	return ts, ok
}

// StoreActivity remembers a stream's activity timestamp for the next cycle.
// Zero timestamps are not stored.
func (t *Tracker) StoreActivity(id int, ts time.Time) {
	if !ts.IsZero() {
		t.lastActivity[id] = ts
	}
}

// PruneActivity drops activity timestamps for stream ids no longer present.
func (t *Tracker) PruneActivity(present map[int]bool) {
	for id := range t.lastActivity {
		if !present[id] {
			delete(t.lastActivity, id)
		}
	}
}
