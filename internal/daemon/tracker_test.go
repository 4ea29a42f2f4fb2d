package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCooldown(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.ShouldNotify(42, GroupTeams, time.Hour))
	assert.False(t, tr.ShouldNotify(42, GroupTeams, time.Hour), "within cooldown window")

	// Same id under a different group has its own window.
	assert.True(t, tr.ShouldNotify(42, GroupYouTube, time.Hour))

	// A zero cooldown always notifies.
	assert.True(t, tr.ShouldNotify(7, GroupCustom, 0))
	assert.True(t, tr.ShouldNotify(7, GroupCustom, 0))
}

func TestTrackerFinishCycle(t *testing.T) {
	tr := NewTracker()

	tr.MarkSeen(42, GroupTeams, "Microsoft Teams")
	tr.MarkSeen(9, GroupYouTube, "Google Chrome")
	assert.Empty(t, tr.FinishCycle(), "first cycle has no prior state")

	// Next cycle only the Teams stream is still there.
	tr.MarkSeen(42, GroupTeams, "Microsoft Teams")
	ended := tr.FinishCycle()
	require.Len(t, ended, 1)
	assert.Equal(t, 9, ended[0].ID)
	assert.Equal(t, GroupYouTube, ended[0].Type)
	assert.Equal(t, "Google Chrome", ended[0].Application)

	// Everything gone.
	ended = tr.FinishCycle()
	require.Len(t, ended, 1)
	assert.Equal(t, 42, ended[0].ID)
}

func TestTrackerCooldownResetsAfterEnd(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.ShouldNotify(42, GroupTeams, time.Hour))
	tr.MarkSeen(42, GroupTeams, "Microsoft Teams")
	tr.FinishCycle()

	// Stream vanishes; its cooldown entry is dropped with it.
	tr.FinishCycle()

	assert.True(t, tr.ShouldNotify(42, GroupTeams, time.Hour), "reappearing stream notifies again")
}

func TestTrackerActivityCarry(t *testing.T) {
	tr := NewTracker()

	_, ok := tr.CarriedActivity(42)
	assert.False(t, ok)

	ts := time.Now().Add(-10 * time.Second)
	tr.StoreActivity(42, ts)

	got, ok := tr.CarriedActivity(42)
	require.True(t, ok)
	assert.Equal(t, ts, got)

	// Zero timestamps are not stored.
	tr.StoreActivity(7, time.Time{})
	_, ok = tr.CarriedActivity(7)
	assert.False(t, ok)

	tr.PruneActivity(map[int]bool{})
	_, ok = tr.CarriedActivity(42)
	assert.False(t, ok)
}
