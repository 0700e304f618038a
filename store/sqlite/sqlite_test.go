package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/roster"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func request(id, pilotID string, start, end roster.Date, status leave.Status) leave.Request {
	return leave.Request{
		ID:         id,
		PilotID:    pilotID,
		PilotName:  "Test Pilot",
		EmployeeID: "E" + pilotID,
		Type:       leave.TypeAnnual,
		Start:      start,
		End:        end,
		Status:     status,
	}
}

func day(d int) roster.Date {
	return roster.NewDate(2025, time.March, d)
}

// =============================================================================
// REQUEST ROUND TRIP
// =============================================================================

func TestSaveAndGetRequest(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	in := request("r1", "P1", day(3), day(7), leave.StatusApproved)
	require.NoError(t, st.SaveRequest(ctx, in))

	out, err := st.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveRequest_UpsertsExistingRow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	in := request("r1", "P1", day(3), day(7), leave.StatusPending)
	require.NoError(t, st.SaveRequest(ctx, in))

	in.Status = leave.StatusApproved
	in.End = day(9)
	require.NoError(t, st.SaveRequest(ctx, in))

	out, err := st.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, out.Status)
	assert.Equal(t, day(9), out.End)

	all, err := st.FetchRequests(ctx, leave.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetRequest_NotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetRequest(context.Background(), "missing")
	assert.True(t, leave.IsNotFound(err))
}

// =============================================================================
// FETCH FILTERS
// =============================================================================

func TestFetchRequests_Filters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRequest(ctx, request("r1", "P1", day(1), day(5), leave.StatusApproved)))
	require.NoError(t, st.SaveRequest(ctx, request("r2", "P2", day(4), day(8), leave.StatusPending)))
	require.NoError(t, st.SaveRequest(ctx, request("r3", "P1", day(10), day(12), leave.StatusDenied)))

	t.Run("all", func(t *testing.T) {
		all, err := st.FetchRequests(ctx, leave.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		// Ordered by start date then id.
		assert.Equal(t, []string{"r1", "r2", "r3"}, []string{all[0].ID, all[1].ID, all[2].ID})
	})

	t.Run("by pilot", func(t *testing.T) {
		got, err := st.FetchRequests(ctx, leave.Filter{PilotID: "P1"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "r1", got[0].ID)
		assert.Equal(t, "r3", got[1].ID)
	})

	t.Run("by status", func(t *testing.T) {
		got, err := st.FetchRequests(ctx, leave.Filter{Status: leave.StatusDenied})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "r3", got[0].ID)
	})

	t.Run("by date window", func(t *testing.T) {
		// The window [day 4, day 6] intersects r1 and r2 but not r3.
		got, err := st.FetchRequests(ctx, leave.Filter{From: day(4), To: day(6)})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "r1", got[0].ID)
		assert.Equal(t, "r2", got[1].ID)
	})

	t.Run("denied rows are retained", func(t *testing.T) {
		all, err := st.FetchRequests(ctx, leave.Filter{})
		require.NoError(t, err)
		var ids []string
		for _, r := range all {
			ids = append(ids, r.ID)
		}
		assert.Contains(t, ids, "r3")
	})
}

// =============================================================================
// OPTIMISTIC COMMIT
// =============================================================================

func TestCommitRescheduled(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRequest(ctx, request("r1", "P1", day(3), day(7), leave.StatusApproved)))

	require.NoError(t, st.CommitRescheduled(ctx, "r1", day(10), day(14), 0))

	out, err := st.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, day(10), out.Start)
	assert.Equal(t, day(14), out.End)
	assert.Equal(t, 1, out.Version)
}

func TestCommitRescheduled_VersionConflict(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRequest(ctx, request("r1", "P1", day(3), day(7), leave.StatusApproved)))
	require.NoError(t, st.CommitRescheduled(ctx, "r1", day(10), day(14), 0))

	// Stale expected version after the first commit bumped it.
	err := st.CommitRescheduled(ctx, "r1", day(17), day(21), 0)
	assert.True(t, errors.Is(err, leave.ErrVersionConflict))

	out, getErr := st.GetRequest(ctx, "r1")
	require.NoError(t, getErr)
	assert.Equal(t, day(10), out.Start, "stale commit must not change dates")
}

func TestCommitRescheduled_NotFound(t *testing.T) {
	st := newTestStore(t)
	err := st.CommitRescheduled(context.Background(), "missing", day(10), day(14), 0)
	assert.True(t, errors.Is(err, leave.ErrNotFound))
}

// =============================================================================
// OVERRIDE AUDIT TRAIL
// =============================================================================

func TestOverrideRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	rec, err := leave.NewOverride("r1", "mgr-1", "crew swap cleared by fleet office", []leave.Conflict{
		{Type: leave.ConflictOverlap},
		{Type: leave.ConflictMinimumCrew},
	})
	require.NoError(t, err)
	require.NoError(t, st.PersistOverride(ctx, rec))

	got, err := st.ListOverrides(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, "mgr-1", got[0].ActorID)
	assert.Equal(t, "crew swap cleared by fleet office", got[0].Justification)
	assert.Equal(t, []leave.ConflictType{leave.ConflictOverlap, leave.ConflictMinimumCrew}, got[0].ConflictTypes)
	assert.WithinDuration(t, rec.CreatedAt, got[0].CreatedAt, time.Second)
}

func TestListOverrides_FiltersByRequest(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a, err := leave.NewOverride("r1", "mgr-1", "reason a", nil)
	require.NoError(t, err)
	b, err := leave.NewOverride("r2", "mgr-1", "reason b", nil)
	require.NoError(t, err)
	require.NoError(t, st.PersistOverride(ctx, a))
	require.NoError(t, st.PersistOverride(ctx, b))

	got, err := st.ListOverrides(ctx, "r2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	all, err := st.ListOverrides(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
