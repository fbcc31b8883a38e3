package calendar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arclight-Radio/cadence/internal/model"
)

func conflictStore(t *testing.T, schedules ...model.Schedule) *Store {
	t.Helper()
	svc := newFakeService()
	svc.seed(schedules...)
	store := NewStore(svc)
	require.NoError(t, store.Reload(context.Background()))
	return store
}

func TestConflictsTouchingBoundariesAllowed(t *testing.T) {
	store := conflictStore(t, model.Schedule{
		ID: 1, PlaylistID: 1, Days: model.MustDaySet(0),
		StartTime: 660, EndTime: 720, IsActive: true,
	})

	// Back-to-back is fine: [10:00,11:00) against [11:00,12:00).
	assert.False(t, Conflicts(store, Candidate{Day: 0, StartMin: 600, EndMin: 660}, 0))
}

func TestConflictsOneMinuteOverlap(t *testing.T) {
	store := conflictStore(t, model.Schedule{
		ID: 1, PlaylistID: 1, Days: model.MustDaySet(0),
		StartTime: 659, EndTime: 720, IsActive: true,
	})

	assert.True(t, Conflicts(store, Candidate{Day: 0, StartMin: 600, EndMin: 660}, 0))
}

func TestConflictsIgnoresOtherDays(t *testing.T) {
	store := conflictStore(t, model.Schedule{
		ID: 1, PlaylistID: 1, Days: model.MustDaySet(2),
		StartTime: 600, EndTime: 720, IsActive: true,
	})

	assert.False(t, Conflicts(store, Candidate{Day: 3, StartMin: 600, EndMin: 720}, 0))
	assert.True(t, Conflicts(store, Candidate{Day: 2, StartMin: 600, EndMin: 720}, 0))
}

func TestConflictsAllDaysRecordCoversEveryDay(t *testing.T) {
	store := conflictStore(t, model.Schedule{
		ID: 1, PlaylistID: 1, Days: model.AllDays(),
		StartTime: 0, EndTime: 1440, IsActive: true,
	})

	for day := 0; day < 7; day++ {
		assert.True(t, Conflicts(store, Candidate{Day: day, StartMin: 600, EndMin: 660}, 0))
	}
}

func TestConflictsSkipsInactiveAndExcluded(t *testing.T) {
	store := conflictStore(t,
		model.Schedule{ID: 1, PlaylistID: 1, Days: model.MustDaySet(0), StartTime: 600, EndTime: 720, IsActive: false},
		model.Schedule{ID: 2, PlaylistID: 1, Days: model.MustDaySet(0), StartTime: 600, EndTime: 720, IsActive: true},
	)

	cand := Candidate{Day: 0, StartMin: 630, EndMin: 690}
	assert.True(t, Conflicts(store, cand, 0))
	assert.False(t, Conflicts(store, cand, 2), "excluding the only active overlap clears the conflict")
}
