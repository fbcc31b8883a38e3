package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arclight-Radio/cadence/internal/model"
)

func testSchedule() model.Schedule {
	return model.Schedule{
		ID: 1, PlaylistID: 2, Days: model.MustDaySet(1),
		StartTime: 540, EndTime: 660, IsActive: true,
	}
}

func TestMoveSnapsAndKeepsDuration(t *testing.T) {
	tracker := NewTracker(15)
	s := testSchedule()

	require.True(t, tracker.BeginMove(s, 1, s.StartTime))
	tracker.Update(3, 607) // raw pointer position, off-grid
	out, ok := tracker.Resolve()
	require.True(t, ok)

	assert.Equal(t, GestureMove, out.Kind)
	assert.Equal(t, 3, out.Day)
	assert.Equal(t, 1, out.SourceDay)
	assert.Equal(t, "10:00", out.Start.String())
	assert.Equal(t, "12:00", out.End.String(), "duration preserved")
}

func TestMoveClampsToDayColumn(t *testing.T) {
	tracker := NewTracker(15)
	s := testSchedule() // two hours long

	require.True(t, tracker.BeginMove(s, 1, s.StartTime))
	tracker.Update(1, 1430)
	out, _ := tracker.Resolve()
	assert.Equal(t, "22:00", out.Start.String())
	assert.Equal(t, "24:00", out.End.String())

	require.True(t, tracker.BeginMove(s, 1, s.StartTime))
	tracker.Update(1, 0)
	out, _ = tracker.Resolve()
	assert.Equal(t, "00:00", out.Start.String())
	assert.Equal(t, "02:00", out.End.String())
}

func TestResizeStartClampedAboveEnd(t *testing.T) {
	tracker := NewTracker(15)
	s := testSchedule()

	require.True(t, tracker.BeginResizeStart(s, 1))
	tracker.Update(1, 700) // past the end
	out, _ := tracker.Resolve()
	assert.Equal(t, "10:45", out.Start.String(), "start stops one step short of end")
	assert.Equal(t, "11:00", out.End.String())
}

func TestResizeEndClampedToMidnight(t *testing.T) {
	tracker := NewTracker(15)
	s := testSchedule()

	require.True(t, tracker.BeginResizeEnd(s, 1))
	tracker.Update(1, 1440)
	out, _ := tracker.Resolve()
	assert.Equal(t, "09:00", out.Start.String())
	assert.Equal(t, "24:00", out.End.String())
}

func TestResizeEndMinimumBlock(t *testing.T) {
	tracker := NewTracker(15)
	s := testSchedule()

	require.True(t, tracker.BeginResizeEnd(s, 1))
	tracker.Update(1, 500) // before the start
	out, _ := tracker.Resolve()
	assert.Equal(t, "09:15", out.End.String(), "end stops one step past start")
}

func TestGestureExclusive(t *testing.T) {
	tracker := NewTracker(15)
	s := testSchedule()

	require.True(t, tracker.BeginMove(s, 1, s.StartTime))
	assert.False(t, tracker.BeginResizeEnd(s, 1), "second pointer-down is ignored")
	assert.True(t, tracker.Active())

	_, ok := tracker.Resolve()
	require.True(t, ok)
	assert.False(t, tracker.Active())
	assert.True(t, tracker.BeginResizeEnd(s, 1))
}

func TestResolveWithoutGesture(t *testing.T) {
	tracker := NewTracker(15)
	_, ok := tracker.Resolve()
	assert.False(t, ok)
}

func TestCreateGestureComputesInterval(t *testing.T) {
	tracker := NewTracker(15)

	require.True(t, tracker.BeginCreate(5, 600))
	tracker.Update(5, 508) // dragged upward past the anchor
	out, _ := tracker.Resolve()

	assert.Equal(t, GestureCreate, out.Kind)
	assert.Equal(t, 5, out.Day)
	assert.Equal(t, "08:30", out.Start.String())
	assert.Equal(t, "10:00", out.End.String())
}
