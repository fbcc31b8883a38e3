package calendar

import (
	"github.com/Arclight-Radio/cadence/internal/clock"
	"github.com/Arclight-Radio/cadence/internal/model"
)

// GestureKind identifies what a pointer-down started.
type GestureKind int

const (
	// GestureMove drags the body of an existing block to a new day/time.
	GestureMove GestureKind = iota
	// GestureResizeStart drags the top handle of a block.
	GestureResizeStart
	// GestureResizeEnd drags the bottom handle of a block.
	GestureResizeEnd
	// GestureCreate drags across empty grid space. Its outcome is computed
	// but committing it is unsupported; creation happens through the
	// chip-drop path instead.
	GestureCreate
)

// Outcome is the resolved result of one pointer gesture: the target
// placement, already snapped to the grid and clamped to the day column.
type Outcome struct {
	Kind     GestureKind
	Schedule model.Schedule // source record; zero value for GestureCreate
	// SourceDay is the day column the block was grabbed in; for a
	// multi-day record this is the day being carved out by a split.
	SourceDay int
	Day       int // target day column
	Start     model.TimeOfDay
	End       model.TimeOfDay
}

type gesture struct {
	kind      GestureKind
	schedule  model.Schedule
	anchorDay int
	anchorMin model.TimeOfDay
	curDay    int
	curMin    model.TimeOfDay
}

// Tracker owns the single in-flight gesture. Pointer-drag state is
// exclusive: a Begin call while a gesture is active is ignored and returns
// false.
type Tracker struct {
	snapStep int
	active   *gesture
}

func NewTracker(snapStep int) *Tracker {
	if snapStep <= 0 {
		snapStep = clock.DefaultSnapStep
	}
	return &Tracker{snapStep: snapStep}
}

func (t *Tracker) begin(g gesture) bool {
	if t.active != nil {
		return false
	}
	g.curDay = g.anchorDay
	g.curMin = g.anchorMin
	t.active = &g
	return true
}

// BeginMove starts dragging the body of a block; grabMin is the pointer's
// minute-of-day at pointer-down, used to compute the drag delta.
func (t *Tracker) BeginMove(s model.Schedule, day int, grabMin model.TimeOfDay) bool {
	return t.begin(gesture{kind: GestureMove, schedule: s, anchorDay: day, anchorMin: grabMin})
}

func (t *Tracker) BeginResizeStart(s model.Schedule, day int) bool {
	return t.begin(gesture{kind: GestureResizeStart, schedule: s, anchorDay: day, anchorMin: s.StartTime})
}

func (t *Tracker) BeginResizeEnd(s model.Schedule, day int) bool {
	return t.begin(gesture{kind: GestureResizeEnd, schedule: s, anchorDay: day, anchorMin: s.EndTime})
}

func (t *Tracker) BeginCreate(day int, grabMin model.TimeOfDay) bool {
	return t.begin(gesture{kind: GestureCreate, anchorDay: day, anchorMin: grabMin})
}

// Update records the pointer's latest grid position.
func (t *Tracker) Update(day int, minute model.TimeOfDay) {
	if t.active == nil {
		return
	}
	if day < 0 {
		day = 0
	}
	if day > 6 {
		day = 6
	}
	if minute < 0 {
		minute = 0
	}
	if minute > model.MinutesPerDay {
		minute = model.MinutesPerDay
	}
	t.active.curDay = day
	t.active.curMin = minute
}

// Active reports whether a gesture is in flight.
func (t *Tracker) Active() bool {
	return t.active != nil
}

// Resolve finishes the in-flight gesture using the last recorded position.
// Releasing the pointer anywhere resolves; there is no abort affordance.
func (t *Tracker) Resolve() (Outcome, bool) {
	g := t.active
	if g == nil {
		return Outcome{}, false
	}
	t.active = nil

	out := Outcome{Kind: g.kind, Schedule: g.schedule, SourceDay: g.anchorDay, Day: g.curDay}
	step := model.TimeOfDay(t.snapStep)

	switch g.kind {
	case GestureMove:
		duration := g.schedule.EndTime - g.schedule.StartTime
		start := clock.Snap(g.schedule.StartTime+(g.curMin-g.anchorMin), t.snapStep)
		start = clampTime(start, 0, model.MinutesPerDay-duration)
		out.Start = start
		out.End = start + duration
	case GestureResizeStart:
		out.Day = g.anchorDay
		start := clock.Snap(g.curMin, t.snapStep)
		out.Start = clampTime(start, 0, g.schedule.EndTime-step)
		out.End = g.schedule.EndTime
	case GestureResizeEnd:
		out.Day = g.anchorDay
		end := clock.Snap(g.curMin, t.snapStep)
		out.Start = g.schedule.StartTime
		out.End = clampTime(end, g.schedule.StartTime+step, model.MinutesPerDay)
	case GestureCreate:
		out.Day = g.anchorDay
		lo, hi := g.anchorMin, g.curMin
		if hi < lo {
			lo, hi = hi, lo
		}
		out.Start = clock.Snap(lo, t.snapStep)
		out.End = clock.Snap(hi, t.snapStep)
		if out.End-out.Start < step {
			out.End = out.Start + step
		}
		if out.End > model.MinutesPerDay {
			out.End = model.MinutesPerDay
			out.Start = out.End - step
		}
	}
	return out, true
}

func clampTime(v, lo, hi model.TimeOfDay) model.TimeOfDay {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
