package calendar

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Arclight-Radio/cadence/internal/metrics"
	"github.com/Arclight-Radio/cadence/internal/model"
)

// PatternKind selects what "Apply to…" does with a source schedule.
type PatternKind int

const (
	// PatternFullDay widens the record's own time to 00:00-24:00 on the
	// days it already covers. No new records and no conflict check: other
	// active schedules would already have had to yield those hours.
	PatternFullDay PatternKind = iota
	// PatternDays copies the record's time slot onto additional days.
	PatternDays
)

// Pattern is a requested day-pattern for expansion, e.g. all days,
// weekdays, or weekends.
type Pattern struct {
	Kind PatternKind
	Days model.DaySet // ignored for PatternFullDay
}

// ExpandResult reports the per-day outcome of a pattern expansion. Skipped
// days had a conflicting active schedule and were left alone; they are a
// partial success, not an error.
type ExpandResult struct {
	Added          []int `json:"added"`
	Skipped        []int `json:"skipped"`
	AlreadyCovered []int `json:"already_covered"`
}

// ExpandPattern applies a day-pattern to an existing schedule, creating
// sibling single-day records on each requested day that is free.
func (e *Engine) ExpandPattern(ctx context.Context, scheduleID int, p Pattern) (ExpandResult, error) {
	src, ok := e.store.ByID(scheduleID)
	if !ok {
		return ExpandResult{}, fmt.Errorf("schedule %d not found", scheduleID)
	}

	if p.Kind == PatternFullDay {
		start, end := model.TimeOfDay(0), model.TimeOfDay(model.MinutesPerDay)
		if _, err := e.svc.UpdateSchedule(ctx, src.ID, model.Payload{StartTime: &start, EndTime: &end}); err != nil {
			return ExpandResult{}, err
		}
		metrics.Mutations.WithLabelValues("update").Inc()
		e.finish(ctx)
		return ExpandResult{Added: src.Days.Days()}, nil
	}

	var res ExpandResult
	for _, day := range p.Days.Days() {
		if src.Days.Contains(day) {
			res.AlreadyCovered = append(res.AlreadyCovered, day)
			continue
		}
		cand := Candidate{Day: day, StartMin: src.StartTime, EndMin: src.EndTime}
		if Conflicts(e.store, cand, src.ID) {
			res.Skipped = append(res.Skipped, day)
			metrics.PatternDays.WithLabelValues("skipped").Inc()
			continue
		}
		rec := model.Schedule{
			PlaylistID: src.PlaylistID,
			Days:       model.MustDaySet(day),
			StartTime:  src.StartTime,
			EndTime:    src.EndTime,
			Priority:   src.Priority,
			IsActive:   src.IsActive,
		}
		if _, err := e.svc.CreateSchedule(ctx, model.PayloadFrom(rec)); err != nil {
			return res, err
		}
		res.Added = append(res.Added, day)
		metrics.PatternDays.WithLabelValues("added").Inc()
	}

	log.Info().Int("schedule", src.ID).Ints("added", res.Added).Ints("skipped", res.Skipped).
		Msg("[expand] pattern applied")
	if len(res.Added) > 0 {
		e.finish(ctx)
	}
	return res, nil
}
