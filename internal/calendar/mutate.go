package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Arclight-Radio/cadence/internal/metrics"
	"github.com/Arclight-Radio/cadence/internal/model"
	"github.com/Arclight-Radio/cadence/internal/station"
)

// ErrCreateGestureUnsupported marks the drag-to-create path, which computes
// an interval but never commits; blocks are created by dropping a playlist
// chip onto a day instead.
var ErrCreateGestureUnsupported = errors.New("drag-to-create is not committed; use chip drop")

// ErrGestureInProgress is returned when a new gesture begin is requested
// while another is active.
var ErrGestureInProgress = errors.New("another gesture is already in progress")

// DefaultBlockMinutes is the length of a block created by dropping a
// playlist chip onto the grid.
const DefaultBlockMinutes = 60

// SplitPhase tracks how far a two-phase split has progressed.
type SplitPhase string

const (
	SplitUpdatePending SplitPhase = "update-pending"
	SplitCreatePending SplitPhase = "create-pending"
	SplitDone          SplitPhase = "done"
)

// SplitOp is a multi-day edit in flight: the original record loses the
// dragged day, then a new single-day record is created with the changed
// time. The station service has no multi-record transaction, so the two
// calls are sequential and the op records which one is still pending.
type SplitOp struct {
	ID        string
	Phase     SplitPhase
	Original  model.Schedule
	Remaining model.DaySet
	NewRecord model.Schedule // single-day record for the dragged day; ID 0 until created
}

// PartialSplitError reports a split whose update succeeded but whose create
// failed: the original record is already shortened and the dragged day's
// block does not exist yet. Callers should prompt a retry of just the
// create via Engine.RetrySplitCreate.
type PartialSplitError struct {
	Op  *SplitOp
	Err error
}

func (e *PartialSplitError) Error() string {
	return fmt.Sprintf("split %s: original updated but create failed: %v", e.Op.ID, e.Err)
}

func (e *PartialSplitError) Unwrap() error { return e.Err }

// Engine turns resolved gesture outcomes and direct calls into station
// service mutations. It never rolls the working copy back on failure:
// inconsistency is resolved by the next reload.
type Engine struct {
	svc      station.Service
	store    *Store
	notifier station.Notifier
}

func NewEngine(svc station.Service, store *Store, notifier station.Notifier) *Engine {
	if notifier == nil {
		notifier = station.NopNotifier{}
	}
	return &Engine{svc: svc, store: store, notifier: notifier}
}

// Commit applies a resolved gesture outcome. For a record covering more
// than one day, the dragged day is split out into its own single-day
// record; the original keeps its time on the remaining days.
func (e *Engine) Commit(ctx context.Context, out Outcome) error {
	if out.Kind == GestureCreate {
		return ErrCreateGestureUnsupported
	}
	target := model.Schedule{
		PlaylistID: out.Schedule.PlaylistID,
		StartTime:  out.Start,
		EndTime:    out.End,
	}
	if err := target.Validate(); err != nil {
		return err
	}
	if out.Day < 0 || out.Day > 6 {
		return fmt.Errorf("day index %d out of range [0,6]", out.Day)
	}

	op := gestureOp(out.Kind)
	remaining, nonEmpty := out.Schedule.Days.Remove(out.SourceDay)
	if out.Schedule.Days.Len() <= 1 || !nonEmpty {
		// Single-day record (or removal would empty the set): a plain
		// in-place update suffices, with the new day for a move.
		days := model.MustDaySet(out.Day)
		payload := model.Payload{Days: &days, StartTime: &out.Start, EndTime: &out.End}
		if _, err := e.svc.UpdateSchedule(ctx, out.Schedule.ID, payload); err != nil {
			return err
		}
		metrics.Mutations.WithLabelValues(op).Inc()
		e.finish(ctx)
		return nil
	}

	split := &SplitOp{
		ID:        uuid.NewString(),
		Phase:     SplitUpdatePending,
		Original:  out.Schedule,
		Remaining: remaining,
		NewRecord: model.Schedule{
			PlaylistID: out.Schedule.PlaylistID,
			Days:       model.MustDaySet(out.Day),
			StartTime:  out.Start,
			EndTime:    out.End,
			Priority:   out.Schedule.Priority,
			IsActive:   out.Schedule.IsActive,
		},
	}

	// Phase 1: shrink the original. Its time does not change.
	payload := model.Payload{Days: &split.Remaining}
	if _, err := e.svc.UpdateSchedule(ctx, split.Original.ID, payload); err != nil {
		metrics.Splits.WithLabelValues("failed").Inc()
		return err
	}
	split.Phase = SplitCreatePending

	// Phase 2: create the single-day record for the dragged day.
	if err := e.createSplitRecord(ctx, split); err != nil {
		metrics.Splits.WithLabelValues("partial").Inc()
		return &PartialSplitError{Op: split, Err: err}
	}
	metrics.Splits.WithLabelValues("done").Inc()
	metrics.Mutations.WithLabelValues(op).Inc()
	e.finish(ctx)
	return nil
}

// RetrySplitCreate re-issues the create half of a partially applied split.
func (e *Engine) RetrySplitCreate(ctx context.Context, op *SplitOp) error {
	if op.Phase != SplitCreatePending {
		return fmt.Errorf("split %s is not awaiting create (phase %s)", op.ID, op.Phase)
	}
	if err := e.createSplitRecord(ctx, op); err != nil {
		return &PartialSplitError{Op: op, Err: err}
	}
	metrics.Splits.WithLabelValues("done").Inc()
	e.finish(ctx)
	return nil
}

func (e *Engine) createSplitRecord(ctx context.Context, op *SplitOp) error {
	created, err := e.svc.CreateSchedule(ctx, model.PayloadFrom(op.NewRecord))
	if err != nil {
		return err
	}
	op.NewRecord.ID = created.ID
	op.Phase = SplitDone
	log.Info().Str("split", op.ID).Int("original", op.Original.ID).Int("created", created.ID).
		Msg("[mutate] split committed")
	return nil
}

// DropCreate creates a block where a playlist chip was dropped: a
// default-length slot starting at the drop point, snapped by the caller.
// No conflict check is made; an overlap is allowed and merely logged.
func (e *Engine) DropCreate(ctx context.Context, playlistID, day int, start model.TimeOfDay) (model.Schedule, error) {
	if day < 0 || day > 6 {
		return model.Schedule{}, fmt.Errorf("day index %d out of range [0,6]", day)
	}
	end := start + DefaultBlockMinutes
	if end > model.MinutesPerDay {
		end = model.MinutesPerDay
		start = end - DefaultBlockMinutes
	}
	rec := model.Schedule{
		PlaylistID: playlistID,
		Days:       model.MustDaySet(day),
		StartTime:  start,
		EndTime:    end,
		IsActive:   true,
	}
	if err := rec.Validate(); err != nil {
		return model.Schedule{}, err
	}
	if Conflicts(e.store, Candidate{Day: day, StartMin: start, EndMin: end}, 0) {
		log.Warn().Int("playlist", playlistID).Int("day", day).Str("start", start.String()).
			Msg("[mutate] chip drop overlaps an existing block")
	}
	created, err := e.svc.CreateSchedule(ctx, model.PayloadFrom(rec))
	if err != nil {
		return model.Schedule{}, err
	}
	metrics.Mutations.WithLabelValues("create").Inc()
	e.finish(ctx)
	return created, nil
}

// Update passes a partial edit (activity toggle, priority, playlist swap)
// straight through to the station service.
func (e *Engine) Update(ctx context.Context, id int, payload model.Payload) (model.Schedule, error) {
	if payload.StartTime != nil && payload.EndTime != nil && *payload.EndTime <= *payload.StartTime {
		return model.Schedule{}, fmt.Errorf("schedule interval %s-%s is empty or inverted", *payload.StartTime, *payload.EndTime)
	}
	updated, err := e.svc.UpdateSchedule(ctx, id, payload)
	if err != nil {
		return model.Schedule{}, err
	}
	metrics.Mutations.WithLabelValues("update").Inc()
	e.finish(ctx)
	return updated, nil
}

func (e *Engine) Delete(ctx context.Context, id int) error {
	if err := e.svc.DeleteSchedule(ctx, id); err != nil {
		return err
	}
	metrics.Mutations.WithLabelValues("delete").Inc()
	e.finish(ctx)
	return nil
}

// ClearAll wipes the whole week. The refresh loop is suspended for the
// duration so a stale reload cannot race in mid-wipe.
func (e *Engine) ClearAll(ctx context.Context) error {
	e.store.Pause()
	defer e.store.Resume()
	if _, err := e.svc.BulkReplace(ctx, nil); err != nil {
		return err
	}
	e.store.Replace(nil)
	metrics.Mutations.WithLabelValues("clear-all").Inc()
	e.notifier.NotifyReload(true)
	return nil
}

// finish refreshes the working copy and pings the playback engine after a
// successful mutation. The reload is best-effort; a failure just means the
// next periodic refresh catches up.
func (e *Engine) finish(ctx context.Context) {
	if err := e.store.Reload(ctx); err != nil {
		log.Warn().Err(err).Msg("[mutate] post-commit reload failed")
	}
	e.notifier.NotifyReload(false)
}

func gestureOp(k GestureKind) string {
	switch k {
	case GestureMove:
		return "move"
	case GestureResizeStart, GestureResizeEnd:
		return "resize"
	default:
		return "create"
	}
}
