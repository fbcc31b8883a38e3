package endpoints

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Arclight-Radio/cadence/internal/calendar"
	"github.com/Arclight-Radio/cadence/internal/clock"
	"github.com/Arclight-Radio/cadence/internal/http/api"
	"github.com/Arclight-Radio/cadence/internal/http/api/admin/packets"
	"github.com/Arclight-Radio/cadence/internal/model"
	"github.com/Arclight-Radio/cadence/internal/station"
)

type ScheduleController struct {
	engine  *calendar.Engine
	store   *calendar.Store
	station *clock.Station

	// reserved-playlist keywords from configuration, used by surprise runs
	keywords []string
	snapStep int

	gestureMu sync.Mutex
	tracker   *calendar.Tracker

	splitMu sync.Mutex
	splits  map[string]*calendar.SplitOp
}

func NewScheduleController(engine *calendar.Engine, store *calendar.Store, st *clock.Station, snapStep int, keywords []string) *ScheduleController {
	if snapStep <= 0 {
		snapStep = clock.DefaultSnapStep
	}
	return &ScheduleController{
		engine:   engine,
		store:    store,
		station:  st,
		keywords: keywords,
		snapStep: snapStep,
		tracker:  calendar.NewTracker(snapStep),
		splits:   make(map[string]*calendar.SplitOp),
	}
}

func RegisterScheduleRoutes(r gin.IRoutes, ctl *ScheduleController) {
	r.GET("/schedules", api.ResolveEndpoint(ctl.listSchedules))
	r.POST("/schedules", api.ResolveEndpoint(ctl.createSchedule))
	r.PUT("/schedules/:id", api.ResolveEndpoint(ctl.updateSchedule))
	r.DELETE("/schedules/:id", api.ResolveEndpoint(ctl.deleteSchedule))
	r.DELETE("/schedules", api.ResolveEndpoint(ctl.clearAll))

	r.POST("/schedules/:id/move", api.ResolveEndpoint(ctl.moveSchedule))
	r.POST("/schedules/:id/resize", api.ResolveEndpoint(ctl.resizeSchedule))
	r.POST("/schedules/:id/apply-pattern", api.ResolveEndpoint(ctl.applyPattern))

	r.POST("/surprise", api.ResolveEndpoint(ctl.surprise))
	r.POST("/splits/:split_id/retry", api.ResolveEndpoint(ctl.retrySplit))

	r.GET("/live", api.ResolveEndpoint(ctl.liveNow))
}

// listSchedules returns the working copy, refreshed from the station
// service first so the console never renders a stale grid on load.
func (s *ScheduleController) listSchedules(ctx *gin.Context) (any, *api.Error) {
	if err := s.store.Reload(ctx.Request.Context()); err != nil {
		log.Error().Err(err).Msg("[schedule] list: reload failed")
		return nil, errorFor(err)
	}
	return s.store.All(), nil
}

// createSchedule handles the playlist-chip drop: a default-length block at
// the drop point. Overlaps are allowed here; see the conflict warning in
// the engine.
func (s *ScheduleController) createSchedule(ctx *gin.Context) (any, *api.Error) {
	var req packets.CreateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("[schedule] create: bad request")
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	start, err := model.ParseTimeOfDay(req.Start)
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, ok := s.store.PlaylistByID(req.PlaylistID); !ok {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	created, err := s.engine.DropCreate(ctx.Request.Context(), req.PlaylistID, *req.Day, clock.Snap(start, s.snapStep))
	if err != nil {
		log.Error().Err(err).Msg("[schedule] create: could not create schedule")
		return nil, errorFor(err)
	}
	return created, nil
}

func (s *ScheduleController) updateSchedule(ctx *gin.Context) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	var req packets.UpdateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	payload := model.Payload{
		PlaylistID: req.PlaylistID,
		Priority:   req.Priority,
		IsActive:   req.IsActive,
	}
	if req.AllDays {
		all := model.AllDays()
		payload.Days = &all
	} else if len(req.Days) > 0 {
		days, err := model.NewDaySet(req.Days...)
		if err != nil {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
		}
		payload.Days = &days
	}
	if req.StartTime != nil {
		t, err := model.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
		}
		payload.StartTime = &t
	}
	if req.EndTime != nil {
		t, err := model.ParseTimeOfDay(*req.EndTime)
		if err != nil {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
		}
		payload.EndTime = &t
	}

	updated, err := s.engine.Update(ctx.Request.Context(), id, payload)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", id).Msg("[schedule] update failed")
		return nil, errorFor(err)
	}
	return updated, nil
}

func (s *ScheduleController) deleteSchedule(ctx *gin.Context) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if err := s.engine.Delete(ctx.Request.Context(), id); err != nil {
		log.Error().Err(err).Int("schedule_id", id).Msg("[schedule] delete failed")
		return nil, errorFor(err)
	}
	return gin.H{"deleted": id}, nil
}

func (s *ScheduleController) clearAll(ctx *gin.Context) (any, *api.Error) {
	if err := s.engine.ClearAll(ctx.Request.Context()); err != nil {
		log.Error().Err(err).Msg("[schedule] clear-all failed")
		return nil, errorFor(err)
	}
	return gin.H{"cleared": true}, nil
}

// moveSchedule replays a body drag through the gesture tracker, then
// commits the outcome. Multi-day records get split by the engine.
func (s *ScheduleController) moveSchedule(ctx *gin.Context) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	var req packets.MoveScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	sch, ok := s.store.ByID(id)
	if !ok {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	start, err := model.ParseTimeOfDay(req.Start)
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	s.gestureMu.Lock()
	if !s.tracker.BeginMove(sch, *req.FromDay, sch.StartTime) {
		s.gestureMu.Unlock()
		return nil, &api.Error{Code: http.StatusConflict, Message: calendar.ErrGestureInProgress.Error()}
	}
	s.tracker.Update(*req.ToDay, start)
	out, _ := s.tracker.Resolve()
	s.gestureMu.Unlock()

	return s.commit(ctx, out)
}

func (s *ScheduleController) resizeSchedule(ctx *gin.Context) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	var req packets.ResizeScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	sch, ok := s.store.ByID(id)
	if !ok {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	t, err := model.ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	s.gestureMu.Lock()
	var began bool
	if req.Edge == "start" {
		began = s.tracker.BeginResizeStart(sch, *req.Day)
	} else {
		began = s.tracker.BeginResizeEnd(sch, *req.Day)
	}
	if !began {
		s.gestureMu.Unlock()
		return nil, &api.Error{Code: http.StatusConflict, Message: calendar.ErrGestureInProgress.Error()}
	}
	s.tracker.Update(*req.Day, t)
	out, _ := s.tracker.Resolve()
	s.gestureMu.Unlock()

	return s.commit(ctx, out)
}

func (s *ScheduleController) commit(ctx *gin.Context, out calendar.Outcome) (any, *api.Error) {
	err := s.engine.Commit(ctx.Request.Context(), out)
	if err == nil {
		return gin.H{"committed": true}, nil
	}

	var partial *calendar.PartialSplitError
	if errors.As(err, &partial) {
		s.splitMu.Lock()
		s.splits[partial.Op.ID] = partial.Op
		s.splitMu.Unlock()
		log.Error().Err(err).Str("split", partial.Op.ID).Msg("[schedule] split partially applied")
		return nil, &api.Error{
			Code: http.StatusBadGateway,
			Message: fmt.Sprintf(
				"split %s partially applied: the original record was shortened but the new day was not created; retry the create",
				partial.Op.ID),
		}
	}
	log.Error().Err(err).Msg("[schedule] commit failed")
	return nil, errorFor(err)
}

// retrySplit re-issues the create half of a partially applied split.
func (s *ScheduleController) retrySplit(ctx *gin.Context) (any, *api.Error) {
	splitID := ctx.Param("split_id")
	s.splitMu.Lock()
	op, ok := s.splits[splitID]
	s.splitMu.Unlock()
	if !ok {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "no pending split with that id"}
	}
	if err := s.engine.RetrySplitCreate(ctx.Request.Context(), op); err != nil {
		log.Error().Err(err).Str("split", splitID).Msg("[schedule] split retry failed")
		return nil, errorFor(err)
	}
	s.splitMu.Lock()
	delete(s.splits, splitID)
	s.splitMu.Unlock()
	return packets.SplitStateResponse{ID: op.ID, Phase: string(op.Phase)}, nil
}

func (s *ScheduleController) applyPattern(ctx *gin.Context) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	var req packets.ApplyPatternRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	pattern, err := parsePattern(req)
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	res, err := s.engine.ExpandPattern(ctx.Request.Context(), id, pattern)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", id).Msg("[schedule] apply-pattern failed")
		return nil, errorFor(err)
	}
	return res, nil
}

func (s *ScheduleController) surprise(ctx *gin.Context) (any, *api.Error) {
	var req packets.SurpriseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	params := calendar.SurpriseParams{
		StartHour:    *req.StartHour,
		EndHour:      *req.EndHour,
		BlockMinutes: req.BlockMinutes,
		Keywords:     s.keywords,
	}
	if req.Seed != nil {
		params.Rand = rand.New(rand.NewSource(*req.Seed))
	}
	created, err := s.engine.SurpriseMe(ctx.Request.Context(), params)
	if err != nil {
		log.Error().Err(err).Msg("[schedule] surprise run failed")
		return nil, errorFor(err)
	}
	return packets.SurpriseResponse{Created: created}, nil
}

// liveNow answers "what is on air right now", in the station's timezone.
func (s *ScheduleController) liveNow(ctx *gin.Context) (any, *api.Error) {
	day := s.station.DayIndex()
	minute := s.station.MinuteOfDay()

	var live []model.Schedule
	for _, sch := range s.store.ByDay(day) {
		pl, ok := s.store.PlaylistByID(sch.PlaylistID)
		if clock.IsLiveNow(sch, ok && pl.IsActive, day, minute) {
			live = append(live, sch)
		}
	}
	return packets.LiveResponse{Day: day, Minute: minute.String(), Schedules: live}, nil
}

func parsePattern(req packets.ApplyPatternRequest) (calendar.Pattern, error) {
	switch req.Pattern {
	case "24h", "full-day":
		return calendar.Pattern{Kind: calendar.PatternFullDay}, nil
	case "all":
		return calendar.Pattern{Kind: calendar.PatternDays, Days: model.AllDays()}, nil
	case "weekdays":
		return calendar.Pattern{Kind: calendar.PatternDays, Days: model.MustDaySet(0, 1, 2, 3, 4)}, nil
	case "weekend":
		return calendar.Pattern{Kind: calendar.PatternDays, Days: model.MustDaySet(5, 6)}, nil
	case "", "days":
		days, err := model.NewDaySet(req.Days...)
		if err != nil {
			return calendar.Pattern{}, err
		}
		return calendar.Pattern{Kind: calendar.PatternDays, Days: days}, nil
	default:
		return calendar.Pattern{}, fmt.Errorf("unknown pattern %q", req.Pattern)
	}
}

// errorFor maps core errors onto HTTP responses: validation problems are
// the caller's fault, station service failures are upstream failures.
func errorFor(err error) *api.Error {
	var apiErr *station.APIError
	if errors.As(err, &apiErr) {
		return &api.Error{Code: http.StatusBadGateway, Message: apiErr.Error()}
	}
	return &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
}
