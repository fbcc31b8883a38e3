package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arclight-Radio/cadence/internal/calendar"
	"github.com/Arclight-Radio/cadence/internal/clock"
	"github.com/Arclight-Radio/cadence/internal/model"
	"github.com/Arclight-Radio/cadence/internal/station"
)

// memService is a minimal in-memory station service for router tests.
type memService struct {
	nextID    int
	schedules []model.Schedule
	playlists []model.Playlist
}

func (m *memService) ListSchedules(context.Context) ([]model.Schedule, error) {
	return append([]model.Schedule(nil), m.schedules...), nil
}

func (m *memService) CreateSchedule(_ context.Context, p model.Payload) (model.Schedule, error) {
	s := applyPayload(model.Schedule{}, p)
	s.ID = m.nextID
	m.nextID++
	m.schedules = append(m.schedules, s)
	return s, nil
}

func (m *memService) UpdateSchedule(_ context.Context, id int, p model.Payload) (model.Schedule, error) {
	for i, s := range m.schedules {
		if s.ID == id {
			m.schedules[i] = applyPayload(s, p)
			return m.schedules[i], nil
		}
	}
	return model.Schedule{}, &station.APIError{Op: "update", ScheduleID: id, Status: 404, Message: "not found"}
}

func (m *memService) DeleteSchedule(_ context.Context, id int) error {
	for i, s := range m.schedules {
		if s.ID == id {
			m.schedules = append(m.schedules[:i], m.schedules[i+1:]...)
			return nil
		}
	}
	return &station.APIError{Op: "delete", ScheduleID: id, Status: 404, Message: "not found"}
}

func (m *memService) BulkReplace(_ context.Context, payloads []model.Payload) (int, error) {
	m.schedules = nil
	for _, p := range payloads {
		s := applyPayload(model.Schedule{}, p)
		s.ID = m.nextID
		m.nextID++
		m.schedules = append(m.schedules, s)
	}
	return len(payloads), nil
}

func (m *memService) ListPlaylists(context.Context) ([]model.Playlist, error) {
	return append([]model.Playlist(nil), m.playlists...), nil
}

func (m *memService) Timezone(context.Context) (string, error) {
	return "UTC", nil
}

func applyPayload(s model.Schedule, p model.Payload) model.Schedule {
	if p.PlaylistID != nil {
		s.PlaylistID = *p.PlaylistID
	}
	if p.Days != nil {
		s.Days = *p.Days
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.Priority != nil {
		s.Priority = *p.Priority
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	return s
}

func setupRouter(t *testing.T, svc *memService, now time.Time) (*gin.Engine, *calendar.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := calendar.NewStore(svc)
	require.NoError(t, store.Reload(context.Background()))
	engine := calendar.NewEngine(svc, store, station.NopNotifier{})
	stationClock := clock.NewStation("UTC", clock.MockClock{MockTime: now})

	r := gin.New()
	group := r.Group("/api/admin")
	ctl := NewScheduleController(engine, store, stationClock, 15, []string{"morning"})
	RegisterScheduleRoutes(group, ctl)
	RegisterPlaylistRoutes(group, NewPlaylistController(store))
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func testService() *memService {
	return &memService{
		nextID: 100,
		schedules: []model.Schedule{
			{ID: 1, PlaylistID: 10, Days: model.MustDaySet(0, 1, 2), StartTime: 540, EndTime: 600, IsActive: true},
		},
		playlists: []model.Playlist{
			{ID: 10, Name: "Morning Show", Color: "#fca311", IsActive: true},
			{ID: 11, Name: "Indie Hours", Color: "#14213d", IsActive: true},
			{ID: 12, Name: "Club Night", Color: "#000000", IsActive: true},
			{ID: 13, Name: "Jazz Corner", Color: "#e63946", IsActive: true},
		},
	}
}

func TestListSchedulesEndpoint(t *testing.T) {
	r, _ := setupRouter(t, testService(), time.Now())

	w := doJSON(t, r, http.MethodGet, "/api/admin/schedules", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out []model.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, []int{0, 1, 2}, out[0].Days.Days())
}

func TestChipDropCreateEndpoint(t *testing.T) {
	svc := testService()
	r, _ := setupRouter(t, svc, time.Now())

	day := 4
	w := doJSON(t, r, http.MethodPost, "/api/admin/schedules", map[string]any{
		"playlist_id": 11,
		"day":         day,
		"start":       "16:07",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created model.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, []int{4}, created.Days.Days())
	assert.Equal(t, "16:00", created.StartTime.String(), "drop point snapped to the grid")
	assert.Equal(t, "17:00", created.EndTime.String(), "default one-hour block")
}

func TestChipDropUnknownPlaylist(t *testing.T) {
	r, _ := setupRouter(t, testService(), time.Now())
	day := 0
	w := doJSON(t, r, http.MethodPost, "/api/admin/schedules", map[string]any{
		"playlist_id": 999, "day": day, "start": "10:00",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMoveEndpointSplitsMultiDay(t *testing.T) {
	svc := testService()
	r, _ := setupRouter(t, svc, time.Now())

	w := doJSON(t, r, http.MethodPost, "/api/admin/schedules/1/move", map[string]any{
		"from_day": 1,
		"to_day":   1,
		"start":    "14:02",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, svc.schedules, 2)
	assert.Equal(t, []int{0, 2}, svc.schedules[0].Days.Days())
	assert.Equal(t, "09:00", svc.schedules[0].StartTime.String())
	assert.Equal(t, []int{1}, svc.schedules[1].Days.Days())
	assert.Equal(t, "14:00", svc.schedules[1].StartTime.String())
	assert.Equal(t, "15:00", svc.schedules[1].EndTime.String())
}

func TestResizeEndpoint(t *testing.T) {
	svc := testService()
	svc.schedules = []model.Schedule{
		{ID: 1, PlaylistID: 10, Days: model.MustDaySet(3), StartTime: 540, EndTime: 600, IsActive: true},
	}
	r, _ := setupRouter(t, svc, time.Now())

	w := doJSON(t, r, http.MethodPost, "/api/admin/schedules/1/resize", map[string]any{
		"day":  3,
		"edge": "end",
		"time": "11:08",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "11:15", svc.schedules[0].EndTime.String())
	assert.Equal(t, "09:00", svc.schedules[0].StartTime.String())
}

func TestApplyPatternEndpoint(t *testing.T) {
	svc := testService()
	svc.schedules = []model.Schedule{
		{ID: 1, PlaylistID: 10, Days: model.MustDaySet(5), StartTime: 600, EndTime: 720, IsActive: true},
	}
	r, _ := setupRouter(t, svc, time.Now())

	w := doJSON(t, r, http.MethodPost, "/api/admin/schedules/1/apply-pattern", map[string]any{
		"pattern": "weekend",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res calendar.ExpandResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []int{6}, res.Added)
	assert.Equal(t, []int{5}, res.AlreadyCovered)
}

func TestSurpriseEndpoint(t *testing.T) {
	svc := testService()
	r, store := setupRouter(t, svc, time.Now())

	w := doJSON(t, r, http.MethodPost, "/api/admin/surprise", map[string]any{
		"start_hour":    0,
		"end_hour":      24,
		"block_minutes": 60,
		"seed":          1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Greater(t, res["created"], 0)
	assert.Len(t, store.All(), res["created"])
}

func TestClearAllEndpoint(t *testing.T) {
	svc := testService()
	r, store := setupRouter(t, svc, time.Now())

	w := doJSON(t, r, http.MethodDelete, "/api/admin/schedules", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, svc.schedules)
	assert.Empty(t, store.All())
}

func TestLiveEndpointUsesStationClock(t *testing.T) {
	svc := testService()
	// 2026-03-03 09:30 UTC is a Tuesday (day index 1); the seeded record
	// covers Mon-Wed 09:00-10:00.
	r, _ := setupRouter(t, svc, time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC))

	w := doJSON(t, r, http.MethodGet, "/api/admin/live", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Day       int              `json:"day"`
		Minute    string           `json:"minute"`
		Schedules []model.Schedule `json:"schedules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Day)
	assert.Equal(t, "09:30", res.Minute)
	require.Len(t, res.Schedules, 1)
	assert.Equal(t, 1, res.Schedules[0].ID)
}

func TestBadRequests(t *testing.T) {
	r, _ := setupRouter(t, testService(), time.Now())

	w := doJSON(t, r, http.MethodPost, "/api/admin/schedules", map[string]any{"playlist_id": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing day and start")

	w = doJSON(t, r, http.MethodPost, "/api/admin/schedules/1/resize", map[string]any{
		"day": 0, "edge": "middle", "time": "10:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown resize edge")

	w = doJSON(t, r, http.MethodPost, "/api/admin/surprise", map[string]any{
		"start_hour": 10, "end_hour": 8, "block_minutes": 60,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "inverted hour range")
}

func TestListPlaylistsEndpoint(t *testing.T) {
	r, _ := setupRouter(t, testService(), time.Now())

	w := doJSON(t, r, http.MethodGet, "/api/admin/playlists", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out []model.Playlist
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out, 4)
}
