package station

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Arclight-Radio/cadence/internal/model"
)

// Service is the schedule-management surface of the external station
// service. The station service is the sole source of truth; everything this
// process holds is a working copy.
type Service interface {
	ListSchedules(ctx context.Context) ([]model.Schedule, error)
	CreateSchedule(ctx context.Context, payload model.Payload) (model.Schedule, error)
	UpdateSchedule(ctx context.Context, id int, payload model.Payload) (model.Schedule, error)
	DeleteSchedule(ctx context.Context, id int) error
	// BulkReplace atomically clears all existing schedules and inserts the
	// given set, returning the number created.
	BulkReplace(ctx context.Context, payloads []model.Payload) (int, error)
	ListPlaylists(ctx context.Context) ([]model.Playlist, error)
	Timezone(ctx context.Context) (string, error)
}

// APIError is a non-2xx response from the station service, carrying enough
// context to render a user-facing message.
type APIError struct {
	Op         string
	ScheduleID int
	Status     int
	Message    string
}

func (e *APIError) Error() string {
	if e.ScheduleID != 0 {
		return fmt.Sprintf("station %s (schedule %d): status %d: %s", e.Op, e.ScheduleID, e.Status, e.Message)
	}
	return fmt.Sprintf("station %s: status %d: %s", e.Op, e.Status, e.Message)
}

// Client talks to the station service over HTTP/JSON.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, scheduleID int, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("station %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("station %s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("station %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{
			Op:         op,
			ScheduleID: scheduleID,
			Status:     resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
		log.Error().Str("op", op).Int("status", resp.StatusCode).Msg("[station] request failed")
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("station %s: decode response: %w", op, err)
		}
	}
	return nil
}

func (c *Client) ListSchedules(ctx context.Context) ([]model.Schedule, error) {
	var out []model.Schedule
	if err := c.do(ctx, "list", http.MethodGet, "/api/schedules", 0, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSchedule(ctx context.Context, payload model.Payload) (model.Schedule, error) {
	var out model.Schedule
	if err := c.do(ctx, "create", http.MethodPost, "/api/schedules", 0, payload, &out); err != nil {
		return model.Schedule{}, err
	}
	return out, nil
}

func (c *Client) UpdateSchedule(ctx context.Context, id int, payload model.Payload) (model.Schedule, error) {
	var out model.Schedule
	path := fmt.Sprintf("/api/schedules/%d", id)
	if err := c.do(ctx, "update", http.MethodPut, path, id, payload, &out); err != nil {
		return model.Schedule{}, err
	}
	return out, nil
}

func (c *Client) DeleteSchedule(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/schedules/%d", id)
	return c.do(ctx, "delete", http.MethodDelete, path, id, nil, nil)
}

func (c *Client) BulkReplace(ctx context.Context, payloads []model.Payload) (int, error) {
	req := struct {
		Schedules []model.Payload `json:"schedules"`
	}{Schedules: payloads}
	var out struct {
		Created int `json:"created"`
	}
	if err := c.do(ctx, "bulk-replace", http.MethodPost, "/api/schedules/replace", 0, req, &out); err != nil {
		return 0, err
	}
	return out.Created, nil
}

func (c *Client) ListPlaylists(ctx context.Context) ([]model.Playlist, error) {
	var out []model.Playlist
	if err := c.do(ctx, "list-playlists", http.MethodGet, "/api/playlists", 0, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Timezone(ctx context.Context) (string, error) {
	var out struct {
		Timezone string `json:"timezone"`
	}
	if err := c.do(ctx, "timezone", http.MethodGet, "/api/station", 0, nil, &out); err != nil {
		return "", err
	}
	return out.Timezone, nil
}

// compile-time check that Client implements Service
var _ Service = (*Client)(nil)
