package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Arclight-Radio/cadence/internal/model"
	"github.com/Arclight-Radio/cadence/internal/station"
)

// Store holds the working copy of the station's schedules and playlists.
// A reload replaces the lists wholesale; there is no incremental patching,
// so a concurrent editor's changes show up on the next refresh at the
// latest. The store is never authoritative.
type Store struct {
	svc station.Service

	mu        sync.RWMutex
	schedules []model.Schedule
	playlists []model.Playlist

	pauseMu sync.Mutex
	paused  int

	stopOnce sync.Once
	stop     chan struct{}
}

func NewStore(svc station.Service) *Store {
	return &Store{svc: svc, stop: make(chan struct{})}
}

// Reload re-fetches schedules and playlists from the station service and
// swaps them in.
func (s *Store) Reload(ctx context.Context) error {
	schedules, err := s.svc.ListSchedules(ctx)
	if err != nil {
		return err
	}
	playlists, err := s.svc.ListPlaylists(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.schedules = schedules
	s.playlists = playlists
	s.mu.Unlock()

	log.Debug().Int("schedules", len(schedules)).Int("playlists", len(playlists)).
		Msg("[store] reloaded from station service")
	return nil
}

// Replace swaps in a schedule list without a round-trip, e.g. after a bulk
// operation whose response already describes the new state.
func (s *Store) Replace(schedules []model.Schedule) {
	s.mu.Lock()
	s.schedules = schedules
	s.mu.Unlock()
}

func (s *Store) All() []model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Schedule, len(s.schedules))
	copy(out, s.schedules)
	return out
}

func (s *Store) ByID(id int) (model.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sch := range s.schedules {
		if sch.ID == id {
			return sch, true
		}
	}
	return model.Schedule{}, false
}

// ByDay returns the schedules covering the given weekday index.
func (s *Store) ByDay(day int) []model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Schedule
	for _, sch := range s.schedules {
		if sch.Days.Contains(day) {
			out = append(out, sch)
		}
	}
	return out
}

func (s *Store) ByPlaylist(playlistID int) []model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Schedule
	for _, sch := range s.schedules {
		if sch.PlaylistID == playlistID {
			out = append(out, sch)
		}
	}
	return out
}

func (s *Store) Playlists() []model.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Playlist, len(s.playlists))
	copy(out, s.playlists)
	return out
}

func (s *Store) PlaylistByID(id int) (model.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.playlists {
		if p.ID == id {
			return p, true
		}
	}
	return model.Playlist{}, false
}

// Pause suspends the refresh loop. Calls nest: every Pause must be matched
// by a Resume before refreshing continues. Bulk operations bracket
// themselves with Pause/Resume so a reload cannot race in mid-replacement.
func (s *Store) Pause() {
	s.pauseMu.Lock()
	s.paused++
	s.pauseMu.Unlock()
}

func (s *Store) Resume() {
	s.pauseMu.Lock()
	if s.paused > 0 {
		s.paused--
	}
	s.pauseMu.Unlock()
}

func (s *Store) isPaused() bool {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	return s.paused > 0
}

// RunRefreshLoop reloads on a fixed interval until Stop is called or the
// context is cancelled. Start it when the calendar mounts, stop it on
// teardown.
func (s *Store) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if s.isPaused() {
				continue
			}
			if err := s.Reload(ctx); err != nil {
				log.Warn().Err(err).Msg("[store] periodic reload failed")
			}
		}
	}
}

func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
