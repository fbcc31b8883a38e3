package clock

import (
	"time"

	"github.com/Arclight-Radio/cadence/internal/model"
)

// Clock defines an interface for getting the current time.
// This allows us to inject a fake time during unit tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual server system time.
type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// MockClock implements Clock for testing specific scenarios,
// e.g. "pretend it is Friday at 23:59".
type MockClock struct {
	MockTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.MockTime
}

// DefaultSnapStep is the grid granularity for interactive edits: every
// boundary produced by a drag lands on a quarter-hour mark.
const DefaultSnapStep = 15

// Snap rounds a minute-of-day value to the nearest multiple of step.
func Snap(minutes model.TimeOfDay, step int) model.TimeOfDay {
	if step <= 0 {
		return minutes
	}
	m := int(minutes)
	rounded := (m + step/2) / step * step
	return model.TimeOfDay(rounded)
}

// Station answers "what day and minute is it at the station" questions in
// the station's configured timezone, never the caller's. All live-now logic
// must go through it.
type Station struct {
	loc   *time.Location
	clock Clock
}

// NewStation binds a timezone identifier (e.g. "Europe/Berlin") to a clock.
// An unknown or empty identifier falls back to UTC.
func NewStation(tz string, c Clock) *Station {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	if c == nil {
		c = RealClock{}
	}
	return &Station{loc: loc, clock: c}
}

func (s *Station) Location() *time.Location {
	return s.loc
}

// DayIndex returns the current weekday index, Monday = 0 through Sunday = 6.
func (s *Station) DayIndex() int {
	wd := s.clock.Now().In(s.loc).Weekday()
	// time.Weekday has Sunday = 0; the calendar grid starts on Monday.
	return (int(wd) + 6) % 7
}

// MinuteOfDay returns minutes elapsed since the station's local midnight.
func (s *Station) MinuteOfDay() model.TimeOfDay {
	now := s.clock.Now().In(s.loc)
	return model.TimeOfDay(now.Hour()*60 + now.Minute())
}

// IsLiveNow reports whether the schedule is on air at the given day and
// minute. playlistActive is the active flag of the referenced playlist.
// When a record's end does not exceed its start the end is shifted by a
// full day for the containment check only, which models blocks that cross
// midnight in wall-clock terms while staying in one calendar column.
func IsLiveNow(s model.Schedule, playlistActive bool, today int, nowMin model.TimeOfDay) bool {
	if !s.IsActive || !playlistActive {
		return false
	}
	if !s.Days.Contains(today) {
		return false
	}
	start, end := int(s.StartTime), int(s.EndTime)
	now := int(nowMin)
	if end <= start {
		end += model.MinutesPerDay
		if now < start {
			now += model.MinutesPerDay
		}
	}
	return now >= start && now < end
}
