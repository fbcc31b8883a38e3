package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MinutesPerDay is the number of minutes on one calendar day column.
// A TimeOfDay of exactly MinutesPerDay means "24:00", i.e. through midnight.
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time expressed as minutes since local midnight,
// in [0, 1440]. It serializes as "HH:MM"; 1440 serializes as "24:00", never
// as "00:00" of the following day, so round-trips are stable.
type TimeOfDay int

// ParseTimeOfDay converts "HH:MM" to minutes since midnight.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: minute out of range", s)
	}
	if h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q: hour out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DaySet is the set of weekday indexes (Monday = 0 … Sunday = 6) a schedule
// covers. It is either the full week or an explicit non-empty subset; the
// wire format uses null for the full week and a sorted index array otherwise.
type DaySet struct {
	all  bool
	mask uint8
}

// AllDays covers Monday through Sunday.
func AllDays() DaySet {
	return DaySet{all: true}
}

// NewDaySet builds an explicit day set. Indexes must be in [0,6] and the
// set must be non-empty.
func NewDaySet(days ...int) (DaySet, error) {
	if len(days) == 0 {
		return DaySet{}, fmt.Errorf("day set must not be empty")
	}
	var mask uint8
	for _, d := range days {
		if d < 0 || d > 6 {
			return DaySet{}, fmt.Errorf("day index %d out of range [0,6]", d)
		}
		mask |= 1 << uint(d)
	}
	return DaySet{mask: mask}, nil
}

// MustDaySet is NewDaySet for statically known inputs; it panics on error.
func MustDaySet(days ...int) DaySet {
	ds, err := NewDaySet(days...)
	if err != nil {
		panic(err)
	}
	return ds
}

// IsAll reports whether the set covers the full week, either because it was
// built with AllDays or because all seven days were added explicitly.
func (ds DaySet) IsAll() bool {
	return ds.all || ds.mask == 0x7f
}

func (ds DaySet) Contains(day int) bool {
	if day < 0 || day > 6 {
		return false
	}
	if ds.all {
		return true
	}
	return ds.mask&(1<<uint(day)) != 0
}

// Days returns the covered weekday indexes in ascending order.
func (ds DaySet) Days() []int {
	out := make([]int, 0, 7)
	for d := 0; d < 7; d++ {
		if ds.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

func (ds DaySet) Len() int {
	return len(ds.Days())
}

// Remove returns the set without the given day. The second return is false
// when removal would leave the set empty; callers must treat that as "the
// record becomes single-day" rather than producing an invalid empty set.
func (ds DaySet) Remove(day int) (DaySet, bool) {
	if !ds.Contains(day) {
		return ds, true
	}
	var mask uint8
	if ds.all {
		mask = 0x7f
	} else {
		mask = ds.mask
	}
	mask &^= 1 << uint(day)
	if mask == 0 {
		return DaySet{}, false
	}
	return DaySet{mask: mask}, true
}

// Add returns the set extended with the given days.
func (ds DaySet) Add(days ...int) DaySet {
	if ds.IsAll() {
		return AllDays()
	}
	mask := ds.mask
	for _, d := range days {
		if d >= 0 && d <= 6 {
			mask |= 1 << uint(d)
		}
	}
	return DaySet{mask: mask}
}

func (ds DaySet) Equal(other DaySet) bool {
	if ds.IsAll() || other.IsAll() {
		return ds.IsAll() == other.IsAll()
	}
	return ds.mask == other.mask
}

func (ds DaySet) MarshalJSON() ([]byte, error) {
	if ds.all {
		return []byte("null"), nil
	}
	return json.Marshal(ds.Days())
}

func (ds *DaySet) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ds = AllDays()
		return nil
	}
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	parsed, err := NewDaySet(days...)
	if err != nil {
		return err
	}
	*ds = parsed
	return nil
}

func (ds DaySet) String() string {
	if ds.all {
		return "all"
	}
	days := ds.Days()
	sort.Ints(days)
	return fmt.Sprint(days)
}

// Schedule is one recurring time-slot-to-playlist assignment as held by the
// station service. ID is 0 for records that have not been created yet.
type Schedule struct {
	ID         int       `json:"id"`
	PlaylistID int       `json:"playlist_id"`
	Days       DaySet    `json:"days_of_week"`
	StartTime  TimeOfDay `json:"start_time"`
	EndTime    TimeOfDay `json:"end_time"`
	Priority   int       `json:"priority"`
	IsActive   bool      `json:"is_active"`
}

// Validate rejects degenerate records before they reach the station service.
func (s Schedule) Validate() error {
	if !s.StartTime.Valid() || !s.EndTime.Valid() {
		return fmt.Errorf("schedule times out of range: %s-%s", s.StartTime, s.EndTime)
	}
	if s.EndTime <= s.StartTime {
		return fmt.Errorf("schedule interval %s-%s is empty or inverted", s.StartTime, s.EndTime)
	}
	return nil
}

// Payload is the create/update body for the station service. Pointer fields
// are omitted from partial updates when nil.
type Payload struct {
	PlaylistID *int       `json:"playlist_id,omitempty"`
	Days       *DaySet    `json:"days_of_week,omitempty"`
	StartTime  *TimeOfDay `json:"start_time,omitempty"`
	EndTime    *TimeOfDay `json:"end_time,omitempty"`
	Priority   *int       `json:"priority,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
}

// PayloadFrom builds a full create payload from a schedule record.
func PayloadFrom(s Schedule) Payload {
	days := s.Days
	start := s.StartTime
	end := s.EndTime
	pid := s.PlaylistID
	prio := s.Priority
	active := s.IsActive
	return Payload{
		PlaylistID: &pid,
		Days:       &days,
		StartTime:  &start,
		EndTime:    &end,
		Priority:   &prio,
		IsActive:   &active,
	}
}
