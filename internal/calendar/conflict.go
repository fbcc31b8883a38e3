package calendar

import "github.com/Arclight-Radio/cadence/internal/model"

// Candidate is a proposed (day, interval) placement to test for overlap.
type Candidate struct {
	Day      int
	StartMin model.TimeOfDay
	EndMin   model.TimeOfDay
}

// overlaps reports whether [s1,e1) and [s2,e2) intersect. The inequalities
// are strict so that exactly-touching boundaries do not count: back-to-back
// programming is the normal case, not an error.
func overlaps(s1, e1, s2, e2 model.TimeOfDay) bool {
	return s1 < e2 && s2 < e1
}

// Conflicts reports whether the candidate interval overlaps any active
// schedule covering the candidate's day, other than excludeID (0 to exclude
// nothing). Inactive schedules never conflict.
//
// The check is advisory: it guards the bulk paths (pattern expansion,
// auto-scheduling) before they commit, but it never repairs overlapping
// data the station service already holds.
func Conflicts(store *Store, c Candidate, excludeID int) bool {
	for _, sch := range store.ByDay(c.Day) {
		if !sch.IsActive || sch.ID == excludeID {
			continue
		}
		if overlaps(c.StartMin, c.EndMin, sch.StartTime, sch.EndTime) {
			return true
		}
	}
	return false
}
