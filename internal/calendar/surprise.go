package calendar

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/Arclight-Radio/cadence/internal/metrics"
	"github.com/Arclight-Radio/cadence/internal/model"
)

// Reserved slot windows, clamped to the requested range at run time.
const (
	dailySlotStart = 4 * 60
	dailySlotEnd   = 6 * 60
	lunchSlotStart = 11 * 60
	lunchSlotEnd   = 13 * 60
)

// SurpriseParams drives one auto-schedule run.
type SurpriseParams struct {
	StartHour    int // 0 <= StartHour < EndHour <= 24
	EndHour      int
	BlockMinutes int      // tiling granularity, e.g. 30/60/90
	Keywords     []string // reserved-playlist name keywords; may be empty
	Rand         *rand.Rand
}

func (p SurpriseParams) validate() error {
	if p.StartHour < 0 || p.EndHour > 24 || p.StartHour >= p.EndHour {
		return fmt.Errorf("invalid hour range %d-%d", p.StartHour, p.EndHour)
	}
	if p.BlockMinutes <= 0 {
		return fmt.Errorf("block length must be positive, got %d", p.BlockMinutes)
	}
	return nil
}

type assignment struct {
	day      int
	start    model.TimeOfDay
	end      model.TimeOfDay
	playlist model.Playlist
}

// SurpriseMe generates a complete replacement week: reserved playlists get
// their carved-out slots, everything else is tiled in fixed blocks with a
// playlist assignment that avoids repeating the previous block on the same
// day and the overlapping block on the previous day. The result is
// submitted as one atomic clear-then-create call.
func (e *Engine) SurpriseMe(ctx context.Context, p SurpriseParams) (int, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	var active []model.Playlist
	for _, pl := range e.store.Playlists() {
		if pl.IsActive {
			active = append(active, pl)
		}
	}
	if len(active) == 0 {
		return 0, fmt.Errorf("no active playlists to schedule")
	}

	plan := buildWeekPlan(active, p, rng)

	payloads := make([]model.Payload, 0, len(plan))
	for _, a := range plan {
		rec := model.Schedule{
			PlaylistID: a.playlist.ID,
			Days:       model.MustDaySet(a.day),
			StartTime:  a.start,
			EndTime:    a.end,
			IsActive:   true,
		}
		if err := rec.Validate(); err != nil {
			return 0, err
		}
		payloads = append(payloads, model.PayloadFrom(rec))
	}

	// The whole replacement is non-interactive: suspend refreshing so a
	// reload cannot surface a half-replaced week.
	e.store.Pause()
	defer e.store.Resume()

	created, err := e.svc.BulkReplace(ctx, payloads)
	if err != nil {
		return 0, err
	}
	metrics.SurpriseRuns.Inc()
	if err := e.store.Reload(ctx); err != nil {
		log.Warn().Err(err).Msg("[surprise] post-replace reload failed")
	}
	e.notifier.NotifyReload(true)
	log.Info().Int("created", created).Msg("[surprise] week replaced")
	return created, nil
}

// buildWeekPlan carves out reserved slots, then tiles the remaining ranges.
// Days are generated strictly Monday through Sunday: the cross-day
// repetition rule compares against the previous day's finalized plan.
func buildWeekPlan(active []model.Playlist, p SurpriseParams, rng *rand.Rand) []assignment {
	startMin := model.TimeOfDay(p.StartHour * 60)
	endMin := model.TimeOfDay(p.EndHour * 60)

	reserved, regular := partition(active, p.Keywords)
	if len(reserved) == 0 {
		regular = active
	}
	pool := regular
	if len(pool) == 0 {
		pool = active
	}

	reservedByDay := placeReservedSlots(reserved, startMin, endMin, rng)

	var plan []assignment
	var prevDay []assignment
	for day := 0; day < 7; day++ {
		dayPlan := append([]assignment(nil), reservedByDay[day]...)

		var last *model.Playlist
		for _, r := range freeRanges(startMin, endMin, reservedByDay[day]) {
			for cur := r.start; cur < r.end; cur += model.TimeOfDay(p.BlockMinutes) {
				chunkEnd := cur + model.TimeOfDay(p.BlockMinutes)
				if chunkEnd > r.end {
					chunkEnd = r.end
				}
				pl := pickPlaylist(pool, active, last, prevDay, cur, chunkEnd, rng)
				dayPlan = append(dayPlan, assignment{day: day, start: cur, end: chunkEnd, playlist: pl})
				last = &pl
			}
			// A reserved slot between ranges breaks block adjacency.
			last = nil
		}

		plan = append(plan, dayPlan...)
		prevDay = dayPlan
	}
	return plan
}

func partition(active []model.Playlist, keywords []string) (reserved, regular []model.Playlist) {
	for _, pl := range active {
		matched := false
		for _, kw := range keywords {
			if pl.MatchesKeyword(kw) {
				matched = true
				break
			}
		}
		if matched {
			reserved = append(reserved, pl)
		} else {
			regular = append(regular, pl)
		}
	}
	return reserved, regular
}

// placeReservedSlots assigns the early-morning slot on every day and the
// lunch slot on 2 or 3 randomly chosen weekdays, rotating through the
// reserved playlists so no slot repeats its predecessor's playlist when
// there is a choice.
func placeReservedSlots(reserved []model.Playlist, startMin, endMin model.TimeOfDay, rng *rand.Rand) [7][]assignment {
	var byDay [7][]assignment
	if len(reserved) == 0 {
		return byDay
	}

	dailyStart := maxTime(dailySlotStart, startMin)
	dailyEnd := minTime(dailySlotEnd, endMin)
	lunchStart := maxTime(lunchSlotStart, startMin)
	lunchEnd := minTime(lunchSlotEnd, endMin)

	lunchDays := map[int]bool{}
	if lunchStart < lunchEnd {
		count := 2 + rng.Intn(2)
		for _, d := range rng.Perm(5)[:count] {
			lunchDays[d] = true
		}
	}

	var prev *model.Playlist
	next := func() model.Playlist {
		pl := reserved[rng.Intn(len(reserved))]
		for len(reserved) > 1 && prev != nil && pl.ID == prev.ID {
			pl = reserved[rng.Intn(len(reserved))]
		}
		prev = &pl
		return pl
	}

	for day := 0; day < 7; day++ {
		if dailyStart < dailyEnd {
			byDay[day] = append(byDay[day], assignment{day: day, start: dailyStart, end: dailyEnd, playlist: next()})
		}
		if lunchDays[day] {
			byDay[day] = append(byDay[day], assignment{day: day, start: lunchStart, end: lunchEnd, playlist: next()})
		}
	}
	return byDay
}

type timeRange struct {
	start, end model.TimeOfDay
}

// freeRanges subtracts the day's reserved slots from [startMin, endMin).
// Reserved slots never overlap each other, so a single sorted sweep works.
func freeRanges(startMin, endMin model.TimeOfDay, reserved []assignment) []timeRange {
	var out []timeRange
	cur := startMin
	for _, r := range reserved {
		if r.start > cur {
			out = append(out, timeRange{start: cur, end: r.start})
		}
		if r.end > cur {
			cur = r.end
		}
	}
	if cur < endMin {
		out = append(out, timeRange{start: cur, end: endMin})
	}
	return out
}

// pickPlaylist chooses a playlist for a chunk, avoiding the previous chunk
// on the same day and whatever overlaps the same minute range on the
// previous day. If those rules exclude everything, the full active set is
// the fallback so no slot is ever left unfilled.
func pickPlaylist(pool, active []model.Playlist, last *model.Playlist, prevDay []assignment, start, end model.TimeOfDay, rng *rand.Rand) model.Playlist {
	allowed := func(pl model.Playlist) bool {
		if last != nil && pl.ID == last.ID {
			return false
		}
		for _, a := range prevDay {
			if overlaps(start, end, a.start, a.end) && a.playlist.ID == pl.ID {
				return false
			}
		}
		return true
	}

	var candidates []model.Playlist
	for _, pl := range pool {
		if allowed(pl) {
			candidates = append(candidates, pl)
		}
	}
	if len(candidates) == 0 {
		for _, pl := range active {
			if allowed(pl) {
				candidates = append(candidates, pl)
			}
		}
	}
	if len(candidates) == 0 {
		candidates = active
	}
	return candidates[rng.Intn(len(candidates))]
}

func maxTime(a, b model.TimeOfDay) model.TimeOfDay {
	if a > b {
		return a
	}
	return b
}

func minTime(a, b model.TimeOfDay) model.TimeOfDay {
	if a < b {
		return a
	}
	return b
}
