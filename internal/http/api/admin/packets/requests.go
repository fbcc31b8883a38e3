package packets

// CreateScheduleRequest is the playlist-chip-drop gesture: a default-length
// block is created at the drop point.
type CreateScheduleRequest struct {
	PlaylistID int    `json:"playlist_id" binding:"required"`
	Day        *int   `json:"day" binding:"required"`
	Start      string `json:"start" binding:"required"`
}

// MoveScheduleRequest commits a body drag. Start is the raw pointer
// position; the server snaps and clamps it.
type MoveScheduleRequest struct {
	FromDay *int   `json:"from_day" binding:"required"`
	ToDay   *int   `json:"to_day" binding:"required"`
	Start   string `json:"start" binding:"required"`
}

// ResizeScheduleRequest commits a handle drag on one edge of a block.
type ResizeScheduleRequest struct {
	Day  *int   `json:"day" binding:"required"`
	Edge string `json:"edge" binding:"required,oneof=start end"`
	Time string `json:"time" binding:"required"`
}

type UpdateScheduleRequest struct {
	PlaylistID *int    `json:"playlist_id"`
	Days       []int   `json:"days_of_week"`
	AllDays    bool    `json:"all_days"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Priority   *int    `json:"priority"`
	IsActive   *bool   `json:"is_active"`
}

// ApplyPatternRequest names a day-pattern: "24h", "all", "weekdays",
// "weekend", or an explicit day list.
type ApplyPatternRequest struct {
	Pattern string `json:"pattern"`
	Days    []int  `json:"days"`
}

type SurpriseRequest struct {
	StartHour    *int   `json:"start_hour" binding:"required"`
	EndHour      *int   `json:"end_hour" binding:"required"`
	BlockMinutes int    `json:"block_minutes" binding:"required"`
	Seed         *int64 `json:"seed"`
}
