package packets

import "github.com/Arclight-Radio/cadence/internal/model"

type SurpriseResponse struct {
	Created int `json:"created"`
}

// SplitStateResponse reports the state of a split after a retry.
type SplitStateResponse struct {
	ID    string `json:"id"`
	Phase string `json:"phase"`
}

// LiveResponse lists what is on air right now at the station.
type LiveResponse struct {
	Day       int              `json:"day"`
	Minute    string           `json:"minute"`
	Schedules []model.Schedule `json:"schedules"`
}
