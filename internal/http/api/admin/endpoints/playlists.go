package endpoints

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Arclight-Radio/cadence/internal/calendar"
	"github.com/Arclight-Radio/cadence/internal/http/api"
)

// PlaylistController is a read-through: playlists are owned by the station
// service and only consulted here for names, colors and active flags.
type PlaylistController struct {
	store *calendar.Store
}

func NewPlaylistController(store *calendar.Store) *PlaylistController {
	return &PlaylistController{store: store}
}

func RegisterPlaylistRoutes(r gin.IRoutes, ctl *PlaylistController) {
	r.GET("/playlists", api.ResolveEndpoint(ctl.listPlaylists))
}

func (p *PlaylistController) listPlaylists(ctx *gin.Context) (any, *api.Error) {
	if err := p.store.Reload(ctx.Request.Context()); err != nil {
		log.Error().Err(err).Msg("[playlist] list: reload failed")
		return nil, errorFor(err)
	}
	return p.store.Playlists(), nil
}
