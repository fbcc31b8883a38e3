package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Arclight-Radio/cadence/internal/calendar"
	"github.com/Arclight-Radio/cadence/internal/clock"
	"github.com/Arclight-Radio/cadence/internal/config"
	"github.com/Arclight-Radio/cadence/internal/http/api/admin/endpoints"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, engine *calendar.Engine, store *calendar.Store, stationClock *clock.Station) {
	// CORS: the admin console is served from a different origin.
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
	}))

	admin := r.Group("/api/admin")
	scheduleCtl := endpoints.NewScheduleController(engine, store, stationClock, cfg.SnapMinutes, cfg.ReservedKeywords)
	endpoints.RegisterScheduleRoutes(admin, scheduleCtl)
	endpoints.RegisterPlaylistRoutes(admin, endpoints.NewPlaylistController(store))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
