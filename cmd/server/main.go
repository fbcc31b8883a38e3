package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Arclight-Radio/cadence/internal/calendar"
	"github.com/Arclight-Radio/cadence/internal/clock"
	"github.com/Arclight-Radio/cadence/internal/config"
	"github.com/Arclight-Radio/cadence/internal/station"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := station.NewClient(cfg.StationAPIURL, cfg.StationAPIToken)

	// The station's configured timezone wins over ours; the env var is
	// only a fallback when the service does not report one.
	tz, err := svc.Timezone(ctx)
	if err != nil || tz == "" {
		log.Warn().Err(err).Str("fallback", cfg.StationTimezone).Msg("station timezone unavailable")
		tz = cfg.StationTimezone
	}
	stationClock := clock.NewStation(tz, clock.RealClock{})

	var notifier station.Notifier = station.NopNotifier{}
	if cfg.MQTTBrokerURL != "" {
		mq, err := station.NewMQTTNotifier(cfg.MQTTBrokerURL, cfg.StationID)
		if err != nil {
			log.Warn().Err(err).Msg("MQTT notifier unavailable, reload hints disabled")
		} else {
			defer mq.Close()
			notifier = mq
		}
	}

	store := calendar.NewStore(svc)
	if err := store.Reload(ctx); err != nil {
		log.Fatal().Err(err).Msg("initial schedule load failed")
	}
	go store.RunRefreshLoop(ctx, cfg.RefreshInterval)
	defer store.Stop()

	engine := calendar.NewEngine(svc, store, notifier)

	r := gin.Default()
	RegisterRoutes(r, cfg, engine, store, stationClock)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	log.Info().Str("addr", cfg.ServerAddress).Str("timezone", tz).Msg("listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
