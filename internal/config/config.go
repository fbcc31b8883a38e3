package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Arclight-Radio/cadence/internal/model"
)

// Config holds environment-based settings.
type Config struct {
	StationAPIURL    string
	StationAPIToken  string
	StationTimezone  string
	StationID        string
	MQTTBrokerURL    string
	ReservedKeywords []string
	RefreshInterval  time.Duration
	ServerAddress    string
	SnapMinutes      int
}

// Load reads configuration from environment variables, with a local .env
// file as fallback for development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiURL := os.Getenv("STATION_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("STATION_API_URL is required")
	}
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}
	stationID := os.Getenv("STATION_ID")
	if stationID == "" {
		stationID = "default"
	}

	refresh := 30 * time.Second
	if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_INTERVAL %q: %w", raw, err)
		}
		refresh = d
	}

	snap := 15
	if raw := os.Getenv("SNAP_MINUTES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SNAP_MINUTES %q", raw)
		}
		snap = n
	}

	return &Config{
		StationAPIURL:    apiURL,
		StationAPIToken:  os.Getenv("STATION_API_TOKEN"),
		StationTimezone:  os.Getenv("STATION_TIMEZONE"),
		StationID:        stationID,
		MQTTBrokerURL:    os.Getenv("MQTT_BROKER_URL"),
		ReservedKeywords: model.SplitKeywords(os.Getenv("RESERVED_KEYWORDS")),
		RefreshInterval:  refresh,
		ServerAddress:    addr,
		SnapMinutes:      snap,
	}, nil
}
