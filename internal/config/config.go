// README: Config loader with env defaults for the simulated clock, reassignment
// windows, input file paths, and the optional Postgres/Redis observers.
package config

import (
	"os"
	"strconv"
	"time"
)

// ClockConfig mirrors the tick driver's simulated-clock parameters.
type ClockConfig struct {
	DayStartMinutes  int
	DayEndMinutes    int
	TickStepMinutes  int
	RealSleepPerTick time.Duration
}

// ReassignConfig mirrors the reassignment pipeline's windows and caps.
type ReassignConfig struct {
	LockWindowMinutes   int
	UrgentWindowMinutes int
	ServiceTimeMinutes  int
	OverloadCap         int
	OverloadCapFinal    int
	ClassUpgradeMax     int
}

type Config struct {
	Clock    ClockConfig
	Reassign ReassignConfig
	Inputs   struct {
		VehiclesPath        string
		BookingsPath        string
		InstantBookingsPath string
	}
	Observers struct {
		DBDSN     string // empty disables the Postgres audit writer
		RedisAddr string // empty disables the Redis live-position feed
	}
	MapsAPIKey string // empty keeps the default haversine oracle
	RandomSeed int64
	HTTPAddr   string // empty disables the monitoring HTTP server
}

func Load() (Config, error) {
	var cfg Config
	cfg.Clock.DayStartMinutes = envOrDefaultInt("DISPATCH_DAY_START_MIN", 360)
	cfg.Clock.DayEndMinutes = envOrDefaultInt("DISPATCH_DAY_END_MIN", 1140)
	cfg.Clock.TickStepMinutes = envOrDefaultInt("DISPATCH_TICK_STEP_MIN", 30)
	cfg.Clock.RealSleepPerTick = envOrDefaultDuration("DISPATCH_REAL_SLEEP", 6*time.Second)

	cfg.Reassign.LockWindowMinutes = envOrDefaultInt("DISPATCH_LOCK_WINDOW_MIN", 120)
	cfg.Reassign.UrgentWindowMinutes = envOrDefaultInt("DISPATCH_URGENT_WINDOW_MIN", 60)
	cfg.Reassign.ServiceTimeMinutes = envOrDefaultInt("DISPATCH_SERVICE_TIME_MIN", 30)
	cfg.Reassign.OverloadCap = envOrDefaultInt("DISPATCH_OVERLOAD_CAP", 8)
	cfg.Reassign.OverloadCapFinal = envOrDefaultInt("DISPATCH_OVERLOAD_CAP_FINAL", 10)
	cfg.Reassign.ClassUpgradeMax = envOrDefaultInt("DISPATCH_CLASS_UPGRADE_MAX", 9)

	cfg.Inputs.VehiclesPath = envOrDefault("DISPATCH_VEHICLES_PATH", "vehicles.json")
	cfg.Inputs.BookingsPath = envOrDefault("DISPATCH_BOOKINGS_PATH", "bookings.json")
	cfg.Inputs.InstantBookingsPath = envOrDefault("DISPATCH_INSTANT_BOOKINGS_PATH", "instant_bookings.json")

	cfg.Observers.DBDSN = os.Getenv("DISPATCH_DB_DSN")
	cfg.Observers.RedisAddr = os.Getenv("DISPATCH_REDIS_ADDR")
	cfg.MapsAPIKey = os.Getenv("DISPATCH_MAPS_API_KEY")

	cfg.RandomSeed = int64(envOrDefaultInt("DISPATCH_RANDOM_SEED", 42))
	cfg.HTTPAddr = os.Getenv("DISPATCH_HTTP_ADDR")

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
