package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	DatabaseURL              string `env:"DATABASE_URL"`
	DBMaxOpenConns           int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns           int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeSeconds int    `env:"DB_CONN_MAX_LIFETIME_SECONDS" envDefault:"300"`
	DBConnMaxIdleTimeSeconds int    `env:"DB_CONN_MAX_IDLE_SECONDS" envDefault:"60"`
	MigrationsDir            string `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`
	LogLevel                 string `env:"LOG_LEVEL" envDefault:"info"`
	Timezone                 string `env:"GAME_TIMEZONE" envDefault:"America/New_York"`
	DailyTopLimit            int    `env:"DAILY_TOP_LIMIT" envDefault:"10"`
	RolloverCron             string `env:"ROLLOVER_CRON" envDefault:"0 0 * * *"`
	PictureBucket            string `env:"PICTURE_BUCKET"`
	PictureRegion            string `env:"PICTURE_REGION" envDefault:"auto"`
	PictureEndpoint          string `env:"PICTURE_ENDPOINT"`
	PictureAccessKeyID       string `env:"PICTURE_ACCESS_KEY_ID"`
	PictureSecretAccessKey   string `env:"PICTURE_SECRET_ACCESS_KEY"`
	PictureLinkTTLSeconds    int    `env:"PICTURE_LINK_TTL_SECONDS" envDefault:"900"`
}

func Default() Config {
	return Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		MigrationsDir:            "db/migrations",
		LogLevel:                 "info",
		Timezone:                 "America/New_York",
		DailyTopLimit:            10,
		RolloverCron:             "0 0 * * *",
		PictureRegion:            "auto",
		PictureLinkTTLSeconds:    900,
	}
}

// Load reads the environment on top of Default. Non-positive pool and limit
// values fall back to their defaults.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Default(), fmt.Errorf("parsing environment: %w", err)
	}
	def := Default()
	if cfg.DBMaxOpenConns <= 0 {
		cfg.DBMaxOpenConns = def.DBMaxOpenConns
	}
	if cfg.DBMaxIdleConns <= 0 {
		cfg.DBMaxIdleConns = def.DBMaxIdleConns
	}
	if cfg.DBConnMaxLifetimeSeconds <= 0 {
		cfg.DBConnMaxLifetimeSeconds = def.DBConnMaxLifetimeSeconds
	}
	if cfg.DBConnMaxIdleTimeSeconds <= 0 {
		cfg.DBConnMaxIdleTimeSeconds = def.DBConnMaxIdleTimeSeconds
	}
	if cfg.DailyTopLimit <= 0 {
		cfg.DailyTopLimit = def.DailyTopLimit
	}
	if cfg.PictureLinkTTLSeconds <= 0 {
		cfg.PictureLinkTTLSeconds = def.PictureLinkTTLSeconds
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return cfg, fmt.Errorf("GAME_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

// Location resolves the game time zone. The calendar day for streaks and
// rollovers is always taken in this zone, never the server's.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc, _ = time.LoadLocation("America/New_York")
	}
	return loc
}

func (c Config) PictureLinkTTL() time.Duration {
	return time.Duration(c.PictureLinkTTLSeconds) * time.Second
}

// SetupLogging sets the global zerolog level from LOG_LEVEL.
func (c Config) SetupLogging() {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
}
