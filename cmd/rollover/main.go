package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-spot/internal/config"
	"campus-spot/internal/daily"
	"campus-spot/internal/db"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	once := flag.Bool("once", false, "run the rollover immediately and exit")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	cfg.SetupLogging()
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "rollover").Logger()

	conn, err := db.Open(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	svc := daily.NewService(daily.NewGormStore(conn), cfg.Location(), daily.WithLogger(logger))

	if *once {
		if _, err := runRollover(context.Background(), svc); err != nil {
			logger.Fatal().Err(err).Msg("rollover failed")
		}
		return
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location()))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create scheduler")
	}
	job, err := sched.NewJob(
		gocron.CronJob(cfg.RolloverCron, false),
		gocron.NewTask(func() {
			if _, err := runRollover(context.Background(), svc); err != nil {
				logger.Error().Err(err).Msg("scheduled rollover failed")
			}
		}),
		gocron.WithName("daily-rollover"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Fatal().Err(err).Str("cron", cfg.RolloverCron).Msg("failed to schedule rollover")
	}
	sched.Start()
	if next, err := job.NextRun(); err == nil {
		logger.Info().Time("next_run", next).Str("timezone", cfg.Timezone).Msg("rollover scheduled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	if err := sched.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("scheduler shutdown failed")
	}
	logger.Info().Msg("rollover scheduler stopped")
}

func runRollover(ctx context.Context, svc *daily.Service) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return svc.RolloverDay(ctx)
}
