package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"campus-spot/internal/catalog"
	"campus-spot/internal/config"
	"campus-spot/internal/daily"
	"campus-spot/internal/db"
	"campus-spot/internal/players"
	"campus-spot/internal/versus"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type options struct {
	wipeDaily        bool
	clearPlayer      string
	repairChallenges bool
	registerPlayers  string
	resetPoints      string
	showTop          bool
	migrate          bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.wipeDaily, "wipe-daily", false, "reset every daily record, including streaks")
	flag.StringVar(&opts.clearPlayer, "clear-player", "", "remove a player's challenges and daily record")
	flag.BoolVar(&opts.repairChallenges, "repair-challenges", false, "assign pictures to challenges still holding the placeholder list")
	flag.StringVar(&opts.registerPlayers, "register", "", "comma-separated player ids to register")
	flag.StringVar(&opts.resetPoints, "reset-points", "", "zero a player's total points")
	flag.BoolVar(&opts.showTop, "top", false, "log today's daily leaderboard")
	flag.BoolVar(&opts.migrate, "automigrate", false, "run gorm auto-migrations before other tasks")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	cfg.SetupLogging()
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "admin").Logger()

	conn, err := db.Open(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, conn, cfg, logger, opts); err != nil {
		logger.Fatal().Err(err).Msg("admin task failed")
	}
}

func run(ctx context.Context, conn *gorm.DB, cfg config.Config, logger zerolog.Logger, opts options) error {
	if opts.migrate {
		if err := db.Migrate(conn); err != nil {
			return err
		}
	}

	directory := players.NewGormDirectory(conn)
	linker, err := catalog.NewLinker(ctx, cfg)
	if err != nil {
		return err
	}
	challenges := versus.NewService(
		versus.NewGormStore(conn),
		directory,
		catalog.NewGormCatalog(conn),
		versus.WithLinker(linker),
		versus.WithLogger(logger),
	)
	days := daily.NewService(
		daily.NewGormStore(conn),
		cfg.Location(),
		daily.WithLogger(logger),
		daily.WithTotals(directory),
		daily.WithTopLimit(cfg.DailyTopLimit),
	)

	if opts.registerPlayers != "" {
		for _, id := range strings.Split(opts.registerPlayers, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if err := directory.Register(ctx, id); err != nil {
				return err
			}
			if _, err := days.InsertOrGet(ctx, id); err != nil {
				return err
			}
			logger.Info().Str("player", id).Msg("player registered")
		}
	}
	if opts.wipeDaily {
		if _, err := days.ResetAllDailyRecords(ctx); err != nil {
			return err
		}
	}
	if opts.clearPlayer != "" {
		if _, err := challenges.ClearPlayerChallenges(ctx, opts.clearPlayer); err != nil {
			return err
		}
		removed, err := days.RemoveDailyRecord(ctx, opts.clearPlayer)
		if err != nil {
			return err
		}
		logger.Info().Str("player", opts.clearPlayer).Bool("daily_removed", removed).Msg("player cleared")
	}
	if opts.resetPoints != "" {
		if err := directory.ResetPoints(ctx, opts.resetPoints); err != nil {
			return err
		}
		logger.Info().Str("player", opts.resetPoints).Msg("total points reset")
	}
	if opts.showTop {
		top, err := days.GetDailyTopPlayers(ctx, 0)
		if err != nil {
			return err
		}
		for _, standing := range top {
			logger.Info().Int("rank", standing.Rank).Str("player", standing.Username).Int("points", standing.Points).Msg("daily standing")
		}
	}
	if opts.repairChallenges {
		repaired, err := challenges.RepairPlaceholderRounds(ctx)
		if err != nil {
			return err
		}
		logger.Info().Int("repaired", repaired).Msg("placeholder challenges repaired")
	}
	return nil
}
