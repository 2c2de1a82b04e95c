package daily

import (
	"context"
	"errors"
	"strings"
	"time"
	_ "time/tzdata"

	"campus-spot/internal/apperr"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// DefaultTopLimit is the leaderboard size when the caller passes no limit.
const DefaultTopLimit = 10

// DefaultTimezone decides the calendar day when no location is given.
const DefaultTimezone = "America/New_York"

// Service runs the streak state machine. "Today" is always the calendar date
// in the configured game time zone, never the server's local date.
type Service struct {
	store    Store
	totals   Totals
	loc      *time.Location
	topLimit int
	clock    clockwork.Clock
	log      zerolog.Logger
}

// Totals keeps each player's running point total across days.
type Totals interface {
	AddPoints(ctx context.Context, username string, points int) error
}

type Option func(*Service)

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithTotals adds every recorded daily result to the player's total.
func WithTotals(t Totals) Option {
	return func(s *Service) { s.totals = t }
}

// WithTopLimit sets the leaderboard size used when callers pass no limit.
func WithTopLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topLimit = n
		}
	}
}

func NewService(store Store, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = defaultLocation()
	}
	s := &Service{
		store:    store,
		loc:      loc,
		topLimit: DefaultTopLimit,
		clock:    clockwork.NewRealClock(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *Service) Today() time.Time {
	return DateOf(s.clock.Now(), s.loc)
}

func validUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return apperr.Invalid("username is required")
	}
	return nil
}

// InsertOrGet creates a zeroed record dated today on first contact and
// returns the stored record afterwards.
func (s *Service) InsertOrGet(ctx context.Context, username string) (Record, error) {
	if err := validUsername(username); err != nil {
		return Record{}, err
	}
	today := s.Today()
	rec, created, err := s.store.Insert(ctx, Record{Username: username, FirstPlayed: &today})
	if err != nil {
		return Record{}, apperr.Storage(err)
	}
	if created {
		s.log.Info().Str("player", username).Msg("daily record created")
	}
	return rec, nil
}

// RecordDailyPlay stores today's result and advances the streak.
func (s *Service) RecordDailyPlay(ctx context.Context, username string, points, distance int) (Record, error) {
	if err := validUsername(username); err != nil {
		return Record{}, err
	}
	if points < 0 || distance < 0 {
		return Record{}, apperr.Invalid("points %d and distance %d must not be negative", points, distance)
	}
	today := s.Today()
	rec, err := s.store.Update(ctx, username, func(rec *Record) error {
		rec.CurrentStreak = NextStreak(rec.LastPlayed, today, rec.CurrentStreak)
		rec.Played = true
		rec.Points = points
		rec.Distance = distance
		rec.LastPlayed = &today
		if rec.FirstPlayed == nil {
			rec.FirstPlayed = &today
		}
		return nil
	})
	if err != nil {
		return Record{}, apperr.Storage(err)
	}
	if s.totals != nil {
		if err := s.totals.AddPoints(ctx, username, points); err != nil {
			s.log.Error().Err(err).Str("player", username).Int("points", points).Msg("adding to total points failed")
			return rec, apperr.Storage(err)
		}
	}
	s.log.Info().Str("player", username).Int("points", points).Int("streak", rec.CurrentStreak).Msg("daily play recorded")
	return rec, nil
}

// RecordVersusVisit stamps last_versus with today.
func (s *Service) RecordVersusVisit(ctx context.Context, username string) (Record, error) {
	if err := validUsername(username); err != nil {
		return Record{}, err
	}
	today := s.Today()
	rec, err := s.store.Update(ctx, username, func(rec *Record) error {
		rec.LastVersus = &today
		return nil
	})
	return rec, apperr.Storage(err)
}

func (s *Service) GetDailyRecord(ctx context.Context, username string) (Record, error) {
	rec, err := s.store.Get(ctx, username)
	return rec, apperr.Storage(err)
}

// HasPlayedToday is false for unknown players and for records whose last
// play predates today, even before the nightly rollover has run.
func (s *Service) HasPlayedToday(ctx context.Context, username string) (bool, error) {
	rec, err := s.store.Get(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Storage(err)
	}
	return rec.Played && sameDay(rec.LastPlayed, s.Today()), nil
}

// GetStreak returns the stored streak, zero for unknown players.
func (s *Service) GetStreak(ctx context.Context, username string) (int, error) {
	rec, err := s.store.Get(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return rec.CurrentStreak, nil
}

// ResetDailyRecord clears one player's result for a new day. The streak and
// last_played survive so the next play can extend the streak.
func (s *Service) ResetDailyRecord(ctx context.Context, username string) error {
	_, err := s.store.Update(ctx, username, func(rec *Record) error {
		rec.Played = false
		rec.Points = 0
		rec.Distance = 0
		return nil
	})
	return apperr.Storage(err)
}

// ResetAllDailyRecords wipes every record's result, last_played and streak.
func (s *Service) ResetAllDailyRecords(ctx context.Context) (int, error) {
	n, err := s.store.ResetAll(ctx, true)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	s.log.Warn().Int("records", n).Msg("all daily records wiped")
	return n, nil
}

// RolloverDay starts a new day for everyone: results are cleared, streaks kept.
func (s *Service) RolloverDay(ctx context.Context) (int, error) {
	n, err := s.store.ResetAll(ctx, false)
	if err != nil {
		s.log.Error().Err(err).Msg("daily rollover failed")
		return 0, apperr.Storage(err)
	}
	s.log.Info().Int("records", n).Str("date", DateKey(s.Today())).Msg("daily rollover complete")
	return n, nil
}

func (s *Service) RemoveDailyRecord(ctx context.Context, username string) (bool, error) {
	removed, err := s.store.Delete(ctx, username)
	return removed, apperr.Storage(err)
}

// GetDailyRank is the player's position among today's players. A player who
// has not played today is reported as not found.
func (s *Service) GetDailyRank(ctx context.Context, username string) (int, error) {
	rank, err := s.store.Rank(ctx, s.Today(), username)
	return rank, apperr.Storage(err)
}

func (s *Service) GetDailyTopPlayers(ctx context.Context, limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = s.topLimit
	}
	list, err := s.store.Standings(ctx, s.Today(), limit)
	return list, apperr.Storage(err)
}
