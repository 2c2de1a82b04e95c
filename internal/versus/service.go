package versus

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"campus-spot/internal/apperr"
	"campus-spot/internal/catalog"
	"campus-spot/internal/players"
	"campus-spot/internal/scoring"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Service is the challenge state machine. Every mutating operation goes
// through Store.Update, so it is applied atomically per challenge.
type Service struct {
	store    Store
	players  players.Directory
	pictures catalog.Catalog
	links    catalog.Linker
	distance scoring.Calculator
	clock    clockwork.Clock
	log      zerolog.Logger
}

type Option func(*Service)

func WithLinker(l catalog.Linker) Option {
	return func(s *Service) { s.links = l }
}

func WithDistance(d scoring.Calculator) Option {
	return func(s *Service) { s.distance = d }
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(store Store, directory players.Directory, pictures catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		store:    store,
		players:  directory,
		pictures: pictures,
		links:    catalog.DirectLinker{},
		distance: scoring.Haversine{},
		clock:    clockwork.NewRealClock(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// CreateChallenge opens a pending challenge from challengerID to challengeeID.
// An open challenge between the same two players, in either direction, is
// reported as a *apperr.DuplicateChallengeError carrying its identifier.
func (s *Service) CreateChallenge(ctx context.Context, challengerID, challengeeID string) (uint, error) {
	if err := check(challengeRequest{Challenger: challengerID, Challengee: challengeeID}); err != nil {
		return 0, err
	}
	if challengerID == challengeeID {
		return 0, fmt.Errorf("%w: cannot challenge yourself", apperr.ErrInvalidOpponent)
	}
	known, err := s.players.Exists(ctx, challengeeID)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	if !known {
		return 0, fmt.Errorf("%w: %s has never logged in", apperr.ErrInvalidOpponent, challengeeID)
	}

	now := s.now()
	c := &Challenge{
		ChallengerID: challengerID,
		ChallengeeID: challengeeID,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cs := &ChangeSet{}
	cs.Emit(EventCreated, challengerID, map[string]any{"challengee_id": challengeeID})
	if err := s.store.Create(ctx, c, cs); err != nil {
		return 0, apperr.Storage(err)
	}
	s.log.Info().Uint("challenge_id", c.ID).Str("challenger", challengerID).Str("challengee", challengeeID).Msg("challenge created")
	return c.ID, nil
}

// AcceptChallenge assigns five distinct pictures and opens round play.
func (s *Service) AcceptChallenge(ctx context.Context, id uint) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return apperr.Storage(err)
	}
	pictures, err := s.samplePictures(ctx)
	if err != nil {
		return err
	}
	_, err = s.store.Update(ctx, id, func(c *Challenge, cs *ChangeSet) error {
		if c.Status != StatusPending {
			return fmt.Errorf("%w: challenge %d is %s", apperr.ErrInvalidState, id, c.Status)
		}
		c.Status = StatusAccepted
		c.Pictures = pictures
		c.Challenger = Progress{}
		c.Challengee = Progress{}
		c.UpdatedAt = s.now()
		cs.Emit(EventAccepted, c.ChallengeeID, map[string]any{"pictures": pictures[:]})
		return nil
	})
	if err != nil {
		return apperr.Storage(err)
	}
	s.log.Info().Uint("challenge_id", id).Ints("pictures", pictures[:]).Msg("challenge accepted")
	return nil
}

func (s *Service) DeclineChallenge(ctx context.Context, id uint) error {
	_, err := s.store.Update(ctx, id, func(c *Challenge, cs *ChangeSet) error {
		if c.Status != StatusPending {
			return fmt.Errorf("%w: challenge %d is %s", apperr.ErrInvalidState, id, c.Status)
		}
		c.Status = StatusDeclined
		c.UpdatedAt = s.now()
		cs.Emit(EventDeclined, c.ChallengeeID, nil)
		return nil
	})
	if err != nil {
		return apperr.Storage(err)
	}
	s.log.Info().Uint("challenge_id", id).Msg("challenge declined")
	return nil
}

// samplePictures draws Rounds distinct identifiers uniformly from [1, count].
func (s *Service) samplePictures(ctx context.Context) ([Rounds]int, error) {
	var out [Rounds]int
	count, err := s.pictures.Count(ctx)
	if err != nil {
		return out, apperr.Storage(err)
	}
	if count < Rounds {
		return out, fmt.Errorf("%w: catalog holds %d pictures, need %d", apperr.ErrInvalidState, count, Rounds)
	}
	seen := make(map[int]struct{}, Rounds)
	for i := 0; i < Rounds; {
		id := rand.IntN(count) + 1
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out[i] = id
		i++
	}
	return out, nil
}

type UserChallenges struct {
	Initiated []Summary `json:"initiated"`
	Received  []Summary `json:"received"`
}

func (s *Service) UserChallenges(ctx context.Context, playerID string) (UserChallenges, error) {
	out := UserChallenges{Initiated: []Summary{}, Received: []Summary{}}
	list, err := s.store.ListForPlayer(ctx, playerID)
	if err != nil {
		return out, apperr.Storage(err)
	}
	for _, summary := range list {
		if summary.ChallengerID == playerID {
			out.Initiated = append(out.Initiated, summary)
		} else {
			out.Received = append(out.Received, summary)
		}
	}
	return out, nil
}

// participant loads the challenge and resolves playerID's role in it.
func (s *Service) participant(ctx context.Context, id uint, playerID string) (*Challenge, Role, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, 0, apperr.Storage(err)
	}
	role, ok := c.RoleOf(playerID)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s in challenge %d", apperr.ErrNotParticipant, playerID, id)
	}
	return c, role, nil
}

func (s *Service) PlayButtonStatus(ctx context.Context, id uint, playerID string) (PlayButtonStatus, error) {
	c, role, err := s.participant(ctx, id, playerID)
	if err != nil {
		return "", err
	}
	return c.Progress(role).PlayButton(), nil
}

// StartPlay flips the player's start flag the first time it is called and
// reports whether this call did so. Later calls leave progress untouched.
func (s *Service) StartPlay(ctx context.Context, id uint, playerID string) (bool, error) {
	if err := check(playerRequest{Player: playerID}); err != nil {
		return false, err
	}
	first := false
	_, err := s.store.Update(ctx, id, func(c *Challenge, cs *ChangeSet) error {
		role, ok := c.RoleOf(playerID)
		if !ok {
			return fmt.Errorf("%w: %s in challenge %d", apperr.ErrNotParticipant, playerID, id)
		}
		if c.Status != StatusAccepted {
			return fmt.Errorf("%w: challenge %d is %s", apperr.ErrInvalidState, id, c.Status)
		}
		p := c.Progress(role)
		if p.Started {
			return nil
		}
		p.Started = true
		first = true
		c.UpdatedAt = s.now()
		cs.Emit(EventStarted, playerID, map[string]any{"role": role.String()})
		return nil
	})
	if err != nil {
		return false, apperr.Storage(err)
	}
	return first, nil
}

type RoundResult struct {
	Round           int  `json:"round"`
	Score           int  `json:"score"`
	AlreadyRecorded bool `json:"already_recorded"`
}

// RecordRoundFinish writes score into the player's round slot. A slot that is
// already complete is left alone and its stored score is returned, so retries
// never count twice.
func (s *Service) RecordRoundFinish(ctx context.Context, id uint, playerID string, round, score int) (RoundResult, error) {
	if err := check(roundRequest{Player: playerID, Round: round, Score: score}); err != nil {
		return RoundResult{}, err
	}
	result := RoundResult{Round: round}
	_, err := s.store.Update(ctx, id, func(c *Challenge, cs *ChangeSet) error {
		role, ok := c.RoleOf(playerID)
		if !ok {
			return fmt.Errorf("%w: %s in challenge %d", apperr.ErrNotParticipant, playerID, id)
		}
		if c.Status != StatusAccepted {
			return fmt.Errorf("%w: challenge %d is %s", apperr.ErrInvalidRound, id, c.Status)
		}
		p := c.Progress(role)
		stored, applied := p.record(round, score)
		result.Score = stored
		result.AlreadyRecorded = !applied
		if applied {
			c.UpdatedAt = s.now()
			cs.Emit(EventRoundFinished, playerID, map[string]any{
				"round":  round,
				"score":  score,
				"points": p.Points,
			})
		}
		return nil
	})
	if err != nil {
		return RoundResult{}, apperr.Storage(err)
	}
	if result.AlreadyRecorded {
		s.log.Debug().Uint("challenge_id", id).Str("player", playerID).Int("round", round).Msg("round already recorded")
	}
	return result, nil
}

type GuessOutcome struct {
	Round           int                 `json:"round"`
	Points          int                 `json:"points"`
	Distance        *int                `json:"distance,omitempty"`
	AlreadyRecorded bool                `json:"already_recorded"`
	Place           string              `json:"place"`
	Answer          catalog.Coordinates `json:"answer"`
}

// SubmitGuess scores a guess for round and records it. A nil guess counts as
// a skipped round worth zero points.
func (s *Service) SubmitGuess(ctx context.Context, id uint, playerID string, round int, guess *catalog.Coordinates, elapsedSeconds float64) (GuessOutcome, error) {
	if err := check(roundRequest{Player: playerID, Round: round}); err != nil {
		return GuessOutcome{}, err
	}
	c, role, err := s.participant(ctx, id, playerID)
	if err != nil {
		return GuessOutcome{}, err
	}
	if c.Status != StatusAccepted {
		return GuessOutcome{}, fmt.Errorf("%w: challenge %d is %s", apperr.ErrInvalidRound, id, c.Status)
	}
	pic, err := s.pictures.Picture(ctx, c.Pictures[round-1])
	if err != nil {
		return GuessOutcome{}, apperr.Storage(err)
	}
	outcome := GuessOutcome{Round: round, Place: pic.Place, Answer: pic.Coordinates}

	points := 0
	if guess != nil {
		meters := int(math.Round(s.distance.Distance(guess.Lat, guess.Lon, pic.Coordinates.Lat, pic.Coordinates.Lon)))
		outcome.Distance = &meters
		if !c.Progress(role).IsComplete(round) {
			raw, err := scoring.VersusScore(float64(meters), elapsedSeconds)
			if err != nil {
				return GuessOutcome{}, err
			}
			points = int(math.Round(raw))
		}
	}

	result, err := s.RecordRoundFinish(ctx, id, playerID, round, points)
	if err != nil {
		return GuessOutcome{}, err
	}
	outcome.Points = result.Score
	outcome.AlreadyRecorded = result.AlreadyRecorded
	return outcome, nil
}

type Completion struct {
	Completed bool   `json:"completed"`
	Match     *Match `json:"match,omitempty"`
}

// MarkPlayerFinished sets the player's finished flag. The call that sees both
// flags set records the match and completes the challenge; the per-challenge
// lock makes that happen once.
func (s *Service) MarkPlayerFinished(ctx context.Context, id uint, playerID string) (Completion, error) {
	return s.finish(ctx, id, playerID, false)
}

// ForfeitRemaining closes every round the player has not completed with zero
// points, then marks the player finished.
func (s *Service) ForfeitRemaining(ctx context.Context, id uint, playerID string) (Completion, error) {
	return s.finish(ctx, id, playerID, true)
}

func (s *Service) finish(ctx context.Context, id uint, playerID string, forfeit bool) (Completion, error) {
	if err := check(playerRequest{Player: playerID}); err != nil {
		return Completion{}, err
	}
	var out Completion
	alreadyDone := false
	_, err := s.store.Update(ctx, id, func(c *Challenge, cs *ChangeSet) error {
		role, ok := c.RoleOf(playerID)
		if !ok {
			return fmt.Errorf("%w: %s in challenge %d", apperr.ErrNotParticipant, playerID, id)
		}
		if c.Status == StatusCompleted {
			alreadyDone = true
			return nil
		}
		if c.Status != StatusAccepted {
			return fmt.Errorf("%w: challenge %d is %s", apperr.ErrInvalidState, id, c.Status)
		}
		now := s.now()
		p := c.Progress(role)
		if forfeit {
			var forfeited []int
			for round := 1; round <= Rounds; round++ {
				if _, applied := p.record(round, 0); applied {
					forfeited = append(forfeited, round)
				}
			}
			if len(forfeited) > 0 {
				cs.Emit(EventForfeited, playerID, map[string]any{"rounds": forfeited})
			}
		}
		if !p.Finished {
			p.Finished = true
			cs.Emit(EventPlayerFinished, playerID, map[string]any{"points": p.Points})
		}
		c.UpdatedAt = now
		if !c.Challenger.Finished || !c.Challengee.Finished {
			return nil
		}

		match := Match{
			ID:              uuid.NewString(),
			ChallengeID:     c.ID,
			WinnerID:        c.Winner(),
			ChallengerScore: c.Challenger.Points,
			ChallengeeScore: c.Challengee.Points,
			CreatedAt:       now,
		}
		cs.Complete(match)
		c.Status = StatusCompleted
		cs.Emit(EventCompleted, "", map[string]any{
			"winner_id":        match.WinnerID,
			"challenger_score": match.ChallengerScore,
			"challengee_score": match.ChallengeeScore,
		})
		out = Completion{Completed: true, Match: &match}
		return nil
	})
	if err != nil {
		return Completion{}, apperr.Storage(err)
	}
	if alreadyDone {
		match, err := s.store.Match(ctx, id)
		if err != nil {
			return Completion{}, apperr.Storage(err)
		}
		return Completion{Completed: true, Match: match}, nil
	}
	if out.Match != nil {
		s.log.Info().Uint("challenge_id", id).Str("winner", out.Match.WinnerID).
			Int("challenger_score", out.Match.ChallengerScore).
			Int("challengee_score", out.Match.ChallengeeScore).
			Msg("challenge completed")
	}
	return out, nil
}

type RoundPicture struct {
	Round     int    `json:"round"`
	PictureID int    `json:"picture_id"`
	Link      string `json:"link"`
}

// RoundPictures lists the assigned pictures with display links. Coordinates
// and place names are only revealed by SubmitGuess.
func (s *Service) RoundPictures(ctx context.Context, id uint) ([]RoundPicture, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if c.Status != StatusAccepted && c.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: challenge %d is %s", apperr.ErrInvalidState, id, c.Status)
	}
	if !c.HasPictures() {
		return nil, fmt.Errorf("%w: challenge %d has no pictures assigned", apperr.ErrInvalidState, id)
	}
	out := make([]RoundPicture, 0, Rounds)
	for i, pictureID := range c.Pictures {
		pic, err := s.pictures.Picture(ctx, pictureID)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		link, err := s.links.Link(ctx, pic)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		out = append(out, RoundPicture{Round: i + 1, PictureID: pictureID, Link: link})
	}
	return out, nil
}

type Result struct {
	ChallengeID         uint        `json:"challenge_id"`
	ChallengerID        string      `json:"challenger_id"`
	ChallengeeID        string      `json:"challengee_id"`
	WinnerID            string      `json:"winner"`
	ChallengerPoints    int         `json:"challenger_points"`
	ChallengeePoints    int         `json:"challengee_points"`
	ChallengerPicPoints [Rounds]int `json:"challenger_pic_points"`
	ChallengeePicPoints [Rounds]int `json:"challengee_pic_points"`
	Pictures            [Rounds]int `json:"pictures"`
}

// ChallengeResult reports a completed challenge. Challenges that have not
// produced a match yet are reported as not found.
func (s *Service) ChallengeResult(ctx context.Context, id uint) (Result, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return Result{}, apperr.Storage(err)
	}
	if c.Status != StatusCompleted {
		return Result{}, apperr.NotFound("result for challenge %d (status %s)", id, c.Status)
	}
	match, err := s.store.Match(ctx, id)
	if err != nil {
		return Result{}, apperr.Storage(err)
	}
	return Result{
		ChallengeID:         c.ID,
		ChallengerID:        c.ChallengerID,
		ChallengeeID:        c.ChallengeeID,
		WinnerID:            match.WinnerID,
		ChallengerPoints:    match.ChallengerScore,
		ChallengeePoints:    match.ChallengeeScore,
		ChallengerPicPoints: c.Challenger.Scores,
		ChallengeePicPoints: c.Challengee.Scores,
		Pictures:            c.Pictures,
	}, nil
}

func (s *Service) Events(ctx context.Context, id uint) ([]Event, error) {
	events, err := s.store.Events(ctx, id)
	return events, apperr.Storage(err)
}

// ClearPlayerChallenges removes every challenge the player took part in,
// together with its match and event history.
func (s *Service) ClearPlayerChallenges(ctx context.Context, playerID string) (int, error) {
	removed, err := s.store.DeleteForPlayer(ctx, playerID)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	s.log.Info().Str("player", playerID).Int("removed", removed).Msg("player challenges cleared")
	return removed, nil
}

// RepairPlaceholderRounds gives a fresh picture list to accepted or completed
// challenges still holding the placeholder list. Real lists are never touched.
func (s *Service) RepairPlaceholderRounds(ctx context.Context) (int, error) {
	ids, err := s.store.Placeholders(ctx)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	repaired := 0
	for _, id := range ids {
		pictures, err := s.samplePictures(ctx)
		if err != nil {
			return repaired, err
		}
		changed := false
		_, err = s.store.Update(ctx, id, func(c *Challenge, cs *ChangeSet) error {
			if c.HasPictures() {
				return nil
			}
			c.Pictures = pictures
			c.UpdatedAt = s.now()
			changed = true
			cs.Emit(EventRepaired, "", map[string]any{"pictures": pictures[:]})
			return nil
		})
		if err != nil {
			return repaired, apperr.Storage(err)
		}
		if changed {
			repaired++
			s.log.Info().Uint("challenge_id", id).Ints("pictures", pictures[:]).Msg("challenge pictures repaired")
		}
	}
	return repaired, nil
}
