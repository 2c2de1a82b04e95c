package versus

import (
	"context"
	"time"
)

const (
	EventCreated        = "challenge_created"
	EventAccepted       = "challenge_accepted"
	EventDeclined       = "challenge_declined"
	EventStarted        = "play_started"
	EventRoundFinished  = "round_finished"
	EventForfeited      = "rounds_forfeited"
	EventPlayerFinished = "player_finished"
	EventCompleted      = "challenge_completed"
	EventRepaired       = "pictures_repaired"
)

type Event struct {
	ID          uint
	ChallengeID uint
	PlayerID    string
	Type        string
	Payload     map[string]any
	CreatedAt   time.Time
}

// ChangeSet collects the side records of one challenge mutation. The store
// writes them in the same transaction as the challenge itself.
type ChangeSet struct {
	match  *Match
	events []Event
}

func (cs *ChangeSet) Emit(eventType, playerID string, payload map[string]any) {
	cs.events = append(cs.events, Event{
		PlayerID: playerID,
		Type:     eventType,
		Payload:  payload,
	})
}

func (cs *ChangeSet) Complete(match Match) {
	cs.match = &match
}

func (cs *ChangeSet) Match() *Match {
	return cs.match
}

func (cs *ChangeSet) Events() []Event {
	return cs.events
}

// Store persists challenges. Update applies fn as one atomic read-modify-write
// serialized per challenge: fn sees a private copy, and nothing is written
// when it returns an error.
type Store interface {
	Create(ctx context.Context, c *Challenge, cs *ChangeSet) error
	Get(ctx context.Context, id uint) (*Challenge, error)
	Update(ctx context.Context, id uint, fn func(c *Challenge, cs *ChangeSet) error) (*Challenge, error)
	ListForPlayer(ctx context.Context, playerID string) ([]Summary, error)
	Match(ctx context.Context, challengeID uint) (*Match, error)
	Events(ctx context.Context, challengeID uint) ([]Event, error)
	DeleteForPlayer(ctx context.Context, playerID string) (int, error)
	Placeholders(ctx context.Context) ([]uint, error)
}
