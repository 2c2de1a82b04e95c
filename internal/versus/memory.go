package versus

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"campus-spot/internal/apperr"
)

// MemoryStore keeps challenges in process. Each challenge has its own lock so
// updates to different challenges never wait on each other.
type MemoryStore struct {
	mu         sync.Mutex
	nextID     uint
	nextEvent  uint
	challenges map[uint]*memoryEntry
	matches    map[uint]Match
	events     map[uint][]Event
}

type memoryEntry struct {
	mu        sync.Mutex
	challenge Challenge
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:     1,
		nextEvent:  1,
		challenges: make(map[uint]*memoryEntry),
		matches:    make(map[uint]Match),
		events:     make(map[uint][]Event),
	}
}

func (s *MemoryStore) Create(ctx context.Context, c *Challenge, cs *ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.openBetween(c.ChallengerID, c.ChallengeeID); ok {
		return &apperr.DuplicateChallengeError{ExistingID: existing}
	}
	c.ID = s.nextID
	s.nextID++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt
	s.challenges[c.ID] = &memoryEntry{challenge: *c}
	s.appendEvents(c.ID, cs)
	return nil
}

// openBetween must be called with s.mu held.
func (s *MemoryStore) openBetween(a, b string) (uint, bool) {
	found := uint(0)
	for id, entry := range s.challenges {
		c := entry.challenge
		if !c.Status.Open() {
			continue
		}
		pair := (c.ChallengerID == a && c.ChallengeeID == b) || (c.ChallengerID == b && c.ChallengeeID == a)
		if pair && (found == 0 || id < found) {
			found = id
		}
	}
	return found, found != 0
}

func (s *MemoryStore) Get(ctx context.Context, id uint) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.challenges[id]
	if !ok {
		return nil, apperr.NotFound("challenge %d", id)
	}
	c := entry.challenge
	return &c, nil
}

func (s *MemoryStore) Update(ctx context.Context, id uint, fn func(c *Challenge, cs *ChangeSet) error) (*Challenge, error) {
	s.mu.Lock()
	entry, ok := s.challenges[id]
	s.mu.Unlock()
	if !ok {
		return nil, apperr.NotFound("challenge %d", id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.challenge
	cs := &ChangeSet{}
	if err := fn(&working, cs); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, live := s.challenges[id]; !live {
		return nil, apperr.NotFound("challenge %d", id)
	}
	if pending := cs.Match(); pending != nil {
		if _, exists := s.matches[id]; exists {
			return nil, fmt.Errorf("%w: match for challenge %d already recorded", apperr.ErrInvalidState, id)
		}
		match := *pending
		match.ChallengeID = id
		s.matches[id] = match
	}
	entry.challenge = working
	s.appendEvents(id, cs)
	out := working
	return &out, nil
}

// appendEvents must be called with s.mu held.
func (s *MemoryStore) appendEvents(id uint, cs *ChangeSet) {
	if cs == nil {
		return
	}
	for _, event := range cs.Events() {
		event.ID = s.nextEvent
		s.nextEvent++
		event.ChallengeID = id
		if event.CreatedAt.IsZero() {
			event.CreatedAt = time.Now().UTC()
		}
		s.events[id] = append(s.events[id], event)
	}
}

func (s *MemoryStore) ListForPlayer(ctx context.Context, playerID string) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Summary, 0)
	for id, entry := range s.challenges {
		c := entry.challenge
		if c.ChallengerID != playerID && c.ChallengeeID != playerID {
			continue
		}
		winner := ""
		if match, ok := s.matches[id]; ok {
			winner = match.WinnerID
		}
		list = append(list, summarize(&c, winner))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *MemoryStore) Match(ctx context.Context, challengeID uint) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[challengeID]
	if !ok {
		return nil, apperr.NotFound("match for challenge %d", challengeID)
	}
	return &match, nil
}

// MatchCount is used by tests to check exactly-once completion.
func (s *MemoryStore) MatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

func (s *MemoryStore) Events(ctx context.Context, challengeID uint) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]Event, len(s.events[challengeID]))
	copy(events, s.events[challengeID])
	return events, nil
}

func (s *MemoryStore) DeleteForPlayer(ctx context.Context, playerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.challenges {
		c := entry.challenge
		if c.ChallengerID != playerID && c.ChallengeeID != playerID {
			continue
		}
		delete(s.challenges, id)
		delete(s.matches, id)
		delete(s.events, id)
		removed++
	}
	return removed, nil
}

func (s *MemoryStore) Placeholders(ctx context.Context) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for id, entry := range s.challenges {
		c := entry.challenge
		if c.Status == StatusPending || c.Status == StatusDeclined {
			continue
		}
		if !c.HasPictures() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
