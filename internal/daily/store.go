package daily

import (
	"context"
	"sort"
	"sync"
	"time"

	"campus-spot/internal/apperr"
)

// Store persists daily records. Update is an atomic read-modify-write on one
// player's record.
type Store interface {
	Insert(ctx context.Context, rec Record) (Record, bool, error)
	Get(ctx context.Context, username string) (Record, error)
	Update(ctx context.Context, username string, fn func(rec *Record) error) (Record, error)
	ResetAll(ctx context.Context, clearStreaks bool) (int, error)
	Delete(ctx context.Context, username string) (bool, error)
	Standings(ctx context.Context, day time.Time, limit int) ([]Standing, error)
	Rank(ctx context.Context, day time.Time, username string) (int, error)
}

type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Insert(ctx context.Context, rec Record) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[rec.Username]; ok {
		return existing, false, nil
	}
	s.records[rec.Username] = rec
	return rec, true, nil
}

func (s *MemoryStore) Get(ctx context.Context, username string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[username]
	if !ok {
		return Record{}, apperr.NotFound("daily record for %s", username)
	}
	return rec, nil
}

func (s *MemoryStore) Update(ctx context.Context, username string, fn func(rec *Record) error) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[username]
	if !ok {
		return Record{}, apperr.NotFound("daily record for %s", username)
	}
	if err := fn(&rec); err != nil {
		return Record{}, err
	}
	rec.Username = username
	s.records[username] = rec
	return rec, nil
}

func (s *MemoryStore) ResetAll(ctx context.Context, clearStreaks bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, rec := range s.records {
		rec.Played = false
		rec.Points = 0
		rec.Distance = 0
		if clearStreaks {
			rec.LastPlayed = nil
			rec.CurrentStreak = 0
		}
		s.records[name] = rec
	}
	return len(s.records), nil
}

func (s *MemoryStore) Delete(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[username]
	delete(s.records, username)
	return ok, nil
}

func (s *MemoryStore) Standings(ctx context.Context, day time.Time, limit int) ([]Standing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Standing, 0)
	for _, rec := range s.records {
		if sameDay(rec.LastPlayed, day) {
			list = append(list, Standing{Username: rec.Username, Points: rec.Points})
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Points != list[j].Points {
			return list[i].Points > list[j].Points
		}
		return list[i].Username < list[j].Username
	})
	for i := range list {
		list[i].Rank = i + 1
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *MemoryStore) Rank(ctx context.Context, day time.Time, username string) (int, error) {
	list, err := s.Standings(ctx, day, 0)
	if err != nil {
		return 0, err
	}
	for _, standing := range list {
		if standing.Username == username {
			return standing.Rank, nil
		}
	}
	return 0, apperr.NotFound("%s has not played on %s", username, DateKey(day))
}
