package versus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"campus-spot/internal/apperr"
	"campus-spot/internal/db"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps challenges in Postgres. Updates lock the challenge row with
// SELECT ... FOR UPDATE for the length of the transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

var openStatuses = []string{string(StatusPending), string(StatusAccepted)}

func pairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return "challenge:" + strings.Join(pair, "|")
}

func (s *GormStore) Create(ctx context.Context, c *Challenge, cs *ChangeSet) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes creation for the unordered pair until commit.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", pairKey(c.ChallengerID, c.ChallengeeID)).Error; err != nil {
			return err
		}
		var existing db.Challenge
		err := tx.Where(
			"((challenger_id = ? AND challengee_id = ?) OR (challenger_id = ? AND challengee_id = ?)) AND status IN ?",
			c.ChallengerID, c.ChallengeeID, c.ChallengeeID, c.ChallengerID, openStatuses,
		).Order("id").First(&existing).Error
		if err == nil {
			return &apperr.DuplicateChallengeError{ExistingID: existing.ID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		record := toRecord(c)
		record.ID = 0
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		c.ID = record.ID
		c.CreatedAt = record.CreatedAt
		c.UpdatedAt = record.UpdatedAt
		return writeEvents(tx, c.ID, cs)
	})
}

func (s *GormStore) Get(ctx context.Context, id uint) (*Challenge, error) {
	var record db.Challenge
	err := s.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("challenge %d", id)
	}
	if err != nil {
		return nil, err
	}
	c := fromRecord(record)
	return &c, nil
}

func (s *GormStore) Update(ctx context.Context, id uint, fn func(c *Challenge, cs *ChangeSet) error) (*Challenge, error) {
	var out Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record db.Challenge
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("challenge %d", id)
		}
		if err != nil {
			return err
		}

		working := fromRecord(record)
		cs := &ChangeSet{}
		if err := fn(&working, cs); err != nil {
			return err
		}

		updated := toRecord(&working)
		updated.ID = record.ID
		updated.CreatedAt = record.CreatedAt
		if err := tx.Save(&updated).Error; err != nil {
			return err
		}
		if pending := cs.Match(); pending != nil {
			match := db.Match{
				ID:              pending.ID,
				ChallengeID:     id,
				WinnerID:        pending.WinnerID,
				ChallengerScore: pending.ChallengerScore,
				ChallengeeScore: pending.ChallengeeScore,
				CreatedAt:       pending.CreatedAt,
			}
			if err := tx.Create(&match).Error; err != nil {
				if db.IsUniqueViolation(err) {
					return fmt.Errorf("%w: match for challenge %d already recorded", apperr.ErrInvalidState, id)
				}
				return err
			}
		}
		if err := writeEvents(tx, id, cs); err != nil {
			return err
		}
		out = fromRecord(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func writeEvents(tx *gorm.DB, challengeID uint, cs *ChangeSet) error {
	if cs == nil {
		return nil
	}
	for _, event := range cs.Events() {
		payload := event.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		record := db.ChallengeEvent{
			ChallengeID: challengeID,
			Type:        event.Type,
			Payload:     datatypes.JSON(data),
		}
		if event.PlayerID != "" {
			player := event.PlayerID
			record.PlayerID = &player
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) ListForPlayer(ctx context.Context, playerID string) ([]Summary, error) {
	conn := s.db.WithContext(ctx)
	var records []db.Challenge
	if err := conn.Where("challenger_id = ? OR challengee_id = ?", playerID, playerID).
		Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	winners := make(map[uint]string)
	if len(ids) > 0 {
		var matches []db.Match
		if err := conn.Where("challenge_id IN ?", ids).Find(&matches).Error; err != nil {
			return nil, err
		}
		for _, match := range matches {
			winners[match.ChallengeID] = match.WinnerID
		}
	}
	list := make([]Summary, 0, len(records))
	for _, record := range records {
		c := fromRecord(record)
		list = append(list, summarize(&c, winners[c.ID]))
	}
	return list, nil
}

func (s *GormStore) Match(ctx context.Context, challengeID uint) (*Match, error) {
	var record db.Match
	err := s.db.WithContext(ctx).Where("challenge_id = ?", challengeID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("match for challenge %d", challengeID)
	}
	if err != nil {
		return nil, err
	}
	return &Match{
		ID:              record.ID,
		ChallengeID:     record.ChallengeID,
		WinnerID:        record.WinnerID,
		ChallengerScore: record.ChallengerScore,
		ChallengeeScore: record.ChallengeeScore,
		CreatedAt:       record.CreatedAt,
	}, nil
}

func (s *GormStore) Events(ctx context.Context, challengeID uint) ([]Event, error) {
	var records []db.ChallengeEvent
	if err := s.db.WithContext(ctx).Where("challenge_id = ?", challengeID).
		Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(records))
	for _, record := range records {
		event := Event{
			ID:          record.ID,
			ChallengeID: record.ChallengeID,
			Type:        record.Type,
			CreatedAt:   record.CreatedAt,
		}
		if record.PlayerID != nil {
			event.PlayerID = *record.PlayerID
		}
		if len(record.Payload) > 0 {
			if err := json.Unmarshal(record.Payload, &event.Payload); err != nil {
				return nil, err
			}
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *GormStore) DeleteForPlayer(ctx context.Context, playerID string) (int, error) {
	removed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&db.Challenge{}).
			Where("challenger_id = ? OR challengee_id = ?", playerID, playerID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("challenge_id IN ?", ids).Delete(&db.Match{}).Error; err != nil {
			return err
		}
		if err := tx.Where("challenge_id IN ?", ids).Delete(&db.ChallengeEvent{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&db.Challenge{})
		if result.Error != nil {
			return result.Error
		}
		removed = int(result.RowsAffected)
		return nil
	})
	return removed, err
}

func (s *GormStore) Placeholders(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&db.Challenge{}).
		Where("status IN ? AND (cardinality(versus_list) < ? OR 0 = ANY(versus_list))",
			[]string{string(StatusAccepted), string(StatusCompleted)}, Rounds).
		Order("id").Pluck("id", &ids).Error
	return ids, err
}

func toRecord(c *Challenge) db.Challenge {
	return db.Challenge{
		ID:                  c.ID,
		ChallengerID:        c.ChallengerID,
		ChallengeeID:        c.ChallengeeID,
		Status:              string(c.Status),
		VersusList:          intArray(c.Pictures),
		ChallengerBool:      boolArray(c.Challenger.Completed),
		ChallengeeBool:      boolArray(c.Challengee.Completed),
		ChallengerPicPoints: intArray(c.Challenger.Scores),
		ChallengeePicPoints: intArray(c.Challengee.Scores),
		ChallengerPoints:    c.Challenger.Points,
		ChallengeePoints:    c.Challengee.Points,
		ChallengerFinished:  c.Challenger.Finished,
		ChallengeeFinished:  c.Challengee.Finished,
		ChallengerStarted:   c.Challenger.Started,
		ChallengeeStarted:   c.Challengee.Started,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func fromRecord(record db.Challenge) Challenge {
	c := Challenge{
		ID:           record.ID,
		ChallengerID: record.ChallengerID,
		ChallengeeID: record.ChallengeeID,
		Status:       Status(record.Status),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	c.Pictures = fixedInts(record.VersusList)
	c.Challenger = Progress{
		Completed: fixedBools(record.ChallengerBool),
		Scores:    fixedInts(record.ChallengerPicPoints),
		Points:    record.ChallengerPoints,
		Finished:  record.ChallengerFinished,
		Started:   record.ChallengerStarted,
	}
	c.Challengee = Progress{
		Completed: fixedBools(record.ChallengeeBool),
		Scores:    fixedInts(record.ChallengeePicPoints),
		Points:    record.ChallengeePoints,
		Finished:  record.ChallengeeFinished,
		Started:   record.ChallengeeStarted,
	}
	return c
}

func intArray(values [Rounds]int) pq.Int64Array {
	out := make(pq.Int64Array, Rounds)
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}

func boolArray(values [Rounds]bool) pq.BoolArray {
	out := make(pq.BoolArray, Rounds)
	copy(out, values[:])
	return out
}

func fixedInts(values pq.Int64Array) [Rounds]int {
	var out [Rounds]int
	for i := 0; i < Rounds && i < len(values); i++ {
		out[i] = int(values[i])
	}
	return out
}

func fixedBools(values pq.BoolArray) [Rounds]bool {
	var out [Rounds]bool
	copy(out[:], values)
	return out
}
