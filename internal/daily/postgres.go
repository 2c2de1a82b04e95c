package daily

import (
	"context"
	"errors"
	"time"

	"campus-spot/internal/apperr"
	"campus-spot/internal/db"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps daily records in the daily_plays table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

func (s *GormStore) Insert(ctx context.Context, rec Record) (Record, bool, error) {
	row := toRow(rec)
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return Record{}, false, result.Error
	}
	if result.RowsAffected == 1 {
		return rec, true, nil
	}
	existing, err := s.Get(ctx, rec.Username)
	return existing, false, err
}

func (s *GormStore) Get(ctx context.Context, username string) (Record, error) {
	var row db.DailyPlay
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, apperr.NotFound("daily record for %s", username)
	}
	if err != nil {
		return Record{}, err
	}
	return fromRow(row), nil
}

func (s *GormStore) Update(ctx context.Context, username string, fn func(rec *Record) error) (Record, error) {
	var out Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row db.DailyPlay
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("username = ?", username).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("daily record for %s", username)
		}
		if err != nil {
			return err
		}
		rec := fromRow(row)
		if err := fn(&rec); err != nil {
			return err
		}
		rec.Username = username
		updated := toRow(rec)
		if err := tx.Save(&updated).Error; err != nil {
			return err
		}
		out = rec
		return nil
	})
	return out, err
}

func (s *GormStore) ResetAll(ctx context.Context, clearStreaks bool) (int, error) {
	fields := map[string]any{
		"played":   false,
		"points":   0,
		"distance": 0,
	}
	if clearStreaks {
		fields["last_played"] = nil
		fields["current_streak"] = 0
	}
	result := s.db.WithContext(ctx).Model(&db.DailyPlay{}).Where("1 = 1").Updates(fields)
	return int(result.RowsAffected), result.Error
}

func (s *GormStore) Delete(ctx context.Context, username string) (bool, error) {
	result := s.db.WithContext(ctx).Where("username = ?", username).Delete(&db.DailyPlay{})
	return result.RowsAffected > 0, result.Error
}

const standingsQuery = `
SELECT username, points,
       DENSE_RANK() OVER (ORDER BY points DESC, username ASC) AS rank
FROM daily_plays
WHERE last_played = ?::date
ORDER BY points DESC, username ASC`

func (s *GormStore) Standings(ctx context.Context, day time.Time, limit int) ([]Standing, error) {
	query := standingsQuery
	args := []any{DateKey(day)}
	if limit > 0 {
		query += "\nLIMIT ?"
		args = append(args, limit)
	}
	var list []Standing
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&list).Error; err != nil {
		return nil, err
	}
	if list == nil {
		list = []Standing{}
	}
	return list, nil
}

func (s *GormStore) Rank(ctx context.Context, day time.Time, username string) (int, error) {
	var ranks []int
	err := s.db.WithContext(ctx).
		Raw("SELECT rank FROM ("+standingsQuery+") ranked WHERE username = ?", DateKey(day), username).
		Scan(&ranks).Error
	if err != nil {
		return 0, err
	}
	if len(ranks) == 0 {
		return 0, apperr.NotFound("%s has not played on %s", username, DateKey(day))
	}
	return ranks[0], nil
}

func toRow(rec Record) db.DailyPlay {
	return db.DailyPlay{
		Username:      rec.Username,
		Points:        rec.Points,
		Distance:      rec.Distance,
		Played:        rec.Played,
		LastPlayed:    toDate(rec.LastPlayed),
		LastVersus:    toDate(rec.LastVersus),
		CurrentStreak: rec.CurrentStreak,
		FirstPlayed:   toDate(rec.FirstPlayed),
	}
}

func fromRow(row db.DailyPlay) Record {
	return Record{
		Username:      row.Username,
		Points:        row.Points,
		Distance:      row.Distance,
		Played:        row.Played,
		LastPlayed:    fromDate(row.LastPlayed),
		LastVersus:    fromDate(row.LastVersus),
		CurrentStreak: row.CurrentStreak,
		FirstPlayed:   fromDate(row.FirstPlayed),
	}
}

func toDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(*t)
	return &d
}

// fromDate normalizes driver values to midnight UTC of the stored date.
func fromDate(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	y, m, day := time.Time(*d).Date()
	t := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return &t
}
