// Package catalog resolves picture identifiers to coordinates, place names and
// display links.
package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"campus-spot/internal/apperr"
	"campus-spot/internal/db"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Picture struct {
	ID          int         `json:"id"`
	Coordinates Coordinates `json:"coordinates"`
	Place       string      `json:"place"`
	Link        string      `json:"link"`
}

// Catalog is the picture collaborator. Picture identifiers run from 1 to Count.
type Catalog interface {
	Count(ctx context.Context) (int, error)
	Picture(ctx context.Context, id int) (Picture, error)
}

// GormCatalog reads the pictures table.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(conn *gorm.DB) *GormCatalog {
	return &GormCatalog{db: conn}
}

func (c *GormCatalog) Count(ctx context.Context) (int, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(&db.Picture{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (c *GormCatalog) Picture(ctx context.Context, id int) (Picture, error) {
	var record db.Picture
	err := c.db.WithContext(ctx).Where("pictureid = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Picture{}, apperr.NotFound("picture %d", id)
	}
	if err != nil {
		return Picture{}, err
	}
	pic := Picture{ID: record.PictureID, Place: record.Place, Link: record.Link}
	if len(record.Coordinates) >= 2 {
		pic.Coordinates = Coordinates{Lat: record.Coordinates[0], Lon: record.Coordinates[1]}
	}
	return pic, nil
}

// MemoryCatalog serves a fixed picture set.
type MemoryCatalog struct {
	mu       sync.RWMutex
	pictures map[int]Picture
}

func NewMemoryCatalog(pictures ...Picture) *MemoryCatalog {
	c := &MemoryCatalog{pictures: make(map[int]Picture, len(pictures))}
	for _, pic := range pictures {
		c.pictures[pic.ID] = pic
	}
	return c
}

func (c *MemoryCatalog) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pictures), nil
}

func (c *MemoryCatalog) Picture(ctx context.Context, id int) (Picture, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pic, ok := c.pictures[id]
	if !ok {
		return Picture{}, apperr.NotFound("picture %d", id)
	}
	return pic, nil
}

func (c *MemoryCatalog) IDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int, 0, len(c.pictures))
	for id := range c.pictures {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Upsert writes pictures keyed by identifier, replacing existing rows.
func (c *GormCatalog) Upsert(ctx context.Context, pictures ...Picture) (int, error) {
	if len(pictures) == 0 {
		return 0, nil
	}
	rows := make([]db.Picture, 0, len(pictures))
	for _, pic := range pictures {
		if pic.ID <= 0 {
			return 0, apperr.Invalid("picture id %d must be positive", pic.ID)
		}
		rows = append(rows, db.Picture{
			PictureID:   pic.ID,
			Coordinates: pq.Float64Array{pic.Coordinates.Lat, pic.Coordinates.Lon},
			Link:        pic.Link,
			Place:       pic.Place,
		})
	}
	result := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pictureid"}},
		DoUpdates: clause.AssignmentColumns([]string{"coordinates", "link", "place"}),
	}).Create(&rows)
	return int(result.RowsAffected), result.Error
}
