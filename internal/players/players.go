// Package players answers whether an identifier belongs to someone who has
// logged in before.
package players

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"campus-spot/internal/apperr"
	"campus-spot/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Directory interface {
	Exists(ctx context.Context, playerID string) (bool, error)
}

// GormDirectory is backed by the users table.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(conn *gorm.DB) *GormDirectory {
	return &GormDirectory{db: conn}
}

func (d *GormDirectory) Exists(ctx context.Context, playerID string) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&db.User{}).Where("username = ?", playerID).Count(&n).Error
	return n > 0, err
}

// Register records a player on login. Repeated calls are no-ops.
func (d *GormDirectory) Register(ctx context.Context, playerID string) error {
	record := db.User{Username: strings.TrimSpace(playerID)}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}

func (d *GormDirectory) List(ctx context.Context) ([]string, error) {
	var names []string
	err := d.db.WithContext(ctx).Model(&db.User{}).Order("username").Pluck("username", &names).Error
	return names, err
}

// AddPoints adds points to the player's total.
func (d *GormDirectory) AddPoints(ctx context.Context, playerID string, points int) error {
	result := d.db.WithContext(ctx).Model(&db.User{}).Where("username = ?", playerID).
		Update("points", gorm.Expr("points + ?", points))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("player %s", playerID)
	}
	return nil
}

func (d *GormDirectory) Points(ctx context.Context, playerID string) (int, error) {
	var user db.User
	err := d.db.WithContext(ctx).Where("username = ?", playerID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.NotFound("player %s", playerID)
	}
	return user.Points, err
}

// ResetPoints zeroes the player's total.
func (d *GormDirectory) ResetPoints(ctx context.Context, playerID string) error {
	result := d.db.WithContext(ctx).Model(&db.User{}).Where("username = ?", playerID).Update("points", 0)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("player %s", playerID)
	}
	return nil
}

type MemoryDirectory struct {
	mu     sync.RWMutex
	points map[string]int
}

func NewMemoryDirectory(ids ...string) *MemoryDirectory {
	d := &MemoryDirectory{points: make(map[string]int)}
	for _, id := range ids {
		d.points[id] = 0
	}
	return d
}

func (d *MemoryDirectory) Exists(ctx context.Context, playerID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.points[playerID]
	return ok, nil
}

func (d *MemoryDirectory) Register(ctx context.Context, playerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := strings.TrimSpace(playerID)
	if _, ok := d.points[id]; !ok {
		d.points[id] = 0
	}
	return nil
}

func (d *MemoryDirectory) List(ctx context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.points))
	for name := range d.points {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *MemoryDirectory) AddPoints(ctx context.Context, playerID string, points int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	total, ok := d.points[playerID]
	if !ok {
		return apperr.NotFound("player %s", playerID)
	}
	d.points[playerID] = total + points
	return nil
}

func (d *MemoryDirectory) Points(ctx context.Context, playerID string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	total, ok := d.points[playerID]
	if !ok {
		return 0, apperr.NotFound("player %s", playerID)
	}
	return total, nil
}

func (d *MemoryDirectory) ResetPoints(ctx context.Context, playerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.points[playerID]; !ok {
		return apperr.NotFound("player %s", playerID)
	}
	d.points[playerID] = 0
	return nil
}
