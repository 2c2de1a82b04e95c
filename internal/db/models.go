package db

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type User struct {
	Username  string    `gorm:"primaryKey;size:255"`
	Points    int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Picture struct {
	PictureID   int             `gorm:"primaryKey;autoIncrement:false;column:pictureid"`
	Coordinates pq.Float64Array `gorm:"type:double precision[];not null"`
	Link        string          `gorm:"size:255;not null"`
	Place       string          `gorm:"size:255;not null"`
}

type Challenge struct {
	ID                  uint          `gorm:"primaryKey"`
	ChallengerID        string        `gorm:"size:255;not null;index"`
	ChallengeeID        string        `gorm:"size:255;not null;index"`
	Status              string        `gorm:"size:32;not null;index"`
	VersusList          pq.Int64Array `gorm:"type:integer[];not null"`
	ChallengerBool      pq.BoolArray  `gorm:"type:boolean[];not null"`
	ChallengeeBool      pq.BoolArray  `gorm:"type:boolean[];not null"`
	ChallengerPicPoints pq.Int64Array `gorm:"type:integer[];not null"`
	ChallengeePicPoints pq.Int64Array `gorm:"type:integer[];not null"`
	ChallengerPoints    int           `gorm:"not null;default:0"`
	ChallengeePoints    int           `gorm:"not null;default:0"`
	ChallengerFinished  bool          `gorm:"not null;default:false"`
	ChallengeeFinished  bool          `gorm:"not null;default:false"`
	ChallengerStarted   bool          `gorm:"not null;default:false"`
	ChallengeeStarted   bool          `gorm:"not null;default:false"`
	CreatedAt           time.Time     `gorm:"not null"`
	UpdatedAt           time.Time     `gorm:"not null"`
}

type Match struct {
	ID              string    `gorm:"primaryKey;type:uuid"`
	ChallengeID     uint      `gorm:"not null;uniqueIndex"`
	WinnerID        string    `gorm:"size:255;not null"`
	ChallengerScore int       `gorm:"not null"`
	ChallengeeScore int       `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

type ChallengeEvent struct {
	ID          uint           `gorm:"primaryKey"`
	ChallengeID uint           `gorm:"index;not null"`
	PlayerID    *string        `gorm:"size:255;index"`
	Type        string         `gorm:"size:64;not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time      `gorm:"not null"`
}

type DailyPlay struct {
	Username      string          `gorm:"primaryKey;size:255"`
	Points        int             `gorm:"not null;default:0"`
	Distance      int             `gorm:"not null;default:0"`
	Played        bool            `gorm:"not null;default:false"`
	LastPlayed    *datatypes.Date `gorm:"index"`
	LastVersus    *datatypes.Date
	CurrentStreak int             `gorm:"not null;default:0"`
	FirstPlayed   *datatypes.Date
}

func (DailyPlay) TableName() string {
	return "daily_plays"
}
