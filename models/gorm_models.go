// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormMatch is the match archive row. Players holds the JSON-encoded
// []MatchPlayer.
type GormMatch struct {
	gorm.Model
	RoomID    string `gorm:"index;not null"`
	Players   string `gorm:"type:jsonb;not null"`
	StartedAt time.Time
	Duration  int `gorm:"default:0"` // seconds
}
