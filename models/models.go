// models/models.go
package models

import (
	"time"
)

// MatchPlayer is one participant of an archived match.
type MatchPlayer struct {
	SlotID     int    `json:"slot_id"`
	ClientID   string `json:"client_id"`
	ColorIndex int    `json:"color_index"`
}

// MatchRecord is an archived battle. Rows are written when a battle starts
// and completed when the room dies; they are never read back to restore
// anything.
type MatchRecord struct {
	RoomID    string        `json:"room_id"`
	Players   []MatchPlayer `json:"players"`
	StartedAt time.Time     `json:"started_at"`
	Duration  int           `json:"duration"` // seconds, 0 until finished
}
