// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/bomberman/models"
)

// Database is the match archive. Write-behind only: nothing in the
// coordinator ever reads a row to make a decision, so a lost write costs a
// history entry, never a room.
type Database interface {
	SaveMatch(record *models.MatchRecord) error
	FinishMatch(roomID string, durationSeconds int) error
	RecentMatches(limit int) ([]models.MatchRecord, error)
	Close() error
}

var ErrRecordNotFound = errors.New("record not found")
