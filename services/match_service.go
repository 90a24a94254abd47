// services/match_service.go
package services

import (
	"time"

	"github.com/wfunc/bomberman/logger"
	"github.com/wfunc/bomberman/models"
	"github.com/wfunc/bomberman/persistence"
)

// MatchService archives battles. A nil service (no database configured) is
// valid and does nothing. Archive failures are logged and swallowed: the
// archive must never affect a live room.
type MatchService struct {
	db persistence.Database
}

func NewMatchService(db persistence.Database) *MatchService {
	return &MatchService{db: db}
}

func (s *MatchService) RecordBattleStarted(roomID string, players []models.MatchPlayer) {
	if s == nil {
		return
	}
	record := &models.MatchRecord{
		RoomID:    roomID,
		Players:   players,
		StartedAt: time.Now(),
	}
	if err := s.db.SaveMatch(record); err != nil {
		logger.Log.Errorf("failed to archive battle start for room %s: %v", roomID, err)
	}
}

func (s *MatchService) RecordBattleFinished(roomID string, duration time.Duration) {
	if s == nil {
		return
	}
	if err := s.db.FinishMatch(roomID, int(duration.Seconds())); err != nil {
		logger.Log.Errorf("failed to archive battle end for room %s: %v", roomID, err)
	}
}

func (s *MatchService) RecentMatches(limit int) ([]models.MatchRecord, error) {
	if s == nil {
		return nil, nil
	}
	return s.db.RecentMatches(limit)
}
