package server

import (
	"encoding/json"
	"time"

	"github.com/wfunc/bomberman/logger"
	"github.com/wfunc/bomberman/models"
	"github.com/wfunc/bomberman/network"
	"github.com/wfunc/bomberman/room"
	"github.com/wfunc/bomberman/session"
)

// Character-select phase: charSelectSetColor, charSelectSetLocked,
// charSelectStartBattle. Color uniqueness is enforced only among locked
// players; unlocked players may transiently collide.

func (s *GameServer) handleSetColor(sess *session.Session, payload json.RawMessage) {
	var req network.SetColorRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	r := s.roomOf(sess)
	if r == nil {
		return
	}

	r.Lock()
	defer r.Unlock()

	if !r.SetColor(sess.ID, req.ColorIndex) {
		logger.Log.Debugf("color pick %d rejected for client %s in room %s", req.ColorIndex, sess.ID, r.ID)
		return
	}

	views, allLocked := r.CharSelectViews()
	s.broadcaster.ToRoom(r, network.MsgCharSelectState, network.CharSelectStatePayload{
		Players:   views,
		AllLocked: allLocked,
	})
}

func (s *GameServer) handleSetLocked(sess *session.Session, payload json.RawMessage) {
	var req network.SetLockedRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	r := s.roomOf(sess)
	if r == nil {
		return
	}

	r.Lock()
	defer r.Unlock()

	if !r.SetLocked(sess.ID, req.Locked) {
		return
	}

	// Broadcast even when the value did not change.
	views, allLocked := r.CharSelectViews()
	s.broadcaster.ToRoom(r, network.MsgCharSelectState, network.CharSelectStatePayload{
		Players:   views,
		AllLocked: allLocked,
	})
}

func (s *GameServer) handleStartBattle(sess *session.Session) {
	r := s.roomOf(sess)
	if r == nil {
		return
	}

	r.Lock()
	configs, ok := r.BattleConfigs(sess.ID)
	if !ok {
		r.Unlock()
		logger.Log.Debugf("startBattle rejected for client %s in room %s", sess.ID, r.ID)
		return
	}

	r.Status = room.StatusBattle
	r.BattleStartedAt = time.Now()

	archived := make([]models.MatchPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		archived = append(archived, models.MatchPlayer{
			SlotID:     p.SlotID,
			ClientID:   p.ClientID,
			ColorIndex: p.ColorIndex,
		})
	}

	s.broadcaster.ToRoom(r, network.MsgCharSelectDone, network.CharSelectDonePayload{Configs: configs})
	roomID := r.ID
	r.Unlock()

	logger.Log.Infof("room %s entering battle", roomID)
	go s.matchService.RecordBattleStarted(roomID, archived)
}
