package server

import (
	"encoding/json"

	"github.com/wfunc/bomberman/network"
	"github.com/wfunc/bomberman/session"
)

// Match relay: placeBomb and playerState are fire-and-forget,
// sender-excluded broadcasts. No validation of coordinates, cooldowns or
// plausibility; the coordinator is not authoritative for in-match state.

func (s *GameServer) handlePlaceBomb(sess *session.Session, payload json.RawMessage) {
	var req network.PlaceBombRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	r := s.roomOf(sess)
	if r == nil {
		return
	}

	r.Lock()
	defer r.Unlock()

	slot, ok := r.SlotOf(sess.ID)
	if !ok {
		return
	}

	s.broadcaster.ToRoomExcept(r, sess.ID, network.MsgBombPlaced, network.BombPlacedPayload{
		PlayerID: slot,
		Row:      req.Row,
		Column:   req.Column,
		Strength: req.Strength,
	})
}

func (s *GameServer) handlePlayerState(sess *session.Session, payload json.RawMessage) {
	var req network.PlayerStateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	r := s.roomOf(sess)
	if r == nil {
		return
	}

	r.Lock()
	defer r.Unlock()

	slot, ok := r.UpdatePosition(sess.ID, req.X, req.Y, req.Direction)
	if !ok {
		return
	}

	s.broadcaster.ToRoomExcept(r, sess.ID, network.MsgPlayerStateUpdate, network.PlayerStateUpdatePayload{
		ID:        slot,
		X:         req.X,
		Y:         req.Y,
		Direction: req.Direction,
	})
}
