package server

import (
	"github.com/wfunc/bomberman/logger"
	"github.com/wfunc/bomberman/network"
	"github.com/wfunc/bomberman/room"
	"github.com/wfunc/bomberman/session"
)

// Lobby phase: createRoom, joinAny, setReady, startGame.

func (s *GameServer) handleCreateRoom(sess *session.Session) {
	r := s.roomManager.CreateRoom()

	r.Lock()
	p, _ := r.AddPlayer(sess)
	payload := network.RoomCreatedPayload{
		RoomID:   r.ID,
		PlayerID: p.SlotID,
		Players:  r.PlayersView(),
	}
	if err := sess.Send(network.MsgRoomCreated, payload); err != nil {
		logger.Log.Debugf("drop roomCreated to client %s: %v", sess.ID, err)
	}
	r.Unlock()

	logger.Log.Infof("client %s created room %s", sess.ID, r.ID)
}

func (s *GameServer) handleJoinAny(sess *session.Session) {
	// First-fit with a recheck under the room lock: the candidate may fill
	// up or get reaped between the scan and the join.
	for {
		r := s.roomManager.FindJoinable()
		if r == nil {
			r = s.roomManager.CreateRoom()
		}

		r.Lock()
		if r.Closed() {
			r.Unlock()
			continue
		}
		p, ok := r.AddPlayer(sess)
		if !ok {
			r.Unlock()
			continue
		}

		view := r.PlayersView()
		if err := sess.Send(network.MsgRoomJoined, network.RoomJoinedPayload{
			RoomID:   r.ID,
			PlayerID: p.SlotID,
			Players:  view,
		}); err != nil {
			logger.Log.Debugf("drop roomJoined to client %s: %v", sess.ID, err)
		}
		s.broadcaster.ToRoom(r, network.MsgRoomUpdate, network.RoomUpdatePayload{
			RoomID:  r.ID,
			Players: view,
		})
		r.Unlock()

		logger.Log.Infof("client %s joined room %s as slot %d", sess.ID, r.ID, p.SlotID)
		return
	}
}

func (s *GameServer) handleSetReady(sess *session.Session) {
	r := s.roomOf(sess)
	if r == nil {
		return
	}

	r.Lock()
	defer r.Unlock()

	if !r.ToggleReady(sess.ID) {
		return
	}
	s.broadcaster.ToRoom(r, network.MsgRoomUpdate, network.RoomUpdatePayload{
		RoomID:  r.ID,
		Players: r.PlayersView(),
	})
}

func (s *GameServer) handleStartGame(sess *session.Session) {
	r := s.roomOf(sess)
	if r == nil {
		return
	}

	r.Lock()
	defer r.Unlock()

	configs, ok := r.StartConfigs(sess.ID)
	if !ok {
		logger.Log.Warnf("non-host client %s tried to start game in room %s", sess.ID, r.ID)
		return
	}

	r.Status = room.StatusCharSelect
	s.broadcaster.ToRoom(r, network.MsgGameStart, network.GameStartPayload{Configs: configs})
	logger.Log.Infof("room %s entering character select", r.ID)
}
