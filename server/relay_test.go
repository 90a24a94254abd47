package server

import (
	"testing"

	"github.com/wfunc/bomberman/network"
)

func TestPlaceBombRelayExcludesSender(t *testing.T) {
	s := newTestServer()
	sess1, conn1 := newTestClient(s)
	sess2, conn2 := newTestClient(s)
	sess3, conn3 := newTestClient(s)

	s.handleEnvelope(sess1, env(t, network.MsgJoinAny, nil))
	s.handleEnvelope(sess2, env(t, network.MsgJoinAny, nil))
	s.handleEnvelope(sess3, env(t, network.MsgJoinAny, nil))

	s.handleEnvelope(sess2, env(t, network.MsgPlaceBomb, map[string]interface{}{
		"roomId": sess2.RoomID, "row": 3, "column": 4, "strength": 2,
	}))

	if conn2.count(network.MsgBombPlaced) != 0 {
		t.Error("bombPlaced must not be echoed back to the placer")
	}

	for _, conn := range []*mockConn{conn1, conn3} {
		bombs := conn.byType(network.MsgBombPlaced)
		if len(bombs) != 1 {
			t.Fatalf("Expected one bombPlaced, got %d", len(bombs))
		}
		payload := bombs[0].Payload.(network.BombPlacedPayload)
		if payload.PlayerID != 1 {
			t.Errorf("Placer slot should be 1, got %d", payload.PlayerID)
		}
		if payload.Row != 3 || payload.Column != 4 || payload.Strength != 2 {
			t.Errorf("Bomb payload must be relayed verbatim, got %+v", payload)
		}
	}
}

func TestPlayerStateRelayAndCache(t *testing.T) {
	s := newTestServer()
	sess1, conn1 := newTestClient(s)
	sess2, conn2 := newTestClient(s)

	s.handleEnvelope(sess1, env(t, network.MsgJoinAny, nil))
	s.handleEnvelope(sess2, env(t, network.MsgJoinAny, nil))

	s.handleEnvelope(sess1, env(t, network.MsgPlayerState, map[string]interface{}{
		"x": 12.5, "y": 48.0, "direction": "left",
	}))

	if conn1.count(network.MsgPlayerStateUpdate) != 0 {
		t.Error("playerStateUpdate must not be echoed to the sender")
	}

	states := conn2.byType(network.MsgPlayerStateUpdate)
	if len(states) != 1 {
		t.Fatalf("Expected one playerStateUpdate, got %d", len(states))
	}
	payload := states[0].Payload.(network.PlayerStateUpdatePayload)
	if payload.ID != 0 || payload.X != 12.5 || payload.Y != 48.0 || payload.Direction != "left" {
		t.Errorf("Unexpected relayed state: %+v", payload)
	}

	// The latest position is cached on the player record.
	r, _ := s.roomManager.Get(sess1.RoomID)
	r.Lock()
	p := r.Players[0]
	if p.X != 12.5 || p.Y != 48.0 || p.Direction != "left" {
		t.Errorf("Position cache not updated: %+v", p)
	}
	r.Unlock()
}

func TestRelayWithoutRoomDropped(t *testing.T) {
	s := newTestServer()
	sess, conn := newTestClient(s)

	s.handleEnvelope(sess, env(t, network.MsgPlaceBomb, map[string]interface{}{
		"roomId": "1234", "row": 1, "column": 1, "strength": 1,
	}))
	s.handleEnvelope(sess, env(t, network.MsgPlayerState, map[string]interface{}{
		"x": 1.0, "y": 1.0, "direction": "up",
	}))

	if len(conn.sent) != 0 {
		t.Errorf("Gameplay messages from an unbound client must be dropped, got %d messages", len(conn.sent))
	}
}
