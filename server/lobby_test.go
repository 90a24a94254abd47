package server

import (
	"testing"

	"github.com/wfunc/bomberman/network"
)

func TestCreateRoomDistinctRooms(t *testing.T) {
	s := newTestServer()
	sess1, conn1 := newTestClient(s)
	sess2, conn2 := newTestClient(s)

	s.handleEnvelope(sess1, env(t, network.MsgCreateRoom, nil))
	s.handleEnvelope(sess2, env(t, network.MsgCreateRoom, nil))

	created1 := conn1.byType(network.MsgRoomCreated)
	created2 := conn2.byType(network.MsgRoomCreated)
	if len(created1) != 1 || len(created2) != 1 {
		t.Fatalf("Each creator should get exactly one roomCreated, got %d and %d", len(created1), len(created2))
	}

	p1 := created1[0].Payload.(network.RoomCreatedPayload)
	p2 := created2[0].Payload.(network.RoomCreatedPayload)

	if p1.RoomID == p2.RoomID {
		t.Errorf("Two createRoom requests should yield distinct rooms, both got %s", p1.RoomID)
	}
	for _, p := range []network.RoomCreatedPayload{p1, p2} {
		if p.PlayerID != 0 {
			t.Errorf("Creator should be slot 0, got %d", p.PlayerID)
		}
		if len(p.Players) != 1 {
			t.Fatalf("Creator should be the sole player, got %d", len(p.Players))
		}
		if !p.Players[0].IsHost {
			t.Error("Creator should be host")
		}
		if p.Players[0].IsReady {
			t.Error("Creator should not start ready")
		}
	}
}

func TestJoinAnySequence(t *testing.T) {
	s := newTestServer()
	sess1, conn1 := newTestClient(s)
	sess2, conn2 := newTestClient(s)
	sess3, conn3 := newTestClient(s)

	s.handleEnvelope(sess1, env(t, network.MsgJoinAny, nil))
	s.handleEnvelope(sess2, env(t, network.MsgJoinAny, nil))
	s.handleEnvelope(sess3, env(t, network.MsgJoinAny, nil))

	j1 := conn1.byType(network.MsgRoomJoined)[0].Payload.(network.RoomJoinedPayload)
	j2 := conn2.byType(network.MsgRoomJoined)[0].Payload.(network.RoomJoinedPayload)
	j3 := conn3.byType(network.MsgRoomJoined)[0].Payload.(network.RoomJoinedPayload)

	if j1.PlayerID != 0 || j2.PlayerID != 1 || j3.PlayerID != 2 {
		t.Errorf("Slot ids should be 0,1,2 in join order, got %d,%d,%d", j1.PlayerID, j2.PlayerID, j3.PlayerID)
	}
	if j1.RoomID != j2.RoomID || j2.RoomID != j3.RoomID {
		t.Error("Sequential joiners should land in the same room")
	}

	// The first joiner observed every membership change.
	updates := conn1.byType(network.MsgRoomUpdate)
	if len(updates) != 3 {
		t.Fatalf("First joiner should receive 3 roomUpdate broadcasts, got %d", len(updates))
	}
	for i, u := range updates {
		view := u.Payload.(network.RoomUpdatePayload)
		if len(view.Players) != i+1 {
			t.Errorf("roomUpdate %d should show %d players, got %d", i, i+1, len(view.Players))
		}
	}

	// Joiners were included in their own join broadcast.
	if conn3.count(network.MsgRoomUpdate) != 1 {
		t.Errorf("Third joiner should see 1 roomUpdate, got %d", conn3.count(network.MsgRoomUpdate))
	}
}

func TestJoinAnyOverflowsToNewRoom(t *testing.T) {
	s := newTestServer()

	var first string
	for i := 0; i < 5; i++ {
		sess, conn := newTestClient(s)
		s.handleEnvelope(sess, env(t, network.MsgJoinAny, nil))
		j := conn.byType(network.MsgRoomJoined)[0].Payload.(network.RoomJoinedPayload)
		if i == 0 {
			first = j.RoomID
		} else if j.RoomID != first {
			t.Fatalf("Joiner %d should fill the first room, got %s", i, j.RoomID)
		}
	}

	sess6, conn6 := newTestClient(s)
	s.handleEnvelope(sess6, env(t, network.MsgJoinAny, nil))
	j6 := conn6.byType(network.MsgRoomJoined)[0].Payload.(network.RoomJoinedPayload)

	if j6.RoomID == first {
		t.Error("Sixth joiner must not enter a full room")
	}
	if j6.PlayerID != 0 {
		t.Errorf("Sixth joiner should be slot 0 of a fresh room, got %d", j6.PlayerID)
	}
}

func TestSetReadyToggleBroadcast(t *testing.T) {
	s := newTestServer()
	sess1, conn1 := newTestClient(s)
	sess2, conn2 := newTestClient(s)

	s.handleEnvelope(sess1, env(t, network.MsgJoinAny, nil))
	s.handleEnvelope(sess2, env(t, network.MsgJoinAny, nil))

	s.handleEnvelope(sess2, env(t, network.MsgSetReady, map[string]interface{}{"roomId": sess2.RoomID}))

	updates := conn1.byType(network.MsgRoomUpdate)
	view := updates[len(updates)-1].Payload.(network.RoomUpdatePayload)
	if !view.Players[1].IsReady {
		t.Error("Player 1 should be ready after the first toggle")
	}
	if view.Players[0].IsReady {
		t.Error("Only the requester's own flag may change")
	}

	s.handleEnvelope(sess2, env(t, network.MsgSetReady, nil))
	updates = conn2.byType(network.MsgRoomUpdate)
	view = updates[len(updates)-1].Payload.(network.RoomUpdatePayload)
	if view.Players[1].IsReady {
		t.Error("Second toggle should flip the flag back")
	}
}

func TestSetReadyWithoutRoomIgnored(t *testing.T) {
	s := newTestServer()
	sess, conn := newTestClient(s)

	s.handleEnvelope(sess, env(t, network.MsgSetReady, nil))

	if len(conn.sent) != 0 {
		t.Errorf("setReady outside a room should be dropped, got %d messages", len(conn.sent))
	}
}

func TestStartGameHostOnly(t *testing.T) {
	s := newTestServer()
	sess1, conn1 := newTestClient(s)
	sess2, conn2 := newTestClient(s)

	s.handleEnvelope(sess1, env(t, network.MsgJoinAny, nil))
	s.handleEnvelope(sess2, env(t, network.MsgJoinAny, nil))

	// Non-host: silently dropped.
	s.handleEnvelope(sess2, env(t, network.MsgStartGame, nil))
	if conn1.count(network.MsgGameStart) != 0 || conn2.count(network.MsgGameStart) != 0 {
		t.Fatal("Non-host startGame must not emit gameStart")
	}

	// Host: every member gets one gameStart.
	s.handleEnvelope(sess1, env(t, network.MsgStartGame, nil))
	for _, conn := range []*mockConn{conn1, conn2} {
		starts := conn.byType(network.MsgGameStart)
		if len(starts) != 1 {
			t.Fatalf("Expected one gameStart, got %d", len(starts))
		}
		payload := starts[0].Payload.(network.GameStartPayload)
		if len(payload.Configs) != 2 {
			t.Fatalf("Expected 2 configs, got %d", len(payload.Configs))
		}
		for _, c := range payload.Configs {
			if c.Color != nil {
				t.Error("gameStart configs carry no resolved color")
			}
		}
	}
}
