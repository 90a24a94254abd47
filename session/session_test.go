package session

import (
	"net"
	"testing"

	"github.com/wfunc/bomberman/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent int
}

func (m *MockConnection) Send(msgType string, payload interface{}) error {
	m.sent++
	return nil
}
func (m *MockConnection) ReadEnvelope() (*network.Envelope, error) { return nil, nil }
func (m *MockConnection) Close() error                             { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                     { return &net.TCPAddr{} }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrieved, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrieved != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}
	if _, exists = manager.Get(sessionID); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_Send(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("test_session", conn)
	before := sess.LastActive

	if err := sess.Send("roomUpdate", map[string]int{"x": 1}); err != nil {
		t.Fatalf("Send should not fail: %v", err)
	}
	if conn.sent != 1 {
		t.Errorf("Expected 1 message through the connection, got %d", conn.sent)
	}
	if sess.LastActive.Before(before) {
		t.Error("Send should refresh LastActive")
	}
}

func TestSession_StartsUnbound(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})
	if sess.RoomID != "" {
		t.Errorf("A fresh session must not be bound to a room, got %q", sess.RoomID)
	}
}
