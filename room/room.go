// room/room.go
package room

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/wfunc/bomberman/network"
	"github.com/wfunc/bomberman/session"
)

const (
	DefaultMaxPlayers  = 5
	DefaultPaletteSize = 5
)

// Status is informational only: it feeds logs, metrics and the ops RPC.
// Message handling is never gated on it; clients that send out-of-phase
// messages get the same process-or-drop treatment either way.
type Status int

const (
	StatusLobby Status = iota
	StatusCharSelect
	StatusBattle
)

func (s Status) String() string {
	switch s {
	case StatusLobby:
		return "lobby"
	case StatusCharSelect:
		return "charSelect"
	case StatusBattle:
		return "battle"
	}
	return "unknown"
}

// Player is a room member. SlotID is the stable game-facing identity,
// assigned once at join time and never reassigned when others leave.
type Player struct {
	ClientID   string
	SlotID     int
	IsHost     bool
	IsReady    bool
	ColorIndex int
	CharLocked bool

	// Relay-only cache of the last playerState message. Not used for any
	// server-side decision.
	X         float64
	Y         float64
	Direction string

	Session *session.Session
}

// Room is a bounded party of players. All methods except Lock/Unlock assume
// the caller holds the room lock for the duration of one inbound message,
// including the broadcasts it triggers; that is what serializes mutation and
// keeps broadcast order consistent with mutation order.
type Room struct {
	sync.Mutex

	ID          string
	Players     []*Player
	MaxPlayers  int
	PaletteSize int
	CreatedAt   time.Time

	Status          Status
	BattleStartedAt time.Time

	closed bool
}

func NewRoom(id string, maxPlayers, paletteSize int) *Room {
	return &Room{
		ID:          id,
		Players:     make([]*Player, 0, maxPlayers),
		MaxPlayers:  maxPlayers,
		PaletteSize: paletteSize,
		CreatedAt:   time.Now(),
		Status:      StatusLobby,
	}
}

func (r *Room) Len() int {
	return len(r.Players)
}

// Closed reports whether the registry has already reaped this room.
func (r *Room) Closed() bool {
	return r.closed
}

func (r *Room) findPlayer(clientID string) *Player {
	for _, p := range r.Players {
		if p.ClientID == clientID {
			return p
		}
	}
	return nil
}

// AddPlayer appends the session's player at the next slot. The slot id is
// the player count at the moment of joining; the first player is host and
// the initial color follows the slot.
func (r *Room) AddPlayer(sess *session.Session) (*Player, bool) {
	if len(r.Players) >= r.MaxPlayers {
		return nil, false
	}

	p := &Player{
		ClientID:   sess.ID,
		SlotID:     len(r.Players),
		IsHost:     len(r.Players) == 0,
		ColorIndex: len(r.Players),
		Session:    sess,
	}
	r.Players = append(r.Players, p)
	sess.RoomID = r.ID
	return p, true
}

// RemovePlayer drops the player and unconditionally promotes the new first
// player to host. Returns the remaining player count; survivors keep their
// slot ids.
func (r *Room) RemovePlayer(clientID string) int {
	for i, p := range r.Players {
		if p.ClientID == clientID {
			p.Session.RoomID = ""
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	if len(r.Players) > 0 {
		r.Players[0].IsHost = true
	}
	return len(r.Players)
}

// IsHostClient reports whether the client is the current host (players[0]).
func (r *Room) IsHostClient(clientID string) bool {
	return len(r.Players) > 0 && r.Players[0].ClientID == clientID
}

// ToggleReady flips the player's ready flag. Returns false if the client is
// not a member.
func (r *Room) ToggleReady(clientID string) bool {
	p := r.findPlayer(clientID)
	if p == nil {
		return false
	}
	p.IsReady = !p.IsReady
	return true
}

// SetColor applies a color pick. Rejected if the player is unknown or
// locked, the index falls outside the palette, or any locked player already
// holds the color. Unlocked players may transiently collide.
func (r *Room) SetColor(clientID string, colorIndex int) bool {
	p := r.findPlayer(clientID)
	if p == nil || p.CharLocked {
		return false
	}
	if colorIndex < 0 || colorIndex >= r.PaletteSize {
		return false
	}
	for _, other := range r.Players {
		if other.CharLocked && other.ColorIndex == colorIndex {
			return false
		}
	}
	p.ColorIndex = colorIndex
	return true
}

// SetLocked sets the lock flag to the carried value; both locking and
// unlocking go through here. Returns false only if the client is unknown.
func (r *Room) SetLocked(clientID string, locked bool) bool {
	p := r.findPlayer(clientID)
	if p == nil {
		return false
	}
	p.CharLocked = locked
	return true
}

func (r *Room) AllLocked() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.CharLocked {
			return false
		}
	}
	return true
}

// UpdatePosition caches the latest relayed position on the sender's player
// record. Returns the sender's slot id.
func (r *Room) UpdatePosition(clientID string, x, y float64, direction string) (int, bool) {
	p := r.findPlayer(clientID)
	if p == nil {
		return 0, false
	}
	p.X = x
	p.Y = y
	p.Direction = direction
	return p.SlotID, true
}

// SlotOf resolves a client to its slot id.
func (r *Room) SlotOf(clientID string) (int, bool) {
	p := r.findPlayer(clientID)
	if p == nil {
		return 0, false
	}
	return p.SlotID, true
}

// PlayersView builds the lobby view broadcast with every roomUpdate, in
// room order.
func (r *Room) PlayersView() []network.PlayerView {
	view := make([]network.PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		view = append(view, network.PlayerView{
			ID:         p.SlotID,
			IsHost:     p.IsHost,
			IsReady:    p.IsReady,
			ColorIndex: p.ColorIndex,
			CharLocked: p.CharLocked,
		})
	}
	return view
}

// CharSelectViews builds the aggregate character-select state plus the
// room-wide allLocked flag.
func (r *Room) CharSelectViews() ([]network.CharSelectView, bool) {
	view := make([]network.CharSelectView, 0, len(r.Players))
	for _, p := range r.Players {
		view = append(view, network.CharSelectView{
			ID:         p.SlotID,
			ColorIndex: p.ColorIndex,
			Locked:     p.CharLocked,
		})
	}
	return view, r.AllLocked()
}

// StartConfigs builds the gameStart payload. Host-only; colors are not
// resolved at this point so every config carries a null color.
func (r *Room) StartConfigs(clientID string) ([]network.StartConfig, bool) {
	if !r.IsHostClient(clientID) {
		return nil, false
	}
	configs := make([]network.StartConfig, 0, len(r.Players))
	for _, p := range r.Players {
		configs = append(configs, network.StartConfig{ID: p.SlotID})
	}
	return configs, true
}

// BattleConfigs builds the charSelectDone payload. Host-only, and only once
// every player in the room has locked a color.
func (r *Room) BattleConfigs(clientID string) ([]network.BattleConfig, bool) {
	if !r.IsHostClient(clientID) {
		return nil, false
	}
	if !r.AllLocked() {
		return nil, false
	}
	configs := make([]network.BattleConfig, 0, len(r.Players))
	for _, p := range r.Players {
		configs = append(configs, network.BattleConfig{ID: p.SlotID, ColorIndex: p.ColorIndex})
	}
	return configs, true
}

// Info is the read-only summary used by logs and the ops RPC.
type Info struct {
	RoomID    string    `json:"room_id"`
	Players   int       `json:"players"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Room) Info() Info {
	return Info{
		RoomID:    r.ID,
		Players:   len(r.Players),
		Status:    r.Status.String(),
		CreatedAt: r.CreatedAt,
	}
}

// --- Registry ---

// Manager is the process-wide registry of live rooms. It owns the set of
// rooms; each room owns its player list. Lock ordering: the manager lock
// may be held while taking a room lock, never the reverse.
type Manager struct {
	rooms       map[string]*Room
	order       []string // creation order, for first-fit scans
	maxPlayers  int
	paletteSize int
	mutex       sync.RWMutex
}

func NewManager(maxPlayers, paletteSize int) *Manager {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if paletteSize <= 0 {
		paletteSize = DefaultPaletteSize
	}
	return &Manager{
		rooms:       make(map[string]*Room),
		maxPlayers:  maxPlayers,
		paletteSize: paletteSize,
	}
}

// generateID draws a 4-digit room id, redrawing while it collides with a
// live room. Caller holds the manager lock.
func (m *Manager) generateID() string {
	for {
		id := strconv.Itoa(1000 + rand.Intn(9000))
		if _, exists := m.rooms[id]; !exists {
			return id
		}
	}
}

// CreateRoom allocates a fresh empty room and registers it.
func (m *Manager) CreateRoom() *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	id := m.generateID()
	room := NewRoom(id, m.maxPlayers, m.paletteSize)
	m.rooms[id] = room
	m.order = append(m.order, id)
	return room
}

// FindJoinable returns the first room, in creation order, with a free slot.
// Pure first-fit, no load balancing. The result is only a candidate: the
// joiner must recheck capacity under the room lock.
func (m *Manager) FindJoinable() *Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, id := range m.order {
		r := m.rooms[id]
		r.Lock()
		free := !r.closed && len(r.Players) < r.MaxPlayers
		r.Unlock()
		if free {
			return r
		}
	}
	return nil
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[id]
	return room, exists
}

// Remove reaps the room if its player list is still empty. The emptiness
// recheck under both locks closes the race against a client joining between
// the last departure and the reap.
func (m *Manager) Remove(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[id]
	if !exists {
		return
	}

	room.Lock()
	empty := len(room.Players) == 0
	if empty {
		room.closed = true
	}
	room.Unlock()

	if !empty {
		return
	}

	delete(m.rooms, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Snapshot returns a summary of every live room, in creation order.
func (m *Manager) Snapshot() []Info {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	infos := make([]Info, 0, len(m.order))
	for _, id := range m.order {
		r := m.rooms[id]
		r.Lock()
		infos = append(infos, r.Info())
		r.Unlock()
	}
	return infos
}
