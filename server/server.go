package server

import (
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/bomberman/broadcast"
	"github.com/wfunc/bomberman/config"
	"github.com/wfunc/bomberman/logger"
	"github.com/wfunc/bomberman/monitor"
	"github.com/wfunc/bomberman/network"
	"github.com/wfunc/bomberman/persistence"
	"github.com/wfunc/bomberman/room"
	gameserver_rpc "github.com/wfunc/bomberman/rpc"
	"github.com/wfunc/bomberman/services"
	"github.com/wfunc/bomberman/session"
	"github.com/wfunc/bomberman/timer"
)

// GameServer is the room/session coordinator: it accepts websocket clients,
// dispatches their envelopes to the lobby, character-select and relay
// handlers, and owns the room registry.
type GameServer struct {
	addr           string
	rpcAddr        string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	matchService   *services.MatchService
	mon            *monitor.Monitor
	timers         *timer.Manager
	rpcServer      *gameserver_rpc.Server
	shutdownChan   chan struct{}
}

// NewGameServer wires the coordinator. db and mon may be nil: the match
// archive and metrics are optional collaborators.
func NewGameServer(cfg *config.Config, db persistence.Database, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		rpcAddr:        cfg.Server.RPCAddress,
		roomManager:    room.NewManager(cfg.Game.MaxPlayers, cfg.Game.PaletteSize),
		sessionManager: session.NewManager(),
		broadcaster:    broadcast.NewRoomBroadcaster(),
		mon:            mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	if db != nil {
		s.matchService = services.NewMatchService(db)
	}

	return s
}

func (s *GameServer) Start() error {
	if s.rpcAddr != "" {
		rpcServer, err := gameserver_rpc.NewServer(s.rpcAddr)
		if err != nil {
			return err
		}
		s.rpcServer = rpcServer
		rpc.Register(gameserver_rpc.NewOpsService(s.roomManager, s.sessionManager, s.matchService))
		go s.rpcServer.Start()
	}

	s.startPeriodicTasks()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
	if s.timers != nil {
		s.timers.Stop()
	}
}

func (s *GameServer) startPeriodicTasks() {
	s.timers = timer.NewManager()

	if s.mon != nil {
		s.timers.Schedule(5*time.Second, 5*time.Second, func() {
			s.mon.SetActiveRooms(s.roomManager.Count())
			s.mon.SetOnlinePlayers(s.sessionManager.Count())
		})
	}

	s.timers.Schedule(time.Minute, time.Minute, func() {
		logger.Log.Infof("coordinator: %d rooms, %d sessions",
			s.roomManager.Count(), s.sessionManager.Count())
	})
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)

	logger.Log.Infof("New connection from %s, client ID: %s", wsConn.RemoteAddr(), sess.ID)

	defer func() {
		logger.Log.Infof("Connection closed from %s, client ID: %s", wsConn.RemoteAddr(), sess.ID)
		s.handleDisconnect(sess)
		s.sessionManager.Remove(sess.ID)
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		env, err := wsConn.ReadEnvelope()
		if err != nil {
			if errors.Is(err, network.ErrMalformedEnvelope) {
				logger.Log.Debugf("dropped malformed envelope from client %s", sess.ID)
				continue
			}
			return
		}
		s.handleEnvelope(sess, env)
	}
}

func (s *GameServer) handleEnvelope(sess *session.Session, env *network.Envelope) {
	start := time.Now()
	if s.mon != nil {
		s.mon.IncMessagesReceived(env.Type)
	}

	switch env.Type {
	case network.MsgCreateRoom:
		s.handleCreateRoom(sess)
	case network.MsgJoinAny:
		s.handleJoinAny(sess)
	case network.MsgSetReady:
		s.handleSetReady(sess)
	case network.MsgStartGame:
		s.handleStartGame(sess)
	case network.MsgCharSelectSetColor:
		s.handleSetColor(sess, env.Payload)
	case network.MsgCharSelectSetLocked:
		s.handleSetLocked(sess, env.Payload)
	case network.MsgCharSelectStartBattle:
		s.handleStartBattle(sess)
	case network.MsgPlaceBomb:
		s.handlePlaceBomb(sess, env.Payload)
	case network.MsgPlayerState:
		s.handlePlayerState(sess, env.Payload)
	default:
		logger.Log.Debugf("unknown message type %q from client %s", env.Type, sess.ID)
	}

	if s.mon != nil {
		s.mon.ObserveMessageLatency(time.Since(start))
	}
}

// roomOf resolves the session's bound room. The roomId clients put in their
// payloads is never consulted; the server-side binding is authoritative.
func (s *GameServer) roomOf(sess *session.Session) *room.Room {
	if sess.RoomID == "" {
		return nil
	}
	r, ok := s.roomManager.Get(sess.RoomID)
	if !ok {
		return nil
	}
	return r
}

// handleDisconnect removes the player from its room. Emptied rooms are
// reaped; otherwise the new first player is promoted and the survivors get
// a roomUpdate. Mid-match peers get no notification; an absent player is
// observed only through the silence of its position updates.
func (s *GameServer) handleDisconnect(sess *session.Session) {
	r := s.roomOf(sess)
	if r == nil {
		return
	}

	r.Lock()
	remaining := r.RemovePlayer(sess.ID)
	status := r.Status
	var battleDuration time.Duration
	if remaining == 0 && status == room.StatusBattle {
		battleDuration = time.Since(r.BattleStartedAt)
	}
	if remaining > 0 {
		s.broadcaster.ToRoom(r, network.MsgRoomUpdate, network.RoomUpdatePayload{
			RoomID:  r.ID,
			Players: r.PlayersView(),
		})
	}
	r.Unlock()

	if remaining == 0 {
		s.roomManager.Remove(r.ID)
		logger.Log.Infof("room %s emptied and removed", r.ID)
		if status == room.StatusBattle {
			go s.matchService.RecordBattleFinished(r.ID, battleDuration)
		}
	}
}
