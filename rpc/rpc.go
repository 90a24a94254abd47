package rpc

import (
	"fmt"
	"net"
	"net/rpc"

	"github.com/wfunc/bomberman/logger"
	"github.com/wfunc/bomberman/models"
	"github.com/wfunc/bomberman/network"
	"github.com/wfunc/bomberman/room"
	"github.com/wfunc/bomberman/services"
	"github.com/wfunc/bomberman/session"
)

// Server manages the RPC listener for the ops surface.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// OpsService exposes read-only coordinator state over net/rpc.
type OpsService struct {
	rooms    *room.Manager
	sessions *session.Manager
	matches  *services.MatchService
}

func NewOpsService(rooms *room.Manager, sessions *session.Manager, matches *services.MatchService) *OpsService {
	return &OpsService{rooms: rooms, sessions: sessions, matches: matches}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms    []room.Info
	Sessions int
}

func (o *OpsService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = o.rooms.Snapshot()
	reply.Sessions = o.sessions.Count()
	return nil
}

type GetRoomArgs struct {
	RoomID string
}

type GetRoomReply struct {
	Info    room.Info
	Players []network.PlayerView
}

func (o *OpsService) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	r, ok := o.rooms.Get(args.RoomID)
	if !ok {
		return fmt.Errorf("room %s not found", args.RoomID)
	}

	r.Lock()
	reply.Info = r.Info()
	reply.Players = r.PlayersView()
	r.Unlock()
	return nil
}

type RecentMatchesArgs struct {
	Limit int
}

type RecentMatchesReply struct {
	Matches []models.MatchRecord
}

func (o *OpsService) RecentMatches(args *RecentMatchesArgs, reply *RecentMatchesReply) error {
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	matches, err := o.matches.RecentMatches(limit)
	if err != nil {
		return err
	}
	reply.Matches = matches
	return nil
}
