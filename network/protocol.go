package network

import (
	"encoding/json"
	"errors"
)

// Inbound message types.
const (
	MsgCreateRoom            = "createRoom"
	MsgJoinAny               = "joinAny"
	MsgSetReady              = "setReady"
	MsgStartGame             = "startGame"
	MsgCharSelectSetColor    = "charSelectSetColor"
	MsgCharSelectSetLocked   = "charSelectSetLocked"
	MsgCharSelectStartBattle = "charSelectStartBattle"
	MsgPlaceBomb             = "placeBomb"
	MsgPlayerState           = "playerState"
)

// Outbound message types.
const (
	MsgRoomCreated       = "roomCreated"
	MsgRoomJoined        = "roomJoined"
	MsgRoomUpdate        = "roomUpdate"
	MsgGameStart         = "gameStart"
	MsgCharSelectState   = "charSelectState"
	MsgCharSelectDone    = "charSelectDone"
	MsgBombPlaced        = "bombPlaced"
	MsgPlayerStateUpdate = "playerStateUpdate"
)

var ErrMalformedEnvelope = errors.New("malformed envelope")

// Envelope is the wire frame for every message, in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ParseEnvelope decodes a raw frame. Frames that are not JSON or carry no
// type are reported as ErrMalformedEnvelope; the caller drops them and keeps
// the connection open.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrMalformedEnvelope
	}
	if env.Type == "" {
		return nil, ErrMalformedEnvelope
	}
	return &env, nil
}

// --- Inbound payloads ---
//
// The roomId carried by gameplay messages is parsed but never trusted; the
// session's server-side room binding is authoritative.

type SetColorRequest struct {
	RoomID     string `json:"roomId"`
	ColorIndex int    `json:"colorIndex"`
}

type SetLockedRequest struct {
	RoomID string `json:"roomId"`
	Locked bool   `json:"locked"`
}

type PlaceBombRequest struct {
	RoomID   string `json:"roomId"`
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	Strength int    `json:"strength"`
}

type PlayerStateRequest struct {
	RoomID    string  `json:"roomId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
}

// --- Outbound payloads ---

// PlayerView is the lobby-phase view of one player, in room order.
// The id field is the player's slot id.
type PlayerView struct {
	ID         int  `json:"id"`
	IsHost     bool `json:"isHost"`
	IsReady    bool `json:"isReady"`
	ColorIndex int  `json:"colorIndex"`
	CharLocked bool `json:"charLocked"`
}

type RoomCreatedPayload struct {
	RoomID   string       `json:"roomId"`
	PlayerID int          `json:"playerId"`
	Players  []PlayerView `json:"players"`
}

type RoomJoinedPayload struct {
	RoomID   string       `json:"roomId"`
	PlayerID int          `json:"playerId"`
	Players  []PlayerView `json:"players"`
}

type RoomUpdatePayload struct {
	RoomID  string       `json:"roomId"`
	Players []PlayerView `json:"players"`
}

// StartConfig carries the per-player loadout sent with gameStart. The color
// is not resolved yet at that point, so it is always null on the wire.
type StartConfig struct {
	ID    int  `json:"id"`
	Color *int `json:"color"`
}

type GameStartPayload struct {
	Configs []StartConfig `json:"configs"`
}

// CharSelectView is the character-select view of one player.
type CharSelectView struct {
	ID         int  `json:"id"`
	ColorIndex int  `json:"colorIndex"`
	Locked     bool `json:"locked"`
}

type CharSelectStatePayload struct {
	Players   []CharSelectView `json:"players"`
	AllLocked bool             `json:"allLocked"`
}

// BattleConfig is one player's resolved loadout sent with charSelectDone.
type BattleConfig struct {
	ID         int `json:"id"`
	ColorIndex int `json:"colorIndex"`
}

type CharSelectDonePayload struct {
	Configs []BattleConfig `json:"configs"`
}

type BombPlacedPayload struct {
	PlayerID int `json:"playerId"`
	Row      int `json:"row"`
	Column   int `json:"column"`
	Strength int `json:"strength"`
}

type PlayerStateUpdatePayload struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
}
