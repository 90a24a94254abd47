// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/bomberman/logger"
	"github.com/wfunc/bomberman/room"
)

// Broadcaster fans a message out to a room. The caller holds the room lock,
// so the member list cannot change under the fan-out and every recipient
// observes broadcasts in mutation order. Sends are enqueue-only and never
// block.
type Broadcaster interface {
	ToRoom(r *room.Room, msgType string, payload interface{})
	ToRoomExcept(r *room.Room, exceptClientID, msgType string, payload interface{})
}

type RoomBroadcaster struct{}

func NewRoomBroadcaster() *RoomBroadcaster {
	return &RoomBroadcaster{}
}

func (b *RoomBroadcaster) ToRoom(r *room.Room, msgType string, payload interface{}) {
	for _, p := range r.Players {
		if err := p.Session.Send(msgType, payload); err != nil {
			logger.Log.Debugf("drop %s to client %s in room %s: %v", msgType, p.ClientID, r.ID, err)
		}
	}
}

// ToRoomExcept is the relay variant: every member except the sender.
func (b *RoomBroadcaster) ToRoomExcept(r *room.Room, exceptClientID, msgType string, payload interface{}) {
	for _, p := range r.Players {
		if p.ClientID == exceptClientID {
			continue
		}
		if err := p.Session.Send(msgType, payload); err != nil {
			logger.Log.Debugf("drop %s to client %s in room %s: %v", msgType, p.ClientID, r.ID, err)
		}
	}
}
