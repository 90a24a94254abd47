// network/connection.go
package network

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

const (
	sendQueueSize = 64
	writeTimeout  = 5 * time.Second
)

type Connection interface {
	Send(msgType string, payload interface{}) error
	ReadEnvelope() (*Envelope, error)
	Close() error
	RemoteAddr() net.Addr
}

// WSConnection wraps a websocket connection with a buffered outbound queue.
// Send never blocks the caller: a peer that stops reading fills its own
// queue and starts losing frames, but never stalls dispatch for others.
type WSConnection struct {
	conn      *websocket.Conn
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	c := &WSConnection{
		conn: conn,
		out:  make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	go c.writePump()
	return c
}

func (c *WSConnection) Send(msgType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.out <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// ReadEnvelope blocks for the next inbound frame. Malformed frames return
// ErrMalformedEnvelope; the caller should skip them and keep reading.
// There is deliberately no read deadline: a stalled peer is cleared only by
// its connection closing.
func (c *WSConnection) ReadEnvelope() (*Envelope, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return ParseEnvelope(data)
}

// writePump drains the outbound queue onto the socket.
func (c *WSConnection) writePump() {
	defer c.conn.Close()
	for {
		select {
		case frame := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *WSConnection) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
