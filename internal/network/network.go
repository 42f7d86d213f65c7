package network

import (
	"errors"

	"github.com/siohaza/hyperio/internal/protocol"
)

var (
	ErrNotStarted      = errors.New("transport not started")
	ErrUnknownConn     = errors.New("unknown connection")
	ErrSendBufferFull  = errors.New("send buffer full")
	ErrTransportClosed = errors.New("transport closed")
)

type EventType int

const (
	EventTypeNone EventType = iota
	EventTypeConnect
	EventTypeDisconnect
	EventTypeReceive
)

func (t EventType) String() string {
	switch t {
	case EventTypeConnect:
		return "connect"
	case EventTypeDisconnect:
		return "disconnect"
	case EventTypeReceive:
		return "receive"
	default:
		return "none"
	}
}

// Event is one connection-level occurrence. ConnID is unique across every transport of a
// server, so it doubles as the player id. Addr is the remote host, set on connect.
type Event struct {
	Type   EventType
	ConnID string
	Addr   string
	Data   []byte
}

// Transport moves encoded frames between the simulation goroutine and remote clients. Poll,
// Send and Disconnect are only called from that goroutine.
type Transport interface {
	Name() string
	Codec() protocol.Codec
	Start() error
	Stop()

	// Poll returns the next pending event without blocking.
	Poll() (Event, bool)
	Send(connID string, data []byte) error
	Disconnect(connID string)
}
