package events

import (
	"github.com/siohaza/hyperio/internal/protocol"
)

// Event is one outbound message. An empty To broadcasts to every session.
type Event struct {
	To      string
	Type    protocol.MessageType
	Payload any
}

func (e Event) Broadcast() bool {
	return e.To == ""
}

func To(playerID string, t protocol.MessageType, payload any) Event {
	return Event{To: playerID, Type: t, Payload: payload}
}

func Broadcast(t protocol.MessageType, payload any) Event {
	return Event{Type: t, Payload: payload}
}

// Queue collects events produced by the simulation until the transport layer drains them.
type Queue struct {
	pending []Event
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(evs ...Event) {
	q.pending = append(q.pending, evs...)
}

func (q *Queue) Len() int {
	return len(q.pending)
}

func (q *Queue) Drain() []Event {
	out := q.pending
	q.pending = nil
	return out
}
