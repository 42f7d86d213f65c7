package friendship

import (
	"fmt"
	"sort"

	"github.com/siohaza/hyperio/internal/events"
	"github.com/siohaza/hyperio/internal/protocol"
)

// Directory resolves display names of connected players.
type Directory interface {
	Name(id string) (string, bool)
}

type set map[string]struct{}

// Ledger is the undirected friendship graph plus pending requests keyed by receiver.
type Ledger struct {
	friends map[string]set
	pending map[string]set
}

func NewLedger() *Ledger {
	return &Ledger{
		friends: make(map[string]set),
		pending: make(map[string]set),
	}
}

func (l *Ledger) AddPlayer(id string) {
	if _, ok := l.friends[id]; !ok {
		l.friends[id] = make(set)
	}
	if _, ok := l.pending[id]; !ok {
		l.pending[id] = make(set)
	}
}

// RemovePlayer drops every edge and pending request touching id. It returns the ids of the
// former friends.
func (l *Ledger) RemovePlayer(id string) []string {
	former := l.Friends(id)
	for _, other := range former {
		delete(l.friends[other], id)
	}
	delete(l.friends, id)
	delete(l.pending, id)
	for _, senders := range l.pending {
		delete(senders, id)
	}
	return former
}

func (l *Ledger) AreFriends(a, b string) bool {
	_, ok := l.friends[a][b]
	return ok
}

func (l *Ledger) hasPending(receiver, sender string) bool {
	_, ok := l.pending[receiver][sender]
	return ok
}

func (l *Ledger) Friends(id string) []string {
	return sorted(l.friends[id])
}

// PendingRequests lists the senders waiting on id's answer.
func (l *Ledger) PendingRequests(id string) []string {
	return sorted(l.pending[id])
}

func (l *Ledger) SendFriendRequest(dir Directory, senderID, receiverID string) (bool, []events.Event) {
	if senderID == receiverID {
		return false, nil
	}
	senderName, ok := dir.Name(senderID)
	if !ok {
		return false, nil
	}
	receiverName, ok := dir.Name(receiverID)
	if !ok {
		return false, nil
	}
	if l.AreFriends(senderID, receiverID) || l.hasPending(receiverID, senderID) {
		return false, nil
	}

	add(l.pending, receiverID, senderID)

	return true, []events.Event{
		events.To(receiverID, protocol.MessageTypeFriendRequest, protocol.FriendRequest{
			SenderID:   senderID,
			SenderName: senderName,
			Message:    fmt.Sprintf("%s wants to be your friend!", senderName),
		}),
		events.To(senderID, protocol.MessageTypeFriendRequestSent, protocol.FriendRequestSent{
			ReceiverID:   receiverID,
			ReceiverName: receiverName,
		}),
	}
}

// RespondToFriendRequest consumes the pending request from senderID to receiverID.
func (l *Ledger) RespondToFriendRequest(dir Directory, receiverID, senderID string, accept bool) (bool, []events.Event) {
	if !l.hasPending(receiverID, senderID) {
		return false, nil
	}
	delete(l.pending[receiverID], senderID)

	receiverName := nameOr(dir, receiverID)
	senderName := nameOr(dir, senderID)

	if !accept {
		return true, []events.Event{
			events.To(senderID, protocol.MessageTypeFriendRequestDeclined, protocol.FriendRequestDeclined{
				ReceiverID:   receiverID,
				ReceiverName: receiverName,
				Message:      fmt.Sprintf("%s declined your friend request.", receiverName),
			}),
		}
	}

	// a crossed request in the other direction is settled by this acceptance
	delete(l.pending[senderID], receiverID)
	add(l.friends, receiverID, senderID)
	add(l.friends, senderID, receiverID)

	return true, []events.Event{
		events.To(receiverID, protocol.MessageTypeFriendshipEstablished, protocol.FriendshipEstablished{
			FriendID:   senderID,
			FriendName: senderName,
			Message:    fmt.Sprintf("You are now friends with %s!", senderName),
		}),
		events.To(senderID, protocol.MessageTypeFriendshipEstablished, protocol.FriendshipEstablished{
			FriendID:   receiverID,
			FriendName: receiverName,
			Message:    fmt.Sprintf("%s accepted your friend request!", receiverName),
		}),
	}
}

func (l *Ledger) BreakFriendship(dir Directory, playerID, friendID string) (bool, []events.Event) {
	if !l.AreFriends(playerID, friendID) {
		return false, nil
	}
	delete(l.friends[playerID], friendID)
	delete(l.friends[friendID], playerID)

	playerName, ok1 := dir.Name(playerID)
	friendName, ok2 := dir.Name(friendID)
	if !ok1 || !ok2 {
		return true, nil
	}

	return true, []events.Event{
		events.To(playerID, protocol.MessageTypeFriendshipBroken, protocol.FriendshipBroken{
			FriendID:   friendID,
			FriendName: friendName,
			Message:    fmt.Sprintf("You are no longer friends with %s.", friendName),
		}),
		events.To(friendID, protocol.MessageTypeFriendshipBroken, protocol.FriendshipBroken{
			FriendID:   playerID,
			FriendName: playerName,
			Message:    fmt.Sprintf("%s ended the friendship.", playerName),
		}),
	}
}

func add(m map[string]set, key, member string) {
	s, ok := m[key]
	if !ok {
		s = make(set)
		m[key] = s
	}
	s[member] = struct{}{}
}

func sorted(s set) []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func nameOr(dir Directory, id string) string {
	if name, ok := dir.Name(id); ok {
		return name
	}
	return id
}
