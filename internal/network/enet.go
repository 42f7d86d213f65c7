package network

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/codecat/go-enet"

	"github.com/siohaza/hyperio/internal/protocol"
)

// ENet serves native clients over UDP with msgpack frames. The host is serviced from Poll, so
// it lives entirely on the simulation goroutine.
type ENet struct {
	host     enet.Host
	port     uint16
	maxPeers int
	codec    protocol.Codec
	logger   *slog.Logger

	peers  map[string]enet.Peer
	ids    map[enet.Peer]string
	nextID uint64
}

func NewENet(port int, maxPeers int, logger *slog.Logger) *ENet {
	if logger == nil {
		logger = slog.Default()
	}

	return &ENet{
		port:     uint16(port),
		maxPeers: maxPeers,
		codec:    protocol.MsgpackCodec{},
		logger:   logger,
		peers:    make(map[string]enet.Peer),
		ids:      make(map[enet.Peer]string),
	}
}

func (t *ENet) Name() string {
	return "enet"
}

func (t *ENet) Codec() protocol.Codec {
	return t.codec
}

func (t *ENet) Start() error {
	enet.Initialize()

	address := enet.NewListenAddress(t.port)

	var err error
	t.host, err = enet.NewHost(address, uint64(t.maxPeers), 1, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to create ENet host: %w", err)
	}

	if err := t.host.CompressWithRangeCoder(); err != nil {
		return fmt.Errorf("failed to setup range coder compression: %w", err)
	}

	t.logger.Info("enet transport started", "port", t.port, "max_peers", t.maxPeers)
	return nil
}

func (t *ENet) Stop() {
	if t.host == nil {
		return
	}
	for _, peer := range t.peers {
		peer.DisconnectNow(0)
	}
	t.host.Destroy()
	t.host = nil
	enet.Deinitialize()
	t.logger.Info("enet transport stopped")
}

// Poll services the host until it yields an event for a known peer or runs dry.
func (t *ENet) Poll() (Event, bool) {
	if t.host == nil {
		return Event{}, false
	}

	for {
		ev := t.host.Service(0)
		if ev == nil || ev.GetType() == enet.EventNone {
			return Event{}, false
		}
		if out, ok := t.translate(ev); ok {
			return out, true
		}
	}
}

func (t *ENet) translate(ev enet.Event) (Event, bool) {
	peer := ev.GetPeer()

	switch ev.GetType() {
	case enet.EventConnect:
		t.nextID++
		id := "enet-" + strconv.FormatUint(t.nextID, 10)
		t.peers[id] = peer
		t.ids[peer] = id
		addr := peer.GetAddress().String()
		t.logger.Debug("peer connected", "conn", id, "peer", addr)
		return Event{Type: EventTypeConnect, ConnID: id, Addr: addr}, true

	case enet.EventDisconnect:
		id, ok := t.ids[peer]
		if !ok {
			return Event{}, false
		}
		delete(t.ids, peer)
		delete(t.peers, id)
		t.logger.Debug("peer disconnected", "conn", id, "peer", peer.GetAddress())
		return Event{Type: EventTypeDisconnect, ConnID: id}, true

	case enet.EventReceive:
		packet := ev.GetPacket()
		if packet == nil {
			return Event{}, false
		}
		data := packet.GetData()
		packet.Destroy()

		id, ok := t.ids[peer]
		if !ok {
			return Event{}, false
		}
		return Event{Type: EventTypeReceive, ConnID: id, Data: data}, true
	}

	return Event{}, false
}

func (t *ENet) Send(connID string, data []byte) error {
	if t.host == nil {
		return ErrNotStarted
	}

	peer, ok := t.peers[connID]
	if !ok {
		return ErrUnknownConn
	}

	packet, err := enet.NewPacket(data, enet.PacketFlagReliable)
	if err != nil {
		return fmt.Errorf("failed to create packet: %w", err)
	}

	if err := peer.SendPacket(packet, 0); err != nil {
		return fmt.Errorf("failed to send packet: %w", err)
	}

	return nil
}

// Disconnect asks the peer to leave once queued packets are flushed. The disconnect event
// arrives through Poll like any other.
func (t *ENet) Disconnect(connID string) {
	if peer, ok := t.peers[connID]; ok {
		peer.DisconnectLater(0)
	}
}
