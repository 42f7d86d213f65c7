package masterserver

import (
	"fmt"
	"log/slog"

	"github.com/codecat/go-enet"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// Update kinds, the first byte of every packet sent to a list server.
	kindListing     byte = 1
	kindPlayerCount byte = 2

	connectData = 1
)

// Listing is what a list server shows for this arena.
type Listing struct {
	Name       string `msgpack:"name"`
	GameMode   string `msgpack:"gameMode"`
	Port       int    `msgpack:"port"`
	ENetPort   int    `msgpack:"enetPort"`
	MaxPlayers int    `msgpack:"maxPlayers"`
	Players    int    `msgpack:"players"`
}

type playerCount struct {
	Players int `msgpack:"players"`
}

func encode(kind byte, v any) ([]byte, error) {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte{kind}, body...), nil
}

// Client keeps one arena registered with a list server. It is not safe for concurrent use;
// the server drives it from the simulation goroutine.
type Client struct {
	host       enet.Host
	peer       enet.Peer
	domain     string
	domainPort uint16
	listing    Listing
	sentCount  int
	connected  bool
	logger     *slog.Logger
}

func New(domain string, domainPort int, listing Listing, logger *slog.Logger) (*Client, error) {
	// no-op when the ENet transport already initialized the library
	enet.Initialize()

	host, err := enet.NewHost(nil, 1, 1, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create host: %w", err)
	}

	if err := host.CompressWithRangeCoder(); err != nil {
		host.Destroy()
		return nil, err
	}

	return &Client{
		host:       host,
		domain:     domain,
		domainPort: uint16(domainPort),
		listing:    listing,
		sentCount:  -1,
		logger:     logger.With("master", fmt.Sprintf("%s:%d", domain, domainPort)),
	}, nil
}

func (c *Client) Connected() bool {
	return c.connected
}

// UpdatePlayerCount reports a new population once connected. Unchanged counts are not resent.
func (c *Client) UpdatePlayerCount(count int) {
	c.listing.Players = count
	if c.connected && count != c.sentCount {
		c.sendPlayerCount(count)
	}
}

func (c *Client) sendListing() {
	data, err := encode(kindListing, c.listing)
	if err != nil {
		c.logger.Error("failed to encode listing", "error", err)
		return
	}
	if c.send(data) {
		c.sentCount = c.listing.Players
	}
}

func (c *Client) sendPlayerCount(count int) {
	data, err := encode(kindPlayerCount, playerCount{Players: count})
	if err != nil {
		c.logger.Error("failed to encode player count", "error", err)
		return
	}
	if c.send(data) {
		c.sentCount = count
	}
}

func (c *Client) send(data []byte) bool {
	packet, err := enet.NewPacket(data, enet.PacketFlagReliable)
	if err != nil {
		c.logger.Error("failed to create packet", "error", err)
		return false
	}

	if err := c.peer.SendPacket(packet, 0); err != nil {
		c.logger.Error("failed to send update", "error", err)
		return false
	}
	return true
}

// Service connects or reconnects as needed and handles pending events without blocking.
func (c *Client) Service() {
	if c.peer == nil {
		address := enet.NewAddress(c.domain, c.domainPort)

		peer, err := c.host.Connect(address, 1, connectData)
		if err != nil {
			c.logger.Error("failed to connect to master server", "error", err)
			return
		}
		c.peer = peer
		c.connected = false
	}

	for {
		event := c.host.Service(0)
		switch event.GetType() {
		case enet.EventNone:
			return

		case enet.EventConnect:
			c.logger.Info("connected to master server")
			c.connected = true
			c.sendListing()

		case enet.EventDisconnect:
			c.logger.Warn("disconnected from master server")
			c.connected = false
			c.peer = nil
			return

		case enet.EventReceive:
			event.GetPacket().Destroy()
		}
	}
}

func (c *Client) Destroy() {
	if c.peer != nil && c.connected {
		c.peer.DisconnectNow(0)
	}
	c.host.Destroy()
}
