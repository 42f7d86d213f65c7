package network

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/siohaza/hyperio/internal/protocol"
)

const (
	wsReadLimit    = 4096
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 25 * time.Second
	wsSendBuffer   = 256
	wsEventBuffer  = 1024
)

type wsConn struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	closing chan struct{}
	once    sync.Once
}

func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.closing)
	})
}

// WebSocket serves browser clients over text frames. Connections arrive through Handler,
// which the server mounts on its HTTP router.
type WebSocket struct {
	upgrader websocket.Upgrader
	codec    protocol.Codec
	maxConns int
	logger   *slog.Logger

	events  chan Event
	stopped chan struct{}
	stop    sync.Once
	running atomic.Bool
	nextID  atomic.Uint64

	mu    sync.Mutex
	conns map[string]*wsConn
}

func NewWebSocket(maxConns int, logger *slog.Logger) *WebSocket {
	if logger == nil {
		logger = slog.Default()
	}

	return &WebSocket{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		codec:    protocol.JSONCodec{},
		maxConns: maxConns,
		logger:   logger,
		events:   make(chan Event, wsEventBuffer),
		stopped:  make(chan struct{}),
		conns:    make(map[string]*wsConn),
	}
}

func (t *WebSocket) Name() string {
	return "websocket"
}

func (t *WebSocket) Codec() protocol.Codec {
	return t.codec
}

func (t *WebSocket) Start() error {
	t.running.Store(true)
	return nil
}

func (t *WebSocket) Stop() {
	t.stop.Do(func() {
		t.running.Store(false)
		close(t.stopped)

		t.mu.Lock()
		for _, c := range t.conns {
			c.close()
		}
		t.mu.Unlock()
	})
}

func (t *WebSocket) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

// Handler upgrades GET requests to WebSocket connections.
func (t *WebSocket) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !t.running.Load() {
			http.Error(w, "server not running", http.StatusServiceUnavailable)
			return
		}
		if t.maxConns > 0 && t.Count() >= t.maxConns {
			http.Error(w, "server full", http.StatusServiceUnavailable)
			return
		}

		conn, err := t.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		c := &wsConn{
			id:      "ws-" + strconv.FormatUint(t.nextID.Add(1), 10),
			conn:    conn,
			send:    make(chan []byte, wsSendBuffer),
			closing: make(chan struct{}),
		}

		t.mu.Lock()
		t.conns[c.id] = c
		t.mu.Unlock()

		t.logger.Debug("websocket connected", "conn", c.id, "remote", r.RemoteAddr)
		if !t.push(Event{Type: EventTypeConnect, ConnID: c.id, Addr: remoteHost(r.RemoteAddr)}) {
			t.drop(c)
			conn.Close()
			return
		}

		go t.writePump(c)
		go t.readPump(c)
	}
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func (t *WebSocket) push(ev Event) bool {
	select {
	case t.events <- ev:
		return true
	case <-t.stopped:
		return false
	}
}

func (t *WebSocket) drop(c *wsConn) {
	t.mu.Lock()
	delete(t.conns, c.id)
	t.mu.Unlock()
	c.close()
}

func (t *WebSocket) readPump(c *wsConn) {
	defer func() {
		t.drop(c)
		c.conn.Close()
		t.push(Event{Type: EventTypeDisconnect, ConnID: c.id})
		t.logger.Debug("websocket disconnected", "conn", c.id)
	}()

	c.conn.SetReadLimit(wsReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				t.logger.Debug("websocket read error", "conn", c.id, "error", err)
			}
			return
		}
		if !t.push(Event{Type: EventTypeReceive, ConnID: c.id, Data: data}) {
			return
		}
	}
}

func (t *WebSocket) writePump(c *wsConn) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closing:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			// flush what was queued before the close, e.g. a kick reason
			for pending := true; pending; {
				select {
				case data := <-c.send:
					if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
						return
					}
				default:
					pending = false
				}
			}
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (t *WebSocket) Poll() (Event, bool) {
	select {
	case ev := <-t.events:
		return ev, true
	default:
		return Event{}, false
	}
}

// Send queues data for the connection. A client that cannot keep up is disconnected
// rather than allowed to stall the simulation.
func (t *WebSocket) Send(connID string, data []byte) error {
	if !t.running.Load() {
		return ErrTransportClosed
	}

	t.mu.Lock()
	c, ok := t.conns[connID]
	t.mu.Unlock()
	if !ok {
		return ErrUnknownConn
	}

	select {
	case c.send <- data:
		return nil
	default:
		t.logger.Warn("websocket send buffer full, disconnecting", "conn", connID)
		c.close()
		return ErrSendBufferFull
	}
}

func (t *WebSocket) Disconnect(connID string) {
	t.mu.Lock()
	c, ok := t.conns[connID]
	t.mu.Unlock()
	if ok {
		c.close()
	}
}
