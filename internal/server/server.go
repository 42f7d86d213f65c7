package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/matryer/way"

	"github.com/siohaza/hyperio/internal/bans"
	"github.com/siohaza/hyperio/internal/callbacks"
	"github.com/siohaza/hyperio/internal/game"
	"github.com/siohaza/hyperio/internal/gamemode"
	"github.com/siohaza/hyperio/internal/gamestate"
	"github.com/siohaza/hyperio/internal/masterserver"
	"github.com/siohaza/hyperio/internal/network"
	"github.com/siohaza/hyperio/pkg/config"
	"github.com/siohaza/hyperio/pkg/lua"
)

const (
	maxEventsPerPoll      = 256
	shutdownTimeout       = 5 * time.Second
	masterServiceInterval = 100 * time.Millisecond
)

// Server owns the world and is its only mutator: one goroutine runs ticks, polls the
// transports and applies intents. HTTP handlers read the snapshot published after each tick.
type Server struct {
	config     *config.Config
	world      *gamestate.World
	sim        *game.Simulation
	gameMode   gamemode.GameMode
	callbacks  *callbacks.CallbackChain
	bans       *bans.Manager
	logger     *slog.Logger
	tickRate   time.Duration
	startTime  time.Time
	transports []network.Transport
	ws         *network.WebSocket
	masters    []*masterserver.Client
	lastMaster time.Time
	sessions   map[string]*session
	router     *way.Router
	httpServer *http.Server
	listener   net.Listener
	snapshot   atomic.Pointer[snapshot]
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	now := time.Now()
	ctx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		config:    cfg,
		world:     gamestate.New(cfg, now.UnixNano(), now),
		callbacks: callbacks.NewCallbackChain(),
		bans:      bans.NewManager(cfg.Server.BansFile),
		logger:    logger,
		tickRate:  cfg.TickInterval(),
		sessions:  make(map[string]*session),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	if err := srv.bans.Load(); err != nil {
		cancel()
		return nil, err
	}

	if err := srv.loadGameMode(); err != nil {
		cancel()
		return nil, err
	}
	srv.callbacks.Register(srv.gameMode)
	srv.sim = game.NewSimulation(srv.world, srv.callbacks, logger)

	srv.ws = network.NewWebSocket(cfg.Server.MaxPlayers, logger)
	srv.transports = append(srv.transports, srv.ws)
	if cfg.Server.ENetPort != 0 {
		srv.transports = append(srv.transports, network.NewENet(cfg.Server.ENetPort, cfg.Server.MaxPlayers, logger))
	}

	srv.routes()
	srv.httpServer = &http.Server{
		Handler:           srv.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

func (s *Server) loadGameMode() error {
	path := s.config.Server.GamemodeScript
	if path == "" {
		s.gameMode = gamemode.NewBaseGameMode("ffa")
		return nil
	}

	api := lua.NewGameAPI(s.world)
	luaMode, err := gamemode.NewLuaGameMode(path, api, s.logger)
	if err != nil {
		return fmt.Errorf("failed to load Lua gamemode: %w", err)
	}
	s.gameMode = luaMode
	s.logger.Info("loaded Lua game mode", "path", path, "mode", s.gameMode.Name())
	return nil
}

func (s *Server) Start() error {
	for _, t := range s.transports {
		if err := t.Start(); err != nil {
			return fmt.Errorf("failed to start %s transport: %w", t.Name(), err)
		}
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.config.Server.Port, err)
	}
	s.listener = ln
	s.startMasters()

	s.startTime = time.Now()
	s.publish(s.startTime)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()
	go s.run()

	s.logger.Info("server started", "name", s.config.Server.Name, "address", ln.Addr().String())
	return nil
}

func (s *Server) Stop() {
	s.logger.Info("stopping server")

	s.cancel()
	if s.listener != nil {
		<-s.done
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown error", "error", err)
	}

	for _, ms := range s.masters {
		ms.Destroy()
	}
	for _, t := range s.transports {
		t.Stop()
	}
	s.gameMode.Close()

	s.logger.Info("server stopped")
}

// Addr is the bound HTTP address, nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) RegisterCallbacks(cb callbacks.Callbacks) {
	s.callbacks.Register(cb)
}

func (s *Server) GetServerName() string {
	return s.config.Server.Name
}

func (s *Server) GetUptime() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

func (s *Server) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("server context cancelled, exiting run loop")
			return

		case now := <-ticker.C:
			s.update(now)
		}

		s.handleNetworkEvents(time.Now())
		s.flush()
	}
}

func (s *Server) update(now time.Time) {
	s.sim.Tick(now)

	if err := s.gameMode.UpdateTimers(now); err != nil {
		s.logger.Error("failed to update gamemode timers", "error", err)
	}

	s.publish(now)

	if len(s.masters) > 0 && now.Sub(s.lastMaster) >= masterServiceInterval {
		s.lastMaster = now
		count := s.world.Players.Count()
		for _, ms := range s.masters {
			ms.Service()
			ms.UpdatePlayerCount(count)
		}
	}
}

func (s *Server) startMasters() {
	if !s.config.Server.Master {
		return
	}

	listing := masterserver.Listing{
		Name:       s.config.Server.Name,
		GameMode:   s.gameMode.Name(),
		Port:       s.Addr().(*net.TCPAddr).Port,
		ENetPort:   s.config.Server.ENetPort,
		MaxPlayers: s.config.Server.MaxPlayers,
	}
	for _, host := range s.config.Server.MasterHosts {
		ms, err := masterserver.New(host.Host, host.Port, listing, s.logger)
		if err != nil {
			s.logger.Error("failed to create master server client", "host", host.Host, "error", err)
			continue
		}
		s.masters = append(s.masters, ms)
		s.logger.Info("master server integration enabled", "host", host.Host)
	}
}

func (s *Server) handleNetworkEvents(now time.Time) {
	for _, t := range s.transports {
		for i := 0; i < maxEventsPerPoll; i++ {
			event, ok := t.Poll()
			if !ok {
				break
			}

			switch event.Type {
			case network.EventTypeConnect:
				s.handleConnect(t, event)

			case network.EventTypeDisconnect:
				s.handleDisconnect(event.ConnID)

			case network.EventTypeReceive:
				if sess, ok := s.sessions[event.ConnID]; ok {
					s.handleMessage(sess, event.Data, now)
				}
			}
		}
	}
}

func (s *Server) handleConnect(t network.Transport, event network.Event) {
	sess := newSession(event.ConnID, event.Addr, t, s.config.RateLimit)
	s.sessions[sess.id] = sess

	if ban, ok := s.bans.IsBanned(sess.addr); ok {
		s.logger.Info("banned client attempted to connect", "addr", sess.addr, "reason", ban.Reason)
		s.kick(sess, "You are banned: "+ban.Reason)
		return
	}

	s.logger.Info("client connected", "conn", sess.id, "addr", sess.addr, "transport", t.Name())
}

func (s *Server) handleDisconnect(connID string) {
	sess, ok := s.sessions[connID]
	if !ok {
		return
	}
	delete(s.sessions, connID)

	if sess.joined {
		s.sim.Leave(connID)
	}
	s.logger.Info("client disconnected", "conn", connID)
}

// flush delivers every pending event. Broadcasts are encoded once per codec.
func (s *Server) flush() {
	evs := s.world.Outbox.Drain()
	if len(evs) == 0 {
		return
	}

	encoded := make(map[string][]byte, 2)
	for _, ev := range evs {
		if !ev.Broadcast() {
			sess, ok := s.sessions[ev.To]
			if !ok {
				continue
			}
			data, err := sess.transport.Codec().Encode(ev.Type, ev.Payload)
			if err != nil {
				s.logger.Error("failed to encode message", "type", ev.Type, "error", err)
				continue
			}
			s.send(sess, data)
			continue
		}

		clear(encoded)
		for _, sess := range s.sessions {
			codec := sess.transport.Codec()
			data, ok := encoded[codec.Name()]
			if !ok {
				var err error
				data, err = codec.Encode(ev.Type, ev.Payload)
				if err != nil {
					s.logger.Error("failed to encode broadcast", "type", ev.Type, "codec", codec.Name(), "error", err)
					continue
				}
				encoded[codec.Name()] = data
			}
			s.send(sess, data)
		}
	}
}

func (s *Server) send(sess *session, data []byte) {
	if err := sess.transport.Send(sess.id, data); err != nil {
		s.logger.Debug("failed to send", "conn", sess.id, "error", err)
	}
}
