package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/matryer/way"

	"github.com/siohaza/hyperio/internal/protocol"
)

type ServerInfo struct {
	Name           string  `json:"name"`
	GameMode       string  `json:"game_mode"`
	PlayersCurrent int     `json:"players_current"`
	PlayersMax     int     `json:"players_max"`
	Connections    int     `json:"connections"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	TickRate       int     `json:"tick_rate"`
	Tick           uint64  `json:"tick"`
	Food           int     `json:"food"`
	PowerUps       int     `json:"power_ups"`
}

// snapshot is rebuilt by the simulation goroutine after every tick and read lock-free by the
// HTTP handlers.
type snapshot struct {
	info        ServerInfo
	leaderboard []protocol.LeaderboardEntry
}

func (s *Server) publish(now time.Time) {
	uptime := 0.0
	if !s.startTime.IsZero() {
		uptime = now.Sub(s.startTime).Seconds()
	}

	s.snapshot.Store(&snapshot{
		info: ServerInfo{
			Name:           s.config.Server.Name,
			GameMode:       s.gameMode.Name(),
			PlayersCurrent: s.world.Players.Count(),
			PlayersMax:     s.config.Server.MaxPlayers,
			Connections:    len(s.sessions),
			UptimeSeconds:  uptime,
			TickRate:       s.config.World.TickRate,
			Tick:           s.world.Tick,
			Food:           s.world.Food.Len(),
			PowerUps:       s.world.PowerUps.Count(),
		},
		leaderboard: s.world.Leaderboard(),
	})
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", "/ws", s.ws.Handler())
	s.router.HandleFunc("GET", "/status", s.handleStatus)
	s.router.HandleFunc("GET", "/leaderboard", s.handleLeaderboard)
	s.router.HandleFunc("GET", "/bans", s.handleBans)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot.Load()
	if snap == nil {
		http.Error(w, "server not running", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, snap.info)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot.Load()
	if snap == nil {
		http.Error(w, "server not running", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, snap.leaderboard)
}

func (s *Server) handleBans(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.bans.GetAll())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}
