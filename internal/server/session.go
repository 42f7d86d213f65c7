package server

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/siohaza/hyperio/internal/network"
	"github.com/siohaza/hyperio/internal/protocol"
	"github.com/siohaza/hyperio/pkg/config"
)

// session is one connection. Its id is also the player id once joinGame succeeds.
type session struct {
	id         string
	addr       string
	transport  network.Transport
	limiter    *rate.Limiter
	violations int
	joined     bool
	kicked     bool
}

func newSession(id, addr string, t network.Transport, cfg config.RateLimitConfig) *session {
	return &session{
		id:        id,
		addr:      addr,
		transport: t,
		limiter:   rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), cfg.BurstSize),
	}
}

func (s *Server) checkRateLimit(sess *session, now time.Time) bool {
	if !s.config.RateLimit.Enabled {
		return true
	}
	if sess.limiter.AllowN(now, 1) {
		return true
	}

	sess.violations++
	s.logger.Warn("rate limit exceeded",
		"conn", sess.id,
		"violations", sess.violations)

	if sess.violations >= s.config.RateLimit.MaxViolations {
		s.logger.Warn("disconnecting client for excessive rate limit violations", "conn", sess.id)
		if d := s.config.RateLimit.BanDuration(); d > 0 && sess.addr != "" {
			if err := s.bans.AddBan(sess.addr, "", "Too many messages", "server", d); err != nil {
				s.logger.Error("failed to record ban", "addr", sess.addr, "error", err)
			}
		}
		s.kick(sess, "Too many messages")
	}
	return false
}

func (s *Server) handleMessage(sess *session, data []byte, now time.Time) {
	if sess.kicked {
		return
	}
	if !s.checkRateLimit(sess, now) {
		return
	}

	env, err := sess.transport.Codec().Decode(data)
	if err != nil {
		s.logger.Debug("undecodable message", "conn", sess.id, "error", err)
		s.sendError(sess, "malformed message")
		return
	}

	if !env.Type.Inbound() {
		s.sendError(sess, "unsupported message type: "+string(env.Type))
		return
	}

	if env.Type != protocol.MessageTypeJoinGame && !sess.joined {
		s.logger.Debug("intent before join", "conn", sess.id, "type", env.Type)
		return
	}

	switch env.Type {
	case protocol.MessageTypeJoinGame:
		var msg protocol.JoinGame
		if !s.bind(sess, env, &msg) {
			return
		}
		if ban, banned := s.bans.IsBannedByName(msg.PlayerName); banned {
			s.logger.Info("banned name rejected", "conn", sess.id, "name", ban.Name)
			s.sendError(sess, "That name is banned")
			return
		}
		if _, ok := s.sim.Join(sess.id, msg.PlayerName, msg.TeamMode, now); ok {
			sess.joined = true
		} else if !s.world.Players.Contains(sess.id) {
			s.sendError(sess, "unable to join")
		}

	case protocol.MessageTypeMove:
		var msg protocol.Move
		if s.bind(sess, env, &msg) {
			s.sim.Move(sess.id, msg.X, msg.Y)
		}

	case protocol.MessageTypeSplit:
		s.sim.Split(sess.id, now)

	case protocol.MessageTypeStrategicSplit:
		var msg protocol.StrategicSplit
		if s.bind(sess, env, &msg) {
			s.sim.StrategicSplit(sess.id, msg.TargetX, msg.TargetY, now)
		}

	case protocol.MessageTypeEject:
		s.sim.Eject(sess.id)

	case protocol.MessageTypeSendFriendRequest:
		var msg protocol.SendFriendRequest
		if s.bind(sess, env, &msg) {
			s.sim.SendFriendRequest(sess.id, msg.TargetID)
		}

	case protocol.MessageTypeRespondToFriendRequest:
		var msg protocol.RespondToFriendRequest
		if s.bind(sess, env, &msg) {
			s.sim.RespondToFriendRequest(sess.id, msg.SenderID, msg.Accept, now)
		}

	case protocol.MessageTypeBreakFriendship:
		var msg protocol.BreakFriendship
		if s.bind(sess, env, &msg) {
			s.sim.BreakFriendship(sess.id, msg.FriendID)
		}
	}
}

func (s *Server) bind(sess *session, env *protocol.Envelope, v any) bool {
	if err := env.Bind(v); err != nil {
		s.logger.Debug("bad payload", "conn", sess.id, "type", env.Type, "error", err)
		s.sendError(sess, "malformed "+string(env.Type)+" payload")
		return false
	}
	return true
}
