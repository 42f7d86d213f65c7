package game

import (
	"fmt"
	"time"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/events"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/protocol"
	"github.com/siohaza/hyperio/internal/validation"
)

// Join admits a new player under id. A blank or unusable name falls back to "Player<n>".
// It reports false when the id is already playing, malformed, or the server is full.
func (s *Simulation) Join(id, rawName string, teamMode bool, now time.Time) (*player.Player, bool) {
	w := s.world

	if !validation.IsValidPlayerID(id) {
		s.logger.Debug("join rejected: bad id", "id", id)
		return nil, false
	}
	if w.Players.Contains(id) {
		s.logger.Debug("join rejected: already playing", "id", id)
		return nil, false
	}
	if w.Players.Count() >= w.Config.Server.MaxPlayers {
		s.logger.Warn("server full, rejecting join", "id", id)
		return nil, false
	}

	name, ok := validation.SanitizeName(rawName)
	if !ok {
		name = fmt.Sprintf("Player%d", w.Rand.Intn(1000))
	}

	var teamID, color string
	if teamMode {
		if teamID, ok = w.Teams.Assign(id); !ok {
			s.logger.Info("no team has room, joining unaffiliated", "id", id)
		} else if t, found := w.Teams.Team(teamID); found && t.Color != "" {
			color = t.Color
		}
	}
	if color == "" {
		color = player.RandomColor(w.Rand)
	}

	x, y := w.RandomPosition()
	p := player.New(id, name, teamID, color, x, y, w.Config.World.InitialMass, now)

	w.Players.Add(p)
	w.Friends.AddPlayer(id)
	w.Achievements.InitializePlayer(id, now)

	w.Emit(events.To(id, protocol.MessageTypeGameState, w.GameState(id)))

	s.logger.Info("player joined", "id", id, "name", name, "team", teamID)
	s.hooks.OnPlayerJoin(p)
	return p, true
}

// Leave removes every trace of the player. Unknown ids are ignored.
func (s *Simulation) Leave(id string) bool {
	w := s.world

	p, ok := w.Players.Get(id)
	if !ok {
		return false
	}

	s.hooks.OnPlayerLeave(p)

	if p.TeamID != "" {
		w.Teams.Leave(id, p.TeamID)
	}
	w.Players.Remove(id)
	w.Friends.RemovePlayer(id)
	w.Achievements.RemovePlayer(id)
	w.PowerUps.RemovePlayer(id)

	s.logger.Info("player left", "id", id, "name", p.Name)
	return true
}

func (s *Simulation) Move(id string, x, y float64) bool {
	p, ok := s.world.Players.Get(id)
	if !ok {
		return false
	}
	if !validation.IsValidTarget(x, y) {
		s.logger.Debug("move rejected: bad target", "player", id)
		return false
	}
	p.UpdateDirection(x, y)
	return true
}

func (s *Simulation) Split(id string, now time.Time) bool {
	p, ok := s.world.Players.Get(id)
	if !ok {
		return false
	}
	if !p.Split(now, s.world.SplitParams()) {
		s.logger.Debug("split rejected", "player", id, "mass", p.Mass)
		return false
	}
	s.bumpStat(p, achievement.StatSplits, now)
	return true
}

func (s *Simulation) StrategicSplit(id string, targetX, targetY float64, now time.Time) bool {
	p, ok := s.world.Players.Get(id)
	if !ok {
		return false
	}
	if !validation.IsValidTarget(targetX, targetY) {
		s.logger.Debug("strategic split rejected: bad target", "player", id)
		return false
	}
	if !p.StrategicSplit(targetX, targetY, now, s.world.SplitParams()) {
		s.logger.Debug("strategic split rejected", "player", id, "mass", p.Mass)
		return false
	}
	s.bumpStat(p, achievement.StatSplits, now)
	return true
}

// Eject sheds eject_mass as a pellet, provided the player stays above min_mass.
func (s *Simulation) Eject(id string) bool {
	w := s.world

	p, ok := w.Players.Get(id)
	if !ok {
		return false
	}

	amount := w.Config.World.EjectMass
	if p.Mass <= amount+w.Config.World.MinMass {
		s.logger.Debug("eject rejected", "player", id, "mass", p.Mass)
		return false
	}

	pellet, ok := p.EjectMass(amount, w.Food.NextID(), p.Color)
	if !ok {
		return false
	}
	w.Food.Add(pellet)
	return true
}

func (s *Simulation) SendFriendRequest(senderID, targetID string) bool {
	ok, evs := s.world.Friends.SendFriendRequest(s.world.Players, senderID, targetID)
	if !ok {
		s.logger.Debug("friend request rejected", "sender", senderID, "target", targetID)
		return false
	}
	s.world.Emit(evs...)
	return true
}

func (s *Simulation) RespondToFriendRequest(receiverID, senderID string, accept bool, now time.Time) bool {
	w := s.world

	ok, evs := w.Friends.RespondToFriendRequest(w.Players, receiverID, senderID, accept)
	if !ok {
		s.logger.Debug("friend response rejected", "receiver", receiverID, "sender", senderID)
		return false
	}
	w.Emit(evs...)

	if accept {
		for _, id := range []string{receiverID, senderID} {
			if p, ok := w.Players.Get(id); ok {
				s.recordStat(p, achievement.StatFriends, float64(len(w.Friends.Friends(id))), now)
			}
		}
	}
	return true
}

func (s *Simulation) BreakFriendship(playerID, friendID string) bool {
	ok, evs := s.world.Friends.BreakFriendship(s.world.Players, playerID, friendID)
	if !ok {
		return false
	}
	s.world.Emit(evs...)
	return true
}
