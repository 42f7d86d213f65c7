package game

import (
	"time"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/callbacks"
	"github.com/siohaza/hyperio/internal/events"
	"github.com/siohaza/hyperio/internal/gamestate"
	"github.com/siohaza/hyperio/internal/physics"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/powerup"
	"github.com/siohaza/hyperio/internal/protocol"
	"github.com/siohaza/hyperio/internal/team"
)

// Tick advances the world by one step:
//
//  1. power-up spawner and effect expiry
//  2. per player: movement, power-up pickup, food
//  3. captures between every ordered pair of players
//  4. survival-time achievements
//  5. team scores from live masses
//  6. gameUpdate broadcast every broadcast_every ticks
func (s *Simulation) Tick(now time.Time) {
	w := s.world
	w.Tick++

	if spawned := w.PowerUps.Update(now, w.Width(), w.Height(), w.Rand); spawned != nil {
		s.logger.Debug("power-up spawned", "id", spawned.ID, "type", spawned.Kind)
	}

	players := w.Players.All()

	for _, p := range players {
		s.guard(p, "update", func() { s.updatePlayer(p, now) })
	}

	for _, a := range players {
		for _, b := range players {
			if a == b {
				continue
			}
			s.guard(a, "capture", func() { s.resolvePair(a, b, now) })
		}
	}

	for _, p := range players {
		s.guard(p, "survival", func() { s.recordStat(p, achievement.StatSurvivalTime, 0, now) })
	}

	members := make([]team.Member, 0, len(players))
	for _, p := range players {
		members = append(members, teamMember{p})
	}
	w.Teams.Recompute(members)

	s.hooks.OnTick(w.Tick)

	if every := uint64(w.Config.Server.BroadcastEvery); every <= 1 || w.Tick%every == 0 {
		w.Emit(events.Broadcast(protocol.MessageTypeGameUpdate, w.GameUpdate()))
	}
}

func (s *Simulation) updatePlayer(p *player.Player, now time.Time) {
	w := s.world

	speed := w.PowerUps.EffectMultiplier(p.ID, powerup.AxisSpeed, now)
	p.Advance(now, w.MovementParams(speed))

	if pu, ok := w.PowerUps.CheckPickup(p.ID, p.X, p.Y, p.Radius(), now); ok {
		w.Emit(events.To(p.ID, protocol.MessageTypePowerUpCollected, protocol.PowerUpCollected{
			Type:     pu.Kind.String(),
			Effect:   pu.Kind.Effect().View(),
			Duration: pu.Kind.Duration().Milliseconds(),
		}))
		s.logger.Debug("power-up collected", "player", p.ID, "type", pu.Kind)
		s.hooks.OnPowerUpCollected(p, pu)
	}

	reach := p.Radius() + w.PowerUps.MagnetRange(p.ID, now)
	for _, f := range w.Food.All() {
		if !physics.Overlaps(p.X, p.Y, reach, f.X, f.Y, f.Radius()) {
			continue
		}

		w.Food.Remove(f.ID)
		p.GainMass(f.Mass * w.PowerUps.EffectMultiplier(p.ID, powerup.AxisMass, now))
		w.SpawnFood()

		s.bumpStat(p, achievement.StatFoodEaten, now)
		s.recordStat(p, achievement.StatMass, p.Mass, now)
	}
}

// resolvePair lets a's cells try to capture b's main cell. At most one capture happens per
// ordered pair per tick.
func (s *Simulation) resolvePair(a, b *player.Player, now time.Time) {
	w := s.world

	if !a.Alive || !b.Alive {
		return
	}
	if w.Friends.AreFriends(a.ID, b.ID) || gamestate.AreTeammates(a, b) {
		return
	}

	for _, cell := range a.Cells {
		if !physics.Overlaps(cell.X, cell.Y, cell.Radius(), b.X, b.Y, b.Radius()) {
			continue
		}
		if cell.Mass <= b.Mass*CaptureRatio {
			continue
		}
		s.capture(a, cell, b, now)
		return
	}
}

func (s *Simulation) capture(a *player.Player, cell *player.Cell, b *player.Player, now time.Time) {
	w := s.world

	gained := b.Mass * (1 - w.PowerUps.DamageReduction(b.ID, now))
	if cell.Strategic {
		gained += gained * StrategicBonus
	}

	if cell.Main {
		a.GainMass(gained)
	} else {
		a.GainMass(gained * MainCellShare)
		cell.Mass += gained * (1 - MainCellShare)
	}

	s.bumpStat(a, achievement.StatKills, now)
	if cell.Strategic {
		s.bumpStat(a, achievement.StatStrategicKills, now)
	}
	if a.TeamID != "" {
		w.Teams.Credit(a.TeamID, gained)
		s.recordStat(a, achievement.StatTeamAssist, w.Achievements.Stat(a.ID, achievement.StatTeamAssist)+gained, now)
	}
	s.recordStat(a, achievement.StatMass, a.Mass, now)

	w.Achievements.RemovePlayer(b.ID)
	w.PowerUps.RemovePlayer(b.ID)

	x, y := w.RandomPosition()
	b.Respawn(x, y, w.Config.World.InitialMass)
	w.Achievements.InitializePlayer(b.ID, now)

	w.Emit(events.To(b.ID, protocol.MessageTypePlayerDied, protocol.PlayerDied{
		KillerID:      a.ID,
		StrategicKill: cell.Strategic,
	}))
	if cell.Strategic {
		w.Emit(events.To(a.ID, protocol.MessageTypeStrategicKillSuccess, protocol.StrategicKillSuccess{
			VictimName: b.Name,
			MassGained: gained,
		}))
	}

	s.logger.Debug("player captured", "killer", a.ID, "victim", b.ID, "gained", gained, "strategic", cell.Strategic)

	s.hooks.OnPlayerCapture(callbacks.Capture{
		Killer:     a,
		Victim:     b,
		MassGained: gained,
		Strategic:  cell.Strategic,
	})
	s.hooks.OnPlayerRespawn(b)
}

type teamMember struct {
	*player.Player
}

func (m teamMember) Team() string {
	return m.TeamID
}

func (m teamMember) Weight() float64 {
	return m.Mass
}
