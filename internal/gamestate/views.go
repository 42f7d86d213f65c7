package gamestate

import (
	"sort"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/protocol"
)

func PlayerView(p *player.Player) protocol.PlayerView {
	cells := make([]protocol.CellView, 0, len(p.Cells))
	for _, c := range p.Cells {
		cells = append(cells, protocol.CellView{
			X:         c.X,
			Y:         c.Y,
			Mass:      c.Mass,
			Radius:    c.Radius(),
			VelocityX: c.VelocityX,
			VelocityY: c.VelocityY,
			IsMain:    c.Main,
			Strategic: c.Strategic,
		})
	}

	return protocol.PlayerView{
		ID:         p.ID,
		Name:       p.Name,
		X:          p.X,
		Y:          p.Y,
		Mass:       p.Mass,
		Radius:     p.Radius(),
		Color:      p.Color,
		Cells:      cells,
		IsAlive:    p.Alive,
		DirectionX: p.DirectionX,
		DirectionY: p.DirectionY,
		TeamID:     protocol.TeamRef(p.TeamID),
	}
}

func (w *World) PlayerViews() []protocol.PlayerView {
	views := make([]protocol.PlayerView, 0, w.Players.Count())
	w.Players.ForEach(func(p *player.Player) {
		views = append(views, PlayerView(p))
	})
	return views
}

func (w *World) FoodViews() []protocol.FoodView {
	all := w.Food.All()
	views := make([]protocol.FoodView, 0, len(all))
	for _, f := range all {
		views = append(views, protocol.FoodView{
			ID:     f.ID,
			X:      f.X,
			Y:      f.Y,
			Mass:   f.Mass,
			Radius: f.Radius(),
			Color:  f.Color,
		})
	}
	return views
}

func (w *World) PowerUpViews() []protocol.PowerUpView {
	all := w.PowerUps.All()
	views := make([]protocol.PowerUpView, 0, len(all))
	for _, p := range all {
		views = append(views, p.View())
	}
	return views
}

// Leaderboard ranks by main-cell mass; equal masses keep join order.
func (w *World) Leaderboard() []protocol.LeaderboardEntry {
	players := w.Players.All()
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Mass > players[j].Mass
	})
	if len(players) > protocol.LeaderboardLen {
		players = players[:protocol.LeaderboardLen]
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, protocol.LeaderboardEntry{ID: p.ID, Name: p.Name, Mass: p.Mass, TeamID: protocol.TeamRef(p.TeamID)})
	}
	return entries
}

func (w *World) ConfigView() protocol.ConfigView {
	c := w.Config.World
	return protocol.ConfigView{
		WorldWidth:   c.Width,
		WorldHeight:  c.Height,
		FoodCount:    c.FoodCount,
		FoodMass:     c.FoodMass,
		InitialMass:  c.InitialMass,
		MinMass:      c.MinMass,
		MassLossRate: c.MassLossRate,
		MaxSpeed:     c.MaxSpeed,
		EjectMass:    c.EjectMass,
		TickRate:     c.TickRate,
		Teams:        w.Teams.Views(),
	}
}

func AchievementViews(list []achievement.Achievement) []protocol.AchievementView {
	views := make([]protocol.AchievementView, 0, len(list))
	for _, a := range list {
		views = append(views, a.View())
	}
	return views
}

// GameState is the full snapshot sent once to a joining player.
func (w *World) GameState(playerID string) protocol.GameState {
	return protocol.GameState{
		PlayerID:     playerID,
		Players:      w.PlayerViews(),
		Food:         w.FoodViews(),
		PowerUps:     w.PowerUpViews(),
		Config:       w.ConfigView(),
		TeamScores:   w.Teams.Scores(),
		Achievements: AchievementViews(w.Achievements.GetPlayerAchievements(playerID)),
	}
}

func (w *World) GameUpdate() protocol.GameUpdate {
	return protocol.GameUpdate{
		Tick:        w.Tick,
		Players:     w.PlayerViews(),
		Food:        w.FoodViews(),
		PowerUps:    w.PowerUpViews(),
		Leaderboard: w.Leaderboard(),
		TeamScores:  w.Teams.Scores(),
	}
}
