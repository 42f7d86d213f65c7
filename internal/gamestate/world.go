package gamestate

import (
	"math/rand"
	"time"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/events"
	"github.com/siohaza/hyperio/internal/food"
	"github.com/siohaza/hyperio/internal/friendship"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/powerup"
	"github.com/siohaza/hyperio/internal/team"
	"github.com/siohaza/hyperio/pkg/config"
)

// World is the whole simulation state. It is owned by a single goroutine and has no locks.
type World struct {
	Config       *config.Config
	Players      *player.Manager
	Food         *food.Store
	PowerUps     *powerup.System
	Teams        *team.Roster
	Friends      *friendship.Ledger
	Achievements *achievement.Tracker
	Outbox       *events.Queue
	Rand         *rand.Rand

	Tick      uint64
	StartedAt time.Time
}

func New(cfg *config.Config, seed int64, now time.Time) *World {
	defs := make([]team.Team, 0, len(cfg.Teams))
	for _, t := range cfg.Teams {
		defs = append(defs, team.Team{ID: t.ID, Name: t.Name, Color: t.Color, MaxPlayers: t.MaxPlayers})
	}

	w := &World{
		Config:  cfg,
		Players: player.NewManager(),
		Food:    food.NewStore(),
		PowerUps: powerup.NewSystem(powerup.Config{
			SpawnInterval: cfg.PowerUps.SpawnInterval(),
			MaxCount:      cfg.PowerUps.MaxCount,
			Radius:        cfg.PowerUps.Radius,
			Lifetime:      cfg.PowerUps.Lifetime(),
		}),
		Teams:        team.NewRoster(defs),
		Friends:      friendship.NewLedger(),
		Achievements: achievement.NewTracker(),
		Outbox:       events.NewQueue(),
		Rand:         rand.New(rand.NewSource(seed)),
		StartedAt:    now,
	}

	for i := 0; i < cfg.World.FoodCount; i++ {
		w.SpawnFood()
	}

	return w
}

func (w *World) Width() float64 {
	return w.Config.World.Width
}

func (w *World) Height() float64 {
	return w.Config.World.Height
}

// RandomPosition picks a uniform point inside the arena.
func (w *World) RandomPosition() (float64, float64) {
	return w.Rand.Float64() * w.Width(), w.Rand.Float64() * w.Height()
}

func (w *World) SpawnFood() *food.Food {
	return w.Food.Spawn(w.Rand, w.Width(), w.Height(), w.Config.World.FoodMass)
}

// MovementParams scales the configured max speed by speedMultiplier.
func (w *World) MovementParams(speedMultiplier float64) player.MovementParams {
	return player.MovementParams{
		MaxSpeed:     w.Config.World.MaxSpeed * speedMultiplier,
		TickRate:     float64(w.Config.World.TickRate),
		Width:        w.Width(),
		Height:       w.Height(),
		MinMass:      w.Config.World.MinMass,
		MassLossRate: w.Config.World.MassLossRate,
		MergeDelay:   w.Config.Split.MergeDelay(),
	}
}

func (w *World) SplitParams() player.SplitParams {
	return player.SplitParams{
		MinMass:  w.Config.Split.MinMass,
		Cooldown: w.Config.Split.Cooldown(),
	}
}

// AreTeammates is false for players outside any team.
func AreTeammates(a, b *player.Player) bool {
	return a.TeamID != "" && a.TeamID == b.TeamID
}

func (w *World) Emit(evs ...events.Event) {
	w.Outbox.Push(evs...)
}
