package game

import (
	"log/slog"
	"os"
	"time"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/callbacks"
	"github.com/siohaza/hyperio/internal/events"
	"github.com/siohaza/hyperio/internal/gamestate"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/protocol"
)

const (
	// a capturing cell must outweigh the victim's main cell by this factor
	CaptureRatio = 1.2

	// strategic captures pay this fraction on top of the transferred mass
	StrategicBonus = 0.2

	// share of a split-cell capture routed to the main cell; the rest stays on the split cell
	MainCellShare = 0.7
)

// Simulation applies intents and runs ticks against one World. Like the World it is not safe
// for concurrent use.
type Simulation struct {
	world  *gamestate.World
	hooks  callbacks.Callbacks
	logger *slog.Logger
}

func NewSimulation(w *gamestate.World, hooks callbacks.Callbacks, logger *slog.Logger) *Simulation {
	if hooks == nil {
		hooks = &callbacks.DefaultCallbacks{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return &Simulation{
		world:  w,
		hooks:  hooks,
		logger: logger,
	}
}

func (s *Simulation) World() *gamestate.World {
	return s.world
}

// recordStat pushes a stat value into the tracker and announces any unlocks.
func (s *Simulation) recordStat(p *player.Player, stat achievement.Stat, value float64, now time.Time) {
	unlocked := s.world.Achievements.UpdatePlayerStat(p.ID, stat, value, now)
	if len(unlocked) == 0 {
		return
	}

	s.world.Emit(events.To(p.ID, protocol.MessageTypeAchievementUnlocked, gamestate.AchievementViews(unlocked)))
	for _, a := range unlocked {
		s.logger.Debug("achievement unlocked", "player", p.ID, "achievement", a.Key)
		s.hooks.OnAchievementUnlocked(p, a)
	}
}

func (s *Simulation) bumpStat(p *player.Player, stat achievement.Stat, now time.Time) {
	s.recordStat(p, stat, s.world.Achievements.Stat(p.ID, stat)+1, now)
}

// guard runs one player's step and contains any panic to that player.
func (s *Simulation) guard(p *player.Player, step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("recovered player fault", "player", p.ID, "step", step, "panic", r)
		}
	}()
	fn()
}
