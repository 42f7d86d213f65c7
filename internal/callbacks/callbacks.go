package callbacks

import (
	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/powerup"
)

// Capture describes one resolved player capture.
type Capture struct {
	Killer     *player.Player
	Victim     *player.Player
	MassGained float64
	Strategic  bool
}

type Callbacks interface {
	OnPlayerJoin(p *player.Player)
	OnPlayerLeave(p *player.Player)
	OnPlayerCapture(c Capture)
	OnPlayerRespawn(p *player.Player)
	OnAchievementUnlocked(p *player.Player, a achievement.Achievement)
	OnPowerUpCollected(p *player.Player, pu *powerup.PowerUp)
	OnTick(tick uint64)
}

type DefaultCallbacks struct{}

func (d *DefaultCallbacks) OnPlayerJoin(p *player.Player)    {}
func (d *DefaultCallbacks) OnPlayerLeave(p *player.Player)   {}
func (d *DefaultCallbacks) OnPlayerCapture(c Capture)        {}
func (d *DefaultCallbacks) OnPlayerRespawn(p *player.Player) {}
func (d *DefaultCallbacks) OnAchievementUnlocked(p *player.Player, a achievement.Achievement) {
}
func (d *DefaultCallbacks) OnPowerUpCollected(p *player.Player, pu *powerup.PowerUp) {}
func (d *DefaultCallbacks) OnTick(tick uint64)                                     {}

type CallbackChain struct {
	callbacks []Callbacks
}

func NewCallbackChain() *CallbackChain {
	return &CallbackChain{
		callbacks: make([]Callbacks, 0),
	}
}

func (c *CallbackChain) Register(cb Callbacks) {
	c.callbacks = append(c.callbacks, cb)
}

func (c *CallbackChain) Len() int {
	return len(c.callbacks)
}

func (c *CallbackChain) OnPlayerJoin(p *player.Player) {
	for _, cb := range c.callbacks {
		cb.OnPlayerJoin(p)
	}
}

func (c *CallbackChain) OnPlayerLeave(p *player.Player) {
	for _, cb := range c.callbacks {
		cb.OnPlayerLeave(p)
	}
}

func (c *CallbackChain) OnPlayerCapture(capture Capture) {
	for _, cb := range c.callbacks {
		cb.OnPlayerCapture(capture)
	}
}

func (c *CallbackChain) OnPlayerRespawn(p *player.Player) {
	for _, cb := range c.callbacks {
		cb.OnPlayerRespawn(p)
	}
}

func (c *CallbackChain) OnAchievementUnlocked(p *player.Player, a achievement.Achievement) {
	for _, cb := range c.callbacks {
		cb.OnAchievementUnlocked(p, a)
	}
}

func (c *CallbackChain) OnPowerUpCollected(p *player.Player, pu *powerup.PowerUp) {
	for _, cb := range c.callbacks {
		cb.OnPowerUpCollected(p, pu)
	}
}

func (c *CallbackChain) OnTick(tick uint64) {
	for _, cb := range c.callbacks {
		cb.OnTick(tick)
	}
}
