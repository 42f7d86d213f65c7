package gamemode

import (
	"time"

	"github.com/siohaza/hyperio/internal/callbacks"
)

// GameMode receives every simulation hook and may run its own timers.
type GameMode interface {
	callbacks.Callbacks
	Name() string
	UpdateTimers(now time.Time) error
	Close()
}

// BaseGameMode is the plain free-for-all used when no script is configured.
type BaseGameMode struct {
	callbacks.DefaultCallbacks
	name string
}

func NewBaseGameMode(name string) *BaseGameMode {
	return &BaseGameMode{name: name}
}

func (b *BaseGameMode) Name() string {
	return b.name
}

func (b *BaseGameMode) UpdateTimers(now time.Time) error {
	return nil
}

func (b *BaseGameMode) Close() {}
