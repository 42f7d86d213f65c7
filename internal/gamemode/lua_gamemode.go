package gamemode

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/callbacks"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/powerup"
	"github.com/siohaza/hyperio/pkg/lua"
)

type LuaGameMode struct {
	vm     *lua.VM
	api    *lua.GameAPI
	name   string
	logger *slog.Logger
}

func NewLuaGameMode(scriptPath string, api *lua.GameAPI, logger *slog.Logger) (*LuaGameMode, error) {
	vm := lua.NewVM()
	return newLuaGameMode(vm, api, logger, func() error {
		return vm.LoadFile(scriptPath)
	})
}

// NewLuaGameModeFromString loads the game mode from source held in memory.
func NewLuaGameModeFromString(code string, api *lua.GameAPI, logger *slog.Logger) (*LuaGameMode, error) {
	vm := lua.NewVM()
	return newLuaGameMode(vm, api, logger, func() error {
		return vm.LoadString(code)
	})
}

func newLuaGameMode(vm *lua.VM, api *lua.GameAPI, logger *slog.Logger, load func() error) (*LuaGameMode, error) {
	if api != nil {
		api.RegisterFunctions(vm)
		api.SetGamemodeVM(vm)
	}

	if err := load(); err != nil {
		vm.Close()
		return nil, fmt.Errorf("failed to load gamemode script: %w", err)
	}

	name, err := vm.GetGlobalString("name")
	if err != nil {
		name = "lua_gamemode"
	}

	gm := &LuaGameMode{
		vm:     vm,
		api:    api,
		name:   name,
		logger: logger,
	}

	if vm.HasFunction("on_init") {
		if err := vm.CallFunction("on_init"); err != nil {
			vm.Close()
			return nil, fmt.Errorf("failed to call on_init: %w", err)
		}
	}

	return gm, nil
}

func (gm *LuaGameMode) Name() string {
	return gm.name
}

func (gm *LuaGameMode) UpdateTimers(now time.Time) error {
	if gm.vm != nil {
		return gm.vm.UpdateTimers(now)
	}
	return nil
}

func (gm *LuaGameMode) Close() {
	if gm.vm != nil {
		gm.vm.Close()
	}
}

func (gm *LuaGameMode) logError(hook string, err error) {
	if gm.logger != nil {
		gm.logger.Error("lua gamemode hook error", "hook", hook, "error", err)
	}
}

// callWithPlayers invokes hook with the player tables first and the plain arguments after.
func (gm *LuaGameMode) callWithPlayers(hook string, players []*player.Player, args ...interface{}) {
	if !gm.vm.HasFunction(hook) {
		return
	}

	state := gm.vm.State()
	top := state.Top()

	state.Global(hook)
	for _, p := range players {
		lua.PushPlayer(state, p)
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			state.PushString(v)
		case float64:
			state.PushNumber(v)
		case bool:
			state.PushBoolean(v)
		default:
			state.PushNil()
		}
	}

	if err := state.ProtectedCall(len(players)+len(args), 0, 0); err != nil {
		state.SetTop(top)
		gm.logError(hook, err)
	}
}

func (gm *LuaGameMode) OnPlayerJoin(p *player.Player) {
	gm.callWithPlayers("on_player_join", []*player.Player{p})
}

func (gm *LuaGameMode) OnPlayerLeave(p *player.Player) {
	gm.callWithPlayers("on_player_leave", []*player.Player{p})
}

func (gm *LuaGameMode) OnPlayerCapture(c callbacks.Capture) {
	gm.callWithPlayers("on_player_capture", []*player.Player{c.Killer, c.Victim}, c.MassGained, c.Strategic)
}

func (gm *LuaGameMode) OnPlayerRespawn(p *player.Player) {
	gm.callWithPlayers("on_player_respawn", []*player.Player{p})
}

func (gm *LuaGameMode) OnAchievementUnlocked(p *player.Player, a achievement.Achievement) {
	gm.callWithPlayers("on_achievement_unlocked", []*player.Player{p}, a.Key, a.Name)
}

func (gm *LuaGameMode) OnPowerUpCollected(p *player.Player, pu *powerup.PowerUp) {
	gm.callWithPlayers("on_power_up_collected", []*player.Player{p}, pu.Kind.String())
}

func (gm *LuaGameMode) OnTick(tick uint64) {
	if !gm.vm.HasFunction("on_tick") {
		return
	}
	if err := gm.vm.CallFunction("on_tick", int(tick)); err != nil {
		gm.logError("on_tick", err)
	}
}
