package lua

import (
	"time"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/events"
	"github.com/siohaza/hyperio/internal/gamestate"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/powerup"
	"github.com/siohaza/hyperio/internal/protocol"

	"github.com/Shopify/go-lua"
)

// GameAPI exposes the world to game mode scripts. Messages sent from Lua go through the
// world outbox like every other outbound event.
type GameAPI struct {
	world      *gamestate.World
	gamemodeVM *VM
}

func NewGameAPI(w *gamestate.World) *GameAPI {
	return &GameAPI{
		world: w,
	}
}

func (api *GameAPI) SetGamemodeVM(vm *VM) {
	api.gamemodeVM = vm
}

func (api *GameAPI) RegisterFunctions(vm *VM) {
	state := vm.State()

	state.Register("get_player", api.getPlayer)
	state.Register("get_player_count", api.getPlayerCount)
	state.Register("get_player_ids", api.getPlayerIDs)
	state.Register("get_player_mass", api.getPlayerMass)
	state.Register("get_player_stat", api.getPlayerStat)
	state.Register("get_team_score", api.getTeamScore)
	state.Register("are_friends", api.areFriends)

	state.Register("send_message", api.sendMessage)
	state.Register("broadcast_message", api.broadcastMessage)

	state.Register("spawn_power_up", api.spawnPowerUp)
	state.Register("get_power_up_count", api.getPowerUpCount)
	state.Register("get_food_count", api.getFoodCount)

	state.Register("get_world_size", api.getWorldSize)
	state.Register("get_server_name", api.getServerName)
	state.Register("get_tick", api.getTick)

	state.Register("schedule_callback", api.scheduleCallback)
	state.Register("cancel_callback", api.cancelCallback)
}

func PushPlayer(state *lua.State, p *player.Player) {
	pushPlayerTable(state, p)
}

func pushPlayerTable(state *lua.State, p *player.Player) {
	if p == nil {
		state.PushNil()
		return
	}

	state.NewTable()
	state.PushString(p.ID)
	state.SetField(-2, "id")
	state.PushString(p.Name)
	state.SetField(-2, "name")
	state.PushString(p.TeamID)
	state.SetField(-2, "team")
	state.PushString(p.Color)
	state.SetField(-2, "color")
	state.PushBoolean(p.Alive)
	state.SetField(-2, "alive")
	state.PushNumber(p.Mass)
	state.SetField(-2, "mass")
	state.PushNumber(p.Radius())
	state.SetField(-2, "radius")
	state.PushNumber(p.X)
	state.SetField(-2, "x")
	state.PushNumber(p.Y)
	state.SetField(-2, "y")
	state.PushInteger(len(p.Cells))
	state.SetField(-2, "cells")
}

func (api *GameAPI) lookup(state *lua.State, idx int) *player.Player {
	id, ok := state.ToString(idx)
	if !ok {
		return nil
	}
	p, _ := api.world.Players.Get(id)
	return p
}

func (api *GameAPI) getPlayer(state *lua.State) int {
	pushPlayerTable(state, api.lookup(state, 1))
	return 1
}

func (api *GameAPI) getPlayerCount(state *lua.State) int {
	state.PushInteger(api.world.Players.Count())
	return 1
}

func (api *GameAPI) getPlayerIDs(state *lua.State) int {
	state.NewTable()
	for i, p := range api.world.Players.All() {
		state.PushString(p.ID)
		state.RawSetInt(-2, i+1)
	}
	return 1
}

func (api *GameAPI) getPlayerMass(state *lua.State) int {
	p := api.lookup(state, 1)
	if p == nil {
		state.PushNumber(0)
		return 1
	}
	state.PushNumber(p.Mass)
	return 1
}

var statNames = map[string]achievement.Stat{
	"mass":            achievement.StatMass,
	"kills":           achievement.StatKills,
	"survival_time":   achievement.StatSurvivalTime,
	"friends":         achievement.StatFriends,
	"team_assist":     achievement.StatTeamAssist,
	"splits":          achievement.StatSplits,
	"food_eaten":      achievement.StatFoodEaten,
	"strategic_kills": achievement.StatStrategicKills,
}

func (api *GameAPI) getPlayerStat(state *lua.State) int {
	id, _ := state.ToString(1)
	name, _ := state.ToString(2)

	stat, ok := statNames[name]
	if !ok {
		state.PushNumber(0)
		return 1
	}
	state.PushNumber(api.world.Achievements.Stat(id, stat))
	return 1
}

func (api *GameAPI) getTeamScore(state *lua.State) int {
	teamID, _ := state.ToString(1)

	t, ok := api.world.Teams.Team(teamID)
	if !ok {
		state.PushNumber(0)
		return 1
	}
	state.PushNumber(t.Score())
	return 1
}

func (api *GameAPI) areFriends(state *lua.State) int {
	a, _ := state.ToString(1)
	b, _ := state.ToString(2)
	state.PushBoolean(api.world.Friends.AreFriends(a, b))
	return 1
}

func (api *GameAPI) sendMessage(state *lua.State) int {
	p := api.lookup(state, 1)
	text, _ := state.ToString(2)

	if p != nil && text != "" {
		api.world.Emit(events.To(p.ID, protocol.MessageTypeServerMessage, protocol.ServerMessage{Text: text}))
	}
	return 0
}

func (api *GameAPI) broadcastMessage(state *lua.State) int {
	text, _ := state.ToString(1)

	if text != "" {
		api.world.Emit(events.Broadcast(protocol.MessageTypeServerMessage, protocol.ServerMessage{Text: text}))
	}
	return 0
}

// spawn_power_up(type [, x, y]) returns the new id, or nil for an unknown type.
func (api *GameAPI) spawnPowerUp(state *lua.State) int {
	name, _ := state.ToString(1)
	kind, err := powerup.ParseKind(name)
	if err != nil {
		state.PushNil()
		return 1
	}

	x, y := api.world.RandomPosition()
	if state.Top() >= 3 {
		if v, ok := state.ToNumber(2); ok {
			x = v
		}
		if v, ok := state.ToNumber(3); ok {
			y = v
		}
	}

	p := api.world.PowerUps.Spawn(kind, x, y, api.clock())
	state.PushString(p.ID)
	return 1
}

func (api *GameAPI) getPowerUpCount(state *lua.State) int {
	state.PushInteger(api.world.PowerUps.Count())
	return 1
}

func (api *GameAPI) getFoodCount(state *lua.State) int {
	state.PushInteger(api.world.Food.Len())
	return 1
}

func (api *GameAPI) getWorldSize(state *lua.State) int {
	state.PushNumber(api.world.Width())
	state.PushNumber(api.world.Height())
	return 2
}

func (api *GameAPI) getServerName(state *lua.State) int {
	state.PushString(api.world.Config.Server.Name)
	return 1
}

func (api *GameAPI) getTick(state *lua.State) int {
	state.PushInteger(int(api.world.Tick))
	return 1
}

func (api *GameAPI) scheduleCallback(state *lua.State) int {
	seconds, _ := state.ToNumber(1)
	callback, _ := state.ToString(2)
	repeat := false
	if state.Top() >= 3 && state.IsBoolean(3) {
		repeat = state.ToBoolean(3)
	}

	if api.gamemodeVM == nil {
		state.PushInteger(-1)
		return 1
	}

	interval := time.Duration(seconds * float64(time.Second))
	timerID := api.gamemodeVM.RegisterTimer(callback, interval, repeat)
	state.PushInteger(timerID)
	return 1
}

func (api *GameAPI) cancelCallback(state *lua.State) int {
	id, _ := state.ToInteger(1)

	if api.gamemodeVM != nil {
		api.gamemodeVM.CancelTimer(id)
	}

	return 0
}

func (api *GameAPI) clock() time.Time {
	if api.gamemodeVM != nil {
		return api.gamemodeVM.clock
	}
	return time.Now()
}
