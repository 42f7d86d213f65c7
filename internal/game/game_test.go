package game

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/events"
	"github.com/siohaza/hyperio/internal/gamestate"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/protocol"
	"github.com/siohaza/hyperio/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(1_700_000_000, 0)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSim builds an empty, drift-free arena: no food, no power-up spawns, no mass decay.
func newSim(tweak func(*config.Config)) *Simulation {
	cfg := config.Default()
	cfg.World.FoodCount = 0
	cfg.World.MassLossRate = 0
	cfg.PowerUps.MaxCount = 0
	if tweak != nil {
		tweak(cfg)
	}
	return NewSimulation(gamestate.New(cfg, 1, epoch), nil, quietLogger())
}

func join(t *testing.T, s *Simulation, id string) *player.Player {
	t.Helper()
	p, ok := s.Join(id, id, false, epoch)
	require.True(t, ok)
	return p
}

func place(p *player.Player, x, y, mass float64) {
	p.X, p.Y, p.Mass = x, y, mass
	p.MainCell()
}

func ofType(evs []events.Event, typ protocol.MessageType) []events.Event {
	var out []events.Event
	for _, ev := range evs {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestJoinSendsGameState(t *testing.T) {
	s := newSim(nil)

	p, ok := s.Join("c1", "  Ann  ", false, epoch)
	require.True(t, ok)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, 25.0, p.Mass)
	assert.True(t, p.Alive)
	assert.Empty(t, p.TeamID)
	assert.True(t, s.World().Achievements.Tracked("c1"))

	evs := s.World().Outbox.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, "c1", evs[0].To)
	assert.Equal(t, protocol.MessageTypeGameState, evs[0].Type)
	state, ok := evs[0].Payload.(protocol.GameState)
	require.True(t, ok)
	assert.Equal(t, "c1", state.PlayerID)
	require.Len(t, state.Players, 1)
}

func TestJoinRejections(t *testing.T) {
	s := newSim(func(c *config.Config) { c.Server.MaxPlayers = 1 })

	join(t, s, "c1")

	_, ok := s.Join("c1", "again", false, epoch)
	assert.False(t, ok, "duplicate id")

	_, ok = s.Join("c2", "late", false, epoch)
	assert.False(t, ok, "server full")

	_, ok = s.Join("", "nobody", false, epoch)
	assert.False(t, ok, "empty id")
}

func TestJoinFallsBackToGeneratedName(t *testing.T) {
	s := newSim(nil)
	p, ok := s.Join("c1", "\x00\x01", false, epoch)
	require.True(t, ok)
	assert.Regexp(t, `^Player\d{1,3}$`, p.Name)
}

func TestJoinTeamModeBalancesTeams(t *testing.T) {
	s := newSim(nil)

	a, _ := s.Join("a", "a", true, epoch)
	b, _ := s.Join("b", "b", true, epoch)
	assert.Equal(t, "RED", a.TeamID)
	assert.Equal(t, "BLUE", b.TeamID)
	assert.Equal(t, "#FF4444", a.Color)
	assert.Equal(t, "#4444FF", b.Color)

	require.True(t, s.Leave("a"))
	c, _ := s.Join("c", "c", true, epoch)
	assert.Equal(t, "RED", c.TeamID)
	assert.Equal(t, "#FF4444", c.Color)
}

func TestJoinWithoutTeamUsesPalette(t *testing.T) {
	s := newSim(func(c *config.Config) {
		c.Teams = []config.TeamConfig{{ID: "RED", Name: "Red Team", Color: "#FF4444", MaxPlayers: 1}}
	})

	solo := join(t, s, "solo")
	assert.Empty(t, solo.TeamID)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, solo.Color)

	first, ok := s.Join("a", "a", true, epoch)
	require.True(t, ok)
	assert.Equal(t, "#FF4444", first.Color)

	// roster full: joins unaffiliated with a palette colour
	overflow, ok := s.Join("b", "b", true, epoch)
	require.True(t, ok)
	assert.Empty(t, overflow.TeamID)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, overflow.Color)
}

func TestLeaveClearsEverything(t *testing.T) {
	s := newSim(nil)
	join(t, s, "a")
	join(t, s, "b")
	require.True(t, s.SendFriendRequest("a", "b"))
	require.True(t, s.RespondToFriendRequest("b", "a", true, epoch))

	require.True(t, s.Leave("a"))
	assert.False(t, s.Leave("a"))

	w := s.World()
	assert.False(t, w.Players.Contains("a"))
	assert.False(t, w.Achievements.Tracked("a"))
	assert.Empty(t, w.Friends.Friends("b"))
}

func TestMoveRejectsNonFiniteTargets(t *testing.T) {
	s := newSim(nil)
	p := join(t, s, "a")
	place(p, 100, 100, 25)

	assert.False(t, s.Move("ghost", 1, 1))
	assert.False(t, s.Move("a", nan(), 1))
	assert.True(t, s.Move("a", 200, 100))
	assert.InDelta(t, 1.0, p.DirectionX, 1e-9)
}

// scenario 3: the second split inside the cooldown window fails
func TestSplitTwiceWithinCooldown(t *testing.T) {
	s := newSim(nil)
	p := join(t, s, "a")
	place(p, 500, 500, 40)

	assert.True(t, s.Split("a", epoch))
	assert.False(t, s.Split("a", epoch.Add(100*time.Millisecond)))
	assert.Len(t, p.Cells, 2)
	assert.Equal(t, 1.0, s.World().Achievements.Stat("a", statSplits))
}

func TestStrategicSplitValidatesTarget(t *testing.T) {
	s := newSim(nil)
	p := join(t, s, "a")
	place(p, 500, 500, 80)

	assert.False(t, s.StrategicSplit("a", inf(), 0, epoch))
	assert.True(t, s.StrategicSplit("a", 900, 500, epoch))
	require.Len(t, p.Cells, 2)
	assert.True(t, p.Cells[1].Strategic)
}

func TestEjectKeepsMinimumMass(t *testing.T) {
	s := newSim(nil)
	p := join(t, s, "a")
	w := s.World()

	place(p, 500, 500, 25)
	require.True(t, s.Eject("a"))
	assert.Equal(t, 23.0, p.Mass)
	assert.Equal(t, 1, w.Food.Len())

	place(p, 500, 500, 17)
	assert.False(t, s.Eject("a"))
	assert.Equal(t, 17.0, p.Mass)
	assert.Equal(t, 1, w.Food.Len())

	assert.False(t, s.Eject("ghost"))
}

func TestFriendshipStaysSymmetric(t *testing.T) {
	s := newSim(nil)
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		join(t, s, id)
	}

	require.True(t, s.SendFriendRequest("a", "b"))
	require.True(t, s.SendFriendRequest("c", "a"))
	require.True(t, s.SendFriendRequest("d", "a"))
	assert.False(t, s.SendFriendRequest("a", "b"), "duplicate request")
	assert.False(t, s.SendFriendRequest("a", "ghost"))

	require.True(t, s.RespondToFriendRequest("b", "a", true, epoch))
	require.True(t, s.RespondToFriendRequest("a", "c", true, epoch))
	require.True(t, s.RespondToFriendRequest("a", "d", false, epoch))
	assert.False(t, s.RespondToFriendRequest("a", "d", true, epoch), "request already consumed")

	require.True(t, s.BreakFriendship("c", "a"))
	assert.False(t, s.BreakFriendship("c", "a"))

	ledger := s.World().Friends
	for _, p := range ids {
		for _, q := range ids {
			assert.Equal(t, ledger.AreFriends(p, q), ledger.AreFriends(q, p), "%s/%s", p, q)
		}
	}
	assert.Equal(t, []string{"b"}, ledger.Friends("a"))
}

func TestFriendsStatKeepsPeakAfterBreak(t *testing.T) {
	s := newSim(nil)
	for _, id := range []string{"a", "b", "c"} {
		join(t, s, id)
	}

	require.True(t, s.SendFriendRequest("b", "a"))
	require.True(t, s.SendFriendRequest("c", "a"))
	require.True(t, s.RespondToFriendRequest("a", "b", true, epoch))
	require.True(t, s.RespondToFriendRequest("a", "c", true, epoch))

	tracker := s.World().Achievements
	assert.Equal(t, 2.0, tracker.Stat("a", achievement.StatFriends))
	assert.Equal(t, 1.0, tracker.Stat("b", achievement.StatFriends))

	require.True(t, s.BreakFriendship("a", "c"))
	assert.Equal(t, 2.0, tracker.Stat("a", achievement.StatFriends))
	assert.Equal(t, 1.0, tracker.Stat("c", achievement.StatFriends))
}

func TestThreeFriendsUnlockFriendlyGiant(t *testing.T) {
	s := newSim(nil)
	for _, id := range []string{"hub", "x", "y", "z"} {
		join(t, s, id)
	}
	s.World().Outbox.Drain()

	for _, id := range []string{"x", "y", "z"} {
		require.True(t, s.SendFriendRequest(id, "hub"))
		require.True(t, s.RespondToFriendRequest("hub", id, true, epoch))
	}

	var keys []string
	for _, ev := range ofType(s.World().Outbox.Drain(), protocol.MessageTypeAchievementUnlocked) {
		if ev.To != "hub" {
			continue
		}
		for _, a := range ev.Payload.([]protocol.AchievementView) {
			keys = append(keys, a.ID)
		}
	}
	assert.Equal(t, []string{"friendly_giant"}, keys)
}
