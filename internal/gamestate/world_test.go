package gamestate

import (
	"fmt"
	"testing"
	"time"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(1_700_000_000, 0)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.World.Width = 1000
	cfg.World.Height = 800
	cfg.World.FoodCount = 50
	return cfg
}

func TestNewSeedsFoodInsideArena(t *testing.T) {
	w := New(testConfig(), 7, epoch)
	require.Equal(t, 50, w.Food.Len())
	for _, f := range w.Food.All() {
		assert.GreaterOrEqual(t, f.X, 0.0)
		assert.Less(t, f.X, 1000.0)
		assert.Less(t, f.Y, 800.0)
		assert.Equal(t, 3.0, f.Mass)
	}
	assert.Equal(t, 4, w.Teams.Len())
}

func TestSameSeedSameWorld(t *testing.T) {
	a := New(testConfig(), 42, epoch)
	b := New(testConfig(), 42, epoch)
	assert.Equal(t, a.FoodViews(), b.FoodViews())
}

func TestLeaderboardTopTenByMass(t *testing.T) {
	w := New(testConfig(), 1, epoch)
	for i := 0; i < 12; i++ {
		mass := float64(20 + i)
		if i == 3 {
			mass = 31
		}
		w.Players.Add(player.New(fmt.Sprintf("p%d", i), fmt.Sprintf("P%d", i), "", "#fff", 10, 10, mass, epoch))
	}

	board := w.Leaderboard()
	require.Len(t, board, 10)
	assert.Equal(t, "p3", board[0].ID)
	assert.Equal(t, "p11", board[1].ID)
	for i := 1; i < len(board); i++ {
		assert.GreaterOrEqual(t, board[i-1].Mass, board[i].Mass)
	}
}

func TestGameStateCarriesJoinerAchievements(t *testing.T) {
	w := New(testConfig(), 1, epoch)
	p := player.New("p1", "Ann", "RED", "#fff", 10, 10, 25, epoch)
	w.Players.Add(p)
	w.Achievements.InitializePlayer("p1", epoch)
	w.Achievements.UpdatePlayerStat("p1", achievement.StatMass, 150, epoch)

	state := w.GameState("p1")
	assert.Equal(t, "p1", state.PlayerID)
	require.Len(t, state.Players, 1)
	require.NotNil(t, state.Players[0].TeamID)
	assert.Equal(t, "RED", *state.Players[0].TeamID)
	assert.True(t, state.Players[0].Cells[0].IsMain)
	require.Len(t, state.Achievements, 1)
	assert.Equal(t, "tiny_titan", state.Achievements[0].ID)
	assert.Equal(t, 120, state.Config.TickRate)
	assert.Len(t, state.Config.Teams, 4)
}

func TestMovementParamsScaleSpeed(t *testing.T) {
	w := New(testConfig(), 1, epoch)
	params := w.MovementParams(2)
	assert.InDelta(t, 0.334, params.MaxSpeed, 1e-9)
	assert.Equal(t, 120.0, params.TickRate)
	assert.Equal(t, time.Second, w.SplitParams().Cooldown)
}

func TestAreTeammates(t *testing.T) {
	a := player.New("a", "A", "", "#fff", 0, 0, 25, epoch)
	b := player.New("b", "B", "", "#fff", 0, 0, 25, epoch)
	assert.False(t, AreTeammates(a, b))

	a.TeamID, b.TeamID = "RED", "RED"
	assert.True(t, AreTeammates(a, b))
	b.TeamID = "BLUE"
	assert.False(t, AreTeammates(a, b))
}
