package game

import (
	"math"
	"testing"
	"time"

	"github.com/siohaza/hyperio/internal/achievement"
	"github.com/siohaza/hyperio/internal/callbacks"
	"github.com/siohaza/hyperio/internal/food"
	"github.com/siohaza/hyperio/internal/gamestate"
	"github.com/siohaza/hyperio/internal/player"
	"github.com/siohaza/hyperio/internal/powerup"
	"github.com/siohaza/hyperio/internal/protocol"
	"github.com/siohaza/hyperio/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statSplits = achievement.StatSplits

func nan() float64 { return math.NaN() }
func inf() float64 { return math.Inf(1) }

var tick1 = epoch.Add(time.Millisecond)

// scenario 1
func TestCaptureOfSmallerUnrelatedPlayer(t *testing.T) {
	s := newSim(nil)
	a := join(t, s, "a")
	b := join(t, s, "b")
	place(a, 1000, 1000, 100)
	place(b, 1000, 1000, 50)
	s.World().Outbox.Drain()

	s.Tick(tick1)

	assert.Equal(t, 150.0, a.Mass)
	assert.True(t, b.Alive)
	assert.Equal(t, 25.0, b.Mass)
	assert.Len(t, b.Cells, 1)

	evs := s.World().Outbox.Drain()
	died := ofType(evs, protocol.MessageTypePlayerDied)
	require.Len(t, died, 1)
	assert.Equal(t, "b", died[0].To)
	assert.Equal(t, protocol.PlayerDied{KillerID: "a"}, died[0].Payload)
	assert.Empty(t, ofType(evs, protocol.MessageTypeStrategicKillSuccess))

	tracker := s.World().Achievements
	assert.Equal(t, 1.0, tracker.Stat("a", achievement.StatKills))
	assert.Zero(t, tracker.Stat("b", achievement.StatKills))
}

// scenario 2
func TestFriendsNeverCapture(t *testing.T) {
	s := newSim(nil)
	a := join(t, s, "a")
	b := join(t, s, "b")
	require.True(t, s.SendFriendRequest("a", "b"))
	require.True(t, s.RespondToFriendRequest("b", "a", true, epoch))
	place(a, 1000, 1000, 100)
	place(b, 1000, 1000, 50)

	s.Tick(tick1)

	assert.Equal(t, 100.0, a.Mass)
	assert.Equal(t, 50.0, b.Mass)
}

func TestCaptureRuleCombinations(t *testing.T) {
	cases := []struct {
		name     string
		friends  bool
		mates    bool
		mass     float64
		captured bool
	}{
		{"strangers above ratio", false, false, 100, true},
		{"strangers below ratio", false, false, 55, false},
		{"strangers at ratio", false, false, 60, false},
		{"friends above ratio", true, false, 100, false},
		{"friends below ratio", true, false, 55, false},
		{"teammates above ratio", false, true, 100, false},
		{"teammates below ratio", false, true, 55, false},
		{"friendly teammates above ratio", true, true, 100, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSim(nil)
			a := join(t, s, "a")
			b := join(t, s, "b")
			if tc.friends {
				require.True(t, s.SendFriendRequest("a", "b"))
				require.True(t, s.RespondToFriendRequest("b", "a", true, epoch))
			}
			if tc.mates {
				a.TeamID, b.TeamID = "RED", "RED"
			}
			place(a, 1000, 1000, tc.mass)
			place(b, 1000, 1000, 50)

			s.Tick(tick1)

			if tc.captured {
				assert.Equal(t, tc.mass+50, a.Mass)
				assert.Equal(t, 25.0, b.Mass)
			} else {
				assert.Equal(t, tc.mass, a.Mass)
				assert.Equal(t, 50.0, b.Mass)
			}
		})
	}
}

func TestNoCaptureWithoutOverlap(t *testing.T) {
	s := newSim(nil)
	a := join(t, s, "a")
	b := join(t, s, "b")
	place(a, 1000, 1000, 100)
	// radii 20 + ~14.1, just out of reach
	place(b, 1035, 1000, 50)

	s.Tick(tick1)

	assert.Equal(t, 100.0, a.Mass)
	assert.Equal(t, 50.0, b.Mass)
}

func addSplitCell(p *player.Player, x, y, mass float64, strategic bool) *player.Cell {
	cell := &player.Cell{X: x, Y: y, Mass: mass, SplitAt: epoch, Strategic: strategic}
	p.Cells = append(p.Cells, cell)
	return cell
}

func TestSplitCellCaptureSharesMass(t *testing.T) {
	s := newSim(nil)
	a := join(t, s, "a")
	b := join(t, s, "b")
	place(a, 1000, 1000, 100)
	cell := addSplitCell(a, 2000, 2000, 80, false)
	place(b, 2000, 2000, 50)

	s.Tick(tick1)

	assert.InDelta(t, 135.0, a.Mass, 1e-9)
	assert.InDelta(t, 95.0, cell.Mass, 1e-9)
	assert.InDelta(t, 50.0, (a.Mass-100)+(cell.Mass-80), 1e-9)
	assert.Equal(t, 25.0, b.Mass)
}

func TestStrategicCaptureEarnsBonus(t *testing.T) {
	s := newSim(nil)
	a := join(t, s, "a")
	b := join(t, s, "b")
	place(a, 1000, 1000, 100)
	cell := addSplitCell(a, 2000, 2000, 80, true)
	place(b, 2000, 2000, 50)
	s.World().Outbox.Drain()

	s.Tick(tick1)

	assert.InDelta(t, 142.0, a.Mass, 1e-9)
	assert.InDelta(t, 98.0, cell.Mass, 1e-9)

	evs := s.World().Outbox.Drain()
	success := ofType(evs, protocol.MessageTypeStrategicKillSuccess)
	require.Len(t, success, 1)
	assert.Equal(t, "a", success[0].To)
	payload := success[0].Payload.(protocol.StrategicKillSuccess)
	assert.Equal(t, "b", payload.VictimName)
	assert.InDelta(t, 60.0, payload.MassGained, 1e-9)

	died := ofType(evs, protocol.MessageTypePlayerDied)
	require.Len(t, died, 1)
	assert.True(t, died[0].Payload.(protocol.PlayerDied).StrategicKill)
	assert.Equal(t, 1.0, s.World().Achievements.Stat("a", achievement.StatStrategicKills))
}

func TestShieldReducesTransferredMass(t *testing.T) {
	s := newSim(nil)
	a := join(t, s, "a")
	b := join(t, s, "b")
	s.World().PowerUps.Apply("b", powerup.KindShield, epoch)
	place(a, 1000, 1000, 100)
	place(b, 1000, 1000, 50)

	s.Tick(tick1)

	assert.InDelta(t, 125.0, a.Mass, 1e-9)
	assert.False(t, s.World().PowerUps.HasEffect("b", powerup.KindShield, tick1), "victim effects are wiped")
}

func TestCaptureCreditsTeam(t *testing.T) {
	s := newSim(nil)
	a, _ := s.Join("a", "a", true, epoch)
	b := join(t, s, "b")
	require.Equal(t, "RED", a.TeamID)
	place(a, 1000, 1000, 100)
	place(b, 1000, 1000, 50)

	s.Tick(tick1)

	assert.Equal(t, 50.0, s.World().Achievements.Stat("a", achievement.StatTeamAssist))
	// recomputed from live masses after the capture
	assert.Equal(t, 150.0, s.World().Teams.Scores()["RED"])
}

// scenario 4
func TestDoubleMassFood(t *testing.T) {
	s := newSim(nil)
	p := join(t, s, "a")
	w := s.World()
	place(p, 1000, 1000, 25)
	w.PowerUps.Apply("a", powerup.KindDoubleMass, epoch)
	w.Food.Add(food.New("snack", 1000, 1000, 3, ""))

	s.Tick(tick1)

	assert.InDelta(t, 31.0, p.Mass, 1e-9)
	assert.Equal(t, 1.0, w.Achievements.Stat("a", achievement.StatFoodEaten))
}

func TestMagnetExtendsFoodReach(t *testing.T) {
	s := newSim(nil)
	p := join(t, s, "a")
	w := s.World()
	place(p, 1000, 1000, 25)
	// radius 10 + pellet 5 < 40 away, within the 50 magnet range
	w.Food.Add(food.New("far", 1040, 1000, 3, ""))

	s.Tick(tick1)
	assert.Equal(t, 25.0, p.Mass)

	w.PowerUps.Apply("a", powerup.KindMassMagnet, tick1)
	s.Tick(tick1.Add(time.Millisecond))
	assert.Equal(t, 28.0, p.Mass)
}

func TestFoodCountIsConserved(t *testing.T) {
	s := newSim(func(c *config.Config) { c.World.FoodCount = 40 })
	w := s.World()
	require.Equal(t, 40, w.Food.Len())

	s.Tick(tick1)
	assert.Equal(t, 40, w.Food.Len())

	p := join(t, s, "a")
	place(p, 4000, 4000, 25)
	w.Food.Add(food.New("snack", 4000, 4000, 3, ""))
	require.Equal(t, 41, w.Food.Len())

	s.Tick(tick1.Add(time.Millisecond))
	assert.Equal(t, 41, w.Food.Len())
	assert.False(t, w.Food.Contains("snack"))
}

func TestAchievementUnlockIsNotRepeated(t *testing.T) {
	s := newSim(nil)
	p := join(t, s, "a")
	w := s.World()
	place(p, 1000, 1000, 99)
	w.Outbox.Drain()

	w.Food.Add(food.New("one", 1000, 1000, 3, ""))
	s.Tick(tick1)
	first := ofType(w.Outbox.Drain(), protocol.MessageTypeAchievementUnlocked)
	require.Len(t, first, 1)
	assert.Equal(t, "tiny_titan", first[0].Payload.([]protocol.AchievementView)[0].ID)

	w.Food.Add(food.New("two", 1000, 1000, 3, ""))
	s.Tick(tick1.Add(time.Millisecond))
	assert.Empty(t, ofType(w.Outbox.Drain(), protocol.MessageTypeAchievementUnlocked))
}

func TestPowerUpPickupNotifiesPlayer(t *testing.T) {
	s := newSim(nil)
	p := join(t, s, "a")
	w := s.World()
	place(p, 1000, 1000, 25)
	w.PowerUps.Spawn(powerup.KindSpeedBoost, 1000, 1000, epoch)
	w.Outbox.Drain()

	s.Tick(tick1)

	collected := ofType(w.Outbox.Drain(), protocol.MessageTypePowerUpCollected)
	require.Len(t, collected, 1)
	payload := collected[0].Payload.(protocol.PowerUpCollected)
	assert.Equal(t, "speed_boost", payload.Type)
	assert.Equal(t, int64(10000), payload.Duration)
	assert.Equal(t, 2.0, payload.Effect.SpeedMultiplier)
	assert.Zero(t, w.PowerUps.Count())
	assert.True(t, w.PowerUps.HasEffect("a", powerup.KindSpeedBoost, tick1))
}

func TestBroadcastCadence(t *testing.T) {
	s := newSim(func(c *config.Config) { c.Server.BroadcastEvery = 3 })
	w := s.World()

	var updates []uint64
	for i := 1; i <= 6; i++ {
		s.Tick(epoch.Add(time.Duration(i) * time.Millisecond))
		for _, ev := range ofType(w.Outbox.Drain(), protocol.MessageTypeGameUpdate) {
			assert.True(t, ev.Broadcast())
			updates = append(updates, ev.Payload.(protocol.GameUpdate).Tick)
		}
	}
	assert.Equal(t, []uint64{3, 6}, updates)
}

type panickyHooks struct {
	callbacks.DefaultCallbacks
	ticks []uint64
}

func (h *panickyHooks) OnPowerUpCollected(p *player.Player, pu *powerup.PowerUp) {
	panic("script blew up")
}

func (h *panickyHooks) OnTick(tick uint64) {
	h.ticks = append(h.ticks, tick)
}

func TestPlayerFaultDoesNotAbortTick(t *testing.T) {
	hooks := &panickyHooks{}
	cfg := config.Default()
	cfg.World.FoodCount = 0
	cfg.World.MassLossRate = 0
	cfg.PowerUps.MaxCount = 0
	s := NewSimulation(gamestate.New(cfg, 1, epoch), hooks, quietLogger())
	w := s.World()

	a := join(t, s, "a")
	b := join(t, s, "b")
	place(a, 1000, 1000, 25)
	place(b, 3000, 3000, 25)
	w.PowerUps.Spawn(powerup.KindShield, 1000, 1000, epoch)
	w.Food.Add(food.New("snack", 3000, 3000, 3, ""))
	w.Outbox.Drain()

	require.NotPanics(t, func() { s.Tick(tick1) })

	assert.Equal(t, 28.0, b.Mass)
	assert.Equal(t, []uint64{1}, hooks.ticks)
	assert.Len(t, ofType(w.Outbox.Drain(), protocol.MessageTypeGameUpdate), 1)
}

func TestSurvivalAchievementsFireOnClock(t *testing.T) {
	s := newSim(nil)
	join(t, s, "a")
	w := s.World()
	w.Outbox.Drain()

	s.Tick(epoch.Add(5 * time.Minute))

	var keys []string
	for _, ev := range ofType(w.Outbox.Drain(), protocol.MessageTypeAchievementUnlocked) {
		for _, a := range ev.Payload.([]protocol.AchievementView) {
			keys = append(keys, a.ID)
		}
	}
	assert.Equal(t, []string{"survivor", "survivor_novice"}, keys)
}
