package player

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0          = time.Unix(1_700_000_000, 0)
	splitParams = SplitParams{MinMass: 30, Cooldown: time.Second}
	moveParams  = MovementParams{
		MaxSpeed:     0.167,
		TickRate:     120,
		Width:        5000,
		Height:       5000,
		MinMass:      15,
		MassLossRate: 0.0001,
	}
)

func newTestPlayer(mass float64) *Player {
	return New("p1", "tester", "", "#FFFFFF", 2500, 2500, mass, t0)
}

func assertRadiusInvariant(t *testing.T, p *Player) {
	t.Helper()
	assert.InDelta(t, math.Sqrt(p.Mass)*2, p.Radius(), 1e-9)
	for _, cell := range p.Cells {
		assert.InDelta(t, math.Sqrt(cell.Mass)*2, cell.Radius(), 1e-9)
	}
	main := p.Cells[0]
	assert.True(t, main.Main)
	assert.Equal(t, p.X, main.X)
	assert.Equal(t, p.Y, main.Y)
	assert.Equal(t, p.Mass, main.Mass)
}

func TestNewPlayerHasSingleMainCell(t *testing.T) {
	p := newTestPlayer(25)
	require.Len(t, p.Cells, 1)
	assert.True(t, p.Alive)
	assertRadiusInvariant(t, p)
}

func TestUpdateDirectionDeadZone(t *testing.T) {
	p := newTestPlayer(25)

	p.UpdateDirection(p.X+100, p.Y)
	assert.InDelta(t, 1.0, p.DirectionX, 1e-9)
	assert.Zero(t, p.DirectionY)

	p.UpdateDirection(p.X+3, p.Y+3)
	assert.Zero(t, p.DirectionX)
	assert.Zero(t, p.DirectionY)
}

func TestAdvanceMovesAndClamps(t *testing.T) {
	p := newTestPlayer(25)
	p.UpdateDirection(p.X+1000, p.Y)
	startX := p.X

	p.Advance(t0, moveParams)
	assert.Greater(t, p.X, startX)
	assertRadiusInvariant(t, p)

	p.X = 4999
	p.Advance(t0, moveParams)
	assert.LessOrEqual(t, p.X, 5000-p.Radius())
}

func TestAdvanceHeavierIsSlower(t *testing.T) {
	light := newTestPlayer(25)
	heavy := newTestPlayer(400)
	light.UpdateDirection(5000, 2500)
	heavy.UpdateDirection(5000, 2500)

	light.Advance(t0, moveParams)
	heavy.Advance(t0, moveParams)

	assert.Greater(t, light.X-2500, heavy.X-2500)
}

func TestAdvanceDecaysTowardMinMass(t *testing.T) {
	p := newTestPlayer(15.00005)
	p.Advance(t0, moveParams)
	assert.Equal(t, 15.0, p.Mass)

	p.Advance(t0, moveParams)
	assert.Equal(t, 15.0, p.Mass)
}

func TestSplitHalvesMassAndSetsCooldown(t *testing.T) {
	p := newTestPlayer(40)
	p.UpdateDirection(p.X+100, p.Y)

	require.True(t, p.Split(t0, splitParams))
	require.Len(t, p.Cells, 2)
	assert.Equal(t, 20.0, p.Mass)
	assert.Equal(t, 20.0, p.Cells[1].Mass)
	assert.Greater(t, p.Cells[1].X, p.X)
	assert.Greater(t, p.Cells[1].VelocityX, 0.0)
	assert.False(t, p.Cells[1].Strategic)
	assertRadiusInvariant(t, p)
}

func TestSplitConservesMass(t *testing.T) {
	for _, mass := range []float64{31, 32, 57, 100, 1001} {
		p := newTestPlayer(mass)
		require.True(t, p.Split(t0, splitParams))
		total := p.TotalMass()
		assert.LessOrEqual(t, total, mass)
		assert.GreaterOrEqual(t, total, mass-1)
	}
}

func TestSplitWithinCooldownFails(t *testing.T) {
	p := newTestPlayer(200)
	require.True(t, p.Split(t0, splitParams))

	massBefore := p.Mass
	assert.False(t, p.Split(t0.Add(500*time.Millisecond), splitParams))
	assert.False(t, p.StrategicSplit(0, 0, t0.Add(500*time.Millisecond), splitParams))
	assert.Equal(t, massBefore, p.Mass)
	assert.Len(t, p.Cells, 2)

	assert.True(t, p.Split(t0.Add(1001*time.Millisecond), splitParams))
	assert.Len(t, p.Cells, 3)
}

func TestSplitTwiceAtFortyMass(t *testing.T) {
	p := newTestPlayer(40)
	assert.True(t, p.Split(t0, splitParams))
	assert.False(t, p.Split(t0.Add(100*time.Millisecond), splitParams))
	assert.Len(t, p.Cells, 2)
}

func TestSplitBelowThresholdFails(t *testing.T) {
	p := newTestPlayer(30)
	assert.False(t, p.CanSplit(t0, splitParams))
	assert.False(t, p.Split(t0, splitParams))
	assert.Equal(t, 30.0, p.Mass)
	assert.Len(t, p.Cells, 1)
}

func TestSplitJustAboveThresholdKeepsMinMass(t *testing.T) {
	require.Equal(t, 2*moveParams.MinMass, splitParams.MinMass)

	for _, mass := range []float64{30.01, 30.5, 31, 31.99} {
		p := newTestPlayer(mass)
		require.True(t, p.Split(t0, splitParams), "mass %v", mass)
		assert.GreaterOrEqual(t, p.Mass, moveParams.MinMass, "mass %v", mass)
		assert.GreaterOrEqual(t, p.Cells[1].Mass, moveParams.MinMass, "mass %v", mass)
	}
}

func TestStationarySplitUsesLastTarget(t *testing.T) {
	p := newTestPlayer(100)
	p.UpdateDirection(p.X, p.Y-3)
	require.Zero(t, p.DirectionX)

	require.True(t, p.Split(t0, splitParams))
	assert.Less(t, p.Cells[1].Y, p.Y)
}

func TestStationarySplitWithoutTargetGoesRight(t *testing.T) {
	p := newTestPlayer(100)
	require.True(t, p.Split(t0, splitParams))
	assert.Greater(t, p.Cells[1].X, p.X)
	assert.Equal(t, p.Y, p.Cells[1].Y)
}

func TestStrategicSplitIsFasterAndCloser(t *testing.T) {
	free := newTestPlayer(100)
	free.UpdateDirection(free.X+100, free.Y)
	require.True(t, free.Split(t0, splitParams))

	strategic := newTestPlayer(100)
	require.True(t, strategic.StrategicSplit(strategic.X+100, strategic.Y, t0, splitParams))

	fc, sc := free.Cells[1], strategic.Cells[1]
	assert.True(t, sc.Strategic)
	assert.Greater(t, sc.VelocityX, fc.VelocityX)
	assert.InDelta(t, 24.0, sc.VelocityX, 1e-9)
	assert.InDelta(t, 10.0, fc.VelocityX, 1e-9)
}

func TestSplitCellMomentumDecays(t *testing.T) {
	p := newTestPlayer(100)
	p.UpdateDirection(p.X+100, p.Y)
	require.True(t, p.Split(t0, splitParams))
	p.DirectionX = 0

	cell := p.Cells[1]
	x0 := cell.X
	p.Advance(t0, moveParams)
	firstStep := cell.X - x0

	x1 := cell.X
	p.Advance(t0.Add(2*time.Second), moveParams)
	laterStep := cell.X - x1
	assert.Less(t, laterStep, firstStep)

	p.Advance(t0.Add(3*time.Second), moveParams)
	assert.Zero(t, cell.VelocityX)
}

func TestSplitCellsMergeAfterDelay(t *testing.T) {
	params := moveParams
	params.MergeDelay = 10 * time.Second
	params.MassLossRate = 0

	p := newTestPlayer(100)
	require.True(t, p.Split(t0, splitParams))

	p.Advance(t0.Add(5*time.Second), params)
	require.Len(t, p.Cells, 2)

	p.Advance(t0.Add(10*time.Second), params)
	require.Len(t, p.Cells, 1)
	assert.Equal(t, 100.0, p.Mass)
	assertRadiusInvariant(t, p)
}

func TestEjectMass(t *testing.T) {
	p := newTestPlayer(25)
	p.UpdateDirection(p.X+100, p.Y)

	f, ok := p.EjectMass(2, "e1", "#000000")
	require.True(t, ok)
	assert.Equal(t, 23.0, p.Mass)
	assert.Equal(t, 2.0, f.Mass)
	assert.Less(t, f.X, p.X)
	assert.InDelta(t, p.X-f.X, p.Radius()+EjectOffset, 1e-9)
	assertRadiusInvariant(t, p)
}

func TestEjectMassStationaryDropsInPlace(t *testing.T) {
	p := newTestPlayer(25)
	f, ok := p.EjectMass(2, "e1", "")
	require.True(t, ok)
	assert.Equal(t, p.X, f.X)
	assert.Equal(t, p.Y, f.Y)
}

func TestEjectMassBelowFloorIsNoop(t *testing.T) {
	p := newTestPlayer(2)
	f, ok := p.EjectMass(2, "e1", "")
	assert.False(t, ok)
	assert.Nil(t, f)
	assert.Equal(t, 2.0, p.Mass)
}

func TestRespawnResets(t *testing.T) {
	p := newTestPlayer(200)
	require.True(t, p.Split(t0, splitParams))
	p.Alive = false

	p.Respawn(10, 20, 25)
	assert.True(t, p.Alive)
	assert.Equal(t, 25.0, p.Mass)
	assert.Len(t, p.Cells, 1)
	assert.Equal(t, 10.0, p.X)
	assertRadiusInvariant(t, p)
}

func TestGainMassSyncsMainCell(t *testing.T) {
	p := newTestPlayer(25)
	p.GainMass(10)
	assertRadiusInvariant(t, p)
	assert.Equal(t, 35.0, p.Cells[0].Mass)
}

func TestManagerKeepsJoinOrder(t *testing.T) {
	m := NewManager()
	for _, id := range []string{"c", "a", "b"} {
		m.Add(New(id, id, "", "", 0, 0, 25, t0))
	}

	ids := func() []string {
		var out []string
		for _, p := range m.All() {
			out = append(out, p.ID)
		}
		return out
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids())

	assert.True(t, m.Remove("a"))
	assert.False(t, m.Remove("a"))
	assert.Equal(t, []string{"c", "b"}, ids())

	name, ok := m.Name("b")
	assert.True(t, ok)
	assert.Equal(t, "b", name)
	_, ok = m.Name("a")
	assert.False(t, ok)
}
