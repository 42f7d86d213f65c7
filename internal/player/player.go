package player

import (
	"math"
	"math/rand"
	"time"

	"github.com/siohaza/hyperio/internal/food"
	"github.com/siohaza/hyperio/internal/physics"
)

const (
	EjectOffset = 10.0

	freeSplitDecayWindow      = 3000.0
	strategicSplitDecayWindow = 4000.0
	freeSplitMinDecay         = 0.1
	strategicSplitMinDecay    = 0.2
	velocityCutoff            = 0.2
	splitCellMarginDivisor    = 10.0
)

var palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#FF7675", "#6C5CE7", "#A29BFE", "#FD79A8",
}

func RandomColor(rng *rand.Rand) string {
	return palette[rng.Intn(len(palette))]
}

type Cell struct {
	X         float64
	Y         float64
	Mass      float64
	VelocityX float64
	VelocityY float64
	SplitAt   time.Time
	Strategic bool
	Main      bool
}

func (c *Cell) Radius() float64 {
	return physics.Radius(c.Mass)
}

type Player struct {
	ID         string
	Name       string
	TeamID     string
	Color      string
	Alive      bool
	X          float64
	Y          float64
	Mass       float64
	DirectionX float64
	DirectionY float64
	Cells      []*Cell
	LastSplit  time.Time
	JoinedAt   time.Time

	LastTargetX float64
	LastTargetY float64
	hasTarget   bool
}

// MovementParams carries the world settings Advance needs for one tick.
type MovementParams struct {
	MaxSpeed     float64
	TickRate     float64
	Width        float64
	Height       float64
	MinMass      float64
	MassLossRate float64
	MergeDelay   time.Duration
}

type SplitParams struct {
	MinMass  float64
	Cooldown time.Duration
}

func New(id, name, teamID, color string, x, y, mass float64, now time.Time) *Player {
	p := &Player{
		ID:       id,
		Name:     name,
		TeamID:   teamID,
		Color:    color,
		Alive:    true,
		X:        x,
		Y:        y,
		Mass:     mass,
		JoinedAt: now,
	}
	p.syncMainCell()
	return p
}

func (p *Player) Radius() float64 {
	return physics.Radius(p.Mass)
}

func (p *Player) MainCell() *Cell {
	p.syncMainCell()
	return p.Cells[0]
}

func (p *Player) Moving() bool {
	return p.DirectionX != 0 || p.DirectionY != 0
}

func (p *Player) syncMainCell() {
	if len(p.Cells) == 0 {
		p.Cells = append(p.Cells, &Cell{})
	}
	main := p.Cells[0]
	main.X = p.X
	main.Y = p.Y
	main.Mass = p.Mass
	main.Main = true
}

// GainMass credits mass to the main cell.
func (p *Player) GainMass(amount float64) {
	p.Mass += amount
	p.syncMainCell()
}

func (p *Player) UpdateDirection(targetX, targetY float64) {
	p.LastTargetX = targetX
	p.LastTargetY = targetY
	p.hasTarget = true

	dx := targetX - p.X
	dy := targetY - p.Y
	distance := math.Sqrt(dx*dx + dy*dy)

	if distance > physics.DirectionDeadZone {
		p.DirectionX = dx / distance
		p.DirectionY = dy / distance
	} else {
		p.DirectionX = 0
		p.DirectionY = 0
	}
}

func (p *Player) Advance(now time.Time, params MovementParams) {
	if !p.Alive {
		return
	}

	if p.Moving() && params.TickRate > 0 {
		perTick := physics.BasePixelsPerSec * params.MaxSpeed * physics.MassSpeedFactor(p.Mass) / params.TickRate
		p.X += p.DirectionX * perTick
		p.Y += p.DirectionY * perTick
		p.X, p.Y = physics.ClampToBounds(p.X, p.Y, p.Radius(), params.Width, params.Height)
	}

	if p.Mass > params.MinMass {
		p.Mass = math.Max(params.MinMass, p.Mass-params.MassLossRate)
	}

	kept := p.Cells[:1]
	for _, cell := range p.Cells[1:] {
		elapsed := float64(now.Sub(cell.SplitAt).Milliseconds())

		decay := math.Max(freeSplitMinDecay, 1-elapsed/freeSplitDecayWindow)
		if cell.Strategic {
			decay = math.Max(strategicSplitMinDecay, 1-elapsed/strategicSplitDecayWindow)
		}

		cell.X += cell.VelocityX * decay
		cell.Y += cell.VelocityY * decay
		margin := cell.Mass / splitCellMarginDivisor
		cell.X, cell.Y = physics.ClampToBounds(cell.X, cell.Y, margin, params.Width, params.Height)

		if decay < velocityCutoff {
			cell.VelocityX = 0
			cell.VelocityY = 0
		}

		if params.MergeDelay > 0 && now.Sub(cell.SplitAt) >= params.MergeDelay {
			p.Mass += cell.Mass
			continue
		}
		kept = append(kept, cell)
	}
	p.Cells = kept

	p.syncMainCell()
}

func (p *Player) CanSplit(now time.Time, params SplitParams) bool {
	return p.Alive && p.Mass > params.MinMass && now.Sub(p.LastSplit) > params.Cooldown
}

// Split sends half of the main cell forward along the movement direction, or toward the
// last known target when stationary.
func (p *Player) Split(now time.Time, params SplitParams) bool {
	if !p.CanSplit(now, params) {
		return false
	}

	dirX, dirY := p.DirectionX, p.DirectionY
	if dirX == 0 && dirY == 0 {
		if p.hasTarget {
			dirX, dirY = p.LastTargetX-p.X, p.LastTargetY-p.Y
		} else {
			dirX, dirY = 1, 0
		}
	}

	p.split(dirX, dirY, false, now)
	return true
}

func (p *Player) StrategicSplit(targetX, targetY float64, now time.Time, params SplitParams) bool {
	if !p.CanSplit(now, params) {
		return false
	}

	p.split(targetX-p.X, targetY-p.Y, true, now)
	return true
}

func (p *Player) split(dirX, dirY float64, strategic bool, now time.Time) {
	splitMass := math.Floor(p.Mass / 2)
	p.Mass = splitMass

	dirX, dirY = physics.Normalize(dirX, dirY)
	radius := p.Radius()

	var distance, velocity float64
	if strategic {
		velocity = math.Max(12, 20-splitMass*0.08)
		distance = radius*1.5 + velocity*1.8
		velocity *= 1.5
	} else {
		velocity = math.Max(8, 15-splitMass*0.1)
		distance = radius*2 + velocity*2
	}

	p.Cells = append(p.Cells, &Cell{
		X:         p.X + dirX*distance,
		Y:         p.Y + dirY*distance,
		Mass:      splitMass,
		VelocityX: dirX * velocity,
		VelocityY: dirY * velocity,
		SplitAt:   now,
		Strategic: strategic,
	})

	p.LastSplit = now
	p.syncMainCell()
}

// EjectMass sheds amount behind the player as a pellet. Stationary players drop it in place.
func (p *Player) EjectMass(amount float64, id, color string) (*food.Food, bool) {
	if !p.Alive || p.Mass <= amount {
		return nil, false
	}

	p.Mass -= amount

	x, y := p.X, p.Y
	if p.Moving() {
		distance := p.Radius() + EjectOffset
		x -= p.DirectionX * distance
		y -= p.DirectionY * distance
	}

	p.syncMainCell()
	return food.New(id, x, y, amount, color), true
}

func (p *Player) Respawn(x, y, mass float64) {
	p.X = x
	p.Y = y
	p.Mass = mass
	p.Cells = nil
	p.Alive = true
	p.syncMainCell()
}

// TotalMass includes split cells.
func (p *Player) TotalMass() float64 {
	total := p.Mass
	for _, cell := range p.Cells[1:] {
		total += cell.Mass
	}
	return total
}
