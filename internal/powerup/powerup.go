package powerup

import (
	"fmt"
	"time"

	"github.com/siohaza/hyperio/internal/protocol"
)

type Kind uint8

const (
	KindSpeedBoost Kind = iota
	KindMassMagnet
	KindShield
	KindDoubleMass
	KindSplitImmunity
	KindVisionBoost
)

var AllKinds = []Kind{
	KindSpeedBoost,
	KindMassMagnet,
	KindShield,
	KindDoubleMass,
	KindSplitImmunity,
	KindVisionBoost,
}

func (k Kind) String() string {
	switch k {
	case KindSpeedBoost:
		return "speed_boost"
	case KindMassMagnet:
		return "mass_magnet"
	case KindShield:
		return "shield"
	case KindDoubleMass:
		return "double_mass"
	case KindSplitImmunity:
		return "split_immunity"
	case KindVisionBoost:
		return "vision_boost"
	default:
		return "unknown"
	}
}

func ParseKind(name string) (Kind, error) {
	for _, k := range AllKinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown power-up type: %q", name)
}

func (k Kind) Duration() time.Duration {
	switch k {
	case KindSpeedBoost:
		return 10 * time.Second
	case KindMassMagnet:
		return 15 * time.Second
	case KindShield:
		return 8 * time.Second
	case KindDoubleMass:
		return 12 * time.Second
	case KindSplitImmunity:
		return 6 * time.Second
	case KindVisionBoost:
		return 20 * time.Second
	default:
		return 10 * time.Second
	}
}

func (k Kind) Color() string {
	switch k {
	case KindSpeedBoost:
		return "#00FF00"
	case KindMassMagnet:
		return "#FFD700"
	case KindShield:
		return "#0080FF"
	case KindDoubleMass:
		return "#FF8000"
	case KindSplitImmunity:
		return "#FF00FF"
	case KindVisionBoost:
		return "#00FFFF"
	default:
		return "#FFFFFF"
	}
}

// Effect is the payload a power-up grants while active. Zero multipliers mean "no contribution".
type Effect struct {
	SpeedMultiplier  float64
	MagnetRange      float64
	DamageReduction  float64
	MassMultiplier   float64
	SplitProtection  bool
	VisionMultiplier float64
	Description      string
}

func (k Kind) Effect() Effect {
	switch k {
	case KindSpeedBoost:
		return Effect{SpeedMultiplier: 2.0, Description: "Double movement speed"}
	case KindMassMagnet:
		return Effect{MagnetRange: 50, Description: "Attracts nearby food"}
	case KindShield:
		return Effect{DamageReduction: 0.5, Description: "Reduces mass loss by 50%"}
	case KindDoubleMass:
		return Effect{MassMultiplier: 2.0, Description: "Double mass gain from food"}
	case KindSplitImmunity:
		return Effect{SplitProtection: true, Description: "Cannot be split by viruses"}
	case KindVisionBoost:
		return Effect{VisionMultiplier: 1.5, Description: "Increased vision range"}
	default:
		return Effect{}
	}
}

func (e Effect) View() protocol.EffectView {
	return protocol.EffectView{
		SpeedMultiplier:  e.SpeedMultiplier,
		MagnetRange:      e.MagnetRange,
		DamageReduction:  e.DamageReduction,
		MassMultiplier:   e.MassMultiplier,
		SplitProtection:  e.SplitProtection,
		VisionMultiplier: e.VisionMultiplier,
		Description:      e.Description,
	}
}

type Axis uint8

const (
	AxisSpeed Axis = iota
	AxisMass
	AxisVision
)

// Multiplier is the factor this effect applies on axis; 1 when it does not touch that axis.
func (e Effect) Multiplier(axis Axis) float64 {
	var m float64
	switch axis {
	case AxisSpeed:
		m = e.SpeedMultiplier
	case AxisMass:
		m = e.MassMultiplier
	case AxisVision:
		m = e.VisionMultiplier
	}
	if m == 0 {
		return 1
	}
	return m
}

type PowerUp struct {
	ID        string
	X         float64
	Y         float64
	Kind      Kind
	SpawnedAt time.Time
	Radius    float64
}

func (p *PowerUp) View() protocol.PowerUpView {
	return protocol.PowerUpView{
		ID:     p.ID,
		X:      p.X,
		Y:      p.Y,
		Type:   p.Kind.String(),
		Color:  p.Kind.Color(),
		Radius: p.Radius,
		Effect: p.Kind.Effect().View(),
	}
}
