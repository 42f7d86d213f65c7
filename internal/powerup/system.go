package powerup

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/siohaza/hyperio/internal/physics"
)

const DefaultRadius = 8.0

type Config struct {
	SpawnInterval time.Duration
	MaxCount      int
	Radius        float64
	// Lifetime expires un-picked power-ups; zero keeps them until collected.
	Lifetime time.Duration
}

type ActiveEffect struct {
	Kind      Kind
	Effect    Effect
	ExpiresAt time.Time
}

type System struct {
	config    Config
	powerUps  map[string]*PowerUp
	order     []string
	effects   map[string]map[Kind]ActiveEffect
	lastSpawn time.Time
	nextID    uint64
}

func NewSystem(cfg Config) *System {
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultRadius
	}
	return &System{
		config:   cfg,
		powerUps: make(map[string]*PowerUp),
		effects:  make(map[string]map[Kind]ActiveEffect),
	}
}

// Update runs the spawner and sweeps expired effects. It returns the power-up spawned this
// call, if any.
func (s *System) Update(now time.Time, width, height float64, rng *rand.Rand) *PowerUp {
	var spawned *PowerUp
	if now.Sub(s.lastSpawn) > s.config.SpawnInterval && len(s.powerUps) < s.config.MaxCount {
		kind := AllKinds[rng.Intn(len(AllKinds))]
		spawned = s.Spawn(kind, rng.Float64()*width, rng.Float64()*height, now)
		s.lastSpawn = now
	}

	for playerID, active := range s.effects {
		for kind, effect := range active {
			if now.After(effect.ExpiresAt) {
				delete(active, kind)
			}
		}
		if len(active) == 0 {
			delete(s.effects, playerID)
		}
	}

	if s.config.Lifetime > 0 {
		for _, id := range append([]string(nil), s.order...) {
			if now.Sub(s.powerUps[id].SpawnedAt) > s.config.Lifetime {
				s.remove(id)
			}
		}
	}

	return spawned
}

func (s *System) Spawn(kind Kind, x, y float64, now time.Time) *PowerUp {
	s.nextID++
	p := &PowerUp{
		ID:        "pu" + strconv.FormatUint(s.nextID, 10),
		X:         x,
		Y:         y,
		Kind:      kind,
		SpawnedAt: now,
		Radius:    s.config.Radius,
	}
	s.powerUps[p.ID] = p
	s.order = append(s.order, p.ID)
	return p
}

func (s *System) remove(id string) {
	delete(s.powerUps, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// CheckPickup collects the first power-up overlapping the circle at (x, y) with radius r.
func (s *System) CheckPickup(playerID string, x, y, r float64, now time.Time) (*PowerUp, bool) {
	for _, id := range s.order {
		p := s.powerUps[id]
		if !physics.Overlaps(x, y, r, p.X, p.Y, p.Radius) {
			continue
		}
		s.remove(id)
		s.Apply(playerID, p.Kind, now)
		return p, true
	}
	return nil, false
}

// Apply opens the effect window for kind, replacing any running window of the same kind.
func (s *System) Apply(playerID string, kind Kind, now time.Time) {
	active, ok := s.effects[playerID]
	if !ok {
		active = make(map[Kind]ActiveEffect)
		s.effects[playerID] = active
	}
	active[kind] = ActiveEffect{
		Kind:      kind,
		Effect:    kind.Effect(),
		ExpiresAt: now.Add(kind.Duration()),
	}
}

func (s *System) live(playerID string, now time.Time) []ActiveEffect {
	var out []ActiveEffect
	for _, kind := range AllKinds {
		effect, ok := s.effects[playerID][kind]
		if !ok || now.After(effect.ExpiresAt) {
			continue
		}
		out = append(out, effect)
	}
	return out
}

// EffectMultiplier compounds every active effect contributing to axis.
func (s *System) EffectMultiplier(playerID string, axis Axis, now time.Time) float64 {
	multiplier := 1.0
	for _, effect := range s.live(playerID, now) {
		multiplier *= effect.Effect.Multiplier(axis)
	}
	return multiplier
}

func (s *System) DamageReduction(playerID string, now time.Time) float64 {
	reduction := 0.0
	for _, effect := range s.live(playerID, now) {
		reduction = math.Max(reduction, effect.Effect.DamageReduction)
	}
	return math.Min(reduction, 1)
}

func (s *System) MagnetRange(playerID string, now time.Time) float64 {
	reach := 0.0
	for _, effect := range s.live(playerID, now) {
		reach = math.Max(reach, effect.Effect.MagnetRange)
	}
	return reach
}

func (s *System) HasEffect(playerID string, kind Kind, now time.Time) bool {
	effect, ok := s.effects[playerID][kind]
	return ok && !now.After(effect.ExpiresAt)
}

func (s *System) ActiveEffects(playerID string, now time.Time) []ActiveEffect {
	return s.live(playerID, now)
}

func (s *System) RemovePlayer(playerID string) {
	delete(s.effects, playerID)
}

func (s *System) Count() int {
	return len(s.powerUps)
}

func (s *System) All() []*PowerUp {
	out := make([]*PowerUp, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.powerUps[id])
	}
	return out
}
