package food

import (
	"math"
	"math/rand"
	"strconv"
)

const (
	DefaultMass = 3.0
	MinRadius   = 5.0
	RadiusScale = 2.5
)

var palette = []string{
	"#FFE66D", "#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
	"#FFEAA7", "#DDA0DD", "#FF7675", "#6C5CE7", "#A29BFE",
}

type Food struct {
	ID    string
	X     float64
	Y     float64
	Mass  float64
	Color string
}

func New(id string, x, y, mass float64, color string) *Food {
	if mass <= 0 {
		mass = DefaultMass
	}
	return &Food{
		ID:    id,
		X:     x,
		Y:     y,
		Mass:  mass,
		Color: color,
	}
}

// Radius is drawn slightly larger than a player cell of the same mass so pellets stay visible.
func (f *Food) Radius() float64 {
	return math.Max(MinRadius, math.Sqrt(f.Mass)*RadiusScale)
}

func RandomColor(rng *rand.Rand) string {
	return palette[rng.Intn(len(palette))]
}

// Store holds every live pellet, including player-ejected mass.
type Store struct {
	index  map[string]int
	list   []*Food
	nextID uint64
}

func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// NextID allocates a fresh pellet id.
func (s *Store) NextID() string {
	s.nextID++
	return "f" + strconv.FormatUint(s.nextID, 10)
}

func (s *Store) Add(f *Food) {
	if f == nil {
		return
	}
	if i, ok := s.index[f.ID]; ok {
		s.list[i] = f
		return
	}
	s.index[f.ID] = len(s.list)
	s.list = append(s.list, f)
}

// Remove swaps the last pellet into the freed slot.
func (s *Store) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	last := len(s.list) - 1
	if i != last {
		s.list[i] = s.list[last]
		s.index[s.list[i].ID] = i
	}
	s.list[last] = nil
	s.list = s.list[:last]
	delete(s.index, id)
	return true
}

func (s *Store) Get(id string) (*Food, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.list[i], true
}

func (s *Store) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Store) Len() int {
	return len(s.list)
}

// All returns a copy of the pellets. The order depends only on the sequence of adds and
// removes, so a seeded world replays identically.
func (s *Store) All() []*Food {
	return append([]*Food(nil), s.list...)
}

// Spawn creates a pellet at a uniform-random point of a width x height world.
func (s *Store) Spawn(rng *rand.Rand, width, height, mass float64) *Food {
	f := New(s.NextID(), rng.Float64()*width, rng.Float64()*height, mass, RandomColor(rng))
	s.Add(f)
	return f
}
