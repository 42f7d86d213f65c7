package player

// Manager keeps players in join order; capture resolution iterates in that order.
type Manager struct {
	players map[string]*Player
	order   []string
}

func NewManager() *Manager {
	return &Manager{
		players: make(map[string]*Player),
	}
}

func (m *Manager) Add(p *Player) {
	if _, exists := m.players[p.ID]; !exists {
		m.order = append(m.order, p.ID)
	}
	m.players[p.ID] = p
}

func (m *Manager) Remove(id string) bool {
	if _, exists := m.players[id]; !exists {
		return false
	}
	delete(m.players, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *Manager) Get(id string) (*Player, bool) {
	p, ok := m.players[id]
	return p, ok
}

func (m *Manager) Contains(id string) bool {
	_, ok := m.players[id]
	return ok
}

// Name implements the lookup the friendship ledger needs.
func (m *Manager) Name(id string) (string, bool) {
	p, ok := m.players[id]
	if !ok {
		return "", false
	}
	return p.Name, true
}

func (m *Manager) Count() int {
	return len(m.players)
}

func (m *Manager) All() []*Player {
	players := make([]*Player, 0, len(m.order))
	for _, id := range m.order {
		players = append(players, m.players[id])
	}
	return players
}

// ForEach walks a copy of the join order so fn may remove players.
func (m *Manager) ForEach(fn func(*Player)) {
	for _, p := range m.All() {
		if _, ok := m.players[p.ID]; !ok {
			continue
		}
		fn(p)
	}
}
