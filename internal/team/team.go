package team

import (
	"github.com/siohaza/hyperio/internal/protocol"
)

type Team struct {
	ID         string
	Name       string
	Color      string
	MaxPlayers int

	members map[string]struct{}
	score   float64
}

func (t *Team) Size() int {
	return len(t.members)
}

func (t *Team) Full() bool {
	return len(t.members) >= t.MaxPlayers
}

func (t *Team) Has(playerID string) bool {
	_, ok := t.members[playerID]
	return ok
}

func (t *Team) Score() float64 {
	return t.score
}

func (t *Team) View() protocol.TeamView {
	return protocol.TeamView{ID: t.ID, Name: t.Name, Color: t.Color, MaxPlayers: t.MaxPlayers}
}

// Member is what Recompute needs from a player.
type Member interface {
	Team() string
	Weight() float64
}

// Roster holds the configured teams in configuration order.
type Roster struct {
	teams []*Team
	byID  map[string]*Team
}

func NewRoster(defs []Team) *Roster {
	r := &Roster{byID: make(map[string]*Team, len(defs))}
	for _, def := range defs {
		t := &Team{
			ID:         def.ID,
			Name:       def.Name,
			Color:      def.Color,
			MaxPlayers: def.MaxPlayers,
			members:    make(map[string]struct{}),
		}
		r.teams = append(r.teams, t)
		r.byID[t.ID] = t
	}
	return r
}

func (r *Roster) Team(id string) (*Team, bool) {
	t, ok := r.byID[id]
	return t, ok
}

func (r *Roster) Teams() []*Team {
	return r.teams
}

func (r *Roster) Len() int {
	return len(r.teams)
}

// Assign puts playerID on the smallest team that still has room. Ties go to the team
// listed first. It reports false when every team is full.
func (r *Roster) Assign(playerID string) (string, bool) {
	var best *Team
	for _, t := range r.teams {
		if t.Full() {
			continue
		}
		if best == nil || t.Size() < best.Size() {
			best = t
		}
	}
	if best == nil {
		return "", false
	}
	best.members[playerID] = struct{}{}
	return best.ID, true
}

func (r *Roster) Leave(playerID, teamID string) {
	if t, ok := r.byID[teamID]; ok {
		delete(t.members, playerID)
	}
}

func (r *Roster) Credit(teamID string, amount float64) {
	if t, ok := r.byID[teamID]; ok {
		t.score += amount
	}
}

// Recompute rebuilds every score as the live sum of member weights.
func (r *Roster) Recompute(members []Member) {
	for _, t := range r.teams {
		t.score = 0
	}
	for _, m := range members {
		if t, ok := r.byID[m.Team()]; ok {
			t.score += m.Weight()
		}
	}
}

func (r *Roster) Scores() map[string]float64 {
	out := make(map[string]float64, len(r.teams))
	for _, t := range r.teams {
		out[t.ID] = t.score
	}
	return out
}

func (r *Roster) Views() []protocol.TeamView {
	out := make([]protocol.TeamView, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t.View())
	}
	return out
}
