package achievement

import (
	"time"
)

type reward struct {
	permanent bool
	expiresAt time.Time
}

type progress struct {
	startedAt time.Time
	stats     [statCount]float64
	unlocked  map[ID]bool
	order     []ID
	rewards   map[ID]reward
}

// Tracker keeps per-player stat counters and unlocks. Not safe for concurrent use; the
// simulation goroutine owns it.
type Tracker struct {
	players map[string]*progress
}

func NewTracker() *Tracker {
	return &Tracker{players: make(map[string]*progress)}
}

// InitializePlayer resets all progress for id and starts its survival clock at now.
func (t *Tracker) InitializePlayer(id string, now time.Time) {
	t.players[id] = &progress{
		startedAt: now,
		unlocked:  make(map[ID]bool),
		rewards:   make(map[ID]reward),
	}
}

func (t *Tracker) RemovePlayer(id string) {
	delete(t.players, id)
}

func (t *Tracker) Tracked(id string) bool {
	_, ok := t.players[id]
	return ok
}

// UpdatePlayerStat raises stat to value (counters only grow) and returns achievements
// unlocked by this call. Survival time ignores value and is measured from the join time.
func (t *Tracker) UpdatePlayerStat(id string, stat Stat, value float64, now time.Time) []Achievement {
	p, ok := t.players[id]
	if !ok || stat >= statCount {
		return nil
	}

	if stat == StatSurvivalTime {
		p.stats[stat] = float64(now.Sub(p.startedAt).Milliseconds())
	} else if value > p.stats[stat] {
		p.stats[stat] = value
	}

	var unlocked []Achievement
	for _, a := range Definitions {
		if p.unlocked[a.ID] {
			continue
		}
		if p.stats[a.Requirement.Stat] < a.Requirement.Value {
			continue
		}
		p.unlocked[a.ID] = true
		p.order = append(p.order, a.ID)
		p.grant(a.ID, now)
		unlocked = append(unlocked, a)
	}
	return unlocked
}

func (p *progress) grant(id ID, now time.Time) {
	d := RewardDuration(id)
	if d == Permanent {
		p.rewards[id] = reward{permanent: true}
		return
	}
	p.rewards[id] = reward{expiresAt: now.Add(d)}
}

// GetActiveRewards returns unexpired rewards in definition order, dropping expired ones.
func (t *Tracker) GetActiveRewards(id string, now time.Time) []Achievement {
	p, ok := t.players[id]
	if !ok {
		return nil
	}

	var active []Achievement
	for _, a := range Definitions {
		r, ok := p.rewards[a.ID]
		if !ok {
			continue
		}
		if !r.permanent && !now.Before(r.expiresAt) {
			delete(p.rewards, a.ID)
			continue
		}
		active = append(active, a)
	}
	return active
}

// GetPlayerAchievements lists unlocked achievements in unlock order.
func (t *Tracker) GetPlayerAchievements(id string) []Achievement {
	p, ok := t.players[id]
	if !ok {
		return nil
	}
	out := make([]Achievement, 0, len(p.order))
	for _, aid := range p.order {
		if a, ok := Lookup(aid); ok {
			out = append(out, a)
		}
	}
	return out
}

func (t *Tracker) Stat(id string, stat Stat) float64 {
	p, ok := t.players[id]
	if !ok || stat >= statCount {
		return 0
	}
	return p.stats[stat]
}

func (t *Tracker) Stats(id string) map[Stat]float64 {
	p, ok := t.players[id]
	if !ok {
		return nil
	}
	out := make(map[Stat]float64, statCount)
	for s := Stat(0); s < statCount; s++ {
		out[s] = p.stats[s]
	}
	return out
}
