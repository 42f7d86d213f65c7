package bans

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type BanType string

const (
	BanTypeIP       BanType = "ip"
	BanTypeUsername BanType = "username"
)

type Ban struct {
	Type      BanType   `json:"type"`
	IP        string    `json:"ip,omitempty"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	BannedBy  string    `json:"banned_by"`
	BannedAt  time.Time `json:"banned_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Permanent bool      `json:"permanent"`
}

func (b *Ban) expired(now time.Time) bool {
	return !b.Permanent && now.After(b.ExpiresAt)
}

// Manager holds address and name bans. With an empty file path the list lives in memory
// only. Name bans match case-insensitively.
type Manager struct {
	ipBans       map[string]*Ban
	usernameBans map[string]*Ban
	filePath     string
	now          func() time.Time
	mu           sync.RWMutex
}

func NewManager(filePath string) *Manager {
	return &Manager{
		ipBans:       make(map[string]*Ban),
		usernameBans: make(map[string]*Ban),
		filePath:     filePath,
		now:          time.Now,
	}
}

// SetClock replaces the time source used for expiry.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (m *Manager) Load() error {
	if m.filePath == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read bans file: %w", err)
	}

	var list []*Ban
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to parse bans file: %w", err)
	}

	m.ipBans = make(map[string]*Ban)
	m.usernameBans = make(map[string]*Ban)
	now := m.now()
	for _, ban := range list {
		if ban.expired(now) {
			continue
		}

		if ban.Type == "" {
			ban.Type = BanTypeIP
		}

		switch ban.Type {
		case BanTypeIP:
			if ban.IP != "" {
				m.ipBans[ban.IP] = ban
			}
		case BanTypeUsername:
			if ban.Name != "" {
				m.usernameBans[nameKey(ban.Name)] = ban
			}
		}
	}

	return nil
}

func (m *Manager) IsBanned(ip string) (*Ban, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ban, ok := m.ipBans[ip]
	if !ok || ban.expired(m.now()) {
		return nil, false
	}
	return ban, true
}

func (m *Manager) IsBannedByName(name string) (*Ban, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ban, ok := m.usernameBans[nameKey(name)]
	if !ok || ban.expired(m.now()) {
		return nil, false
	}
	return ban, true
}

// AddBan bans an address. A zero duration is permanent.
func (m *Manager) AddBan(ip, name, reason, bannedBy string, duration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ipBans[ip] = m.newBan(BanTypeIP, ip, name, reason, bannedBy, duration)
	return m.saveUnlocked()
}

func (m *Manager) AddBanByName(name, reason, bannedBy string, duration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.usernameBans[nameKey(name)] = m.newBan(BanTypeUsername, "", strings.TrimSpace(name), reason, bannedBy, duration)
	return m.saveUnlocked()
}

func (m *Manager) newBan(typ BanType, ip, name, reason, bannedBy string, duration time.Duration) *Ban {
	now := m.now()
	ban := &Ban{
		Type:      typ,
		IP:        ip,
		Name:      name,
		Reason:    reason,
		BannedBy:  bannedBy,
		BannedAt:  now,
		Permanent: duration == 0,
	}
	if duration > 0 {
		ban.ExpiresAt = now.Add(duration)
	}
	return ban
}

func (m *Manager) RemoveBan(ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.ipBans, ip)
	return m.saveUnlocked()
}

func (m *Manager) RemoveBanByName(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.usernameBans, nameKey(name))
	return m.saveUnlocked()
}

// GetAll lists active bans, address bans first, oldest first within each kind.
func (m *Manager) GetAll() []*Ban {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeUnlocked()
}

// Cleanup forgets expired bans and rewrites the file.
func (m *Manager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for ip, ban := range m.ipBans {
		if ban.expired(now) {
			delete(m.ipBans, ip)
			removed++
		}
	}
	for name, ban := range m.usernameBans {
		if ban.expired(now) {
			delete(m.usernameBans, name)
			removed++
		}
	}

	if removed == 0 {
		return nil
	}
	return m.saveUnlocked()
}

func (m *Manager) activeUnlocked() []*Ban {
	now := m.now()
	list := make([]*Ban, 0, len(m.ipBans)+len(m.usernameBans))
	for _, ban := range m.ipBans {
		if !ban.expired(now) {
			list = append(list, ban)
		}
	}
	for _, ban := range m.usernameBans {
		if !ban.expired(now) {
			list = append(list, ban)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Type != list[j].Type {
			return list[i].Type == BanTypeIP
		}
		if !list[i].BannedAt.Equal(list[j].BannedAt) {
			return list[i].BannedAt.Before(list[j].BannedAt)
		}
		return list[i].IP+list[i].Name < list[j].IP+list[j].Name
	})
	return list
}

func (m *Manager) saveUnlocked() error {
	if m.filePath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(m.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create bans directory: %w", err)
	}

	data, err := json.MarshalIndent(m.activeUnlocked(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bans: %w", err)
	}

	if err := os.WriteFile(m.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write bans file: %w", err)
	}

	return nil
}
