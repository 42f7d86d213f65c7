package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	World     WorldConfig     `toml:"world"`
	Split     SplitConfig     `toml:"split"`
	PowerUps  PowerUpsConfig  `toml:"powerups"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Teams     []TeamConfig    `toml:"teams"`
}

type MasterHost struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type ServerConfig struct {
	Name       string `toml:"name"`
	Port       int    `toml:"port"`
	ENetPort   int    `toml:"enet_port"`
	MaxPlayers int    `toml:"max_players"`

	// logging configuration
	LogToFile bool `toml:"log_to_file"`

	GamemodeScript string `toml:"gamemode_script"`

	// empty keeps bans in memory only
	BansFile string `toml:"bans_file"`

	Master      bool         `toml:"master"`
	MasterHosts []MasterHost `toml:"master_hosts"`

	// ticks between two gameUpdate broadcasts
	BroadcastEvery int `toml:"broadcast_every"`
}

type WorldConfig struct {
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	FoodCount    int     `toml:"food_count"`
	FoodMass     float64 `toml:"food_mass"`
	InitialMass  float64 `toml:"initial_mass"`
	MinMass      float64 `toml:"min_mass"`
	MassLossRate float64 `toml:"mass_loss_rate"`
	MaxSpeed     float64 `toml:"max_speed"`
	EjectMass    float64 `toml:"eject_mass"`
	TickRate     int     `toml:"tick_rate"`
}

type SplitConfig struct {
	MinMass      float64 `toml:"min_mass"`
	CooldownMS   int     `toml:"cooldown_ms"`
	MergeDelayMS int     `toml:"merge_delay_ms"`
}

type PowerUpsConfig struct {
	SpawnIntervalMS int     `toml:"spawn_interval_ms"`
	MaxCount        int     `toml:"max_count"`
	Radius          float64 `toml:"radius"`
	LifetimeMS      int     `toml:"lifetime_ms"`
}

type RateLimitConfig struct {
	Enabled           bool `toml:"enabled"`
	MessagesPerSecond int  `toml:"messages_per_second"`
	BurstSize         int  `toml:"burst_size"`
	MaxViolations     int  `toml:"max_violations"`

	// address ban applied on a rate limit kick, 0 disables
	BanSeconds int `toml:"ban_seconds"`
}

type TeamConfig struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	Color      string `toml:"color"`
	MaxPlayers int    `toml:"max_players"`
}

func DefaultTeams() []TeamConfig {
	return []TeamConfig{
		{ID: "RED", Name: "Red Team", Color: "#FF4444", MaxPlayers: 10},
		{ID: "BLUE", Name: "Blue Team", Color: "#4444FF", MaxPlayers: 10},
		{ID: "GREEN", Name: "Green Team", Color: "#44FF44", MaxPlayers: 10},
		{ID: "YELLOW", Name: "Yellow Team", Color: "#FFFF44", MaxPlayers: 10},
	}
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	c := &Config{
		Server: ServerConfig{Name: "hyperio"},
		RateLimit: RateLimitConfig{
			Enabled: true,
		},
	}
	c.applyDefaults()
	return c
}

func LoadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.MaxPlayers == 0 {
		c.Server.MaxPlayers = 100
	}
	if c.Server.BroadcastEvery == 0 {
		c.Server.BroadcastEvery = 1
	}

	// world defaults
	if c.World.Width == 0 {
		c.World.Width = 5000
	}
	if c.World.Height == 0 {
		c.World.Height = 5000
	}
	if c.World.FoodCount == 0 {
		c.World.FoodCount = 2000
	}
	if c.World.FoodMass == 0 {
		c.World.FoodMass = 3
	}
	if c.World.InitialMass == 0 {
		c.World.InitialMass = 25
	}
	if c.World.MinMass == 0 {
		c.World.MinMass = 15
	}
	if c.World.MassLossRate == 0 {
		c.World.MassLossRate = 0.0001
	}
	if c.World.MaxSpeed == 0 {
		c.World.MaxSpeed = 0.167
	}
	if c.World.EjectMass == 0 {
		c.World.EjectMass = 2
	}
	if c.World.TickRate == 0 {
		c.World.TickRate = 120
	}

	// split defaults
	if c.Split.MinMass == 0 {
		c.Split.MinMass = 30
	}
	if c.Split.CooldownMS == 0 {
		c.Split.CooldownMS = 1000
	}

	// power-up defaults
	if c.PowerUps.SpawnIntervalMS == 0 {
		c.PowerUps.SpawnIntervalMS = 15000
	}
	if c.PowerUps.MaxCount == 0 {
		c.PowerUps.MaxCount = 5
	}
	if c.PowerUps.Radius == 0 {
		c.PowerUps.Radius = 8
	}

	// rate limit defaults
	if c.RateLimit.MessagesPerSecond == 0 {
		c.RateLimit.MessagesPerSecond = 60
	}
	if c.RateLimit.BurstSize == 0 {
		c.RateLimit.BurstSize = 120
	}
	if c.RateLimit.MaxViolations == 0 {
		c.RateLimit.MaxViolations = 50
	}

	if len(c.Teams) == 0 {
		c.Teams = DefaultTeams()
	}
	for i := range c.Teams {
		if c.Teams[i].MaxPlayers == 0 {
			c.Teams[i].MaxPlayers = 10
		}
		if c.Teams[i].Name == "" {
			c.Teams[i].Name = c.Teams[i].ID
		}
	}
}

func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server name cannot be empty")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Server.ENetPort < 0 || c.Server.ENetPort > 65535 {
		return fmt.Errorf("invalid enet port: %d", c.Server.ENetPort)
	}

	if c.Server.ENetPort != 0 && c.Server.ENetPort == c.Server.Port {
		return fmt.Errorf("enet port must differ from http port")
	}

	if c.Server.Master && len(c.Server.MasterHosts) == 0 {
		return fmt.Errorf("master enabled without master_hosts")
	}
	for _, h := range c.Server.MasterHosts {
		if h.Host == "" || h.Port <= 0 || h.Port > 65535 {
			return fmt.Errorf("invalid master host: %s:%d", h.Host, h.Port)
		}
	}

	if c.Server.MaxPlayers <= 0 {
		return fmt.Errorf("max_players must be positive")
	}

	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world dimensions must be positive")
	}

	if c.World.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive")
	}

	if c.World.MinMass > c.World.InitialMass {
		return fmt.Errorf("min_mass (%g) cannot exceed initial_mass (%g)", c.World.MinMass, c.World.InitialMass)
	}

	// a split halves the main cell, which must not land below min_mass
	if c.Split.MinMass < 2*c.World.MinMass {
		return fmt.Errorf("split min_mass (%g) must be at least twice world min_mass (%g)", c.Split.MinMass, c.World.MinMass)
	}

	if c.RateLimit.BanSeconds < 0 {
		return fmt.Errorf("ban_seconds cannot be negative")
	}

	if c.World.FoodCount < 0 || c.PowerUps.MaxCount < 0 {
		return fmt.Errorf("entity counts cannot be negative")
	}

	seen := make(map[string]bool, len(c.Teams))
	for _, t := range c.Teams {
		if t.ID == "" {
			return fmt.Errorf("team id cannot be empty")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate team id: %s", t.ID)
		}
		seen[t.ID] = true
	}

	return nil
}

func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.World.TickRate)
}

func (s SplitConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownMS) * time.Millisecond
}

func (s SplitConfig) MergeDelay() time.Duration {
	return time.Duration(s.MergeDelayMS) * time.Millisecond
}

func (r RateLimitConfig) BanDuration() time.Duration {
	return time.Duration(r.BanSeconds) * time.Second
}

func (p PowerUpsConfig) SpawnInterval() time.Duration {
	return time.Duration(p.SpawnIntervalMS) * time.Millisecond
}

func (p PowerUpsConfig) Lifetime() time.Duration {
	return time.Duration(p.LifetimeMS) * time.Millisecond
}
