package achievement

import (
	"time"

	"github.com/siohaza/hyperio/internal/protocol"
)

type Stat uint8

const (
	StatMass Stat = iota
	StatKills
	StatSurvivalTime
	StatFriends
	StatTeamAssist
	StatSplits
	StatFoodEaten
	StatStrategicKills

	statCount
)

func (s Stat) String() string {
	switch s {
	case StatMass:
		return "mass"
	case StatKills:
		return "kills"
	case StatSurvivalTime:
		return "survival_time"
	case StatFriends:
		return "friends"
	case StatTeamAssist:
		return "team_assist"
	case StatSplits:
		return "splits"
	case StatFoodEaten:
		return "food_eaten"
	case StatStrategicKills:
		return "strategic_kills"
	default:
		return "unknown"
	}
}

type ID uint8

const (
	TinyTitan ID = iota
	MediumMogul
	GiantGuardian
	FirstBlood
	SerialConsumer
	ApexPredator
	Survivor
	MarathonRunner
	SurvivorNovice
	SurvivorExpert
	FriendlyGiant
	TeamPlayer
	SplitMaster
	FoodCollector
	StrategicStriker
	TacticalMaster
	SplitAssassin
)

type Requirement struct {
	Stat  Stat
	Value float64
}

type Achievement struct {
	ID          ID
	Key         string
	Name        string
	Description string
	Requirement Requirement
	Reward      string
}

func (a Achievement) View() protocol.AchievementView {
	return protocol.AchievementView{
		ID:          a.Key,
		Name:        a.Name,
		Description: a.Description,
		Reward:      a.Reward,
	}
}

// Definitions is scanned in this order on every stat update.
var Definitions = []Achievement{
	{TinyTitan, "tiny_titan", "Tiny Titan", "Reach 100 mass", Requirement{StatMass, 100}, "Mass boost: +10"},
	{MediumMogul, "medium_mogul", "Medium Mogul", "Reach 500 mass", Requirement{StatMass, 500}, "Mass boost: +25"},
	{GiantGuardian, "giant_guardian", "Giant Guardian", "Reach 1000 mass", Requirement{StatMass, 1000}, "Mass boost: +50"},

	{FirstBlood, "first_blood", "First Blood", "Eat your first player", Requirement{StatKills, 1}, "Speed boost for 10 seconds"},
	{SerialConsumer, "serial_consumer", "Serial Consumer", "Eat 5 players", Requirement{StatKills, 5}, "Temporary immunity to splitting"},
	{ApexPredator, "apex_predator", "Apex Predator", "Eat 10 players", Requirement{StatKills, 10}, "Mass magnet for 30 seconds"},

	{Survivor, "survivor", "Survivor", "Survive for 5 minutes", Requirement{StatSurvivalTime, 300000}, "Damage resistance for 1 minute"},
	{MarathonRunner, "marathon_runner", "Marathon Runner", "Survive for 15 minutes", Requirement{StatSurvivalTime, 900000}, "Permanent speed boost"},
	{SurvivorNovice, "survivor_novice", "Survivor Novice", "Survive for 5 minutes", Requirement{StatSurvivalTime, 300000}, "Shield for 15 seconds"},
	{SurvivorExpert, "survivor_expert", "Survivor Expert", "Survive for 15 minutes", Requirement{StatSurvivalTime, 900000}, "Permanent speed boost"},

	{FriendlyGiant, "friendly_giant", "Friendly Giant", "Have 3 friends simultaneously", Requirement{StatFriends, 3}, "Friend protection aura"},
	{TeamPlayer, "team_player", "Team Player", "Help teammates gain 500 total mass", Requirement{StatTeamAssist, 500}, "Team mass sharing efficiency +50%"},

	{SplitMaster, "split_master", "Split Master", "Successfully split 20 times", Requirement{StatSplits, 20}, "Reduced split cooldown"},
	{FoodCollector, "food_collector", "Food Collector", "Eat 100 food pellets", Requirement{StatFoodEaten, 100}, "Food gives double mass for 1 minute"},

	{StrategicStriker, "strategic_striker", "Strategic Striker", "Capture your first player with a strategic split", Requirement{StatStrategicKills, 1}, "Enhanced split velocity for 60 seconds"},
	{TacticalMaster, "tactical_master", "Tactical Master", "Capture 5 players with strategic splits", Requirement{StatStrategicKills, 5}, "Permanent strategic split cooldown reduction"},
	{SplitAssassin, "split_assassin", "Split Assassin", "Capture 10 players with strategic splits", Requirement{StatStrategicKills, 10}, "Strategic splits grant 50% bonus mass"},
}

func Lookup(id ID) (Achievement, bool) {
	for _, a := range Definitions {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Permanent marks a reward that never expires.
const Permanent time.Duration = -1

const defaultRewardDuration = 30 * time.Second

func RewardDuration(id ID) time.Duration {
	switch id {
	case FirstBlood:
		return 10 * time.Second
	case Survivor, FoodCollector, StrategicStriker:
		return time.Minute
	case ApexPredator:
		return 30 * time.Second
	case MarathonRunner, FriendlyGiant, TeamPlayer, SplitMaster, TacticalMaster, SplitAssassin:
		return Permanent
	default:
		return defaultRewardDuration
	}
}
