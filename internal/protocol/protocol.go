package protocol

const (
	PlayerNameLen  = 16
	LeaderboardLen = 10
)

type MessageType string

// client -> server
const (
	MessageTypeJoinGame               MessageType = "joinGame"
	MessageTypeMove                   MessageType = "move"
	MessageTypeSplit                  MessageType = "split"
	MessageTypeStrategicSplit         MessageType = "strategicSplit"
	MessageTypeEject                  MessageType = "eject"
	MessageTypeSendFriendRequest      MessageType = "sendFriendRequest"
	MessageTypeRespondToFriendRequest MessageType = "respondToFriendRequest"
	MessageTypeBreakFriendship        MessageType = "breakFriendship"
)

// server -> client
const (
	MessageTypeGameState             MessageType = "gameState"
	MessageTypeGameUpdate            MessageType = "gameUpdate"
	MessageTypePlayerDied            MessageType = "playerDied"
	MessageTypeAchievementUnlocked   MessageType = "achievementUnlocked"
	MessageTypePowerUpCollected      MessageType = "powerUpCollected"
	MessageTypeStrategicKillSuccess  MessageType = "strategicKillSuccess"
	MessageTypeFriendRequest         MessageType = "friendRequest"
	MessageTypeFriendRequestSent     MessageType = "friendRequestSent"
	MessageTypeFriendshipEstablished MessageType = "friendshipEstablished"
	MessageTypeFriendRequestDeclined MessageType = "friendRequestDeclined"
	MessageTypeFriendshipBroken      MessageType = "friendshipBroken"
	MessageTypeServerMessage         MessageType = "serverMessage"
	MessageTypeError                 MessageType = "error"
)

func (t MessageType) Inbound() bool {
	switch t {
	case MessageTypeJoinGame, MessageTypeMove, MessageTypeSplit, MessageTypeStrategicSplit,
		MessageTypeEject, MessageTypeSendFriendRequest, MessageTypeRespondToFriendRequest,
		MessageTypeBreakFriendship:
		return true
	default:
		return false
	}
}

type JoinGame struct {
	PlayerName string `json:"playerName" msgpack:"playerName"`
	TeamMode   bool   `json:"teamMode" msgpack:"teamMode"`
}

type Move struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

type StrategicSplit struct {
	TargetX float64 `json:"targetX" msgpack:"targetX"`
	TargetY float64 `json:"targetY" msgpack:"targetY"`
}

type SendFriendRequest struct {
	TargetID string `json:"targetId" msgpack:"targetId"`
}

type RespondToFriendRequest struct {
	SenderID string `json:"senderId" msgpack:"senderId"`
	Accept   bool   `json:"accept" msgpack:"accept"`
}

type BreakFriendship struct {
	FriendID string `json:"friendId" msgpack:"friendId"`
}

type CellView struct {
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	Mass      float64 `json:"mass" msgpack:"mass"`
	Radius    float64 `json:"radius" msgpack:"radius"`
	VelocityX float64 `json:"velocityX,omitempty" msgpack:"velocityX,omitempty"`
	VelocityY float64 `json:"velocityY,omitempty" msgpack:"velocityY,omitempty"`
	IsMain    bool    `json:"isMainCell" msgpack:"isMainCell"`
	Strategic bool    `json:"isStrategic,omitempty" msgpack:"isStrategic,omitempty"`
}

type PlayerView struct {
	ID         string     `json:"id" msgpack:"id"`
	Name       string     `json:"name" msgpack:"name"`
	X          float64    `json:"x" msgpack:"x"`
	Y          float64    `json:"y" msgpack:"y"`
	Mass       float64    `json:"mass" msgpack:"mass"`
	Radius     float64    `json:"radius" msgpack:"radius"`
	Color      string     `json:"color" msgpack:"color"`
	Cells      []CellView `json:"cells" msgpack:"cells"`
	IsAlive    bool       `json:"isAlive" msgpack:"isAlive"`
	DirectionX float64    `json:"directionX" msgpack:"directionX"`
	DirectionY float64    `json:"directionY" msgpack:"directionY"`
	TeamID     *string    `json:"teamId" msgpack:"teamId"`
}

type FoodView struct {
	ID     string  `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Mass   float64 `json:"mass" msgpack:"mass"`
	Radius float64 `json:"radius" msgpack:"radius"`
	Color  string  `json:"color" msgpack:"color"`
}

type EffectView struct {
	SpeedMultiplier  float64 `json:"speedMultiplier,omitempty" msgpack:"speedMultiplier,omitempty"`
	MagnetRange      float64 `json:"magnetRange,omitempty" msgpack:"magnetRange,omitempty"`
	DamageReduction  float64 `json:"damageReduction,omitempty" msgpack:"damageReduction,omitempty"`
	MassMultiplier   float64 `json:"massMultiplier,omitempty" msgpack:"massMultiplier,omitempty"`
	SplitProtection  bool    `json:"splitProtection,omitempty" msgpack:"splitProtection,omitempty"`
	VisionMultiplier float64 `json:"visionMultiplier,omitempty" msgpack:"visionMultiplier,omitempty"`
	Description      string  `json:"description" msgpack:"description"`
}

type PowerUpView struct {
	ID     string     `json:"id" msgpack:"id"`
	X      float64    `json:"x" msgpack:"x"`
	Y      float64    `json:"y" msgpack:"y"`
	Type   string     `json:"type" msgpack:"type"`
	Color  string     `json:"color" msgpack:"color"`
	Radius float64    `json:"radius" msgpack:"radius"`
	Effect EffectView `json:"effect" msgpack:"effect"`
}

type LeaderboardEntry struct {
	ID     string  `json:"id" msgpack:"id"`
	Name   string  `json:"name" msgpack:"name"`
	Mass   float64 `json:"mass" msgpack:"mass"`
	TeamID *string `json:"teamId" msgpack:"teamId"`
}

// TeamRef maps an unaffiliated player to a null teamId.
func TeamRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

type AchievementView struct {
	ID          string `json:"id" msgpack:"id"`
	Name        string `json:"name" msgpack:"name"`
	Description string `json:"description" msgpack:"description"`
	Reward      string `json:"reward" msgpack:"reward"`
}

type TeamView struct {
	ID         string `json:"id" msgpack:"id"`
	Name       string `json:"name" msgpack:"name"`
	Color      string `json:"color" msgpack:"color"`
	MaxPlayers int    `json:"maxPlayers" msgpack:"maxPlayers"`
}

type ConfigView struct {
	WorldWidth   float64    `json:"worldWidth" msgpack:"worldWidth"`
	WorldHeight  float64    `json:"worldHeight" msgpack:"worldHeight"`
	FoodCount    int        `json:"foodCount" msgpack:"foodCount"`
	FoodMass     float64    `json:"foodMass" msgpack:"foodMass"`
	InitialMass  float64    `json:"initialMass" msgpack:"initialMass"`
	MinMass      float64    `json:"minMass" msgpack:"minMass"`
	MassLossRate float64    `json:"massLossRate" msgpack:"massLossRate"`
	MaxSpeed     float64    `json:"maxSpeed" msgpack:"maxSpeed"`
	EjectMass    float64    `json:"ejectMass" msgpack:"ejectMass"`
	TickRate     int        `json:"updateRate" msgpack:"updateRate"`
	Teams        []TeamView `json:"teams" msgpack:"teams"`
}

type GameState struct {
	PlayerID     string             `json:"playerId" msgpack:"playerId"`
	Players      []PlayerView       `json:"players" msgpack:"players"`
	Food         []FoodView         `json:"food" msgpack:"food"`
	PowerUps     []PowerUpView      `json:"powerUps" msgpack:"powerUps"`
	Config       ConfigView         `json:"config" msgpack:"config"`
	TeamScores   map[string]float64 `json:"teamScores" msgpack:"teamScores"`
	Achievements []AchievementView  `json:"achievements" msgpack:"achievements"`
}

type GameUpdate struct {
	Tick        uint64             `json:"tick" msgpack:"tick"`
	Players     []PlayerView       `json:"players" msgpack:"players"`
	Food        []FoodView         `json:"food" msgpack:"food"`
	PowerUps    []PowerUpView      `json:"powerUps" msgpack:"powerUps"`
	Leaderboard []LeaderboardEntry `json:"leaderboard" msgpack:"leaderboard"`
	TeamScores  map[string]float64 `json:"teamScores" msgpack:"teamScores"`
}

type PlayerDied struct {
	KillerID      string `json:"killerId" msgpack:"killerId"`
	StrategicKill bool   `json:"strategicKill" msgpack:"strategicKill"`
}

type PowerUpCollected struct {
	Type     string     `json:"type" msgpack:"type"`
	Effect   EffectView `json:"effect" msgpack:"effect"`
	Duration int64      `json:"duration" msgpack:"duration"`
}

type StrategicKillSuccess struct {
	VictimName string  `json:"victimName" msgpack:"victimName"`
	MassGained float64 `json:"massGained" msgpack:"massGained"`
}

type FriendRequest struct {
	SenderID   string `json:"senderId" msgpack:"senderId"`
	SenderName string `json:"senderName" msgpack:"senderName"`
	Message    string `json:"message" msgpack:"message"`
}

type FriendRequestSent struct {
	ReceiverID   string `json:"receiverId" msgpack:"receiverId"`
	ReceiverName string `json:"receiverName" msgpack:"receiverName"`
}

type FriendshipEstablished struct {
	FriendID   string `json:"friendId" msgpack:"friendId"`
	FriendName string `json:"friendName" msgpack:"friendName"`
	Message    string `json:"message" msgpack:"message"`
}

type FriendRequestDeclined struct {
	ReceiverID   string `json:"receiverId" msgpack:"receiverId"`
	ReceiverName string `json:"receiverName" msgpack:"receiverName"`
	Message      string `json:"message" msgpack:"message"`
}

type FriendshipBroken struct {
	FriendID   string `json:"friendId" msgpack:"friendId"`
	FriendName string `json:"friendName" msgpack:"friendName"`
	Message    string `json:"message" msgpack:"message"`
}

type ServerMessage struct {
	Text string `json:"text" msgpack:"text"`
}

type Error struct {
	Message string `json:"message" msgpack:"message"`
}
