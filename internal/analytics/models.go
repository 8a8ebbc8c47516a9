package analytics

import "time"

type PlayerGameStats struct {
	PlayerID     string
	PlayerName   string
	PlayerColor  string
	GameID       string
	Pops         int
	Score        int
	AvgReaction  float64
	BestReaction int
	PPS          float64 // pops per second
	OnTargetRate float64 // percentage of objective-color pops
	OnTarget     int
	Goldens      int
}

type PlayerLifetimeStats struct {
	PlayerID    string
	PlayerName  string
	PlayerColor string
	GamesPlayed int
	TotalScore  int
	BestGame    int
	WinCount    int
	WinStreak   int
	Badges      []Badge
}

type LeaderboardEntry struct {
	PlayerID    string
	PlayerName  string
	PlayerColor string
	Value       int
	Rank        int
}

type GameRecap struct {
	GameID    string
	RoomCode  string
	Mode      string
	Profile   string
	StartedAt *time.Time
	EndedAt   *time.Time
	Players   []PlayerGameStats
}

// DifficultyPoint is one controller decision from a finished game, used to
// chart how the multipliers moved over the round.
type DifficultyPoint struct {
	PlayerSlot      int
	RecentRate      int
	SuccessRate     float64
	IdleSeconds     float64
	TargetSpeed     float64
	TargetTolerance float64
	At              time.Time
}
