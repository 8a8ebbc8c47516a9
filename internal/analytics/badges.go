package analytics

type BadgeID string

const (
	BadgeSharpEye    BadgeID = "sharp_eye"
	BadgeQuickPopper BadgeID = "quick_popper"
	BadgeCenturion   BadgeID = "centurion"
	BadgePopMachine  BadgeID = "pop_machine"
	BadgeComebackKid BadgeID = "comeback_kid"
	BadgeUnstoppable BadgeID = "unstoppable"
	BadgeVeteran     BadgeID = "veteran"
)

type Badge struct {
	ID          BadgeID
	Name        string
	Description string
	Icon        string
}

var AllBadges = map[BadgeID]Badge{
	BadgeSharpEye:    {ID: BadgeSharpEye, Name: "Sharp Eye", Description: "75%+ of pops on your own color in a game", Icon: "🎯"},
	BadgeQuickPopper: {ID: BadgeQuickPopper, Name: "Quick Popper", Description: "Average reaction time under 800ms", Icon: "⚡"},
	BadgeCenturion:   {ID: BadgeCenturion, Name: "Centurion", Description: "100+ points in a single game", Icon: "💯"},
	BadgePopMachine:  {ID: BadgePopMachine, Name: "Pop Machine", Description: "1+ pops per second average", Icon: "🎈"},
	BadgeComebackKid: {ID: BadgeComebackKid, Name: "Comeback Kid", Description: "Popped a golden balloon", Icon: "🌟"},
	BadgeUnstoppable: {ID: BadgeUnstoppable, Name: "Unstoppable", Description: "3-game win streak", Icon: "🔥"},
	BadgeVeteran:     {ID: BadgeVeteran, Name: "Veteran", Description: "Played 10+ games", Icon: "🏅"},
}

// EvaluateGameBadges checks which badges a player earned in a single game.
func EvaluateGameBadges(stats PlayerGameStats) []Badge {
	var earned []Badge

	// Sharp Eye: 75%+ on-target rate
	if stats.Pops > 0 && stats.OnTargetRate >= 75.0 {
		earned = append(earned, AllBadges[BadgeSharpEye])
	}

	// Quick Popper: avg reaction < 800ms
	if stats.Pops > 0 && stats.AvgReaction > 0 && stats.AvgReaction < 800 {
		earned = append(earned, AllBadges[BadgeQuickPopper])
	}

	// Centurion: 100+ points in a game
	if stats.Score >= 100 {
		earned = append(earned, AllBadges[BadgeCenturion])
	}

	// Pop Machine: 1+ PPS
	if stats.PPS >= 1.0 {
		earned = append(earned, AllBadges[BadgePopMachine])
	}

	// Comeback Kid: claimed a golden balloon
	if stats.Goldens > 0 {
		earned = append(earned, AllBadges[BadgeComebackKid])
	}

	return earned
}

// EvaluateLifetimeBadges checks which badges a player earned across their career.
func EvaluateLifetimeBadges(stats PlayerLifetimeStats) []Badge {
	var earned []Badge

	// Unstoppable: 3-game win streak
	if stats.WinStreak >= 3 {
		earned = append(earned, AllBadges[BadgeUnstoppable])
	}

	// Veteran: 10+ games
	if stats.GamesPlayed >= 10 {
		earned = append(earned, AllBadges[BadgeVeteran])
	}

	return earned
}
