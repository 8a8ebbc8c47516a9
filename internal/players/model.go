package players

type Player struct {
	ID        string
	Name      string
	Color     string
	Slot      int    // difficulty slot, assigned on join, 1-based
	Objective string // balloon color that scores on-target pops this round
	Score     int
	Ready     bool
}
