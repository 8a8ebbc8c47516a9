package balloons

import "time"

type Balloon struct {
	ID        int
	X         int
	Y         int
	Size      int
	Color     string
	Golden    bool
	OwnerSlot int // only set for golden balloons; 0 means anyone may pop it
	Popped    bool
	SpawnedAt time.Time
}
