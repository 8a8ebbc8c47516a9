package events

type SceneChangeEvent struct {
	Scene string
}

// GoldenBalloonEvent announces a rubber-band bonus balloon granted to a
// trailing player slot.
type GoldenBalloonEvent struct {
	Slot      int
	BalloonID int
}

type Bus struct {
	SceneChanges   chan SceneChangeEvent
	GoldenBalloons chan GoldenBalloonEvent
}

func NewBus() *Bus {
	return &Bus{
		SceneChanges:   make(chan SceneChangeEvent, 10),
		GoldenBalloons: make(chan GoldenBalloonEvent, 10),
	}
}
