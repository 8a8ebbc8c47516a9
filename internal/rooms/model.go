package rooms

import (
	"time"

	"balloonpop/internal/broadcast"
	"balloonpop/internal/gamedata"
	"balloonpop/internal/wshub"
)

type Room struct {
	Code        string
	Game        *gamedata.Game
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	CreatedAt   time.Time
	HostID      string
}
