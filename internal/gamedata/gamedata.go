package gamedata

import (
	"sync"

	"balloonpop/internal/balloons"
	"balloonpop/internal/difficulty"
	"balloonpop/internal/events"
	"balloonpop/internal/players"
)

type Scene string

const (
	SceneLobby = Scene("lobby")
	ScenePop   = Scene("pop")
	SceneRecap = Scene("recap")
)

type Mode string

const (
	ModeCooperative = Mode("cooperative")
	ModeCompetitive = Mode("competitive")
)

const (
	PointsOnTarget  = 2
	PointsOffTarget = 1
	PointsGolden    = 5
)

type Config struct {
	RoundDuration   int // seconds
	InitialBalloons int
	CountdownSecs   int
	TickInterval    float64 // seconds between difficulty ticks during a round
	Profile         difficulty.Profile
}

func DefaultConfig() Config {
	return Config{
		RoundDuration:   60,
		InitialBalloons: 3,
		CountdownSecs:   3,
		TickInterval:    0.1,
		Profile:         difficulty.StandardProfile(),
	}
}

type GameData struct {
	Scene      Scene
	Mode       Mode
	Player     *players.Player
	Players    []*players.Player
	Balloons   []*balloons.Balloon
	TimeLeft   int
	Rankings   []*players.Player
	RoomCode   string
	Difficulty difficulty.Difficulty // viewer's live multipliers
	RubberBand bool
}

// PopResult describes one scored pop, for broadcasting and persistence.
type PopResult struct {
	Player   *players.Player
	Balloon  *balloons.Balloon
	Points   int
	OnTarget bool
	Live     difficulty.Difficulty // popper's multipliers at pop time
}

// Game holds one room's state. Each game owns its difficulty controller;
// pops feed it from request handlers and Tick drives it from the round loop.
type Game struct {
	mu            sync.Mutex
	scene         Scene
	mode          Mode
	timeLeft      int
	currentGameID string
	Players       *players.Store
	Balloons      *balloons.Store
	Events        *events.Bus
	Difficulty    *difficulty.Controller
	Config        Config
}

func NewGame(ps *players.Store, bs *balloons.Store, bus *events.Bus, cfg Config, mode Mode) *Game {
	return &Game{
		scene:      SceneLobby,
		mode:       mode,
		Players:    ps,
		Balloons:   bs,
		Events:     bus,
		Difficulty: difficulty.New(cfg.Profile),
		Config:     cfg,
	}
}

func (g *Game) Get(id string) GameData {
	g.mu.Lock()
	defer g.mu.Unlock()
	data := GameData{
		Scene:      g.scene,
		Mode:       g.mode,
		Player:     g.Players.Get(id),
		Players:    g.Players.GetList(),
		Balloons:   g.Balloons.GetList(),
		TimeLeft:   g.timeLeft,
		Difficulty: difficulty.Difficulty{Speed: 1.0, Tolerance: 1.0},
	}
	if data.Player != nil {
		data.Difficulty = g.Difficulty.PlayerDifficulty(data.Player.Slot)
		data.RubberBand = g.Difficulty.RubberBandActive(data.Player.Slot)
	}
	return data
}

func (g *Game) Scene() Scene {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scene
}

func (g *Game) SetScene(s Scene) {
	g.mu.Lock()
	g.scene = s
	g.mu.Unlock()
	g.Events.SceneChanges <- events.SceneChangeEvent{Scene: string(s)}
}

func (g *Game) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

func (g *Game) SetTimeLeft(t int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timeLeft = t
}

func (g *Game) TimeLeft() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timeLeft
}

func (g *Game) SetCurrentGameID(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentGameID = id
}

func (g *Game) CurrentGameID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentGameID
}

// StartRound assigns objective colors by slot, seeds the field and starts
// the clock. The difficulty controller keeps its state across rounds within
// a session until ResetToLobby.
func (g *Game) StartRound() {
	g.Balloons.Clear()
	for _, p := range g.Players.GetList() {
		color := balloons.Palette[(p.Slot-1)%len(balloons.Palette)]
		g.Players.SetObjective(p.ID, color)
	}
	for i := 0; i < g.Config.InitialBalloons; i++ {
		g.Balloons.Add(1.0)
	}
	g.mu.Lock()
	g.timeLeft = g.Config.RoundDuration
	g.mu.Unlock()
}

// PopBalloon scores a pop for the player and records the completion with the
// difficulty controller. Returns false for unknown players, unknown
// balloons, duplicate pops, and golden balloons popped by the wrong player.
func (g *Game) PopBalloon(playerID string, balloonID int) (PopResult, bool) {
	player := g.Players.Get(playerID)
	if player == nil {
		return PopResult{}, false
	}
	balloon := g.Balloons.Get(balloonID)
	if balloon == nil {
		return PopResult{}, false
	}
	if balloon.Golden && balloon.OwnerSlot != player.Slot {
		return PopResult{}, false
	}
	if !g.Balloons.Pop(balloonID) {
		return PopResult{}, false
	}

	onTarget := balloon.Golden || balloon.Color == player.Objective
	points := PointsOffTarget
	switch {
	case balloon.Golden:
		points = PointsGolden
	case onTarget:
		points = PointsOnTarget
	}

	g.Players.UpdateScore(playerID, points)
	g.Difficulty.RecordCompletion(player.Slot, onTarget)

	return PopResult{
		Player:   player,
		Balloon:  balloon,
		Points:   points,
		OnTarget: onTarget,
		Live:     g.Difficulty.PlayerDifficulty(player.Slot),
	}, true
}

// RecordCursor marks the player as active without scoring, so hand movement
// alone keeps them from counting as idle.
func (g *Game) RecordCursor(playerID string) {
	player := g.Players.Get(playerID)
	if player == nil {
		return
	}
	g.Difficulty.RecordInteraction(player.Slot)
}

// SpawnFor spawns a replacement balloon sized by a slot's live tolerance.
func (g *Game) SpawnFor(slot int) *balloons.Balloon {
	tol := g.Difficulty.PlayerDifficulty(slot).Tolerance
	return g.Balloons.Add(tol)
}

// Tick advances the difficulty controller by dt seconds and, in competitive
// mode, checks the rubber band. When the band activates it spawns a golden
// balloon for the trailing slot, emits a bus event, and returns the balloon
// for broadcasting. Pops for the current frame are recorded by the handlers
// before the next Tick fires.
func (g *Game) Tick(dt float64) *balloons.Balloon {
	if g.Scene() != ScenePop {
		return nil
	}

	g.Difficulty.Update(dt)

	if g.Mode() != ModeCompetitive {
		return nil
	}
	// Pop handlers mutate scores concurrently; snapshot both under the
	// store lock instead of reading Player fields directly.
	score1, score2, ok := g.Players.SlotScores(1, 2)
	if !ok {
		return nil
	}

	slot, activated := g.Difficulty.CheckRubberBand(score1, score2)
	if !activated {
		return nil
	}

	tol := g.Difficulty.PlayerDifficulty(slot).Tolerance
	golden := g.Balloons.AddGolden(slot, tol)
	select {
	case g.Events.GoldenBalloons <- events.GoldenBalloonEvent{Slot: slot, BalloonID: golden.ID}:
	default:
		// Drop if nobody is draining the bus
	}
	return golden
}

func (g *Game) EndRound() []*players.Player {
	g.mu.Lock()
	g.scene = SceneRecap
	g.mu.Unlock()
	g.Events.SceneChanges <- events.SceneChangeEvent{Scene: string(SceneRecap)}

	ranked := g.Players.GetList()
	// Sort by score descending
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			if ranked[j].Score > ranked[i].Score {
				ranked[i], ranked[j] = ranked[j], ranked[i]
			}
		}
	}
	return ranked
}

func (g *Game) ResetToLobby() {
	g.Balloons.Clear()
	g.Players.ResetAll()
	g.Difficulty.Reset()
	g.mu.Lock()
	g.scene = SceneLobby
	g.timeLeft = 0
	g.mu.Unlock()
	g.Events.SceneChanges <- events.SceneChangeEvent{Scene: string(SceneLobby)}
}
