package balloons

import (
	"math/rand"
	"sync"
	"time"
)

const (
	FieldHeight    = 400
	FieldWidth     = 600
	MinBalloonSize = 50
	MaxBalloonSize = 100
	GoldenColor    = "#f1c40f"
)

// Palette holds the balloon colors players get assigned as objectives.
var Palette = []string{"#e74c3c", "#3498db", "#2ecc71", "#9b59b6", "#e67e22"}

type Store struct {
	mu       sync.Mutex
	balloons map[int]*Balloon
	nextID   int
}

func NewStore() *Store {
	return &Store{
		balloons: make(map[int]*Balloon),
		nextID:   1,
	}
}

// Add spawns a balloon with a random palette color. tolerance scales the
// base size: an easier setting (tolerance > 1) spawns larger balloons.
func (s *Store) Add(tolerance float64) *Balloon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(Palette[rand.Intn(len(Palette))], false, 0, tolerance)
}

// AddGolden spawns the rubber-band bonus balloon for a player slot.
func (s *Store) AddGolden(slot int, tolerance float64) *Balloon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(GoldenColor, true, slot, tolerance)
}

func (s *Store) add(color string, golden bool, slot int, tolerance float64) *Balloon {
	id := s.nextID
	s.nextID++

	size := rand.Intn(MaxBalloonSize-MinBalloonSize) + MinBalloonSize
	size = int(float64(size) * tolerance)
	if size < 1 {
		size = 1
	}
	maxX := FieldWidth - size
	if maxX < 1 {
		maxX = 1
	}
	maxY := FieldHeight - size
	if maxY < 1 {
		maxY = 1
	}

	balloon := &Balloon{
		ID:        id,
		X:         rand.Intn(maxX),
		Y:         rand.Intn(maxY),
		Size:      size,
		Color:     color,
		Golden:    golden,
		OwnerSlot: slot,
		SpawnedAt: time.Now(),
	}
	s.balloons[id] = balloon
	return balloon
}

func (s *Store) Get(id int) *Balloon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balloons[id]
}

// Pop marks a balloon as popped. Returns false when the balloon does not
// exist or was already popped, so duplicate pops can be ignored.
func (s *Store) Pop(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, e := s.balloons[id]
	if !e || b.Popped {
		return false
	}
	b.Popped = true
	return true
}

func (s *Store) GetList() []*Balloon {
	s.mu.Lock()
	defer s.mu.Unlock()
	balloonList := make([]*Balloon, 0, len(s.balloons))
	for _, b := range s.balloons {
		if !b.Popped {
			balloonList = append(balloonList, b)
		}
	}
	return balloonList
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balloons = make(map[int]*Balloon)
	s.nextID = 1
}
