package players

import (
	"sort"
	"sync"

	"balloonpop/internal/utility"
)

type Store struct {
	mu      sync.Mutex
	players map[string]*Player
}

func NewStore() *Store {
	return &Store{
		players: make(map[string]*Player),
	}
}

// Add registers a player and assigns the lowest free difficulty slot.
func (s *Store) Add(id string, name string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	player := &Player{
		ID:    id,
		Name:  name,
		Color: utility.RandomColorHex(),
		Slot:  s.nextFreeSlot(),
	}
	s.players[id] = player
	return player
}

func (s *Store) nextFreeSlot() int {
	taken := make(map[int]bool, len(s.players))
	for _, p := range s.players {
		taken[p.Slot] = true
	}
	slot := 1
	for taken[slot] {
		slot++
	}
	return slot
}

func (s *Store) Get(id string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[id]
}

// BySlot returns the player holding a difficulty slot, or nil.
func (s *Store) BySlot(slot int) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.Slot == slot {
			return p
		}
	}
	return nil
}

// GetList returns all players ordered by slot.
func (s *Store) GetList() []*Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	playerList := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		playerList = append(playerList, p)
	}
	sort.Slice(playerList, func(i, j int) bool {
		return playerList[i].Slot < playerList[j].Slot
	})
	return playerList
}

// SlotScores reads the scores for two difficulty slots in a single locked
// pass, so callers comparing them never race a concurrent UpdateScore. ok is
// false when either slot is unoccupied.
func (s *Store) SlotScores(slot1, slot2 int) (score1, score2 int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var p1, p2 *Player
	for _, p := range s.players {
		switch p.Slot {
		case slot1:
			p1 = p
		case slot2:
			p2 = p
		}
	}
	if p1 == nil || p2 == nil {
		return 0, 0, false
	}
	return p1.Score, p2.Score, true
}

func (s *Store) UpdateScore(id string, points int) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, e := s.players[id]; e {
		p.Score += points
		return p
	}
	return nil
}

func (s *Store) SetReady(id string, isReady bool) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, e := s.players[id]; e {
		p.Ready = isReady
		return p
	}
	return nil
}

func (s *Store) SetObjective(id string, color string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, e := s.players[id]; e {
		p.Objective = color
		return p
	}
	return nil
}

func (s *Store) AllReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.players) == 0 {
		return false
	}

	for _, player := range s.players {
		if !player.Ready {
			return false
		}
	}
	return true
}

func (s *Store) ValidateSession(sessionId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.players[sessionId]
	return exists
}

func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[id]; !exists {
		return false
	}
	delete(s.players, id)
	return true
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.players {
		p.Score = 0
		p.Ready = false
		p.Objective = ""
		s.players[id] = p
	}
}
