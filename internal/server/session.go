package server

import (
	"log"
	"sync"
	"time"

	"github.com/gravitas-015/hexward/internal/gamemap"
	"github.com/gravitas-015/hexward/pkg/models"
)

// Session tracks the players sharing one map
type Session struct {
	ID        string
	CreatedAt time.Time

	players map[string]*models.Player // playerID -> Player
	conns   map[string]int            // playerID -> open connections
	mu      sync.RWMutex

	gameMap *gamemap.GameMap
}

// SessionStatus represents the current state of the session
type SessionStatus struct {
	PlayerCount int   `json:"player_count"`
	Cells       int   `json:"cells"`
	Uptime      int64 `json:"uptime"` // seconds
}

// NewSession creates a session around an existing map
func NewSession(id string, gameMap *gamemap.GameMap) *Session {
	log.Printf("Creating session: %s", id)

	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		players:   make(map[string]*models.Player),
		conns:     make(map[string]int),
		gameMap:   gameMap,
	}
}

// AddPlayer registers one connection for player
func (s *Session) AddPlayer(player *models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players[player.ID] = player
	s.conns[player.ID]++

	log.Printf("Player %s (%s) joined session %s", player.Username, player.ID, s.ID)
}

// RemovePlayer drops one connection; the player leaves when none remain
func (s *Session) RemovePlayer(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, exists := s.players[playerID]
	if !exists {
		return
	}
	s.conns[playerID]--
	if s.conns[playerID] > 0 {
		return
	}
	log.Printf("Player %s (%s) left session %s", player.Username, playerID, s.ID)
	delete(s.players, playerID)
	delete(s.conns, playerID)
}

// GetStatus returns the current session status
func (s *Session) GetStatus() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionStatus{
		PlayerCount: len(s.players),
		Cells:       s.gameMap.Len(),
		Uptime:      int64(time.Since(s.CreatedAt).Seconds()),
	}
}
