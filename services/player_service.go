package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"realmwalk/server/models"
	"realmwalk/server/persistence"
)

// spawnSearchRadius bounds the search for a free cell around a login position
const spawnSearchRadius = 4

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrPlayerConnected = errors.New("player already connected")
)

// Session links a connected player to the agent moving on their behalf
type Session struct {
	Player  *models.Player
	AgentID string
}

// PlayerService manages player-related operations
type PlayerService struct {
	sessions map[string]*Session // player ID to session
	world    *WorldService
	db       persistence.Storage
	spawn    models.Position
	mutex    sync.RWMutex
}

// NewPlayerService creates a new player service; new players start at spawn
func NewPlayerService(world *WorldService, db persistence.Storage, spawn models.Position) *PlayerService {
	return &PlayerService{
		sessions: make(map[string]*Session),
		world:    world,
		db:       db,
		spawn:    spawn,
	}
}

// GetOrCreatePlayer loads or creates the player record for username and
// places a camera-followed agent for it in the world. A player that is
// already connected is refused until that session disconnects.
func (ps *PlayerService) GetOrCreatePlayer(username string) (*Session, error) {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	for _, s := range ps.sessions {
		if s.Player.Username == username {
			return nil, fmt.Errorf("login %s: %w", username, ErrPlayerConnected)
		}
	}

	player, err := ps.db.LoadPlayerByUsername(username)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		now := time.Now()
		player = &models.Player{
			ID:        uuid.NewString(),
			Username:  username,
			Speed:     ps.world.tuning.DefaultSpeed,
			CreatedAt: now,
			UpdatedAt: now,
		}
		player.SetPosition(ps.spawn)
		if err := ps.db.SavePlayer(player); err != nil {
			return nil, fmt.Errorf("save new player %s: %w", username, err)
		}
		log.Printf("Created player %s (%s)", username, player.ID)
	case err != nil:
		return nil, fmt.Errorf("load player %s: %w", username, err)
	}

	at, err := ps.world.FindFreeCell(player.Position(), spawnSearchRadius)
	if err != nil {
		// the stored cell may have been walled in since; fall back to spawn
		at, err = ps.world.FindFreeCell(ps.spawn, spawnSearchRadius)
		if err != nil {
			return nil, fmt.Errorf("place player %s: %w", username, err)
		}
	}
	agent, err := ps.world.SpawnAgent(username, at, player.Speed, models.RoleCameraFollowed)
	if err != nil {
		return nil, fmt.Errorf("place player %s: %w", username, err)
	}

	s := &Session{Player: player, AgentID: agent.ID}
	ps.sessions[player.ID] = s
	return s, nil
}

// GetPlayer retrieves a connected player by ID
func (ps *PlayerService) GetPlayer(playerID string) (*models.Player, error) {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	s, ok := ps.sessions[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrPlayerNotFound)
	}
	return s.Player, nil
}

// AgentFor returns the agent ID of a connected player
func (ps *PlayerService) AgentFor(playerID string) (string, error) {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	s, ok := ps.sessions[playerID]
	if !ok {
		return "", fmt.Errorf("player %s: %w", playerID, ErrPlayerNotFound)
	}
	return s.AgentID, nil
}

// Disconnect removes the player's agent and stores where it stood
func (ps *PlayerService) Disconnect(playerID string) error {
	ps.mutex.Lock()
	s, ok := ps.sessions[playerID]
	delete(ps.sessions, playerID)
	ps.mutex.Unlock()

	if !ok {
		return fmt.Errorf("disconnect %s: %w", playerID, ErrPlayerNotFound)
	}
	last, err := ps.world.RemoveAgent(s.AgentID)
	if err != nil {
		return fmt.Errorf("disconnect %s: %w", playerID, err)
	}
	s.Player.SetPosition(last)
	s.Player.UpdatedAt = time.Now()
	if err := ps.db.SavePlayer(s.Player); err != nil {
		return fmt.Errorf("save player %s: %w", playerID, err)
	}
	log.Printf("Player %s left at %s", s.Player.Username, last)
	return nil
}

// Connected returns the number of connected players
func (ps *PlayerService) Connected() int {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()
	return len(ps.sessions)
}
