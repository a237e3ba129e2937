package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"realmwalk/server/models"
)

// JSONStore keeps players and layouts in a single JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData is the document written to disk
type JSONData struct {
	Players map[string]*models.Player  `json:"players"`
	Worlds  map[string]*models.GameMap `json:"worlds"`
}

// NewJSONStore opens the file at filePath, creating it when missing
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Players: make(map[string]*models.Player),
			Worlds:  make(map[string]*models.GameMap),
		},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
		return store, nil
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()
	if err := store.writeLocked(); err != nil {
		return nil, fmt.Errorf("failed to create JSON store file: %w", err)
	}
	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	raw, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, js.data); err != nil {
		return err
	}
	if js.data.Players == nil {
		js.data.Players = make(map[string]*models.Player)
	}
	if js.data.Worlds == nil {
		js.data.Worlds = make(map[string]*models.GameMap)
	}
	return nil
}

// writeLocked replaces the file through a renamed temporary sibling
func (js *JSONStore) writeLocked() error {
	raw, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(js.filePath), filepath.Base(js.filePath)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), js.filePath)
}

// SavePlayer stores a copy of the player
func (js *JSONStore) SavePlayer(player *models.Player) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	stored := *player
	js.data.Players[player.ID] = &stored
	return js.writeLocked()
}

// LoadPlayer loads a player by ID
func (js *JSONStore) LoadPlayer(playerID string) (*models.Player, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	player, exists := js.data.Players[playerID]
	if !exists {
		return nil, fmt.Errorf("player with ID %s: %w", playerID, ErrNotFound)
	}
	out := *player
	return &out, nil
}

// LoadPlayerByUsername loads a player by username
func (js *JSONStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	for _, player := range js.data.Players {
		if player.Username == username {
			out := *player
			return &out, nil
		}
	}
	return nil, fmt.Errorf("player with username %s: %w", username, ErrNotFound)
}

// SaveWorld stores a layout under name
func (js *JSONStore) SaveWorld(name string, gameMap *models.GameMap) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	js.data.Worlds[name] = gameMap
	return js.writeLocked()
}

// LoadWorld loads a layout by name
func (js *JSONStore) LoadWorld(name string) (*models.GameMap, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	gm, exists := js.data.Worlds[name]
	if !exists {
		return nil, fmt.Errorf("world with name %s: %w", name, ErrNotFound)
	}
	return gm, nil
}

// Close is a no-op; every save is already on disk
func (js *JSONStore) Close() error {
	return nil
}
