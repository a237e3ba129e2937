// Package persistence stores player records and world layouts, and writes the
// compressed per-tick movement log.
package persistence

import (
	"errors"

	"realmwalk/server/models"
)

// ErrNotFound is returned when a player or world does not exist
var ErrNotFound = errors.New("not found")

// Storage defines the interface for data persistence
type Storage interface {
	SavePlayer(player *models.Player) error
	LoadPlayer(playerID string) (*models.Player, error)
	LoadPlayerByUsername(username string) (*models.Player, error)
	SaveWorld(name string, gameMap *models.GameMap) error
	LoadWorld(name string) (*models.GameMap, error)
	Close() error
}
