package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"realmwalk/server/models"
)

// sqlStore implements Storage over database/sql. Queries are written with ?
// placeholders and rebound for drivers that number their parameters.
type sqlStore struct {
	db       *sql.DB
	numbered bool
}

const playerColumns = `id, username, x, y, z, speed, created_at, updated_at`

func (s *sqlStore) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *sqlStore) exec(stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SavePlayer inserts or updates a player record
func (s *sqlStore) SavePlayer(player *models.Player) error {
	now := time.Now().UTC()
	if player.CreatedAt.IsZero() {
		player.CreatedAt = now
	}
	player.UpdatedAt = now

	query := s.rebind(`
	INSERT INTO players (` + playerColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id)
	DO UPDATE SET
		x = excluded.x, y = excluded.y, z = excluded.z,
		speed = excluded.speed, updated_at = excluded.updated_at
	`)
	_, err := s.db.Exec(query,
		player.ID, player.Username, player.X, player.Y, player.Z, player.Speed,
		player.CreatedAt.UnixMilli(), player.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

// LoadPlayer loads a player by ID
func (s *sqlStore) LoadPlayer(playerID string) (*models.Player, error) {
	query := s.rebind(`SELECT ` + playerColumns + ` FROM players WHERE id = ?`)
	player, err := scanPlayer(s.db.QueryRow(query, playerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player with ID %s: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return player, nil
}

// LoadPlayerByUsername loads a player by username
func (s *sqlStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	query := s.rebind(`SELECT ` + playerColumns + ` FROM players WHERE username = ?`)
	player, err := scanPlayer(s.db.QueryRow(query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player with username %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return player, nil
}

func scanPlayer(row *sql.Row) (*models.Player, error) {
	var (
		player           models.Player
		created, updated int64
	)
	err := row.Scan(&player.ID, &player.Username, &player.X, &player.Y, &player.Z,
		&player.Speed, &created, &updated)
	if err != nil {
		return nil, err
	}
	player.CreatedAt = time.UnixMilli(created).UTC()
	player.UpdatedAt = time.UnixMilli(updated).UTC()
	return &player, nil
}

// SaveWorld inserts or replaces a layout
func (s *sqlStore) SaveWorld(name string, gameMap *models.GameMap) error {
	layoutJSON, err := json.Marshal(gameMap)
	if err != nil {
		return fmt.Errorf("failed to marshal world layout: %w", err)
	}

	query := s.rebind(`
	INSERT INTO worlds (name, width, depth, height, layout, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (name)
	DO UPDATE SET
		width = excluded.width, depth = excluded.depth, height = excluded.height,
		layout = excluded.layout, updated_at = excluded.updated_at
	`)
	_, err = s.db.Exec(query, name, gameMap.Width, gameMap.Depth, gameMap.Height,
		string(layoutJSON), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save world: %w", err)
	}
	return nil
}

// LoadWorld loads a layout by name
func (s *sqlStore) LoadWorld(name string) (*models.GameMap, error) {
	query := s.rebind(`SELECT layout FROM worlds WHERE name = ?`)

	var layoutJSON string
	err := s.db.QueryRow(query, name).Scan(&layoutJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("world with name %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}

	var gm models.GameMap
	if err := json.Unmarshal([]byte(layoutJSON), &gm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal world layout: %w", err)
	}
	return &gm, nil
}
