package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmwalk/server/models"
)

// exerciseStorage runs the behaviour every Storage must share
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()

	_, err := s.LoadPlayer("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LoadPlayerByUsername("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LoadWorld("nowhere")
	assert.ErrorIs(t, err, ErrNotFound)

	p := &models.Player{ID: "p-1", Username: "ada", Speed: 2}
	p.SetPosition(models.Position{X: 3, Y: 4, Z: 1})
	require.NoError(t, s.SavePlayer(p))

	got, err := s.LoadPlayerByUsername("ada")
	require.NoError(t, err)
	assert.Equal(t, "p-1", got.ID)
	assert.Equal(t, models.Position{X: 3, Y: 4, Z: 1}, got.Position())
	assert.Equal(t, 2.0, got.Speed)

	got.SetPosition(models.Position{X: 5, Y: 5, Z: 2})
	require.NoError(t, s.SavePlayer(got))
	again, err := s.LoadPlayer("p-1")
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 5, Y: 5, Z: 2}, again.Position())

	up := models.Up
	gm := &models.GameMap{
		Name: "tiny", Width: 2, Depth: 2, Height: 2,
		Layers: []models.TerrainLayer{{Z: 0, Rows: []string{"##", "#~"}}},
		Things: []models.ThingSpec{{Kind: models.ThingLadder, X: 1, Y: 1, Z: 1, RampDir: &up}},
		Player: &models.Position{X: 0, Y: 0, Z: 1},
	}
	require.NoError(t, s.SaveWorld("tiny", gm))
	loaded, err := s.LoadWorld("tiny")
	require.NoError(t, err)
	assert.Equal(t, gm, loaded)

	gm.Width = 3
	require.NoError(t, s.SaveWorld("tiny", gm))
	loaded, err = s.LoadWorld("tiny")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Width)
}

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s, err := NewJSONStore(path)
	require.NoError(t, err)
	exerciseStorage(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewJSONStore(path)
	require.NoError(t, err)
	p, err := reopened.LoadPlayerByUsername("ada")
	require.NoError(t, err)
	assert.Equal(t, 5, p.X)
}

func TestJSONStoreReturnsCopies(t *testing.T) {
	s, err := NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)

	p := &models.Player{ID: "p", Username: "u"}
	require.NoError(t, s.SavePlayer(p))
	p.X = 99

	got, err := s.LoadPlayer("p")
	require.NoError(t, err)
	assert.Zero(t, got.X)
}

func TestJSONStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
	_, err := NewJSONStore(path)
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "realmwalk.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	exerciseStorage(t, s)

	p, err := s.LoadPlayer("p-1")
	require.NoError(t, err)
	assert.False(t, p.CreatedAt.IsZero())
	assert.False(t, p.UpdatedAt.Before(p.CreatedAt))
	require.NoError(t, s.Close())
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	s, err := NewPostgresStore(url)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec(`DELETE FROM players WHERE id = 'p-1'; DELETE FROM worlds WHERE name = 'tiny';`)
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestRebind(t *testing.T) {
	plain := &sqlStore{}
	numbered := &sqlStore{numbered: true}
	q := `SELECT a FROM t WHERE b = ? AND c = ?`
	assert.Equal(t, q, plain.rebind(q))
	assert.Equal(t, `SELECT a FROM t WHERE b = $1 AND c = $2`, numbered.rebind(q))
}

func TestTickLogRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLog(dir)
	clock := time.Date(2024, 3, 1, 10, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	entry := func(tick uint64) TickEntry {
		return TickEntry{
			Tick: tick,
			Time: clock,
			Agents: []AgentSnapshot{{
				ID: "a", Pos: models.Position{X: int(tick), Y: 1, Z: 1}, Dir: "right", Action: "step", OffsetX: -8,
			}},
		}
	}

	require.NoError(t, l.WriteTick(entry(1)))
	require.NoError(t, l.WriteTick(entry(2)))
	clock = clock.Add(2 * time.Minute)
	require.NoError(t, l.WriteTick(entry(3)))
	require.NoError(t, l.Close())

	first, err := ReadTickLog(l.PathForHour("2024-03-01-10"))
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, uint64(2), first[1].Tick)
	assert.Equal(t, -8.0, first[1].Agents[0].OffsetX)
	assert.Equal(t, models.Position{X: 2, Y: 1, Z: 1}, first[1].Agents[0].Pos)

	second, err := ReadTickLog(l.PathForHour("2024-03-01-11"))
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, uint64(3), second[0].Tick)
}
