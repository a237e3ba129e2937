package world

import (
	"errors"
	"fmt"
	"log"

	"realmwalk/server/models"
)

var (
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrCellOccupied = errors.New("cell already occupied")
)

// edgeClipMinDepth is the smallest depth for which screen-edge blocking applies
const edgeClipMinDepth = 19

// Camera is notified when the camera-followed agent moves. Scroll-lock and
// view computation live behind this interface.
type Camera interface {
	TrackVertical(agent *models.Agent)
	TrackHorizontal(agent *models.Agent)
}

// World is the dense 3D grid holding terrain, things and occupants
type World struct {
	width, depth, height int

	terrain   []models.Terrain
	things    [][]*models.Thing
	occupants []models.Occupant

	agents []*models.Agent
	camera Camera
}

// New creates an empty world filled with air
func New(width, depth, height int) *World {
	n := width * depth * height
	if n < 0 {
		n = 0
	}
	return &World{
		width:     width,
		depth:     depth,
		height:    height,
		terrain:   make([]models.Terrain, n),
		things:    make([][]*models.Thing, n),
		occupants: make([]models.Occupant, n),
	}
}

// Dimensions returns width (x), depth (y) and height (z)
func (w *World) Dimensions() (width, depth, height int) {
	return w.width, w.depth, w.height
}

// SetCamera installs the camera collaborator; nil disables notifications
func (w *World) SetCamera(c Camera) {
	w.camera = c
}

func (w *World) index(p models.Position) int {
	return (p.Z*w.depth+p.Y)*w.width + p.X
}

// IsInBounds reports whether p lies inside the grid
func (w *World) IsInBounds(p models.Position) bool {
	return p.X >= 0 && p.X < w.width && p.Y >= 0 && p.Y < w.depth && p.Z >= 0 && p.Z < w.height
}

// SetTerrain fills a cell with terrain; out-of-bounds writes are ignored
func (w *World) SetTerrain(p models.Position, t models.Terrain) {
	if !w.IsInBounds(p) {
		return
	}
	w.terrain[w.index(p)] = t
}

// TerrainAt returns the terrain of a cell, air when out of bounds
func (w *World) TerrainAt(p models.Position) models.Terrain {
	if !w.IsInBounds(p) {
		return models.TerrainAir
	}
	return w.terrain[w.index(p)]
}

func (w *World) TerrainBlocking(p models.Position) bool {
	return w.IsInBounds(p) && w.terrain[w.index(p)].Blocking()
}

func (w *World) TerrainCrossable(p models.Position) bool {
	return w.IsInBounds(p) && w.terrain[w.index(p)].Crossable()
}

func (w *World) TerrainTransparent(p models.Position) bool {
	return w.IsInBounds(p) && w.terrain[w.index(p)].Transparent()
}

// AddThing places a thing in a cell
func (w *World) AddThing(p models.Position, t *models.Thing) error {
	if !w.IsInBounds(p) {
		return fmt.Errorf("add thing at %s: %w", p, ErrOutOfBounds)
	}
	i := w.index(p)
	w.things[i] = append(w.things[i], t)
	return nil
}

// RemoveThingsAt clears every thing in a cell
func (w *World) RemoveThingsAt(p models.Position) {
	if !w.IsInBounds(p) {
		return
	}
	w.things[w.index(p)] = nil
}

// ThingsAt returns the things in a cell
func (w *World) ThingsAt(p models.Position) []*models.Thing {
	if !w.IsInBounds(p) {
		return nil
	}
	return w.things[w.index(p)]
}

func (w *World) HasThing(p models.Position) bool {
	return len(w.ThingsAt(p)) > 0
}

func (w *World) ThingBlocking(p models.Position) bool {
	for _, t := range w.ThingsAt(p) {
		if t.Blocking {
			return true
		}
	}
	return false
}

func (w *World) ThingCrossable(p models.Position) bool {
	for _, t := range w.ThingsAt(p) {
		if t.Crossable {
			return true
		}
	}
	return false
}

func (w *World) ThingTransparent(p models.Position) bool {
	for _, t := range w.ThingsAt(p) {
		if !t.Transparent {
			return false
		}
	}
	return true
}

func (w *World) ThingHasRamp(p models.Position) bool {
	_, ok := w.ramp(p)
	return ok
}

// ThingRampDirection returns the orientation of the first ramp in the cell
func (w *World) ThingRampDirection(p models.Position) models.Direction {
	dir, _ := w.ramp(p)
	return dir
}

func (w *World) ramp(p models.Position) (models.Direction, bool) {
	for _, t := range w.ThingsAt(p) {
		if t.HasRamp {
			return t.RampDir, true
		}
	}
	return 0, false
}

// EdgeBlocked reports cells clipped by the top and bottom screen edges.
// Only worlds deep enough for a locked camera are clipped.
func (w *World) EdgeBlocked(p models.Position) bool {
	if w.depth <= edgeClipMinDepth {
		return false
	}
	return p.Y < w.height-1-p.Z || p.Y > w.depth-(p.Z-1)
}

// IsOccupied reports whether an agent or placeholder holds the cell
func (w *World) IsOccupied(p models.Position) bool {
	return w.OccupantAt(p) != nil
}

// OccupantAt returns the occupant of a cell, nil when empty or out of bounds
func (w *World) OccupantAt(p models.Position) models.Occupant {
	if !w.IsInBounds(p) {
		return nil
	}
	return w.occupants[w.index(p)]
}

// AddAgent registers an agent and places it in the occupancy grid
func (w *World) AddAgent(a *models.Agent) error {
	if !w.IsInBounds(a.Pos) {
		return fmt.Errorf("add agent %s at %s: %w", a.ID, a.Pos, ErrOutOfBounds)
	}
	i := w.index(a.Pos)
	if w.occupants[i] != nil {
		return fmt.Errorf("add agent %s at %s: %w", a.ID, a.Pos, ErrCellOccupied)
	}
	w.occupants[i] = a
	w.agents = append(w.agents, a)
	return nil
}

// RemoveAgent drops an agent from the world and frees its cell
func (w *World) RemoveAgent(a *models.Agent) {
	if w.IsInBounds(a.Pos) && w.occupants[w.index(a.Pos)] == a {
		w.occupants[w.index(a.Pos)] = nil
	}
	for i, other := range w.agents {
		if other == a {
			w.agents = append(w.agents[:i], w.agents[i+1:]...)
			break
		}
	}
}

// Agents returns the registered agents in update order
func (w *World) Agents() []*models.Agent {
	return w.agents
}

// MoveAgentOccupancy moves an agent's logical cell by the given deltas
func (w *World) MoveAgentOccupancy(a *models.Agent, dx, dy, dz int) error {
	from := a.Pos
	to := from.Add(dx, dy, dz)
	if !w.IsInBounds(to) {
		log.Printf("Could not move agent %s to %s, position out of bounds", a.ID, to)
		return fmt.Errorf("move agent %s to %s: %w", a.ID, to, ErrOutOfBounds)
	}
	if occ := w.occupants[w.index(to)]; occ != nil && occ != models.Occupant(a) {
		log.Printf("Could not move agent %s to %s, occupied by %s", a.ID, to, occ.OccupantID())
		return fmt.Errorf("move agent %s to %s: %w", a.ID, to, ErrCellOccupied)
	}
	if w.IsInBounds(from) && w.occupants[w.index(from)] == models.Occupant(a) {
		w.occupants[w.index(from)] = nil
	}
	a.Pos = to
	w.occupants[w.index(to)] = a
	return nil
}

// AddTransientOccupant inserts a placeholder into an empty cell
func (w *World) AddTransientOccupant(m *models.Placeholder) error {
	if !w.IsInBounds(m.Pos) {
		log.Printf("Could not add placeholder at %s, position out of bounds", m.Pos)
		return fmt.Errorf("add placeholder at %s: %w", m.Pos, ErrOutOfBounds)
	}
	i := w.index(m.Pos)
	if w.occupants[i] != nil {
		log.Printf("Could not add placeholder at %s, occupied by %s", m.Pos, w.occupants[i].OccupantID())
		return fmt.Errorf("add placeholder at %s: %w", m.Pos, ErrCellOccupied)
	}
	w.occupants[i] = m
	return nil
}

// RemoveOccupantAt clears a cell and returns what was there
func (w *World) RemoveOccupantAt(p models.Position) models.Occupant {
	if !w.IsInBounds(p) {
		return nil
	}
	i := w.index(p)
	occ := w.occupants[i]
	w.occupants[i] = nil
	return occ
}

// Placeholders counts the transient occupants currently in the grid
func (w *World) Placeholders() int {
	n := 0
	for _, occ := range w.occupants {
		if _, ok := occ.(*models.Placeholder); ok {
			n++
		}
	}
	return n
}

// TrackVertical forwards a vertical move of the camera-followed agent
func (w *World) TrackVertical(a *models.Agent) {
	if w.camera != nil {
		w.camera.TrackVertical(a)
	}
}

// TrackHorizontal forwards a horizontal move of the camera-followed agent
func (w *World) TrackHorizontal(a *models.Agent) {
	if w.camera != nil {
		w.camera.TrackHorizontal(a)
	}
}

// RemovePlaceholdersOf clears every placeholder held on behalf of a
func (w *World) RemovePlaceholdersOf(a *models.Agent) int {
	n := 0
	for i, occ := range w.occupants {
		if m, ok := occ.(*models.Placeholder); ok && m.Owner == a {
			w.occupants[i] = nil
			n++
		}
	}
	return n
}
