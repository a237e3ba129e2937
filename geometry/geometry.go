// Package geometry answers movement questions about a grid without changing it.
// Every predicate is total: cells outside the grid are never ramps, never
// landable and always blocked.
package geometry

import "realmwalk/server/models"

// Grid is the read-only view of the world the predicates need
type Grid interface {
	IsInBounds(p models.Position) bool
	IsOccupied(p models.Position) bool
	HasThing(p models.Position) bool
	TerrainBlocking(p models.Position) bool
	TerrainCrossable(p models.Position) bool
	TerrainTransparent(p models.Position) bool
	ThingBlocking(p models.Position) bool
	ThingCrossable(p models.Position) bool
	ThingHasRamp(p models.Position) bool
	ThingRampDirection(p models.Position) models.Direction
	EdgeBlocked(p models.Position) bool
}

// Blocked reports whether an agent cannot move into p
func Blocked(g Grid, p models.Position) bool {
	switch {
	case !g.IsInBounds(p):
		return true
	case g.IsOccupied(p):
		return true
	case g.TerrainBlocking(p):
		return true
	case g.HasThing(p) && g.ThingBlocking(p):
		return true
	}
	return g.EdgeBlocked(p)
}

// Crossable reports whether an agent can stand in p: either the cell below is
// a walkable solid or p holds a crossable thing.
func Crossable(g Grid, p models.Position) bool {
	below := p.Below()
	if g.IsInBounds(below) && g.TerrainBlocking(below) && g.TerrainCrossable(below) {
		return true
	}
	return g.HasThing(p) && g.ThingCrossable(p)
}

// Landable reports whether a plain step may end in p
func Landable(g Grid, p models.Position) bool {
	if g.HasThing(p) && g.ThingHasRamp(p) {
		return false
	}
	return Crossable(g, p)
}

// VerticalRampAt reports whether p holds a ramp climbed along y
func VerticalRampAt(g Grid, p models.Position) bool {
	return g.IsInBounds(p) && g.ThingHasRamp(p) && g.ThingRampDirection(p) == models.Up
}

// HorizontalRampAt returns the rise direction of a ramp climbed along x
func HorizontalRampAt(g Grid, p models.Position) (models.Direction, bool) {
	if !g.IsInBounds(p) || !g.ThingHasRamp(p) {
		return 0, false
	}
	dir := g.ThingRampDirection(p)
	if !dir.IsHorizontal() {
		return 0, false
	}
	return dir, true
}

// OnHorizontalRamp reports whether an agent at p stands on a horizontal ramp
func OnHorizontalRamp(g Grid, p models.Position) bool {
	_, ok := HorizontalRampAt(g, p)
	return ok
}

// PlainTarget returns the cell a plain step from p in dir would end in
func PlainTarget(g Grid, p models.Position, dir models.Direction) (models.Position, bool) {
	to := p.Step(dir)
	if Blocked(g, to) || !Landable(g, to) {
		return models.Position{}, false
	}
	return to, true
}

// CanBeginRampStep reports whether a step from p in dir is a ramp step
func CanBeginRampStep(g Grid, p models.Position, dir models.Direction) bool {
	if CanStepVerticalRamp(g, p, dir) {
		return true
	}
	ok, _ := ClassifyHorizontalRampStep(g, p, dir)
	return ok
}
