package geometry

import "realmwalk/server/models"

// VerticalTransition describes one move along a ramp climbed in y.
//
// A ramp facing Up marks the front face of a solid block; the agent climbs in
// the column in front of it. Climbing changes z while the sprite moves one
// screen row per level, so "regular" moves change z only, and "special" moves
// step between the column and the block top (the ramp mouth) by changing y.
type VerticalTransition struct {
	From        models.Position
	To          models.Position
	Placeholder models.Position
	Special     bool
	// RenderOnPlaceholder is set for the transitions whose sprite must be
	// drawn at the vacated cell to keep tile draw order correct.
	RenderOnPlaceholder bool
}

// HorizontalTransition describes one move onto, along or off a ramp climbed in x
type HorizontalTransition struct {
	From         models.Position
	To           models.Position
	Placeholder  models.Position
	SteppingOff  bool
	SteppingOn   bool
	FromRamp     bool
	ToRamp       bool
	RampRiseSide models.Direction
}

// standingOn reports whether something supports an agent at p
func standingOn(g Grid, p models.Position) bool {
	below := p.Below()
	if g.IsInBounds(below) && g.TerrainBlocking(below) {
		return true
	}
	return g.HasThing(p) && g.ThingCrossable(p)
}

// CanStepVerticalRamp reports whether a vertical ramp move from p in dir is possible
func CanStepVerticalRamp(g Grid, p models.Position, dir models.Direction) bool {
	_, ok := ClassifyVerticalRampTransition(g, p, dir)
	return ok
}

// ClassifyVerticalRampTransition resolves a vertical ramp move from p in dir
func ClassifyVerticalRampTransition(g Grid, p models.Position, dir models.Direction) (VerticalTransition, bool) {
	if !g.IsInBounds(p) {
		return VerticalTransition{}, false
	}
	ahead := p.Step(models.Up)
	t := VerticalTransition{From: p, Placeholder: p}

	switch dir {
	case models.Up:
		if VerticalRampAt(g, ahead) {
			t.To = p.Above()
			return t, !Blocked(g, t.To)
		}
		// top of the face: step off onto the block
		if !Crossable(g, p) && VerticalRampAt(g, ahead.Below()) && !Blocked(g, ahead) && Landable(g, ahead) {
			t.To = ahead
			t.Special = true
			t.RenderOnPlaceholder = true
			return t, true
		}
	case models.Down:
		if standingOn(g, p) {
			// on the block top: step onto the face
			if VerticalRampAt(g, p.Below()) {
				t.To = p.Step(models.Down)
				t.Special = true
				return t, !Blocked(g, t.To)
			}
			return VerticalTransition{}, false
		}
		if VerticalRampAt(g, ahead.Below()) {
			t.To = p.Below()
			t.RenderOnPlaceholder = true
			return t, !Blocked(g, t.To)
		}
	case models.Left, models.Right:
		to := p.Step(dir)
		if Crossable(g, p) {
			return VerticalTransition{}, false
		}
		if VerticalRampAt(g, ahead.Below()) && VerticalRampAt(g, to.Step(models.Up).Below()) && !Blocked(g, to) {
			t.To = to
			return t, true
		}
	}
	return VerticalTransition{}, false
}

// ClassifyHorizontalRampStep reports whether a move from p in dir crosses
// onto, along or off a horizontal ramp, and whether it leaves the ramp.
func ClassifyHorizontalRampStep(g Grid, p models.Position, dir models.Direction) (isRampStep, isSteppingOff bool) {
	t, ok := HorizontalRampTarget(g, p, dir)
	if !ok {
		return false, false
	}
	return true, t.SteppingOff
}

// HorizontalRampTarget resolves a horizontal ramp move from p in dir.
//
// A ramp rising Right joins level z on its left side to level z+1 on its right
// side (and the mirror for Left). Ramps chain diagonally: the next ramp up sits
// one cell along and one level higher.
func HorizontalRampTarget(g Grid, p models.Position, dir models.Direction) (HorizontalTransition, bool) {
	if !g.IsInBounds(p) || !dir.Valid() {
		return HorizontalTransition{}, false
	}
	rise, onRamp := HorizontalRampAt(g, p)
	t := HorizontalTransition{From: p, Placeholder: p, FromRamp: onRamp, RampRiseSide: rise}

	accept := func(to models.Position, toRamp bool) (HorizontalTransition, bool) {
		if Blocked(g, to) {
			return HorizontalTransition{}, false
		}
		if !toRamp && !Landable(g, to) {
			return HorizontalTransition{}, false
		}
		t.To = to
		t.ToRamp = toRamp
		t.SteppingOff = onRamp && !toRamp
		t.SteppingOn = !onRamp && toRamp
		return t, true
	}
	rampRising := func(q models.Position, want models.Direction) bool {
		d, ok := HorizontalRampAt(g, q)
		return ok && d == want
	}

	if !dir.IsHorizontal() {
		to := p.Step(dir)
		if onRamp {
			if rampRising(to, rise) {
				return accept(to, true)
			}
			return accept(to, false)
		}
		if d, ok := HorizontalRampAt(g, to); ok {
			t.RampRiseSide = d
			return accept(to, true)
		}
		return HorizontalTransition{}, false
	}

	along := p.Step(dir)
	if onRamp {
		if dir == rise {
			up := along.Above()
			return accept(up, rampRising(up, rise))
		}
		if down := along.Below(); rampRising(down, rise) {
			return accept(down, true)
		}
		return accept(along, false)
	}

	// stepping on at the bottom of a ramp rising away from us
	if rampRising(along, dir) {
		t.RampRiseSide = dir
		return accept(along, true)
	}
	// stepping on at the top of a ramp falling away from us
	if down := along.Below(); rampRising(down, dir.Opposite()) {
		t.RampRiseSide = dir.Opposite()
		return accept(down, true)
	}
	return HorizontalTransition{}, false
}
