package actions

import (
	"math/rand"

	"realmwalk/server/geometry"
	"realmwalk/server/models"
	"realmwalk/server/planner"
)

// wanderAttempts bounds how many random cells are tried per outing
const wanderAttempts = 8

// Wander sends the agent on short walks around its home cell. It never
// finishes; it can be interrupted whenever the agent is between cells.
type Wander struct {
	frequency int
	distance  int
	rng       *rand.Rand
	opts      NavOptions

	wait int
	walk *WalkToPoint
}

// NewWander creates a wander that sets out every frequency ticks to a cell
// at most distance away from home on each axis.
func NewWander(frequency, distance int, rng *rand.Rand) *Wander {
	if frequency < 1 {
		frequency = 1
	}
	if distance < 1 {
		distance = 1
	}
	return &Wander{
		frequency: frequency,
		distance:  distance,
		rng:       rng,
		opts:      DefaultNavOptions(),
		wait:      frequency,
	}
}

// WithNavOptions sets the options used for each walk
func (w *Wander) WithNavOptions(opts NavOptions) *Wander {
	w.opts = opts
	return w
}

func (w *Wander) Kind() Kind            { return KindWander }
func (w *Wander) IsFinished() bool      { return false }
func (w *Wander) IsInterruptable() bool { return true }
func (w *Wander) sealed()               {}

func (w *Wander) RequestInterrupt() bool {
	if w.walk == nil {
		return true
	}
	return w.walk.RequestInterrupt()
}

// Walking returns the walk in progress, nil while waiting
func (w *Wander) Walking() *WalkToPoint { return w.walk }

func (w *Wander) Execute(agent *models.Agent, g Grid) {
	if w.walk != nil {
		w.walk.Execute(agent, g)
		if w.walk.IsFinished() {
			w.walk = nil
			w.wait = w.frequency
		}
		return
	}

	w.wait--
	if w.wait > 0 {
		return
	}
	target, ok := w.pickTarget(agent, g)
	if !ok {
		w.wait = w.frequency
		return
	}
	w.walk = NewWalkToPointWith(target, planner.MovementRamps, w.opts)
	w.walk.Execute(agent, g)
}

func (w *Wander) pickTarget(agent *models.Agent, g Grid) (models.Position, bool) {
	span := 2*w.distance + 1
	for i := 0; i < wanderAttempts; i++ {
		p := agent.Home.Add(w.rng.Intn(span)-w.distance, w.rng.Intn(span)-w.distance, 0)
		if p == agent.Pos || !g.IsInBounds(p) {
			continue
		}
		if geometry.Blocked(g, p) || !geometry.Landable(g, p) {
			continue
		}
		return p, true
	}
	return models.Position{}, false
}
