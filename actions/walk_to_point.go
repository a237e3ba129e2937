package actions

import (
	"log"

	"realmwalk/server/models"
	"realmwalk/server/planner"
)

// DefaultReplans is how often navigation replans after a blocked move
const DefaultReplans = 2

// NavOptions tune goal-directed navigation
type NavOptions struct {
	Planner planner.Options
	Replans int
}

// DefaultNavOptions returns the options NewWalkToPoint uses
func DefaultNavOptions() NavOptions {
	return NavOptions{Replans: DefaultReplans}
}

type navState int

const (
	navPlanning navState = iota
	navFollowing
	navDone
)

// WalkToPoint plans a path to a goal cell and follows it
type WalkToPoint struct {
	goal     models.Position
	movement planner.MovementType
	opts     NavOptions

	state       navState
	planner     *planner.AStar
	follower    *FollowPath
	replansLeft int
	outcome     Outcome
	started     bool
}

// NewWalkToPoint creates a navigation to goal with default options
func NewWalkToPoint(goal models.Position, movement planner.MovementType) *WalkToPoint {
	return NewWalkToPointWith(goal, movement, DefaultNavOptions())
}

// NewWalkToPointWith creates a navigation to goal with explicit options
func NewWalkToPointWith(goal models.Position, movement planner.MovementType, opts NavOptions) *WalkToPoint {
	if opts.Replans < 0 {
		opts.Replans = 0
	}
	return &WalkToPoint{
		goal:        goal,
		movement:    movement,
		opts:        opts,
		planner:     planner.NewAStar(movement, opts.Planner),
		replansLeft: opts.Replans,
	}
}

func (w *WalkToPoint) Kind() Kind            { return KindWalkToPoint }
func (w *WalkToPoint) IsFinished() bool      { return w.state == navDone }
func (w *WalkToPoint) IsInterruptable() bool { return true }
func (w *WalkToPoint) sealed()               {}

// RequestInterrupt is true while planning and between moves
func (w *WalkToPoint) RequestInterrupt() bool {
	if w.state == navFollowing {
		return w.follower.RequestInterrupt()
	}
	return true
}

// Goal returns the target cell
func (w *WalkToPoint) Goal() models.Position { return w.goal }

// MovementType returns the move set used for planning
func (w *WalkToPoint) MovementType() planner.MovementType { return w.movement }

// Outcome reports why navigation finished, OutcomePending until then
func (w *WalkToPoint) Outcome() Outcome { return w.outcome }

// Planning reports whether a planner query is still running
func (w *WalkToPoint) Planning() bool { return w.state == navPlanning }

func (w *WalkToPoint) Execute(agent *models.Agent, g Grid) {
	if w.state == navDone {
		return
	}

	if w.state == navPlanning {
		if !w.started {
			w.planner.StartQuery(agent, g, agent.Pos, w.goal)
			w.started = true
		}
		w.planner.Step(g)
		if w.planner.IsQueryInProgress() {
			return
		}
		if !w.planner.IsSolutionFound() {
			log.Printf("Agent %s has no path from %s to %s", agent.ID, agent.Pos, w.goal)
			w.done(OutcomeNoPath)
			return
		}
		w.follower = NewFollowPath(w.planner.Path(), 0)
		w.state = navFollowing
	}

	w.follower.Execute(agent, g)
	if !w.follower.IsFinished() {
		return
	}
	switch w.follower.Outcome() {
	case OutcomeArrived:
		w.done(OutcomeArrived)
	default:
		if w.replansLeft == 0 {
			log.Printf("Agent %s blocked at %s on the way to %s", agent.ID, agent.Pos, w.goal)
			w.done(OutcomeBlocked)
			return
		}
		w.replansLeft--
		w.follower = nil
		w.started = false
		w.state = navPlanning
	}
}

func (w *WalkToPoint) done(o Outcome) {
	w.state = navDone
	w.outcome = o
}
