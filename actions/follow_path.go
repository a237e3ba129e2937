package actions

import (
	"realmwalk/server/models"
	"realmwalk/server/planner"
)

// FollowPath walks a planned path one dispatched step at a time
type FollowPath struct {
	path     planner.Path
	cursor   int
	active   *Step
	finished bool
	outcome  Outcome
}

// NewFollowPath creates a follower that starts at the move at cursor
func NewFollowPath(path planner.Path, cursor int) *FollowPath {
	if cursor < 0 {
		cursor = 0
	}
	return &FollowPath{path: path, cursor: cursor}
}

func (f *FollowPath) Kind() Kind            { return KindFollowPath }
func (f *FollowPath) IsFinished() bool      { return f.finished }
func (f *FollowPath) IsInterruptable() bool { return true }
func (f *FollowPath) sealed()               {}

// RequestInterrupt is only true between moves
func (f *FollowPath) RequestInterrupt() bool {
	if f.finished || f.active == nil {
		return true
	}
	return f.active.RequestInterrupt()
}

// Outcome reports how the follower ended, OutcomePending while running
func (f *FollowPath) Outcome() Outcome { return f.outcome }

// Cursor returns the index of the move being walked
func (f *FollowPath) Cursor() int { return f.cursor }

// Remaining returns the moves not yet completed
func (f *FollowPath) Remaining() planner.Path {
	if f.cursor >= len(f.path) {
		return nil
	}
	return f.path[f.cursor:]
}

func (f *FollowPath) Execute(agent *models.Agent, g Grid) {
	if f.finished {
		return
	}
	if f.active == nil {
		if f.cursor >= len(f.path) {
			f.finish(OutcomeArrived)
			return
		}
		m := f.path[f.cursor]
		if agent.Pos != m.From {
			f.finish(OutcomeBlocked)
			return
		}
		if m.Ramp {
			f.active = NewStep(m.Dir)
		} else {
			f.active = NewPlainOnlyStep(m.Dir)
		}
	}

	f.active.Execute(agent, g)
	if !f.active.IsFinished() {
		return
	}

	// the world may have changed since planning
	if agent.Pos != f.path[f.cursor].To {
		f.finish(OutcomeBlocked)
		return
	}
	f.active = nil
	f.cursor++
	if f.cursor >= len(f.path) {
		f.finish(OutcomeArrived)
	}
}

func (f *FollowPath) finish(o Outcome) {
	f.finished = true
	f.outcome = o
	f.active = nil
}
