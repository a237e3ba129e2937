// Package actions holds the resumable units of agent behaviour. Each action
// is a state machine advanced by one Execute call per tick; all state needed
// to resume lives in the action's fields and the grid is handed in on every
// call rather than stored.
package actions

import (
	"realmwalk/server/geometry"
	"realmwalk/server/models"
)

// Grid is the world contract actions read and mutate
type Grid interface {
	geometry.Grid
	MoveAgentOccupancy(agent *models.Agent, dx, dy, dz int) error
	AddTransientOccupant(marker *models.Placeholder) error
	RemoveOccupantAt(p models.Position) models.Occupant
	OccupantAt(p models.Position) models.Occupant
}

// CameraTracker is implemented by grids that forward camera notifications
type CameraTracker interface {
	TrackVertical(agent *models.Agent)
	TrackHorizontal(agent *models.Agent)
}

// Kind enumerates the closed set of action variants
type Kind int

const (
	KindIdle Kind = iota
	KindTurn
	KindPlainStep
	KindVerticalRampStep
	KindHorizontalRampStep
	KindStep
	KindFollowPath
	KindWalkToPoint
	KindWander
)

var kindNames = map[Kind]string{
	KindIdle:               "idle",
	KindTurn:               "turn",
	KindPlainStep:          "plain_step",
	KindVerticalRampStep:   "vertical_ramp_step",
	KindHorizontalRampStep: "horizontal_ramp_step",
	KindStep:               "step",
	KindFollowPath:         "follow_path",
	KindWalkToPoint:        "walk_to_point",
	KindWander:             "wander",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Action is one unit of agent behaviour
type Action interface {
	// Execute advances the action by one tick
	Execute(agent *models.Agent, g Grid)
	IsFinished() bool
	// RequestInterrupt reports whether the action may be replaced now. It is
	// only true when the agent sits exactly on a cell boundary.
	RequestInterrupt() bool
	IsInterruptable() bool
	Kind() Kind
	sealed()
}

// Outcome reports how a navigation ended
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeArrived
	OutcomeNoPath
	OutcomeBlocked
	// OutcomeInterrupted is reported when another command replaced the walk
	OutcomeInterrupted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeArrived:
		return "arrived"
	case OutcomeNoPath:
		return "no_path"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeInterrupted:
		return "interrupted"
	}
	return "pending"
}

func trackCamera(agent *models.Agent, g Grid, vertical bool) {
	if agent.Role != models.RoleCameraFollowed {
		return
	}
	ct, ok := g.(CameraTracker)
	if !ok {
		return
	}
	if vertical {
		ct.TrackVertical(agent)
	} else {
		ct.TrackHorizontal(agent)
	}
}
