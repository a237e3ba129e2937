package actions

import (
	"log"

	"realmwalk/server/geometry"
	"realmwalk/server/models"
)

// stepVariant is a single-cell step the dispatcher can own
type stepVariant interface {
	Action
	Moved() bool
}

// Step chooses the step variant for a requested direction once, then drives
// it until it finishes.
type Step struct {
	dir        models.Direction
	allowRamps bool
	active     stepVariant
	finished   bool
	waiting    bool
}

// NewStep creates a step in dir that may use any ramp it finds
func NewStep(dir models.Direction) *Step {
	return &Step{dir: dir, allowRamps: true}
}

// NewPlainOnlyStep creates a step in dir that never takes a ramp
func NewPlainOnlyStep(dir models.Direction) *Step {
	return &Step{dir: dir}
}

func (s *Step) Kind() Kind             { return KindStep }
func (s *Step) IsFinished() bool       { return s.finished }
func (s *Step) RequestInterrupt() bool { return s.finished }
func (s *Step) IsInterruptable() bool  { return true }
func (s *Step) sealed()                {}

// Direction returns the requested direction
func (s *Step) Direction() models.Direction { return s.dir }

// Active returns the variant chosen for this step, nil before the first tick
func (s *Step) Active() Action {
	if s.active == nil {
		return nil
	}
	return s.active
}

// Waiting reports whether the step is held back by motion it does not own
func (s *Step) Waiting() bool { return s.waiting && s.active == nil }

// Moved reports whether the step changed the agent's cell
func (s *Step) Moved() bool {
	return s.active != nil && s.active.Moved()
}

func (s *Step) Execute(agent *models.Agent, g Grid) {
	if s.finished {
		return
	}

	if s.active == nil {
		if agent.InMotion() {
			// another action's step still owns the agent
			if !s.waiting {
				log.Printf("Agent %s is mid-step, step %s waits", agent.ID, s.dir)
				s.waiting = true
			}
			return
		}
		s.begin(agent, g)
	}
	s.active.Execute(agent, g)
	s.finished = s.active.IsFinished()
}

func (s *Step) begin(agent *models.Agent, g Grid) {
	// Facing is kept when moving sideways on a horizontal ramp so the sprite
	// does not snap mid-transition.
	if agent.Dir != s.dir && (s.dir.IsHorizontal() || !geometry.OnHorizontalRamp(g, agent.Pos)) {
		agent.Dir = s.dir
	}

	if s.allowRamps {
		if geometry.CanStepVerticalRamp(g, agent.Pos, s.dir) {
			s.active = NewVerticalRampStep(s.dir)
			return
		}
		if ok, steppingOff := geometry.ClassifyHorizontalRampStep(g, agent.Pos, s.dir); ok {
			s.active = NewHorizontalRampStep(s.dir, steppingOff)
			return
		}
	}
	s.active = NewPlainStep(s.dir)
}
