package actions

import (
	"realmwalk/server/geometry"
	"realmwalk/server/models"
)

// VerticalRampStep climbs, descends or traverses a ramp climbed along y
type VerticalRampStep struct {
	motion
	// special tracks stepping off the top when ascending and stepping on
	// from the top when descending
	special bool
}

// NewVerticalRampStep creates a vertical ramp step in dir
func NewVerticalRampStep(dir models.Direction) *VerticalRampStep {
	return &VerticalRampStep{motion: motion{dir: dir}}
}

func (s *VerticalRampStep) Kind() Kind { return KindVerticalRampStep }

// Special reports whether the step crossed the ramp mouth
func (s *VerticalRampStep) Special() bool { return s.special }

func (s *VerticalRampStep) Execute(agent *models.Agent, g Grid) {
	switch s.state {
	case stepFinished:
		return
	case stepUninitialized:
		t, ok := geometry.ClassifyVerticalRampTransition(g, agent.Pos, s.dir)
		if !ok {
			s.state = stepFinished
			return
		}
		// set before the placeholder is created so it is drawn in the agent's place
		agent.RenderOnPlaceholder = t.RenderOnPlaceholder
		if !s.enter(agent, g, t.To, t.Placeholder, t.RenderOnPlaceholder) {
			agent.RenderOnPlaceholder = false
			return
		}
		s.special = t.Special
		if s.dir == models.Down {
			agent.RampDescending = true
		} else {
			agent.RampAscending = true
		}
	}

	if s.glide.advance(agent) {
		s.settle(agent, g)
	}
	trackCamera(agent, g, !s.dir.IsHorizontal())
}
