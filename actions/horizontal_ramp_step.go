package actions

import (
	"realmwalk/server/geometry"
	"realmwalk/server/models"
)

// HorizontalRampStep moves onto, along or off a ramp climbed along x
type HorizontalRampStep struct {
	motion
	steppingOff bool
}

// NewHorizontalRampStep creates a horizontal ramp step in dir. steppingOff is
// the caller's classification; the step re-checks it on its first tick.
func NewHorizontalRampStep(dir models.Direction, steppingOff bool) *HorizontalRampStep {
	return &HorizontalRampStep{motion: motion{dir: dir}, steppingOff: steppingOff}
}

func (s *HorizontalRampStep) Kind() Kind { return KindHorizontalRampStep }

// SteppingOff reports whether the step leaves the ramp
func (s *HorizontalRampStep) SteppingOff() bool { return s.steppingOff }

func (s *HorizontalRampStep) Execute(agent *models.Agent, g Grid) {
	switch s.state {
	case stepFinished:
		return
	case stepUninitialized:
		t, ok := geometry.HorizontalRampTarget(g, agent.Pos, s.dir)
		if !ok {
			s.state = stepFinished
			return
		}
		s.steppingOff = t.SteppingOff
		dx, dy, dz := t.From.Delta(t.To)
		if !s.enter(agent, g, t.To, t.Placeholder, false) {
			return
		}
		// The ramp edge already carries half a level, so a z change at the
		// mouth of a ramp only has half a row left to travel.
		if dz != 0 && t.FromRamp != t.ToRamp {
			ox, _ := visualOffset(dx, dy, 0)
			s.glide.begin(agent, ox, -cellSixteenths/2*float64(dz)-cellSixteenths*float64(dy))
		}
		if dz < 0 {
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
