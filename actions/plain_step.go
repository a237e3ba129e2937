package actions

import (
	"realmwalk/server/geometry"
	"realmwalk/server/models"
)

type stepState int

const (
	stepUninitialized stepState = iota
	stepInProgress
	stepFinished
)

// motion is the state shared by the single-cell step variants
type motion struct {
	dir    models.Direction
	state  stepState
	marker *models.Placeholder
	glide  glide
	moved  bool
}

func (m *motion) IsFinished() bool       { return m.state == stepFinished }
func (m *motion) RequestInterrupt() bool { return m.state == stepFinished }
func (m *motion) IsInterruptable() bool  { return true }
func (m *motion) sealed()                {}

// Moved reports whether the step changed the agent's cell
func (m *motion) Moved() bool { return m.moved }

// enter moves the agent's logical cell to `to` immediately, covers the
// vacated cell with a placeholder and starts the visual glide. The caller has
// already checked the move with a geometry predicate.
func (m *motion) enter(agent *models.Agent, g Grid, to, placeholderAt models.Position, transparent bool) bool {
	dx, dy, dz := agent.Pos.Delta(to)
	if err := g.MoveAgentOccupancy(agent, dx, dy, dz); err != nil {
		m.state = stepFinished
		return false
	}
	m.moved = true
	m.marker = insertPlaceholder(agent, g, placeholderAt, transparent)
	ox, oy := visualOffset(dx, dy, dz)
	m.glide.begin(agent, ox, oy)
	m.state = stepInProgress
	return true
}

// settle ends the step once the glide has reached the cell
func (m *motion) settle(agent *models.Agent, g Grid) {
	agent.ResetOffset()
	agent.SwapFootstep()
	removePlaceholder(g, m.marker)
	m.marker = nil
	agent.Stepping = false
	agent.RampAscending = false
	agent.RampDescending = false
	agent.RenderOnPlaceholder = false
	m.state = stepFinished
}

// PlainStep moves an agent one cell on level ground
type PlainStep struct {
	motion
}

// NewPlainStep creates a plain step in dir
func NewPlainStep(dir models.Direction) *PlainStep {
	return &PlainStep{motion: motion{dir: dir}}
}

func (s *PlainStep) Kind() Kind { return KindPlainStep }

func (s *PlainStep) Execute(agent *models.Agent, g Grid) {
	switch s.state {
	case stepFinished:
		return
	case stepUninitialized:
		to, ok := geometry.PlainTarget(g, agent.Pos, s.dir)
		if !ok {
			s.state = stepFinished
			return
		}
		if !s.enter(agent, g, to, agent.Pos, false) {
			return
		}
		agent.Stepping = true
	}

	if s.glide.advance(agent) {
		s.settle(agent, g)
	}
	trackCamera(agent, g, !s.dir.IsHorizontal())
}
