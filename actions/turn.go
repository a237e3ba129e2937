package actions

import "realmwalk/server/models"

// Turn faces the agent in a direction without moving it
type Turn struct {
	dir      models.Direction
	finished bool
}

// NewTurn creates a turn towards dir
func NewTurn(dir models.Direction) *Turn {
	return &Turn{dir: dir}
}

func (t *Turn) Kind() Kind             { return KindTurn }
func (t *Turn) IsFinished() bool       { return t.finished }
func (t *Turn) RequestInterrupt() bool { return true }
func (t *Turn) IsInterruptable() bool  { return true }
func (t *Turn) sealed()                {}

func (t *Turn) Execute(agent *models.Agent, _ Grid) {
	if t.finished {
		return
	}
	agent.Dir = t.dir
	t.finished = true
}
