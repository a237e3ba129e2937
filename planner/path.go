package planner

import (
	"fmt"
	"strings"

	"realmwalk/server/models"
)

// MovementType selects which moves the planner may use
type MovementType int

const (
	// MovementStepping only uses plain steps on level ground
	MovementStepping MovementType = iota
	// MovementRamps also climbs and descends ramps
	MovementRamps
)

func (m MovementType) String() string {
	if m == MovementRamps {
		return "ramps"
	}
	return "stepping"
}

// ParseMovementType converts a protocol name into a MovementType
func ParseMovementType(s string) (MovementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stepping", "plain":
		return MovementStepping, nil
	case "ramps", "ramp", "ramp_aware":
		return MovementRamps, nil
	}
	return MovementStepping, fmt.Errorf("invalid movement type %q", s)
}

// Move is one planned single-cell transition
type Move struct {
	Dir  models.Direction `json:"dir"`
	Ramp bool             `json:"ramp"`
	From models.Position  `json:"from"`
	To   models.Position  `json:"to"`
}

// Path is an ordered list of moves from a start to a goal
type Path []Move

// Start returns the cell the path begins in
func (p Path) Start() (models.Position, bool) {
	if len(p) == 0 {
		return models.Position{}, false
	}
	return p[0].From, true
}

// Goal returns the cell the path ends in
func (p Path) Goal() (models.Position, bool) {
	if len(p) == 0 {
		return models.Position{}, false
	}
	return p[len(p)-1].To, true
}

// Apply returns the cell reached by applying every move from start,
// and false if the moves do not chain.
func (p Path) Apply(start models.Position) (models.Position, bool) {
	cur := start
	for _, m := range p {
		if m.From != cur {
			return cur, false
		}
		cur = m.To
	}
	return cur, true
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, m := range p {
		if m.Ramp {
			parts[i] = m.Dir.String() + "*"
		} else {
			parts[i] = m.Dir.String()
		}
	}
	return strings.Join(parts, " ")
}
