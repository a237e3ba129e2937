package models

import "time"

// Role tags agents that need special handling by collaborators
type Role int

const (
	RoleNPC Role = iota
	RoleCameraFollowed
)

// Foot records which foot leads the gait animation
type Foot int

const (
	FootLeft Foot = iota
	FootRight
)

// Occupant is anything that can hold a cell in the occupancy grid
type Occupant interface {
	OccupantID() string
	Position() Position
	IsTransparent() bool
}

// Agent is a character occupying one grid cell
type Agent struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Pos   Position  `json:"pos"`
	Home  Position  `json:"home"`
	Dir   Direction `json:"dir"`
	Speed float64   `json:"speed"` // sub-tile increment per tick is Speed*16/32
	Role  Role      `json:"role"`

	// Sub-tile offset in sixteenths of a cell, zero when at rest
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`

	Footstep Foot `json:"footstep"`

	Stepping       bool `json:"stepping"`
	RampAscending  bool `json:"ramp_ascending"`
	RampDescending bool `json:"ramp_descending"`

	// Render hint: draw the agent at its placeholder during certain ramp moves
	RenderOnPlaceholder bool `json:"render_on_placeholder"`
	Transparent         bool `json:"-"`
}

// NewAgent creates an agent at rest at pos
func NewAgent(id, name string, pos Position, speed float64) *Agent {
	return &Agent{
		ID:       id,
		Name:     name,
		Pos:      pos,
		Home:     pos,
		Dir:      Down,
		Speed:    speed,
		Footstep: FootLeft,
	}
}

func (a *Agent) OccupantID() string  { return a.ID }
func (a *Agent) Position() Position  { return a.Pos }
func (a *Agent) IsTransparent() bool { return a.Transparent }

// InMotion reports whether any step owned by the agent is unfinished
func (a *Agent) InMotion() bool {
	return a.Stepping || a.RampAscending || a.RampDescending
}

// SwapFootstep alternates the leading foot
func (a *Agent) SwapFootstep() {
	if a.Footstep == FootRight {
		a.Footstep = FootLeft
	} else {
		a.Footstep = FootRight
	}
}

// AtRest reports whether the sub-tile offset is exactly zero
func (a *Agent) AtRest() bool {
	return a.OffsetX == 0 && a.OffsetY == 0
}

// ResetOffset snaps the agent back onto its cell
func (a *Agent) ResetOffset() {
	a.OffsetX = 0
	a.OffsetY = 0
}

// Placeholder holds a cell on behalf of an agent whose sprite still straddles it
type Placeholder struct {
	Owner       *Agent
	Pos         Position
	Transparent bool
}

// NewPlaceholder creates a placeholder for owner at pos. Transparent markers
// are drawn through, so the owner's sprite shows at the vacated cell.
func NewPlaceholder(owner *Agent, pos Position, transparent bool) *Placeholder {
	return &Placeholder{Owner: owner, Pos: pos, Transparent: transparent}
}

func (p *Placeholder) OccupantID() string  { return "placeholder:" + p.Owner.ID }
func (p *Placeholder) Position() Position  { return p.Pos }
func (p *Placeholder) IsTransparent() bool { return p.Transparent }

// EffectivePosition is the cell of the agent the placeholder stands in for
func (p *Placeholder) EffectivePosition() Position {
	return p.Owner.Pos
}

// Player is the persisted record of a connected user's agent
type Player struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Z         int       `json:"z"`
	Speed     float64   `json:"speed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Position returns the player's last known cell
func (p *Player) Position() Position {
	return Position{X: p.X, Y: p.Y, Z: p.Z}
}

// SetPosition records the player's cell
func (p *Player) SetPosition(pos Position) {
	p.X, p.Y, p.Z = pos.X, pos.Y, pos.Z
}
