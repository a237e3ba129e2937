package messages

import (
	"encoding/json"

	"realmwalk/server/models"
)

// MessageType defines the type of message being sent
type MessageType string

const (
	MessageTypeLogin        MessageType = "login"
	MessageTypeLoginSuccess MessageType = "login_success"
	MessageTypeStep         MessageType = "step"
	MessageTypeTurn         MessageType = "turn"
	MessageTypeWalkTo       MessageType = "walk_to"
	MessageTypeUpdate       MessageType = "update"
	MessageTypeNavResult    MessageType = "nav_result"
	MessageTypeError        MessageType = "error"
)

// BaseMessage is the base structure for all outgoing messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is an incoming message whose payload is decoded once the type is known
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// LoginMessage represents a login request
type LoginMessage struct {
	Username string `json:"username"`
}

// LoginSuccessMessage represents a successful login response
type LoginSuccessMessage struct {
	PlayerID string          `json:"player_id"`
	AgentID  string          `json:"agent_id"`
	Position models.Position `json:"position"`
	Message  string          `json:"message"`
}

// StepMessage asks for a single step
type StepMessage struct {
	Direction string `json:"direction"` // up, down, left, right
}

// TurnMessage asks the agent to face a direction without moving
type TurnMessage struct {
	Direction string `json:"direction"`
}

// WalkToMessage asks the agent to navigate to a cell
type WalkToMessage struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Z        int    `json:"z"`
	Movement string `json:"movement"` // stepping or ramps; empty means stepping
}

// AgentView is an agent as seen by a client
type AgentView struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Pos                 models.Position `json:"pos"`
	Dir                 string          `json:"dir"`
	OffsetX             float64         `json:"offset_x"`
	OffsetY             float64         `json:"offset_y"`
	Footstep            int             `json:"footstep"`
	Moving              bool            `json:"moving"`
	RenderOnPlaceholder bool            `json:"render_on_placeholder"`
	Action              string          `json:"action"`
}

// MapLayer is one z level of the visible window, rows listed from the top (high y)
type MapLayer struct {
	Z    int      `json:"z"`
	Rows []string `json:"rows"`
}

// ThingView is a placed object inside the visible window
type ThingView struct {
	Kind    string          `json:"kind"`
	Pos     models.Position `json:"pos"`
	RampDir string          `json:"ramp_dir,omitempty"`
}

// MapView is the terrain around an agent
type MapView struct {
	Center models.Position `json:"center"`
	Radius int             `json:"radius"`
	Layers []MapLayer      `json:"layers"`
	Things []ThingView     `json:"things,omitempty"`
}

// UpdateMessage represents a world update
type UpdateMessage struct {
	Tick   uint64      `json:"tick"`
	Self   AgentView   `json:"self"`
	Agents []AgentView `json:"agents"`
	Map    MapView     `json:"map"`
}

// NavResultMessage reports how a walk_to ended
type NavResultMessage struct {
	Goal    models.Position `json:"goal"`
	Outcome string          `json:"outcome"` // arrived, no_path, blocked, interrupted
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
