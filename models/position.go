package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Position identifies a grid cell. Y grows "up" the screen and Z is elevation.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns the position offset by the given deltas
func (p Position) Add(dx, dy, dz int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Step returns the neighbouring position in a direction on the same level
func (p Position) Step(dir Direction) Position {
	dx, dy := dir.Delta()
	return p.Add(dx, dy, 0)
}

// Above returns the position one level higher
func (p Position) Above() Position {
	return p.Add(0, 0, 1)
}

// Below returns the position one level lower
func (p Position) Below() Position {
	return p.Add(0, 0, -1)
}

// Delta returns the per-axis difference to another position
func (p Position) Delta(to Position) (dx, dy, dz int) {
	return to.X - p.X, to.Y - p.Y, to.Z - p.Z
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Direction is one of the four cardinal facings
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists the cardinal directions in the fixed order used wherever
// neighbours are enumerated.
var Directions = [...]Direction{Up, Down, Left, Right}

var directionNames = [...]string{"up", "down", "left", "right"}

// Delta returns the x/y offset of one cell in this direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// IsHorizontal reports whether the direction moves along the x axis
func (d Direction) IsHorizontal() bool {
	return d == Left || d == Right
}

// Valid reports whether d is one of the four cardinal directions
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection converts a direction name into a Direction.
// The compass names used by the old move protocol are accepted as aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "north":
		return Up, nil
	case "down", "south":
		return Down, nil
	case "left", "west":
		return Left, nil
	case "right", "east":
		return Right, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

func (d Direction) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
