package models

import "fmt"

// Terrain is the material filling a grid cell
type Terrain int

const (
	TerrainAir Terrain = iota
	TerrainSolid
	TerrainWater
	TerrainGlass
)

// Blocking reports whether an agent can never occupy the cell
func (t Terrain) Blocking() bool {
	return t == TerrainSolid || t == TerrainWater || t == TerrainGlass
}

// Crossable reports whether the top of the cell can be walked on
func (t Terrain) Crossable() bool {
	return t == TerrainSolid || t == TerrainGlass
}

// Transparent reports whether light passes through the cell
func (t Terrain) Transparent() bool {
	return t != TerrainSolid
}

// Terrain glyphs used in layout documents
const (
	GlyphAir   = '.'
	GlyphSolid = '#'
	GlyphWater = '~'
	GlyphGlass = '='
)

// TerrainFromGlyph maps a layout glyph to a terrain type
func TerrainFromGlyph(r rune) (Terrain, error) {
	switch r {
	case GlyphAir, ' ':
		return TerrainAir, nil
	case GlyphSolid:
		return TerrainSolid, nil
	case GlyphWater:
		return TerrainWater, nil
	case GlyphGlass:
		return TerrainGlass, nil
	}
	return TerrainAir, fmt.Errorf("unknown terrain glyph %q", r)
}

// Glyph returns the layout glyph for the terrain
func (t Terrain) Glyph() rune {
	switch t {
	case TerrainSolid:
		return GlyphSolid
	case TerrainWater:
		return GlyphWater
	case TerrainGlass:
		return GlyphGlass
	}
	return GlyphAir
}

// ThingKind identifies a placeable object
type ThingKind string

const (
	ThingStairs ThingKind = "stairs"
	ThingLadder ThingKind = "ladder"
	ThingRope   ThingKind = "rope"
	ThingBridge ThingKind = "bridge"
	ThingBar    ThingKind = "bar"
	ThingBeam   ThingKind = "beam"
)

// Thing is an object sitting in a cell. Ramps let agents change elevation:
// a ramp facing Up is climbed along the y axis, Left/Right ramps rise in
// that direction along the x axis.
type Thing struct {
	Kind        ThingKind `json:"kind"`
	Blocking    bool      `json:"blocking"`
	Crossable   bool      `json:"crossable"`
	Transparent bool      `json:"transparent"`
	HasRamp     bool      `json:"has_ramp"`
	RampDir     Direction `json:"ramp_dir"`
}

// NewStairs creates stairs rising in dir
func NewStairs(dir Direction) *Thing {
	return &Thing{Kind: ThingStairs, Crossable: true, Transparent: true, HasRamp: true, RampDir: dir}
}

// NewLadder creates a ladder climbed upwards along y
func NewLadder() *Thing {
	return &Thing{Kind: ThingLadder, Transparent: true, HasRamp: true, RampDir: Up}
}

// NewRope creates a hanging rope climbed like a ladder
func NewRope() *Thing {
	return &Thing{Kind: ThingRope, Transparent: true, HasRamp: true, RampDir: Up}
}

// NewBridge creates a walkable surface over empty space
func NewBridge() *Thing {
	return &Thing{Kind: ThingBridge, Crossable: true, Transparent: true}
}

// NewBar creates a railing that blocks movement
func NewBar() *Thing {
	return &Thing{Kind: ThingBar, Blocking: true, Transparent: true}
}

// NewBeam creates a decorative beam agents pass in front of
func NewBeam() *Thing {
	return &Thing{Kind: ThingBeam, Transparent: true}
}

// NewThing builds a thing of the given kind; dir only matters for stairs
func NewThing(kind ThingKind, dir Direction) (*Thing, error) {
	switch kind {
	case ThingStairs:
		return NewStairs(dir), nil
	case ThingLadder:
		return NewLadder(), nil
	case ThingRope:
		return NewRope(), nil
	case ThingBridge:
		return NewBridge(), nil
	case ThingBar:
		return NewBar(), nil
	case ThingBeam:
		return NewBeam(), nil
	}
	return nil, fmt.Errorf("unknown thing kind %q", kind)
}

// GameMap is the stored layout of a world
type GameMap struct {
	Name   string         `json:"name"`
	Width  int            `json:"width"`  // x
	Depth  int            `json:"depth"`  // y
	Height int            `json:"height"` // z
	Layers []TerrainLayer `json:"layers"`
	Things []ThingSpec    `json:"things,omitempty"`
	Spawns []SpawnSpec    `json:"spawns,omitempty"`
	Player *Position      `json:"player_spawn,omitempty"`
}

// TerrainLayer is one elevation of terrain; Rows[y] holds one glyph per x
type TerrainLayer struct {
	Z    int      `json:"z"`
	Rows []string `json:"rows"`
}

// ThingSpec places a thing in a layout
type ThingSpec struct {
	Kind    ThingKind  `json:"kind"`
	X       int        `json:"x"`
	Y       int        `json:"y"`
	Z       int        `json:"z"`
	RampDir *Direction `json:"ramp_dir,omitempty"`
}

// SpawnSpec places an autonomous agent in a layout
type SpawnSpec struct {
	Name      string  `json:"name"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Z         int     `json:"z"`
	Speed     float64 `json:"speed,omitempty"`
	Frequency int     `json:"frequency,omitempty"`
	Distance  int     `json:"distance,omitempty"`
}
