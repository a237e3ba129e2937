// Package layout turns stored world layouts into live grids. Layout documents
// are JSON and are checked against a schema before they are built.
package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"realmwalk/server/models"
	"realmwalk/server/world"
)

const schemaURL = "realmwalk://layout.schema.json"

const schemaSource = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "width", "depth", "height", "layers"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "width": {"type": "integer", "minimum": 1, "maximum": 512},
    "depth": {"type": "integer", "minimum": 1, "maximum": 512},
    "height": {"type": "integer", "minimum": 1, "maximum": 64},
    "layers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["z", "rows"],
        "properties": {
          "z": {"type": "integer", "minimum": 0},
          "rows": {"type": "array", "items": {"type": "string", "pattern": "^[.#~= ]*$"}}
        }
      }
    },
    "things": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind", "x", "y", "z"],
        "properties": {
          "kind": {"enum": ["stairs", "ladder", "rope", "bridge", "bar", "beam"]},
          "x": {"type": "integer", "minimum": 0},
          "y": {"type": "integer", "minimum": 0},
          "z": {"type": "integer", "minimum": 0},
          "ramp_dir": {"enum": ["up", "down", "left", "right"]}
        }
      }
    },
    "spawns": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "x", "y", "z"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "x": {"type": "integer", "minimum": 0},
          "y": {"type": "integer", "minimum": 0},
          "z": {"type": "integer", "minimum": 0},
          "speed": {"type": "number", "exclusiveMinimum": 0},
          "frequency": {"type": "integer", "minimum": 1},
          "distance": {"type": "integer", "minimum": 1}
        }
      }
    },
    "player_spawn": {
      "type": "object",
      "required": ["x", "y", "z"],
      "properties": {
        "x": {"type": "integer", "minimum": 0},
        "y": {"type": "integer", "minimum": 0},
        "z": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, schemaSource)
	})
	return schema, schemaErr
}

// Validate checks a raw layout document against the layout schema
func Validate(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile layout schema: %w", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode layout: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}
	return nil
}

// Parse validates and decodes a layout document
func Parse(raw []byte) (*models.GameMap, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var gm models.GameMap
	if err := json.Unmarshal(raw, &gm); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return &gm, nil
}

// LoadFile reads and parses a layout file
func LoadFile(path string) (*models.GameMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	gm, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return gm, nil
}

// Build creates a world from a layout. Spawns are left to the caller.
func Build(gm *models.GameMap) (*world.World, error) {
	if gm.Width <= 0 || gm.Depth <= 0 || gm.Height <= 0 {
		return nil, fmt.Errorf("layout %q has empty dimensions %dx%dx%d", gm.Name, gm.Width, gm.Depth, gm.Height)
	}
	w := world.New(gm.Width, gm.Depth, gm.Height)

	for _, layer := range gm.Layers {
		if layer.Z < 0 || layer.Z >= gm.Height {
			return nil, fmt.Errorf("layer z=%d outside height %d", layer.Z, gm.Height)
		}
		if len(layer.Rows) > gm.Depth {
			return nil, fmt.Errorf("layer z=%d has %d rows, depth is %d", layer.Z, len(layer.Rows), gm.Depth)
		}
		for y, row := range layer.Rows {
			x := 0
			for _, r := range row {
				if x >= gm.Width {
					return nil, fmt.Errorf("layer z=%d row %d is wider than %d", layer.Z, y, gm.Width)
				}
				t, err := models.TerrainFromGlyph(r)
				if err != nil {
					return nil, fmt.Errorf("layer z=%d row %d: %w", layer.Z, y, err)
				}
				w.SetTerrain(models.Position{X: x, Y: y, Z: layer.Z}, t)
				x++
			}
		}
	}

	for i, spec := range gm.Things {
		dir := models.Up
		if spec.RampDir != nil {
			dir = *spec.RampDir
		}
		thing, err := models.NewThing(spec.Kind, dir)
		if err != nil {
			return nil, fmt.Errorf("thing %d: %w", i, err)
		}
		if err := w.AddThing(models.Position{X: spec.X, Y: spec.Y, Z: spec.Z}, thing); err != nil {
			return nil, fmt.Errorf("thing %d: %w", i, err)
		}
	}
	return w, nil
}

// Snapshot records a world's terrain and things as a layout. Agents are not
// part of a layout.
func Snapshot(name string, w *world.World, spawns []models.SpawnSpec, player *models.Position) *models.GameMap {
	width, depth, height := w.Dimensions()
	gm := &models.GameMap{Name: name, Width: width, Depth: depth, Height: height, Spawns: spawns, Player: player}

	for z := 0; z < height; z++ {
		rows := make([]string, depth)
		empty := true
		for y := 0; y < depth; y++ {
			var sb strings.Builder
			for x := 0; x < width; x++ {
				p := models.Position{X: x, Y: y, Z: z}
				t := w.TerrainAt(p)
				if t != models.TerrainAir {
					empty = false
				}
				sb.WriteRune(t.Glyph())
				for _, thing := range w.ThingsAt(p) {
					spec := models.ThingSpec{Kind: thing.Kind, X: x, Y: y, Z: z}
					if thing.HasRamp {
						dir := thing.RampDir
						spec.RampDir = &dir
					}
					gm.Things = append(gm.Things, spec)
				}
			}
			rows[y] = sb.String()
		}
		if !empty {
			gm.Layers = append(gm.Layers, models.TerrainLayer{Z: z, Rows: rows})
		}
	}
	return gm
}
