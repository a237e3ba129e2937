package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmwalk/server/geometry"
	"realmwalk/server/models"
	"realmwalk/server/world"
)

// floorWorld returns a world whose cells up to and including floorZ are solid
func floorWorld(width, depth, height, floorZ int) *world.World {
	w := world.New(width, depth, height)
	for z := 0; z <= floorZ; z++ {
		for y := 0; y < depth; y++ {
			for x := 0; x < width; x++ {
				w.SetTerrain(models.Position{X: x, Y: y, Z: z}, models.TerrainSolid)
			}
		}
	}
	return w
}

// ladderWorld has a floor at z<=1 and a one-level ladder on the front face of
// a solid block at (1,2,2).
func ladderWorld(t *testing.T) *world.World {
	t.Helper()
	w := floorWorld(4, 4, 5, 1)
	face := models.Position{X: 1, Y: 2, Z: 2}
	w.SetTerrain(face, models.TerrainSolid)
	require.NoError(t, w.AddThing(face, models.NewLadder()))
	return w
}

// stairsWorld has a floor at z=0, stairs rising right at (2,1,1) and a solid
// block at (3,1,1) forming the upper landing.
func stairsWorld(t *testing.T) *world.World {
	t.Helper()
	w := floorWorld(6, 3, 4, 0)
	require.NoError(t, w.AddThing(models.Position{X: 2, Y: 1, Z: 1}, models.NewStairs(models.Right)))
	w.SetTerrain(models.Position{X: 3, Y: 1, Z: 1}, models.TerrainSolid)
	return w
}

func pos(x, y, z int) models.Position { return models.Position{X: x, Y: y, Z: z} }

func TestBlocked(t *testing.T) {
	w := floorWorld(3, 3, 3, 0)
	require.NoError(t, w.AddThing(pos(2, 2, 1), models.NewBar()))
	require.NoError(t, w.AddAgent(models.NewAgent("a", "a", pos(0, 0, 1), 2)))

	tests := []struct {
		name string
		p    models.Position
		want bool
	}{
		{"free cell", pos(1, 1, 1), false},
		{"out of bounds", pos(-1, 1, 1), true},
		{"above the top", pos(1, 1, 3), true},
		{"solid terrain", pos(1, 1, 0), true},
		{"blocking thing", pos(2, 2, 1), true},
		{"occupied", pos(0, 0, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geometry.Blocked(w, tt.p))
		})
	}
}

func TestCrossableAndLandable(t *testing.T) {
	w := floorWorld(4, 3, 4, 0)
	w.SetTerrain(pos(3, 0, 0), models.TerrainWater)
	require.NoError(t, w.AddThing(pos(1, 1, 2), models.NewBridge()))
	require.NoError(t, w.AddThing(pos(2, 1, 1), models.NewStairs(models.Right)))

	assert.True(t, geometry.Crossable(w, pos(0, 0, 1)), "on the floor")
	assert.False(t, geometry.Crossable(w, pos(0, 0, 2)), "in mid air")
	assert.False(t, geometry.Crossable(w, pos(3, 0, 1)), "above water")
	assert.True(t, geometry.Crossable(w, pos(1, 1, 2)), "on a bridge")

	assert.True(t, geometry.Landable(w, pos(0, 0, 1)))
	assert.True(t, geometry.Landable(w, pos(1, 1, 2)))
	assert.False(t, geometry.Landable(w, pos(2, 1, 1)), "ramps are not plain step targets")
}

func TestPlainTarget(t *testing.T) {
	w := floorWorld(3, 3, 3, 0)
	w.SetTerrain(pos(0, 1, 1), models.TerrainSolid)

	to, ok := geometry.PlainTarget(w, pos(1, 1, 1), models.Right)
	require.True(t, ok)
	assert.Equal(t, pos(2, 1, 1), to)

	_, ok = geometry.PlainTarget(w, pos(1, 1, 1), models.Left)
	assert.False(t, ok, "solid terrain")

	_, ok = geometry.PlainTarget(w, pos(2, 1, 1), models.Right)
	assert.False(t, ok, "edge of the world")
}

func TestVerticalRampTransitions(t *testing.T) {
	w := ladderWorld(t)

	tests := []struct {
		name    string
		from    models.Position
		dir     models.Direction
		to      models.Position
		special bool
		onPH    bool
	}{
		{"climb the face", pos(1, 1, 2), models.Up, pos(1, 1, 3), false, false},
		{"step off the top", pos(1, 1, 3), models.Up, pos(1, 2, 3), true, true},
		{"step onto the top", pos(1, 2, 3), models.Down, pos(1, 1, 3), true, false},
		{"descend the face", pos(1, 1, 3), models.Down, pos(1, 1, 2), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := geometry.ClassifyVerticalRampTransition(w, tt.from, tt.dir)
			require.True(t, ok)
			assert.Equal(t, tt.from, tr.From)
			assert.Equal(t, tt.to, tr.To)
			assert.Equal(t, tt.from, tr.Placeholder, "placeholder goes on the vacated cell")
			assert.Equal(t, tt.special, tr.Special)
			assert.Equal(t, tt.onPH, tr.RenderOnPlaceholder)
		})
	}
}

func TestVerticalRampRejections(t *testing.T) {
	w := ladderWorld(t)

	assert.False(t, geometry.CanStepVerticalRamp(w, pos(0, 1, 2), models.Up), "no ladder ahead")
	assert.False(t, geometry.CanStepVerticalRamp(w, pos(1, 1, 2), models.Down), "standing on the floor")
	assert.False(t, geometry.CanStepVerticalRamp(w, pos(1, 1, 2), models.Left), "sideways on the ground")

	require.NoError(t, w.AddAgent(models.NewAgent("blocker", "b", pos(1, 1, 3), 2)))
	assert.False(t, geometry.CanStepVerticalRamp(w, pos(1, 1, 2), models.Up), "occupied above")
}

func TestVerticalRampSideways(t *testing.T) {
	w := floorWorld(4, 4, 5, 1)
	for x := 1; x <= 2; x++ {
		for z := 2; z <= 3; z++ {
			face := pos(x, 2, z)
			w.SetTerrain(face, models.TerrainSolid)
			require.NoError(t, w.AddThing(face, models.NewLadder()))
		}
	}

	tr, ok := geometry.ClassifyVerticalRampTransition(w, pos(1, 1, 3), models.Right)
	require.True(t, ok)
	assert.Equal(t, pos(2, 1, 3), tr.To)
	assert.False(t, tr.Special)

	_, ok = geometry.ClassifyVerticalRampTransition(w, pos(2, 1, 3), models.Right)
	assert.False(t, ok, "no ladder to the right")
}

func TestHorizontalRampTargets(t *testing.T) {
	w := stairsWorld(t)

	tests := []struct {
		name     string
		from     models.Position
		dir      models.Direction
		to       models.Position
		on, off  bool
		fromRamp bool
		toRamp   bool
	}{
		{"step on at the bottom", pos(1, 1, 1), models.Right, pos(2, 1, 1), true, false, false, true},
		{"climb off the top", pos(2, 1, 1), models.Right, pos(3, 1, 2), false, true, true, false},
		{"step on from the top", pos(3, 1, 2), models.Left, pos(2, 1, 1), true, false, false, true},
		{"walk off the bottom", pos(2, 1, 1), models.Left, pos(1, 1, 1), false, true, true, false},
		{"step sideways off", pos(2, 1, 1), models.Up, pos(2, 2, 1), false, true, true, false},
		{"step sideways on", pos(2, 2, 1), models.Down, pos(2, 1, 1), true, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := geometry.HorizontalRampTarget(w, tt.from, tt.dir)
			require.True(t, ok)
			assert.Equal(t, tt.to, tr.To)
			assert.Equal(t, tt.on, tr.SteppingOn)
			assert.Equal(t, tt.off, tr.SteppingOff)
			assert.Equal(t, tt.fromRamp, tr.FromRamp)
			assert.Equal(t, tt.toRamp, tr.ToRamp)
			assert.Equal(t, models.Right, tr.RampRiseSide)
		})
	}

	ok, _ := geometry.ClassifyHorizontalRampStep(w, pos(0, 1, 1), models.Right)
	assert.False(t, ok, "ramp is two cells away")
}

func TestHorizontalRampChain(t *testing.T) {
	w := floorWorld(6, 3, 5, 0)
	require.NoError(t, w.AddThing(pos(1, 1, 1), models.NewStairs(models.Right)))
	require.NoError(t, w.AddThing(pos(2, 1, 2), models.NewStairs(models.Right)))
	w.SetTerrain(pos(2, 1, 1), models.TerrainSolid)
	w.SetTerrain(pos(3, 1, 1), models.TerrainSolid)
	w.SetTerrain(pos(3, 1, 2), models.TerrainSolid)

	tr, ok := geometry.HorizontalRampTarget(w, pos(1, 1, 1), models.Right)
	require.True(t, ok)
	assert.Equal(t, pos(2, 1, 2), tr.To)
	assert.True(t, tr.FromRamp)
	assert.True(t, tr.ToRamp)
	assert.False(t, tr.SteppingOff)

	tr, ok = geometry.HorizontalRampTarget(w, pos(2, 1, 2), models.Left)
	require.True(t, ok)
	assert.Equal(t, pos(1, 1, 1), tr.To)
	assert.True(t, tr.ToRamp)
}

func TestResolvePriority(t *testing.T) {
	w := ladderWorld(t)

	res, ok := geometry.Resolve(w, pos(1, 1, 2), models.Up, true)
	require.True(t, ok)
	assert.Equal(t, geometry.StepVerticalRamp, res.Kind)
	assert.True(t, res.IsRamp())
	assert.Equal(t, pos(1, 1, 3), res.To)

	_, ok = geometry.Resolve(w, pos(1, 1, 2), models.Up, false)
	assert.False(t, ok, "plain only cannot climb")

	res, ok = geometry.Resolve(w, pos(1, 1, 2), models.Down, true)
	require.True(t, ok)
	assert.Equal(t, geometry.StepPlain, res.Kind)
	assert.Equal(t, pos(1, 0, 2), res.To)

	s := stairsWorld(t)
	res, ok = geometry.Resolve(s, pos(1, 1, 1), models.Right, true)
	require.True(t, ok)
	assert.Equal(t, geometry.StepHorizontalRamp, res.Kind)
	assert.Equal(t, "horizontal_ramp", res.Kind.String())
}

func TestEdgeBlockedOnlyInDeepWorlds(t *testing.T) {
	shallow := floorWorld(3, 10, 4, 0)
	assert.False(t, shallow.EdgeBlocked(pos(1, 0, 1)))

	deep := floorWorld(3, 24, 4, 0)
	assert.True(t, deep.EdgeBlocked(pos(1, 0, 1)), "clipped by the top edge")
	assert.False(t, deep.EdgeBlocked(pos(1, 5, 1)))
	assert.True(t, geometry.Blocked(deep, pos(1, 0, 1)))
}
