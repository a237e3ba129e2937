package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmwalk/server/geometry"
	"realmwalk/server/models"
	"realmwalk/server/planner"
	"realmwalk/server/world"
)

func pos(x, y, z int) models.Position { return models.Position{X: x, Y: y, Z: z} }

func floorWorld(width, depth, height, floorZ int) *world.World {
	w := world.New(width, depth, height)
	for z := 0; z <= floorZ; z++ {
		for y := 0; y < depth; y++ {
			for x := 0; x < width; x++ {
				w.SetTerrain(pos(x, y, z), models.TerrainSolid)
			}
		}
	}
	return w
}

// ladderWorld has a floor at z<=1 and a ladder on the face of the block at (1,2,2)
func ladderWorld(t *testing.T) *world.World {
	t.Helper()
	w := floorWorld(4, 4, 5, 1)
	w.SetTerrain(pos(1, 2, 2), models.TerrainSolid)
	require.NoError(t, w.AddThing(pos(1, 2, 2), models.NewLadder()))
	return w
}

func requireValidPath(t *testing.T, g geometry.Grid, path planner.Path, start, goal models.Position, ramps bool) {
	t.Helper()
	end, ok := path.Apply(start)
	require.True(t, ok, "moves must chain")
	require.Equal(t, goal, end)
	for i, m := range path {
		res, ok := geometry.Resolve(g, m.From, m.Dir, ramps)
		require.True(t, ok, "move %d (%s from %s) is not legal", i, m.Dir, m.From)
		assert.Equal(t, m.To, res.To, "move %d", i)
		assert.Equal(t, res.IsRamp(), m.Ramp, "move %d", i)
	}
}

func TestPlanRampAscent(t *testing.T) {
	w := ladderWorld(t)
	agent := models.NewAgent("a", "a", pos(1, 1, 2), 2)
	require.NoError(t, w.AddAgent(agent))

	a := planner.NewAStar(planner.MovementRamps, planner.Options{})
	path, ok := a.Plan(agent, w, agent.Pos, pos(1, 1, 3))
	require.True(t, ok)
	require.Len(t, path, 1)
	assert.Equal(t, models.Up, path[0].Dir)
	assert.True(t, path[0].Ramp)
	requireValidPath(t, w, path, agent.Pos, pos(1, 1, 3), true)
}

func TestPlanOverTheTop(t *testing.T) {
	w := ladderWorld(t)
	agent := models.NewAgent("a", "a", pos(1, 0, 2), 2)
	require.NoError(t, w.AddAgent(agent))

	a := planner.NewAStar(planner.MovementRamps, planner.Options{})
	path, ok := a.Plan(agent, w, agent.Pos, pos(1, 2, 3))
	require.True(t, ok)
	requireValidPath(t, w, path, agent.Pos, pos(1, 2, 3), true)
	assert.Equal(t, "up up* up*", path.String())
	assert.Equal(t, 30, a.Cost())
}

func TestSteppingIgnoresRamps(t *testing.T) {
	w := ladderWorld(t)
	agent := models.NewAgent("a", "a", pos(1, 1, 2), 2)
	require.NoError(t, w.AddAgent(agent))

	a := planner.NewAStar(planner.MovementStepping, planner.Options{})
	path, ok := a.Plan(agent, w, agent.Pos, pos(1, 1, 3))
	assert.False(t, ok)
	assert.Nil(t, path)
	assert.False(t, a.IsQueryInProgress())
}

func TestShortestOnOpenFloor(t *testing.T) {
	w := floorWorld(8, 8, 3, 0)
	agent := models.NewAgent("a", "a", pos(0, 0, 1), 2)
	require.NoError(t, w.AddAgent(agent))

	a := planner.NewAStar(planner.MovementStepping, planner.Options{Costs: planner.Costs{Plain: 3, Ramp: 5}})
	path, ok := a.Plan(agent, w, agent.Pos, pos(5, 3, 1))
	require.True(t, ok)
	assert.Len(t, path, 8)
	assert.Equal(t, 24, a.Cost())
	requireValidPath(t, w, path, agent.Pos, pos(5, 3, 1), false)
}

func TestPlanAroundWall(t *testing.T) {
	w := floorWorld(5, 5, 3, 0)
	for y := 0; y < 4; y++ {
		w.SetTerrain(pos(2, y, 1), models.TerrainSolid)
	}
	agent := models.NewAgent("a", "a", pos(0, 0, 1), 2)
	require.NoError(t, w.AddAgent(agent))

	a := planner.NewAStar(planner.MovementStepping, planner.Options{})
	path, ok := a.Plan(agent, w, agent.Pos, pos(4, 0, 1))
	require.True(t, ok)
	assert.Len(t, path, 12)
	requireValidPath(t, w, path, agent.Pos, pos(4, 0, 1), false)
}

func TestDeterministicTies(t *testing.T) {
	w := floorWorld(6, 6, 3, 0)
	agent := models.NewAgent("a", "a", pos(0, 0, 1), 2)
	require.NoError(t, w.AddAgent(agent))

	first, ok := planner.NewAStar(planner.MovementStepping, planner.Options{}).Plan(agent, w, agent.Pos, pos(4, 4, 1))
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := planner.NewAStar(planner.MovementStepping, planner.Options{}).Plan(agent, w, agent.Pos, pos(4, 4, 1))
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestResumableSearch(t *testing.T) {
	w := floorWorld(10, 10, 3, 0)
	agent := models.NewAgent("a", "a", pos(0, 0, 1), 2)
	require.NoError(t, w.AddAgent(agent))

	a := planner.NewAStar(planner.MovementStepping, planner.Options{ExpansionsPerStep: 1})
	a.StartQuery(agent, w, agent.Pos, pos(9, 9, 1))
	require.True(t, a.IsQueryInProgress())

	steps := 0
	for a.IsQueryInProgress() {
		a.Step(w)
		steps++
		require.Less(t, steps, 1000)
	}
	assert.Greater(t, steps, 1)
	assert.True(t, a.IsSolutionFound())
	assert.Len(t, a.Path(), 18)
	assert.GreaterOrEqual(t, a.Expanded(), 18)
}

func TestUnreachableGoal(t *testing.T) {
	w := floorWorld(5, 5, 3, 0)
	goal := pos(4, 4, 1)
	w.SetTerrain(pos(3, 4, 1), models.TerrainSolid)
	w.SetTerrain(pos(4, 3, 1), models.TerrainSolid)
	agent := models.NewAgent("a", "a", pos(0, 0, 1), 2)
	require.NoError(t, w.AddAgent(agent))

	a := planner.NewAStar(planner.MovementRamps, planner.Options{})
	_, ok := a.Plan(agent, w, agent.Pos, goal)
	assert.False(t, ok)
	assert.Nil(t, a.Path())
	assert.Equal(t, 0, a.Cost())
}

func TestMaxExpansions(t *testing.T) {
	w := floorWorld(10, 10, 3, 0)
	agent := models.NewAgent("a", "a", pos(0, 0, 1), 2)
	require.NoError(t, w.AddAgent(agent))

	a := planner.NewAStar(planner.MovementStepping, planner.Options{MaxExpansions: 3})
	_, ok := a.Plan(agent, w, agent.Pos, pos(9, 9, 1))
	assert.False(t, ok)
}

func TestTrivialQueries(t *testing.T) {
	w := floorWorld(3, 3, 3, 0)
	agent := models.NewAgent("a", "a", pos(1, 1, 1), 2)
	require.NoError(t, w.AddAgent(agent))

	a := planner.NewAStar(planner.MovementRamps, planner.Options{})
	a.StartQuery(agent, w, agent.Pos, agent.Pos)
	assert.False(t, a.IsQueryInProgress())
	assert.True(t, a.IsSolutionFound())
	assert.Empty(t, a.Path())

	a.StartQuery(agent, w, agent.Pos, pos(7, 7, 7))
	assert.False(t, a.IsQueryInProgress())
	assert.False(t, a.IsSolutionFound())
}

func TestParseMovementType(t *testing.T) {
	tests := []struct {
		in      string
		want    planner.MovementType
		wantErr bool
	}{
		{"", planner.MovementStepping, false},
		{"stepping", planner.MovementStepping, false},
		{"Ramps", planner.MovementRamps, false},
		{"ramp_aware", planner.MovementRamps, false},
		{"flying", planner.MovementStepping, true},
	}
	for _, tt := range tests {
		got, err := planner.ParseMovementType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
