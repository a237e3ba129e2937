package actions_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmwalk/server/actions"
	"realmwalk/server/models"
	"realmwalk/server/planner"
)

func TestWalkToPointRampAscent(t *testing.T) {
	w := ladderWorld(t)
	a := spawn(t, w, "climber", pos(1, 1, 2), 2)

	path, ok := planner.NewAStar(planner.MovementRamps, planner.Options{}).Plan(a, w, a.Pos, pos(1, 1, 3))
	require.True(t, ok)
	require.Len(t, path, 1)
	assert.True(t, path[0].Ramp)

	nav := actions.NewWalkToPoint(pos(1, 1, 3), planner.MovementRamps)
	ticks := runToFinish(t, nav, a, w, 100)

	// offsets close by speed*16/32 per tick, so a full cell takes 16 ticks at speed 2
	assert.Equal(t, 16, ticks)
	assert.Equal(t, actions.OutcomeArrived, nav.Outcome())
	assert.Equal(t, 3, a.Pos.Z)
	assert.Equal(t, 0.0, a.OffsetY)
	assert.Nil(t, w.OccupantAt(pos(1, 1, 2)))
	assert.Nil(t, w.OccupantAt(pos(1, 2, 2)))
	requireSettled(t, a, w)
}

func TestWalkToPointUnreachable(t *testing.T) {
	w := floorWorld(5, 5, 3, 0)
	w.SetTerrain(pos(3, 4, 1), models.TerrainSolid)
	w.SetTerrain(pos(4, 3, 1), models.TerrainSolid)
	a := spawn(t, w, "walker", pos(0, 0, 1), 2)

	nav := actions.NewWalkToPoint(pos(4, 4, 1), planner.MovementRamps)
	runToFinish(t, nav, a, w, 100)

	assert.True(t, nav.IsFinished())
	assert.Equal(t, actions.OutcomeNoPath, nav.Outcome())
	assert.Equal(t, pos(0, 0, 1), a.Pos)
	requireSettled(t, a, w)
}

func TestWalkToPointPlansAcrossTicks(t *testing.T) {
	w := floorWorld(12, 12, 3, 0)
	a := spawn(t, w, "walker", pos(0, 0, 1), 32)

	opts := actions.DefaultNavOptions()
	opts.Planner.ExpansionsPerStep = 2
	nav := actions.NewWalkToPointWith(pos(11, 11, 1), planner.MovementStepping, opts)

	nav.Execute(a, w)
	assert.True(t, nav.Planning())
	assert.True(t, nav.RequestInterrupt())
	assert.Equal(t, pos(0, 0, 1), a.Pos)

	runToFinish(t, nav, a, w, 1000)
	assert.Equal(t, actions.OutcomeArrived, nav.Outcome())
	assert.Equal(t, pos(11, 11, 1), a.Pos)
	requireSettled(t, a, w)
}

func TestWalkToPointAlreadyThere(t *testing.T) {
	w := floorWorld(3, 3, 3, 0)
	a := spawn(t, w, "walker", pos(1, 1, 1), 2)

	nav := actions.NewWalkToPoint(pos(1, 1, 1), planner.MovementStepping)
	nav.Execute(a, w)
	assert.True(t, nav.IsFinished())
	assert.Equal(t, actions.OutcomeArrived, nav.Outcome())
}

func TestWalkToPointReplansAroundNewObstacle(t *testing.T) {
	w := floorWorld(5, 5, 3, 0)
	a := spawn(t, w, "walker", pos(0, 2, 1), 4)

	nav := actions.NewWalkToPoint(pos(4, 2, 1), planner.MovementStepping)
	nav.Execute(a, w)
	require.Equal(t, pos(1, 2, 1), a.Pos, "straight line preferred")

	spawn(t, w, "rock", pos(2, 2, 1), 0)
	runToFinish(t, nav, a, w, 1000)

	assert.Equal(t, actions.OutcomeArrived, nav.Outcome())
	assert.Equal(t, pos(4, 2, 1), a.Pos)
	requireSettled(t, a, w)
}

func TestWalkToPointGivesUpWithoutReplans(t *testing.T) {
	w := floorWorld(5, 5, 3, 0)
	a := spawn(t, w, "walker", pos(0, 2, 1), 4)

	nav := actions.NewWalkToPointWith(pos(4, 2, 1), planner.MovementStepping, actions.NavOptions{})
	nav.Execute(a, w)
	spawn(t, w, "rock", pos(2, 2, 1), 0)
	runToFinish(t, nav, a, w, 1000)

	assert.Equal(t, actions.OutcomeBlocked, nav.Outcome())
	assert.Equal(t, pos(1, 2, 1), a.Pos)
	requireSettled(t, a, w)
}

func TestFollowPathInterruptsBetweenMoves(t *testing.T) {
	w := floorWorld(5, 5, 3, 0)
	a := spawn(t, w, "walker", pos(0, 0, 1), 4)
	path, ok := planner.NewAStar(planner.MovementStepping, planner.Options{}).Plan(a, w, a.Pos, pos(3, 0, 1))
	require.True(t, ok)

	follow := actions.NewFollowPath(path, 0)
	assert.True(t, follow.RequestInterrupt(), "nothing started yet")

	boundaries := 0
	for !follow.IsFinished() {
		follow.Execute(a, w)
		if follow.RequestInterrupt() {
			require.True(t, a.AtRest())
			boundaries++
		}
	}
	assert.Equal(t, 3, boundaries)
	assert.Equal(t, actions.OutcomeArrived, follow.Outcome())
	assert.Empty(t, follow.Remaining())
	assert.Equal(t, pos(3, 0, 1), a.Pos)
}

func TestFollowPathFromCursor(t *testing.T) {
	w := floorWorld(5, 5, 3, 0)
	a := spawn(t, w, "walker", pos(0, 0, 1), 32)
	path, ok := planner.NewAStar(planner.MovementStepping, planner.Options{}).Plan(a, w, a.Pos, pos(3, 0, 1))
	require.True(t, ok)

	follow := actions.NewFollowPath(path, 1)
	follow.Execute(a, w)
	assert.True(t, follow.IsFinished())
	assert.Equal(t, actions.OutcomeBlocked, follow.Outcome(), "agent is not where move 1 starts")
	assert.Equal(t, pos(0, 0, 1), a.Pos)
}

func TestWanderStaysNearHome(t *testing.T) {
	w := floorWorld(12, 12, 3, 0)
	a := spawn(t, w, "wanderer", pos(6, 6, 1), 4)

	wander := actions.NewWander(3, 2, rand.New(rand.NewSource(7)))
	left := false
	for tick := 0; tick < 400; tick++ {
		wander.Execute(a, w)
		require.False(t, wander.IsFinished())
		dx, dy, dz := a.Home.Delta(a.Pos)
		require.LessOrEqual(t, abs(dx), 2)
		require.LessOrEqual(t, abs(dy), 2)
		require.Zero(t, dz)
		if a.Pos != a.Home {
			left = true
		}
		if !a.AtRest() {
			assert.False(t, wander.RequestInterrupt())
		}
	}
	assert.True(t, left, "wanderer never moved")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
