// Package planner finds shortest move sequences across the grid. Searches are
// resumable: each call to Step does a bounded amount of work so planning can
// be spread over several ticks.
package planner

import (
	"container/heap"

	"realmwalk/server/geometry"
	"realmwalk/server/models"
)

const DefaultExpansionsPerStep = 32

// Costs are the traversal costs of each kind of move
type Costs struct {
	Plain int `yaml:"plain"`
	Ramp  int `yaml:"ramp"`
}

// DefaultCosts weighs every move the same
var DefaultCosts = Costs{Plain: 10, Ramp: 10}

func (c Costs) min() int {
	if c.Ramp < c.Plain {
		return c.Ramp
	}
	return c.Plain
}

// Options tune a planner
type Options struct {
	Costs             Costs
	ExpansionsPerStep int
	// MaxExpansions ends a query unsolved after this many expansions; zero
	// leaves the search bounded only by the grid size.
	MaxExpansions int
}

// AStar is a resumable A* search over grid cells
type AStar struct {
	movement MovementType
	opts     Options

	agent *models.Agent
	start models.Position
	goal  models.Position

	open     openSet
	best     map[models.Position]int
	cameFrom map[models.Position]Move
	closed   map[models.Position]bool
	seq      uint64
	expanded int

	inProgress bool
	solved     bool
	path       Path
}

// NewAStar creates a planner for a movement type
func NewAStar(movement MovementType, opts Options) *AStar {
	if opts.Costs.Plain <= 0 || opts.Costs.Ramp <= 0 {
		opts.Costs = DefaultCosts
	}
	if opts.ExpansionsPerStep <= 0 {
		opts.ExpansionsPerStep = DefaultExpansionsPerStep
	}
	return &AStar{movement: movement, opts: opts}
}

// MovementType returns the move set the planner searches
func (a *AStar) MovementType() MovementType { return a.movement }

// StartQuery resets the search for a path from start to goal
func (a *AStar) StartQuery(agent *models.Agent, g geometry.Grid, start, goal models.Position) {
	a.agent = agent
	a.start = start
	a.goal = goal
	a.open = openSet{}
	a.best = map[models.Position]int{start: 0}
	a.cameFrom = make(map[models.Position]Move)
	a.closed = make(map[models.Position]bool)
	a.seq = 0
	a.expanded = 0
	a.solved = false
	a.path = nil
	a.inProgress = true

	if start == goal {
		a.finish(true)
		return
	}
	if !g.IsInBounds(goal) || !g.IsInBounds(start) {
		a.finish(false)
		return
	}
	a.push(start, 0)
}

// Step performs one bounded unit of search work
func (a *AStar) Step(g geometry.Grid) {
	if !a.inProgress {
		return
	}
	view := selfView{Grid: g, self: a.start}
	allowRamps := a.movement == MovementRamps

	for i := 0; i < a.opts.ExpansionsPerStep; i++ {
		if a.open.Len() == 0 {
			a.finish(false)
			return
		}
		cur := heap.Pop(&a.open).(*openNode)
		if a.closed[cur.pos] {
			continue
		}
		a.closed[cur.pos] = true
		if cur.pos == a.goal {
			a.path = a.reconstruct()
			a.finish(true)
			return
		}
		a.expanded++
		if a.opts.MaxExpansions > 0 && a.expanded > a.opts.MaxExpansions {
			a.finish(false)
			return
		}

		for _, dir := range models.Directions {
			res, ok := geometry.Resolve(view, cur.pos, dir, allowRamps)
			if !ok || a.closed[res.To] {
				continue
			}
			cost := a.opts.Costs.Plain
			if res.IsRamp() {
				cost = a.opts.Costs.Ramp
			}
			ng := cur.g + cost
			if old, seen := a.best[res.To]; seen && ng >= old {
				continue
			}
			a.best[res.To] = ng
			a.cameFrom[res.To] = Move{Dir: dir, Ramp: res.IsRamp(), From: cur.pos, To: res.To}
			a.push(res.To, ng)
		}
	}
}

// IsQueryInProgress reports whether the search still has work to do
func (a *AStar) IsQueryInProgress() bool { return a.inProgress }

// IsSolutionFound reports whether the finished search reached the goal
func (a *AStar) IsSolutionFound() bool { return a.solved }

// Path returns the planned moves once a solution is found
func (a *AStar) Path() Path {
	if !a.solved {
		return nil
	}
	out := make(Path, len(a.path))
	copy(out, a.path)
	return out
}

// Expanded returns the number of cells expanded by the current query
func (a *AStar) Expanded() int { return a.expanded }

// Cost returns the cost of the found path
func (a *AStar) Cost() int {
	if !a.solved {
		return 0
	}
	return a.best[a.goal]
}

// Plan runs a query to completion
func (a *AStar) Plan(agent *models.Agent, g geometry.Grid, start, goal models.Position) (Path, bool) {
	a.StartQuery(agent, g, start, goal)
	for a.IsQueryInProgress() {
		a.Step(g)
	}
	return a.Path(), a.IsSolutionFound()
}

func (a *AStar) finish(solved bool) {
	a.inProgress = false
	a.solved = solved
	a.open = nil
}

func (a *AStar) push(p models.Position, g int) {
	a.seq++
	heap.Push(&a.open, &openNode{pos: p, g: g, h: a.heuristic(p), seq: a.seq})
}

// heuristic never overestimates: a single move changes x+y distance or z
// distance by at most one each.
func (a *AStar) heuristic(p models.Position) int {
	dx, dy, dz := p.Delta(a.goal)
	flat := abs(dx) + abs(dy)
	vert := abs(dz)
	if vert > flat {
		flat = vert
	}
	return a.opts.Costs.min() * flat
}

func (a *AStar) reconstruct() Path {
	var rev Path
	for cur := a.goal; cur != a.start; {
		m, ok := a.cameFrom[cur]
		if !ok {
			return nil
		}
		rev = append(rev, m)
		cur = m.From
	}
	path := make(Path, len(rev))
	for i, m := range rev {
		path[len(rev)-1-i] = m
	}
	return path
}

// selfView hides the searching agent's own cell from occupancy checks
type selfView struct {
	geometry.Grid
	self models.Position
}

func (v selfView) IsOccupied(p models.Position) bool {
	if p == v.self {
		return false
	}
	return v.Grid.IsOccupied(p)
}

type openNode struct {
	pos   models.Position
	g, h  int
	seq   uint64
	index int
}

type openSet []*openNode

func (s openSet) Len() int { return len(s) }

func (s openSet) Less(i, j int) bool {
	fi, fj := s[i].g+s[i].h, s[j].g+s[j].h
	if fi != fj {
		return fi < fj
	}
	if s[i].h != s[j].h {
		return s[i].h < s[j].h
	}
	return s[i].seq < s[j].seq
}

func (s openSet) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].index = i
	s[j].index = j
}

func (s *openSet) Push(x any) {
	n := x.(*openNode)
	n.index = len(*s)
	*s = append(*s, n)
}

func (s *openSet) Pop() any {
	old := *s
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*s = old[:n-1]
	return item
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
