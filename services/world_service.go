package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"realmwalk/server/actions"
	"realmwalk/server/config"
	"realmwalk/server/geometry"
	"realmwalk/server/messages"
	"realmwalk/server/models"
	"realmwalk/server/persistence"
	"realmwalk/server/planner"
	"realmwalk/server/world"
)

var (
	ErrAgentNotFound = errors.New("agent not found")
	ErrNoFreeCell    = errors.New("no free cell near spawn")
)

// TickRecorder receives one entry per tick
type TickRecorder interface {
	WriteTick(entry persistence.TickEntry) error
}

// TickListener is notified after every tick, outside the world lock
type TickListener interface {
	OnTick(tick uint64, results []NavResult)
}

// NavResult reports a finished goal-directed walk
type NavResult struct {
	AgentID string
	Goal    models.Position
	Outcome actions.Outcome
}

// agentState is the per-agent scheduling record
type agentState struct {
	agent   *models.Agent
	current actions.Action
	pending actions.Action
	// routine is resumed whenever the agent has nothing else to do
	routine actions.Action
}

// WorldService owns the grid and drives every agent's actions, one tick at a
// time. All grid access happens under worldMutex.
type WorldService struct {
	world  *world.World
	tuning config.Tuning
	rng    *rand.Rand

	agents map[string]*agentState
	order  []string
	tick   uint64

	recorder  TickRecorder
	listeners []TickListener

	worldMutex sync.RWMutex
}

// NewWorldService creates a service around an already built world
func NewWorldService(w *world.World, tuning config.Tuning) *WorldService {
	return &WorldService{
		world:  w,
		tuning: tuning,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		agents: make(map[string]*agentState),
	}
}

// SetRand replaces the random source used by wanderers
func (ws *WorldService) SetRand(rng *rand.Rand) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	ws.rng = rng
}

// SetRecorder installs the tick log
func (ws *WorldService) SetRecorder(r TickRecorder) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	ws.recorder = r
}

// AddListener registers a tick listener
func (ws *WorldService) AddListener(l TickListener) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	ws.listeners = append(ws.listeners, l)
}

// SpawnAgent places a new agent in the world
func (ws *WorldService) SpawnAgent(name string, pos models.Position, speed float64, role models.Role) (*models.Agent, error) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.spawnLocked(name, pos, speed, role, nil)
}

// SpawnWanderer places an NPC that wanders around its spawn cell
func (ws *WorldService) SpawnWanderer(spec models.SpawnSpec) (*models.Agent, error) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	speed := spec.Speed
	if speed <= 0 {
		speed = ws.tuning.DefaultSpeed
	}
	frequency := spec.Frequency
	if frequency <= 0 {
		frequency = ws.tuning.Wanderer.Frequency
	}
	distance := spec.Distance
	if distance <= 0 {
		distance = ws.tuning.Wanderer.Distance
	}
	wander := actions.NewWander(frequency, distance, rand.New(rand.NewSource(ws.rng.Int63()))).
		WithNavOptions(ws.tuning.NavOptions())
	return ws.spawnLocked(spec.Name, models.Position{X: spec.X, Y: spec.Y, Z: spec.Z}, speed, models.RoleNPC, wander)
}

func (ws *WorldService) spawnLocked(name string, pos models.Position, speed float64, role models.Role, routine actions.Action) (*models.Agent, error) {
	if speed <= 0 {
		speed = ws.tuning.DefaultSpeed
	}
	agent := models.NewAgent(uuid.NewString(), name, pos, speed)
	agent.Role = role
	if err := ws.world.AddAgent(agent); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}
	ws.agents[agent.ID] = &agentState{agent: agent, routine: routine}
	ws.order = append(ws.order, agent.ID)
	log.Printf("Spawned %s (%s) at %s", name, agent.ID, pos)
	return agent, nil
}

// RemoveAgent drops an agent, releasing its cell and any placeholder it holds
func (ws *WorldService) RemoveAgent(agentID string) (models.Position, error) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	st, ok := ws.agents[agentID]
	if !ok {
		return models.Position{}, fmt.Errorf("remove %s: %w", agentID, ErrAgentNotFound)
	}
	ws.world.RemovePlaceholdersOf(st.agent)
	ws.world.RemoveAgent(st.agent)
	delete(ws.agents, agentID)
	for i, id := range ws.order {
		if id == agentID {
			ws.order = append(ws.order[:i], ws.order[i+1:]...)
			break
		}
	}
	return st.agent.Pos, nil
}

// Agent returns a copy of an agent's current state
func (ws *WorldService) Agent(agentID string) (models.Agent, error) {
	ws.worldMutex.RLock()
	defer ws.worldMutex.RUnlock()

	st, ok := ws.agents[agentID]
	if !ok {
		return models.Agent{}, fmt.Errorf("agent %s: %w", agentID, ErrAgentNotFound)
	}
	return *st.agent, nil
}

// CurrentAction returns the kind of action an agent is running
func (ws *WorldService) CurrentAction(agentID string) (actions.Kind, error) {
	ws.worldMutex.RLock()
	defer ws.worldMutex.RUnlock()

	st, ok := ws.agents[agentID]
	if !ok {
		return actions.KindIdle, fmt.Errorf("agent %s: %w", agentID, ErrAgentNotFound)
	}
	if st.current == nil {
		return actions.KindIdle, nil
	}
	return st.current.Kind(), nil
}

// CurrentTick returns the number of ticks run so far
func (ws *WorldService) CurrentTick() uint64 {
	ws.worldMutex.RLock()
	defer ws.worldMutex.RUnlock()
	return ws.tick
}

// Step queues a single step for an agent
func (ws *WorldService) Step(agentID string, dir models.Direction) error {
	if !dir.Valid() {
		return fmt.Errorf("step: invalid direction %d", int(dir))
	}
	return ws.enqueue(agentID, actions.NewStep(dir))
}

// Turn queues a facing change for an agent
func (ws *WorldService) Turn(agentID string, dir models.Direction) error {
	if !dir.Valid() {
		return fmt.Errorf("turn: invalid direction %d", int(dir))
	}
	return ws.enqueue(agentID, actions.NewTurn(dir))
}

// WalkTo queues goal-directed navigation for an agent
func (ws *WorldService) WalkTo(agentID string, goal models.Position, movement planner.MovementType) error {
	return ws.enqueue(agentID, actions.NewWalkToPointWith(goal, movement, ws.tuning.NavOptions()))
}

// enqueue stores the action as the agent's next one. It replaces the running
// action at the next cell boundary; a newer command replaces an older queued one.
func (ws *WorldService) enqueue(agentID string, act actions.Action) error {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	st, ok := ws.agents[agentID]
	if !ok {
		return fmt.Errorf("command for %s: %w", agentID, ErrAgentNotFound)
	}
	st.pending = act
	return nil
}

// Tick runs one tick: every agent's action is executed once, in spawn
// order. Listeners are notified after the lock is released.
func (ws *WorldService) Tick() []NavResult {
	ws.worldMutex.Lock()
	ws.tick++
	tick := ws.tick
	var results []NavResult
	for _, id := range ws.order {
		results = ws.advanceAgentLocked(ws.agents[id], results)
	}
	ws.recordLocked()
	listeners := append([]TickListener(nil), ws.listeners...)
	ws.worldMutex.Unlock()

	for _, r := range results {
		log.Printf("Agent %s walk to %s ended: %s", r.AgentID, r.Goal, r.Outcome)
	}
	for _, l := range listeners {
		l.OnTick(tick, results)
	}
	return results
}

// advanceAgentLocked runs one agent for one tick and appends any walk that
// ended, including one replaced by a newer command, to results.
func (ws *WorldService) advanceAgentLocked(st *agentState, results []NavResult) []NavResult {
	if st.pending != nil && (st.current == nil || st.current.RequestInterrupt()) {
		if nav, ok := st.current.(*actions.WalkToPoint); ok && !nav.IsFinished() {
			results = append(results, NavResult{AgentID: st.agent.ID, Goal: nav.Goal(), Outcome: actions.OutcomeInterrupted})
		}
		st.current = st.pending
		st.pending = nil
	}
	if st.current == nil || st.current.IsFinished() {
		if st.routine == nil {
			return results
		}
		st.current = st.routine
	}

	st.current.Execute(st.agent, ws.world)

	if nav, ok := st.current.(*actions.WalkToPoint); ok && nav.IsFinished() {
		st.current = nil
		results = append(results, NavResult{AgentID: st.agent.ID, Goal: nav.Goal(), Outcome: nav.Outcome()})
	}
	return results
}

func (ws *WorldService) recordLocked() {
	if ws.recorder == nil {
		return
	}
	entry := persistence.TickEntry{Tick: ws.tick, Time: time.Now().UTC()}
	for _, id := range ws.order {
		st := ws.agents[id]
		kind := actions.KindIdle
		if st.current != nil {
			kind = st.current.Kind()
		}
		entry.Agents = append(entry.Agents, persistence.AgentSnapshot{
			ID:      st.agent.ID,
			Pos:     st.agent.Pos,
			Dir:     st.agent.Dir.String(),
			Action:  kind.String(),
			OffsetX: st.agent.OffsetX,
			OffsetY: st.agent.OffsetY,
		})
	}
	if err := ws.recorder.WriteTick(entry); err != nil {
		log.Printf("Error writing tick %d: %v", ws.tick, err)
	}
}

// Run advances the world at the configured tick rate until ctx is cancelled
func (ws *WorldService) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(ws.tuning.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("World running at %d ticks per second", ws.tuning.TickRateHz)
	for {
		select {
		case <-ctx.Done():
			log.Printf("World stopped after %d ticks", ws.CurrentTick())
			return ctx.Err()
		case <-ticker.C:
			ws.Tick()
		}
	}
}

// FindFreeCell returns the nearest cell to near, by ring distance on the same
// level, that an agent can stand in.
func (ws *WorldService) FindFreeCell(near models.Position, radius int) (models.Position, error) {
	ws.worldMutex.RLock()
	defer ws.worldMutex.RUnlock()

	for r := 0; r <= radius; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue
				}
				p := near.Add(dx, dy, 0)
				if !geometry.Blocked(ws.world, p) && geometry.Landable(ws.world, p) {
					return p, nil
				}
			}
		}
	}
	return models.Position{}, fmt.Errorf("near %s: %w", near, ErrNoFreeCell)
}

// GetWorldUpdateForAgent builds the view an agent's client is sent
func (ws *WorldService) GetWorldUpdateForAgent(agentID string) (*messages.UpdateMessage, error) {
	ws.worldMutex.RLock()
	defer ws.worldMutex.RUnlock()

	st, ok := ws.agents[agentID]
	if !ok {
		return nil, fmt.Errorf("view for %s: %w", agentID, ErrAgentNotFound)
	}
	self := st.agent
	radius := ws.tuning.ViewRadius

	update := &messages.UpdateMessage{
		Tick: ws.tick,
		Self: ws.agentViewLocked(st),
	}
	for _, id := range ws.order {
		other := ws.agents[id]
		if id == agentID {
			continue
		}
		if abs(other.agent.Pos.X-self.Pos.X) > radius || abs(other.agent.Pos.Y-self.Pos.Y) > radius {
			continue
		}
		update.Agents = append(update.Agents, ws.agentViewLocked(other))
	}

	view := messages.MapView{Center: self.Pos, Radius: radius}
	for z := self.Pos.Z - 1; z <= self.Pos.Z+1; z++ {
		layer := messages.MapLayer{Z: z}
		for y := self.Pos.Y + radius; y >= self.Pos.Y-radius; y-- {
			row := make([]rune, 0, 2*radius+1)
			for x := self.Pos.X - radius; x <= self.Pos.X+radius; x++ {
				p := models.Position{X: x, Y: y, Z: z}
				if !ws.world.IsInBounds(p) {
					row = append(row, ' ')
					continue
				}
				row = append(row, ws.world.TerrainAt(p).Glyph())
				for _, t := range ws.world.ThingsAt(p) {
					tv := messages.ThingView{Kind: string(t.Kind), Pos: p}
					if t.HasRamp {
						tv.RampDir = t.RampDir.String()
					}
					view.Things = append(view.Things, tv)
				}
			}
			layer.Rows = append(layer.Rows, string(row))
		}
		view.Layers = append(view.Layers, layer)
	}
	update.Map = view
	return update, nil
}

func (ws *WorldService) agentViewLocked(st *agentState) messages.AgentView {
	a := st.agent
	kind := actions.KindIdle
	if st.current != nil && !st.current.IsFinished() {
		kind = st.current.Kind()
	}
	return messages.AgentView{
		ID:                  a.ID,
		Name:                a.Name,
		Pos:                 a.Pos,
		Dir:                 a.Dir.String(),
		OffsetX:             a.OffsetX,
		OffsetY:             a.OffsetY,
		Footstep:            int(a.Footstep),
		Moving:              a.InMotion(),
		RenderOnPlaceholder: a.RenderOnPlaceholder,
		Action:              kind.String(),
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
