// Package engine implements the tick pipeline: the fixed six-phase
// sequence that advances one tick, the per-cluster concurrent agent-turn
// phase, and the observer/commander surface the mcpserver package hosts
// over stdio.
//
// A single Engine type wires persistence (storage.Store) to a pure
// execution step (RunTick), recovering from the store on startup rather
// than replaying the event log. The per-cluster concurrency inside the
// agent-turn phase runs one goroutine per independent unit of work,
// results folded back under a mutex, a per-unit error logged rather than
// propagated so one stuck agent never aborts the tick.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/townloop/engine/action"
	"github.com/townloop/engine/config"
	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/narrator"
	"github.com/townloop/engine/reasoner"
	"github.com/townloop/engine/slogger"
	"github.com/townloop/engine/storage"
)

// Engine owns all world state for one simulation and is the sole writer
// of storage. Observer queries read a point-in-time snapshot guarded by
// mu; commands enqueue into pending, applied at the head of the next
// tick's invitation-expiry phase.
type Engine struct {
	store    *storage.Store
	cfg      *config.Config
	reason   reasoner.Reasoner
	narrate  narrator.Narrator
	registry *action.Registry
	recipes  *action.RecipeTable
	tools    []reasoner.ToolSpec

	mu            sync.RWMutex
	snapshot      *storage.WorldData // last-committed state, read by Observer.
	lastSeq       int64
	priorArrivals map[domain.Position]bool
	skipTurns     map[string]int

	pendingMu sync.Mutex
	pending   []pendingCommand
}

// New builds an Engine over an already-open store. It loads the current
// WorldData once so Observer queries have something to answer before the
// first tick runs.
func New(ctx context.Context, store *storage.Store, cfg *config.Config, reason reasoner.Reasoner, narrate narrator.Narrator) (*Engine, error) {
	data, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: failed to load initial state: %w", err)
	}
	lastSeq, err := store.LastSeq()
	if err != nil {
		return nil, fmt.Errorf("engine: failed to bootstrap sequence counter: %w", err)
	}
	e := &Engine{
		store:    store,
		cfg:      cfg,
		reason:   reason,
		narrate:  narrate,
		registry: action.NewRegistry(),
		recipes:  action.NewRecipeTable(action.DefaultRecipes),
		snapshot: data,
		lastSeq:  lastSeq,
	}
	e.tools = toolSpecsFromSchema(action.ToolSchema())
	return e, nil
}

// Run advances the simulation by n ticks, stopping early (and returning a
// non-nil error) the first time a tick fails to commit or ctx is already
// done when a tick is about to start. The per-tick deadline is
// cfg.Simulation.TickDeadline (default 120s).
func (e *Engine) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("engine: run cancelled: %w", err)
		}
		tickCtx, cancel := context.WithTimeout(ctx, e.cfg.Simulation.TickDeadline)
		err := e.RunTick(tickCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("engine: tick failed: %w", err)
		}
	}
	return nil
}

// RunTick executes exactly one tick: the six ordered phases, then commit.
// Storage is touched only here, in the commit phase.
func (e *Engine) RunTick(ctx context.Context) error {
	e.mu.RLock()
	data := cloneWorldData(e.snapshot)
	priorArrivals := e.priorArrivals
	lastSeq := e.lastSeq
	skipTurns := make(map[string]int, len(e.skipTurns))
	for k, v := range e.skipTurns {
		skipTurns[k] = v
	}
	e.mu.RUnlock()

	tc := newTickContext(data, e.cfg, priorArrivals, skipTurns)
	e.applyPendingCommands(tc)

	phaseExpireInvitations(tc)
	phaseWake(tc)
	clusters := phaseSchedule(tc)
	phaseMovement(tc)
	e.phaseAgentTurn(ctx, tc, clusters)

	newLastSeq, err := e.store.ApplyEvents(ctx, tc.data.World.Tick+1, lastSeq, tc.events)
	if err != nil && newLastSeq == lastSeq {
		slogger.Ctx(ctx).Error("tick commit failed", "tick", tc.data.World.Tick+1, "error", err)
		return fmt.Errorf("engine: commit failed: %w", err)
	}
	if err != nil {
		// The database committed; only the event log's fsync failed.
		slogger.Ctx(ctx).Warn("event log sync failed after commit", "tick", tc.data.World.Tick+1, "error", err)
	}
	slogger.Ctx(ctx).Debug("tick committed", "tick", tc.data.World.Tick+1, "events", len(tc.events))
	tc.data.World.Tick++

	e.mu.Lock()
	e.snapshot = tc.data
	e.lastSeq = newLastSeq
	e.priorArrivals = arrivalsOf(tc.events)
	e.skipTurns = tc.skipTurns
	e.mu.Unlock()

	e.writeAgentStatuses(tc.data)
	e.maybeSnapshot(ctx, tc.data.World.Tick)
	return nil
}

// arrivalsOf extracts every AgentMoved event's destination from events,
// consulted by the next tick's phaseWake condition (b).
func arrivalsOf(events []domain.Event) map[domain.Position]bool {
	out := map[domain.Position]bool{}
	for _, ev := range events {
		if ev.Type != domain.EventAgentMoved {
			continue
		}
		x, _ := ev.Data["to_x"].(int)
		y, _ := ev.Data["to_y"].(int)
		out[domain.Position{X: x, Y: y}] = true
	}
	return out
}

func cloneWorldData(src *storage.WorldData) *storage.WorldData {
	out := storage.NewWorldData()
	out.World = src.World
	out.NextObjectSeq = src.NextObjectSeq
	for k, v := range src.Cells {
		out.Cells[k] = v
	}
	for k, v := range src.Objects {
		out.Objects[k] = v
	}
	for k, v := range src.Agents {
		out.Agents[k] = v.Clone()
	}
	for k, v := range src.NamedPlaces {
		out.NamedPlaces[k] = v
	}
	for k, v := range src.Structures {
		s := *v
		s.Interior = make(map[domain.Position]bool, len(v.Interior))
		for p, b := range v.Interior {
			s.Interior[p] = b
		}
		s.Creators = make(map[string]bool, len(v.Creators))
		for c, b := range v.Creators {
			s.Creators[c] = b
		}
		out.Structures[k] = &s
	}
	for k, v := range src.Conversations {
		c := *v
		c.Participants = append([]string(nil), v.Participants...)
		c.Turns = append([]domain.Turn(nil), v.Turns...)
		c.LastTurnTick = map[string]int{}
		for n, t := range v.LastTurnTick {
			c.LastTurnTick[n] = t
		}
		out.Conversations[k] = &c
	}
	for k, v := range src.Invitations {
		inv := *v
		out.Invitations[k] = &inv
	}
	return out
}

func toolSpecsFromSchema(specs []action.ToolSpec) []reasoner.ToolSpec {
	out := make([]reasoner.ToolSpec, len(specs))
	for i, s := range specs {
		out[i] = reasoner.ToolSpec{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  schemaToMap(s.Parameters),
		}
	}
	return out
}
