package engine

import (
	"sync"

	"github.com/townloop/engine/agentsvc"
	"github.com/townloop/engine/config"
	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/storage"
)

// tickContext carries one tick's working state across the six phases: the
// mutable in-memory snapshot under construction, the events accumulated
// so far this tick, and the config needed by every phase. Phases mutate
// tc.data/tc.events directly rather than returning a
// new context — data is already a private copy made once per tick in
// Engine.RunTick, so no phase can leak a mutation into another tick's
// starting snapshot.
type tickContext struct {
	data   *storage.WorldData
	events []domain.Event
	cfg    *config.Config

	// priorArrivals holds the destinations of every AgentMoved event from
	// the previous tick, consulted by phaseWake's condition (b).
	priorArrivals map[domain.Position]bool

	// forcedTurns holds the agents an observer force_turn command named
	// for this tick, consulted by phaseSchedule/applyForceTurns.
	forcedTurns map[string]bool

	// skipTurns holds the remaining skip count per agent, consulted and
	// decremented by phaseAgentTurn so a skipped agent takes no actions
	// this tick without being treated as a failed/cancelled turn.
	skipTurns map[string]int

	eventsMu sync.Mutex

	// dataMu serializes writes into data's maps during the agent-turn
	// phase, where one goroutine runs per cluster. Movement and the
	// earlier phases run single-threaded and don't need it.
	dataMu sync.Mutex
}

func newTickContext(data *storage.WorldData, cfg *config.Config, priorArrivals map[domain.Position]bool, skipTurns map[string]int) *tickContext {
	if skipTurns == nil {
		skipTurns = map[string]int{}
	}
	return &tickContext{
		data:          data,
		cfg:           cfg,
		priorArrivals: priorArrivals,
		forcedTurns:   map[string]bool{},
		skipTurns:     skipTurns,
	}
}

// addEvents appends events to the tick's accumulated set. Safe to call
// concurrently from per-cluster agent-turn goroutines.
func (tc *tickContext) addEvents(events ...domain.Event) {
	if len(events) == 0 {
		return
	}
	tc.eventsMu.Lock()
	tc.events = append(tc.events, events...)
	tc.eventsMu.Unlock()
}

// visionRadius returns the effective vision radius for the tick's current
// time of day, applying the night-vision factor.
func (tc *tickContext) visionRadius() int {
	tod := tc.data.World.TimeOfDay()
	return agentsvc.VisionRadius(tc.cfg.Simulation.VisionRadius, tod, tc.cfg.Simulation.NightVisionFactor)
}
