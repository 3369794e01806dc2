package engine

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/storage"
)

// agentStatus is the engine-written, read-only record at
// agents/<name>/.status: a snapshot an external tool or the agent's own
// reasoner process can poll without touching the database.
type agentStatus struct {
	Tick             int              `json:"tick"`
	TimeOfDay        domain.TimeOfDay `json:"time_of_day"`
	Weather          domain.Weather   `json:"weather"`
	Position         domain.Position  `json:"position"`
	InventorySummary map[string]int   `json:"inventory_summary"`
}

// writeAgentStatuses refreshes every agent's .status file from the
// just-committed snapshot, and scaffolds the empty journal/notes/discoveries
// files the first time an agent directory is created — these three are
// opaque to the engine, never read or rewritten once present. Failures
// are swallowed rather than propagated: the .status surface is a
// convenience for external tooling, not part of the commit's durability
// contract; only a storage write failure is tick-fatal.
func (e *Engine) writeAgentStatuses(data *storage.WorldData) {
	dir := e.cfg.Storage.AgentsDir
	if dir == "" {
		return
	}
	for name, a := range data.Agents {
		agentDir := filepath.Join(dir, name)
		if err := os.MkdirAll(agentDir, 0755); err != nil {
			continue
		}
		scaffoldAgentFiles(agentDir)

		summary := make(map[string]int, len(a.Inventory.Stacks))
		for kind, n := range a.Inventory.Stacks {
			summary[string(kind)] = n
		}
		status := agentStatus{
			Tick:             data.World.Tick,
			TimeOfDay:        data.World.TimeOfDay(),
			Weather:          data.World.Weather,
			Position:         a.Position,
			InventorySummary: summary,
		}
		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			continue
		}
		_ = os.WriteFile(filepath.Join(agentDir, ".status"), out, 0644)
	}
}

// scaffoldAgentFiles creates the three opaque agent-authored files if they
// don't already exist, never overwriting content an agent may have written.
func scaffoldAgentFiles(agentDir string) {
	for _, name := range []string{"journal.md", "notes.md", "discoveries.md"} {
		path := filepath.Join(agentDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		_ = os.WriteFile(path, nil, 0644)
	}
}
