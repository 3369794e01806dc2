package storage

import "github.com/townloop/engine/domain"

// WorldData is the full in-memory reconstruction of authoritative state,
// as produced by Load and consumed by the engine to build a tick's
// starting TickContext.
type WorldData struct {
	World         domain.WorldState
	Cells         map[domain.Position]domain.Cell
	Objects       map[string]domain.WorldObject
	Agents        map[string]*domain.Agent
	NamedPlaces   map[domain.Position]string
	Structures    map[string]*domain.Structure
	Conversations map[string]*domain.Conversation
	Invitations   map[string]*domain.Invitation
	NextObjectSeq int
}

// NewWorldData returns an empty WorldData aggregate.
func NewWorldData() *WorldData {
	return &WorldData{
		Cells:         map[domain.Position]domain.Cell{},
		Objects:       map[string]domain.WorldObject{},
		Agents:        map[string]*domain.Agent{},
		NamedPlaces:   map[domain.Position]string{},
		Structures:    map[string]*domain.Structure{},
		Conversations: map[string]*domain.Conversation{},
		Invitations:   map[string]*domain.Invitation{},
	}
}

// GetCell returns the cell at pos, or the default cell if unstored.
func (w *WorldData) GetCell(pos domain.Position) domain.Cell {
	if c, ok := w.Cells[pos]; ok {
		return c
	}
	return domain.DefaultCell()
}

// ObjectsAt returns every object at pos, in creation order.
func (w *WorldData) ObjectsAt(pos domain.Position) []domain.WorldObject {
	var out []domain.WorldObject
	for _, o := range w.Objects {
		if o.Position == pos {
			out = append(out, o)
		}
	}
	// Stable, deterministic ordering by creation tick then id.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if a.CreatedTick < b.CreatedTick || (a.CreatedTick == b.CreatedTick && a.ID <= b.ID) {
				break
			}
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
