// Package worldsvc implements the world service: cell and object queries,
// passability, and the symmetric wall/door mutations that keep the grid's
// edge sets consistent from both sides.
//
// It operates purely over a storage.WorldData snapshot — it never touches
// the database directly. Mutations produce domain events; the caller
// (the action engine, or the engine's commit phase) is responsible for
// handing those events to storage.ApplyEvents and folding them back into
// the in-memory snapshot for the remainder of the tick.
package worldsvc

import (
	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/storage"
)

// World is a read/plan surface over one tick's WorldData snapshot.
type World struct {
	data *storage.WorldData
}

// New wraps a WorldData snapshot.
func New(data *storage.WorldData) *World {
	return &World{data: data}
}

// Data returns the underlying WorldData snapshot, for callers (the
// conversation service, the engine's commit phase) that need direct access
// beyond the world service's own query surface.
func (w *World) Data() *storage.WorldData {
	return w.data
}

// GetCell returns the cell at pos, defaulting to DefaultCell when unstored.
func (w *World) GetCell(pos domain.Position) domain.Cell {
	return w.data.GetCell(pos)
}

// CellsInRect yields every position in rect paired with its cell, in
// row-major order.
func (w *World) CellsInRect(rect domain.Rect) []CellAt {
	positions := rect.Positions()
	out := make([]CellAt, len(positions))
	for i, p := range positions {
		out[i] = CellAt{Position: p, Cell: w.data.GetCell(p)}
	}
	return out
}

// CellAt pairs a position with its cell, returned by CellsInRect.
type CellAt struct {
	Position domain.Position
	Cell     domain.Cell
}

// ObjectsAt returns every object at pos, in creation order.
func (w *World) ObjectsAt(pos domain.Position) []domain.WorldObject {
	return w.data.ObjectsAt(pos)
}

// AgentAt returns the agent occupying pos, if any.
func (w *World) AgentAt(pos domain.Position) (*domain.Agent, bool) {
	for _, a := range w.data.Agents {
		if a.Position == pos {
			return a, true
		}
	}
	return nil, false
}

// Passable reports whether pos can be occupied: terrain must be passable
// and no other agent may currently be there.
func (w *World) Passable(pos domain.Position) bool {
	if !pos.InBounds(w.data.World.Width, w.data.World.Height) {
		return false
	}
	if !w.GetCell(pos).Terrain.Passable() {
		return false
	}
	if _, occupied := w.AgentAt(pos); occupied {
		return false
	}
	return true
}

// CanStep reports whether an agent at from may move one cell in direction
// dir: the destination must be passable, in bounds, and the shared edge
// must be unwalled or have a door.
func (w *World) CanStep(from domain.Position, dir domain.Direction) bool {
	to := from.Neighbor(dir)
	if !w.Passable(to) {
		return false
	}
	cell := w.GetCell(from)
	if cell.HasWall(dir) && !cell.HasDoor(dir) {
		return false
	}
	return true
}
