package engine

import (
	"context"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/mcpserver"
	"github.com/townloop/engine/worldsvc"
)

// Engine satisfies mcpserver.Observer over a point-in-time snapshot of the
// last-committed tick, guarded by mu so a query never observes a
// partially-applied tick.
var _ mcpserver.Observer = (*Engine)(nil)

func (e *Engine) GetWorldState(ctx context.Context) (domain.WorldState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot.World, nil
}

func (e *Engine) GetAgent(ctx context.Context, name string) (*domain.Agent, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.snapshot.Agents[name]
	if !ok {
		return nil, false, nil
	}
	return a.Clone(), true, nil
}

func (e *Engine) GetAllAgents(ctx context.Context) ([]*domain.Agent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*domain.Agent, 0, len(e.snapshot.Agents))
	for _, a := range e.snapshot.Agents {
		out = append(out, a.Clone())
	}
	sortAgentsByName(out)
	return out, nil
}

func (e *Engine) GetCell(ctx context.Context, pos domain.Position) (domain.Cell, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot.GetCell(pos), nil
}

func (e *Engine) GetCellsInRect(ctx context.Context, rect domain.Rect) ([]mcpserver.CellAt, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w := worldsvc.New(e.snapshot)
	cells := w.CellsInRect(rect)
	out := make([]mcpserver.CellAt, len(cells))
	for i, c := range cells {
		out[i] = mcpserver.CellAt{Position: c.Position, Cell: c.Cell}
	}
	return out, nil
}

func (e *Engine) GetObjectsAt(ctx context.Context, pos domain.Position) ([]domain.WorldObject, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot.ObjectsAt(pos), nil
}

func (e *Engine) GetConversations(ctx context.Context) ([]*domain.Conversation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*domain.Conversation, 0, len(e.snapshot.Conversations))
	for _, c := range e.snapshot.Conversations {
		if c.Ended() {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (e *Engine) GetPendingInvitations(ctx context.Context) ([]*domain.Invitation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*domain.Invitation
	for _, inv := range e.snapshot.Invitations {
		if inv.Status == domain.InvitationPending {
			out = append(out, inv)
		}
	}
	return out, nil
}
