// Package agentsvc implements the agent service: roster state, A*-based
// journey planning over the world service's navigable graph, presence
// sensing, and the monotonic known_agents ledger.
package agentsvc

import (
	"container/heap"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/worldsvc"
)

// PlanJourney runs A* from start to destination using the world service as
// the navigable-graph oracle: a step exists only where CanStep allows it.
// The heuristic is Manhattan distance; ties are broken by lower (y, x) so
// the result is deterministic across replays. Returns (nil, false) if no
// path exists.
func PlanJourney(w *worldsvc.World, start, destination domain.Position) (*domain.Journey, bool) {
	if start == destination {
		return &domain.Journey{Destination: destination, Path: []domain.Position{start}}, true
	}

	open := &frontier{}
	heap.Init(open)
	heap.Push(open, &node{pos: start, g: 0, f: start.ManhattanDistance(destination)})

	cameFrom := map[domain.Position]domain.Position{}
	bestG := map[domain.Position]int{start: 0}
	closed := map[domain.Position]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if closed[cur.pos] {
			continue
		}
		closed[cur.pos] = true

		if cur.pos == destination {
			return &domain.Journey{Destination: destination, Path: reconstruct(cameFrom, start, destination)}, true
		}

		for _, d := range domain.AllDirections {
			if !w.CanStep(cur.pos, d) {
				continue
			}
			next := cur.pos.Neighbor(d)
			if closed[next] {
				continue
			}
			g := cur.g + 1
			if existing, ok := bestG[next]; ok && existing <= g {
				continue
			}
			bestG[next] = g
			cameFrom[next] = cur.pos
			heap.Push(open, &node{pos: next, g: g, f: g + next.ManhattanDistance(destination)})
		}
	}
	return nil, false
}

func reconstruct(cameFrom map[domain.Position]domain.Position, start, destination domain.Position) []domain.Position {
	path := []domain.Position{destination}
	cur := destination
	for cur != start {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	// reverse in place.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// node is one entry in the A* open set.
type node struct {
	pos domain.Position
	g   int
	f   int
}

// frontier is a binary min-heap over node.f, breaking ties by the (y, x)
// order required for deterministic replay.
type frontier []*node

func (fr frontier) Len() int { return len(fr) }

func (fr frontier) Less(i, j int) bool {
	if fr[i].f != fr[j].f {
		return fr[i].f < fr[j].f
	}
	return fr[i].pos.Less(fr[j].pos)
}

func (fr frontier) Swap(i, j int) { fr[i], fr[j] = fr[j], fr[i] }

func (fr *frontier) Push(x any) {
	*fr = append(*fr, x.(*node))
}

func (fr *frontier) Pop() any {
	old := *fr
	n := len(old)
	item := old[n-1]
	*fr = old[:n-1]
	return item
}
