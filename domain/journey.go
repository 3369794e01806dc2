package domain

// Journey is a planned route an agent follows one cell per tick during the
// movement phase. While a Journey is set, the agent is "in trance" and
// skips its turn.
type Journey struct {
	Destination Position
	Path        []Position // Path[0] == agent's position when the journey began.
	Progress    int        // 0-based index into Path of the agent's current position.
}

// AtDestination reports whether the journey has been fully walked.
func (j Journey) AtDestination() bool {
	return j.Progress >= len(j.Path)-1
}

// NextStep returns the next position along the path, if any remain.
func (j Journey) NextStep() (Position, bool) {
	if j.Progress+1 >= len(j.Path) {
		return Position{}, false
	}
	return j.Path[j.Progress+1], true
}

// Valid checks the journey invariants: the path is non-empty, and every
// consecutive pair of positions differs by exactly one cardinal step.
func (j Journey) Valid(start Position) bool {
	if len(j.Path) == 0 || j.Path[0] != start {
		return false
	}
	for i := 1; i < len(j.Path); i++ {
		prev, cur := j.Path[i-1], j.Path[i]
		dx := cur.X - prev.X
		dy := cur.Y - prev.Y
		if !((dx == 0 && (dy == 1 || dy == -1)) || (dy == 0 && (dx == 1 || dx == -1))) {
			return false
		}
	}
	return true
}
