package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/townloop/engine/action"
	"github.com/townloop/engine/agentsvc"
	"github.com/townloop/engine/conversation"
	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/reasoner"
	"github.com/townloop/engine/slogger"
)

// phaseAgentTurn is pipeline phase 5: one goroutine per cluster, agents
// within a cluster acting sequentially in cluster order. Each cluster's
// goroutine always returns nil, so one cluster's reasoner error or a
// cancelled agent never aborts another cluster's turn.
//
// tc.dataMu serializes the brief, CPU-only window where an action is
// actually dispatched against the shared snapshot; the reasoner and
// narrator calls (the phase's only IO) run outside that window so
// clusters genuinely overlap in wall-clock time.
func (e *Engine) phaseAgentTurn(ctx context.Context, tc *tickContext, clusters []cluster) {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, c := range clusters {
		c := c
		eg.Go(func() error {
			e.runCluster(egCtx, tc, c)
			return nil
		})
	}
	_ = eg.Wait() // every cluster goroutine returns nil; Wait only joins them.
}

func (e *Engine) runCluster(ctx context.Context, tc *tickContext, c cluster) {
	for _, name := range c.members {
		if ctx.Err() != nil {
			// Deadline already passed: the remaining agents in this
			// cluster are cancelled, not penalised.
			return
		}
		e.runAgentTurn(ctx, tc, name)
	}
}

func (e *Engine) runAgentTurn(ctx context.Context, tc *tickContext, name string) {
	tc.dataMu.Lock()
	self, ok := tc.data.Agents[name]
	if !ok {
		tc.dataMu.Unlock()
		return
	}
	if skip := tc.skipTurns[name]; skip > 0 {
		tc.skipTurns[name] = skip - 1
		tc.dataMu.Unlock()
		return
	}
	radius := tc.visionRadius()
	perception := buildPerception(tc, self, radius)
	tc.dataMu.Unlock()

	sessionID := self.SessionID
	var err error
	if sessionID == "" {
		sessionID, err = e.reason.BeginSession(ctx, self)
		if err != nil {
			if ctx.Err() != nil {
				return // cancelled, not penalised.
			}
			slogger.Ctx(ctx).Warn("reasoner session failed, skipping turn", "agent", name, "error", err)
			return // reasoner failure for this agent: no actions this turn.
		}
		tc.dataMu.Lock()
		self.SessionID = sessionID
		tc.dataMu.Unlock()
	}

	calls, err := e.reason.Turn(ctx, sessionID, perception, e.tools)
	if err != nil {
		if ctx.Err() == nil {
			slogger.Ctx(ctx).Warn("reasoner turn failed, skipping turn", "agent", name, "error", err)
		}
		return // includes context-cancelled: produces no actions, not penalised.
	}

	for _, call := range calls {
		if ctx.Err() != nil {
			return
		}
		e.executeOne(ctx, tc, name, call)
	}
}

// executeOne dispatches a single action call and narrates its result,
// folding narrated events into tc. Dispatch happens under tc.dataMu;
// narration (potentially an external LLM call) happens outside it.
func (e *Engine) executeOne(ctx context.Context, tc *tickContext, name string, call domain.ActionCall) {
	tc.dataMu.Lock()
	self, ok := tc.data.Agents[name]
	if !ok {
		tc.dataMu.Unlock()
		return
	}
	actionCtx := action.NewContext(tc.data.World.Tick, self, tc.data.Agents, worldOf(tc), e.recipes, tc.visionRadius())
	result := e.registry.Dispatch(actionCtx, call)
	events := append([]domain.Event(nil), result.Events...)
	tc.dataMu.Unlock()

	if !result.Success || len(events) == 0 {
		// Failed-action purity law: no events, nothing to narrate into
		// the log beyond the reasoner-facing message itself.
		return
	}

	narration, err := e.narrate.Narrate(ctx, name, call, result)
	if err != nil {
		narration = result.Message
	}
	for i := range events {
		if events[i].Data == nil {
			events[i].Data = map[string]any{}
		}
		events[i].Data["narration"] = narration
	}
	tc.addEvents(events...)
}

// buildPerception assembles one agent's turn-input record: grid view,
// sensed agents, inventory, trance flag (not the journey itself), the
// active conversation's unseen turns, and pending invitations. Also folds the mutual-visibility meeting ledger update, since
// that only needs to happen once per tick per agent, right as its
// perception is built.
func buildPerception(tc *tickContext, self *domain.Agent, radius int) reasoner.Perception {
	agentsvc.UpdateMeetingLedger(tc.data.Agents, radius)

	half := radius
	rect := domain.Rect{
		Min: domain.Position{X: self.Position.X - half, Y: self.Position.Y - half},
		Max: domain.Position{X: self.Position.X + half, Y: self.Position.Y + half},
	}
	w := worldOf(tc)
	grid := w.CellsInRect(rect)

	sightings := agentsvc.SenseOthers(self, tc.data.Agents, radius)

	var convView *reasoner.ConversationView
	svc := conversation.New(tc.data, visibilityOf(tc))
	if conv, ok := svc.ActiveConversation(self.Name); ok {
		convView = &reasoner.ConversationView{
			ID:           conv.ID,
			Privacy:      conv.Privacy,
			Participants: append([]string(nil), conv.Participants...),
			UnseenTurns:  conv.UnseenTurns(self.Name),
		}
		conv.MarkSeen(self.Name, tc.data.World.Tick)
	}

	var pending []*domain.Invitation
	for _, inv := range tc.data.Invitations {
		if inv.Invitee == self.Name && inv.Status == domain.InvitationPending {
			pending = append(pending, inv)
		}
	}

	return reasoner.Perception{
		Tick:      tc.data.World.Tick,
		TimeOfDay: tc.data.World.TimeOfDay(),
		Weather:   tc.data.World.Weather,
		Self: reasoner.SelfStatus{
			Name:      self.Name,
			Position:  self.Position,
			Facing:    self.Facing,
			Sleeping:  self.Sleeping,
			InTrance:  self.InTrance(),
			Inventory: self.Inventory,
		},
		Grid:               grid,
		Sightings:          sightings,
		Conversation:       convView,
		PendingInvitations: pending,
	}
}
