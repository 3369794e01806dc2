package engine

import (
	"github.com/townloop/engine/agentsvc"
	"github.com/townloop/engine/conversation"
	"github.com/townloop/engine/domain"
)

// phaseExpireInvitations is pipeline phase 1: emit InvitationExpired for
// every pending invitation that has aged out, and fold the transition
// straight into the working snapshot so later phases in the same tick
// see the expiry already applied.
func phaseExpireInvitations(tc *tickContext) {
	svc := conversation.New(tc.data, visibilityOf(tc))
	events := svc.ExpireInvitations(tc.data.World.Tick, tc.cfg.Simulation.InviteExpiryTicks)
	for _, ev := range events {
		id, _ := ev.Data["id"].(string)
		if inv, ok := tc.data.Invitations[id]; ok {
			inv.Status = domain.InvitationExpired
		}
	}
	tc.addEvents(events...)
}

// phaseWake is pipeline phase 2. Condition (a) fires when time_of_day just
// transitioned to morning (tick % 4 == 0, per domain.TimeOfDayForTick's
// four-tick cycle). Condition (b) fires when another agent's movement
// during the *previous* tick ended on the sleeper's cell — tracked via
// tc.priorArrivals, which Engine.RunTick populates from the prior tick's
// AgentMoved events before the next tick's phases run.
func phaseWake(tc *tickContext) {
	justMorning := tc.data.World.Tick%4 == 0
	for name, a := range tc.data.Agents {
		if !a.Sleeping {
			continue
		}
		woken := justMorning || tc.priorArrivals[a.Position]
		if !woken {
			continue
		}
		a.Sleeping = false
		tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventAgentWoke, map[string]any{"agent": name}))
	}
}

// phaseSchedule is pipeline phase 3: compute the acting set (awake, and not
// in trance unless named by force_turn this tick), cluster it by Chebyshev distance <= vision_radius +
// cluster_buffer, and move any force_turn agent to the head of its
// cluster for this tick only.
func phaseSchedule(tc *tickContext) []cluster {
	var acting []*domain.Agent
	for _, a := range tc.data.Agents {
		if a.Sleeping || (a.InTrance() && !tc.forcedTurns[a.Name]) {
			continue
		}
		acting = append(acting, a)
	}
	sortAgentsByName(acting)

	radius := tc.visionRadius() + tc.cfg.Simulation.ClusterBuffer
	clusters := buildClusters(acting, radius)
	return applyForceTurns(tc, clusters)
}

func sortAgentsByName(agents []*domain.Agent) {
	for i := 1; i < len(agents); i++ {
		for j := i; j > 0 && agents[j-1].Name > agents[j].Name; j-- {
			agents[j-1], agents[j] = agents[j], agents[j-1]
		}
	}
}

// applyForceTurns reorders the head of each cluster that contains a
// forced agent: the agent is moved to the head of its cluster's turn
// order for that tick. Every forced agent also has its trance ended
// here, since force_turn takes priority over an in-progress journey.
func applyForceTurns(tc *tickContext, clusters []cluster) []cluster {
	if len(tc.forcedTurns) == 0 {
		return clusters
	}
	for name := range tc.forcedTurns {
		a, ok := tc.data.Agents[name]
		if !ok || a.Journey == nil {
			continue
		}
		tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventJourneyInterrupted, map[string]any{"agent": name}))
		a.Journey = nil
	}
	out := make([]cluster, len(clusters))
	for i, c := range clusters {
		members := append([]string(nil), c.members...)
		for forced := range tc.forcedTurns {
			idx := indexOf(members, forced)
			if idx > 0 {
				members = append(members[:idx], members[idx+1:]...)
				members = append([]string{forced}, members...)
			}
		}
		out[i] = cluster{members: members}
	}
	return out
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// phaseMovement is pipeline phase 4: advance every agent with an active
// journey one cell. Interrupt conditions 1-3 (another agent appears in
// vision, the path is invalidated, arrival) are checked here; condition 4
// (observer force-turn) is handled earlier, in
// phaseSchedule/applyForceTurns.
func phaseMovement(tc *tickContext) {
	radius := tc.visionRadius()
	for name, a := range tc.data.Agents {
		if a.Journey == nil {
			continue
		}
		if journeyInterruptedByVision(tc, a, radius) {
			tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventJourneyInterrupted, map[string]any{"agent": name}))
			a.Journey = nil
			continue
		}
		next, hasNext := a.Journey.NextStep()
		if !hasNext {
			tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventJourneyArrived, map[string]any{"agent": name}))
			a.Journey = nil
			continue
		}
		if !stepStillValid(tc, a.Position, next) {
			tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventJourneyInterrupted, map[string]any{"agent": name}))
			a.Journey = nil
			continue
		}
		tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventAgentMoved, map[string]any{
			"agent": name, "from_x": a.Position.X, "from_y": a.Position.Y, "to_x": next.X, "to_y": next.Y,
		}))
		a.Position = next
		a.Journey.Progress++
		if a.Journey.AtDestination() {
			tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventJourneyArrived, map[string]any{"agent": name}))
			a.Journey = nil
		}
	}
}

// journeyInterruptedByVision reports whether another agent newly within
// vision counts as interrupt condition 1. A simple, deterministic proxy
// is used: any other awake agent currently within radius of a's position.
func journeyInterruptedByVision(tc *tickContext, a *domain.Agent, radius int) bool {
	for _, other := range agentsvc.VisibleAgents(a, tc.data.Agents, radius) {
		if !other.Sleeping {
			return true
		}
	}
	return false
}

// stepStillValid re-checks passability for the journey's next step,
// covering interrupt condition 2 (a wall placed since planning).
func stepStillValid(tc *tickContext, from, to domain.Position) bool {
	w := worldOf(tc)
	for _, d := range domain.AllDirections {
		if from.Neighbor(d) == to {
			return w.CanStep(from, d)
		}
	}
	return false
}
