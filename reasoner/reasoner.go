// Package reasoner defines the engine's async-oracle interface to the
// external LLM that drives each agent's turn, plus a deterministic mock
// and two provider-backed adapters.
//
// One narrow interface, concrete implementations per provider, each
// constructed from an options struct, with a provider-specific API key
// pulled from the environment when none is given.
package reasoner

import (
	"context"

	"github.com/townloop/engine/agentsvc"
	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/worldsvc"
)

// Reasoner is the engine's view of the external LLM oracle. Implementations
// must be safe for concurrent use by independent agent sessions — the
// agent-turn phase calls Turn concurrently across clusters.
type Reasoner interface {
	// BeginSession establishes (or resumes) a reasoning session for an
	// agent and returns its session id, which the engine keeps on the
	// in-memory domain.Agent.SessionID for the agent's later turns. The id
	// is not written to storage, so after a restart the engine calls
	// BeginSession again.
	BeginSession(ctx context.Context, agent *domain.Agent) (string, error)

	// Turn asks the reasoner for the next ordered sequence of tool calls,
	// given the agent's current perception and the fixed tool schema.
	Turn(ctx context.Context, sessionID string, perception Perception, tools []ToolSpec) ([]domain.ActionCall, error)
}

// ToolSpec is the provider-agnostic shape of one entry of the fixed
// 27-action tool schema. The action package's ToolSpec
// (built from schema.Schema) is adapted into this shape at the engine's
// wiring boundary so the reasoner package has no dependency on the action
// package's schema representation.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Perception is the structured record handed to the reasoner each turn:
// grid, sensed agents, inventory, conversation context, pending
// invitations, and status. The agent's journey is not included;
// SelfStatus.InTrance only reports whether one is active.
type Perception struct {
	Tick       int
	TimeOfDay  domain.TimeOfDay
	Weather    domain.Weather
	Self               SelfStatus
	Grid               []worldsvc.CellAt
	Sightings          []agentsvc.PresenceSighting
	Conversation       *ConversationView
	PendingInvitations []*domain.Invitation
}

// SelfStatus is the agent-facing subset of domain.Agent's state.
type SelfStatus struct {
	Name      string
	Position  domain.Position
	Facing    domain.Direction
	Sleeping  bool
	InTrance  bool
	Inventory domain.Inventory
}

// ConversationView is the agent-facing subset of domain.Conversation's
// state: the turns the agent hasn't seen yet, never the full history.
type ConversationView struct {
	ID           string
	Privacy      domain.Privacy
	Participants []string
	UnseenTurns  []domain.Turn
}
