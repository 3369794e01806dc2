package reasoner

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/townloop/engine/domain"
)

var _ Reasoner = &MockReasoner{}

// MockScript produces the next turn's action calls for one agent, given its
// perception. Used to drive the engine deterministically in tests without
// a live LLM.
type MockScript func(perception Perception) []domain.ActionCall

// MockReasonerOptions configures a MockReasoner's canned-response behavior.
type MockReasonerOptions struct {
	// Script is called on every Turn; if nil, Default is used.
	Script MockScript
	// Default is returned by the zero-value Script (a constant action
	// sequence for every turn, every agent).
	Default []domain.ActionCall
}

// MockReasoner is a deterministic stand-in for a live LLM reasoner: a
// canned response is configured once and replayed, rather than generated.
type MockReasoner struct {
	mu       sync.Mutex
	script   MockScript
	fallback []domain.ActionCall
	sessions map[string]string
}

// NewMockReasoner constructs a MockReasoner from options.
func NewMockReasoner(opts MockReasonerOptions) *MockReasoner {
	return &MockReasoner{
		script:   opts.Script,
		fallback: opts.Default,
		sessions: map[string]string{},
	}
}

// BeginSession assigns a stable session id per agent name, reusing it on
// repeated calls (mirroring the real restart-reuses-the-session-id
// contract without any real session state behind it).
func (m *MockReasoner) BeginSession(ctx context.Context, agent *domain.Agent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.sessions[agent.Name]; ok {
		return id, nil
	}
	id := uuid.NewString()
	m.sessions[agent.Name] = id
	return id, nil
}

// Turn returns the configured script's output, or the Default sequence if
// no script was configured.
func (m *MockReasoner) Turn(ctx context.Context, sessionID string, perception Perception, tools []ToolSpec) ([]domain.ActionCall, error) {
	if m.script != nil {
		return m.script(perception), nil
	}
	return m.fallback, nil
}
