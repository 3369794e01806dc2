package reasoner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/townloop/engine/domain"
)

func TestMockReasonerBeginSessionIsStable(t *testing.T) {
	r := NewMockReasoner(MockReasonerOptions{})
	agent := domain.NewAgent("ada", "m", "", domain.Position{})

	id1, err := r.BeginSession(context.Background(), agent)
	require.NoError(t, err)
	id2, err := r.BeginSession(context.Background(), agent)
	require.NoError(t, err)
	require.Equal(t, id1, id2)
}

func TestMockReasonerTurnUsesScriptOverDefault(t *testing.T) {
	scripted := []domain.ActionCall{{Name: domain.ActionSleep}}
	r := NewMockReasoner(MockReasonerOptions{
		Script:  func(Perception) []domain.ActionCall { return scripted },
		Default: []domain.ActionCall{{Name: domain.ActionWalk}},
	})

	calls, err := r.Turn(context.Background(), "s1", Perception{}, nil)
	require.NoError(t, err)
	require.Equal(t, scripted, calls)
}

func TestMockReasonerTurnFallsBackToDefault(t *testing.T) {
	fallback := []domain.ActionCall{{Name: domain.ActionSleep}}
	r := NewMockReasoner(MockReasonerOptions{Default: fallback})

	calls, err := r.Turn(context.Background(), "s1", Perception{}, nil)
	require.NoError(t, err)
	require.Equal(t, fallback, calls)
}
