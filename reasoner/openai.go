package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	openaiapi "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/retry"
)

var _ Reasoner = &OpenAIReasoner{}

// OpenAIReasoner drives agent turns through the Chat Completions API: a
// thin wrapper over an *openai.Client constructed once and reused. Each
// completion call is wrapped in retry.WithRetry; no streaming is used.
type OpenAIReasoner struct {
	client openaiapi.Client
	model  string

	mu       sync.Mutex
	sessions map[string][]openaiapi.ChatCompletionMessageParamUnion
}

// OpenAIOptions configures an OpenAIReasoner.
type OpenAIOptions struct {
	APIKey string // falls back to OPENAI_API_KEY.
	Model  string // defaults to "gpt-4o".
}

// NewOpenAIReasoner constructs an OpenAIReasoner.
func NewOpenAIReasoner(opts OpenAIOptions) *OpenAIReasoner {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	model := opts.Model
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIReasoner{
		client:   openaiapi.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		sessions: map[string][]openaiapi.ChatCompletionMessageParamUnion{},
	}
}

// BeginSession seeds a fresh message history for the agent, keyed by its
// existing SessionID or, when it has none, by "townloop-<name>". Histories
// are held in memory only and do not survive a restart.
func (r *OpenAIReasoner) BeginSession(ctx context.Context, agent *domain.Agent) (string, error) {
	sessionID := agent.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("townloop-%s", agent.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		r.sessions[sessionID] = []openaiapi.ChatCompletionMessageParamUnion{
			openaiapi.SystemMessage(systemPromptFor(agent)),
		}
	}
	return sessionID, nil
}

// Turn appends the current perception as a user message, requests a
// completion constrained to the fixed tool schema, and decodes every
// returned tool call into a domain.ActionCall.
func (r *OpenAIReasoner) Turn(ctx context.Context, sessionID string, perception Perception, tools []ToolSpec) ([]domain.ActionCall, error) {
	r.mu.Lock()
	history := append([]openaiapi.ChatCompletionMessageParamUnion(nil), r.sessions[sessionID]...)
	r.mu.Unlock()

	perceptionJSON, err := json.Marshal(perception)
	if err != nil {
		return nil, fmt.Errorf("reasoner: failed to marshal perception: %w", err)
	}
	history = append(history, openaiapi.UserMessage(string(perceptionJSON)))

	var resp *openaiapi.ChatCompletion
	err = retry.WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = r.client.Chat.Completions.New(ctx, openaiapi.ChatCompletionNewParams{
			Model:    r.model,
			Messages: history,
			Tools:    toolParams(tools),
		})
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("reasoner: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("reasoner: openai returned no choices")
	}

	message := resp.Choices[0].Message
	history = append(history, message.ToParam())
	r.mu.Lock()
	r.sessions[sessionID] = history
	r.mu.Unlock()

	calls := make([]domain.ActionCall, 0, len(message.ToolCalls))
	for _, tc := range message.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("reasoner: failed to decode tool args for %s: %w", tc.Function.Name, err)
			}
		}
		calls = append(calls, domain.ActionCall{Name: domain.ActionName(tc.Function.Name), Args: args})
	}
	return calls, nil
}

func toolParams(tools []ToolSpec) []openaiapi.ChatCompletionToolParam {
	out := make([]openaiapi.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		out[i] = openaiapi.ChatCompletionToolParam{
			Function: openaiapi.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openaiapi.String(t.Description),
				Parameters:  openaiapi.FunctionParameters(t.Parameters),
			},
		}
	}
	return out
}

func systemPromptFor(agent *domain.Agent) string {
	if agent.Personality == "" {
		return fmt.Sprintf("You are %s, an inhabitant of a small persistent town. Respond only by calling the tools you are given.", agent.Name)
	}
	return fmt.Sprintf("You are %s. %s Respond only by calling the tools you are given.", agent.Name, agent.Personality)
}
