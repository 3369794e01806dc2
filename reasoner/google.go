package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"google.golang.org/genai"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/retry"
)

var _ Reasoner = &GoogleReasoner{}

// GoogleReasoner drives agent turns through the Gemini API: a
// lazily-initialized *genai.Client reused across calls, with function
// declarations built directly from the fixed tool schema.
type GoogleReasoner struct {
	apiKey string
	model  string

	mu       sync.Mutex
	client   *genai.Client
	sessions map[string][]*genai.Content
}

// GoogleOptions configures a GoogleReasoner.
type GoogleOptions struct {
	APIKey string // falls back to GEMINI_API_KEY then GOOGLE_API_KEY.
	Model  string // defaults to "gemini-2.5-flash".
}

// NewGoogleReasoner constructs a GoogleReasoner. The underlying client is
// created lazily on first use.
func NewGoogleReasoner(opts GoogleOptions) *GoogleReasoner {
	apiKey := opts.APIKey
	if apiKey == "" {
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			apiKey = v
		} else {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
	}
	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GoogleReasoner{
		apiKey:   apiKey,
		model:    model,
		sessions: map[string][]*genai.Content{},
	}
}

func (r *GoogleReasoner) initClient(ctx context.Context) (*genai.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: r.apiKey})
	if err != nil {
		return nil, fmt.Errorf("reasoner: failed to create google genai client: %w", err)
	}
	r.client = client
	return client, nil
}

// BeginSession seeds an empty content history for the agent.
func (r *GoogleReasoner) BeginSession(ctx context.Context, agent *domain.Agent) (string, error) {
	if _, err := r.initClient(ctx); err != nil {
		return "", err
	}
	sessionID := agent.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("townloop-%s", agent.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		r.sessions[sessionID] = nil
	}
	return sessionID, nil
}

// Turn appends the perception as a user turn and asks the model for
// function calls, constrained to the fixed tool schema.
func (r *GoogleReasoner) Turn(ctx context.Context, sessionID string, perception Perception, tools []ToolSpec) ([]domain.ActionCall, error) {
	client, err := r.initClient(ctx)
	if err != nil {
		return nil, err
	}

	perceptionJSON, err := json.Marshal(perception)
	if err != nil {
		return nil, fmt.Errorf("reasoner: failed to marshal perception: %w", err)
	}

	r.mu.Lock()
	history := append([]*genai.Content(nil), r.sessions[sessionID]...)
	r.mu.Unlock()
	history = append(history, genai.NewContentFromText(string(perceptionJSON), genai.RoleUser))

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{FunctionDeclarations: functionDeclarations(tools)}},
	}

	var resp *genai.GenerateContentResponse
	err = retry.WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = client.Models.GenerateContent(ctx, r.model, history, config)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("reasoner: google generate content failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("reasoner: google returned no candidates")
	}

	reply := resp.Candidates[0].Content
	history = append(history, reply)
	r.mu.Lock()
	r.sessions[sessionID] = history
	r.mu.Unlock()

	var calls []domain.ActionCall
	for _, part := range reply.Parts {
		if part.FunctionCall == nil {
			continue
		}
		calls = append(calls, domain.ActionCall{
			Name: domain.ActionName(part.FunctionCall.Name),
			Args: part.FunctionCall.Args,
		})
	}
	return calls, nil
}

func functionDeclarations(tools []ToolSpec) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		out[i] = &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  parametersSchema(t.Parameters),
		}
	}
	return out
}

// parametersSchema converts the engine's generic JSON-schema-shaped map
// into a *genai.Schema by round-tripping through JSON, since genai.Schema
// has its own struct tags distinct from the raw JSON Schema the action
// package's schema.Generate produces.
func parametersSchema(params map[string]any) *genai.Schema {
	if params == nil {
		return nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil
	}
	var out genai.Schema
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}
