package narrator

import (
	"context"
	"fmt"
	"os"

	openaiapi "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/retry"
)

var _ Narrator = &ProviderNarrator{}

// TextGenerator produces one prose completion from a single prompt. Both
// the openai and google llm/providers adapters in this codebase collapse
// down to this shape for narration, since narration needs no tool calls
// or multi-turn history — just the provider's plain-text generation path.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderNarrator calls out to an external LLM for crafting, perception,
// and failure results.
type ProviderNarrator struct {
	gen TextGenerator
}

// NewProviderNarrator wraps a TextGenerator as a Narrator.
func NewProviderNarrator(gen TextGenerator) *ProviderNarrator {
	return &ProviderNarrator{gen: gen}
}

// Narrate builds a short prompt from the action call and its result and
// asks the provider to turn it into one or two sentences of prose. On
// provider failure it falls back to the raw message field.
func (n *ProviderNarrator) Narrate(ctx context.Context, agentName string, call domain.ActionCall, result domain.ActionResult) (string, error) {
	prompt := fmt.Sprintf(
		"Narrate this single action in one or two sentences of plain prose, second person omitted, third person about the actor. Actor: %s. Action: %s. Succeeded: %t. Outcome: %s.",
		agentName, call.Name, result.Success, result.Message,
	)
	text, err := n.gen.Generate(ctx, prompt)
	if err != nil {
		return result.Message, nil
	}
	return text, nil
}

// OpenAITextGenerator implements TextGenerator over the Chat Completions
// API, grounded the same way as reasoner.OpenAIReasoner but without tool
// calling or multi-turn history.
type OpenAITextGenerator struct {
	client openaiapi.Client
	model  string
}

// NewOpenAITextGenerator constructs an OpenAITextGenerator.
func NewOpenAITextGenerator(apiKey, model string) *OpenAITextGenerator {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAITextGenerator{client: openaiapi.NewClient(option.WithAPIKey(apiKey)), model: model}
}

// Generate asks for a single-shot completion with no tool schema.
func (g *OpenAITextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var resp *openaiapi.ChatCompletion
	err := retry.WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = g.client.Chat.Completions.New(ctx, openaiapi.ChatCompletionNewParams{
			Model:    g.model,
			Messages: []openaiapi.ChatCompletionMessageParamUnion{openaiapi.UserMessage(prompt)},
		})
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("narrator: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("narrator: openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GoogleTextGenerator implements TextGenerator over the Gemini API.
type GoogleTextGenerator struct {
	client *genai.Client
	model  string
}

// NewGoogleTextGenerator constructs a GoogleTextGenerator. apiKey falls
// back to GEMINI_API_KEY then GOOGLE_API_KEY.
func NewGoogleTextGenerator(ctx context.Context, apiKey, model string) (*GoogleTextGenerator, error) {
	if apiKey == "" {
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			apiKey = v
		} else {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("narrator: failed to create google genai client: %w", err)
	}
	return &GoogleTextGenerator{client: client, model: model}, nil
}

// Generate asks for a single-shot completion with no tool schema.
func (g *GoogleTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var resp *genai.GenerateContentResponse
	err := retry.WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("narrator: google generate content failed: %w", err)
	}
	return resp.Text(), nil
}
