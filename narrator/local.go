package narrator

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/townloop/engine/domain"
)

var _ Narrator = &LocalNarrator{}

// LocalNarrator renders the simpleActions family from a fixed set of
// text/template strings, parsed once at init (teacher's templates.go
// pattern). It never calls out to an LLM, so it is deterministic and
// exercised in engine tests without mocking a provider.
type LocalNarrator struct {
	fallback Narrator
}

// NewLocalNarrator builds a LocalNarrator. fallback handles anything
// outside the simple-action fast path (crafting, perception, failures);
// if nil, the raw ActionResult.Message is returned unchanged.
func NewLocalNarrator(fallback Narrator) *LocalNarrator {
	return &LocalNarrator{fallback: fallback}
}

type renderContext struct {
	Agent   string
	Message string
	Data    map[string]any
}

var actionTemplates = map[domain.ActionName]*template.Template{}

func init() {
	texts := map[domain.ActionName]string{
		domain.ActionWalk:              `{{.Agent}} walks {{.Message}}.`,
		domain.ActionApproach:          `{{.Agent}} moves toward {{.Message}}.`,
		domain.ActionJourney:           `{{.Agent}} sets off on a journey: {{.Message}}.`,
		domain.ActionTake:              `{{.Agent}} picks up {{.Message}}.`,
		domain.ActionDrop:              `{{.Agent}} sets down {{.Message}}.`,
		domain.ActionGive:              `{{.Agent}} hands over {{.Message}}.`,
		domain.ActionGather:            `{{.Agent}} gathers {{.Message}}.`,
		domain.ActionBuildShelter:      `{{.Agent}} raises a small shelter.`,
		domain.ActionPlaceWall:         `{{.Agent}} places a wall {{.Message}}.`,
		domain.ActionPlaceDoor:         `{{.Agent}} hangs a door {{.Message}}.`,
		domain.ActionPlaceItem:         `{{.Agent}} places {{.Message}} on the ground.`,
		domain.ActionRemoveWall:        `{{.Agent}} tears down a wall {{.Message}}.`,
		domain.ActionWriteSign:         `{{.Agent}} writes a sign.`,
		domain.ActionReadSign:          `{{.Agent}} reads a sign: {{.Message}}.`,
		domain.ActionNamePlace:         `{{.Agent}} names this place {{.Message}}.`,
		domain.ActionSpeak:             `{{.Agent}} says, "{{.Message}}"`,
		domain.ActionInvite:            `{{.Agent}} invites {{.Message}} to talk.`,
		domain.ActionAcceptInvite:      `{{.Agent}} accepts the invitation.`,
		domain.ActionDeclineInvite:     `{{.Agent}} declines the invitation.`,
		domain.ActionJoinConversation:  `{{.Agent}} joins the conversation.`,
		domain.ActionLeaveConversation: `{{.Agent}} leaves the conversation.`,
		domain.ActionSleep:             `{{.Agent}} settles down to sleep.`,
	}
	for name, text := range texts {
		actionTemplates[name] = template.Must(template.New(string(name)).Parse(text))
	}
}

// Narrate renders the action's template if it is in the simple-action
// family and succeeded; otherwise it defers to the fallback narrator, or
// returns the raw message if there is none.
func (n *LocalNarrator) Narrate(ctx context.Context, agentName string, call domain.ActionCall, result domain.ActionResult) (string, error) {
	if !IsSimple(call.Name, result.Success) {
		if n.fallback != nil {
			return n.fallback.Narrate(ctx, agentName, call, result)
		}
		return result.Message, nil
	}
	tmpl, ok := actionTemplates[call.Name]
	if !ok {
		return result.Message, nil
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, renderContext{Agent: agentName, Message: result.Message, Data: result.Data}); err != nil {
		return "", fmt.Errorf("narrator: failed to render template for %s: %w", call.Name, err)
	}
	return buf.String(), nil
}
