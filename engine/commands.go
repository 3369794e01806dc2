package engine

import (
	"context"
	"fmt"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/mcpserver"
)

// Engine satisfies mcpserver.Commander by enqueueing into pending; nothing
// here touches storage directly. Every command enqueues at most one event,
// applied in a subsequent tick before the invitation-expiry phase.
var _ mcpserver.Commander = (*Engine)(nil)

type pendingCommandKind int

const (
	cmdTriggerEvent pendingCommandKind = iota
	cmdSetWeather
	cmdSendDream
	cmdForceTurn
	cmdSkipTurns
	cmdEndConversation
)

type pendingCommand struct {
	kind           pendingCommandKind
	text           string
	weather        domain.Weather
	agentName      string
	n              int
	conversationID string
}

func (e *Engine) enqueue(cmd pendingCommand) {
	e.pendingMu.Lock()
	e.pending = append(e.pending, cmd)
	e.pendingMu.Unlock()
}

func (e *Engine) TriggerEvent(ctx context.Context, text string) error {
	e.enqueue(pendingCommand{kind: cmdTriggerEvent, text: text})
	return nil
}

func (e *Engine) SetWeather(ctx context.Context, weather domain.Weather) error {
	e.enqueue(pendingCommand{kind: cmdSetWeather, weather: weather})
	return nil
}

func (e *Engine) SendDream(ctx context.Context, agentName, text string) error {
	e.enqueue(pendingCommand{kind: cmdSendDream, agentName: agentName, text: text})
	return nil
}

func (e *Engine) ForceTurn(ctx context.Context, agentName string) error {
	e.enqueue(pendingCommand{kind: cmdForceTurn, agentName: agentName})
	return nil
}

func (e *Engine) SkipTurns(ctx context.Context, agentName string, n int) error {
	e.enqueue(pendingCommand{kind: cmdSkipTurns, agentName: agentName, n: n})
	return nil
}

func (e *Engine) EndConversation(ctx context.Context, conversationID string) error {
	e.enqueue(pendingCommand{kind: cmdEndConversation, conversationID: conversationID})
	return nil
}

// applyPendingCommands drains the commands enqueued since the last tick and
// folds each into tc, before phase 1 runs. Draining here (rather than
// per-command, as each arrives) keeps every command's effect confined to
// a single tick's phase ordering.
func (e *Engine) applyPendingCommands(tc *tickContext) {
	e.pendingMu.Lock()
	cmds := e.pending
	e.pending = nil
	e.pendingMu.Unlock()

	for _, cmd := range cmds {
		switch cmd.kind {
		case cmdTriggerEvent:
			tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventObserverTriggered, map[string]any{
				"kind": "trigger_event", "text": cmd.text,
			}))
		case cmdSetWeather:
			tc.data.World.Weather = cmd.weather
			tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventWeatherChanged, map[string]any{
				"weather": string(cmd.weather),
			}))
		case cmdSendDream:
			tc.addEvents(domain.NewEvent(tc.data.World.Tick, domain.EventObserverTriggered, map[string]any{
				"kind": "dream", "agent": cmd.agentName, "text": cmd.text,
			}))
		case cmdForceTurn:
			tc.forcedTurns[cmd.agentName] = true
			if a, ok := tc.data.Agents[cmd.agentName]; ok {
				a.Sleeping = false
			}
		case cmdSkipTurns:
			tc.skipTurns[cmd.agentName] += cmd.n
		case cmdEndConversation:
			if conv, ok := tc.data.Conversations[cmd.conversationID]; ok && !conv.Ended() {
				tick := tc.data.World.Tick
				conv.EndedTick = &tick
				tc.addEvents(domain.NewEvent(tick, domain.EventConversationEnded, map[string]any{
					"conversation_id": cmd.conversationID,
				}))
			}
		default:
			panic(fmt.Sprintf("engine: unhandled pending command kind %d", cmd.kind))
		}
	}
}
