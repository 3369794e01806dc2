// Package conversation implements the conversation service: the
// invite/accept/decline/expire state machine, join/leave, speak, and
// unseen-turn tracking. It operates over a storage.WorldData snapshot and
// a visibility predicate supplied by the caller (the action engine),
// returning domain events for the caller to fold back and hand to
// storage.ApplyEvents.
//
// Service methods here never mutate storage directly, they only ever
// produce Events, following an append-only accumulation pattern.
package conversation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/storage"
)

// Visibility answers "can seer currently see target", used to gate
// invite/join consent.
type Visibility func(seer, target string) bool

// Service wraps one tick's WorldData and a visibility oracle.
type Service struct {
	data    *storage.WorldData
	visible Visibility
}

// New constructs a conversation service bound to the given snapshot.
func New(data *storage.WorldData, visible Visibility) *Service {
	return &Service{data: data, visible: visible}
}

// ActiveConversation returns the conversation agent currently belongs to,
// if any. An agent belongs to at most one active conversation at a time.
func (s *Service) ActiveConversation(agent string) (*domain.Conversation, bool) {
	for _, c := range s.data.Conversations {
		if !c.Ended() && c.HasParticipant(agent) {
			return c, true
		}
	}
	return nil, false
}

// Invite creates a pending invitation from inviter to invitee, provided
// inviter can currently see invitee and neither is already in an active
// conversation. Returns the event to append.
func (s *Service) Invite(inviter, invitee string, privacy domain.Privacy, tick int) (domain.Event, error) {
	if !s.visible(inviter, invitee) {
		return domain.Event{}, fmt.Errorf("%s cannot see %s", inviter, invitee)
	}
	if _, busy := s.ActiveConversation(inviter); busy {
		return domain.Event{}, fmt.Errorf("%s is already in a conversation", inviter)
	}
	if _, busy := s.ActiveConversation(invitee); busy {
		return domain.Event{}, fmt.Errorf("%s is already in a conversation", invitee)
	}
	id := uuid.NewString()
	return domain.NewEvent(tick, domain.EventInvitationSent, map[string]any{
		"id": id, "inviter": inviter, "invitee": invitee, "privacy": string(privacy),
	}), nil
}

// AcceptInvite resolves a pending invitation addressed to invitee,
// producing both the acceptance event and the events needed to start (or
// join) the resulting conversation.
func (s *Service) AcceptInvite(invitee string, tick int) ([]domain.Event, error) {
	inv, err := s.pendingInviteFor(invitee)
	if err != nil {
		return nil, err
	}
	events := []domain.Event{
		domain.NewEvent(tick, domain.EventInvitationAccepted, map[string]any{"id": inv.ID}),
	}
	if conv, busy := s.ActiveConversation(inv.Inviter); busy {
		return append(events, domain.NewEvent(tick, domain.EventParticipantJoined, map[string]any{
			"conversation_id": conv.ID, "agent": invitee,
		})), nil
	}
	convID := uuid.NewString()
	events = append(events, domain.NewEvent(tick, domain.EventConversationStarted, map[string]any{
		"id": convID, "privacy": string(inv.Privacy), "participants": []string{inv.Inviter, inv.Invitee},
	}))
	return events, nil
}

// DeclineInvite resolves a pending invitation addressed to invitee as
// declined.
func (s *Service) DeclineInvite(invitee string, tick int) (domain.Event, error) {
	inv, err := s.pendingInviteFor(invitee)
	if err != nil {
		return domain.Event{}, err
	}
	return domain.NewEvent(tick, domain.EventInvitationDeclined, map[string]any{"id": inv.ID}), nil
}

func (s *Service) pendingInviteFor(invitee string) (*domain.Invitation, error) {
	for _, inv := range s.data.Invitations {
		if inv.Invitee == invitee && inv.Status == domain.InvitationPending {
			return inv, nil
		}
	}
	return nil, fmt.Errorf("%s has no pending invitation", invitee)
}

// JoinConversation joins agent to the public conversation that
// knownParticipant currently belongs to, provided agent can see
// knownParticipant and the conversation is public.
func (s *Service) JoinConversation(agent, knownParticipant string, tick int) (domain.Event, error) {
	if _, busy := s.ActiveConversation(agent); busy {
		return domain.Event{}, fmt.Errorf("%s is already in a conversation", agent)
	}
	conv, ok := s.ActiveConversation(knownParticipant)
	if !ok {
		return domain.Event{}, fmt.Errorf("%s is not in a conversation", knownParticipant)
	}
	if conv.Privacy != domain.PrivacyPublic {
		return domain.Event{}, fmt.Errorf("conversation %s is private", conv.ID)
	}
	if !s.visible(agent, knownParticipant) {
		return domain.Event{}, fmt.Errorf("%s cannot see %s", agent, knownParticipant)
	}
	return domain.NewEvent(tick, domain.EventParticipantJoined, map[string]any{
		"conversation_id": conv.ID, "agent": agent,
	}), nil
}

// LeaveConversation removes agent from their active conversation, emitting
// an additional ConversationEnded event if that was the last participant.
func (s *Service) LeaveConversation(agent string, tick int) ([]domain.Event, error) {
	conv, ok := s.ActiveConversation(agent)
	if !ok {
		return nil, fmt.Errorf("%s is not in a conversation", agent)
	}
	events := []domain.Event{
		domain.NewEvent(tick, domain.EventParticipantLeft, map[string]any{"conversation_id": conv.ID, "agent": agent}),
	}
	remaining := 0
	for _, p := range conv.Participants {
		if p != agent {
			remaining++
		}
	}
	if remaining == 0 {
		events = append(events, domain.NewEvent(tick, domain.EventConversationEnded, map[string]any{"conversation_id": conv.ID}))
	}
	return events, nil
}

// Speak appends a turn to agent's active conversation.
func (s *Service) Speak(agent, text string, tick int) (domain.Event, error) {
	conv, ok := s.ActiveConversation(agent)
	if !ok {
		return domain.Event{}, fmt.Errorf("%s is not in a conversation", agent)
	}
	return domain.NewEvent(tick, domain.EventTurnAdded, map[string]any{
		"conversation_id": conv.ID, "speaker": agent, "text": text,
	}), nil
}

// ExpireInvitations returns one InvitationExpired event per pending
// invitation whose age has reached expiryTicks.
func (s *Service) ExpireInvitations(tick, expiryTicks int) []domain.Event {
	var events []domain.Event
	for _, inv := range s.data.Invitations {
		if inv.Expired(tick, expiryTicks) {
			events = append(events, domain.NewEvent(tick, domain.EventInvitationExpired, map[string]any{"id": inv.ID}))
		}
	}
	return events
}
