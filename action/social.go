package action

import "github.com/townloop/engine/domain"

func handleSpeak(c *Context, args map[string]any) domain.ActionResult {
	text, ok := argString(args, "text")
	if !ok {
		return domain.Failf("speak requires text")
	}
	ev, err := c.Conversation.Speak(c.Self.Name, text, c.Tick)
	if err != nil {
		return domain.Failf("%s", err)
	}
	return domain.Ok("spoke", []domain.Event{ev}, nil)
}

func handleInvite(c *Context, args map[string]any) domain.ActionResult {
	invitee, ok := argString(args, "invitee")
	if !ok {
		return domain.Failf("invite requires an invitee")
	}
	privacyRaw, _ := argString(args, "privacy")
	privacy := domain.PrivacyPublic
	if privacyRaw == string(domain.PrivacyPrivate) {
		privacy = domain.PrivacyPrivate
	}
	ev, err := c.Conversation.Invite(c.Self.Name, invitee, privacy, c.Tick)
	if err != nil {
		return domain.Failf("%s", err)
	}
	return domain.Ok("invited "+invitee, []domain.Event{ev}, nil)
}

func handleAcceptInvite(c *Context, args map[string]any) domain.ActionResult {
	events, err := c.Conversation.AcceptInvite(c.Self.Name, c.Tick)
	if err != nil {
		return domain.Failf("%s", err)
	}
	return domain.Ok("accepted invitation", events, nil)
}

func handleDeclineInvite(c *Context, args map[string]any) domain.ActionResult {
	ev, err := c.Conversation.DeclineInvite(c.Self.Name, c.Tick)
	if err != nil {
		return domain.Failf("%s", err)
	}
	return domain.Ok("declined invitation", []domain.Event{ev}, nil)
}

func handleJoinConversation(c *Context, args map[string]any) domain.ActionResult {
	known, ok := argString(args, "known_participant")
	if !ok {
		return domain.Failf("join_conversation requires a known_participant")
	}
	ev, err := c.Conversation.JoinConversation(c.Self.Name, known, c.Tick)
	if err != nil {
		return domain.Failf("%s", err)
	}
	return domain.Ok("joined conversation", []domain.Event{ev}, nil)
}

func handleLeaveConversation(c *Context, args map[string]any) domain.ActionResult {
	events, err := c.Conversation.LeaveConversation(c.Self.Name, c.Tick)
	if err != nil {
		return domain.Failf("%s", err)
	}
	return domain.Ok("left conversation", events, nil)
}
