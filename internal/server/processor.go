package server

import (
	"fmt"

	"github.com/ByteMaster2003/null-talk/internal/wire"
)

// CommandProcessor handles the three command verbs a client can send on an
// established connection: "new" (open or join a DM/group session), "mkgp"
// (create a group), and "addgpm" (invite a member to a group the caller
// administers). Grounded on server/src/handlers/cmd.rs's process_command
// dispatch and its three handlers.
type CommandProcessor struct {
	Clients       *ClientRegistry
	Conversations *ConversationStore
	Groups        *GroupStore
}

func NewCommandProcessor(clients *ClientRegistry, conversations *ConversationStore, groups *GroupStore) *CommandProcessor {
	return &CommandProcessor{Clients: clients, Conversations: conversations, Groups: groups}
}

// Process runs one command on behalf of callerID and returns the response
// frame to send back on that connection.
func (p *CommandProcessor) Process(callerID, verb string, payload []byte) wire.ServerResponse {
	switch verb {
	case "new":
		return p.newSession(callerID, payload)
	case "mkgp":
		return p.newGroup(callerID, payload)
	case "addgpm":
		return p.addGroupMember(callerID, payload)
	default:
		return errResponse(fmt.Sprintf("unknown command %q", verb))
	}
}

func errResponse(msg string) wire.ServerResponse {
	return wire.ServerResponse{Success: false, Error: &msg}
}

func (p *CommandProcessor) newSession(callerID string, payload []byte) wire.ServerResponse {
	var req wire.NewSessionPayload
	if err := wire.Decode(payload, &req); err != nil {
		return errResponse(fmt.Sprintf("failed to decode payload: %v", err))
	}

	var (
		sessionID  string
		sessionKey []byte
	)

	switch req.Mode.Tag {
	case wire.ModeDm:
		if !p.Clients.IsOnline(req.ID) {
			return errResponse("Member not online")
		}
		dm, err := p.Conversations.GetOrCreate(callerID, req.ID)
		if err != nil {
			return errResponse(err.Error())
		}
		if caller, ok := p.Clients.Get(callerID); ok {
			caller.AddDM(dm.DmID)
		}
		if peer, ok := p.Clients.Get(req.ID); ok {
			peer.AddDM(dm.DmID)
		}
		sessionID, sessionKey = dm.DmID, dm.SessionKey

	case wire.ModeGroup:
		group, err := p.Groups.Join(req.ID, callerID)
		if err != nil {
			return errResponse(err.Error())
		}
		if caller, ok := p.Clients.Get(callerID); ok {
			caller.AddGroup(group.GroupID)
		}
		sessionID, sessionKey = group.GroupID, group.SessionKey

	default:
		return errResponse("unknown chat mode")
	}

	body, err := wire.Encode(wire.NewSessionResponse{ID: sessionID, SessionKey: sessionKey})
	if err != nil {
		return errResponse(err.Error())
	}
	return wire.ServerResponse{Success: true, Payload: body}
}

func (p *CommandProcessor) newGroup(callerID string, payload []byte) wire.ServerResponse {
	var req wire.NewGroupPayload
	if err := wire.Decode(payload, &req); err != nil {
		return errResponse(fmt.Sprintf("failed to decode payload: %v", err))
	}

	group, err := p.Groups.Create(req.Name, req.GroupID, callerID, req.Members)
	if err != nil {
		return errResponse(err.Error())
	}

	if caller, ok := p.Clients.Get(callerID); ok {
		caller.AddGroup(group.GroupID)
	}
	for member := range group.Members {
		if member == callerID {
			continue
		}
		if rec, ok := p.Clients.Get(member); ok {
			rec.AddGroup(group.GroupID)
		}
	}

	body, err := wire.Encode(wire.NewGroupResponse{GroupID: group.GroupID, SessionKey: group.SessionKey})
	if err != nil {
		return errResponse(err.Error())
	}
	return wire.ServerResponse{Success: true, Payload: body}
}

func (p *CommandProcessor) addGroupMember(callerID string, payload []byte) wire.ServerResponse {
	var req wire.AddGroupMemberPayload
	if err := wire.Decode(payload, &req); err != nil {
		return errResponse(fmt.Sprintf("failed to decode payload: %v", err))
	}

	joined := p.Clients.IsOnline(req.MemberID)
	group, err := p.Groups.AddMember(req.GroupID, callerID, req.MemberID, joined)
	if err != nil {
		return errResponse(err.Error())
	}
	if joined {
		if rec, ok := p.Clients.Get(req.MemberID); ok {
			rec.AddGroup(group.GroupID)
		}
	}

	body, err := wire.Encode("member added successfully")
	if err != nil {
		return errResponse(err.Error())
	}
	return wire.ServerResponse{Success: true, Payload: body}
}
