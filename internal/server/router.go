package server

import (
	"github.com/ByteMaster2003/null-talk/internal/wire"
)

// inboundQueueSize bounds the Router's fan-in queue across every
// connection's reader goroutine.
const inboundQueueSize = 1024

// routed is one packet handed to the Router by a connection's reader
// goroutine, tagged with the Kind it already carries (DirectMessage or
// GroupMessage — commands never reach the Router) and the user_id the
// connection authenticated as during the handshake.
type routed struct {
	senderID string
	packet   wire.Packet
}

// Router fans direct messages and group messages out to their recipients'
// outbound queues. One goroutine owns Run; every connection's reader
// goroutine feeds it through Submit instead of writing recipients
// directly, mirroring the original's single writer task draining a
// channel fed by every reader task (server/src/handlers/task.rs).
type Router struct {
	conversations *ConversationStore
	groups        *GroupStore
	clients       *ClientRegistry

	inbound chan routed
}

func NewRouter(conversations *ConversationStore, groups *GroupStore, clients *ClientRegistry) *Router {
	return &Router{
		conversations: conversations,
		groups:        groups,
		clients:       clients,
		inbound:       make(chan routed, inboundQueueSize),
	}
}

// Submit hands a direct-message or group-message packet to the router on
// behalf of senderID — the authenticated user_id of the connection that
// read it, not whatever sender_id the packet's own payload claims. Never
// blocks forever: if the router is backed up, the packet is dropped.
func (r *Router) Submit(senderID string, pkt wire.Packet) {
	select {
	case r.inbound <- routed{senderID: senderID, packet: pkt}:
	default:
	}
}

// Run drains the inbound queue until it's closed. Call it in its own
// goroutine once per server.
func (r *Router) Run() {
	for item := range r.inbound {
		switch item.packet.Kind.Tag {
		case wire.KindDirectMessage:
			r.routeDirectMessage(item.senderID, item.packet)
		case wire.KindGroupMessage:
			r.routeGroupMessage(item.senderID, item.packet)
		}
	}
}

// Stop closes the inbound queue, letting Run drain and return.
func (r *Router) Stop() {
	close(r.inbound)
}

// reauthenticate re-encodes pkt's Message payload with sender_id forced to
// the authenticated senderID, rather than trusting whatever the client put
// there. A stricter router than the one the packet's own sender would run.
func reauthenticate(pkt wire.Packet, senderID string) (wire.Packet, bool) {
	var msg wire.Message
	if err := wire.Decode(pkt.Payload, &msg); err != nil {
		return pkt, false
	}
	msg.SenderID = senderID
	body, err := wire.Encode(msg)
	if err != nil {
		return pkt, false
	}
	pkt.Payload = body
	return pkt, true
}

func (r *Router) routeDirectMessage(senderID string, pkt wire.Packet) {
	dm, ok := r.conversations.Get(pkt.Kind.ID)
	if !ok {
		return
	}

	var recipient string
	for member := range dm.Members {
		if member != senderID {
			recipient = member
			break
		}
	}
	if recipient == "" {
		return
	}

	rec, ok := r.clients.Get(recipient)
	if !ok {
		return
	}

	corrected, ok := reauthenticate(pkt, senderID)
	if !ok {
		return
	}
	rec.Send(corrected)
}

func (r *Router) routeGroupMessage(senderID string, pkt wire.Packet) {
	group, ok := r.groups.Get(pkt.Kind.ID)
	if !ok {
		return
	}

	corrected, ok := reauthenticate(pkt, senderID)
	if !ok {
		return
	}

	for member, online := range group.Members {
		if !online || member == senderID {
			continue
		}
		if rec, ok := r.clients.Get(member); ok {
			rec.Send(corrected)
		}
	}
}
