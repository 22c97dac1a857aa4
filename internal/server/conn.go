package server

import (
	"net"

	"github.com/sirupsen/logrus"

	"github.com/ByteMaster2003/null-talk/internal/handshake"
	"github.com/ByteMaster2003/null-talk/internal/identity"
	"github.com/ByteMaster2003/null-talk/internal/wire"
)

// ServeConn drives one accepted connection end to end: handshake,
// presence registration, a reader loop dispatching by packet kind, and
// teardown on disconnect. Modeled on handlers/client.rs's handle_client,
// but the outbound path is a dedicated writer goroutine owning the socket
// rather than a mutex-guarded write half shared between tasks — the same
// concurrency split ssh.Client.mainLoop uses for exactly this reason.
func ServeConn(conn net.Conn, state *CoreState, log *logrus.Logger) {
	defer conn.Close()

	result, err := handshake.RunServer(conn)
	if err != nil {
		log.WithError(err).Warn("handshake failed")
		return
	}

	rec := state.Clients.Register(result.UserID, result.Username, result.SessionKey)
	defer cleanup(state, rec)

	entry := log.WithFields(logrus.Fields{
		"user_id":  identity.ShortID(result.UserID),
		"username": result.Username,
	})
	entry.Info("client connected")
	defer entry.Info("client disconnected")

	done := make(chan struct{})
	go runWriter(conn, rec, done)
	defer func() {
		rec.Outbound.close()
		<-done
	}()

	runReader(conn, state, rec, entry)
}

// cleanup implements §4.5: drop presence on every dm/group this client had
// open, removing a conversation once nobody online is left in it, then
// remove the client record itself.
func cleanup(state *CoreState, rec *ClientRecord) {
	rec.mu.Lock()
	dms := append([]string(nil), rec.DMs...)
	groups := append([]string(nil), rec.Groups...)
	rec.mu.Unlock()

	for _, dmID := range dms {
		state.Conversations.Disconnect(dmID, rec.UserID)
	}
	for _, groupID := range groups {
		state.Groups.Disconnect(groupID, rec.UserID)
	}
	state.Clients.Unregister(rec.UserID, rec)
}

func runWriter(conn net.Conn, rec *ClientRecord, done chan struct{}) {
	defer close(done)
	for {
		frames, ok := rec.Outbound.drain()
		if !ok {
			return
		}
		for _, frame := range frames {
			if err := wire.WriteFrame(conn, frame); err != nil {
				return
			}
		}
	}
}

func runReader(conn net.Conn, state *CoreState, rec *ClientRecord, log *logrus.Entry) {
	for {
		var pkt wire.Packet
		if err := wire.ReadFrame(conn, &pkt); err != nil {
			return
		}

		switch pkt.Kind.Tag {
		case wire.KindCommand:
			resp := state.Processor.Process(rec.UserID, pkt.Kind.Verb, pkt.Payload)
			rec.Send(resp)
		case wire.KindDirectMessage, wire.KindGroupMessage:
			state.Router.Submit(rec.UserID, pkt)
		default:
			log.WithField("tag", pkt.Kind.Tag).Warn("unknown packet kind")
		}
	}
}
