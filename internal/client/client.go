package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"

	"github.com/ByteMaster2003/null-talk/internal/config"
	"github.com/ByteMaster2003/null-talk/internal/handshake"
	"github.com/ByteMaster2003/null-talk/internal/identity"
	"github.com/ByteMaster2003/null-talk/internal/wire"
)

// Client is the terminal client's connection to the relay: one handshaken
// socket, a reader goroutine (Dispatcher.Run), a writer goroutine draining
// this client's own outbound queue, and the session bookkeeping the CLI
// verbs operate on.
type Client struct {
	conn     net.Conn
	identity *identity.Identity
	username string

	Sessions   *SessionRegistry
	pipeline   *MessagePipeline
	dispatcher *Dispatcher

	// writeMu serializes every wire.WriteFrame call on conn: both
	// runWriter's queued-message writes and SendCommand's command writes
	// go through writeFrame, so the two goroutines can never interleave
	// the length-prefix/body pair of two different frames.
	writeMu sync.Mutex

	outbound   *outbox
	writerDone chan struct{}
}

// Connect dials cfg's address, optionally over TLS, and runs the four-step
// handshake. The returned Client's reader and writer goroutines are
// already running.
func Connect(ctx context.Context, cfg *config.ClientConfig, id *identity.Identity, tlsConfig *tls.Config) (*Client, error) {
	connector := &Connector{TLSConfig: tlsConfig}
	conn, err := connector.Dial(ctx, cfg.Addr())
	if err != nil {
		return nil, err
	}

	// The handshake's session key authenticates the connection itself;
	// chat session keys are generated separately per DM/group.
	if _, err := handshake.RunClient(conn, id, cfg.Name); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: handshake: %w", err)
	}

	sessions := NewSessionRegistry()
	pipeline := NewMessagePipeline(sessions, id.UserID, cfg.Name)
	dispatcher := NewDispatcher(pipeline)

	c := &Client{
		conn:       conn,
		identity:   id,
		username:   cfg.Name,
		Sessions:   sessions,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		outbound:   newOutbox(),
		writerDone: make(chan struct{}),
	}

	go dispatcher.Run(conn)
	go c.runWriter()
	return c, nil
}

// OnMessage registers a callback fired whenever a decrypted inbound
// message lands in a session's log (§4.6's "notify the UI" step).
func (c *Client) OnMessage(fn func(sessionID string, msg LoggedMessage)) {
	c.dispatcher.OnInbound(fn)
}

// MyID returns this client's user_id, for the "my-id" CLI verb.
func (c *Client) MyID() string {
	return c.identity.UserID
}

func (c *Client) runWriter() {
	defer close(c.writerDone)
	for {
		frames, ok := c.outbound.drain()
		if !ok {
			return
		}
		for _, frame := range frames {
			if err := c.writeFrame(frame); err != nil {
				return
			}
		}
	}
}

// writeFrame serializes a single wire.WriteFrame call against conn. Shared
// by runWriter and Dispatcher.SendCommand so a queued message and a
// command never interleave their bytes on the wire.
func (c *Client) writeFrame(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wire.WriteFrame(c.conn, v)
}

// Close shuts down the writer, then the connection. The reader goroutine
// exits on its own once the socket closes.
func (c *Client) Close() error {
	c.outbound.close()
	<-c.writerDone
	return c.conn.Close()
}

// NewSession implements the "new" CLI verb: opens (or joins, for a group)
// a conversation described by desc and registers the resulting Session.
func (c *Client) NewSession(desc *config.ConnectionDescriptor) (*Session, error) {
	mode := wire.DmMode(desc.Name)
	if desc.ConnectionType == config.ConnectionGroup {
		mode = wire.GroupMode(desc.Name)
	}

	payload, err := wire.Encode(wire.NewSessionPayload{ID: desc.ID, Mode: mode, Algo: desc.Algo})
	if err != nil {
		return nil, fmt.Errorf("client: encode new-session payload: %w", err)
	}

	resp, err := c.dispatcher.SendCommand(c.writeFrame, "new", payload)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("client: %s", errString(resp.Error))
	}

	var sessionInfo wire.NewSessionResponse
	if err := wire.Decode(resp.Payload, &sessionInfo); err != nil {
		return nil, fmt.Errorf("client: decode new-session response: %w", err)
	}

	sessMode := ModeDM
	if desc.ConnectionType == config.ConnectionGroup {
		sessMode = ModeGroup
	}
	s := &Session{Name: desc.Name, ID: sessionInfo.ID, Mode: sessMode, Algo: desc.Algo, Key: sessionInfo.SessionKey}
	c.Sessions.Put(s)
	return s, nil
}

// NewGroup implements the "mkgp" CLI verb: creates a group and registers
// the admin's own session for it.
func (c *Client) NewGroup(desc *config.GroupDescriptor, algo wire.Algo) (*Session, error) {
	payload, err := wire.Encode(wire.NewGroupPayload{Name: desc.Name, GroupID: desc.GroupID, Members: desc.Members})
	if err != nil {
		return nil, fmt.Errorf("client: encode new-group payload: %w", err)
	}

	resp, err := c.dispatcher.SendCommand(c.writeFrame, "mkgp", payload)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("client: %s", errString(resp.Error))
	}

	var groupInfo wire.NewGroupResponse
	if err := wire.Decode(resp.Payload, &groupInfo); err != nil {
		return nil, fmt.Errorf("client: decode new-group response: %w", err)
	}

	s := &Session{Name: desc.Name, ID: groupInfo.GroupID, Mode: ModeGroup, Algo: algo, Key: groupInfo.SessionKey}
	c.Sessions.Put(s)
	return s, nil
}

// AddGroupMember implements the "addgpm" CLI verb.
func (c *Client) AddGroupMember(groupID, memberID string) error {
	payload, err := wire.Encode(wire.AddGroupMemberPayload{GroupID: groupID, MemberID: memberID})
	if err != nil {
		return fmt.Errorf("client: encode addgpm payload: %w", err)
	}

	resp, err := c.dispatcher.SendCommand(c.writeFrame, "addgpm", payload)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("client: %s", errString(resp.Error))
	}
	return nil
}

// RemoveSession implements the "rmc" CLI verb: forgets a session locally.
// The server learns of it only lazily, via presence teardown on disconnect
// (§4.5) — there is no explicit "leave" command.
func (c *Client) RemoveSession(sessionID string) {
	c.Sessions.Remove(sessionID)
}

// SendMessage encrypts plaintext for the named session and enqueues the
// resulting frame on the writer. Implements §4.6's outbound steps.
func (c *Client) SendMessage(sessionID, plaintext string) error {
	s, ok := c.Sessions.Get(sessionID)
	if !ok {
		return fmt.Errorf("client: no such session %q", sessionID)
	}
	pkt, err := c.pipeline.Outbound(s, plaintext)
	if err != nil {
		return err
	}
	c.outbound.push(pkt)
	return nil
}

// SendToActive sends plaintext on whichever session "chat <session_id>"
// last activated — the REPL's default destination for a bare line of
// input that isn't one of the CLI verbs.
func (c *Client) SendToActive(plaintext string) error {
	s, ok := c.Sessions.Active()
	if !ok {
		return fmt.Errorf("client: no active session")
	}
	return c.SendMessage(s.ID, plaintext)
}

func errString(e *string) string {
	if e == nil {
		return "command failed"
	}
	return *e
}
