package client

import (
	"fmt"

	"github.com/ByteMaster2003/null-talk/internal/cryptoaead"
	"github.com/ByteMaster2003/null-talk/internal/wire"
)

// MessagePipeline implements §4.6's outbound encrypt / inbound decrypt
// steps: building and sealing a Message on the way out, and looking up the
// owning session and opening the ciphertext on the way in.
type MessagePipeline struct {
	sessions *SessionRegistry
	selfID   string
	username string
}

func NewMessagePipeline(sessions *SessionRegistry, selfID, username string) *MessagePipeline {
	return &MessagePipeline{sessions: sessions, selfID: selfID, username: username}
}

// Outbound encrypts plaintext for s and returns the Packet ready to hand to
// the writer. It also appends the plaintext to s's own log, so the sender
// sees their own message without waiting for a round trip.
func (p *MessagePipeline) Outbound(s *Session, plaintext string) (wire.Packet, error) {
	username := p.username
	timestamps := nowMillis()
	msg := wire.Message{
		ID:         s.ID,
		SenderID:   p.selfID,
		Username:   &username,
		Content:    []byte(plaintext),
		Timestamps: timestamps,
	}

	ciphertext, err := cryptoaead.Seal(s.Algo, s.Key, msg.Content)
	if err != nil {
		return wire.Packet{}, fmt.Errorf("client: encrypt message: %w", err)
	}
	msg.Content = ciphertext

	body, err := wire.Encode(msg)
	if err != nil {
		return wire.Packet{}, fmt.Errorf("client: encode message: %w", err)
	}

	s.append(LoggedMessage{SenderID: p.selfID, Username: username, Content: plaintext, Timestamps: timestamps})

	kind := wire.DirectMessageKind(s.ID)
	if s.Mode == ModeGroup {
		kind = wire.GroupMessageKind(s.ID)
	}
	return wire.Packet{Kind: kind, Payload: body}, nil
}

// Inbound decodes and decrypts a DirectMessage/GroupMessage packet and
// appends the plaintext to the owning session's log. An unknown
// conversation id returns (nil, nil, nil) — a silent drop, per §4.6/§7;
// there is no delivery guarantee to violate.
func (p *MessagePipeline) Inbound(pkt wire.Packet) (*Session, *LoggedMessage, error) {
	var msg wire.Message
	if err := wire.Decode(pkt.Payload, &msg); err != nil {
		return nil, nil, fmt.Errorf("client: decode message: %w", err)
	}

	s, ok := p.sessions.Get(pkt.Kind.ID)
	if !ok {
		return nil, nil, nil
	}

	plaintext, err := cryptoaead.Open(s.Algo, s.Key, msg.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("client: decrypt message: %w", err)
	}

	username := msg.SenderID
	if msg.Username != nil {
		username = *msg.Username
	}
	logged := LoggedMessage{SenderID: msg.SenderID, Username: username, Content: string(plaintext), Timestamps: msg.Timestamps}
	s.append(logged)
	return s, &logged, nil
}
