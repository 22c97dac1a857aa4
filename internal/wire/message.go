package wire

// Message is the payload carried inside a DirectMessage/GroupMessage
// Packet. Content holds ciphertext on the wire; callers decrypt in place
// after receiving it and before handing it to anything else.
type Message struct {
	ID         string  `cbor:"1,keyasint"`
	SenderID   string  `cbor:"2,keyasint"`
	Username   *string `cbor:"3,keyasint,omitempty"`
	Content    []byte  `cbor:"4,keyasint"`
	Timestamps uint64  `cbor:"5,keyasint"`
}
