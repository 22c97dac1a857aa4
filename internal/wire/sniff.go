package wire

import "github.com/fxamacker/cbor/v2"

// probe peeks at field 1 of an encoded top-level frame body without
// committing to either candidate struct's shape.
type probe struct {
	Field1 cbor.RawMessage `cbor:"1,keyasint"`
}

// IsServerResponse reports whether body is a ServerResponse rather than a
// Packet. The two are the only bare (non-HandshakePacket) frame shapes a
// client ever reads off the wire, and nothing outside the frame tags which
// one a given body is — a client running one persistent reader goroutine,
// rather than the read-one-expected-type-at-a-time discipline the command
// round-trip alone would allow, has to tell them apart itself. Field 1 is a
// bool (Success) on a ServerResponse and a Kind struct (a CBOR map) on a
// Packet, so decoding it as a bool is a reliable discriminator.
func IsServerResponse(body []byte) bool {
	var p probe
	if err := cbor.Unmarshal(body, &p); err != nil {
		return false
	}
	var b bool
	return cbor.Unmarshal(p.Field1, &b) == nil
}
