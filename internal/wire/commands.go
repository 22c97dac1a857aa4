package wire

// Algo names the symmetric algorithm used to encrypt a conversation.
type Algo string

const (
	AlgoAES256   Algo = "AES256"
	AlgoChaCha20 Algo = "ChaCha20"
)

// ModeTag discriminates NewSessionPayload.Mode between a DM and a group.
type ModeTag uint8

const (
	ModeDm ModeTag = iota
	ModeGroup
)

// Mode mirrors the original's ChatMode enum: Dm(name) or Group(name).
type Mode struct {
	Tag  ModeTag `cbor:"1,keyasint"`
	Name string  `cbor:"2,keyasint"`
}

func DmMode(name string) Mode    { return Mode{Tag: ModeDm, Name: name} }
func GroupMode(name string) Mode { return Mode{Tag: ModeGroup, Name: name} }

// NewSessionPayload is the request body for the "new" command.
// ID is the peer's user_id for a DM, or a group_id for a group.
type NewSessionPayload struct {
	ID   string `cbor:"1,keyasint"`
	Mode Mode   `cbor:"2,keyasint"`
	Algo Algo   `cbor:"3,keyasint"`
}

// NewSessionResponse is the "new" command's success payload.
type NewSessionResponse struct {
	ID         string `cbor:"1,keyasint"`
	SessionKey []byte `cbor:"2,keyasint"`
}

// NewGroupPayload is the request body for the "mkgp" command.
type NewGroupPayload struct {
	Name    string   `cbor:"1,keyasint"`
	GroupID *string  `cbor:"2,keyasint,omitempty"`
	Members []string `cbor:"3,keyasint"`
}

// NewGroupResponse is the "mkgp" command's success payload.
type NewGroupResponse struct {
	GroupID    string `cbor:"1,keyasint"`
	SessionKey []byte `cbor:"2,keyasint"`
}

// AddGroupMemberPayload is the request body for the "addgpm" command.
type AddGroupMemberPayload struct {
	GroupID  string `cbor:"1,keyasint"`
	MemberID string `cbor:"2,keyasint"`
}
