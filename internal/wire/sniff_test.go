package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ByteMaster2003/null-talk/internal/wire"
)

func TestIsServerResponseDistinguishesBothFrameShapes(t *testing.T) {
	respBody, err := wire.Encode(wire.ServerResponse{Success: true})
	require.NoError(t, err)
	require.True(t, wire.IsServerResponse(respBody))

	pktBody, err := wire.Encode(wire.Packet{Kind: wire.DirectMessageKind("dm-1"), Payload: []byte("x")})
	require.NoError(t, err)
	require.False(t, wire.IsServerResponse(pktBody))
}
