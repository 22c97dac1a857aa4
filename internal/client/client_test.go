package client_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	internalclient "github.com/ByteMaster2003/null-talk/internal/client"
	"github.com/ByteMaster2003/null-talk/internal/config"
	"github.com/ByteMaster2003/null-talk/internal/identity"
	"github.com/ByteMaster2003/null-talk/internal/server"
	"github.com/ByteMaster2003/null-talk/internal/wire"
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	state := server.NewCoreState()
	log := logrus.New()
	log.SetOutput(discard{})
	go state.Router.Run()
	t.Cleanup(state.Router.Stop)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go server.ServeConn(conn, state, log)
		}
	}()
	return ln.Addr().String()
}

func genIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &identity.Identity{
		UserID:     identity.UserID(&key.PublicKey),
		PublicKey:  &key.PublicKey,
		PrivateKey: key,
	}
}

func TestClientDirectMessageRoundTrip(t *testing.T) {
	addr := startServer(t)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	alice := genIdentity(t)
	bob := genIdentity(t)

	aliceCfg := &config.ClientConfig{Hostname: host, Name: "alice"}
	bobCfg := &config.ClientConfig{Hostname: host, Name: "bob"}
	aliceCfg.Port = mustPort(t, portStr)
	bobCfg.Port = mustPort(t, portStr)

	aliceClient, err := internalclient.Connect(context.Background(), aliceCfg, alice, nil)
	require.NoError(t, err)
	defer aliceClient.Close()

	bobClient, err := internalclient.Connect(context.Background(), bobCfg, bob, nil)
	require.NoError(t, err)
	defer bobClient.Close()

	received := make(chan internalclient.LoggedMessage, 1)
	bobClient.OnMessage(func(sessionID string, msg internalclient.LoggedMessage) {
		received <- msg
	})

	desc := &config.ConnectionDescriptor{Name: "alice-bob", ConnectionType: config.ConnectionDM, ID: bob.UserID, Algo: wire.AlgoAES256}
	session, err := aliceClient.NewSession(desc)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	bobDesc := &config.ConnectionDescriptor{Name: "alice-bob", ConnectionType: config.ConnectionDM, ID: alice.UserID, Algo: wire.AlgoAES256}
	bobSession, err := bobClient.NewSession(bobDesc)
	require.NoError(t, err)
	require.Equal(t, session.ID, bobSession.ID, "dm_id must be symmetric regardless of initiator")

	require.NoError(t, aliceClient.SendMessage(session.ID, "hello bob"))

	select {
	case msg := <-received:
		require.Equal(t, "hello bob", msg.Content)
		require.Equal(t, alice.UserID, msg.SenderID)
	case <-time.After(2 * time.Second):
		t.Fatal("bob never received alice's message")
	}
}

func TestClientGroupAddMemberRequiresAdmin(t *testing.T) {
	addr := startServer(t)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port := mustPort(t, portStr)

	alice := genIdentity(t)
	bob := genIdentity(t)
	carol := genIdentity(t)

	aliceClient, err := internalclient.Connect(context.Background(), &config.ClientConfig{Hostname: host, Port: port, Name: "alice"}, alice, nil)
	require.NoError(t, err)
	defer aliceClient.Close()
	bobClient, err := internalclient.Connect(context.Background(), &config.ClientConfig{Hostname: host, Port: port, Name: "bob"}, bob, nil)
	require.NoError(t, err)
	defer bobClient.Close()

	group, err := aliceClient.NewGroup(&config.GroupDescriptor{Name: "friends", Members: []string{bob.UserID}}, wire.AlgoAES256)
	require.NoError(t, err)

	err = bobClient.AddGroupMember(group.ID, carol.UserID)
	require.Error(t, err)
}

func mustPort(t *testing.T, s string) uint16 {
	t.Helper()
	var port uint16
	for _, c := range s {
		if c < '0' || c > '9' {
			t.Fatalf("bad port %q", s)
		}
		port = port*10 + uint16(c-'0')
	}
	return port
}
