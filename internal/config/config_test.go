package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ByteMaster2003/null-talk/internal/config"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadServerConfig(t *testing.T) {
	path := writeTemp(t, "server.toml", `
host = "0.0.0.0"
port = 7878

[tls]
enabled = true
cert_path = "cert.pem"
key_path = "key.pem"
`)
	cfg, err := config.LoadServerConfig(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:7878", cfg.Addr())
	require.True(t, cfg.TLS.Enabled)
}

func TestLoadServerConfigRejectsIncompleteTLS(t *testing.T) {
	path := writeTemp(t, "server.toml", `
host = "0.0.0.0"
port = 7878

[tls]
enabled = true
`)
	_, err := config.LoadServerConfig(path)
	require.Error(t, err)
}

func TestLoadClientConfig(t *testing.T) {
	path := writeTemp(t, "client.toml", `
hostname = "relay.example.com"
port = 7878
name = "alice"
public_key = "alice.pub"
private_key = "alice.key"
`)
	cfg, err := config.LoadClientConfig(path)
	require.NoError(t, err)
	require.Equal(t, "relay.example.com:7878", cfg.Addr())
	require.Equal(t, "alice", cfg.Name)
}

func TestLoadConnectionDescriptor(t *testing.T) {
	path := writeTemp(t, "conn.toml", `
name = "bob"
connection_type = "dm"
id = "deadbeef"
algo = "AES256"
`)
	desc, err := config.LoadConnectionDescriptor(path)
	require.NoError(t, err)
	require.Equal(t, config.ConnectionDM, desc.ConnectionType)
}

func TestLoadGroupDescriptor(t *testing.T) {
	path := writeTemp(t, "group.toml", `
name = "friends"
members = ["alice", "bob"]
`)
	desc, err := config.LoadGroupDescriptor(path)
	require.NoError(t, err)
	require.Nil(t, desc.GroupID)
	require.Len(t, desc.Members, 2)
}
