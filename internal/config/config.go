// Package config loads the TOML-backed configuration described in §6:
// server and client top-level configs, plus the small per-connection and
// per-group descriptor files the client CLI verbs ("new", "mkgp") read.
// Grounded on the original's server/src/config.rs (load-from-well-known-path
// pattern) and on the pack's use of BurntSushi/toml (mxmehl-catshadow,
// katzenpost-client, ZenonEl-OwlWhisper).
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/ByteMaster2003/null-talk/internal/wire"
)

// TLSConfig is the server's optional TLS block.
type TLSConfig struct {
	Enabled  bool   `toml:"enabled"`
	CertPath string `toml:"cert_path"`
	KeyPath  string `toml:"key_path"`
}

// ServerConfig is the top-level server TOML document.
type ServerConfig struct {
	Host string     `toml:"host"`
	Port uint16     `toml:"port"`
	TLS  *TLSConfig `toml:"tls"`

	// LogLevel is an ambient addition (§ ambient stack), not part of the
	// spec's wire/data model.
	LogLevel string `toml:"log_level"`
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadServerConfig reads and validates a server config file.
func LoadServerConfig(path string) (*ServerConfig, error) {
	var cfg ServerConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode server config %s: %w", path, err)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config: server config missing host")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("config: server config missing port")
	}
	if cfg.TLS != nil && cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" || cfg.TLS.KeyPath == "" {
			return nil, fmt.Errorf("config: tls enabled but cert_path/key_path missing")
		}
	}
	return &cfg, nil
}

// ClientConfig is the top-level client TOML document.
type ClientConfig struct {
	Hostname   string `toml:"hostname"`
	Port       uint16 `toml:"port"`
	Name       string `toml:"name"`
	PublicKey  string `toml:"public_key"`
	PrivateKey string `toml:"private_key"`

	LogLevel string `toml:"log_level"`
}

func (c *ClientConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}

// LoadClientConfig reads and validates a client config file.
func LoadClientConfig(path string) (*ClientConfig, error) {
	var cfg ClientConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode client config %s: %w", path, err)
	}
	if cfg.Hostname == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("config: client config missing hostname/port")
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("config: client config missing name")
	}
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("config: client config missing public_key/private_key path")
	}
	return &cfg, nil
}

// ConnectionType discriminates a per-connection descriptor's target.
type ConnectionType string

const (
	ConnectionDM    ConnectionType = "dm"
	ConnectionGroup ConnectionType = "group"
)

// ConnectionDescriptor is the body of a file passed to the client's "new"
// CLI verb (`new <path>`): what to open a session against and how to
// encrypt it.
type ConnectionDescriptor struct {
	Name           string         `toml:"name"`
	ConnectionType ConnectionType `toml:"connection_type"`
	ID             string         `toml:"id"`
	Algo           wire.Algo      `toml:"algo"`
}

// LoadConnectionDescriptor reads a per-connection descriptor file.
func LoadConnectionDescriptor(path string) (*ConnectionDescriptor, error) {
	var desc ConnectionDescriptor
	if _, err := toml.DecodeFile(path, &desc); err != nil {
		return nil, fmt.Errorf("config: decode connection descriptor %s: %w", path, err)
	}
	if desc.ConnectionType != ConnectionDM && desc.ConnectionType != ConnectionGroup {
		return nil, fmt.Errorf("config: connection_type must be %q or %q", ConnectionDM, ConnectionGroup)
	}
	if desc.ID == "" {
		return nil, fmt.Errorf("config: connection descriptor missing id")
	}
	if desc.Algo != wire.AlgoAES256 && desc.Algo != wire.AlgoChaCha20 {
		return nil, fmt.Errorf("config: algo must be %q or %q", wire.AlgoAES256, wire.AlgoChaCha20)
	}
	return &desc, nil
}

// GroupDescriptor is the body of a file passed to the client's "mkgp" CLI
// verb (`mkgp <path>`).
type GroupDescriptor struct {
	Name    string   `toml:"name"`
	GroupID *string  `toml:"group_id"`
	Members []string `toml:"members"`
}

// LoadGroupDescriptor reads a per-group descriptor file.
func LoadGroupDescriptor(path string) (*GroupDescriptor, error) {
	var desc GroupDescriptor
	if _, err := toml.DecodeFile(path, &desc); err != nil {
		return nil, fmt.Errorf("config: decode group descriptor %s: %w", path, err)
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("config: group descriptor missing name")
	}
	return &desc, nil
}
