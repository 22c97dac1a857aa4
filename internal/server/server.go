package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/ByteMaster2003/null-talk/internal/config"
)

// Server owns the listener and the shared CoreState every accepted
// connection dispatches against. Modeled on the original's main.rs:
// bind, start the router/writer task, then accept in a loop spawning one
// handler per connection.
type Server struct {
	cfg   *config.ServerConfig
	log   *logrus.Logger
	state *CoreState
	ln    net.Listener
}

func New(cfg *config.ServerConfig, log *logrus.Logger) *Server {
	return &Server{cfg: cfg, log: log, state: NewCoreState()}
}

// ListenAndServe binds cfg.Addr(), starts the Router, and accepts
// connections until the listener is closed.
func (s *Server) ListenAndServe() error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.WithField("addr", s.cfg.Addr()).Info("server listening")

	go s.state.Router.Run()
	defer s.state.Router.Stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go ServeConn(conn, s.state, s.log)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *Server) listen() (net.Listener, error) {
	if s.cfg.TLS == nil || !s.cfg.TLS.Enabled {
		return net.Listen("tcp", s.cfg.Addr())
	}

	cert, err := tls.LoadX509KeyPair(s.cfg.TLS.CertPath, s.cfg.TLS.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("server: load tls cert/key: %w", err)
	}
	tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	return tls.Listen("tcp", s.cfg.Addr(), tlsCfg)
}
