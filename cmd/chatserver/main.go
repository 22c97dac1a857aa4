// Command chatserver runs the relay: it accepts handshaken client
// connections and routes direct/group messages between them. Configuration
// is a single TOML file (§6); see internal/config.ServerConfig for its
// shape.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ByteMaster2003/null-talk/internal/config"
	"github.com/ByteMaster2003/null-talk/internal/logging"
	"github.com/ByteMaster2003/null-talk/internal/server"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "chatserver",
		Short: "Run the null-talk relay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "server.toml", "path to server config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadServerConfig(configPath)
	if err != nil {
		return fmt.Errorf("chatserver: %w", err)
	}

	log := logging.New(cfg.LogLevel)
	srv := server.New(cfg, log)

	log.WithField("addr", cfg.Addr()).Info("starting relay")
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("chatserver: %w", err)
	}
	return nil
}
