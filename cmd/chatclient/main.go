// Command chatclient is the terminal client: it loads an identity and
// connects to a relay, then drives sessions through a small line-oriented
// REPL (§6). Output from peers is printed asynchronously as it arrives,
// interleaved with whatever the user is typing.
package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	internalclient "github.com/ByteMaster2003/null-talk/internal/client"
	"github.com/ByteMaster2003/null-talk/internal/config"
	"github.com/ByteMaster2003/null-talk/internal/identity"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "chatclient",
		Short: "Connect to a null-talk relay and chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "client.toml", "path to client config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadClientConfig(configPath)
	if err != nil {
		return fmt.Errorf("chatclient: %w", err)
	}

	id, err := identity.LoadFromFiles(cfg.PublicKey, cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("chatclient: %w", err)
	}

	var tlsConfig *tls.Config
	if strings.HasPrefix(cfg.Hostname, "tls://") {
		cfg.Hostname = strings.TrimPrefix(cfg.Hostname, "tls://")
		tlsConfig = &tls.Config{}
	}

	c, err := internalclient.Connect(context.Background(), cfg, id, tlsConfig)
	if err != nil {
		return fmt.Errorf("chatclient: %w", err)
	}
	defer c.Close()

	c.OnMessage(func(sessionID string, msg internalclient.LoggedMessage) {
		from := msg.SenderID
		if msg.Username != "" {
			from = msg.Username
		}
		fmt.Printf("\n[%s] %s: %s\n> ", identity.ShortID(sessionID), from, msg.Content)
	})

	fmt.Printf("connected as %s (%s)\n", cfg.Name, id.UserID)
	repl(c)
	return nil
}

// repl implements the CLI verb set: new, mkgp, addgpm, chat, rmc, my-id,
// help, q. A bare line of input that isn't one of these is sent to
// whichever session "chat" last activated.
func repl(c *internalclient.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}

		verb, rest := splitVerb(line)
		switch verb {
		case "q":
			return
		case "help":
			printHelp()
		case "my-id":
			fmt.Println(c.MyID())
		case "new":
			handleNew(c, rest)
		case "mkgp":
			handleMkgp(c, rest)
		case "addgpm":
			handleAddgpm(c, rest)
		case "chat":
			handleChat(c, rest)
		case "rmc":
			handleRmc(c, rest)
		default:
			if err := c.SendToActive(line); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
		}
		fmt.Print("> ")
	}
}

func splitVerb(line string) (verb, rest string) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func printHelp() {
	fmt.Println(`commands:
  new <path>       open a session from a connection descriptor file
  mkgp <path>      create a group from a group descriptor file
  addgpm <user_id> add a member to the active group session
  chat <session_id> make a session active
  rmc <session_id> forget a session locally
  my-id            print this client's user id
  help             show this message
  q                quit
  <anything else>  sent as a message to the active session`)
}

func handleNew(c *internalclient.Client, path string) {
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: new <path>")
		return
	}
	desc, err := config.LoadConnectionDescriptor(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	s, err := c.NewSession(desc)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Printf("session %q ready: %s\n", s.Name, s.ID)
}

func handleMkgp(c *internalclient.Client, path string) {
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: mkgp <path>")
		return
	}
	desc, err := config.LoadGroupDescriptor(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	// Group descriptors carry no algo field; the admin's client picks it,
	// matching the original's group-creation handler.
	s, err := c.NewGroup(desc, "AES256")
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Printf("group %q ready: %s\n", s.Name, s.ID)
}

func handleAddgpm(c *internalclient.Client, memberID string) {
	if memberID == "" {
		fmt.Fprintln(os.Stderr, "usage: addgpm <user_id>")
		return
	}
	s, ok := c.Sessions.Active()
	if !ok {
		fmt.Fprintln(os.Stderr, "error: no active session; use 'chat <session_id>' first")
		return
	}
	if err := c.AddGroupMember(s.ID, memberID); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Println("member added")
}

func handleChat(c *internalclient.Client, sessionID string) {
	if sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: chat <session_id>")
		return
	}
	if err := c.Sessions.SetActive(sessionID); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Printf("active session: %s\n", sessionID)
}

func handleRmc(c *internalclient.Client, sessionID string) {
	if sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: rmc <session_id>")
		return
	}
	c.RemoveSession(sessionID)
	fmt.Println("session removed")
}
