package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/moves/pkg/client"
	"github.com/mmynk/moves/pkg/logging"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	server   string
	token    string
	jsonOut  bool
	logLevel string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "movesctl",
		Short: "Propose, vote on and sweep group moves",
		Long: `movesctl talks to a moves server.

Authenticate with "movesctl login" and export the printed token as
MOVES_TOKEN, or pass it with --token on every call.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWith(cmd.ErrOrStderr(), g.logLevel, "text")
		},
	}

	cmd.PersistentFlags().StringVar(&g.server, "server", envOr("MOVES_SERVER", "http://localhost:8080"), "Server base URL (env MOVES_SERVER)")
	cmd.PersistentFlags().StringVar(&g.token, "token", os.Getenv("MOVES_TOKEN"), "Session token (env MOVES_TOKEN)")
	cmd.PersistentFlags().BoolVar(&g.jsonOut, "json", false, "Print responses as JSON")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		registerCmd(g),
		loginCmd(g),
		groupCmd(g),
		settingsCmd(g),
		moveCmd(g),
		listCmd(g),
		tallyCmd(g),
		voteCmd(g),
		sweepCmd(g),
		watchCmd(g),
	)
	return cmd
}

func (g *globals) client() *client.Client {
	return client.New(nil, g.server, g.token)
}

// print writes v as JSON when --json is set, and calls text otherwise.
func (g *globals) print(w io.Writer, v any, text func(io.Writer)) error {
	if g.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func requireToken(g *globals) error {
	if g.token == "" {
		return fmt.Errorf("not logged in: pass --token or set MOVES_TOKEN")
	}
	return nil
}
