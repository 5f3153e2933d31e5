package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/moves/internal/config"
	"github.com/mmynk/moves/internal/server"
	"github.com/mmynk/moves/internal/storage/sqlite"
	"github.com/mmynk/moves/pkg/api"
)

func startServer(t *testing.T) string {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "moves.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{
		JWTSecret:        "cli-secret",
		TokenTTL:         time.Hour,
		SweepBatchLimit:  100,
		SweepConcurrency: 1,
		SweepOnList:      true,
		CORSOrigin:       "*",
	}
	ts := httptest.NewServer(server.New(cfg, store, slog.New(slog.NewTextHandler(io.Discard, nil))).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// run executes movesctl with args and returns its stdout.
func run(t *testing.T, url, token string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--server", url, "--token", token}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func runJSON(t *testing.T, url, token string, v any, args ...string) {
	t.Helper()
	out, err := run(t, url, token, append([]string{"--json"}, args...)...)
	if err != nil {
		t.Fatalf("movesctl %v failed: %v", args, err)
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("movesctl %v: bad JSON %q: %v", args, out, err)
	}
}

func TestCLIWorkflow(t *testing.T) {
	url := startServer(t)

	var owner, friend api.RegisterResponse
	runJSON(t, url, "", &owner, "register", "owner", "--password", "password1")
	runJSON(t, url, "", &friend, "register", "friend", "--password", "password2")

	var login api.LoginResponse
	runJSON(t, url, "", &login, "login", "owner", "--password", "password1")
	if login.User.ID != owner.User.ID {
		t.Fatalf("login returned a different user: %+v", login.User)
	}

	var group api.CreateGroupResponse
	runJSON(t, url, owner.Token, &group, "group", "create", "Climbers")
	groupID := group.Group.ID

	out, err := run(t, url, friend.Token, "group", "join", group.Group.JoinKey)
	if err != nil {
		t.Fatalf("group join failed: %v", err)
	}
	if !strings.Contains(out, "Climbers") {
		t.Errorf("unexpected join output %q", out)
	}

	if _, err := run(t, url, owner.Token, "settings", "set", groupID, "--min-votes", "2", "--deadline-hours", "12"); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}
	out, err = run(t, url, friend.Token, "settings", "get", groupID)
	if err != nil {
		t.Fatalf("settings get failed: %v", err)
	}
	if strings.TrimSpace(out) != "min_votes_required=2 vote_deadline_hours=12" {
		t.Errorf("unexpected settings output %q", out)
	}

	var move api.CreateMoveResponse
	runJSON(t, url, friend.Token, &move, "move", "create", groupID, "Bouldering", "--request-id", "cli-1")

	var vote api.CastVoteResponse
	runJSON(t, url, owner.Token, &vote, "vote", move.Move.ID)
	runJSON(t, url, friend.Token, &vote, "vote", move.Move.ID)
	if !vote.Approved || vote.Tally.VoteCount != 2 {
		t.Errorf("expected approval at 2 votes, got %+v", vote)
	}

	out, err = run(t, url, owner.Token, "list", groupID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Bouldering") || !strings.Contains(out, "approved") {
		t.Errorf("unexpected list output %q", out)
	}

	out, err = run(t, url, owner.Token, "sweep", groupID)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if !strings.Contains(out, "Removed 0") {
		t.Errorf("unexpected sweep output %q", out)
	}

	if _, err := run(t, url, owner.Token, "move", "delete", move.Move.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	out, err = run(t, url, owner.Token, "list", groupID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(out) != "No moves" {
		t.Errorf("expected empty list, got %q", out)
	}
}

func TestCLIErrors(t *testing.T) {
	url := startServer(t)

	if _, err := run(t, url, "", "group", "create", "Nobody"); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("expected not-logged-in error, got %v", err)
	}
	if _, err := run(t, url, "bogus", "list", "g1"); err == nil {
		t.Error("expected error for invalid token")
	}
	if _, err := run(t, url, "", "vote"); err == nil {
		t.Error("expected argument error")
	}
}
