// Package client is a Go client for the moves server with a polling refresh loop.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/moves/pkg/api"
)

// DefaultInterval is the polling period used when Poller.Interval is zero.
const DefaultInterval = 5 * time.Second

// Client bundles the service clients for one server and identity.
type Client struct {
	Auth   api.AuthServiceClient
	Groups api.GroupServiceClient
	Moves  api.MoveServiceClient
	Votes  api.VoteServiceClient
}

// New creates a Client for baseURL. A non-empty token is sent on every call.
func New(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if token != "" {
		opts = append(opts, connect.WithInterceptors(api.BearerToken(token)))
	}
	return &Client{
		Auth:   api.NewAuthServiceClient(httpClient, baseURL, opts...),
		Groups: api.NewGroupServiceClient(httpClient, baseURL, opts...),
		Moves:  api.NewMoveServiceClient(httpClient, baseURL, opts...),
		Votes:  api.NewVoteServiceClient(httpClient, baseURL, opts...),
	}
}

// Snapshot is one refresh of a group's state.
type Snapshot struct {
	GroupID  string
	Moves    []api.ListedMove
	Tallies  map[string]api.Tally
	Settings api.Settings
	// Removed is the number of moves the refresh sweep deleted.
	Removed int
	// SweepErr is set when the sweep failed; the reads still ran.
	SweepErr error
	At       time.Time
}

// Refresh sweeps the group and then reads its moves, tallies and settings.
// A failed sweep is recorded on the snapshot and does not fail the refresh.
func (c *Client) Refresh(ctx context.Context, groupID string) (*Snapshot, error) {
	snap := &Snapshot{GroupID: groupID}

	sweep, err := c.Moves.SweepGroup(ctx, connect.NewRequest(&api.SweepGroupRequest{GroupID: groupID}))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		snap.SweepErr = err
	} else {
		snap.Removed = sweep.Msg.Removed
	}

	list, err := c.Moves.ListMoves(ctx, connect.NewRequest(&api.ListMovesRequest{GroupID: groupID}))
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	tally, err := c.Votes.GetTally(ctx, connect.NewRequest(&api.GetTallyRequest{GroupID: groupID}))
	if err != nil {
		return nil, fmt.Errorf("failed to get tally: %w", err)
	}
	settings, err := c.Groups.GetSettings(ctx, connect.NewRequest(&api.GetSettingsRequest{GroupID: groupID}))
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	snap.Moves = list.Msg.Moves
	snap.Tallies = tally.Msg.Tallies
	snap.Settings = settings.Msg.Settings
	snap.At = time.Now()
	return snap, nil
}

// Poller refreshes a group on a fixed interval.
type Poller struct {
	Client   *Client
	Interval time.Duration
	Logger   *slog.Logger
}

// Run refreshes groupID immediately and then every Interval, passing each
// snapshot to fn, until ctx is done or fn returns an error. Refresh failures
// are logged and retried on the next tick. Run returns nil on cancellation.
func (p *Poller) Run(ctx context.Context, groupID string, fn func(*Snapshot) error) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap, err := p.Client.Refresh(ctx, groupID)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			logger.Warn("Refresh failed", "group_id", groupID, "error", err)
			if isPermanent(err) {
				return err
			}
		default:
			if err := fn(snap); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// isPermanent reports errors that retrying cannot fix.
func isPermanent(err error) bool {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return false
	}
	switch connectErr.Code() {
	case connect.CodeUnauthenticated, connect.CodePermissionDenied, connect.CodeNotFound, connect.CodeInvalidArgument:
		return true
	}
	return false
}
