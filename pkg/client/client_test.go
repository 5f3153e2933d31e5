package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/moves/pkg/api"
)

var errUnimplemented = connect.NewError(connect.CodeUnimplemented, errors.New("not used by the client"))

type fakeServer struct {
	sweeps    atomic.Int32
	lists     atomic.Int32
	sweepFail bool
	listCode  connect.Code
}

func (f *fakeServer) CreateMove(context.Context, *connect.Request[api.CreateMoveRequest]) (*connect.Response[api.CreateMoveResponse], error) {
	return nil, errUnimplemented
}

func (f *fakeServer) EditMove(context.Context, *connect.Request[api.EditMoveRequest]) (*connect.Response[api.EditMoveResponse], error) {
	return nil, errUnimplemented
}

func (f *fakeServer) DeleteMove(context.Context, *connect.Request[api.DeleteMoveRequest]) (*connect.Response[api.DeleteMoveResponse], error) {
	return nil, errUnimplemented
}

func (f *fakeServer) ListMoves(_ context.Context, req *connect.Request[api.ListMovesRequest]) (*connect.Response[api.ListMovesResponse], error) {
	f.lists.Add(1)
	if f.listCode != 0 {
		return nil, connect.NewError(f.listCode, errors.New("list rejected"))
	}
	return connect.NewResponse(&api.ListMovesResponse{Moves: []api.ListedMove{{
		Move:   api.Move{ID: "m1", GroupID: req.Msg.GroupID, Name: "Pizza Night"},
		Tally:  api.Tally{VoteCount: 1, VoterIDs: []string{"u1"}},
		Status: api.StatusActive,
	}}}), nil
}

func (f *fakeServer) SweepGroup(context.Context, *connect.Request[api.SweepGroupRequest]) (*connect.Response[api.SweepGroupResponse], error) {
	f.sweeps.Add(1)
	if f.sweepFail {
		return nil, connect.NewError(connect.CodeUnavailable, errors.New("database is locked"))
	}
	return connect.NewResponse(&api.SweepGroupResponse{Removed: 2}), nil
}

func (f *fakeServer) WatchGroup(context.Context, *connect.Request[api.WatchGroupRequest], *connect.ServerStream[api.Event]) error {
	return errUnimplemented
}

func (f *fakeServer) CastVote(context.Context, *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error) {
	return nil, errUnimplemented
}

func (f *fakeServer) GetTally(context.Context, *connect.Request[api.GetTallyRequest]) (*connect.Response[api.GetTallyResponse], error) {
	return connect.NewResponse(&api.GetTallyResponse{Tallies: map[string]api.Tally{
		"m1": {VoteCount: 1, VoterIDs: []string{"u1"}},
	}}), nil
}

func (f *fakeServer) CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return nil, errUnimplemented
}

func (f *fakeServer) JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	return nil, errUnimplemented
}

func (f *fakeServer) GetMemberCount(context.Context, *connect.Request[api.GetMemberCountRequest]) (*connect.Response[api.GetMemberCountResponse], error) {
	return nil, errUnimplemented
}

func (f *fakeServer) GetSettings(_ context.Context, req *connect.Request[api.GetSettingsRequest]) (*connect.Response[api.GetSettingsResponse], error) {
	return connect.NewResponse(&api.GetSettingsResponse{Settings: api.Settings{
		GroupID: req.Msg.GroupID, MinVotesRequired: 3, VoteDeadlineHours: 24,
	}}), nil
}

func (f *fakeServer) UpdateSettings(context.Context, *connect.Request[api.UpdateSettingsRequest]) (*connect.Response[api.UpdateSettingsResponse], error) {
	return nil, errUnimplemented
}

func newFakeClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(api.NewMoveServiceHandler(f))
	mux.Handle(api.NewVoteServiceHandler(f))
	mux.Handle(api.NewGroupServiceHandler(f))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return New(server.Client(), server.URL, "token")
}

func TestRefresh(t *testing.T) {
	f := &fakeServer{}
	c := newFakeClient(t, f)

	snap, err := c.Refresh(context.Background(), "g1")
	require.NoError(t, err)
	assert.NoError(t, snap.SweepErr)
	assert.Equal(t, 2, snap.Removed)
	require.Len(t, snap.Moves, 1)
	assert.Equal(t, "Pizza Night", snap.Moves[0].Move.Name)
	assert.Equal(t, 1, snap.Tallies["m1"].VoteCount)
	assert.Equal(t, 3, snap.Settings.MinVotesRequired)
}

func TestRefreshToleratesSweepFailure(t *testing.T) {
	f := &fakeServer{sweepFail: true}
	c := newFakeClient(t, f)

	snap, err := c.Refresh(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(snap.SweepErr))
	assert.Zero(t, snap.Removed)
	assert.Len(t, snap.Moves, 1)
}

func TestPollerRunsOnInterval(t *testing.T) {
	f := &fakeServer{}
	p := &Poller{Client: newFakeClient(t, f), Interval: 10 * time.Millisecond}

	errStop := errors.New("stop")
	var seen int
	err := p.Run(context.Background(), "g1", func(s *Snapshot) error {
		seen++
		if seen == 3 {
			return errStop
		}
		return nil
	})

	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 3, seen)
	assert.Equal(t, int32(3), f.sweeps.Load())
}

func TestPollerStopsOnCancel(t *testing.T) {
	f := &fakeServer{}
	p := &Poller{Client: newFakeClient(t, f), Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	err := p.Run(ctx, "g1", func(*Snapshot) error {
		cancel()
		return nil
	})
	assert.NoError(t, err)
}

func TestPollerGivesUpOnPermanentError(t *testing.T) {
	f := &fakeServer{listCode: connect.CodePermissionDenied}
	p := &Poller{Client: newFakeClient(t, f), Interval: 10 * time.Millisecond}

	err := p.Run(context.Background(), "g1", func(*Snapshot) error {
		t.Fatal("callback should not run")
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	assert.Equal(t, int32(1), f.lists.Load())
}
