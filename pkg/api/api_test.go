package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoVotes struct{}

func (echoVotes) CastVote(_ context.Context, req *connect.Request[CastVoteRequest]) (*connect.Response[CastVoteResponse], error) {
	if req.Header().Get("Authorization") != "Bearer secret" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("missing token"))
	}
	return connect.NewResponse(&CastVoteResponse{
		Tally:    Tally{VoteCount: 1, VoterIDs: []string{"u1"}},
		Status:   StatusActive,
		Inserted: true,
	}), nil
}

func (echoVotes) GetTally(_ context.Context, req *connect.Request[GetTallyRequest]) (*connect.Response[GetTallyResponse], error) {
	return connect.NewResponse(&GetTallyResponse{Tallies: map[string]Tally{
		"m1": {VoteCount: 2, VoterIDs: []string{"u1", "u2"}},
	}}), nil
}

func newVoteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(NewVoteServiceHandler(echoVotes{}))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientSendsBearerToken(t *testing.T) {
	server := newVoteServer(t)
	ctx := context.Background()

	anon := NewVoteServiceClient(server.Client(), server.URL)
	_, err := anon.CastVote(ctx, connect.NewRequest(&CastVoteRequest{MoveID: "m1"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	authed := NewVoteServiceClient(server.Client(), server.URL+"/", connect.WithInterceptors(BearerToken("secret")))
	resp, err := authed.CastVote(ctx, connect.NewRequest(&CastVoteRequest{MoveID: "m1"}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Inserted)
	assert.Equal(t, []string{"u1"}, resp.Msg.Tally.VoterIDs)
}

func TestHandlerSpeaksPlainJSON(t *testing.T) {
	server := newVoteServer(t)

	resp, err := http.Post(server.URL+VoteServiceGetTallyProcedure, "application/json", strings.NewReader(`{"group_id":"g1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tallies":{"m1":{"vote_count":2,"voter_ids":["u1","u2"]}}}`, string(body))
}

func TestUnknownProcedure(t *testing.T) {
	server := newVoteServer(t)

	resp, err := http.Post(server.URL+"/moves.v1.VoteService/Retract", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
