package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const VoteServiceName = "moves.v1.VoteService"

const (
	VoteServiceCastVoteProcedure = "/moves.v1.VoteService/CastVote"
	VoteServiceGetTallyProcedure = "/moves.v1.VoteService/GetTally"
)

// VoteServiceHandler is implemented by the server side of moves.v1.VoteService.
type VoteServiceHandler interface {
	CastVote(context.Context, *connect.Request[CastVoteRequest]) (*connect.Response[CastVoteResponse], error)
	GetTally(context.Context, *connect.Request[GetTallyRequest]) (*connect.Response[GetTallyResponse], error)
}

// NewVoteServiceHandler builds an HTTP handler from the service implementation.
func NewVoteServiceHandler(svc VoteServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	castVote := connect.NewUnaryHandler(VoteServiceCastVoteProcedure, svc.CastVote, opts...)
	getTally := connect.NewUnaryHandler(VoteServiceGetTallyProcedure, svc.GetTally, opts...)
	return "/" + VoteServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case VoteServiceCastVoteProcedure:
			castVote.ServeHTTP(w, r)
		case VoteServiceGetTallyProcedure:
			getTally.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// VoteServiceClient is a client for moves.v1.VoteService.
type VoteServiceClient interface {
	CastVote(context.Context, *connect.Request[CastVoteRequest]) (*connect.Response[CastVoteResponse], error)
	GetTally(context.Context, *connect.Request[GetTallyRequest]) (*connect.Response[GetTallyResponse], error)
}

// NewVoteServiceClient constructs a client for moves.v1.VoteService.
func NewVoteServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) VoteServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &voteServiceClient{
		castVote: connect.NewClient[CastVoteRequest, CastVoteResponse](httpClient, baseURL+VoteServiceCastVoteProcedure, opts...),
		getTally: connect.NewClient[GetTallyRequest, GetTallyResponse](httpClient, baseURL+VoteServiceGetTallyProcedure, opts...),
	}
}

type voteServiceClient struct {
	castVote *connect.Client[CastVoteRequest, CastVoteResponse]
	getTally *connect.Client[GetTallyRequest, GetTallyResponse]
}

func (c *voteServiceClient) CastVote(ctx context.Context, req *connect.Request[CastVoteRequest]) (*connect.Response[CastVoteResponse], error) {
	return c.castVote.CallUnary(ctx, req)
}

func (c *voteServiceClient) GetTally(ctx context.Context, req *connect.Request[GetTallyRequest]) (*connect.Response[GetTallyResponse], error) {
	return c.getTally.CallUnary(ctx, req)
}
