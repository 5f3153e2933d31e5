package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const MoveServiceName = "moves.v1.MoveService"

const (
	MoveServiceCreateMoveProcedure = "/moves.v1.MoveService/CreateMove"
	MoveServiceEditMoveProcedure   = "/moves.v1.MoveService/EditMove"
	MoveServiceDeleteMoveProcedure = "/moves.v1.MoveService/DeleteMove"
	MoveServiceListMovesProcedure  = "/moves.v1.MoveService/ListMoves"
	MoveServiceSweepGroupProcedure = "/moves.v1.MoveService/SweepGroup"
	MoveServiceWatchGroupProcedure = "/moves.v1.MoveService/WatchGroup"
)

// MoveServiceHandler is implemented by the server side of moves.v1.MoveService.
type MoveServiceHandler interface {
	CreateMove(context.Context, *connect.Request[CreateMoveRequest]) (*connect.Response[CreateMoveResponse], error)
	EditMove(context.Context, *connect.Request[EditMoveRequest]) (*connect.Response[EditMoveResponse], error)
	DeleteMove(context.Context, *connect.Request[DeleteMoveRequest]) (*connect.Response[DeleteMoveResponse], error)
	ListMoves(context.Context, *connect.Request[ListMovesRequest]) (*connect.Response[ListMovesResponse], error)
	SweepGroup(context.Context, *connect.Request[SweepGroupRequest]) (*connect.Response[SweepGroupResponse], error)
	// WatchGroup streams the group's events until the client disconnects.
	WatchGroup(context.Context, *connect.Request[WatchGroupRequest], *connect.ServerStream[Event]) error
}

// NewMoveServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewMoveServiceHandler(svc MoveServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createMove := connect.NewUnaryHandler(MoveServiceCreateMoveProcedure, svc.CreateMove, opts...)
	editMove := connect.NewUnaryHandler(MoveServiceEditMoveProcedure, svc.EditMove, opts...)
	deleteMove := connect.NewUnaryHandler(MoveServiceDeleteMoveProcedure, svc.DeleteMove, opts...)
	listMoves := connect.NewUnaryHandler(MoveServiceListMovesProcedure, svc.ListMoves, opts...)
	sweepGroup := connect.NewUnaryHandler(MoveServiceSweepGroupProcedure, svc.SweepGroup, opts...)
	watchGroup := connect.NewServerStreamHandler(MoveServiceWatchGroupProcedure, svc.WatchGroup, opts...)
	return "/" + MoveServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case MoveServiceCreateMoveProcedure:
			createMove.ServeHTTP(w, r)
		case MoveServiceEditMoveProcedure:
			editMove.ServeHTTP(w, r)
		case MoveServiceDeleteMoveProcedure:
			deleteMove.ServeHTTP(w, r)
		case MoveServiceListMovesProcedure:
			listMoves.ServeHTTP(w, r)
		case MoveServiceSweepGroupProcedure:
			sweepGroup.ServeHTTP(w, r)
		case MoveServiceWatchGroupProcedure:
			watchGroup.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// MoveServiceClient is a client for moves.v1.MoveService.
type MoveServiceClient interface {
	CreateMove(context.Context, *connect.Request[CreateMoveRequest]) (*connect.Response[CreateMoveResponse], error)
	EditMove(context.Context, *connect.Request[EditMoveRequest]) (*connect.Response[EditMoveResponse], error)
	DeleteMove(context.Context, *connect.Request[DeleteMoveRequest]) (*connect.Response[DeleteMoveResponse], error)
	ListMoves(context.Context, *connect.Request[ListMovesRequest]) (*connect.Response[ListMovesResponse], error)
	SweepGroup(context.Context, *connect.Request[SweepGroupRequest]) (*connect.Response[SweepGroupResponse], error)
	WatchGroup(context.Context, *connect.Request[WatchGroupRequest]) (*connect.ServerStreamForClient[Event], error)
}

// NewMoveServiceClient constructs a client for moves.v1.MoveService at baseURL
// (for example, http://localhost:8080).
func NewMoveServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) MoveServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &moveServiceClient{
		createMove: connect.NewClient[CreateMoveRequest, CreateMoveResponse](httpClient, baseURL+MoveServiceCreateMoveProcedure, opts...),
		editMove:   connect.NewClient[EditMoveRequest, EditMoveResponse](httpClient, baseURL+MoveServiceEditMoveProcedure, opts...),
		deleteMove: connect.NewClient[DeleteMoveRequest, DeleteMoveResponse](httpClient, baseURL+MoveServiceDeleteMoveProcedure, opts...),
		listMoves:  connect.NewClient[ListMovesRequest, ListMovesResponse](httpClient, baseURL+MoveServiceListMovesProcedure, opts...),
		sweepGroup: connect.NewClient[SweepGroupRequest, SweepGroupResponse](httpClient, baseURL+MoveServiceSweepGroupProcedure, opts...),
		watchGroup: connect.NewClient[WatchGroupRequest, Event](httpClient, baseURL+MoveServiceWatchGroupProcedure, opts...),
	}
}

type moveServiceClient struct {
	createMove *connect.Client[CreateMoveRequest, CreateMoveResponse]
	editMove   *connect.Client[EditMoveRequest, EditMoveResponse]
	deleteMove *connect.Client[DeleteMoveRequest, DeleteMoveResponse]
	listMoves  *connect.Client[ListMovesRequest, ListMovesResponse]
	sweepGroup *connect.Client[SweepGroupRequest, SweepGroupResponse]
	watchGroup *connect.Client[WatchGroupRequest, Event]
}

func (c *moveServiceClient) CreateMove(ctx context.Context, req *connect.Request[CreateMoveRequest]) (*connect.Response[CreateMoveResponse], error) {
	return c.createMove.CallUnary(ctx, req)
}

func (c *moveServiceClient) EditMove(ctx context.Context, req *connect.Request[EditMoveRequest]) (*connect.Response[EditMoveResponse], error) {
	return c.editMove.CallUnary(ctx, req)
}

func (c *moveServiceClient) DeleteMove(ctx context.Context, req *connect.Request[DeleteMoveRequest]) (*connect.Response[DeleteMoveResponse], error) {
	return c.deleteMove.CallUnary(ctx, req)
}

func (c *moveServiceClient) ListMoves(ctx context.Context, req *connect.Request[ListMovesRequest]) (*connect.Response[ListMovesResponse], error) {
	return c.listMoves.CallUnary(ctx, req)
}

func (c *moveServiceClient) SweepGroup(ctx context.Context, req *connect.Request[SweepGroupRequest]) (*connect.Response[SweepGroupResponse], error) {
	return c.sweepGroup.CallUnary(ctx, req)
}

func (c *moveServiceClient) WatchGroup(ctx context.Context, req *connect.Request[WatchGroupRequest]) (*connect.ServerStreamForClient[Event], error) {
	return c.watchGroup.CallServerStream(ctx, req)
}
