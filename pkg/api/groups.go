package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const GroupServiceName = "moves.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure    = "/moves.v1.GroupService/CreateGroup"
	GroupServiceJoinGroupProcedure      = "/moves.v1.GroupService/JoinGroup"
	GroupServiceGetMemberCountProcedure = "/moves.v1.GroupService/GetMemberCount"
	GroupServiceGetSettingsProcedure    = "/moves.v1.GroupService/GetSettings"
	GroupServiceUpdateSettingsProcedure = "/moves.v1.GroupService/UpdateSettings"
)

// GroupServiceHandler is implemented by the server side of moves.v1.GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	JoinGroup(context.Context, *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error)
	GetMemberCount(context.Context, *connect.Request[GetMemberCountRequest]) (*connect.Response[GetMemberCountResponse], error)
	GetSettings(context.Context, *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error)
	UpdateSettings(context.Context, *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createGroup := connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	joinGroup := connect.NewUnaryHandler(GroupServiceJoinGroupProcedure, svc.JoinGroup, opts...)
	getMemberCount := connect.NewUnaryHandler(GroupServiceGetMemberCountProcedure, svc.GetMemberCount, opts...)
	getSettings := connect.NewUnaryHandler(GroupServiceGetSettingsProcedure, svc.GetSettings, opts...)
	updateSettings := connect.NewUnaryHandler(GroupServiceUpdateSettingsProcedure, svc.UpdateSettings, opts...)
	return "/" + GroupServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GroupServiceCreateGroupProcedure:
			createGroup.ServeHTTP(w, r)
		case GroupServiceJoinGroupProcedure:
			joinGroup.ServeHTTP(w, r)
		case GroupServiceGetMemberCountProcedure:
			getMemberCount.ServeHTTP(w, r)
		case GroupServiceGetSettingsProcedure:
			getSettings.ServeHTTP(w, r)
		case GroupServiceUpdateSettingsProcedure:
			updateSettings.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// GroupServiceClient is a client for moves.v1.GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	JoinGroup(context.Context, *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error)
	GetMemberCount(context.Context, *connect.Request[GetMemberCountRequest]) (*connect.Response[GetMemberCountResponse], error)
	GetSettings(context.Context, *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error)
	UpdateSettings(context.Context, *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error)
}

// NewGroupServiceClient constructs a client for moves.v1.GroupService.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:    connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		joinGroup:      connect.NewClient[JoinGroupRequest, JoinGroupResponse](httpClient, baseURL+GroupServiceJoinGroupProcedure, opts...),
		getMemberCount: connect.NewClient[GetMemberCountRequest, GetMemberCountResponse](httpClient, baseURL+GroupServiceGetMemberCountProcedure, opts...),
		getSettings:    connect.NewClient[GetSettingsRequest, GetSettingsResponse](httpClient, baseURL+GroupServiceGetSettingsProcedure, opts...),
		updateSettings: connect.NewClient[UpdateSettingsRequest, UpdateSettingsResponse](httpClient, baseURL+GroupServiceUpdateSettingsProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup    *connect.Client[CreateGroupRequest, CreateGroupResponse]
	joinGroup      *connect.Client[JoinGroupRequest, JoinGroupResponse]
	getMemberCount *connect.Client[GetMemberCountRequest, GetMemberCountResponse]
	getSettings    *connect.Client[GetSettingsRequest, GetSettingsResponse]
	updateSettings *connect.Client[UpdateSettingsRequest, UpdateSettingsResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetMemberCount(ctx context.Context, req *connect.Request[GetMemberCountRequest]) (*connect.Response[GetMemberCountResponse], error) {
	return c.getMemberCount.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetSettings(ctx context.Context, req *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error) {
	return c.getSettings.CallUnary(ctx, req)
}

func (c *groupServiceClient) UpdateSettings(ctx context.Context, req *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error) {
	return c.updateSettings.CallUnary(ctx, req)
}
