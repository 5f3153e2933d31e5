package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/moves/internal/apperr"
	"github.com/mmynk/moves/internal/models"
	"github.com/mmynk/moves/internal/moves"
	"github.com/mmynk/moves/internal/storage"
	"github.com/mmynk/moves/pkg/api"
)

// GroupService implements the Connect GroupService: group membership and
// the group's voting settings.
type GroupService struct {
	store  storage.Store
	moves  *moves.Service
	logger *slog.Logger
}

var _ api.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Store, moveSvc *moves.Service, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, moves: moveSvc, logger: logger}
}

// CreateGroup creates a group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	s.logger.Info("CreateGroup request received", "name", name, "user_id", userID)

	if name == "" {
		return nil, toConnectError(apperr.Validation("group name must not be empty"))
	}

	group := &models.Group{Name: name, OwnerID: userID}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("CreateGroup successful", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// JoinGroup adds the caller to the group holding the join key.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("join_key", req.Msg.JoinKey); err != nil {
		return nil, err
	}
	s.logger.Info("JoinGroup request received", "user_id", userID)

	group, err := s.store.GetGroupByJoinKey(ctx, req.Msg.JoinKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, toConnectError(apperr.NotFound(err, "no group with that join key"))
	}
	if err != nil {
		s.logger.Error("JoinGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	joined, err := s.store.AddMember(ctx, group.ID, userID)
	if err != nil {
		s.logger.Error("JoinGroup failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("JoinGroup successful", "group_id", group.ID, "user_id", userID, "joined", joined)
	return connect.NewResponse(&api.JoinGroupResponse{Group: toAPIGroup(group), Joined: joined}), nil
}

// GetMemberCount returns the number of members of a group the caller belongs to.
func (s *GroupService) GetMemberCount(ctx context.Context, req *connect.Request[api.GetMemberCountRequest]) (*connect.Response[api.GetMemberCountResponse], error) {
	userID, err := s.authorizeGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetMemberCount request received", "group_id", req.Msg.GroupID, "user_id", userID)

	count, err := s.store.CountMembers(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("GetMemberCount failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.GetMemberCountResponse{Count: count}), nil
}

// GetSettings returns the group's voting settings.
func (s *GroupService) GetSettings(ctx context.Context, req *connect.Request[api.GetSettingsRequest]) (*connect.Response[api.GetSettingsResponse], error) {
	if _, err := s.authorizeGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	s.logger.Info("GetSettings request received", "group_id", req.Msg.GroupID)

	settings, err := s.moves.GetSettings(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("GetSettings failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetSettingsResponse{Settings: toAPISettings(settings)}), nil
}

// UpdateSettings replaces the group's voting settings. Only the owner may call it.
func (s *GroupService) UpdateSettings(ctx context.Context, req *connect.Request[api.UpdateSettingsRequest]) (*connect.Response[api.UpdateSettingsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	s.logger.Info("UpdateSettings request received",
		"group_id", req.Msg.GroupID,
		"user_id", userID,
		"min_votes_required", req.Msg.MinVotesRequired,
		"vote_deadline_hours", req.Msg.VoteDeadlineHours,
	)

	settings, err := s.moves.UpdateSettings(ctx, req.Msg.GroupID, userID, req.Msg.MinVotesRequired, req.Msg.VoteDeadlineHours)
	if err != nil {
		s.logger.Warn("UpdateSettings failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("UpdateSettings successful", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.UpdateSettingsResponse{Settings: toAPISettings(settings)}), nil
}

// authorizeGroup checks the caller is a member of groupID and returns their ID.
func (s *GroupService) authorizeGroup(ctx context.Context, groupID string) (string, error) {
	return authorizeGroup(ctx, s.moves, groupID)
}

func authorizeGroup(ctx context.Context, svc *moves.Service, groupID string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	if err := requireField("group_id", groupID); err != nil {
		return "", err
	}
	if err := svc.RequireMember(ctx, groupID, userID); err != nil {
		return "", toConnectError(err)
	}
	return userID, nil
}
