package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/moves/internal/moves"
	"github.com/mmynk/moves/internal/notify"
	"github.com/mmynk/moves/pkg/api"
)

// MoveService implements the Connect MoveService.
type MoveService struct {
	moves  *moves.Service
	logger *slog.Logger
}

var _ api.MoveServiceHandler = (*MoveService)(nil)

// NewMoveService creates a new MoveService.
func NewMoveService(moveSvc *moves.Service, logger *slog.Logger) *MoveService {
	return &MoveService{moves: moveSvc, logger: logger}
}

// CreateMove proposes a move in one of the caller's groups.
func (s *MoveService) CreateMove(ctx context.Context, req *connect.Request[api.CreateMoveRequest]) (*connect.Response[api.CreateMoveResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	s.logger.Info("CreateMove request received",
		"group_id", req.Msg.GroupID,
		"user_id", userID,
		"name", req.Msg.Name,
		"request_id", req.Msg.RequestID,
	)

	move, err := s.moves.CreateMove(ctx, req.Msg.GroupID, userID, req.Msg.Name, req.Msg.Description, req.Msg.RequestID)
	if err != nil {
		s.logger.Warn("CreateMove failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("CreateMove successful", "move_id", move.ID, "deadline", move.Deadline)
	return connect.NewResponse(&api.CreateMoveResponse{Move: toAPIMove(move)}), nil
}

// EditMove renames a move or changes its description.
func (s *MoveService) EditMove(ctx context.Context, req *connect.Request[api.EditMoveRequest]) (*connect.Response[api.EditMoveResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("move_id", req.Msg.MoveID); err != nil {
		return nil, err
	}
	s.logger.Info("EditMove request received", "move_id", req.Msg.MoveID, "user_id", userID)

	move, err := s.moves.EditMove(ctx, req.Msg.MoveID, userID, req.Msg.Name, req.Msg.Description)
	if err != nil {
		s.logger.Warn("EditMove failed", "move_id", req.Msg.MoveID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("EditMove successful", "move_id", move.ID)
	return connect.NewResponse(&api.EditMoveResponse{Move: toAPIMove(move)}), nil
}

// DeleteMove removes a move and its votes.
func (s *MoveService) DeleteMove(ctx context.Context, req *connect.Request[api.DeleteMoveRequest]) (*connect.Response[api.DeleteMoveResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("move_id", req.Msg.MoveID); err != nil {
		return nil, err
	}
	s.logger.Info("DeleteMove request received", "move_id", req.Msg.MoveID, "user_id", userID)

	if err := s.moves.DeleteMove(ctx, req.Msg.MoveID, userID); err != nil {
		s.logger.Warn("DeleteMove failed", "move_id", req.Msg.MoveID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("DeleteMove successful", "move_id", req.Msg.MoveID)
	return connect.NewResponse(&api.DeleteMoveResponse{}), nil
}

// ListMoves returns the group's moves with live tallies and derived status.
func (s *MoveService) ListMoves(ctx context.Context, req *connect.Request[api.ListMovesRequest]) (*connect.Response[api.ListMovesResponse], error) {
	if _, err := authorizeGroup(ctx, s.moves, req.Msg.GroupID); err != nil {
		return nil, err
	}
	s.logger.Info("ListMoves request received", "group_id", req.Msg.GroupID)

	views, err := s.moves.ListMoves(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ListMoves failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	listed := make([]api.ListedMove, len(views))
	for i, v := range views {
		listed[i] = toAPIListedMove(v)
	}

	s.logger.Info("ListMoves successful", "group_id", req.Msg.GroupID, "count", len(listed))
	return connect.NewResponse(&api.ListMovesResponse{Moves: listed}), nil
}

// SweepGroup removes the group's expired moves.
func (s *MoveService) SweepGroup(ctx context.Context, req *connect.Request[api.SweepGroupRequest]) (*connect.Response[api.SweepGroupResponse], error) {
	if _, err := authorizeGroup(ctx, s.moves, req.Msg.GroupID); err != nil {
		return nil, err
	}
	s.logger.Info("SweepGroup request received", "group_id", req.Msg.GroupID)

	removed, err := s.moves.Sweep(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("SweepGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("SweepGroup successful", "group_id", req.Msg.GroupID, "removed", removed)
	return connect.NewResponse(&api.SweepGroupResponse{Removed: removed}), nil
}

// WatchGroup streams the group's events. The first message is always a
// "subscribed" event so clients know later events will not be missed.
func (s *MoveService) WatchGroup(ctx context.Context, req *connect.Request[api.WatchGroupRequest], stream *connect.ServerStream[api.Event]) error {
	userID, err := authorizeGroup(ctx, s.moves, req.Msg.GroupID)
	if err != nil {
		return err
	}
	s.logger.Info("WatchGroup request received", "group_id", req.Msg.GroupID, "user_id", userID)

	sub := s.moves.Events().Subscribe(notify.ForGroup(req.Msg.GroupID))
	defer sub.Close()

	hello := notify.Event{Type: notify.EventSubscribed, GroupID: req.Msg.GroupID, UserID: userID, At: time.Now()}
	if err := stream.Send(toAPIEvent(hello)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("WatchGroup ended", "group_id", req.Msg.GroupID, "user_id", userID)
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := stream.Send(toAPIEvent(event)); err != nil {
				s.logger.Warn("WatchGroup send failed", "group_id", req.Msg.GroupID, "error", err)
				return err
			}
		}
	}
}
