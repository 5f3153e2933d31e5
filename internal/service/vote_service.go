package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/moves/internal/moves"
	"github.com/mmynk/moves/pkg/api"
)

// VoteService implements the Connect VoteService.
type VoteService struct {
	moves  *moves.Service
	logger *slog.Logger
}

var _ api.VoteServiceHandler = (*VoteService)(nil)

// NewVoteService creates a new VoteService.
func NewVoteService(moveSvc *moves.Service, logger *slog.Logger) *VoteService {
	return &VoteService{moves: moveSvc, logger: logger}
}

// CastVote records the caller's vote on a move.
func (s *VoteService) CastVote(ctx context.Context, req *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("move_id", req.Msg.MoveID); err != nil {
		return nil, err
	}
	s.logger.Info("CastVote request received", "move_id", req.Msg.MoveID, "user_id", userID)

	result, err := s.moves.CastVote(ctx, req.Msg.MoveID, userID)
	if err != nil {
		s.logger.Warn("CastVote failed", "move_id", req.Msg.MoveID, "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("CastVote successful",
		"move_id", req.Msg.MoveID,
		"vote_count", result.Tally.VoteCount,
		"inserted", result.Inserted,
		"approved", result.Approved,
	)
	return connect.NewResponse(&api.CastVoteResponse{
		Tally:    toAPITally(result.Tally),
		Status:   string(result.Status),
		Approved: result.Approved,
		Inserted: result.Inserted,
	}), nil
}

// GetTally returns the vote tally of every move in the group.
func (s *VoteService) GetTally(ctx context.Context, req *connect.Request[api.GetTallyRequest]) (*connect.Response[api.GetTallyResponse], error) {
	if _, err := authorizeGroup(ctx, s.moves, req.Msg.GroupID); err != nil {
		return nil, err
	}
	s.logger.Info("GetTally request received", "group_id", req.Msg.GroupID)

	tallies, err := s.moves.Tally(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("GetTally failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make(map[string]api.Tally, len(tallies))
	for moveID, t := range tallies {
		out[moveID] = toAPITally(t)
	}
	return connect.NewResponse(&api.GetTallyResponse{Tallies: out}), nil
}
