// Package moves implements the move lifecycle, voting and group settings rules.
//
// Callers pass trusted user IDs; permission checks compare them against the
// move's creator and the group's owner. Decisions that race with votes (vote
// acceptance, expiry deletion) run inside storage.Store.RunInTx so the check
// and the write observe the same committed votes.
package moves

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/moves/internal/apperr"
	"github.com/mmynk/moves/internal/metrics"
	"github.com/mmynk/moves/internal/models"
	"github.com/mmynk/moves/internal/notify"
	"github.com/mmynk/moves/internal/storage"
	"github.com/mmynk/moves/internal/voting"
)

// DefaultSweepLimit caps the moves removed by one Sweep call.
const DefaultSweepLimit = 100

// Service owns the business rules for moves, votes and settings.
type Service struct {
	store       storage.Store
	events      *notify.Broker
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
	sweepLimit  int
	sweepOnList bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBroker publishes events for every change.
func WithBroker(b *notify.Broker) Option {
	return func(s *Service) { s.events = b }
}

// WithMetrics records counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithSweepLimit caps the moves removed per Sweep call.
func WithSweepLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sweepLimit = n
		}
	}
}

// WithSweepOnList makes ListMoves sweep the group before reading it.
func WithSweepOnList(enabled bool) Option {
	return func(s *Service) { s.sweepOnList = enabled }
}

// NewService creates a Service backed by store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		now:        time.Now,
		sweepLimit: DefaultSweepLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = notify.NewBroker()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewUnregistered()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Events returns the broker the service publishes to.
func (s *Service) Events() *notify.Broker {
	return s.events
}

// clock returns the current time at storage resolution.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *Service) publish(e notify.Event) {
	e.At = s.clock()
	s.events.Publish(e)
}

// CreateMove proposes a new move in a group. Its deadline is the creation time
// plus the group's vote window as configured right now.
func (s *Service) CreateMove(ctx context.Context, groupID, creatorID, name, description, requestID string) (*models.Move, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("move name must not be empty")
	}

	if _, err := s.requireMember(ctx, groupID, creatorID); err != nil {
		return nil, err
	}

	var move *models.Move
	created := false
	err := s.store.RunInTx(ctx, func(tx storage.Tx) error {
		if requestID != "" {
			existing, err := tx.FindMoveByRequestID(ctx, groupID, creatorID, requestID)
			if err == nil {
				move = existing
				return nil
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
		}

		settings, err := tx.GetSettings(ctx, groupID)
		if err != nil {
			return err
		}

		now := s.clock()
		move = &models.Move{
			GroupID:     groupID,
			Name:        name,
			Description: strings.TrimSpace(description),
			CreatedBy:   creatorID,
			CreatedAt:   now.Unix(),
			Deadline:    voting.Deadline(now, settings),
			RequestID:   requestID,
		}
		created = true
		return tx.CreateMove(ctx, move)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create move: %w", err)
	}

	if created {
		s.metrics.MovesCreated.Inc()
		s.publish(notify.Event{Type: notify.EventMoveCreated, GroupID: groupID, MoveID: move.ID, UserID: creatorID})
		s.logger.Info("Move created", "move_id", move.ID, "group_id", groupID, "deadline", move.Deadline)
	} else {
		s.logger.Info("Move create replayed", "move_id", move.ID, "request_id", requestID)
	}
	return move, nil
}

// EditMove changes a move's name and description. Only the creator or the
// group owner may edit.
func (s *Service) EditMove(ctx context.Context, moveID, editorID, name, description string) (*models.Move, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("move name must not be empty")
	}

	move, err := s.authorizeMoveChange(ctx, moveID, editorID, "edit")
	if err != nil {
		return nil, err
	}

	move.Name = name
	move.Description = strings.TrimSpace(description)
	if err := s.store.UpdateMove(ctx, move); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound(err, "move %s not found", moveID)
		}
		return nil, fmt.Errorf("failed to edit move: %w", err)
	}

	s.publish(notify.Event{Type: notify.EventMoveEdited, GroupID: move.GroupID, MoveID: move.ID, UserID: editorID})
	return move, nil
}

// DeleteMove removes a move and its votes. Only the creator or the group owner
// may delete.
func (s *Service) DeleteMove(ctx context.Context, moveID, requesterID string) error {
	move, err := s.authorizeMoveChange(ctx, moveID, requesterID, "delete")
	if err != nil {
		return err
	}

	if err := s.store.DeleteMove(ctx, moveID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(err, "move %s not found", moveID)
		}
		return fmt.Errorf("failed to delete move: %w", err)
	}

	s.metrics.MovesDeleted.Inc()
	s.publish(notify.Event{Type: notify.EventMoveDeleted, GroupID: move.GroupID, MoveID: moveID, UserID: requesterID})
	s.logger.Info("Move deleted", "move_id", moveID, "group_id", move.GroupID, "by", requesterID)
	return nil
}

// ListMoves returns every move in the group with its tally and derived status.
// When sweep-on-list is enabled the group is swept first; a failed sweep is
// logged and the unswept moves are returned.
func (s *Service) ListMoves(ctx context.Context, groupID string) ([]models.MoveView, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}

	if s.sweepOnList {
		if _, err := s.Sweep(ctx, groupID); err != nil {
			s.logger.Warn("Sweep before list failed, returning unswept moves", "group_id", groupID, "error", err)
		}
	}

	moves, err := s.store.ListMoves(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	tallies, err := s.tallies(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettings(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	now := s.clock()
	views := make([]models.MoveView, 0, len(moves))
	for _, move := range moves {
		tally, ok := tallies[move.ID]
		if !ok {
			tally = models.Tally{MoveID: move.ID, VoterIDs: []string{}}
		}
		views = append(views, voting.View(move, tally, settings, now))
	}
	return views, nil
}

// authorizeMoveChange loads the move and checks the actor is its creator or the group owner.
func (s *Service) authorizeMoveChange(ctx context.Context, moveID, actorID, action string) (*models.Move, error) {
	move, err := s.getMove(ctx, moveID)
	if err != nil {
		return nil, err
	}
	if move.CreatedBy == actorID {
		return move, nil
	}

	group, err := s.getGroup(ctx, move.GroupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != actorID {
		return nil, apperr.Permission("only the move's creator or the group owner can %s it", action)
	}
	return move, nil
}

func (s *Service) getGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(err, "group %s not found", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

func (s *Service) getMove(ctx context.Context, moveID string) (*models.Move, error) {
	move, err := s.store.GetMove(ctx, moveID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(err, "move %s not found", moveID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get move: %w", err)
	}
	return move, nil
}

// RequireMember returns a NotFoundError for an unknown group and a
// PermissionError when userID does not belong to it.
func (s *Service) RequireMember(ctx context.Context, groupID, userID string) error {
	_, err := s.requireMember(ctx, groupID, userID)
	return err
}

// requireMember loads the group and checks userID belongs to it.
func (s *Service) requireMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		return nil, apperr.Permission("user %s is not a member of group %s", userID, groupID)
	}
	return group, nil
}
