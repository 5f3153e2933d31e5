package service

import (
	"github.com/mmynk/moves/internal/models"
	"github.com/mmynk/moves/internal/notify"
	"github.com/mmynk/moves/pkg/api"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) api.Group {
	return api.Group{
		ID:        g.ID,
		Name:      g.Name,
		OwnerID:   g.OwnerID,
		JoinKey:   g.JoinKey,
		CreatedAt: g.CreatedAt,
	}
}

func toAPISettings(s *models.GroupSettings) api.Settings {
	return api.Settings{
		GroupID:           s.GroupID,
		MinVotesRequired:  s.MinVotesRequired,
		VoteDeadlineHours: s.VoteDeadlineHours,
		UpdatedAt:         s.UpdatedAt,
	}
}

func toAPIMove(m *models.Move) api.Move {
	return api.Move{
		ID:          m.ID,
		GroupID:     m.GroupID,
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		Deadline:    m.Deadline,
	}
}

func toAPITally(t models.Tally) api.Tally {
	voters := t.VoterIDs
	if voters == nil {
		voters = []string{}
	}
	return api.Tally{VoteCount: t.VoteCount, VoterIDs: voters}
}

func toAPIListedMove(v models.MoveView) api.ListedMove {
	return api.ListedMove{
		Move:     toAPIMove(v.Move),
		Tally:    toAPITally(v.Tally),
		Status:   string(v.Status),
		Approved: v.Approved,
		Expired:  v.Expired,
	}
}

func toAPIEvent(e notify.Event) *api.Event {
	return &api.Event{
		Type:    string(e.Type),
		GroupID: e.GroupID,
		MoveID:  e.MoveID,
		UserID:  e.UserID,
		Count:   e.Count,
		At:      e.At.Unix(),
	}
}
