package voting

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/moves/internal/apperr"
	"github.com/mmynk/moves/internal/models"
)

func TestStatusOf(t *testing.T) {
	created := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	deadline := created.Add(time.Hour).Unix()

	tests := []struct {
		name      string
		voteCount int
		minVotes  int
		now       time.Time
		want      models.Status
	}{
		{"open with two of three votes", 2, 3, created.Add(59 * time.Minute), models.StatusActive},
		{"open at exactly the deadline", 2, 3, created.Add(time.Hour), models.StatusActive},
		{"expired one minute past deadline", 2, 3, created.Add(61 * time.Minute), models.StatusExpired},
		{"approved before deadline", 3, 3, created.Add(10 * time.Minute), models.StatusApproved},
		{"approved stays approved past deadline", 3, 3, created.Add(48 * time.Hour), models.StatusApproved},
		{"more votes than threshold", 5, 3, created.Add(61 * time.Minute), models.StatusApproved},
		{"zero votes open", 0, 1, created, models.StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusOf(tt.voteCount, tt.minVotes, tt.now, deadline)
			if got != tt.want {
				t.Errorf("StatusOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestApprovalIsMonotonicInVotes(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour).Unix()
	for minVotes := 1; minVotes <= 5; minVotes++ {
		approved := false
		for count := 0; count <= 8; count++ {
			got := Approved(count, minVotes)
			if approved && !got {
				t.Fatalf("approval reverted at count=%d minVotes=%d", count, minVotes)
			}
			approved = got
			if got && Expired(count, minVotes, now, past) {
				t.Fatalf("approved move reported expired at count=%d", count)
			}
		}
	}
}

func TestCrossedThreshold(t *testing.T) {
	if !CrossedThreshold(2, 3, 3) {
		t.Error("expected 2 -> 3 to cross a threshold of 3")
	}
	if CrossedThreshold(3, 3, 3) {
		t.Error("a duplicate vote must not re-cross the threshold")
	}
	if CrossedThreshold(3, 4, 3) {
		t.Error("an already approved move must not cross again")
	}
	if CrossedThreshold(1, 2, 3) {
		t.Error("2 votes do not reach a threshold of 3")
	}
}

func TestDeadline(t *testing.T) {
	created := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	settings := &models.GroupSettings{MinVotesRequired: 3, VoteDeadlineHours: 24}

	got := Deadline(created, settings)
	want := created.Add(24 * time.Hour).Unix()
	if got != want {
		t.Errorf("Deadline() = %d, want %d", got, want)
	}
}

func TestView(t *testing.T) {
	created := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	move := &models.Move{ID: "m1", Name: "Pizza Night", Deadline: created.Add(time.Hour).Unix()}
	tally := models.Tally{MoveID: "m1", VoteCount: 3, VoterIDs: []string{"u1", "u2", "u3"}}
	settings := &models.GroupSettings{MinVotesRequired: 3, VoteDeadlineHours: 1}

	got := View(move, tally, settings, created.Add(2*time.Hour))
	want := models.MoveView{
		Move:     move,
		Tally:    tally,
		Status:   models.StatusApproved,
		Approved: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("View() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name      string
		minVotes  int
		hours     int
		members   int
		wantError bool
	}{
		{"within bounds", 2, 24, 4, false},
		{"threshold equal to member count", 4, 1, 4, false},
		{"max deadline", 1, 168, 1, false},
		{"zero threshold", 0, 24, 4, true},
		{"threshold above member count", 5, 24, 4, true},
		{"zero hours", 2, 0, 4, true},
		{"more than a week", 2, 169, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettings(tt.minVotes, tt.hours, tt.members)
			if tt.wantError {
				if apperr.CodeOf(err) != apperr.CodeValidation {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
