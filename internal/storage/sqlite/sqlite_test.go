package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/moves/internal/models"
	"github.com/mmynk/moves/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *SQLiteStore, username string) *models.User {
	t.Helper()

	user := models.NewUser(username, username+"@example.com", "", "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func createGroup(t *testing.T, store *SQLiteStore, owner *models.User, members ...*models.User) *models.Group {
	t.Helper()

	ctx := context.Background()
	group := &models.Group{Name: "Weekend Warriors", OwnerID: owner.ID}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, m := range members {
		if _, err := store.AddMember(ctx, group.ID, m.ID); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}
	return group
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	john := createUser(t, store, "john")
	jane := createUser(t, store, "jane")
	group := createGroup(t, store, john, jane)

	t.Run("users are found by username and ID", func(t *testing.T) {
		byName, err := store.GetUserByUsername(ctx, "john")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if byName.ID != john.ID {
			t.Errorf("ID mismatch: got %s, want %s", byName.ID, john.ID)
		}

		byID, err := store.GetUserByID(ctx, jane.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID.Username != "jane" {
			t.Errorf("Username mismatch: got %s, want jane", byID.Username)
		}

		_, err = store.GetUserByUsername(ctx, "nobody")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateGroup adds the owner as a member", func(t *testing.T) {
		if group.ID == "" || group.JoinKey == "" || group.CreatedAt == 0 {
			t.Fatalf("Expected generated fields, got %+v", group)
		}

		isMember, err := store.IsMember(ctx, group.ID, john.ID)
		if err != nil {
			t.Fatalf("IsMember failed: %v", err)
		}
		if !isMember {
			t.Error("Expected owner to be a member")
		}

		count, err := store.CountMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("CountMembers failed: %v", err)
		}
		if count != 2 {
			t.Errorf("Member count: got %d, want 2", count)
		}
	})

	t.Run("AddMember is a no-op for existing members", func(t *testing.T) {
		added, err := store.AddMember(ctx, group.ID, jane.ID)
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if added {
			t.Error("Expected repeated AddMember to report false")
		}
	})

	t.Run("GetGroupByJoinKey", func(t *testing.T) {
		found, err := store.GetGroupByJoinKey(ctx, group.JoinKey)
		if err != nil {
			t.Fatalf("GetGroupByJoinKey failed: %v", err)
		}
		if found.ID != group.ID || found.OwnerID != john.ID {
			t.Errorf("Unexpected group: %+v", found)
		}

		_, err = store.GetGroupByJoinKey(ctx, "bogus")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetSettings returns defaults then stored values", func(t *testing.T) {
		settings, err := store.GetSettings(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if settings.MinVotesRequired != 3 || settings.VoteDeadlineHours != 24 {
			t.Errorf("Expected defaults (3, 24), got (%d, %d)",
				settings.MinVotesRequired, settings.VoteDeadlineHours)
		}

		err = store.PutSettings(ctx, &models.GroupSettings{
			GroupID: group.ID, MinVotesRequired: 2, VoteDeadlineHours: 1,
		})
		if err != nil {
			t.Fatalf("PutSettings failed: %v", err)
		}
		err = store.PutSettings(ctx, &models.GroupSettings{
			GroupID: group.ID, MinVotesRequired: 1, VoteDeadlineHours: 48,
		})
		if err != nil {
			t.Fatalf("PutSettings overwrite failed: %v", err)
		}

		settings, err = store.GetSettings(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if settings.MinVotesRequired != 1 || settings.VoteDeadlineHours != 48 {
			t.Errorf("Expected (1, 48), got (%d, %d)",
				settings.MinVotesRequired, settings.VoteDeadlineHours)
		}
	})
}

func TestMovesAndVotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	john := createUser(t, store, "john")
	jane := createUser(t, store, "jane")
	group := createGroup(t, store, john, jane)
	created := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	move := &models.Move{
		GroupID:     group.ID,
		Name:        "Pizza Night",
		Description: "Order pizza and watch movies",
		CreatedBy:   john.ID,
		CreatedAt:   created.Unix(),
		Deadline:    created.Add(time.Hour).Unix(),
		RequestID:   "req-1",
	}
	if err := store.CreateMove(ctx, move); err != nil {
		t.Fatalf("CreateMove failed: %v", err)
	}

	t.Run("GetMove retrieves complete move", func(t *testing.T) {
		got, err := store.GetMove(ctx, move.ID)
		if err != nil {
			t.Fatalf("GetMove failed: %v", err)
		}
		if *got != *move {
			t.Errorf("Move mismatch: got %+v, want %+v", got, move)
		}
	})

	t.Run("FindMoveByRequestID", func(t *testing.T) {
		got, err := store.FindMoveByRequestID(ctx, group.ID, john.ID, "req-1")
		if err != nil {
			t.Fatalf("FindMoveByRequestID failed: %v", err)
		}
		if got.ID != move.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, move.ID)
		}

		_, err = store.FindMoveByRequestID(ctx, group.ID, jane.ID, "req-1")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for another creator, got %v", err)
		}
	})

	t.Run("UpdateMove leaves deadline untouched", func(t *testing.T) {
		edited := *move
		edited.Name = "Pizza and Games"
		edited.Deadline = 0
		if err := store.UpdateMove(ctx, &edited); err != nil {
			t.Fatalf("UpdateMove failed: %v", err)
		}

		got, err := store.GetMove(ctx, move.ID)
		if err != nil {
			t.Fatalf("GetMove failed: %v", err)
		}
		if got.Name != "Pizza and Games" {
			t.Errorf("Name not updated: got %s", got.Name)
		}
		if got.Deadline != move.Deadline {
			t.Errorf("Deadline changed: got %d, want %d", got.Deadline, move.Deadline)
		}
	})

	t.Run("InsertVote is unique per move and user", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			inserted, err := store.InsertVote(ctx, &models.Vote{MoveID: move.ID, UserID: jane.ID})
			if err != nil {
				t.Fatalf("InsertVote failed: %v", err)
			}
			if inserted != (i == 0) {
				t.Errorf("Attempt %d: inserted = %v", i, inserted)
			}
		}

		tally, err := store.MoveTally(ctx, move.ID)
		if err != nil {
			t.Fatalf("MoveTally failed: %v", err)
		}
		if tally.VoteCount != 1 || len(tally.VoterIDs) != 1 || tally.VoterIDs[0] != jane.ID {
			t.Errorf("Unexpected tally: %+v", tally)
		}
	})

	t.Run("GroupTally includes moves without votes", func(t *testing.T) {
		empty := &models.Move{
			GroupID:   group.ID,
			Name:      "Hiking Trip",
			CreatedBy: jane.ID,
			CreatedAt: created.Add(time.Minute).Unix(),
			Deadline:  created.Add(25 * time.Hour).Unix(),
		}
		if err := store.CreateMove(ctx, empty); err != nil {
			t.Fatalf("CreateMove failed: %v", err)
		}

		tallies, err := store.GroupTally(ctx, group.ID)
		if err != nil {
			t.Fatalf("GroupTally failed: %v", err)
		}
		if len(tallies) != 2 {
			t.Fatalf("Expected 2 tallies, got %d", len(tallies))
		}
		if tallies[0].MoveID != move.ID || tallies[0].VoteCount != 1 {
			t.Errorf("Unexpected first tally: %+v", tallies[0])
		}
		if tallies[1].MoveID != empty.ID || tallies[1].VoteCount != 0 || tallies[1].VoterIDs == nil {
			t.Errorf("Unexpected second tally: %+v", tallies[1])
		}
	})

	t.Run("ListSweepCandidates skips open and approved moves", func(t *testing.T) {
		now := created.Add(2 * time.Hour)

		candidates, err := store.ListSweepCandidates(ctx, group.ID, now, 2, 10)
		if err != nil {
			t.Fatalf("ListSweepCandidates failed: %v", err)
		}
		if len(candidates) != 1 || candidates[0].ID != move.ID {
			t.Fatalf("Expected only Pizza Night, got %v", candidates)
		}

		// One vote meets a threshold of one.
		candidates, err = store.ListSweepCandidates(ctx, group.ID, now, 1, 10)
		if err != nil {
			t.Fatalf("ListSweepCandidates failed: %v", err)
		}
		if len(candidates) != 0 {
			t.Errorf("Expected no candidates, got %d", len(candidates))
		}

		groups, err := store.ListGroupsPastDeadline(ctx, now)
		if err != nil {
			t.Fatalf("ListGroupsPastDeadline failed: %v", err)
		}
		if len(groups) != 1 || groups[0] != group.ID {
			t.Errorf("Expected [%s], got %v", group.ID, groups)
		}
	})

	t.Run("DeleteMove cascades votes", func(t *testing.T) {
		if err := store.DeleteMove(ctx, move.ID); err != nil {
			t.Fatalf("DeleteMove failed: %v", err)
		}

		_, err := store.GetMove(ctx, move.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}

		tally, err := store.MoveTally(ctx, move.ID)
		if err != nil {
			t.Fatalf("MoveTally failed: %v", err)
		}
		if tally.VoteCount != 0 {
			t.Errorf("Expected votes to be deleted, got %d", tally.VoteCount)
		}

		err = store.DeleteMove(ctx, move.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestRunInTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	john := createUser(t, store, "john")
	group := createGroup(t, store, john)
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(tx storage.Tx) error {
		move := &models.Move{GroupID: group.ID, Name: "Bowling", CreatedBy: john.ID, Deadline: 1}
		if err := tx.CreateMove(ctx, move); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected fn error to be returned unchanged, got %v", err)
	}

	moves, err := store.ListMoves(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMoves failed: %v", err)
	}
	if len(moves) != 0 {
		t.Errorf("Expected rollback to discard the move, got %d moves", len(moves))
	}
}

func TestConcurrentVotesProduceOneRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner")
	voters := make([]*models.User, 5)
	for i := range voters {
		voters[i] = createUser(t, store, fmt.Sprintf("voter%d", i))
	}
	group := createGroup(t, store, owner, voters...)

	move := &models.Move{GroupID: group.ID, Name: "Karaoke", CreatedBy: owner.ID, Deadline: time.Now().Add(time.Hour).Unix()}
	if err := store.CreateMove(ctx, move); err != nil {
		t.Fatalf("CreateMove failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(voters)*4)
	for _, voter := range voters {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				err := store.RunInTx(ctx, func(tx storage.Tx) error {
					_, err := tx.InsertVote(ctx, &models.Vote{MoveID: move.ID, UserID: userID})
					return err
				})
				if err != nil {
					errs <- err
				}
			}(voter.ID)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent vote failed: %v", err)
	}

	tally, err := store.MoveTally(ctx, move.ID)
	if err != nil {
		t.Fatalf("MoveTally failed: %v", err)
	}
	if tally.VoteCount != len(voters) {
		t.Errorf("Expected %d distinct votes, got %d", len(voters), tally.VoteCount)
	}
}
