package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustUser(t *testing.T, s *Store, email, name string) models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), email, name, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustTask(t *testing.T, s *Store, boardID, creator int64, title string) models.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), models.Task{
		BoardID:   boardID,
		Title:     title,
		Status:    models.StatusToDo,
		Priority:  models.PriorityMedium,
		DueDate:   "2026-01-31",
		CreatedBy: creator,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCreateUserDuplicateEmailConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, "Alice@Example.com", "Alice")

	_, err := s.CreateUser(ctx, "alice@example.com", "Other", "hash")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	u, err := s.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("lookup by email: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected normalised email, got %q", u.Email)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetUser(context.Background(), 42); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMissingUsers(t *testing.T) {
	s := newTestStore(t)
	a := mustUser(t, s, "a@example.com", "A")
	missing, err := s.MissingUsers(context.Background(), []int64{a.ID, 999})
	if err != nil {
		t.Fatalf("missing users: %v", err)
	}
	if len(missing) != 1 || missing[0] != 999 {
		t.Fatalf("unexpected missing ids: %v", missing)
	}
}

func TestCreateBoardIncludesCreatorFirst(t *testing.T) {
	s := newTestStore(t)
	a := mustUser(t, s, "a@example.com", "A")
	b := mustUser(t, s, "b@example.com", "B")

	board, err := s.CreateBoard(context.Background(), a.ID, "  Sprint1 ", []int64{b.ID, a.ID, b.ID})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	if board.Title != "Sprint1" {
		t.Fatalf("expected trimmed title, got %q", board.Title)
	}
	if len(board.MemberIDs) != 2 || board.MemberIDs[0] != a.ID || board.MemberIDs[1] != b.ID {
		t.Fatalf("unexpected roster: %v", board.MemberIDs)
	}
}

func TestAddMemberConflictAndRemoveRestores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com", "A")
	b := mustUser(t, s, "b@example.com", "B")
	board, err := s.CreateBoard(ctx, a.ID, "Sprint1", nil)
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	if err := s.AddMember(ctx, board.ID, b.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := s.AddMember(ctx, board.ID, b.ID); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on duplicate add, got %v", err)
	}
	if err := s.RemoveMember(ctx, board.ID, b.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	after, err := s.GetBoard(ctx, board.ID)
	if err != nil {
		t.Fatalf("get board: %v", err)
	}
	if len(after.MemberIDs) != 1 || after.MemberIDs[0] != a.ID {
		t.Fatalf("expected original roster, got %v", after.MemberIDs)
	}
}

func TestRemoveMemberNeverRemovesCreator(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com", "A")
	board, err := s.CreateBoard(ctx, a.ID, "Sprint1", nil)
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	if err := s.RemoveMember(ctx, board.ID, a.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected creator row to be untouched, got %v", err)
	}
}

func TestRemoveMemberClearsTaskReferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com", "A")
	b := mustUser(t, s, "b@example.com", "B")
	board, err := s.CreateBoard(ctx, a.ID, "Sprint1", []int64{b.ID})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	task := mustTask(t, s, board.ID, a.ID, "Fix bug")
	if _, err := s.UpdateTask(ctx, task.ID, TaskChanges{AssigneeSet: true, AssigneeID: &b.ID, ReviewerSet: true, ReviewerID: &b.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := s.RemoveMember(ctx, board.ID, b.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Assignee != nil || got.Reviewer != nil {
		t.Fatalf("expected cleared references, got %+v / %+v", got.Assignee, got.Reviewer)
	}
}

func TestUpdateBoardReplacesMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com", "A")
	b := mustUser(t, s, "b@example.com", "B")
	c := mustUser(t, s, "c@example.com", "C")
	board, err := s.CreateBoard(ctx, a.ID, "Sprint1", []int64{b.ID})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	title := "Sprint2"
	updated, err := s.UpdateBoard(ctx, board.ID, BoardUpdate{Title: &title, MemberIDs: []int64{c.ID}, ReplaceMembers: true})
	if err != nil {
		t.Fatalf("update board: %v", err)
	}
	if updated.Title != "Sprint2" {
		t.Fatalf("unexpected title %q", updated.Title)
	}
	if len(updated.MemberIDs) != 2 || updated.MemberIDs[0] != a.ID || updated.MemberIDs[1] != c.ID {
		t.Fatalf("unexpected roster %v", updated.MemberIDs)
	}
}

func TestDeleteBoardCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com", "A")
	board, err := s.CreateBoard(ctx, a.ID, "Sprint1", nil)
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	task := mustTask(t, s, board.ID, a.ID, "Fix bug")
	comment, err := s.CreateComment(ctx, task.ID, a.ID, "investigating")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := s.DeleteBoard(ctx, board.ID); err != nil {
		t.Fatalf("delete board: %v", err)
	}
	if _, err := s.GetTask(ctx, task.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected task gone, got %v", err)
	}
	if _, err := s.GetComment(ctx, comment.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected comment gone, got %v", err)
	}
	if err := s.DeleteBoard(ctx, board.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestBoardSummaryCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com", "A")
	b := mustUser(t, s, "b@example.com", "B")
	board, err := s.CreateBoard(ctx, a.ID, "Sprint1", []int64{b.ID})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	mustTask(t, s, board.ID, a.ID, "one")
	high := models.PriorityHigh
	done := models.StatusDone
	second := mustTask(t, s, board.ID, a.ID, "two")
	if _, err := s.UpdateTask(ctx, second.ID, TaskChanges{Priority: &high, Status: &done}); err != nil {
		t.Fatalf("update task: %v", err)
	}

	summaries, err := s.ListBoardSummaries(ctx, b.ID)
	if err != nil {
		t.Fatalf("list boards: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one board, got %d", len(summaries))
	}
	got := summaries[0]
	if got.MemberCount != 2 || got.TicketCount != 2 || got.TasksToDoCount != 1 || got.TasksHighPrioCount != 1 || got.OwnerID != a.ID {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestCommentsOrderedByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com", "Alice Smith")
	board, err := s.CreateBoard(ctx, a.ID, "Sprint1", nil)
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	task := mustTask(t, s, board.ID, a.ID, "Fix bug")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	s.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
	for _, body := range []string{"first", "second", "third"} {
		if _, err := s.CreateComment(ctx, task.ID, a.ID, body); err != nil {
			t.Fatalf("create comment: %v", err)
		}
	}

	comments, err := s.ListComments(ctx, task.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 3 || comments[0].Content != "first" || comments[2].Content != "third" {
		t.Fatalf("unexpected order: %+v", comments)
	}
	if comments[0].Author != "Alice Smith" {
		t.Fatalf("unexpected author %q", comments[0].Author)
	}
	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.CommentsCount != 3 {
		t.Fatalf("expected 3 comments, got %d", got.CommentsCount)
	}
}

func TestListUserTasksFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com", "A")
	b := mustUser(t, s, "b@example.com", "B")
	board, err := s.CreateBoard(ctx, a.ID, "Sprint1", []int64{b.ID})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	assigned := mustTask(t, s, board.ID, a.ID, "assigned")
	reviewing := mustTask(t, s, board.ID, a.ID, "reviewing")
	if _, err := s.UpdateTask(ctx, assigned.ID, TaskChanges{AssigneeSet: true, AssigneeID: &b.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := s.UpdateTask(ctx, reviewing.ID, TaskChanges{ReviewerSet: true, ReviewerID: &b.ID}); err != nil {
		t.Fatalf("review: %v", err)
	}

	cases := []struct {
		filter TaskFilter
		want   []int64
	}{
		{TasksAssigned, []int64{assigned.ID}},
		{TasksReviewing, []int64{reviewing.ID}},
		{TasksInvolving, []int64{assigned.ID, reviewing.ID}},
	}
	for _, tc := range cases {
		tasks, err := s.ListUserTasks(ctx, b.ID, tc.filter)
		if err != nil {
			t.Fatalf("list tasks: %v", err)
		}
		if len(tasks) != len(tc.want) {
			t.Fatalf("filter %d: expected %d tasks, got %d", tc.filter, len(tc.want), len(tasks))
		}
		for i, id := range tc.want {
			if tasks[i].ID != id {
				t.Fatalf("filter %d: expected task %d at %d, got %d", tc.filter, id, i, tasks[i].ID)
			}
		}
	}
}

func TestRevokedTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := s.RevokeToken(ctx, "jti-old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("revoke expired: %v", err)
	}
	revoked, err := s.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected jti-1 revoked, got %v %v", revoked, err)
	}
	revoked, err = s.IsRevoked(ctx, "jti-old")
	if err != nil || revoked {
		t.Fatalf("expected expired entry ignored, got %v %v", revoked, err)
	}
}

func TestUpdateTaskMissing(t *testing.T) {
	s := newTestStore(t)
	title := "x"
	_, err := s.UpdateTask(context.Background(), 404, TaskChanges{Title: &title})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
