package access

import (
	"testing"

	"taskboard/internal/models"
)

var (
	alice = models.User{ID: 1, Fullname: "Alice"}
	bob   = models.User{ID: 2, Fullname: "Bob"}
	carol = models.User{ID: 3, Fullname: "Carol"}
)

func sprint() models.Board {
	return models.Board{ID: 10, Title: "Sprint1", OwnerID: alice.ID, MemberIDs: []int64{alice.ID, bob.ID}}
}

func TestBoardMembership(t *testing.T) {
	b := sprint()
	if !IsBoardCreator(alice, b) || IsBoardCreator(bob, b) {
		t.Fatal("only alice should be creator")
	}
	if !IsBoardMember(alice, b) || !IsBoardMember(bob, b) {
		t.Fatal("alice and bob should be members")
	}
	if IsBoardMember(carol, b) {
		t.Fatal("carol should not be a member")
	}
}

func TestCreatorIsMemberWithoutRosterRow(t *testing.T) {
	b := models.Board{ID: 1, OwnerID: alice.ID}
	if !IsBoardMember(alice, b) {
		t.Fatal("creator must count as member")
	}
}

func TestZeroUserNeverMatches(t *testing.T) {
	b := models.Board{ID: 1, OwnerID: 0, MemberIDs: []int64{0}}
	if IsBoardMember(models.User{}, b) {
		t.Fatal("anonymous user must not be a member")
	}
}

func TestCanAccessTask(t *testing.T) {
	b := sprint()
	task := models.Task{ID: 5, BoardID: b.ID, CreatedBy: bob.ID}
	if !CanAccessTask(bob, task, b) {
		t.Fatal("bob should access task")
	}
	if CanAccessTask(carol, task, b) {
		t.Fatal("carol should not access task")
	}
	other := models.Task{ID: 6, BoardID: 99}
	if CanAccessTask(alice, other, b) {
		t.Fatal("task from another board must not pass")
	}
}

func TestCanDeleteTask(t *testing.T) {
	b := sprint()
	b.MemberIDs = append(b.MemberIDs, carol.ID)
	task := models.Task{ID: 5, BoardID: b.ID, CreatedBy: bob.ID}
	if !CanDeleteTask(alice, task, b) {
		t.Fatal("board creator may delete")
	}
	if !CanDeleteTask(bob, task, b) {
		t.Fatal("task creator may delete")
	}
	if CanDeleteTask(carol, task, b) {
		t.Fatal("plain member may not delete")
	}
}

func TestCanDeleteComment(t *testing.T) {
	b := sprint()
	c := models.Comment{ID: 1, AuthorID: bob.ID}
	if !CanDeleteComment(bob, c, b, AuthorOnly) {
		t.Fatal("author may delete")
	}
	if CanDeleteComment(alice, c, b, AuthorOnly) {
		t.Fatal("creator may not delete under author-only policy")
	}
	if !CanDeleteComment(alice, c, b, AuthorOrBoardCreator) {
		t.Fatal("creator may delete under relaxed policy")
	}
	if CanDeleteComment(carol, c, b, AuthorOrBoardCreator) {
		t.Fatal("outsider may never delete")
	}
}
