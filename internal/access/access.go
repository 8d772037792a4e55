// Package access holds the permission predicates evaluated before every
// board, task and comment mutation. The predicates only inspect the values
// they are given and never touch storage.
package access

import "taskboard/internal/models"

// CommentDeletePolicy selects who besides the author may delete a comment.
type CommentDeletePolicy int

const (
	// AuthorOnly lets only the comment author delete it.
	AuthorOnly CommentDeletePolicy = iota
	// AuthorOrBoardCreator additionally lets the board creator delete it.
	AuthorOrBoardCreator
)

// IsBoardCreator reports whether user created board.
func IsBoardCreator(user models.User, board models.Board) bool {
	return user.ID != 0 && board.OwnerID == user.ID
}

// IsBoardMember reports whether user is on the board roster. The creator
// always counts as a member.
func IsBoardMember(user models.User, board models.Board) bool {
	if IsBoardCreator(user, board) {
		return true
	}
	return containsID(board.MemberIDs, user.ID)
}

// IsMemberID is IsBoardMember for a bare user id, used when validating
// assignee and reviewer references.
func IsMemberID(userID int64, board models.Board) bool {
	return IsBoardMember(models.User{ID: userID}, board)
}

// CanAccessTask reports whether user may read or write task. board must be
// the task's board.
func CanAccessTask(user models.User, task models.Task, board models.Board) bool {
	return task.BoardID == board.ID && IsBoardMember(user, board)
}

// CanDeleteTask allows the board creator and the user who created the task.
func CanDeleteTask(user models.User, task models.Task, board models.Board) bool {
	if task.BoardID != board.ID {
		return false
	}
	return IsBoardCreator(user, board) || (user.ID != 0 && task.CreatedBy == user.ID)
}

// CanDeleteComment applies policy to comment deletion.
func CanDeleteComment(user models.User, comment models.Comment, board models.Board, policy CommentDeletePolicy) bool {
	if user.ID != 0 && comment.AuthorID == user.ID {
		return true
	}
	return policy == AuthorOrBoardCreator && IsBoardCreator(user, board)
}

func containsID(ids []int64, id int64) bool {
	if id == 0 {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
