package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
)

// CreateBoard persists a board, its creator row and the initial members in
// one transaction.
func (s *Store) CreateBoard(ctx context.Context, ownerID int64, title string, memberIDs []int64) (models.Board, error) {
	var boardID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now()
		res, err := tx.ExecContext(ctx, `INSERT INTO boards(title, owner_id, created_at) VALUES(?, ?, ?)`, strings.TrimSpace(title), ownerID, now)
		if err != nil {
			return fmt.Errorf("insert board: %w", err)
		}
		boardID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("board id: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO board_members(board_id, user_id, role, created_at) VALUES(?, ?, ?, ?)`,
			boardID, ownerID, models.RoleCreator, now); err != nil {
			return fmt.Errorf("insert creator: %w", err)
		}
		for _, id := range memberIDs {
			if id == ownerID {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO board_members(board_id, user_id, role, created_at) VALUES(?, ?, ?, ?)`,
				boardID, id, models.RoleMember, now); err != nil {
				return fmt.Errorf("insert member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return models.Board{}, err
	}
	return s.GetBoard(ctx, boardID)
}

// GetBoard fetches a board with its roster. The creator is listed first.
func (s *Store) GetBoard(ctx context.Context, id int64) (models.Board, error) {
	return getBoard(ctx, s.db, id)
}

func getBoard(ctx context.Context, q querier, id int64) (models.Board, error) {
	var b models.Board
	err := q.QueryRowContext(ctx, `SELECT id, title, owner_id, created_at FROM boards WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.OwnerID, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Board{}, apperr.NotFound("board not found")
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("get board: %w", err)
	}

	rows, err := q.QueryContext(ctx, `SELECT user_id FROM board_members WHERE board_id = ?
        ORDER BY CASE role WHEN 'creator' THEN 0 ELSE 1 END, created_at, user_id`, id)
	if err != nil {
		return models.Board{}, fmt.Errorf("list board members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return models.Board{}, fmt.Errorf("scan member: %w", err)
		}
		b.MemberIDs = append(b.MemberIDs, userID)
	}
	return b, rows.Err()
}

const summarySelect = `SELECT b.id, b.title, b.owner_id,
        (SELECT COUNT(*) FROM board_members m WHERE m.board_id = b.id),
        (SELECT COUNT(*) FROM tasks t WHERE t.board_id = b.id),
        (SELECT COUNT(*) FROM tasks t WHERE t.board_id = b.id AND t.status = 'to-do'),
        (SELECT COUNT(*) FROM tasks t WHERE t.board_id = b.id AND t.priority = 'high')
    FROM boards b`

// ListBoardSummaries returns the boards the user created or belongs to,
// with task counters.
func (s *Store) ListBoardSummaries(ctx context.Context, userID int64) ([]models.BoardSummary, error) {
	rows, err := s.db.QueryContext(ctx, summarySelect+`
        WHERE b.owner_id = ? OR EXISTS (SELECT 1 FROM board_members m WHERE m.board_id = b.id AND m.user_id = ?)
        ORDER BY b.created_at, b.id`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	boards := []models.BoardSummary{}
	for rows.Next() {
		b, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// GetBoardSummary returns the list view of one board.
func (s *Store) GetBoardSummary(ctx context.Context, id int64) (models.BoardSummary, error) {
	b, err := scanSummary(s.db.QueryRowContext(ctx, summarySelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.BoardSummary{}, apperr.NotFound("board not found")
	}
	if err != nil {
		return models.BoardSummary{}, fmt.Errorf("get board summary: %w", err)
	}
	return b, nil
}

func scanSummary(row scanner) (models.BoardSummary, error) {
	var b models.BoardSummary
	err := row.Scan(&b.ID, &b.Title, &b.OwnerID, &b.MemberCount, &b.TicketCount, &b.TasksToDoCount, &b.TasksHighPrioCount)
	return b, err
}

// BoardUpdate lists the board fields to change. Nil fields stay untouched.
type BoardUpdate struct {
	Title     *string
	MemberIDs []int64
	// ReplaceMembers makes MemberIDs the new non-creator roster.
	ReplaceMembers bool
}

// UpdateBoard applies changes in one transaction. Members dropped from the
// roster lose their task assignments on this board.
func (s *Store) UpdateBoard(ctx context.Context, id int64, upd BoardUpdate) (models.Board, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getBoard(ctx, tx, id)
		if err != nil {
			return err
		}
		if upd.Title != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE boards SET title = ? WHERE id = ?`, strings.TrimSpace(*upd.Title), id); err != nil {
				return fmt.Errorf("update board: %w", err)
			}
		}
		if !upd.ReplaceMembers {
			return nil
		}

		wanted := make(map[int64]struct{}, len(upd.MemberIDs))
		for _, uid := range upd.MemberIDs {
			wanted[uid] = struct{}{}
		}
		for _, uid := range current.MemberIDs {
			if uid == current.OwnerID {
				continue
			}
			if _, keep := wanted[uid]; keep {
				continue
			}
			if err := removeMember(ctx, tx, id, uid); err != nil {
				return err
			}
		}
		now := s.now()
		for _, uid := range upd.MemberIDs {
			if uid == current.OwnerID {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO board_members(board_id, user_id, role, created_at) VALUES(?, ?, ?, ?)`,
				id, uid, models.RoleMember, now); err != nil {
				return fmt.Errorf("insert member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return models.Board{}, err
	}
	return s.GetBoard(ctx, id)
}

// DeleteBoard removes a board. Tasks, comments and the roster cascade.
func (s *Store) DeleteBoard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return notFoundIfNone(res, "board")
}

// AddMember puts a user on the board roster.
func (s *Store) AddMember(ctx context.Context, boardID, userID int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO board_members(board_id, user_id, role, created_at) VALUES(?, ?, ?, ?)`,
		boardID, userID, models.RoleMember, s.now())
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict(apperr.CodeAlreadyMember, "user is already a board member").WithField("user_id")
		}
		if isForeignKeyViolation(err) {
			return apperr.NotFound("board or user not found")
		}
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember takes a non-creator user off the roster and clears their
// assignee and reviewer references on the board's tasks.
func (s *Store) RemoveMember(ctx context.Context, boardID, userID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return removeMember(ctx, tx, boardID, userID)
	})
}

func removeMember(ctx context.Context, q querier, boardID, userID int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM board_members WHERE board_id = ? AND user_id = ? AND role = ?`, boardID, userID, models.RoleMember)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if err := notFoundIfNone(res, "board member"); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `UPDATE tasks SET assignee_id = NULL WHERE board_id = ? AND assignee_id = ?`, boardID, userID); err != nil {
		return fmt.Errorf("clear assignee: %w", err)
	}
	if _, err := q.ExecContext(ctx, `UPDATE tasks SET reviewer_id = NULL WHERE board_id = ? AND reviewer_id = ?`, boardID, userID); err != nil {
		return fmt.Errorf("clear reviewer: %w", err)
	}
	return nil
}

// BoardMembers lists the roster as compact users, creator first.
func (s *Store) BoardMembers(ctx context.Context, boardID int64) ([]models.UserCompact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT u.id, u.email, u.fullname FROM board_members m
        JOIN users u ON u.id = m.user_id
        WHERE m.board_id = ?
        ORDER BY CASE m.role WHEN 'creator' THEN 0 ELSE 1 END, m.created_at, u.id`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []models.UserCompact{}
	for rows.Next() {
		var u models.UserCompact
		if err := rows.Scan(&u.ID, &u.Email, &u.Fullname); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}
