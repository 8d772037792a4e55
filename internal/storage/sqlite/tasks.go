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

const taskSelect = `SELECT t.id, t.board_id, t.title, t.description, t.status, t.priority,
        t.assignee_id, a.email, a.fullname,
        t.reviewer_id, r.email, r.fullname,
        t.due_date, t.created_by, t.created_at,
        (SELECT COUNT(*) FROM comments c WHERE c.task_id = t.id)
    FROM tasks t
    LEFT JOIN users a ON a.id = t.assignee_id
    LEFT JOIN users r ON r.id = t.reviewer_id`

// TaskFilter selects the tasks listed for a user.
type TaskFilter int

const (
	// TasksInvolving lists tasks the user created, is assigned to or reviews.
	TasksInvolving TaskFilter = iota
	// TasksAssigned lists tasks assigned to the user.
	TasksAssigned
	// TasksReviewing lists tasks the user reviews.
	TasksReviewing
)

// CreateTask inserts a task. Defaults for status and priority must already
// be applied.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(board_id, title, description, status, priority, assignee_id, reviewer_id, due_date, created_by, created_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.BoardID, strings.TrimSpace(t.Title), strings.TrimSpace(t.Description), t.Status, t.Priority,
		nullableID(t.AssigneeID), nullableID(t.ReviewerID), t.DueDate, t.CreatedBy, s.now())
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Task{}, apperr.NotFound("board or user not found")
		}
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// GetTask retrieves a task by id with its assignee, reviewer and comment count.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, apperr.NotFound("task not found")
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// TaskChanges lists the task fields to change. Nil fields stay untouched;
// the Set flags distinguish "clear the reference" from "leave it".
type TaskChanges struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *string
	AssigneeSet bool
	AssigneeID  *int64
	ReviewerSet bool
	ReviewerID  *int64
}

// UpdateTask applies a partial update.
func (s *Store) UpdateTask(ctx context.Context, id int64, ch TaskChanges) (models.Task, error) {
	var (
		sets []string
		args []any
	)
	if ch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*ch.Title))
	}
	if ch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(*ch.Description))
	}
	if ch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *ch.Status)
	}
	if ch.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *ch.Priority)
	}
	if ch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, *ch.DueDate)
	}
	if ch.AssigneeSet {
		sets = append(sets, "assignee_id = ?")
		args = append(args, nullableID(ch.AssigneeID))
	}
	if ch.ReviewerSet {
		sets = append(sets, "reviewer_id = ?")
		args = append(args, nullableID(ch.ReviewerID))
	}
	if len(sets) == 0 {
		return s.GetTask(ctx, id)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Task{}, apperr.NotFound("user not found")
		}
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := notFoundIfNone(res, "task"); err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task; its comments cascade.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return notFoundIfNone(res, "task")
}

// ListBoardTasks returns the tasks of a board in creation order.
func (s *Store) ListBoardTasks(ctx context.Context, boardID int64) ([]models.Task, error) {
	return s.queryTasks(ctx, taskSelect+` WHERE t.board_id = ? ORDER BY t.created_at, t.id`, boardID)
}

// ListUserTasks returns the tasks matching filter for userID on boards the
// user still belongs to.
func (s *Store) ListUserTasks(ctx context.Context, userID int64, filter TaskFilter) ([]models.Task, error) {
	const onRoster = ` AND EXISTS (SELECT 1 FROM board_members m WHERE m.board_id = t.board_id AND m.user_id = ?)`
	switch filter {
	case TasksAssigned:
		return s.queryTasks(ctx, taskSelect+` WHERE t.assignee_id = ?`+onRoster+` ORDER BY t.due_date, t.id`, userID, userID)
	case TasksReviewing:
		return s.queryTasks(ctx, taskSelect+` WHERE t.reviewer_id = ?`+onRoster+` ORDER BY t.due_date, t.id`, userID, userID)
	default:
		return s.queryTasks(ctx, taskSelect+` WHERE (t.created_by = ? OR t.assignee_id = ? OR t.reviewer_id = ?)`+onRoster+` ORDER BY t.created_at, t.id`,
			userID, userID, userID, userID)
	}
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(row scanner) (models.Task, error) {
	var (
		t                           models.Task
		assigneeID, reviewerID      sql.NullInt64
		assigneeEmail, assigneeName sql.NullString
		reviewerEmail, reviewerName sql.NullString
	)
	err := row.Scan(&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&assigneeID, &assigneeEmail, &assigneeName,
		&reviewerID, &reviewerEmail, &reviewerName,
		&t.DueDate, &t.CreatedBy, &t.CreatedAt, &t.CommentsCount)
	if err != nil {
		return models.Task{}, err
	}
	if assigneeID.Valid {
		id := assigneeID.Int64
		t.AssigneeID = &id
		t.Assignee = &models.UserCompact{ID: id, Email: assigneeEmail.String, Fullname: assigneeName.String}
	}
	if reviewerID.Valid {
		id := reviewerID.Int64
		t.ReviewerID = &id
		t.Reviewer = &models.UserCompact{ID: id, Email: reviewerEmail.String, Fullname: reviewerName.String}
	}
	return t, nil
}
