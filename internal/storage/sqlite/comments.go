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

const commentSelect = `SELECT c.id, c.task_id, c.author_id, u.fullname, u.email, c.content, c.created_at
    FROM comments c
    JOIN users u ON u.id = c.author_id`

// CreateComment appends a comment to a task.
func (s *Store) CreateComment(ctx context.Context, taskID, authorID int64, content string) (models.Comment, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO comments(task_id, author_id, content, created_at) VALUES(?, ?, ?, ?)`,
		taskID, authorID, strings.TrimSpace(content), s.now())
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Comment{}, apperr.NotFound("task not found")
		}
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Comment{}, fmt.Errorf("comment id: %w", err)
	}
	return s.GetComment(ctx, id)
}

// GetComment fetches a comment by id.
func (s *Store) GetComment(ctx context.Context, id int64) (models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Comment{}, apperr.NotFound("comment not found")
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// ListComments returns a task's comments oldest first.
func (s *Store) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, commentSelect+` WHERE c.task_id = ? ORDER BY c.created_at, c.id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment by id.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return notFoundIfNone(res, "comment")
}

func scanComment(row scanner) (models.Comment, error) {
	var (
		c      models.Comment
		author models.User
	)
	if err := row.Scan(&c.ID, &c.TaskID, &c.AuthorID, &author.Fullname, &author.Email, &c.Content, &c.CreatedAt); err != nil {
		return models.Comment{}, err
	}
	c.Author = author.DisplayName()
	return c, nil
}
