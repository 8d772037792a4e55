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

const userColumns = `id, email, fullname, password_hash, created_at`

// CreateUser stores a new account. The email must not be registered yet.
func (s *Store) CreateUser(ctx context.Context, email, fullname, passwordHash string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := s.db.ExecContext(ctx, `INSERT INTO users(email, fullname, password_hash, created_at) VALUES(?, ?, ?, ?)`,
		email, strings.TrimSpace(fullname), passwordHash, s.now())
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperr.Conflict(apperr.CodeEmailTaken, "Email is already in use.").WithField("email")
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// MissingUsers returns the ids from the input that have no account.
func (s *Store) MissingUsers(ctx context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		var exists bool
		err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check user: %w", err)
		}
		if !exists {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Fullname, &u.PasswordHash, &u.CreatedAt)
	return u, err
}
