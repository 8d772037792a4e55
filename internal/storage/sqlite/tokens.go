package sqlite

import (
	"context"
	"fmt"
	"time"
)

// RevokeToken records a token id as unusable until expiresAt. Expired
// entries are purged on the way.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, s.now()); err != nil {
		return fmt.Errorf("purge revoked tokens: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO revoked_tokens(jti, expires_at) VALUES(?, ?)`, jti, expiresAt.UTC()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id was revoked and has not expired.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = ? AND expires_at >= ?)`, jti, s.now()).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}
