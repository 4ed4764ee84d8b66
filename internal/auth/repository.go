// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

// errAlreadyRotated is returned by Rotate when the presented token was
// consumed by an earlier refresh.
var errAlreadyRotated = errors.New("refresh token already rotated")

// revokeScope selects which sessions Revoke touches.
type revokeScope struct {
	column string
	value  string
}

func sessionScope(id string) revokeScope     { return revokeScope{"id", id} }
func familyScope(familyID string) revokeScope { return revokeScope{"family_id", familyID} }
func userScope(userID string) revokeScope     { return revokeScope{"user_id", userID} }

// SessionStore persists refresh tokens. Each row is one login session.
type SessionStore interface {
	Insert(ctx context.Context, token *RefreshToken) error
	ByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	ByID(ctx context.Context, id string) (*RefreshToken, error)
	// Rotate consumes current and stores next in one transaction.
	Rotate(ctx context.Context, currentID string, next *RefreshToken) error
	Revoke(ctx context.Context, scope revokeScope) (int64, error)
	ListActive(ctx context.Context, userID string) ([]RefreshToken, error)
	Purge(ctx context.Context, expiredBefore time.Time) (int64, error)
}

const sessionColumns = `
	id, user_id, token_hash, family_id, expires_at, created_at,
	is_used, used_at, revoked_at, replaced_by_id, user_agent, ip_address`

const insertSession = `
	INSERT INTO refresh_tokens (
		id, user_id, token_hash, family_id, expires_at, user_agent, ip_address
	) VALUES (
		:id, :user_id, :token_hash, :family_id, :expires_at, :user_agent, :ip_address
	)
	RETURNING created_at`

type sessionStore struct {
	db *sqlx.DB
}

func NewSessionStore(db *sqlx.DB) SessionStore {
	return &sessionStore{db: db}
}

func insertWith(ctx context.Context, q sqlx.ExtContext, token *RefreshToken) error {
	query, args, err := sqlx.Named(insertSession, token)
	if err != nil {
		return fmt.Errorf("bind session insert: %w", err)
	}

	row := q.QueryRowxContext(ctx, q.Rebind(query), args...)
	if err := row.Scan(&token.CreatedAt); err != nil {
		return core.DBError("insert session", err)
	}
	return nil
}

func (s *sessionStore) Insert(ctx context.Context, token *RefreshToken) error {
	return insertWith(ctx, s.db, token)
}

func (s *sessionStore) ByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	var token RefreshToken
	err := s.db.GetContext(ctx, &token,
		`SELECT `+sessionColumns+` FROM refresh_tokens WHERE token_hash = $1`,
		tokenHash,
	)
	if err != nil {
		return nil, core.DBError("find session by token", err)
	}
	return &token, nil
}

func (s *sessionStore) ByID(ctx context.Context, id string) (*RefreshToken, error) {
	var token RefreshToken
	err := s.db.GetContext(ctx, &token,
		`SELECT `+sessionColumns+` FROM refresh_tokens WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, core.DBError("find session", err)
	}
	return &token, nil
}

func (s *sessionStore) Rotate(ctx context.Context, currentID string, next *RefreshToken) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := insertWith(ctx, tx, next); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE refresh_tokens
			SET is_used = true, used_at = NOW(), replaced_by_id = $2
			WHERE id = $1 AND is_used = false AND revoked_at IS NULL`,
			currentID, next.ID,
		)
		if err != nil {
			return core.DBError("consume session", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return core.DBError("consume session", err)
		}
		if n == 0 {
			return errAlreadyRotated
		}
		return nil
	})
}

func (s *sessionStore) Revoke(ctx context.Context, scope revokeScope) (int64, error) {
	// scope.column comes from the constructors above, never from input.
	res, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW()
		 WHERE `+scope.column+` = $1 AND revoked_at IS NULL`,
		scope.value,
	)
	if err != nil {
		return 0, core.DBError("revoke sessions by "+scope.column, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.DBError("revoke sessions by "+scope.column, err)
	}
	return n, nil
}

func (s *sessionStore) ListActive(ctx context.Context, userID string) ([]RefreshToken, error) {
	var tokens []RefreshToken
	err := s.db.SelectContext(ctx, &tokens, `
		SELECT `+sessionColumns+`
		FROM refresh_tokens
		WHERE user_id = $1
			AND revoked_at IS NULL
			AND is_used = false
			AND expires_at > NOW()
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, core.DBError("list sessions", err)
	}
	return tokens, nil
}

func (s *sessionStore) Purge(ctx context.Context, expiredBefore time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1`,
		expiredBefore,
	)
	if err != nil {
		return 0, core.DBError("purge sessions", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.DBError("purge sessions", err)
	}
	return n, nil
}
