package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/diarium/internal/identity/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

// withTx runs fn inside a transaction and commits when it succeeds. The
// deferred rollback is a no-op after commit.
func (s *DB) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}
	return nil
}

// NewRegistration writes the user, credential and first OTP atomically.
func (s *DB) NewRegistration(ctx context.Context, user entity.NewUser, code entity.OTP) (err error) {
	ctx, span := s.startSpan(ctx, "NewRegistration")
	defer func() { s.endSpan(span, err) }()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		const userQuery = `
			INSERT INTO identity_users (id, email, first_name, last_name, status)
			VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.Exec(ctx, userQuery,
			user.ID, user.Email, user.FirstName, user.LastName, user.Status); err != nil {
			return s.mapError(err)
		}

		const credQuery = `
			INSERT INTO identity_user_credentials (user_id, password)
			VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, credQuery, user.ID, user.Password); err != nil {
			return s.mapError(err)
		}

		const otpQuery = `
			INSERT INTO identity_otps (id, kind, recipient, code, length, expiry_minutes, is_used, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		if _, err := tx.Exec(ctx, otpQuery,
			code.ID, int16(code.Kind), code.Recipient, code.Code,
			code.Length, code.ExpiryMinutes, code.IsUsed, code.CreatedAt); err != nil {
			return s.mapError(err)
		}

		return nil
	})
}

// RotateRefreshToken revokes the presented token and inserts its successor
// in one transaction. ErrNotFound signals a lost rotation race.
func (s *DB) RotateRefreshToken(ctx context.Context, in entity.RotateRefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "RotateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		const revokeQuery = `
			UPDATE identity_refresh_tokens
			SET revoked = TRUE, replaced_by_token_id = $2
			WHERE id = $1 AND revoked = FALSE`
		tag, err := tx.Exec(ctx, revokeQuery, in.OldID, in.NewID)
		if err != nil {
			return s.mapError(err)
		}
		if tag.RowsAffected() == 0 {
			// someone already rotated this token
			return goerror.ErrNotFound
		}

		const insertQuery = `
			INSERT INTO identity_refresh_tokens (id, user_id, token, expires_at)
			VALUES ($1, $2, $3, $4)`
		if _, err := tx.Exec(ctx, insertQuery, in.NewID, in.UserID, in.NewToken, in.NewExpiresAt); err != nil {
			return s.mapError(err)
		}

		return nil
	})
}
