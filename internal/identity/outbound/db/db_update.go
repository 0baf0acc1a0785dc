package db

import (
	"context"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

// MarkOTPUsed consumes an OTP record. The WHERE clause only matches a record
// that is still unused, so of N concurrent callers exactly one sees true.
func (s *DB) MarkOTPUsed(ctx context.Context, id int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkOTPUsed")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE identity_otps
		SET is_used = TRUE
		WHERE id = $1 AND is_used = FALSE`

	tag, err := s.conn.Exec(ctx, query, id)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *DB) DeleteOTP(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteOTP")
	defer func() { s.endSpan(span, err) }()

	const query = `DELETE FROM identity_otps WHERE id = $1`

	_, err = s.conn.Exec(ctx, query, id)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateUserStatus(ctx context.Context, id int64, status entity.UserStatus) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserStatus")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE identity_users
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := s.conn.Exec(ctx, query, id, status)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) UpdateUserPassword(ctx context.Context, userID int64, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserPassword")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE identity_user_credentials
		SET password = $2, updated_at = NOW()
		WHERE user_id = $1`

	tag, err := s.conn.Exec(ctx, query, userID, hash)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) RevokeRefreshToken(ctx context.Context, token string) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeRefreshToken")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE identity_refresh_tokens
		SET revoked = TRUE
		WHERE token = $1 AND revoked = FALSE`

	_, err = s.conn.Exec(ctx, query, token)
	err = s.mapError(err)
	return err
}

func (s *DB) RevokeAllRefreshToken(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeAllRefreshToken")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE identity_refresh_tokens
		SET revoked = TRUE
		WHERE user_id = $1 AND revoked = FALSE`

	_, err = s.conn.Exec(ctx, query, userID)
	err = s.mapError(err)
	return err
}
