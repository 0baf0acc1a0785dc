package db

import (
	"context"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
)

func (s *DB) CreateOTP(ctx context.Context, in entity.OTP) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTP")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO identity_otps (id, kind, recipient, code, length, expiry_minutes, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.conn.Exec(ctx, query,
		in.ID, int16(in.Kind), in.Recipient, in.Code, in.Length, in.ExpiryMinutes, in.IsUsed, in.CreatedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) CreateRefreshToken(ctx context.Context, in entity.RefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO identity_refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1, $2, $3, $4)`

	_, err = s.conn.Exec(ctx, query, in.ID, in.UserID, in.Token, in.ExpiresAt)
	err = s.mapError(err)
	return err
}
