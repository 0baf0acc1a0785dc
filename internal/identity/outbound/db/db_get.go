package db

import (
	"context"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
)

func (s *DB) GetUserLoginInfo(ctx context.Context, email string) (_ *entity.UserLoginInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserLoginInfo")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT u.id, u.email, u.status, c.password
		FROM identity_users u
		JOIN identity_user_credentials c ON c.user_id = u.id
		WHERE u.email = $1 AND u.deleted_at IS NULL`

	var out entity.UserLoginInfo
	err = s.conn.QueryRow(ctx, query, email).Scan(&out.ID, &out.Email, &out.Status, &out.Password)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &out, nil
}

func (s *DB) GetUserCredentialInfo(ctx context.Context, id int64) (_ *entity.UserCredentialInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserCredentialInfo")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT u.id, u.email, u.status, c.password
		FROM identity_users u
		JOIN identity_user_credentials c ON c.user_id = u.id
		WHERE u.id = $1 AND u.deleted_at IS NULL`

	var out entity.UserCredentialInfo
	err = s.conn.QueryRow(ctx, query, id).Scan(&out.ID, &out.Email, &out.Status, &out.Password)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &out, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, email, first_name, last_name, status
		FROM identity_users
		WHERE email = $1 AND deleted_at IS NULL`

	var out entity.User
	err = s.conn.QueryRow(ctx, query, email).
		Scan(&out.ID, &out.Email, &out.FirstName, &out.LastName, &out.Status)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &out, nil
}

// LatestUnusedOTP orders by creation time with the record ID as tie-break, so
// two codes issued in the same instant still resolve to the later one.
func (s *DB) LatestUnusedOTP(ctx context.Context, recipient string) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "LatestUnusedOTP")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, kind, recipient, code, length, expiry_minutes, is_used, created_at
		FROM identity_otps
		WHERE recipient = $1 AND is_used = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	return s.scanOTP(ctx, query, recipient)
}

func (s *DB) LatestOTP(ctx context.Context, recipient string) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "LatestOTP")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, kind, recipient, code, length, expiry_minutes, is_used, created_at
		FROM identity_otps
		WHERE recipient = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	return s.scanOTP(ctx, query, recipient)
}

func (s *DB) scanOTP(ctx context.Context, query, recipient string) (*entity.OTP, error) {
	var out entity.OTP
	var kind int16
	err := s.conn.QueryRow(ctx, query, recipient).
		Scan(&out.ID, &kind, &out.Recipient, &out.Code, &out.Length, &out.ExpiryMinutes, &out.IsUsed, &out.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}
	out.Kind = entity.OTPKind(kind)

	return &out, nil
}

func (s *DB) GetUserRefreshToken(ctx context.Context, token string) (_ *entity.UserRefreshToken, err error) {
	ctx, span := s.startSpan(ctx, "GetUserRefreshToken")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT u.id, u.email, u.status, t.id, t.token, t.revoked, t.replaced_by_token_id, t.expires_at
		FROM identity_refresh_tokens t
		JOIN identity_users u ON u.id = t.user_id
		WHERE t.token = $1 AND u.deleted_at IS NULL`

	var out entity.UserRefreshToken
	err = s.conn.QueryRow(ctx, query, token).Scan(
		&out.UserID, &out.UserEmail, &out.UserStatus,
		&out.RefreshID, &out.RefreshToken, &out.RefreshRevoked,
		&out.RefreshReplacedByTokenID, &out.RefreshExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &out, nil
}
