package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

type RefreshTokenInput struct {
	RefreshToken string `validate:"required"`
}

type RefreshTokenOutput struct {
	AccessToken  string
	RefreshToken string
}

// RefreshToken exchanges a valid refresh token for a new access token and
// rotates the refresh token. Presenting an already-rotated token revokes
// every session of the owning user.
func (s *Usecase) RefreshToken(ctx context.Context, in RefreshTokenInput) (*RefreshTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "RefreshToken")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	presentedHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash presented refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	stored, err := s.db.GetUserRefreshToken(ctx, string(presentedHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "refresh token not found")
		return nil, goerror.NewBusiness("invalid or expired refresh token", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if stored.RefreshRevoked {
		// A revoked token that has a successor was already rotated, so
		// someone is replaying an old token. Kill every session.
		if stored.RefreshReplacedByTokenID != nil {
			if err := s.db.RevokeAllRefreshToken(ctx, stored.UserID); err != nil {
				slog.ErrorContext(ctx, "failed to revoke user sessions", "user_id", stored.UserID, "error", err)
			}

			slog.WarnContext(ctx, "refresh token reuse detected", "user_id", stored.UserID)
			return nil, goerror.NewBusiness("token reuse detected, please log in again", goerror.CodeForbidden)
		}

		slog.WarnContext(ctx, "refresh token is revoked", "refresh_token_id", stored.RefreshID)
		return nil, goerror.NewBusiness("invalid or expired refresh token", goerror.CodeUnauthorized)
	}

	if s.clock.Now().After(stored.RefreshExpiresAt) {
		slog.WarnContext(ctx, "refresh token is expired", "refresh_token_id", stored.RefreshID)
		return nil, goerror.NewBusiness("invalid or expired refresh token", goerror.CodeUnauthorized)
	}

	if err := s.ensureUserStatusAllowed(ctx, stored.UserID, stored.UserStatus); err != nil {
		return nil, err
	}

	nextToken := s.oid.Generate()
	nextTokenHash, err := s.hmac.Hash(nextToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash replacement refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	accessToken, err := s.jwt.Generate(stored.UserID, stored.UserEmail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", stored.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	err = s.db.RotateRefreshToken(ctx, entity.RotateRefreshToken{
		NewID:        s.uid.Generate(),
		OldID:        stored.RefreshID,
		UserID:       stored.UserID,
		NewToken:     string(nextTokenHash),
		NewExpiresAt: s.clock.Now().Add(s.cfg.GetDay("modules.identity.refresh_token_ttl_days")),
	})
	if errors.Is(err, goerror.ErrNotFound) {
		// A concurrent refresh won the rotation race.
		slog.WarnContext(ctx, "refresh token already rotated or revoked", "refresh_token_id", stored.RefreshID)
		return nil, goerror.NewBusiness("invalid or expired refresh token", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to rotate refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RefreshTokenOutput{
		AccessToken:  accessToken,
		RefreshToken: nextToken,
	}, nil
}
