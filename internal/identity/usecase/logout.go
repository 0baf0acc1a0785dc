package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
	"github.com/shandysiswandi/diarium/internal/pkg/jwt"
)

type LogoutInput struct {
	RefreshToken string
}

// Logout revokes the presented refresh token. A token that does not look
// like one of ours is ignored so logout always succeeds for the client.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	claims := jwt.GetAuth(ctx)
	if claims == nil {
		return goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	// Generated tokens are 64 hex characters.
	if len(in.RefreshToken) != 64 {
		return nil
	}

	tokenHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.db.RevokeRefreshToken(ctx, string(tokenHash)); err != nil {
		slog.ErrorContext(ctx, "failed to revoke refresh token", "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
