package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
	"github.com/shandysiswandi/diarium/internal/pkg/jwt"
)

type LogoutAllInput struct{}

// LogoutAll revokes every active session of the authenticated user.
func (s *Usecase) LogoutAll(ctx context.Context, _ LogoutAllInput) error {
	ctx, span := s.startSpan(ctx, "LogoutAll")
	defer span.End()

	claims := jwt.GetAuth(ctx)
	if claims == nil {
		return goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	if err := s.db.RevokeAllRefreshToken(ctx, claims.UserID); err != nil {
		slog.ErrorContext(ctx, "failed to revoke user sessions", "user_id", claims.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
