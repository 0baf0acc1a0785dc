package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
	"github.com/shandysiswandi/diarium/internal/identity/otp"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

type PasswordForgotInput struct {
	Email string `validate:"required,email"`
}

func (s *Usecase) PasswordForgot(ctx context.Context, in PasswordForgotInput) error {
	ctx, span := s.startSpan(ctx, "PasswordForgot")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.db.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "password reset requested for unavailable user", "email", in.Email)
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.ensureUserStatusAllowed(ctx, user.ID, user.Status); err != nil {
		slog.WarnContext(ctx, "password reset requested for ineligible user", "user_id", user.ID, "status", user.Status.String(), "error", err)
		return nil
	}

	code, err := s.otpEngine.Issue(ctx, entity.OTPKindPasswordReset, in.Email,
		otp.WithExpiry(s.cfg.GetMinute("modules.identity.otp.expiry_minutes")))
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue password reset otp", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.mq.PublishUserForgotPassword(ctx, UserForgotPasswordEvent{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		OTPCode:   code.Code,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user forgot password", "user_id", user.ID, "error", err)
	}

	return nil
}
