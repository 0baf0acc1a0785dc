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

type RegisterVerifyInput struct {
	Email   string `validate:"required,email"`
	OTPCode string `validate:"required,numeric"`
}

func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) error {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.db.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verification for unknown email", "email", in.Email)
		return goerror.NewBusiness("invalid OTP", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	res, err := s.otpEngine.Verify(ctx, in.Email, in.OTPCode)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify otp", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}
	if res.Reason != otp.ReasonValid {
		slog.WarnContext(ctx, "otp rejected", "user_id", user.ID, "reason", res.Reason.String())
		return otpOutcomeError(res.Reason)
	}

	switch user.Status.Ensure() {
	case entity.UserStatusActive:
		// the code is consumed either way; activating twice is a no-op
		return nil

	case entity.UserStatusBanned:
		return goerror.NewBusiness("user account is banned", goerror.CodeForbidden)

	case entity.UserStatusUnverified:
		if err := s.db.UpdateUserStatus(ctx, user.ID, entity.UserStatusActive); err != nil {
			slog.ErrorContext(ctx, "failed to repo update user status", "user_id", user.ID, "error", err)
			return goerror.NewServer(err)
		}

		return nil

	default:
		slog.WarnContext(ctx, "unknown user status", "user_id", user.ID, "status", user.Status.String())
		return goerror.NewBusiness("account status is unrecognized", goerror.CodeForbidden)
	}
}
