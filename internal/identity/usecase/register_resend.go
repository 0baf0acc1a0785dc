package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
	"github.com/shandysiswandi/diarium/internal/identity/otp"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
	"github.com/shandysiswandi/diarium/internal/pkg/idempotency"
)

type RegisterResendInput struct {
	Email string `validate:"required,email"`
}

func (s *Usecase) RegisterResend(ctx context.Context, in RegisterResendInput) error {
	ctx, span := s.startSpan(ctx, "RegisterResend")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.db.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "email not registered for resend", "email", in.Email)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if user.Status != entity.UserStatusUnverified {
		slog.WarnContext(ctx, "failed to process resend email", "user_id", user.ID, "status", user.Status.String())
		return nil
	}

	// serialize resends per recipient: the cool-down check below is
	// check-then-act, two concurrent requests must not both pass it
	var businessErr error
	err = s.idemp.Exec(ctx, "identity:otp:resend:"+in.Email, func(ctx context.Context) error {
		res, rerr := s.otpEngine.Resend(ctx, entity.OTPKindRegistration, in.Email,
			otp.WithExpiry(s.cfg.GetMinute("modules.identity.otp.expiry_minutes")))
		if rerr != nil {
			return rerr
		}

		if res.Reason == otp.ReasonCoolDownActive {
			retryAfter := int(res.RetryAfter.Round(time.Second).Seconds())
			businessErr = goerror.NewBusiness(
				fmt.Sprintf("please wait %d seconds before requesting a new code", retryAfter),
				goerror.CodeTooManyRequest,
			)
			return nil
		}

		if perr := s.mq.PublishUserRegistration(ctx, UserRegistrationEvent{
			UserID:    user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			OTPCode:   res.OTP.Code,
		}); perr != nil {
			slog.ErrorContext(ctx, "failed to publish user registration resend", "user_id", user.ID, "error", perr)
		}

		return nil
	}, idempotency.WithLockDuration(10*time.Second), idempotency.WithStateTTL(time.Second))
	if errors.Is(err, idempotency.ErrAlreadyInProgress) || errors.Is(err, idempotency.ErrAlreadyCompleted) {
		return goerror.NewBusiness("a resend is already being processed, try again shortly", goerror.CodeTooManyRequest)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to resend registration otp", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return businessErr
}
