package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
)

type ConsumeUserForgotPasswordInput struct {
	UserID    int64  `validate:"required,gt=0"`
	Email     string `validate:"required,email"`
	FirstName string `validate:"required,min=2,max=50"`
	OTPCode   string `validate:"required,numeric"`
}

func (s *Usecase) ConsumeUserForgotPassword(ctx context.Context, in ConsumeUserForgotPasswordInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserForgotPassword")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	data := s.baseTemplateData()
	data["first_name"] = in.FirstName
	data["otp"] = in.OTPCode

	return s.sendTemplatedEmail(ctx, in.Email,
		emailSubjects[entity.TemplatePasswordResetOTP], entity.TemplatePasswordResetOTP, data)
}
