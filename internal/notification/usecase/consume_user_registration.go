package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
)

type ConsumeUserRegistrationInput struct {
	UserID    int64  `validate:"required,gt=0"`
	Email     string `validate:"required,email"`
	FirstName string `validate:"required,min=2,max=50"`
	OTPCode   string `validate:"required,numeric"`
}

func (s *Usecase) ConsumeUserRegistration(ctx context.Context, in ConsumeUserRegistrationInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistration")
	defer span.End()

	// a malformed event will never become valid, drop it instead of retrying
	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	data := s.baseTemplateData()
	data["first_name"] = in.FirstName
	data["otp"] = in.OTPCode

	return s.sendTemplatedEmail(ctx, in.Email,
		emailSubjects[entity.TemplateSignupOTP], entity.TemplateSignupOTP, data)
}
