package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

type ReminderDeleteInput struct {
	ID int64 `validate:"required"`
}

func (s *Usecase) ReminderDelete(ctx context.Context, in ReminderDeleteInput) error {
	ctx, span := s.startSpan(ctx, "ReminderDelete")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.DeleteReminder(ctx, in.ID, ownerID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness("reminder not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo delete reminder", "reminder_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
