package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

type ReminderUpdateInput struct {
	ID        int64  `validate:"required"`
	StartDate string `validate:"required,datetime=2006-01-02"`
	Cadence   string `validate:"required,oneof=EVERY_30_MIN DAILY WEEKLY MONTHLY YEARLY"`
	Message   string `validate:"required,max=500"`
}

func (s *Usecase) ReminderUpdate(ctx context.Context, in ReminderUpdateInput) error {
	ctx, span := s.startSpan(ctx, "ReminderUpdate")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return err
	}

	in.Message = strings.TrimSpace(in.Message)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	startDate, err := time.Parse(time.DateOnly, in.StartDate)
	if err != nil {
		return goerror.NewBusiness("start date must be YYYY-MM-DD", goerror.CodeInvalidFormat)
	}

	reminder := entity.Reminder{
		ID:        in.ID,
		StartDate: startDate,
		Cadence:   entity.CadenceFromString(in.Cadence),
		Message:   in.Message,
	}

	if err := s.repoDB.UpdateReminder(ctx, reminder, ownerID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness("reminder not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo update reminder", "reminder_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
