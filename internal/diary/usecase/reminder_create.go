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

type ReminderCreateInput struct {
	NoteID    int64  `validate:"required"`
	StartDate string `validate:"required,datetime=2006-01-02"`
	Cadence   string `validate:"required,oneof=EVERY_30_MIN DAILY WEEKLY MONTHLY YEARLY"`
	Message   string `validate:"required,max=500"`
}

type ReminderCreateOutput struct {
	ID int64
}

func (s *Usecase) ReminderCreate(ctx context.Context, in ReminderCreateInput) (*ReminderCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "ReminderCreate")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return nil, err
	}

	in.Message = strings.TrimSpace(in.Message)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	startDate, err := time.Parse(time.DateOnly, in.StartDate)
	if err != nil {
		return nil, goerror.NewBusiness("start date must be YYYY-MM-DD", goerror.CodeInvalidFormat)
	}

	// creating a reminder on someone else's note must look identical to a
	// missing note
	if _, err := s.repoDB.GetNoteByID(ctx, in.NoteID, ownerID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("note not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get note", "note_id", in.NoteID, "error", err)
		return nil, goerror.NewServer(err)
	}

	reminder := entity.Reminder{
		ID:        s.uid.Generate(),
		NoteID:    in.NoteID,
		StartDate: startDate,
		Cadence:   entity.CadenceFromString(in.Cadence),
		Message:   in.Message,
	}

	if err := s.repoDB.CreateReminder(ctx, reminder); err != nil {
		slog.ErrorContext(ctx, "failed to repo create reminder", "note_id", in.NoteID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ReminderCreateOutput{ID: reminder.ID}, nil
}
