package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

type ReminderListInput struct {
	NoteID int64 `validate:"required"`
}

func (s *Usecase) ReminderList(ctx context.Context, in ReminderListInput) ([]entity.Reminder, error) {
	ctx, span := s.startSpan(ctx, "ReminderList")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.repoDB.GetNoteByID(ctx, in.NoteID, ownerID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("note not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get note", "note_id", in.NoteID, "error", err)
		return nil, goerror.NewServer(err)
	}

	reminders, err := s.repoDB.ListReminders(ctx, in.NoteID, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list reminders", "note_id", in.NoteID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return reminders, nil
}
