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

type NoteUpdateInput struct {
	ID         int64  `validate:"required"`
	Title      string `validate:"required,min=1,max=120"`
	Content    string `validate:"required"`
	CategoryID int64  `validate:"required"`
	Priority   string `validate:"required,oneof=LOW MEDIUM HIGH"`
	DueDate    string `validate:"required,datetime=2006-01-02"`
	IsFinished bool
}

func (s *Usecase) NoteUpdate(ctx context.Context, in NoteUpdateInput) error {
	ctx, span := s.startSpan(ctx, "NoteUpdate")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return err
	}

	in.Title = strings.TrimSpace(in.Title)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	dueDate, err := time.Parse(time.DateOnly, in.DueDate)
	if err != nil {
		return goerror.NewBusiness("due date must be YYYY-MM-DD", goerror.CodeInvalidFormat)
	}

	patch := entity.PatchNote{
		ID:         in.ID,
		OwnerID:    ownerID,
		Title:      in.Title,
		Content:    in.Content,
		CategoryID: in.CategoryID,
		Priority:   entity.PriorityFromString(in.Priority),
		DueDate:    dueDate,
		IsFinished: in.IsFinished,
	}

	if err := s.repoDB.UpdateNote(ctx, patch); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness("note not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo update note", "note_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
