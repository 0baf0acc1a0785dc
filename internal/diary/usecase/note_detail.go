package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

type NoteDetailInput struct {
	ID int64 `validate:"required"`
}

func (s *Usecase) NoteDetail(ctx context.Context, in NoteDetailInput) (*entity.Note, error) {
	ctx, span := s.startSpan(ctx, "NoteDetail")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	note, err := s.repoDB.GetNoteByID(ctx, in.ID, ownerID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("note not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get note", "note_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return note, nil
}
