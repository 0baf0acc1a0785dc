package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

type NoteDeleteInput struct {
	ID int64 `validate:"required"`
}

// NoteDelete removes the note together with every reminder attached to it.
func (s *Usecase) NoteDelete(ctx context.Context, in NoteDeleteInput) error {
	ctx, span := s.startSpan(ctx, "NoteDelete")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.DeleteNote(ctx, in.ID, ownerID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness("note not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo delete note", "note_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
