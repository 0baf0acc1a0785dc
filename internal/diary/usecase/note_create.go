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

type NoteCreateInput struct {
	Title      string `validate:"required,min=1,max=120"`
	Content    string `validate:"required"`
	CategoryID int64  `validate:"required"`
	Priority   string `validate:"required,oneof=LOW MEDIUM HIGH"`
	DueDate    string `validate:"required,datetime=2006-01-02"`
}

type NoteCreateOutput struct {
	ID int64
}

func (s *Usecase) NoteCreate(ctx context.Context, in NoteCreateInput) (*NoteCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "NoteCreate")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	dueDate, err := time.Parse(time.DateOnly, in.DueDate)
	if err != nil {
		return nil, goerror.NewBusiness("due date must be YYYY-MM-DD", goerror.CodeInvalidFormat)
	}

	note := entity.NewNote{
		ID:         s.uid.Generate(),
		OwnerID:    ownerID,
		Title:      in.Title,
		Content:    in.Content,
		CategoryID: in.CategoryID,
		Priority:   entity.PriorityFromString(in.Priority),
		DueDate:    dueDate,
	}

	if err := s.repoDB.CreateNote(ctx, note); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("category not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo create note", "owner_id", ownerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &NoteCreateOutput{ID: note.ID}, nil
}
