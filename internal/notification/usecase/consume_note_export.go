package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
)

type ConsumeNoteExportInput struct {
	UserID      int64  `validate:"required,gt=0"`
	Email       string `validate:"required,email"`
	FirstName   string `validate:"required,min=2,max=50"`
	DownloadURL string `validate:"required,url"`
	NoteCount   int    `validate:"gte=0"`
}

func (s *Usecase) ConsumeNoteExport(ctx context.Context, in ConsumeNoteExportInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeNoteExport")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	data := s.baseTemplateData()
	data["first_name"] = in.FirstName
	data["download_url"] = in.DownloadURL
	data["note_count"] = in.NoteCount

	return s.sendTemplatedEmail(ctx, in.Email,
		emailSubjects[entity.TemplateNoteExport], entity.TemplateNoteExport, data)
}
