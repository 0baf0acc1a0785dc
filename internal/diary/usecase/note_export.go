package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
	"github.com/shandysiswandi/diarium/internal/pkg/storage"
)

type NoteExportInput struct {
	Format string `validate:"required,oneof=csv"`
}

type NoteExportOutput struct {
	Accepted bool
}

// NoteExport kicks off an export of every note the caller owns. The heavy
// lifting runs in the background: the handler returns as soon as the job is
// scheduled, and the download link arrives by email once the file is uploaded.
func (s *Usecase) NoteExport(ctx context.Context, in NoteExportInput) (*NoteExportOutput, error) {
	ctx, span := s.startSpan(ctx, "NoteExport")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	// the request context dies with the response, the export must not
	jobCtx := context.WithoutCancel(ctx)
	s.gorout.Go(jobCtx, func(ctx context.Context) error {
		if err := s.runNoteExport(ctx, ownerID); err != nil {
			slog.ErrorContext(ctx, "note export failed", "owner_id", ownerID, "error", err)
			return err
		}
		return nil
	})

	return &NoteExportOutput{Accepted: true}, nil
}

func (s *Usecase) runNoteExport(ctx context.Context, ownerID int64) error {
	ctx, span := s.startSpan(ctx, "runNoteExport")
	defer span.End()

	owner, err := s.repoDB.GetOwnerInfo(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("get owner info: %w", err)
	}

	notes, err := s.repoDB.ListNotesForExport(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}

	body, err := notesToCSV(notes)
	if err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}

	bucket := s.cfg.GetString("modules.diary.export.bucket")
	key := fmt.Sprintf("exports/%d/notes-%s.csv", ownerID, s.clock.Now().UTC().Format("20060102T150405"))

	opts := storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: "text/csv",
		Metadata:    map[string]string{"owner_id": strconv.FormatInt(ownerID, 10)},
	}
	if _, err := s.store.PutObject(ctx, bucket, key, bytes.NewReader(body), opts); err != nil {
		return fmt.Errorf("upload export: %w", err)
	}

	expiry := s.cfg.GetMinute("modules.diary.export.presign_expiry_minutes")
	if expiry <= 0 {
		expiry = 60 * time.Minute
	}

	url, err := s.store.PresignGet(ctx, bucket, key, expiry)
	if err != nil {
		return fmt.Errorf("presign export: %w", err)
	}

	if err := s.repoMessaging.PublishNoteExported(ctx, NoteExportedEvent{
		UserID:      owner.ID,
		Email:       owner.Email,
		FirstName:   owner.FirstName,
		DownloadURL: url,
		NoteCount:   len(notes),
	}); err != nil {
		return fmt.Errorf("publish note exported: %w", err)
	}

	return nil
}

func notesToCSV(notes []entity.Note) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "title", "content", "category", "priority", "due_date", "is_finished", "created_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, n := range notes {
		record := []string{
			strconv.FormatInt(n.ID, 10),
			n.Title,
			n.Content,
			n.CategoryName,
			n.Priority.String(),
			n.DueDate.Format(time.DateOnly),
			strconv.FormatBool(n.IsFinished),
			n.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
