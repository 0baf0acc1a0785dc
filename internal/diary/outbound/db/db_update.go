package db

import (
	"context"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

func (s *DB) UpdateNote(ctx context.Context, in entity.PatchNote) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateNote")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE diary_notes
		SET title = $3, content = $4, category_id = $5, priority = $6,
			due_date = $7, is_finished = $8, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2`

	tag, err := s.conn.Exec(ctx, query,
		in.ID, in.OwnerID, in.Title, in.Content, in.CategoryID, int16(in.Priority), in.DueDate, in.IsFinished)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) UpdateReminder(ctx context.Context, in entity.Reminder, ownerID int64) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateReminder")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE diary_reminders r
		SET start_date = $3, cadence = $4, message = $5, updated_at = NOW()
		FROM diary_notes n
		WHERE r.id = $1 AND r.note_id = n.id AND n.owner_id = $2`

	tag, err := s.conn.Exec(ctx, query,
		in.ID, ownerID, in.StartDate, int16(in.Cadence), in.Message)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
