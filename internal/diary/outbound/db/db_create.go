package db

import (
	"context"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
)

func (s *DB) CreateNote(ctx context.Context, in entity.NewNote) (err error) {
	ctx, span := s.startSpan(ctx, "CreateNote")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO diary_notes (id, owner_id, title, content, category_id, priority, due_date, is_finished)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`

	_, err = s.conn.Exec(ctx, query,
		in.ID, in.OwnerID, in.Title, in.Content, in.CategoryID, int16(in.Priority), in.DueDate)
	err = s.mapError(err)
	return err
}

func (s *DB) CreateReminder(ctx context.Context, in entity.Reminder) (err error) {
	ctx, span := s.startSpan(ctx, "CreateReminder")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO diary_reminders (id, note_id, start_date, cadence, message)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = s.conn.Exec(ctx, query, in.ID, in.NoteID, in.StartDate, int16(in.Cadence), in.Message)
	err = s.mapError(err)
	return err
}
