package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

// DeleteNote removes the note and its reminders together. Reminders carry an
// FK to the note, so they go first.
func (s *DB) DeleteNote(ctx context.Context, id, ownerID int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteNote")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	const reminderQuery = `
		DELETE FROM diary_reminders r
		USING diary_notes n
		WHERE r.note_id = n.id AND n.id = $1 AND n.owner_id = $2`
	if _, err := tx.Exec(ctx, reminderQuery, id, ownerID); err != nil {
		return s.mapError(err)
	}

	const noteQuery = `DELETE FROM diary_notes WHERE id = $1 AND owner_id = $2`
	tag, err := tx.Exec(ctx, noteQuery, id, ownerID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *DB) DeleteReminder(ctx context.Context, id, ownerID int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteReminder")
	defer func() { s.endSpan(span, err) }()

	const query = `
		DELETE FROM diary_reminders r
		USING diary_notes n
		WHERE r.id = $1 AND r.note_id = n.id AND n.owner_id = $2`

	tag, err := s.conn.Exec(ctx, query, id, ownerID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
