package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

func (s *DB) UpdateEmailDeliveryStatus(ctx context.Context, in entity.UpdateEmailDelivery) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateEmailDeliveryStatus")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE notification_email_deliveries
		SET status = $2, detail = $3, updated_at = NOW()
		WHERE id = $1`

	tag, err := s.conn.Exec(ctx, query, in.ID, int16(in.Status), in.Detail)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) MarkReminderFired(ctx context.Context, id int64, on time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "MarkReminderFired")
	defer func() { s.endSpan(span, err) }()

	const query = `UPDATE diary_reminders SET last_fired_on = $2 WHERE id = $1`

	_, err = s.conn.Exec(ctx, query, id, on)
	err = s.mapError(err)
	return err
}
