package db

import (
	"context"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
)

func (s *DB) CreateEmailDelivery(ctx context.Context, in entity.EmailDelivery) (err error) {
	ctx, span := s.startSpan(ctx, "CreateEmailDelivery")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO notification_email_deliveries (id, recipient, template, status, detail)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = s.conn.Exec(ctx, query,
		in.ID, in.Recipient, in.Template.String(), int16(in.Status), in.Detail)
	err = s.mapError(err)
	return err
}
