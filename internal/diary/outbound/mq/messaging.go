package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/diarium/internal/diary/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/messaging"
	"github.com/shandysiswandi/diarium/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishNoteExported(ctx context.Context, msg usecase.NoteExportedEvent) error {
	ctx, span := m.ins.Tracer("diary.outbound.mq").Start(ctx, "PublishNoteExported")
	defer span.End()

	body, err := json.Marshal(event.NoteExportMessage{
		UserID:      msg.UserID,
		Email:       msg.Email,
		FirstName:   msg.FirstName,
		DownloadURL: msg.DownloadURL,
		NoteCount:   msg.NoteCount,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.NoteExportDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
