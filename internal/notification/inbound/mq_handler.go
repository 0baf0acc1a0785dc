package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/notification/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/messaging"
	"github.com/shandysiswandi/diarium/internal/pkg/uid"
	"github.com/shandysiswandi/diarium/internal/shared/event"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// begin propagates or mints the correlation ID, opens a span named after
// the handler, and logs the raw message body once.
func (h *MQHandler) begin(ctx context.Context, name string, msg messaging.Message) (context.Context, trace.Span, []byte) {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())
	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, name)

	body := msg.Body()
	slog.InfoContext(ctx, "consuming message", "handler", name, "msg_body", string(body))
	return ctx, span, body
}

// decodeEvent parses the JSON body. A body that cannot be parsed will never
// succeed on redelivery, so the caller drops it instead of returning an error.
func decodeEvent[T any](ctx context.Context, body []byte) (T, bool) {
	var payload T
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "dropping undecodable message", "msg_body", string(body), "error", err)
		return payload, false
	}
	return payload, true
}

func (h *MQHandler) UserRegistrationNotification(ctx context.Context, msg messaging.Message) error {
	ctx, span, body := h.begin(ctx, "UserRegistrationNotification", msg)
	defer span.End()

	payload, ok := decodeEvent[event.UserRegistrationMessage](ctx, body)
	if !ok {
		return nil
	}

	err := h.uc.ConsumeUserRegistration(ctx, usecase.ConsumeUserRegistrationInput{
		UserID:    payload.UserID,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		OTPCode:   payload.OTPCode,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume user registration", "msg_body", string(body), "error", err)
	}
	return err
}

func (h *MQHandler) UserForgotPasswordNotification(ctx context.Context, msg messaging.Message) error {
	ctx, span, body := h.begin(ctx, "UserForgotPasswordNotification", msg)
	defer span.End()

	payload, ok := decodeEvent[event.UserForgotPasswordMessage](ctx, body)
	if !ok {
		return nil
	}

	err := h.uc.ConsumeUserForgotPassword(ctx, usecase.ConsumeUserForgotPasswordInput{
		UserID:    payload.UserID,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		OTPCode:   payload.OTPCode,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume user forgot password", "msg_body", string(body), "error", err)
	}
	return err
}

func (h *MQHandler) NoteExportNotification(ctx context.Context, msg messaging.Message) error {
	ctx, span, body := h.begin(ctx, "NoteExportNotification", msg)
	defer span.End()

	payload, ok := decodeEvent[event.NoteExportMessage](ctx, body)
	if !ok {
		return nil
	}

	err := h.uc.ConsumeNoteExport(ctx, usecase.ConsumeNoteExportInput{
		UserID:      payload.UserID,
		Email:       payload.Email,
		FirstName:   payload.FirstName,
		DownloadURL: payload.DownloadURL,
		NoteCount:   payload.NoteCount,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume note export", "msg_body", string(body), "error", err)
	}
	return err
}
