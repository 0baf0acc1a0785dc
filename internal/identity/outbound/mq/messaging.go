package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/diarium/internal/identity/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/messaging"
	"github.com/shandysiswandi/diarium/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return m.ins.Tracer("identity.outbound.mq").Start(ctx, name)
}

// publishJSON marshals payload and publishes it with the correlation ID
// carried as a header so consumers log under the same request.
func (m *Messaging) publishJSON(ctx context.Context, span trace.Span, destination string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishUserRegistration(ctx context.Context, msg usecase.UserRegistrationEvent) error {
	ctx, span := m.startSpan(ctx, "PublishUserRegistration")
	defer span.End()

	return m.publishJSON(ctx, span, event.UserRegistrationDestination, event.UserRegistrationMessage{
		UserID:    msg.UserID,
		Email:     msg.Email,
		FirstName: msg.FirstName,
		OTPCode:   msg.OTPCode,
	})
}

func (m *Messaging) PublishUserForgotPassword(ctx context.Context, msg usecase.UserForgotPasswordEvent) error {
	ctx, span := m.startSpan(ctx, "PublishUserForgotPassword")
	defer span.End()

	return m.publishJSON(ctx, span, event.UserForgotPasswordDestination, event.UserForgotPasswordMessage{
		UserID:    msg.UserID,
		Email:     msg.Email,
		FirstName: msg.FirstName,
		OTPCode:   msg.OTPCode,
	})
}
