package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/diarium/internal/notification/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/goroutine"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/messaging"
	"github.com/shandysiswandi/diarium/internal/pkg/uid"
	"github.com/shandysiswandi/diarium/internal/shared/event"
)

type uc interface {
	ConsumeUserRegistration(ctx context.Context, in usecase.ConsumeUserRegistrationInput) error
	ConsumeUserForgotPassword(ctx context.Context, in usecase.ConsumeUserForgotPasswordInput) error
	ConsumeNoteExport(ctx context.Context, in usecase.ConsumeNoteExportInput) error
}

// RegisterMQConsumer starts one background consumer per enabled name. The
// consumer name doubles as the NSQ channel, NATS queue group, Kafka group
// and Pub/Sub subscription, so each driver ends up with the same fan-out.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	handler := &MQHandler{uc: uc, uuid: uuid, ins: ins}
	enabled := cfg.GetArray("modules.notification.consumer_names")

	consumers := []struct {
		name    string
		topic   string
		handler messaging.Handler
	}{
		{
			name:    event.UserRegistrationDestinationConsumerNotification,
			topic:   event.UserRegistrationDestination,
			handler: handler.UserRegistrationNotification,
		},
		{
			name:    event.UserForgotPasswordConsumerNotification,
			topic:   event.UserForgotPasswordDestination,
			handler: handler.UserForgotPasswordNotification,
		},
		{
			name:    event.NoteExportConsumerNotification,
			topic:   event.NoteExportDestination,
			handler: handler.NoteExportNotification,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enabled, consumer.name) {
			continue
		}

		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithChannel(consumer.name),
				messaging.WithQueueGroup(consumer.name),
				messaging.WithGroup(consumer.name),
				messaging.WithSubscription(consumer.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(10),
				messaging.WithMaxInFlight(10),
			)
		})
	}
}
