package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/mail"
	"github.com/shandysiswandi/diarium/internal/pkg/valueobject"
)

// sendTemplatedEmail renders the template, records the delivery as pending,
// hands the message to the provider, and writes the outcome back. The row is
// the audit trail: it exists even when the provider never answered.
func (s *Usecase) sendTemplatedEmail(ctx context.Context, recipient, subject string, tpl entity.Template, data map[string]any) error {
	body, err := renderEmail(tpl, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email template", "template", tpl.String(), "error", err)
		return err
	}

	delivery := entity.EmailDelivery{
		ID:        s.uid.Generate(),
		Recipient: recipient,
		Template:  tpl,
		Status:    entity.DeliveryStatusPending,
		Detail:    valueobject.JSONMap{},
	}
	if err := s.repoDB.CreateEmailDelivery(ctx, delivery); err != nil {
		slog.ErrorContext(ctx, "failed to repo create email delivery", "template", tpl.String(), "error", err)
		return err
	}

	mailErr := s.repoMail.Send(ctx, mail.Message{
		To:       []string{recipient},
		Subject:  subject,
		HTMLBody: body,
	})

	up := entity.UpdateEmailDelivery{
		ID:     delivery.ID,
		Status: entity.DeliveryStatusSent,
		Detail: valueobject.JSONMap{},
	}
	if mailErr != nil {
		up.Status = entity.DeliveryStatusFailed
		up.Detail = valueobject.JSONMap{"error": mailErr.Error()}
	}
	if err := s.repoDB.UpdateEmailDeliveryStatus(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update email delivery status", "delivery_id", delivery.ID, "error", err)
	}

	if mailErr != nil {
		slog.ErrorContext(ctx, "failed to send email", "delivery_id", delivery.ID, "template", tpl.String(), "error", mailErr)
		return mailErr
	}

	return nil
}
