package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
)

// RemindDue fans out reminder emails for one cadence. Each record is handled
// independently: a failed render or send is logged and the batch moves on, so
// one bad reminder never blocks the rest of the tick.
func (s *Usecase) RemindDue(ctx context.Context, cadence entity.Cadence) error {
	ctx, span := s.startSpan(ctx, "RemindDue")
	defer span.End()

	today := s.today()
	fireEveryTick := s.cfg.GetBool("modules.notification.reminder.fire_every_tick")

	reminders, err := s.repoDB.ListDueReminders(ctx, int16(cadence), today, !fireEveryTick)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list due reminders", "cadence", cadence.String(), "error", err)
		return err
	}

	if len(reminders) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "firing due reminders", "cadence", cadence.String(), "count", len(reminders))

	var sent, failed int
	for _, rem := range reminders {
		data := s.baseTemplateData()
		data["first_name"] = rem.OwnerFirstName
		data["note_title"] = rem.NoteTitle
		data["reminder_message"] = rem.Message

		subject := fmt.Sprintf(emailSubjects[entity.TemplateReminder], rem.NoteTitle)
		if err := s.sendTemplatedEmail(ctx, rem.OwnerEmail, subject, entity.TemplateReminder, data); err != nil {
			slog.ErrorContext(ctx, "failed to deliver reminder", "reminder_id", rem.ReminderID, "error", err)
			failed++
			continue
		}
		sent++

		if !fireEveryTick {
			if err := s.repoDB.MarkReminderFired(ctx, rem.ReminderID, today); err != nil {
				slog.ErrorContext(ctx, "failed to repo mark reminder fired", "reminder_id", rem.ReminderID, "error", err)
			}
		}
	}

	slog.InfoContext(ctx, "reminder fan-out done", "cadence", cadence.String(), "sent", sent, "failed", failed)

	return nil
}

func (s *Usecase) today() time.Time {
	loc := time.UTC
	if tz := s.cfg.GetString("modules.notification.reminder.timezone"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	now := s.clock.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
