package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
)

// ListDueReminders returns every reminder of the given cadence whose start
// date has arrived, joined with its note and the note's owner. With
// skipFiredOn set, records already fired on the given date are left out.
func (s *DB) ListDueReminders(ctx context.Context, cadence int16, today time.Time, skipFiredOn bool) (_ []entity.DueReminder, err error) {
	ctx, span := s.startSpan(ctx, "ListDueReminders")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT r.id, r.message, n.title, u.email, u.first_name
		FROM diary_reminders r
		JOIN diary_notes n ON n.id = r.note_id
		JOIN identity_users u ON u.id = n.owner_id
		WHERE r.cadence = $1 AND r.start_date <= $2 AND u.deleted_at IS NULL`
	if skipFiredOn {
		query += ` AND (r.last_fired_on IS NULL OR r.last_fired_on < $2)`
	}
	query += ` ORDER BY r.id ASC`

	rows, err := s.conn.Query(ctx, query, cadence, today)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []entity.DueReminder
	for rows.Next() {
		var r entity.DueReminder
		if err = rows.Scan(&r.ReminderID, &r.Message, &r.NoteTitle, &r.OwnerEmail, &r.OwnerFirstName); err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, r)
	}

	return out, s.mapError(rows.Err())
}
