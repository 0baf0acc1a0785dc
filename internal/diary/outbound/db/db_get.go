package db

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
)

func (s *DB) ListCategories(ctx context.Context) (_ []entity.Category, err error) {
	ctx, span := s.startSpan(ctx, "ListCategories")
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT id, name FROM diary_categories ORDER BY name ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []entity.Category
	for rows.Next() {
		var c entity.Category
		if err = rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, c)
	}

	return out, s.mapError(rows.Err())
}

func (s *DB) GetNoteByID(ctx context.Context, id, ownerID int64) (_ *entity.Note, err error) {
	ctx, span := s.startSpan(ctx, "GetNoteByID")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT n.id, n.owner_id, n.title, n.content, n.category_id, c.name,
			n.priority, n.due_date, n.is_finished, n.created_at, n.updated_at
		FROM diary_notes n
		JOIN diary_categories c ON c.id = n.category_id
		WHERE n.id = $1 AND n.owner_id = $2`

	var out entity.Note
	var priority int16
	err = s.conn.QueryRow(ctx, query, id, ownerID).Scan(
		&out.ID, &out.OwnerID, &out.Title, &out.Content, &out.CategoryID, &out.CategoryName,
		&priority, &out.DueDate, &out.IsFinished, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	out.Priority = entity.Priority(priority)

	return &out, nil
}

// ListNotes applies the filter and sort in SQL so paging stays correct.
func (s *DB) ListNotes(ctx context.Context, filter entity.NoteListFilter) (_ []entity.Note, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "ListNotes")
	defer func() { s.endSpan(span, err) }()

	where := "n.owner_id = $1"
	args := []any{filter.OwnerID}

	switch filter.FilterBy {
	case entity.NoteFilterUnfinished:
		where += " AND n.is_finished = FALSE"
	case entity.NoteFilterDone:
		where += " AND n.is_finished = TRUE"
	case entity.NoteFilterOverdue:
		where += " AND n.is_finished = FALSE AND n.due_date < $2"
		args = append(args, filter.Today)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM diary_notes n WHERE " + where
	if err = s.conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	orderBy := "n.created_at DESC"
	switch filter.SortBy {
	case entity.NoteSortDueDate:
		orderBy = "n.due_date ASC"
	case entity.NoteSortPriority:
		orderBy = "n.priority DESC"
	}

	query := fmt.Sprintf(`
		SELECT n.id, n.owner_id, n.title, n.content, n.category_id, c.name,
			n.priority, n.due_date, n.is_finished, n.created_at, n.updated_at
		FROM diary_notes n
		JOIN diary_categories c ON c.id = n.category_id
		WHERE %s
		ORDER BY %s, n.id DESC
		LIMIT $%d OFFSET $%d`, where, orderBy, len(args)+1, len(args)+2)

	offset := (filter.Page - 1) * filter.Size
	args = append(args, filter.Size, offset)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	var out []entity.Note
	for rows.Next() {
		var n entity.Note
		var priority int16
		if err = rows.Scan(
			&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CategoryID, &n.CategoryName,
			&priority, &n.DueDate, &n.IsFinished, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, 0, s.mapError(err)
		}
		n.Priority = entity.Priority(priority)
		out = append(out, n)
	}

	return out, total, s.mapError(rows.Err())
}

// ListNotesForExport streams every note of the owner, oldest first.
func (s *DB) ListNotesForExport(ctx context.Context, ownerID int64) (_ []entity.Note, err error) {
	ctx, span := s.startSpan(ctx, "ListNotesForExport")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT n.id, n.owner_id, n.title, n.content, n.category_id, c.name,
			n.priority, n.due_date, n.is_finished, n.created_at, n.updated_at
		FROM diary_notes n
		JOIN diary_categories c ON c.id = n.category_id
		WHERE n.owner_id = $1
		ORDER BY n.created_at ASC, n.id ASC`

	rows, err := s.conn.Query(ctx, query, ownerID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []entity.Note
	for rows.Next() {
		var n entity.Note
		var priority int16
		if err = rows.Scan(
			&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CategoryID, &n.CategoryName,
			&priority, &n.DueDate, &n.IsFinished, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, s.mapError(err)
		}
		n.Priority = entity.Priority(priority)
		out = append(out, n)
	}

	return out, s.mapError(rows.Err())
}

func (s *DB) ListReminders(ctx context.Context, noteID, ownerID int64) (_ []entity.Reminder, err error) {
	ctx, span := s.startSpan(ctx, "ListReminders")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT r.id, r.note_id, r.start_date, r.cadence, r.message, r.created_at, r.updated_at
		FROM diary_reminders r
		JOIN diary_notes n ON n.id = r.note_id
		WHERE r.note_id = $1 AND n.owner_id = $2
		ORDER BY r.created_at ASC, r.id ASC`

	rows, err := s.conn.Query(ctx, query, noteID, ownerID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []entity.Reminder
	for rows.Next() {
		var r entity.Reminder
		var cadence int16
		if err = rows.Scan(&r.ID, &r.NoteID, &r.StartDate, &cadence, &r.Message, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, s.mapError(err)
		}
		r.Cadence = entity.Cadence(cadence)
		out = append(out, r)
	}

	return out, s.mapError(rows.Err())
}

func (s *DB) GetOwnerInfo(ctx context.Context, ownerID int64) (_ *entity.OwnerInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetOwnerInfo")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, email, first_name
		FROM identity_users
		WHERE id = $1 AND deleted_at IS NULL`

	var out entity.OwnerInfo
	err = s.conn.QueryRow(ctx, query, ownerID).Scan(&out.ID, &out.Email, &out.FirstName)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &out, nil
}

func (s *DB) GetReminderByID(ctx context.Context, id, ownerID int64) (_ *entity.Reminder, err error) {
	ctx, span := s.startSpan(ctx, "GetReminderByID")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT r.id, r.note_id, r.start_date, r.cadence, r.message, r.created_at, r.updated_at
		FROM diary_reminders r
		JOIN diary_notes n ON n.id = r.note_id
		WHERE r.id = $1 AND n.owner_id = $2`

	var out entity.Reminder
	var cadence int16
	err = s.conn.QueryRow(ctx, query, id, ownerID).
		Scan(&out.ID, &out.NoteID, &out.StartDate, &cadence, &out.Message, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}
	out.Cadence = entity.Cadence(cadence)

	return &out, nil
}
