package inbound

import (
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/diary/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/clock"
	"github.com/shandysiswandi/diarium/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for categories, notes, and reminders.
type HTTPEndpoint struct {
	uc    uc
	clock clock.Clocker
}

func (h *HTTPEndpoint) today() time.Time {
	now := h.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// CategoryList returns the fixed set of note categories.
// @Summary List categories
// @Tags Diary
// @Produce json
// @Success 200 {object} router.successResponse{data=[]CategoryResponse} "Categories"
// @Router /api/v1/diary/categories [get]
func (h *HTTPEndpoint) CategoryList(r *router.Request) (any, error) {
	categories, err := h.uc.CategoryList(r.Context())
	if err != nil {
		return nil, err
	}

	return lo.Map(categories, func(c entity.Category, _ int) CategoryResponse {
		return CategoryResponse{ID: c.ID, Name: c.Name}
	}), nil
}

// NoteCreate creates a diary note.
// @Summary Create note
// @Tags Diary, Notes
// @Accept json
// @Produce json
// @Param request body NoteRequest true "Note payload"
// @Success 200 {object} router.successResponse{data=NoteCreateResponse} "Created note"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/diary/notes [post]
func (h *HTTPEndpoint) NoteCreate(r *router.Request) (any, error) {
	req, err := router.Decode[NoteRequest](r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.NoteCreate(r.Context(), usecase.NoteCreateInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Priority:   req.Priority,
		DueDate:    req.DueDate,
	})
	if err != nil {
		return nil, err
	}

	return NoteCreateResponse{ID: resp.ID}, nil
}

// NoteList returns the caller's notes, filtered, sorted, and paged.
// @Summary List notes
// @Tags Diary, Notes
// @Produce json
// @Param filter_by query string false "all, unfinished, overdue, done"
// @Param sort_by query string false "due_date, priority, created_date"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} router.successResponse{data=NoteListResponse} "Notes"
// @Router /api/v1/diary/notes [get]
func (h *HTTPEndpoint) NoteList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.NoteList(r.Context(), usecase.NoteListInput{
		FilterBy: r.GetQuery("filter_by"),
		SortBy:   r.GetQuery("sort_by"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		return nil, err
	}

	return toNoteListResponse(resp.Notes, resp.Total, resp.Page, resp.Size, h.today()), nil
}

// NoteDetail returns a single note owned by the caller.
// @Summary Get note
// @Tags Diary, Notes
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} router.successResponse{data=NoteResponse} "Note"
// @Failure 404 {object} router.errorResponse "Note not found"
// @Router /api/v1/diary/notes/{id} [get]
func (h *HTTPEndpoint) NoteDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	note, err := h.uc.NoteDetail(r.Context(), usecase.NoteDetailInput{ID: id})
	if err != nil {
		return nil, err
	}

	return toNoteResponse(*note, h.today()), nil
}

// NoteUpdate replaces the note's editable fields.
// @Summary Update note
// @Tags Diary, Notes
// @Accept json
// @Param id path int true "Note ID"
// @Param request body NoteRequest true "Note payload"
// @Success 200 {object} router.successResponse "Updated"
// @Failure 404 {object} router.errorResponse "Note not found"
// @Router /api/v1/diary/notes/{id} [put]
func (h *HTTPEndpoint) NoteUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	req, err := router.Decode[NoteRequest](r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.NoteUpdate(r.Context(), usecase.NoteUpdateInput{
		ID:         id,
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Priority:   req.Priority,
		DueDate:    req.DueDate,
		IsFinished: req.IsFinished,
	}); err != nil {
		return nil, err
	}

	return NoteUpdateResponse{}, nil
}

// NoteDelete removes a note and its reminders.
// @Summary Delete note
// @Tags Diary, Notes
// @Param id path int true "Note ID"
// @Success 200 {object} router.successResponse "Deleted"
// @Failure 404 {object} router.errorResponse "Note not found"
// @Router /api/v1/diary/notes/{id} [delete]
func (h *HTTPEndpoint) NoteDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.NoteDelete(r.Context(), usecase.NoteDeleteInput{ID: id}); err != nil {
		return nil, err
	}

	return NoteDeleteResponse{}, nil
}

// NoteExport schedules an asynchronous export of the caller's notes.
// @Summary Export notes
// @Tags Diary, Notes
// @Accept json
// @Param request body NoteExportRequest true "Export payload"
// @Success 200 {object} router.successResponse "Export scheduled"
// @Router /api/v1/diary/notes/export [post]
func (h *HTTPEndpoint) NoteExport(r *router.Request) (any, error) {
	req, err := router.Decode[NoteExportRequest](r)
	if err != nil {
		return nil, err
	}

	if _, err := h.uc.NoteExport(r.Context(), usecase.NoteExportInput{Format: req.Format}); err != nil {
		return nil, err
	}

	return NoteExportResponse{}, nil
}

// ReminderCreate attaches a recurring reminder to a note.
// @Summary Create reminder
// @Tags Diary, Reminders
// @Accept json
// @Produce json
// @Param request body ReminderRequest true "Reminder payload"
// @Success 200 {object} router.successResponse{data=ReminderCreateResponse} "Created reminder"
// @Failure 404 {object} router.errorResponse "Note not found"
// @Router /api/v1/diary/reminders [post]
func (h *HTTPEndpoint) ReminderCreate(r *router.Request) (any, error) {
	req, err := router.Decode[ReminderRequest](r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ReminderCreate(r.Context(), usecase.ReminderCreateInput{
		NoteID:    req.NoteID,
		StartDate: req.StartDate,
		Cadence:   req.Cadence,
		Message:   req.Message,
	})
	if err != nil {
		return nil, err
	}

	return ReminderCreateResponse{ID: resp.ID}, nil
}

// ReminderList returns reminders for one of the caller's notes.
// @Summary List reminders
// @Tags Diary, Reminders
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} router.successResponse{data=[]ReminderResponse} "Reminders"
// @Failure 404 {object} router.errorResponse "Note not found"
// @Router /api/v1/diary/notes/{id}/reminders [get]
func (h *HTTPEndpoint) ReminderList(r *router.Request) (any, error) {
	noteID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	reminders, err := h.uc.ReminderList(r.Context(), usecase.ReminderListInput{NoteID: noteID})
	if err != nil {
		return nil, err
	}

	return lo.Map(reminders, func(rm entity.Reminder, _ int) ReminderResponse {
		return toReminderResponse(rm)
	}), nil
}

// ReminderUpdate replaces a reminder's schedule and message.
// @Summary Update reminder
// @Tags Diary, Reminders
// @Accept json
// @Param id path int true "Reminder ID"
// @Param request body ReminderRequest true "Reminder payload"
// @Success 200 {object} router.successResponse "Updated"
// @Failure 404 {object} router.errorResponse "Reminder not found"
// @Router /api/v1/diary/reminders/{id} [put]
func (h *HTTPEndpoint) ReminderUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	req, err := router.Decode[ReminderRequest](r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.ReminderUpdate(r.Context(), usecase.ReminderUpdateInput{
		ID:        id,
		StartDate: req.StartDate,
		Cadence:   req.Cadence,
		Message:   req.Message,
	}); err != nil {
		return nil, err
	}

	return ReminderUpdateResponse{}, nil
}

// ReminderDelete removes a reminder.
// @Summary Delete reminder
// @Tags Diary, Reminders
// @Param id path int true "Reminder ID"
// @Success 200 {object} router.successResponse "Deleted"
// @Failure 404 {object} router.errorResponse "Reminder not found"
// @Router /api/v1/diary/reminders/{id} [delete]
func (h *HTTPEndpoint) ReminderDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.ReminderDelete(r.Context(), usecase.ReminderDeleteInput{ID: id}); err != nil {
		return nil, err
	}

	return ReminderDeleteResponse{}, nil
}
