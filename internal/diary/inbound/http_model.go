package inbound

import (
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/diarium/internal/diary/entity"
)

type CategoryResponse struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
}

type NoteRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID int64  `json:"category_id,string"`
	Priority   string `json:"priority"`
	DueDate    string `json:"due_date"`
	IsFinished bool   `json:"is_finished"`
}

type NoteResponse struct {
	ID           int64  `json:"id,string"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	CategoryID   int64  `json:"category_id,string"`
	CategoryName string `json:"category_name"`
	Priority     string `json:"priority"`
	DueDate      string `json:"due_date"`
	IsFinished   bool   `json:"is_finished"`
	IsDue        bool   `json:"is_due"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toNoteResponse(n entity.Note, today time.Time) NoteResponse {
	return NoteResponse{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		CategoryID:   n.CategoryID,
		CategoryName: n.CategoryName,
		Priority:     n.Priority.String(),
		DueDate:      n.DueDate.Format(time.DateOnly),
		IsFinished:   n.IsFinished,
		IsDue:        n.IsDue(today),
		CreatedAt:    n.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    n.UpdatedAt.Format(time.RFC3339),
	}
}

type NoteCreateResponse struct {
	ID int64 `json:"id,string"`
}

func (NoteCreateResponse) Message() string {
	return "Note created."
}

type NoteListResponse struct {
	Notes []NoteResponse `json:"notes"`
	Total int64          `json:"total"`
	Page  int32          `json:"page"`
	Size  int32          `json:"size"`
}

func toNoteListResponse(notes []entity.Note, total int64, page, size int32, today time.Time) NoteListResponse {
	return NoteListResponse{
		Notes: lo.Map(notes, func(n entity.Note, _ int) NoteResponse {
			return toNoteResponse(n, today)
		}),
		Total: total,
		Page:  page,
		Size:  size,
	}
}

type NoteUpdateResponse struct{}

func (NoteUpdateResponse) Message() string {
	return "Note updated."
}

type NoteDeleteResponse struct{}

func (NoteDeleteResponse) Message() string {
	return "Note and its reminders deleted."
}

type NoteExportRequest struct {
	Format string `json:"format"`
}

type NoteExportResponse struct{}

func (NoteExportResponse) Message() string {
	return "Export started. A download link will be sent to your email."
}

type ReminderRequest struct {
	NoteID    int64  `json:"note_id,string"`
	StartDate string `json:"start_date"`
	Cadence   string `json:"cadence"`
	Message   string `json:"message"`
}

type ReminderResponse struct {
	ID        int64  `json:"id,string"`
	NoteID    int64  `json:"note_id,string"`
	StartDate string `json:"start_date"`
	Cadence   string `json:"cadence"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toReminderResponse(r entity.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:        r.ID,
		NoteID:    r.NoteID,
		StartDate: r.StartDate.Format(time.DateOnly),
		Cadence:   r.Cadence.String(),
		Message:   r.Message,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

type ReminderCreateResponse struct {
	ID int64 `json:"id,string"`
}

func (ReminderCreateResponse) Message() string {
	return "Reminder created."
}

type ReminderUpdateResponse struct{}

func (ReminderUpdateResponse) Message() string {
	return "Reminder updated."
}

type ReminderDeleteResponse struct{}

func (ReminderDeleteResponse) Message() string {
	return "Reminder deleted."
}
