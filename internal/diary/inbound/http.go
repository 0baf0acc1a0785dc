package inbound

import (
	"context"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/diary/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/clock"
	"github.com/shandysiswandi/diarium/internal/pkg/router"
)

type uc interface {
	CategoryList(ctx context.Context) ([]entity.Category, error)

	NoteCreate(ctx context.Context, in usecase.NoteCreateInput) (*usecase.NoteCreateOutput, error)
	NoteList(ctx context.Context, in usecase.NoteListInput) (*usecase.NoteListOutput, error)
	NoteDetail(ctx context.Context, in usecase.NoteDetailInput) (*entity.Note, error)
	NoteUpdate(ctx context.Context, in usecase.NoteUpdateInput) error
	NoteDelete(ctx context.Context, in usecase.NoteDeleteInput) error
	NoteExport(ctx context.Context, in usecase.NoteExportInput) (*usecase.NoteExportOutput, error)

	ReminderCreate(ctx context.Context, in usecase.ReminderCreateInput) (*usecase.ReminderCreateOutput, error)
	ReminderList(ctx context.Context, in usecase.ReminderListInput) ([]entity.Reminder, error)
	ReminderUpdate(ctx context.Context, in usecase.ReminderUpdateInput) error
	ReminderDelete(ctx context.Context, in usecase.ReminderDeleteInput) error
}

// RegisterHTTPEndpoint wires diary routes. All of them require authentication.
func RegisterHTTPEndpoint(r *router.Router, uc uc, clk clock.Clocker) {
	end := &HTTPEndpoint{uc: uc, clock: clk}

	r.GET("/api/v1/diary/categories", end.CategoryList)

	r.POST("/api/v1/diary/notes", end.NoteCreate)
	r.GET("/api/v1/diary/notes", end.NoteList)
	r.GET("/api/v1/diary/notes/:id", end.NoteDetail)
	r.PUT("/api/v1/diary/notes/:id", end.NoteUpdate)
	r.DELETE("/api/v1/diary/notes/:id", end.NoteDelete)
	r.POST("/api/v1/diary/notes/export", end.NoteExport)

	r.GET("/api/v1/diary/notes/:id/reminders", end.ReminderList)
	r.POST("/api/v1/diary/reminders", end.ReminderCreate)
	r.PUT("/api/v1/diary/reminders/:id", end.ReminderUpdate)
	r.DELETE("/api/v1/diary/reminders/:id", end.ReminderDelete)
}
