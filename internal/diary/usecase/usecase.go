package usecase

import (
	"context"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/clock"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
	"github.com/shandysiswandi/diarium/internal/pkg/goroutine"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/jwt"
	"github.com/shandysiswandi/diarium/internal/pkg/storage"
	"github.com/shandysiswandi/diarium/internal/pkg/uid"
	"github.com/shandysiswandi/diarium/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type NoteExportedEvent struct {
	UserID      int64
	Email       string
	FirstName   string
	DownloadURL string
	NoteCount   int
}

type repoMessaging interface {
	PublishNoteExported(ctx context.Context, msg NoteExportedEvent) error
}

type repoDB interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)

	CreateNote(ctx context.Context, in entity.NewNote) error
	GetNoteByID(ctx context.Context, id, ownerID int64) (*entity.Note, error)
	ListNotes(ctx context.Context, filter entity.NoteListFilter) ([]entity.Note, int64, error)
	ListNotesForExport(ctx context.Context, ownerID int64) ([]entity.Note, error)
	UpdateNote(ctx context.Context, in entity.PatchNote) error
	DeleteNote(ctx context.Context, id, ownerID int64) error

	CreateReminder(ctx context.Context, in entity.Reminder) error
	GetReminderByID(ctx context.Context, id, ownerID int64) (*entity.Reminder, error)
	ListReminders(ctx context.Context, noteID, ownerID int64) ([]entity.Reminder, error)
	UpdateReminder(ctx context.Context, in entity.Reminder, ownerID int64) error
	DeleteReminder(ctx context.Context, id, ownerID int64) error

	GetOwnerInfo(ctx context.Context, ownerID int64) (*entity.OwnerInfo, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	store         storage.Storage
	gorout        *goroutine.Manager
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Storage       storage.Storage
	Goroutine     *goroutine.Manager
	Validator     validator.Validator
	Config        config.Config
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		store:         dep.Storage,
		gorout:        dep.Goroutine,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("diary.usecase").Start(ctx, name)
}

// authUserID resolves the owner from the request claims. Every diary operation
// is scoped to the authenticated user.
func authUserID(ctx context.Context) (int64, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return 0, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	return clm.UserID, nil
}
