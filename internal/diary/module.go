package diary

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/diarium/internal/diary/inbound"
	"github.com/shandysiswandi/diarium/internal/diary/outbound/db"
	"github.com/shandysiswandi/diarium/internal/diary/outbound/mq"
	"github.com/shandysiswandi/diarium/internal/diary/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/clock"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/goroutine"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/messaging"
	"github.com/shandysiswandi/diarium/internal/pkg/router"
	"github.com/shandysiswandi/diarium/internal/pkg/storage"
	"github.com/shandysiswandi/diarium/internal/pkg/uid"
	"github.com/shandysiswandi/diarium/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbDiary := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbDiary,
		RepoMessaging: repoMsg,
		Storage:       dep.Storage,
		Goroutine:     dep.Goroutine,
		Validator:     dep.Validator,
		Config:        dep.Config,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Clock)

	return nil
}
