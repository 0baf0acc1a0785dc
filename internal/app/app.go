package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/diarium/internal/notification/scheduler"
	"github.com/shandysiswandi/diarium/internal/pkg/clock"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/goroutine"
	"github.com/shandysiswandi/diarium/internal/pkg/hash"
	"github.com/shandysiswandi/diarium/internal/pkg/idempotency"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/jwt"
	"github.com/shandysiswandi/diarium/internal/pkg/mail"
	"github.com/shandysiswandi/diarium/internal/pkg/messaging"
	"github.com/shandysiswandi/diarium/internal/pkg/router"
	"github.com/shandysiswandi/diarium/internal/pkg/storage"
	"github.com/shandysiswandi/diarium/internal/pkg/uid"
	"github.com/shandysiswandi/diarium/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	password  hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server
	scheduler  *scheduler.Scheduler

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
