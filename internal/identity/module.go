package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/diarium/internal/identity/inbound"
	"github.com/shandysiswandi/diarium/internal/identity/otp"
	"github.com/shandysiswandi/diarium/internal/identity/outbound/db"
	"github.com/shandysiswandi/diarium/internal/identity/outbound/mq"
	"github.com/shandysiswandi/diarium/internal/identity/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/clock"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/hash"
	"github.com/shandysiswandi/diarium/internal/pkg/idempotency"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/jwt"
	"github.com/shandysiswandi/diarium/internal/pkg/messaging"
	"github.com/shandysiswandi/diarium/internal/pkg/router"
	"github.com/shandysiswandi/diarium/internal/pkg/uid"
	"github.com/shandysiswandi/diarium/internal/pkg/validator"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   *redis.Client              `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	OID         uid.StringID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Password    hash.Hash                  `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	engine := otp.NewEngine(dbAuth, dep.Clock, dep.UID, otp.Config{
		CodeLength:     dep.Config.GetInt("modules.identity.otp.length"),
		Expiry:         dep.Config.GetMinute("modules.identity.otp.expiry_minutes"),
		ResendCoolDown: dep.Config.GetSecond("modules.identity.otp.resend_cooldown_seconds"),
	})

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoMessaging: repoMsg,
		OTPEngine:     engine,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Password:      dep.Password,
		UID:           dep.UID,
		OID:           dep.OID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
