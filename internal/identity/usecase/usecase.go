package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
	"github.com/shandysiswandi/diarium/internal/identity/otp"
	"github.com/shandysiswandi/diarium/internal/pkg/clock"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
	"github.com/shandysiswandi/diarium/internal/pkg/hash"
	"github.com/shandysiswandi/diarium/internal/pkg/idempotency"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/jwt"
	"github.com/shandysiswandi/diarium/internal/pkg/uid"
	"github.com/shandysiswandi/diarium/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type UserRegistrationEvent struct {
	UserID    int64
	Email     string
	FirstName string
	OTPCode   string
}

type UserForgotPasswordEvent struct {
	UserID    int64
	Email     string
	FirstName string
	OTPCode   string
}

type repoMessaging interface {
	PublishUserRegistration(ctx context.Context, msg UserRegistrationEvent) error
	PublishUserForgotPassword(ctx context.Context, msg UserForgotPasswordEvent) error
}

type repoDB interface {
	GetUserLoginInfo(ctx context.Context, email string) (*entity.UserLoginInfo, error)
	GetUserCredentialInfo(ctx context.Context, id int64) (*entity.UserCredentialInfo, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserRefreshToken(ctx context.Context, token string) (*entity.UserRefreshToken, error)

	CreateRefreshToken(ctx context.Context, in entity.RefreshToken) error

	UpdateUserStatus(ctx context.Context, id int64, status entity.UserStatus) error
	UpdateUserPassword(ctx context.Context, userID int64, hash string) error
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllRefreshToken(ctx context.Context, userID int64) error

	NewRegistration(ctx context.Context, user entity.NewUser, code entity.OTP) error
	RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) error
}

type Usecase struct {
	db        repoDB
	mq        repoMessaging
	otpEngine *otp.Engine
	idemp     idempotency.Idempotency
	validator validator.Validator
	cfg       config.Config
	hmac      hash.Hash
	password  hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	OTPEngine     *otp.Engine
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Password      hash.Hash
	UID           uid.NumberID
	OID           uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		db:        dep.RepoDB,
		mq:        dep.RepoMessaging,
		otpEngine: dep.OTPEngine,
		idemp:     dep.Idempotency,
		validator: dep.Validator,
		cfg:       dep.Config,
		hmac:      dep.HMAC,
		password:  dep.Password,
		uid:       dep.UID,
		oid:       dep.OID,
		clock:     dep.Clock,
		jwt:       dep.JWT,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

// statusBlocks maps each non-active account status to the message users see
// when they try to authenticate with it.
var statusBlocks = map[entity.UserStatus]string{
	entity.UserStatusUnknown:    "account status is unrecognized",
	entity.UserStatusUnverified: "email not verified",
	entity.UserStatusBanned:     "account is banned",
	entity.UserStatusInactive:   "account is deleted",
}

func (s *Usecase) ensureUserStatusAllowed(ctx context.Context, userID int64, status entity.UserStatus) error {
	msg, blocked := statusBlocks[status.Ensure()]
	if !blocked {
		return nil
	}

	slog.WarnContext(ctx, "user account may not authenticate", "user_id", userID, "reason", msg)
	return goerror.NewBusiness(msg, goerror.CodeForbidden)
}

// otpOutcomeError translates a non-valid verification outcome into the
// user-facing business error. Mismatch and NotFound share one message so a
// caller cannot probe whether a recipient has a pending code.
func otpOutcomeError(reason otp.Reason) error {
	if reason == otp.ReasonExpired {
		return goerror.NewBusiness("expired OTP", goerror.CodeUnauthorized)
	}
	return goerror.NewBusiness("invalid OTP", goerror.CodeUnauthorized)
}
