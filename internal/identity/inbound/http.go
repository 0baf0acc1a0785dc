package inbound

import (
	"context"

	"github.com/shandysiswandi/diarium/internal/identity/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/router"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)

	Register(ctx context.Context, in usecase.RegisterInput) error
	RegisterResend(ctx context.Context, in usecase.RegisterResendInput) error
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) error

	PasswordForgot(ctx context.Context, in usecase.PasswordForgotInput) error
	PasswordReset(ctx context.Context, in usecase.PasswordResetInput) error
	PasswordChange(ctx context.Context, in usecase.PasswordChangeInput) error

	Logout(ctx context.Context, in usecase.LogoutInput) error
	LogoutAll(ctx context.Context, in usecase.LogoutAllInput) error
}

// RegisterHTTPEndpoint mounts the identity routes. Logout, logout-all,
// and password change require a valid access token; the rest are public.
func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	h := &HTTPEndpoint{uc: uc}

	// sessions
	r.POST("/api/v1/identity/login", h.Login)
	r.POST("/api/v1/identity/refresh", h.RefreshToken)
	r.POST("/api/v1/identity/logout", h.Logout)
	r.POST("/api/v1/identity/logout-all", h.LogoutAll)

	// registration
	r.POST("/api/v1/identity/register", h.Register)
	r.POST("/api/v1/identity/register/resend", h.RegisterResend)
	r.POST("/api/v1/identity/register/verify", h.RegisterVerify)

	// passwords
	r.POST("/api/v1/identity/password/forgot", h.PasswordForgot)
	r.POST("/api/v1/identity/password/reset", h.PasswordReset)
	r.POST("/api/v1/identity/password/change", h.PasswordChange)
}
