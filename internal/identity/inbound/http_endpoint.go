package inbound

import (
	"github.com/shandysiswandi/diarium/internal/identity/usecase"
	"github.com/shandysiswandi/diarium/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for authentication and account workflows.
type HTTPEndpoint struct {
	uc uc
}

// Login authenticates a user and returns tokens.
// @Summary Authenticate user
// @Description Validates credentials and returns access/refresh tokens.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Authentication result"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/identity/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	req, err := router.Decode[LoginRequest](r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// RefreshToken issues a new access token using a refresh token.
// @Summary Refresh access token
// @Description Exchanges a refresh token for a new access/refresh token pair.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token payload"
// @Success 200 {object} router.successResponse{data=RefreshTokenResponse} "Token refresh result"
// @Failure 401 {object} router.errorResponse "Invalid refresh token"
// @Router /api/v1/identity/refresh [post]
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	req, err := router.Decode[RefreshTokenRequest](r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return nil, err
	}

	return RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Register creates a new user account and sends a verification code.
// @Summary Register user
// @Description Creates an unverified account and emails a one-time verification code.
// @Tags Identity, Authentication
// @Accept json
// @Param request body RegisterRequest true "Registration payload"
// @Success 200 {object} router.successResponse "Registration accepted"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/identity/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	req, err := router.Decode[RegisterRequest](r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}); err != nil {
		return nil, err
	}

	return &RegisterResponse{}, nil
}

// RegisterResend replaces a stale verification code with a fresh one.
// @Summary Resend verification code
// @Description Issues a new verification code unless the previous one is still inside the cool-down window.
// @Tags Identity, Authentication
// @Accept json
// @Param request body RegisterResendRequest true "Resend payload"
// @Success 200 {object} router.successResponse "Resend accepted"
// @Failure 429 {object} router.errorResponse "Cool-down still active"
// @Router /api/v1/identity/register/resend [post]
func (h *HTTPEndpoint) RegisterResend(r *router.Request) (any, error) {
	req, err := router.Decode[RegisterResendRequest](r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.RegisterResend(r.Context(), usecase.RegisterResendInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return &RegisterResendResponse{}, nil
}

// RegisterVerify activates an account using the emailed code.
// @Summary Verify registration
// @Description Consumes the one-time code and activates the account.
// @Tags Identity, Authentication
// @Accept json
// @Param request body RegisterVerifyRequest true "Verification payload"
// @Success 200 {object} router.successResponse "Account activated"
// @Failure 401 {object} router.errorResponse "Invalid or expired OTP"
// @Router /api/v1/identity/register/verify [post]
func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	req, err := router.Decode[RegisterVerifyRequest](r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.RegisterVerify(r.Context(), usecase.RegisterVerifyInput{
		Email:   req.Email,
		OTPCode: req.OTPCode,
	}); err != nil {
		return nil, err
	}

	return &RegisterVerifyResponse{}, nil
}

// PasswordForgot starts the password reset flow.
// @Summary Request password reset
// @Description Emails a one-time reset code when the account exists.
// @Tags Identity, Password
// @Accept json
// @Param request body PasswordForgotRequest true "Forgot password payload"
// @Success 200 {object} router.successResponse "Request accepted"
// @Router /api/v1/identity/password/forgot [post]
func (h *HTTPEndpoint) PasswordForgot(r *router.Request) (any, error) {
	req, err := router.Decode[PasswordForgotRequest](r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.PasswordForgot(r.Context(), usecase.PasswordForgotInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return &PasswordForgotResponse{}, nil
}

// PasswordReset sets a new password using the emailed code.
// @Summary Reset password
// @Description Consumes the one-time reset code and stores the new password.
// @Tags Identity, Password
// @Accept json
// @Param request body PasswordResetRequest true "Reset payload"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Invalid or expired OTP"
// @Router /api/v1/identity/password/reset [post]
func (h *HTTPEndpoint) PasswordReset(r *router.Request) (any, error) {
	req, err := router.Decode[PasswordResetRequest](r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.PasswordReset(r.Context(), usecase.PasswordResetInput{
		Email:       req.Email,
		OTPCode:     req.OTPCode,
		NewPassword: req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// PasswordChange updates the password of the authenticated user.
// @Summary Change password
// @Description Verifies the current password and stores the new one.
// @Tags Identity, Password
// @Accept json
// @Security BearerAuth
// @Param request body PasswordChangeRequest true "Change payload"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Invalid current password"
// @Router /api/v1/identity/password/change [post]
func (h *HTTPEndpoint) PasswordChange(r *router.Request) (any, error) {
	req, err := router.Decode[PasswordChangeRequest](r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.PasswordChange(r.Context(), usecase.PasswordChangeInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// Logout revokes the presented refresh token.
// @Summary Logout
// @Tags Identity, Authentication
// @Accept json
// @Security BearerAuth
// @Param request body LogoutRequest true "Logout payload"
// @Success 204 "No Content"
// @Router /api/v1/identity/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	req, err := router.Decode[LogoutRequest](r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{RefreshToken: req.RefreshToken}); err != nil {
		return nil, err
	}

	return nil, nil
}

// LogoutAll revokes every refresh token of the authenticated user.
// @Summary Logout everywhere
// @Tags Identity, Authentication
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /api/v1/identity/logout-all [post]
func (h *HTTPEndpoint) LogoutAll(r *router.Request) (any, error) {
	if err := h.uc.LogoutAll(r.Context(), usecase.LogoutAllInput{}); err != nil {
		return nil, err
	}

	return nil, nil
}
