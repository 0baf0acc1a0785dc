package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
	"github.com/shandysiswandi/diarium/internal/identity/otp"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
	"github.com/shandysiswandi/diarium/internal/pkg/hash"
	"github.com/shandysiswandi/diarium/internal/pkg/idempotency"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/validator"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type seqNumberID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqNumberID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type fixedStringID struct {
	value string
}

func (f *fixedStringID) Generate() string { return f.value }

// fakeConfig overrides only the keys the usecases read. Any other lookup
// panics, which is exactly what a test should do for an unexpected read.
type fakeConfig struct {
	config.Config
}

func (fakeConfig) GetMinute(string) time.Duration { return 10 * time.Minute }
func (fakeConfig) GetDay(string) time.Duration    { return 7 * 24 * time.Hour }
func (fakeConfig) GetInt(string) int              { return 6 }
func (fakeConfig) GetSecond(string) time.Duration { return 300 * time.Second }

// passThroughIdemp runs the function directly; lock behavior is covered by the
// idempotency package itself.
type passThroughIdemp struct{}

func (passThroughIdemp) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}
func (passThroughIdemp) MarkCompleted(context.Context, string, time.Duration) error { return nil }
func (passThroughIdemp) MarkFailed(context.Context, string, time.Duration) error    { return nil }
func (passThroughIdemp) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...idempotency.Option) error {
	return fn(ctx)
}

// fakeRepo backs both the usecase repo interface and the OTP engine store.
type fakeRepo struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	creds  map[int64]string
	otps   map[int64]entity.OTP
	tokens map[int64]entity.RefreshToken

	published []UserRegistrationEvent
	forgot    []UserForgotPasswordEvent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  map[string]*entity.User{},
		creds:  map[int64]string{},
		otps:   map[int64]entity.OTP{},
		tokens: map[int64]entity.RefreshToken{},
	}
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetUserLoginInfo(_ context.Context, email string) (*entity.UserLoginInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &entity.UserLoginInfo{ID: u.ID, Email: u.Email, Status: u.Status, Password: f.creds[u.ID]}, nil
}

func (f *fakeRepo) GetUserCredentialInfo(_ context.Context, id int64) (*entity.UserCredentialInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return &entity.UserCredentialInfo{ID: u.ID, Email: u.Email, Status: u.Status, Password: f.creds[id]}, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeRepo) GetUserRefreshToken(context.Context, string) (*entity.UserRefreshToken, error) {
	return nil, goerror.ErrNotFound
}

func (f *fakeRepo) CreateRefreshToken(_ context.Context, in entity.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[in.ID] = in
	return nil
}

func (f *fakeRepo) UpdateUserStatus(_ context.Context, id int64, status entity.UserStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.Status = status
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (f *fakeRepo) UpdateUserPassword(_ context.Context, userID int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds[userID] = hash
	return nil
}

func (f *fakeRepo) RevokeRefreshToken(context.Context, string) error  { return nil }
func (f *fakeRepo) RevokeAllRefreshToken(context.Context, int64) error { return nil }

func (f *fakeRepo) NewRegistration(_ context.Context, user entity.NewUser, code entity.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.Email] = &entity.User{
		ID: user.ID, Email: user.Email, FirstName: user.FirstName, LastName: user.LastName, Status: user.Status,
	}
	f.creds[user.ID] = user.Password
	f.otps[code.ID] = code
	return nil
}

func (f *fakeRepo) RotateRefreshToken(context.Context, entity.RotateRefreshToken) error { return nil }

// OTP engine store surface.

func (f *fakeRepo) CreateOTP(_ context.Context, o entity.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps[o.ID] = o
	return nil
}

func (f *fakeRepo) latestOTP(recipient string, unusedOnly bool) (*entity.OTP, error) {
	var best *entity.OTP
	for _, rec := range f.otps {
		if rec.Recipient != recipient || (unusedOnly && rec.IsUsed) {
			continue
		}
		if best == nil ||
			rec.CreatedAt.After(best.CreatedAt) ||
			(rec.CreatedAt.Equal(best.CreatedAt) && rec.ID > best.ID) {
			cp := rec
			best = &cp
		}
	}
	if best == nil {
		return nil, goerror.ErrNotFound
	}
	return best, nil
}

func (f *fakeRepo) LatestUnusedOTP(_ context.Context, recipient string) (*entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latestOTP(recipient, true)
}

func (f *fakeRepo) LatestOTP(_ context.Context, recipient string) (*entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latestOTP(recipient, false)
}

func (f *fakeRepo) MarkOTPUsed(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.otps[id]
	if !ok || rec.IsUsed {
		return false, nil
	}
	rec.IsUsed = true
	f.otps[id] = rec
	return true, nil
}

func (f *fakeRepo) DeleteOTP(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.otps, id)
	return nil
}

func (f *fakeRepo) PublishUserRegistration(_ context.Context, msg UserRegistrationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeRepo) PublishUserForgotPassword(_ context.Context, msg UserForgotPasswordEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgot = append(f.forgot, msg)
	return nil
}

type testHarness struct {
	uc    *Usecase
	repo  *fakeRepo
	clock *fakeClock
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	repo := newFakeRepo()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	ids := &seqNumberID{}

	engine := otp.NewEngine(repo, clk, ids, otp.Config{})

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: repo,
		OTPEngine:     engine,
		Idempotency:   passThroughIdemp{},
		Validator:     v,
		Config:        fakeConfig{},
		HMAC:          hash.NewHMACSHA256("test-secret"),
		Password:      hash.NewBcrypt(bcrypt.MinCost, ""),
		UID:           ids,
		OID:           &fixedStringID{value: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"},
		Clock:         clk,
		JWT:           nil,
		Instrument:    instrument.NewNoop(),
	})

	return &testHarness{uc: uc, repo: repo, clock: clk}
}

func (h *testHarness) register(t *testing.T, email string) entity.OTP {
	t.Helper()

	err := h.uc.Register(t.Context(), RegisterInput{
		Email:     email,
		Password:  "super-secret-1",
		FirstName: "Dina",
	})
	require.NoError(t, err)

	code, err := h.repo.LatestUnusedOTP(t.Context(), email)
	require.NoError(t, err)
	return *code
}

func TestRegister(t *testing.T) {
	h := newTestHarness(t)

	code := h.register(t, "dina@example.com")
	assert.Len(t, code.Code, 6)
	assert.Equal(t, 10, code.ExpiryMinutes)
	assert.Equal(t, entity.OTPKindRegistration, code.Kind)

	require.Len(t, h.repo.published, 1)
	assert.Equal(t, code.Code, h.repo.published[0].OTPCode)
	assert.Equal(t, "dina@example.com", h.repo.published[0].Email)

	user, err := h.repo.GetUserByEmail(t.Context(), "dina@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusUnverified, user.Status)

	// duplicate unverified signup is refused
	err = h.uc.Register(t.Context(), RegisterInput{
		Email:     "Dina@Example.com",
		Password:  "super-secret-1",
		FirstName: "Dina",
	})
	require.Error(t, err)
}

func TestRegisterVerify(t *testing.T) {
	h := newTestHarness(t)
	code := h.register(t, "dina@example.com")

	t.Run("unknown email reads as invalid otp", func(t *testing.T) {
		err := h.uc.RegisterVerify(t.Context(), RegisterVerifyInput{Email: "ghost@example.com", OTPCode: "123456"})
		require.EqualError(t, err, "invalid OTP")
	})

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if wrong == code.Code {
			wrong = "000001"
		}
		err := h.uc.RegisterVerify(t.Context(), RegisterVerifyInput{Email: "dina@example.com", OTPCode: wrong})
		require.EqualError(t, err, "invalid OTP")
	})

	t.Run("valid code activates", func(t *testing.T) {
		err := h.uc.RegisterVerify(t.Context(), RegisterVerifyInput{Email: "dina@example.com", OTPCode: code.Code})
		require.NoError(t, err)

		user, err := h.repo.GetUserByEmail(t.Context(), "dina@example.com")
		require.NoError(t, err)
		assert.Equal(t, entity.UserStatusActive, user.Status)
	})

	t.Run("code cannot be spent twice", func(t *testing.T) {
		err := h.uc.RegisterVerify(t.Context(), RegisterVerifyInput{Email: "dina@example.com", OTPCode: code.Code})
		require.EqualError(t, err, "invalid OTP")
	})
}

func TestRegisterVerify_Expired(t *testing.T) {
	h := newTestHarness(t)
	code := h.register(t, "dina@example.com")

	h.clock.now = code.CreatedAt.Add(10 * time.Minute)
	err := h.uc.RegisterVerify(t.Context(), RegisterVerifyInput{Email: "dina@example.com", OTPCode: code.Code})
	require.EqualError(t, err, "expired OTP")
}

func TestRegisterResend(t *testing.T) {
	h := newTestHarness(t)
	code := h.register(t, "dina@example.com")

	t.Run("inside cool-down", func(t *testing.T) {
		h.clock.now = code.CreatedAt.Add(100 * time.Second)
		err := h.uc.RegisterResend(t.Context(), RegisterResendInput{Email: "dina@example.com"})
		require.EqualError(t, err, "please wait 200 seconds before requesting a new code")
		assert.Len(t, h.repo.published, 1, "refused resend must not notify")
	})

	t.Run("past cool-down issues and publishes", func(t *testing.T) {
		h.clock.now = code.CreatedAt.Add(301 * time.Second)
		err := h.uc.RegisterResend(t.Context(), RegisterResendInput{Email: "dina@example.com"})
		require.NoError(t, err)
		require.Len(t, h.repo.published, 2)

		fresh, err := h.repo.LatestUnusedOTP(t.Context(), "dina@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, code.ID, fresh.ID)
		assert.Equal(t, fresh.Code, h.repo.published[1].OTPCode)
	})

	t.Run("unknown email is silently accepted", func(t *testing.T) {
		err := h.uc.RegisterResend(t.Context(), RegisterResendInput{Email: "ghost@example.com"})
		require.NoError(t, err)
	})
}

func TestPasswordForgotAndReset(t *testing.T) {
	h := newTestHarness(t)
	code := h.register(t, "dina@example.com")

	err := h.uc.RegisterVerify(t.Context(), RegisterVerifyInput{Email: "dina@example.com", OTPCode: code.Code})
	require.NoError(t, err)

	err = h.uc.PasswordForgot(t.Context(), PasswordForgotInput{Email: "dina@example.com"})
	require.NoError(t, err)
	require.Len(t, h.repo.forgot, 1)

	resetCode := h.repo.forgot[0].OTPCode
	err = h.uc.PasswordReset(t.Context(), PasswordResetInput{
		Email:       "dina@example.com",
		OTPCode:     resetCode,
		NewPassword: "brand-new-pass-2",
	})
	require.NoError(t, err)

	info, err := h.repo.GetUserLoginInfo(t.Context(), "dina@example.com")
	require.NoError(t, err)
	assert.True(t, hash.NewBcrypt(bcrypt.MinCost, "").Verify(info.Password, "brand-new-pass-2"))

	// a consumed reset code is gone
	err = h.uc.PasswordReset(t.Context(), PasswordResetInput{
		Email:       "dina@example.com",
		OTPCode:     resetCode,
		NewPassword: "another-pass-3",
	})
	require.EqualError(t, err, "invalid OTP")
}

func TestPasswordForgot_UnknownEmailSilent(t *testing.T) {
	h := newTestHarness(t)

	err := h.uc.PasswordForgot(t.Context(), PasswordForgotInput{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.Empty(t, h.repo.forgot)
}
