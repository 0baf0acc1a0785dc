package otp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type fakeStore struct {
	mu            sync.Mutex
	records       map[int64]entity.OTP
	forceMarkLost bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[int64]entity.OTP{}}
}

func (s *fakeStore) CreateOTP(_ context.Context, o entity.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[o.ID] = o
	return nil
}

func (s *fakeStore) latest(recipient string, unusedOnly bool) (*entity.OTP, error) {
	var best *entity.OTP
	for _, rec := range s.records {
		if rec.Recipient != recipient {
			continue
		}
		if unusedOnly && rec.IsUsed {
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

func (s *fakeStore) LatestUnusedOTP(_ context.Context, recipient string) (*entity.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest(recipient, true)
}

func (s *fakeStore) LatestOTP(_ context.Context, recipient string) (*entity.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest(recipient, false)
}

func (s *fakeStore) MarkOTPUsed(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forceMarkLost {
		return false, nil
	}
	rec, ok := s.records[id]
	if !ok || rec.IsUsed {
		return false, nil
	}
	rec.IsUsed = true
	s.records[id] = rec
	return true, nil
}

func (s *fakeStore) DeleteOTP(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func newTestEngine(store Store, clk *fakeClock, cfg Config) *Engine {
	return NewEngine(store, clk, &seqID{}, cfg)
}

func TestEngine_Issue(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	first, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)
	assert.Len(t, first.Code, DefaultCodeLength)
	assert.False(t, first.IsUsed)
	assert.Equal(t, clk.now, first.CreatedAt)
	assert.Equal(t, 5, first.ExpiryMinutes)
	for _, ch := range first.Code {
		assert.GreaterOrEqual(t, ch, '0')
		assert.LessOrEqual(t, ch, '9')
	}

	second, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com", WithLength(8), WithExpiry(10*time.Minute))
	require.NoError(t, err)
	assert.Len(t, second.Code, 8)
	assert.Equal(t, 10, second.ExpiryMinutes)

	// issuing never touches the earlier record
	kept := store.records[first.ID]
	assert.False(t, kept.IsUsed)
	assert.Equal(t, first.Code, kept.Code)
}

func TestEngine_Verify_NoRecord(t *testing.T) {
	eng := newTestEngine(newFakeStore(), &fakeClock{now: time.Now()}, Config{})

	res, err := eng.Verify(t.Context(), "nobody@b.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, res.Reason)
	assert.Nil(t, res.OTP)
}

func TestEngine_Verify_ExpiryBoundary(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{Expiry: 5 * time.Minute})

	issued, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)

	// one instant before the boundary the code still verifies
	clk.now = issued.CreatedAt.Add(5*time.Minute - time.Nanosecond)
	res, err := eng.Verify(t.Context(), "a@b.com", issued.Code)
	require.NoError(t, err)
	assert.Equal(t, ReasonValid, res.Reason)

	// exactly at created_at+expiry the code is already expired
	issued2, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)
	clk.now = issued2.CreatedAt.Add(5 * time.Minute)
	res, err = eng.Verify(t.Context(), "a@b.com", issued2.Code)
	require.NoError(t, err)
	assert.Equal(t, ReasonExpired, res.Reason)
}

func TestEngine_Verify_ExpiredBeatsMismatch(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	issued, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)

	clk.now = issued.CreatedAt.Add(time.Hour)
	res, err := eng.Verify(t.Context(), "a@b.com", "wrong!")
	require.NoError(t, err)
	assert.Equal(t, ReasonExpired, res.Reason)
}

func TestEngine_Verify_SingleUse(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	issued, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)

	res, err := eng.Verify(t.Context(), "a@b.com", issued.Code)
	require.NoError(t, err)
	assert.Equal(t, ReasonValid, res.Reason)

	// the consumed record is no longer a candidate
	res, err = eng.Verify(t.Context(), "a@b.com", issued.Code)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, res.Reason)
}

func TestEngine_Verify_TargetsNewestUnused(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	older, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)
	newer, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)
	require.NotEqual(t, older.Code, newer.Code, "retry with different codes if this ever collides")

	// the older unused code no longer matches because only the newest is read
	res, err := eng.Verify(t.Context(), "a@b.com", older.Code)
	require.NoError(t, err)
	assert.Equal(t, ReasonMismatch, res.Reason)

	res, err = eng.Verify(t.Context(), "a@b.com", newer.Code)
	require.NoError(t, err)
	assert.Equal(t, ReasonValid, res.Reason)
}

func TestEngine_Verify_LostConsumeRace(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	issued, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)

	store.forceMarkLost = true
	res, err := eng.Verify(t.Context(), "a@b.com", issued.Code)
	require.NoError(t, err)
	assert.Equal(t, ReasonMismatch, res.Reason)
}

func TestEngine_Verify_ConcurrentSpendOnce(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	issued, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)

	const workers = 16
	results := make(chan Reason, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			res, verr := eng.Verify(context.Background(), "a@b.com", issued.Code)
			require.NoError(t, verr)
			results <- res.Reason
		})
	}
	wg.Wait()
	close(results)

	valid := 0
	for reason := range results {
		if reason == ReasonValid {
			valid++
		}
	}
	assert.Equal(t, 1, valid, "exactly one concurrent verify may consume the code")
}

func TestEngine_Resend_CoolDownActive(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	issued, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)

	clk.now = issued.CreatedAt.Add(100 * time.Second)
	res, err := eng.Resend(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, ReasonCoolDownActive, res.Reason)
	assert.Equal(t, 200*time.Second, res.RetryAfter)
	assert.Len(t, store.records, 1, "refused resend must not mutate anything")
}

func TestEngine_Resend_CoolDownCountsUsedRecords(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	issued, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)

	res, err := eng.Verify(t.Context(), "a@b.com", issued.Code)
	require.NoError(t, err)
	require.Equal(t, ReasonValid, res.Reason)

	// the record is spent but still too fresh to replace
	clk.now = issued.CreatedAt.Add(10 * time.Second)
	resend, err := eng.Resend(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, ReasonCoolDownActive, resend.Reason)
}

func TestEngine_Resend_ReplacesStaleRecord(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	issued, err := eng.Issue(t.Context(), entity.OTPKindRegistration, "a@b.com")
	require.NoError(t, err)

	clk.now = issued.CreatedAt.Add(300 * time.Second)
	res, err := eng.Resend(t.Context(), entity.OTPKindRegistration, "a@b.com", WithExpiry(10*time.Minute))
	require.NoError(t, err)
	require.Equal(t, ReasonValid, res.Reason)
	require.NotNil(t, res.OTP)

	assert.Len(t, store.records, 1, "stale record deleted, exactly one fresh record")
	_, gone := store.records[issued.ID]
	assert.False(t, gone)
	assert.Equal(t, clk.now, res.OTP.CreatedAt)
}

func TestEngine_Resend_FirstCodeForRecipient(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk, Config{})

	res, err := eng.Resend(t.Context(), entity.OTPKindPasswordReset, "new@b.com")
	require.NoError(t, err)
	assert.Equal(t, ReasonValid, res.Reason)
	require.NotNil(t, res.OTP)
	assert.Equal(t, entity.OTPKindPasswordReset, res.OTP.Kind)
}
