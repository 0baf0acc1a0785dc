package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/mail"
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

type fakeConfig struct {
	config.Config
	fireEveryTick bool
}

func (c fakeConfig) GetBool(string) bool     { return c.fireEveryTick }
func (c fakeConfig) GetString(string) string { return "" }

type fakeRepo struct {
	mu         sync.Mutex
	deliveries map[int64]entity.EmailDelivery
	due        []entity.DueReminder
	firedOn    map[int64]time.Time
	listErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		deliveries: map[int64]entity.EmailDelivery{},
		firedOn:    map[int64]time.Time{},
	}
}

func (f *fakeRepo) CreateEmailDelivery(_ context.Context, in entity.EmailDelivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries[in.ID] = in
	return nil
}

func (f *fakeRepo) UpdateEmailDeliveryStatus(_ context.Context, in entity.UpdateEmailDelivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deliveries[in.ID]
	if !ok {
		return errors.New("delivery not found")
	}
	d.Status = in.Status
	d.Detail = in.Detail
	f.deliveries[in.ID] = d
	return nil
}

func (f *fakeRepo) ListDueReminders(_ context.Context, _ int16, today time.Time, skipFiredOn bool) ([]entity.DueReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if !skipFiredOn {
		return f.due, nil
	}
	var out []entity.DueReminder
	for _, r := range f.due {
		if on, ok := f.firedOn[r.ReminderID]; ok && !on.Before(today) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo) MarkReminderFired(_ context.Context, id int64, on time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.firedOn[id] = on
	return nil
}

func (f *fakeRepo) statuses() map[entity.DeliveryStatus]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[entity.DeliveryStatus]int{}
	for _, d := range f.deliveries {
		out[d.Status]++
	}
	return out
}

// fakeMail rejects recipients listed in failFor and records the rest.
type fakeMail struct {
	mu      sync.Mutex
	sent    []mail.Message
	failFor map[string]struct{}
}

func newFakeMail() *fakeMail {
	return &fakeMail{failFor: map[string]struct{}{}}
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, to := range msg.To {
		if _, bad := f.failFor[to]; bad {
			return errors.New("smtp: mailbox unavailable")
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

type testHarness struct {
	uc   *Usecase
	repo *fakeRepo
	mail *fakeMail
	clk  *fakeClock
}

func newTestHarness(t *testing.T, fireEveryTick bool) *testHarness {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	repo := newFakeRepo()
	ml := newFakeMail()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}

	uc := NewNotification(Dependency{
		RepoDB:     repo,
		RepoMail:   ml,
		Config:     fakeConfig{fireEveryTick: fireEveryTick},
		UID:        &seqNumberID{},
		Clock:      clk,
		Validator:  v,
		Instrument: instrument.NewNoop(),
	})

	return &testHarness{uc: uc, repo: repo, mail: ml, clk: clk}
}

func TestConsumeUserRegistration(t *testing.T) {
	h := newTestHarness(t, true)

	err := h.uc.ConsumeUserRegistration(t.Context(), ConsumeUserRegistrationInput{
		UserID:    7,
		Email:     "dina@example.com",
		FirstName: "Dina",
		OTPCode:   "123456",
	})
	require.NoError(t, err)

	require.Len(t, h.mail.sent, 1)
	msg := h.mail.sent[0]
	assert.Equal(t, []string{"dina@example.com"}, msg.To)
	assert.Equal(t, "Verify your email", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "123456")
	assert.Contains(t, msg.HTMLBody, "Dina")
	assert.Contains(t, msg.HTMLBody, "2025")

	assert.Equal(t, map[entity.DeliveryStatus]int{entity.DeliveryStatusSent: 1}, h.repo.statuses())
}

func TestConsumeUserRegistration_InvalidPayloadDropped(t *testing.T) {
	h := newTestHarness(t, true)

	err := h.uc.ConsumeUserRegistration(t.Context(), ConsumeUserRegistrationInput{
		UserID:  7,
		Email:   "not-an-email",
		OTPCode: "123456",
	})
	require.NoError(t, err, "bad event must be dropped, not retried")
	assert.Empty(t, h.mail.sent)
	assert.Empty(t, h.repo.deliveries)
}

func TestConsumeUserForgotPassword(t *testing.T) {
	h := newTestHarness(t, true)

	err := h.uc.ConsumeUserForgotPassword(t.Context(), ConsumeUserForgotPasswordInput{
		UserID:    7,
		Email:     "dina@example.com",
		FirstName: "Dina",
		OTPCode:   "654321",
	})
	require.NoError(t, err)

	require.Len(t, h.mail.sent, 1)
	assert.Equal(t, "Reset your password", h.mail.sent[0].Subject)
	assert.Contains(t, h.mail.sent[0].HTMLBody, "654321")
}

func TestConsumeNoteExport(t *testing.T) {
	h := newTestHarness(t, true)

	err := h.uc.ConsumeNoteExport(t.Context(), ConsumeNoteExportInput{
		UserID:      7,
		Email:       "dina@example.com",
		FirstName:   "Dina",
		DownloadURL: "https://signed.example.com/exports/7/notes.csv",
		NoteCount:   12,
	})
	require.NoError(t, err)

	require.Len(t, h.mail.sent, 1)
	assert.Equal(t, "Your notes export is ready", h.mail.sent[0].Subject)
	assert.Contains(t, h.mail.sent[0].HTMLBody, "https://signed.example.com/exports/7/notes.csv")
	assert.Contains(t, h.mail.sent[0].HTMLBody, "12")
}

func TestConsumeEmailFailureRecorded(t *testing.T) {
	h := newTestHarness(t, true)
	h.mail.failFor["dina@example.com"] = struct{}{}

	err := h.uc.ConsumeUserRegistration(t.Context(), ConsumeUserRegistrationInput{
		UserID:    7,
		Email:     "dina@example.com",
		FirstName: "Dina",
		OTPCode:   "123456",
	})
	require.Error(t, err)

	assert.Equal(t, map[entity.DeliveryStatus]int{entity.DeliveryStatusFailed: 1}, h.repo.statuses())
}

func TestRemindDue_PerRecordIsolation(t *testing.T) {
	h := newTestHarness(t, true)
	h.repo.due = []entity.DueReminder{
		{ReminderID: 1, Message: "water the plants", NoteTitle: "garden", OwnerEmail: "a@example.com", OwnerFirstName: "Ana"},
		{ReminderID: 2, Message: "pay rent", NoteTitle: "bills", OwnerEmail: "broken@example.com", OwnerFirstName: "Ben"},
		{ReminderID: 3, Message: "call mom", NoteTitle: "family", OwnerEmail: "c@example.com", OwnerFirstName: "Cara"},
	}
	h.mail.failFor["broken@example.com"] = struct{}{}

	err := h.uc.RemindDue(t.Context(), entity.CadenceDaily)
	require.NoError(t, err, "one bad recipient must not fail the batch")

	require.Len(t, h.mail.sent, 2, "the two healthy recipients still get their mail")
	assert.Equal(t, map[entity.DeliveryStatus]int{
		entity.DeliveryStatusSent:   2,
		entity.DeliveryStatusFailed: 1,
	}, h.repo.statuses())

	assert.Contains(t, h.mail.sent[0].HTMLBody, "water the plants")
	assert.Equal(t, "Reminder: garden", h.mail.sent[0].Subject)
}

func TestRemindDue_FireEveryTick(t *testing.T) {
	h := newTestHarness(t, true)
	h.repo.due = []entity.DueReminder{
		{ReminderID: 1, Message: "stretch", NoteTitle: "health", OwnerEmail: "a@example.com", OwnerFirstName: "Ana"},
	}

	require.NoError(t, h.uc.RemindDue(t.Context(), entity.CadenceEvery30Min))
	require.NoError(t, h.uc.RemindDue(t.Context(), entity.CadenceEvery30Min))

	assert.Len(t, h.mail.sent, 2, "every tick fires again")
	assert.Empty(t, h.repo.firedOn, "no suppression bookkeeping in fire-every-tick mode")
}

func TestRemindDue_SuppressedPerDay(t *testing.T) {
	h := newTestHarness(t, false)
	h.repo.due = []entity.DueReminder{
		{ReminderID: 1, Message: "stretch", NoteTitle: "health", OwnerEmail: "a@example.com", OwnerFirstName: "Ana"},
	}

	require.NoError(t, h.uc.RemindDue(t.Context(), entity.CadenceEvery30Min))
	require.NoError(t, h.uc.RemindDue(t.Context(), entity.CadenceEvery30Min))
	assert.Len(t, h.mail.sent, 1, "second tick on the same day is suppressed")

	h.clk.now = h.clk.now.Add(24 * time.Hour)
	require.NoError(t, h.uc.RemindDue(t.Context(), entity.CadenceEvery30Min))
	assert.Len(t, h.mail.sent, 2, "next day fires again")
}

func TestRemindDue_ListError(t *testing.T) {
	h := newTestHarness(t, true)
	h.repo.listErr = errors.New("connection refused")

	err := h.uc.RemindDue(t.Context(), entity.CadenceDaily)
	require.Error(t, err)
	assert.Empty(t, h.mail.sent)
}
