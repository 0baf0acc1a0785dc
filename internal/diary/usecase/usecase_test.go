package usecase

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
	"github.com/shandysiswandi/diarium/internal/pkg/goroutine"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/jwt"
	"github.com/shandysiswandi/diarium/internal/pkg/storage"
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
}

func (fakeConfig) GetString(string) string        { return "diarium-exports" }
func (fakeConfig) GetMinute(string) time.Duration { return 60 * time.Minute }

// fakeStorage records uploads and hands back a deterministic signed URL.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) PutObject(_ context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = body

	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(body)), ContentType: opts.ContentType}, nil
}

func (f *fakeStorage) GetObject(context.Context, string, string) (io.ReadCloser, storage.ObjectInfo, error) {
	return nil, storage.ObjectInfo{}, goerror.ErrNotFound
}

func (f *fakeStorage) DeleteObject(context.Context, string, string) error { return nil }

func (f *fakeStorage) PresignGet(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://signed.example.com/" + bucket + "/" + key, nil
}

type fakeRepo struct {
	mu         sync.Mutex
	clock      *fakeClock
	categories []entity.Category
	notes      map[int64]entity.Note
	reminders  map[int64]entity.Reminder
	owners     map[int64]entity.OwnerInfo

	exported []NoteExportedEvent
}

func newFakeRepo(clk *fakeClock) *fakeRepo {
	return &fakeRepo{
		clock: clk,
		categories: []entity.Category{
			{ID: 1, Name: "Personal"},
			{ID: 2, Name: "Work"},
		},
		notes:     map[int64]entity.Note{},
		reminders: map[int64]entity.Reminder{},
		owners: map[int64]entity.OwnerInfo{
			77: {ID: 77, Email: "dina@example.com", FirstName: "Dina"},
		},
	}
}

func (f *fakeRepo) ListCategories(context.Context) ([]entity.Category, error) {
	return f.categories, nil
}

func (f *fakeRepo) CreateNote(_ context.Context, in entity.NewNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	found := false
	for _, c := range f.categories {
		if c.ID == in.CategoryID {
			found = true
			break
		}
	}
	if !found {
		return goerror.ErrNotFound
	}

	f.notes[in.ID] = entity.Note{
		ID: in.ID, OwnerID: in.OwnerID, Title: in.Title, Content: in.Content,
		CategoryID: in.CategoryID, Priority: in.Priority, DueDate: in.DueDate,
		CreatedAt: f.clock.now, UpdatedAt: f.clock.now,
	}
	return nil
}

func (f *fakeRepo) GetNoteByID(_ context.Context, id, ownerID int64) (*entity.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || n.OwnerID != ownerID {
		return nil, goerror.ErrNotFound
	}
	return &n, nil
}

func (f *fakeRepo) ListNotes(_ context.Context, filter entity.NoteListFilter) ([]entity.Note, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.Note
	for _, n := range f.notes {
		if n.OwnerID != filter.OwnerID {
			continue
		}
		switch filter.FilterBy {
		case entity.NoteFilterUnfinished:
			if n.IsFinished {
				continue
			}
		case entity.NoteFilterDone:
			if !n.IsFinished {
				continue
			}
		case entity.NoteFilterOverdue:
			if !n.IsDue(filter.Today) {
				continue
			}
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) ListNotesForExport(_ context.Context, ownerID int64) ([]entity.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Note
	for _, n := range f.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateNote(_ context.Context, in entity.PatchNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[in.ID]
	if !ok || n.OwnerID != in.OwnerID {
		return goerror.ErrNotFound
	}
	n.Title, n.Content, n.CategoryID = in.Title, in.Content, in.CategoryID
	n.Priority, n.DueDate, n.IsFinished = in.Priority, in.DueDate, in.IsFinished
	n.UpdatedAt = f.clock.now
	f.notes[in.ID] = n
	return nil
}

func (f *fakeRepo) DeleteNote(_ context.Context, id, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || n.OwnerID != ownerID {
		return goerror.ErrNotFound
	}
	delete(f.notes, id)
	for rid, r := range f.reminders {
		if r.NoteID == id {
			delete(f.reminders, rid)
		}
	}
	return nil
}

func (f *fakeRepo) CreateReminder(_ context.Context, in entity.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	in.CreatedAt = f.clock.now
	in.UpdatedAt = f.clock.now
	f.reminders[in.ID] = in
	return nil
}

func (f *fakeRepo) reminderOwner(id int64) (entity.Reminder, int64, bool) {
	r, ok := f.reminders[id]
	if !ok {
		return entity.Reminder{}, 0, false
	}
	n, ok := f.notes[r.NoteID]
	if !ok {
		return entity.Reminder{}, 0, false
	}
	return r, n.OwnerID, true
}

func (f *fakeRepo) GetReminderByID(_ context.Context, id, ownerID int64) (*entity.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, owner, ok := f.reminderOwner(id)
	if !ok || owner != ownerID {
		return nil, goerror.ErrNotFound
	}
	return &r, nil
}

func (f *fakeRepo) ListReminders(_ context.Context, noteID, ownerID int64) ([]entity.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[noteID]
	if !ok || n.OwnerID != ownerID {
		return nil, nil
	}
	var out []entity.Reminder
	for _, r := range f.reminders {
		if r.NoteID == noteID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateReminder(_ context.Context, in entity.Reminder, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, owner, ok := f.reminderOwner(in.ID)
	if !ok || owner != ownerID {
		return goerror.ErrNotFound
	}
	r.StartDate, r.Cadence, r.Message = in.StartDate, in.Cadence, in.Message
	r.UpdatedAt = f.clock.now
	f.reminders[in.ID] = r
	return nil
}

func (f *fakeRepo) DeleteReminder(_ context.Context, id, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, owner, ok := f.reminderOwner(id)
	if !ok || owner != ownerID {
		return goerror.ErrNotFound
	}
	delete(f.reminders, id)
	return nil
}

func (f *fakeRepo) GetOwnerInfo(_ context.Context, ownerID int64) (*entity.OwnerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.owners[ownerID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &o, nil
}

func (f *fakeRepo) PublishNoteExported(_ context.Context, msg NoteExportedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported = append(f.exported, msg)
	return nil
}

type testHarness struct {
	uc     *Usecase
	repo   *fakeRepo
	store  *fakeStorage
	gorout *goroutine.Manager
	clock  *fakeClock
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	repo := newFakeRepo(clk)
	store := newFakeStorage()
	gorout := goroutine.NewManager(4)

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: repo,
		Storage:       store,
		Goroutine:     gorout,
		Validator:     v,
		Config:        fakeConfig{},
		UID:           &seqNumberID{},
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
	})

	return &testHarness{uc: uc, repo: repo, store: store, gorout: gorout, clock: clk}
}

func authCtx(t *testing.T, userID int64) context.Context {
	t.Helper()
	return jwt.SetAuth(t.Context(), jwt.Claims{UserID: userID, UserEmail: "dina@example.com"})
}

func (h *testHarness) createNote(t *testing.T, ctx context.Context, title, dueDate string) int64 {
	t.Helper()

	out, err := h.uc.NoteCreate(ctx, NoteCreateInput{
		Title:      title,
		Content:    "some content",
		CategoryID: 1,
		Priority:   "HIGH",
		DueDate:    dueDate,
	})
	require.NoError(t, err)
	return out.ID
}

func TestCategoryList(t *testing.T) {
	h := newTestHarness(t)

	categories, err := h.uc.CategoryList(authCtx(t, 77))
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestNoteCreate(t *testing.T) {
	h := newTestHarness(t)
	ctx := authCtx(t, 77)

	t.Run("happy path", func(t *testing.T) {
		id := h.createNote(t, ctx, "groceries", "2025-06-10")

		note, err := h.uc.NoteDetail(ctx, NoteDetailInput{ID: id})
		require.NoError(t, err)
		assert.Equal(t, "groceries", note.Title)
		assert.Equal(t, entity.PriorityHigh, note.Priority)
		assert.False(t, note.IsFinished)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := h.uc.NoteCreate(ctx, NoteCreateInput{
			Title:      "orphan",
			Content:    "x",
			CategoryID: 999,
			Priority:   "LOW",
			DueDate:    "2025-06-10",
		})
		require.EqualError(t, err, "category not found")
	})

	t.Run("bad priority", func(t *testing.T) {
		_, err := h.uc.NoteCreate(ctx, NoteCreateInput{
			Title:      "bad",
			Content:    "x",
			CategoryID: 1,
			Priority:   "URGENT",
			DueDate:    "2025-06-10",
		})
		require.Error(t, err)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := h.uc.NoteCreate(t.Context(), NoteCreateInput{
			Title:      "nope",
			Content:    "x",
			CategoryID: 1,
			Priority:   "LOW",
			DueDate:    "2025-06-10",
		})
		require.EqualError(t, err, "authentication required")
	})
}

func TestNoteList_FilterOverdue(t *testing.T) {
	h := newTestHarness(t)
	ctx := authCtx(t, 77)

	overdueID := h.createNote(t, ctx, "late", "2025-05-01")
	h.createNote(t, ctx, "future", "2025-12-01")
	doneID := h.createNote(t, ctx, "also late but done", "2025-05-01")

	err := h.uc.NoteUpdate(ctx, NoteUpdateInput{
		ID: doneID, Title: "also late but done", Content: "x",
		CategoryID: 1, Priority: "HIGH", DueDate: "2025-05-01", IsFinished: true,
	})
	require.NoError(t, err)

	out, err := h.uc.NoteList(ctx, NoteListInput{FilterBy: "overdue"})
	require.NoError(t, err)
	require.Len(t, out.Notes, 1)
	assert.Equal(t, overdueID, out.Notes[0].ID)

	out, err = h.uc.NoteList(ctx, NoteListInput{FilterBy: "done"})
	require.NoError(t, err)
	require.Len(t, out.Notes, 1)
	assert.Equal(t, doneID, out.Notes[0].ID)

	out, err = h.uc.NoteList(ctx, NoteListInput{})
	require.NoError(t, err)
	assert.Len(t, out.Notes, 3)
	assert.Equal(t, int64(3), out.Total)
	assert.Equal(t, int32(1), out.Page)
	assert.Equal(t, defaultPageSize, out.Size)
}

func TestNoteOwnerIsolation(t *testing.T) {
	h := newTestHarness(t)

	id := h.createNote(t, authCtx(t, 77), "mine", "2025-06-10")

	stranger := jwt.SetAuth(t.Context(), jwt.Claims{UserID: 88})
	_, err := h.uc.NoteDetail(stranger, NoteDetailInput{ID: id})
	require.EqualError(t, err, "note not found")

	err = h.uc.NoteDelete(stranger, NoteDeleteInput{ID: id})
	require.EqualError(t, err, "note not found")
}

func TestNoteDelete_CascadesReminders(t *testing.T) {
	h := newTestHarness(t)
	ctx := authCtx(t, 77)

	noteID := h.createNote(t, ctx, "with reminder", "2025-06-10")
	_, err := h.uc.ReminderCreate(ctx, ReminderCreateInput{
		NoteID:    noteID,
		StartDate: "2025-06-01",
		Cadence:   "DAILY",
		Message:   "do the thing",
	})
	require.NoError(t, err)

	err = h.uc.NoteDelete(ctx, NoteDeleteInput{ID: noteID})
	require.NoError(t, err)

	assert.Empty(t, h.repo.reminders, "reminders must go with the note")
	_, err = h.uc.ReminderList(ctx, ReminderListInput{NoteID: noteID})
	require.EqualError(t, err, "note not found")
}

func TestReminderLifecycle(t *testing.T) {
	h := newTestHarness(t)
	ctx := authCtx(t, 77)

	noteID := h.createNote(t, ctx, "watered plants", "2025-06-10")

	created, err := h.uc.ReminderCreate(ctx, ReminderCreateInput{
		NoteID:    noteID,
		StartDate: "2025-06-01",
		Cadence:   "WEEKLY",
		Message:   "water the plants",
	})
	require.NoError(t, err)

	reminders, err := h.uc.ReminderList(ctx, ReminderListInput{NoteID: noteID})
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, entity.CadenceWeekly, reminders[0].Cadence)

	err = h.uc.ReminderUpdate(ctx, ReminderUpdateInput{
		ID:        created.ID,
		StartDate: "2025-06-02",
		Cadence:   "MONTHLY",
		Message:   "water the plants monthly",
	})
	require.NoError(t, err)

	reminders, err = h.uc.ReminderList(ctx, ReminderListInput{NoteID: noteID})
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, entity.CadenceMonthly, reminders[0].Cadence)

	err = h.uc.ReminderDelete(ctx, ReminderDeleteInput{ID: created.ID})
	require.NoError(t, err)

	err = h.uc.ReminderDelete(ctx, ReminderDeleteInput{ID: created.ID})
	require.EqualError(t, err, "reminder not found")
}

func TestReminderCreate_ForeignNote(t *testing.T) {
	h := newTestHarness(t)

	noteID := h.createNote(t, authCtx(t, 77), "mine", "2025-06-10")

	stranger := jwt.SetAuth(t.Context(), jwt.Claims{UserID: 88})
	_, err := h.uc.ReminderCreate(stranger, ReminderCreateInput{
		NoteID:    noteID,
		StartDate: "2025-06-01",
		Cadence:   "DAILY",
		Message:   "sneaky",
	})
	require.EqualError(t, err, "note not found")
}

func TestNoteExport(t *testing.T) {
	h := newTestHarness(t)
	ctx := authCtx(t, 77)

	h.createNote(t, ctx, "first", "2025-06-10")
	h.createNote(t, ctx, "second", "2025-06-11")

	out, err := h.uc.NoteExport(ctx, NoteExportInput{Format: "csv"})
	require.NoError(t, err)
	assert.True(t, out.Accepted)

	require.NoError(t, h.gorout.Wait())

	require.Len(t, h.repo.exported, 1)
	evt := h.repo.exported[0]
	assert.Equal(t, int64(77), evt.UserID)
	assert.Equal(t, "dina@example.com", evt.Email)
	assert.Equal(t, 2, evt.NoteCount)
	assert.Contains(t, evt.DownloadURL, "https://signed.example.com/diarium-exports/exports/77/")

	require.Len(t, h.store.objects, 1)
	for _, body := range h.store.objects {
		content := string(body)
		assert.True(t, strings.HasPrefix(content, "id,title,content,category,priority,due_date,is_finished,created_at\n"))
		assert.Contains(t, content, "first")
		assert.Contains(t, content, "second")
	}
}

func TestNoteExport_BadFormat(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.uc.NoteExport(authCtx(t, 77), NoteExportInput{Format: "xml"})
	require.Error(t, err)
}
