package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
)

type fakeRemindDuer struct {
	mu      sync.Mutex
	calls   []entity.Cadence
	release chan struct{}
}

func (f *fakeRemindDuer) RemindDue(_ context.Context, cadence entity.Cadence) error {
	f.mu.Lock()
	f.calls = append(f.calls, cadence)
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	return nil
}

func (f *fakeRemindDuer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNew_RegistersAllCadences(t *testing.T) {
	s, err := New(&fakeRemindDuer{})
	require.NoError(t, err)

	assert.Len(t, s.cron.Entries(), len(entity.Cadences()))
	assert.Len(t, s.running, len(entity.Cadences()))
}

func TestTick_SkipsWhileInFlight(t *testing.T) {
	uc := &fakeRemindDuer{release: make(chan struct{})}
	s, err := New(uc)
	require.NoError(t, err)

	tick := s.tick(entity.CadenceDaily)

	done := make(chan struct{})
	go func() {
		tick()
		close(done)
	}()

	// wait until the first run is inside RemindDue
	require.Eventually(t, func() bool { return uc.callCount() == 1 }, time.Second, time.Millisecond)

	// a second tick while the first still runs must be dropped
	tick()
	assert.Equal(t, 1, uc.callCount())

	close(uc.release)
	<-done

	// with the first run finished the cadence can fire again
	uc.release = nil
	tick()
	assert.Equal(t, 2, uc.callCount())
}

func TestTick_IndependentCadences(t *testing.T) {
	uc := &fakeRemindDuer{release: make(chan struct{})}
	s, err := New(uc)
	require.NoError(t, err)

	daily := s.tick(entity.CadenceDaily)
	weekly := s.tick(entity.CadenceWeekly)

	done := make(chan struct{})
	go func() {
		daily()
		close(done)
	}()
	require.Eventually(t, func() bool { return uc.callCount() == 1 }, time.Second, time.Millisecond)

	// a different cadence is not blocked by the in-flight daily run
	go weekly()
	require.Eventually(t, func() bool { return uc.callCount() == 2 }, time.Second, time.Millisecond)

	close(uc.release)
	<-done
}

func TestStop_WaitsForCompletion(t *testing.T) {
	s, err := New(&fakeRemindDuer{})
	require.NoError(t, err)

	s.Start()

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
