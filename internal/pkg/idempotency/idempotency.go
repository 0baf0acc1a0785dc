// Package idempotency guards operations that must run at most once per
// key, using Redis as the shared state store.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sentinels reported when a previous run already owns or finished a key.
var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyCompleted  = errors.New("operation already completed")
	ErrAlreadyFailed     = errors.New("operation already failed")
	ErrInvalidState      = errors.New("invalid state")
)

// State is the recorded outcome of an operation key.
type State string

const (
	StateNone       State = "none"        // key is free, operation may proceed
	StateInProgress State = "in_progress" // another caller holds the key
	StateCompleted  State = "completed"   // a previous run succeeded
	StateFailed     State = "failed"      // a previous run failed
	StateError      State = "error"       // state could not be determined
)

func (s State) String() string { return string(s) }

// Idempotency coordinates at-most-once execution across processes.
type Idempotency interface {
	Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	MarkFailed(ctx context.Context, key string, ttl time.Duration) error
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// StateTracker is the Redis-backed implementation.
type StateTracker struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client) *StateTracker {
	return &StateTracker{rdb: rdb, prefix: "idempotency:"}
}

// Fallbacks applied when an Exec option is unset or non-positive.
const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = time.Minute
)

// Option adjusts Exec behavior.
type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration sets how long the in-progress lock lives before a
// crashed holder releases the key.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long completed and failed outcomes are remembered.
func WithStateTTL(ttl time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = ttl }
}

func newExecOptions(opts []Option) execOptions {
	eo := execOptions{
		lockDuration: defaultLockDuration,
		stateTTL:     defaultStateTTL,
	}
	for _, opt := range opts {
		opt(&eo)
	}
	if eo.lockDuration <= 0 {
		eo.lockDuration = defaultLockDuration
	}
	if eo.stateTTL <= 0 {
		eo.stateTTL = defaultStateTTL
	}
	return eo
}

// claim marks the key in-progress when it is free.
func (t *StateTracker) claim(ctx context.Context, fullKey string, lockDuration time.Duration) (bool, error) {
	return t.rdb.SetNX(ctx, fullKey, StateInProgress.String(), lockDuration).Result()
}

func parseState(v string) (State, error) {
	switch State(v) {
	case StateInProgress, StateCompleted, StateFailed:
		return State(v), nil
	default:
		return StateError, ErrInvalidState
	}
}

// Acquire attempts to claim the key. StateNone means the caller won the
// claim; any other state reports what happened to a previous run.
func (t *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fullKey := t.prefix + key

	// Two attempts cover the race where the key expires between the
	// failed SetNX and the Get that follows it.
	for range 2 {
		acquired, err := t.claim(ctx, fullKey, lockDuration)
		if err != nil {
			return StateError, err
		}
		if acquired {
			return StateNone, nil
		}

		v, err := t.rdb.Get(ctx, fullKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return StateError, err
		}
		return parseState(v)
	}

	return StateError, ErrInvalidState
}

func (t *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return t.rdb.Set(ctx, t.prefix+key, StateCompleted.String(), ttl).Err()
}

func (t *StateTracker) MarkFailed(ctx context.Context, key string, ttl time.Duration) error {
	return t.rdb.Set(ctx, t.prefix+key, StateFailed.String(), ttl).Err()
}

// priorRunError maps a non-free state onto the sentinel Exec reports.
func priorRunError(state State) error {
	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	default:
		return nil
	}
}

// Exec runs fn under the key's lock and records the outcome. When a
// previous run already claimed or finished the key, Exec returns the
// corresponding ErrAlready* sentinel without calling fn.
func (t *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	execOpt := newExecOptions(opts)

	state, err := t.Acquire(ctx, key, execOpt.lockDuration)
	if err != nil {
		return err
	}

	if prior := priorRunError(state); prior != nil {
		return prior
	}

	if err := fn(ctx); err != nil {
		if markErr := t.MarkFailed(ctx, key, execOpt.stateTTL); markErr != nil {
			return markErr
		}
		return err
	}

	return t.MarkCompleted(ctx, key, execOpt.stateTTL)
}
