package messaging

import "sync/atomic"

// ackOnce makes Ack and Nack idempotent. The first response wins and
// every later one is a no-op, which also lets drivers requeue messages
// the handler never answered.
type ackOnce struct {
	responded atomic.Bool
}

func (a *ackOnce) hasResponded() bool { return a.responded.Load() }

// markResponded records the response and reports whether one had
// already been recorded.
func (a *ackOnce) markResponded() bool { return a.responded.Swap(true) }
