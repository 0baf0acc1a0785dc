package messaging

import (
	"context"
	"fmt"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

// nsqMessage adapts *nsq.Message to the Message interface. NSQ carries a
// bare payload, so key, headers and attributes are always empty.
type nsqMessage struct {
	topic string
	msg   *nsq.Message

	ackOnce
}

func newNSQMessage(topic string, msg *nsq.Message) *nsqMessage {
	return &nsqMessage{topic: topic, msg: msg}
}

func (q *nsqMessage) Body() []byte { return q.msg.Body }

func (q *nsqMessage) Key() []byte { return nil }

func (q *nsqMessage) Headers() []Header { return nil }

func (q *nsqMessage) Attributes() map[string]string { return nil }

func (q *nsqMessage) ID() string { return fmt.Sprintf("%x", q.msg.ID) }

func (q *nsqMessage) Topic() string { return q.topic }

func (q *nsqMessage) Subject() string { return "" }

func (q *nsqMessage) Timestamp() time.Time { return time.Unix(0, q.msg.Timestamp) }

func (q *nsqMessage) Ack(ctx context.Context) error {
	return q.respond(ctx, q.msg.Finish)
}

func (q *nsqMessage) Nack(ctx context.Context) error {
	return q.respond(ctx, func() { q.msg.Requeue(0) })
}

// respond applies the first Ack or Nack and ignores the rest.
func (q *nsqMessage) respond(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !q.markResponded() {
		fn()
	}
	return nil
}

func (q *nsqMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.msg.Touch()
	return nil
}

func (q *nsqMessage) Metadata() map[string]any {
	return map[string]any{
		"attempts":      q.msg.Attempts,
		"nsqd_address":  q.msg.NSQDAddress,
		"raw_timestamp": q.msg.Timestamp,
	}
}

func (q *nsqMessage) Raw() any { return q.msg }
