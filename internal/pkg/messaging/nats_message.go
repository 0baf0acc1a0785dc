package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// natsMessage adapts *nats.Msg to the Message interface. Ack, Nack and
// Extend only have effect under JetStream; on core NATS the client reports
// them as unsupported and the wrapper treats that as success.
type natsMessage struct {
	msg        *nats.Msg
	receivedAt time.Time

	ackOnce
}

func newNATSMessage(msg *nats.Msg, receivedAt time.Time) *natsMessage {
	return &natsMessage{msg: msg, receivedAt: receivedAt}
}

func (n *natsMessage) Body() []byte { return n.msg.Data }

func (n *natsMessage) Key() []byte { return nil }

func (n *natsMessage) Headers() []Header {
	if len(n.msg.Header) == 0 {
		return nil
	}

	headers := make([]Header, 0, len(n.msg.Header))
	for key, values := range n.msg.Header {
		for _, v := range values {
			headers = append(headers, Header{Key: key, Value: []byte(v)})
		}
	}
	return headers
}

func (n *natsMessage) Attributes() map[string]string {
	if len(n.msg.Header) == 0 {
		return nil
	}

	attrs := make(map[string]string, len(n.msg.Header))
	for key, values := range n.msg.Header {
		if len(values) > 0 {
			attrs[key] = values[0]
		}
	}
	return attrs
}

func (n *natsMessage) ID() string { return "" }

func (n *natsMessage) Topic() string { return "" }

func (n *natsMessage) Subject() string { return n.msg.Subject }

func (n *natsMessage) Timestamp() time.Time { return n.receivedAt }

func (n *natsMessage) Ack(ctx context.Context) error {
	return n.respond(ctx, func() error { return n.msg.Ack() })
}

func (n *natsMessage) Nack(ctx context.Context) error {
	return n.respond(ctx, func() error { return n.msg.Nak() })
}

// respond applies the first Ack or Nack and swallows the "not JetStream"
// class of errors so core NATS subscribers behave like auto-ack queues.
func (n *natsMessage) respond(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.markResponded() {
		return nil
	}
	if err := fn(); err != nil && !natsAckUnsupported(err) {
		return err
	}
	return nil
}

func (n *natsMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.msg.InProgress(); err != nil && !natsAckUnsupported(err) {
		return err
	}
	return nil
}

func (n *natsMessage) Metadata() map[string]any {
	meta := map[string]any{"reply": n.msg.Reply}

	md, err := n.msg.Metadata()
	if err != nil || md == nil {
		return meta
	}

	meta["sequence_stream"] = md.Sequence.Stream
	meta["sequence_consumer"] = md.Sequence.Consumer
	meta["num_delivered"] = md.NumDelivered
	meta["num_pending"] = md.NumPending
	meta["timestamp"] = md.Timestamp
	meta["domain"] = md.Domain
	return meta
}

func (n *natsMessage) Raw() any { return n.msg }

func (n *natsMessage) String() string {
	return fmt.Sprintf("nats subject=%q", n.msg.Subject)
}

func natsAckUnsupported(err error) bool {
	return errors.Is(err, nats.ErrMsgNoReply) || errors.Is(err, nats.ErrMsgNotBound)
}
