package messaging

import (
	"context"
	"time"

	"cloud.google.com/go/pubsub/v2"
)

// pubSubMessage adapts *pubsub.Message to the Message interface. The
// client library extends ack deadlines on its own, so Extend reports
// ErrUnsupported.
type pubSubMessage struct {
	topic        string
	subscription string
	msg          *pubsub.Message

	ackOnce
}

func newPubSubMessage(topic, subscription string, msg *pubsub.Message) *pubSubMessage {
	return &pubSubMessage{topic: topic, subscription: subscription, msg: msg}
}

func (p *pubSubMessage) Body() []byte { return p.msg.Data }

func (p *pubSubMessage) Key() []byte { return nil }

func (p *pubSubMessage) Headers() []Header { return nil }

func (p *pubSubMessage) Attributes() map[string]string { return p.msg.Attributes }

func (p *pubSubMessage) ID() string { return p.msg.ID }

func (p *pubSubMessage) Topic() string { return p.topic }

func (p *pubSubMessage) Subject() string { return "" }

func (p *pubSubMessage) Timestamp() time.Time { return p.msg.PublishTime }

func (p *pubSubMessage) Ack(ctx context.Context) error {
	return p.respond(ctx, p.msg.Ack)
}

func (p *pubSubMessage) Nack(ctx context.Context) error {
	return p.respond(ctx, p.msg.Nack)
}

// respond applies the first Ack or Nack and ignores the rest.
func (p *pubSubMessage) respond(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.markResponded() {
		fn()
	}
	return nil
}

func (p *pubSubMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrUnsupported
}

func (p *pubSubMessage) Metadata() map[string]any {
	meta := map[string]any{
		"topic":        p.topic,
		"subscription": p.subscription,
		"ordering_key": p.msg.OrderingKey,
	}
	if p.msg.DeliveryAttempt != nil {
		meta["delivery_attempt"] = *p.msg.DeliveryAttempt
	}
	return meta
}

func (p *pubSubMessage) Raw() any { return p.msg }
