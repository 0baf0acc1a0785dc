package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

// Argument errors reported by NewPubSub, Publish and Consume.
var (
	ErrPubSubProjectIDRequired    = errors.New("messaging: pubsub project id is required")
	ErrPubSubClientRequired       = errors.New("messaging: pubsub client is required")
	ErrPubSubTopicRequired        = errors.New("messaging: pubsub topic is required")
	ErrPubSubSubscriptionRequired = errors.New("messaging: pubsub subscription is required")
	ErrPubSubHandlerRequired      = errors.New("messaging: pubsub handler is required")
)

// PubSubConfig configures the Google Pub/Sub client. Either an existing
// Client or a ProjectID must be provided.
type PubSubConfig struct {
	ProjectID string

	// Client, when set, is used as is and ProjectID is ignored.
	Client *pubsub.Client
	// ClientOptions apply when a new client is created.
	ClientOptions []option.ClientOption
}

// PubSub implements Messaging on top of cloud.google.com/go/pubsub.
// Publishers are created lazily, one per topic, and reused.
type PubSub struct {
	client *pubsub.Client

	mu         sync.Mutex
	closed     bool
	publishers map[string]*pubsub.Publisher
}

// NewPubSub constructs a Pub/Sub messaging client.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.Client != nil {
		return &PubSub{client: cfg.Client, publishers: map[string]*pubsub.Publisher{}}, nil
	}
	if cfg.ProjectID == "" {
		return nil, ErrPubSubProjectIDRequired
	}

	c, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub new client: %w", err)
	}

	return &PubSub{client: c, publishers: map[string]*pubsub.Publisher{}}, nil
}

// Close stops every publisher and closes the underlying client.
func (p *PubSub) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	stopping := make([]*pubsub.Publisher, 0, len(p.publishers))
	for _, pub := range p.publishers {
		stopping = append(stopping, pub)
	}
	p.publishers = nil
	p.mu.Unlock()

	for _, pub := range stopping {
		pub.Stop()
	}

	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Publish sends a message to a Pub/Sub topic and waits for the server to
// assign an ID. Pub/Sub has no deferred delivery, so a non-zero Delay
// yields ErrUnsupported.
func (p *PubSub) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrPubSubTopicRequired
	}
	if err := p.ensureOpen(); err != nil {
		return PublishResult{}, err
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	result := p.publisherFor(destination).Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  msg.Attributes,
		OrderingKey: msg.OrderingKey,
	})
	id, err := result.Get(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish: %w", err)
	}

	return PublishResult{
		MessageID: id,
		Topic:     destination,
	}, nil
}

// Consume receives messages from a Pub/Sub subscription and blocks until
// ctx is canceled. When WithSubscription is set, source is treated as the
// topic name and the option names the subscription; otherwise source is
// the subscription itself.
func (p *PubSub) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := p.consumeArgs(ctx, source, handler); err != nil {
		return err
	}

	co := newConsumeOptions(opts...)
	topic, subscription := "", source
	if name, ok := pubSubSubscription(co); ok {
		topic, subscription = source, name
	}

	sub := p.client.Subscriber(subscription)
	if co.concurrency > 0 {
		sub.ReceiveSettings.NumGoroutines = co.concurrency
	}
	if co.maxInFlight > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = co.maxInFlight
	}

	return sub.Receive(ctx, pubSubHandler(topic, subscription, handler, pubSubAutoAck(co)))
}

func (p *PubSub) consumeArgs(ctx context.Context, source string, handler Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrPubSubSubscriptionRequired
	}
	if handler == nil {
		return ErrPubSubHandlerRequired
	}
	return p.ensureOpen()
}

// publisherFor returns the cached publisher for a topic, creating it on
// first use.
func (p *PubSub) publisherFor(topic string) *pubsub.Publisher {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.publishers == nil {
		p.publishers = map[string]*pubsub.Publisher{}
	}
	if pub, ok := p.publishers[topic]; ok {
		return pub
	}
	pub := p.client.Publisher(topic)
	p.publishers[topic] = pub
	return pub
}

func (p *PubSub) ensureOpen() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return ErrPubSubClientRequired
	}
	if p.closed {
		return io.ErrClosedPipe
	}
	return nil
}

func pubSubAutoAck(opts consumeOptions) bool {
	if v, ok := opts.params["auto_ack"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return opts.autoAck
}

func pubSubSubscription(opts consumeOptions) (string, bool) {
	if opts.subscription != "" {
		return opts.subscription, true
	}
	if v, ok := opts.params["subscription"]; ok && v != "" {
		return v, true
	}
	return "", false
}

func pubSubHandler(topic, subscription string, handler Handler, autoAck bool) func(context.Context, *pubsub.Message) {
	return func(ctx context.Context, m *pubsub.Message) {
		wrapped := newPubSubMessage(topic, subscription, m)
		herr := callHandlerWithRecover(ctx, "pubsub", func() error {
			return handler(ctx, wrapped)
		})

		if wrapped.hasResponded() || !autoAck {
			return
		}

		if herr == nil {
			//nolint:errcheck // ack outcome is reflected in redelivery
			_ = wrapped.Ack(ctx)
			return
		}
		//nolint:errcheck // nack outcome is reflected in redelivery
		_ = wrapped.Nack(ctx)
	}
}
