package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Argument errors reported by NewNATS, Publish and Consume.
var (
	ErrNATSSubjectRequired = errors.New("messaging: nats subject is required")
	ErrNATSURLRequired     = errors.New("messaging: nats url is required")
	ErrNATSHandlerRequired = errors.New("messaging: nats handler is required")
)

// NATSConfig configures the NATS client. Options are forwarded to
// nats.Connect as given.
type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS implements Messaging over core NATS subjects.
type NATS struct {
	conn *nats.Conn

	mu     sync.Mutex
	subs   []*nats.Subscription
	closed bool
}

// NewNATS connects to the server and returns a NATS messaging client.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// Close drains every subscription and then the connection itself.
func (c *NATS) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := append([]*nats.Subscription{}, c.subs...)
	c.mu.Unlock()

	var closeErr error
	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			closeErr = errors.Join(closeErr, err)
		}
	}

	if err := c.conn.Drain(); err != nil {
		closeErr = errors.Join(closeErr, err)
	}
	c.conn.Close()
	return closeErr
}

// Publish sends a message to a NATS subject. Core NATS cannot defer
// delivery, so a non-zero Delay yields ErrUnsupported.
func (c *NATS) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrNATSSubjectRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	nmsg := nats.NewMsg(destination)
	nmsg.Data = msg.Body

	for _, h := range msg.Headers {
		if h.Key == "" {
			continue
		}
		nmsg.Header.Add(h.Key, string(h.Value))
	}

	if err := c.conn.PublishMsg(nmsg); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats publish: %w", err)
	}
	if err := c.conn.Flush(); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats flush: %w", err)
	}

	return PublishResult{
		Topic:     destination,
		Timestamp: time.Now(),
	}, nil
}

// Consume subscribes to a subject as a queue group and blocks until ctx
// is canceled. Messages are fanned out to WithConcurrency workers.
func (c *NATS) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := natsConsumeArgs(ctx, source, handler); err != nil {
		return err
	}

	co := newConsumeOptions(opts...)
	sub, wg, msgCh, err := c.subscribe(ctx, source, handler, co)
	if err != nil {
		return err
	}

	teardown := func() error {
		uerr := sub.Drain()
		close(msgCh)
		wg.Wait()
		return uerr
	}

	if err := c.track(sub); err != nil {
		return errors.Join(err, teardown())
	}

	if err := c.conn.Flush(); err != nil {
		ferr := fmt.Errorf("messaging: nats flush: %w", err)
		return errors.Join(ferr, teardown())
	}

	<-ctx.Done()
	return errors.Join(ctx.Err(), teardown())
}

func natsConsumeArgs(ctx context.Context, subject string, handler Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subject == "" {
		return ErrNATSSubjectRequired
	}
	if handler == nil {
		return ErrNATSHandlerRequired
	}
	return nil
}

func (c *NATS) track(sub *nats.Subscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return io.ErrClosedPipe
	}
	c.subs = append(c.subs, sub)
	return nil
}

func (c *NATS) subscribe(ctx context.Context, subject string, handler Handler, opts consumeOptions) (*nats.Subscription, *sync.WaitGroup, chan *nats.Msg, error) {
	queueGroup := opts.queueGroup
	if v, ok := opts.params["queue_group"]; ok && v != "" {
		queueGroup = v
	}

	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	autoAck := opts.autoAck

	msgCh := make(chan *nats.Msg, concurrency)
	var wg sync.WaitGroup

	sub, err := c.conn.QueueSubscribe(subject, queueGroup, func(m *nats.Msg) {
		select {
		case msgCh <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	for range concurrency {
		wg.Go(func() {
			for msg := range msgCh {
				dispatchNATS(ctx, msg, handler, autoAck)
			}
		})
	}

	return sub, &wg, msgCh, nil
}

func dispatchNATS(ctx context.Context, msg *nats.Msg, handler Handler, autoAck bool) {
	wrapped := newNATSMessage(msg, time.Now())
	herr := callHandlerWithRecover(ctx, "nats", func() error {
		return handler(ctx, wrapped)
	})

	if wrapped.hasResponded() || !autoAck {
		return
	}
	if herr == nil {
		//nolint:errcheck // core NATS acks are best effort
		_ = wrapped.Ack(ctx)
		return
	}
	//nolint:errcheck // core NATS acks are best effort
	_ = wrapped.Nack(ctx)
}
