package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

// Argument errors reported by NewNSQ, Publish and Consume.
var (
	ErrNSQTopicRequired         = errors.New("messaging: nsq topic is required")
	ErrNSQChannelRequired       = errors.New("messaging: nsq channel is required")
	ErrNSQHandlerRequired       = errors.New("messaging: nsq handler is required")
	ErrNSQProducerAddrRequired  = errors.New("messaging: nsq producer address is required")
	ErrNSQConsumerAddrsRequired = errors.New("messaging: nsq consumer nsqd/lookupd addresses are required")
)

// NSQConfig configures the NSQ client. ProducerAddr may be empty for a
// consume-only client.
type NSQConfig struct {
	ProducerAddr string

	// ConsumerNSQDAddrs connects consumers directly to nsqd instances.
	ConsumerNSQDAddrs []string
	// ConsumerLookupdAddrs discovers nsqd instances through lookupd and
	// takes precedence over direct addresses when set.
	ConsumerLookupdAddrs []string

	// ProducerConfig and ConsumerConfig override the go-nsq defaults.
	ProducerConfig *nsq.Config
	ConsumerConfig *nsq.Config
}

// NSQ implements Messaging on top of github.com/nsqio/go-nsq.
type NSQ struct {
	producer             *nsq.Producer
	consumerNSQDAddrs    []string
	consumerLookupdAddrs []string
	consumerConfig       *nsq.Config

	mu        sync.Mutex
	consumers []*nsq.Consumer
	closed    bool
}

// NewNSQ constructs an NSQ messaging client.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	producer, err := newNSQProducer(cfg)
	if err != nil {
		return nil, err
	}

	consumerCfg := cfg.ConsumerConfig
	if consumerCfg == nil {
		consumerCfg = nsq.NewConfig()
	}

	return &NSQ{
		producer:             producer,
		consumerNSQDAddrs:    append([]string{}, cfg.ConsumerNSQDAddrs...),
		consumerLookupdAddrs: append([]string{}, cfg.ConsumerLookupdAddrs...),
		consumerConfig:       consumerCfg,
	}, nil
}

// newNSQProducer returns nil when no producer address is configured,
// which makes the client consume-only.
func newNSQProducer(cfg NSQConfig) (*nsq.Producer, error) {
	if cfg.ProducerAddr == "" {
		return nil, nil
	}

	producerCfg := cfg.ProducerConfig
	if producerCfg == nil {
		producerCfg = nsq.NewConfig()
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, producerCfg)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)
	return p, nil
}

// Close stops all consumers, waits for them to drain, then stops the producer.
func (q *NSQ) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	consumers := append([]*nsq.Consumer{}, q.consumers...)
	q.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
		<-c.StopChan
	}

	if q.producer != nil {
		q.producer.Stop()
	}
	return nil
}

// Publish sends a message to an NSQ topic. Only Body and Delay are used;
// NSQ has no native headers or keys.
func (q *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrNSQTopicRequired
	}
	if q.producer == nil {
		return PublishResult{}, ErrNSQProducerAddrRequired
	}

	var err error
	if msg.Delay > 0 {
		err = q.producer.DeferredPublish(destination, msg.Delay, msg.Body)
	} else {
		err = q.producer.Publish(destination, msg.Body)
	}
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return PublishResult{
		Topic:     destination,
		Timestamp: time.Now(),
	}, nil
}

// Consume subscribes to an NSQ topic on the channel given by WithChannel
// and blocks until ctx is canceled or the consumer stops.
func (q *NSQ) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := q.consumeArgs(ctx, source, handler); err != nil {
		return err
	}

	co := newConsumeOptions(opts...)
	consumer, concurrency, autoAck, err := q.newConsumer(source, co)
	if err != nil {
		return err
	}

	consumer.AddConcurrentHandlers(q.handlerFunc(ctx, source, handler, autoAck), concurrency)

	if err := q.track(consumer); err != nil {
		stopNSQConsumer(consumer)
		return err
	}

	if err := q.connect(consumer); err != nil {
		stopNSQConsumer(consumer)
		return err
	}

	select {
	case <-ctx.Done():
		stopNSQConsumer(consumer)
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

func (q *NSQ) consumeArgs(ctx context.Context, topic string, handler Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrNSQTopicRequired
	}
	if handler == nil {
		return ErrNSQHandlerRequired
	}
	if len(q.consumerNSQDAddrs) == 0 && len(q.consumerLookupdAddrs) == 0 {
		return ErrNSQConsumerAddrsRequired
	}
	return nil
}

func (q *NSQ) newConsumer(topic string, opts consumeOptions) (*nsq.Consumer, int, bool, error) {
	if opts.channel == "" {
		return nil, 0, false, ErrNSQChannelRequired
	}

	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	autoAck := opts.autoAck
	if v, ok := opts.params["auto_ack"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			autoAck = b
		}
	}

	ccfg := *q.consumerConfig
	if opts.maxInFlight > 0 {
		ccfg.MaxInFlight = opts.maxInFlight
	} else if ccfg.MaxInFlight < concurrency {
		ccfg.MaxInFlight = concurrency
	}

	consumer, err := nsq.NewConsumer(topic, opts.channel, &ccfg)
	if err != nil {
		return nil, 0, false, fmt.Errorf("messaging: nsq new consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)

	return consumer, concurrency, autoAck, nil
}

func (q *NSQ) track(consumer *nsq.Consumer) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return io.ErrClosedPipe
	}
	q.consumers = append(q.consumers, consumer)
	return nil
}

func (q *NSQ) connect(consumer *nsq.Consumer) error {
	if len(q.consumerLookupdAddrs) > 0 {
		if err := consumer.ConnectToNSQLookupds(q.consumerLookupdAddrs); err != nil {
			return fmt.Errorf("messaging: nsq connect lookupd: %w", err)
		}
		return nil
	}

	if err := consumer.ConnectToNSQDs(q.consumerNSQDAddrs); err != nil {
		return fmt.Errorf("messaging: nsq connect nsqd: %w", err)
	}
	return nil
}

func (q *NSQ) handlerFunc(ctx context.Context, topic string, handler Handler, autoAck bool) nsq.HandlerFunc {
	return func(m *nsq.Message) error {
		// Responses go through the wrapper so the handler may ack or
		// requeue explicitly; auto response would race with that.
		m.DisableAutoResponse()

		wrapped := newNSQMessage(topic, m)
		herr := callHandlerWithRecover(ctx, "nsq", func() error {
			return handler(ctx, wrapped)
		})

		if wrapped.hasResponded() || !autoAck {
			return herr
		}

		if herr == nil {
			return wrapped.Ack(ctx)
		}
		return wrapped.Nack(ctx)
	}
}

func stopNSQConsumer(consumer *nsq.Consumer) {
	consumer.Stop()
	<-consumer.StopChan
}
