package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Argument errors reported by NewKafka, Publish and Consume.
var (
	ErrKafkaTopicRequired   = errors.New("messaging: kafka topic is required")
	ErrKafkaHandlerRequired = errors.New("messaging: kafka handler is required")
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
	ErrKafkaGroupRequired   = errors.New("messaging: kafka consumer group is required")
)

const kafkaDefaultMaxBytes = 10e6

// KafkaConfig configures the Kafka client. WriterConfig and
// ReaderConfig override the kafka-go defaults; topic, group and broker
// fields are still filled in per publish or consume.
type KafkaConfig struct {
	Brokers      []string
	Dialer       *kafka.Dialer
	WriterConfig *kafka.WriterConfig
	ReaderConfig *kafka.ReaderConfig
}

// Kafka implements Messaging on top of github.com/segmentio/kafka-go.
// Writers are created lazily, one per topic, and reused across publishes.
type Kafka struct {
	brokers []string
	dialer  *kafka.Dialer

	writerConfig *kafka.WriterConfig
	readerConfig *kafka.ReaderConfig

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers []*kafka.Reader
	closed  bool
}

// NewKafka constructs a Kafka messaging client.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	return &Kafka{
		brokers:      append([]string{}, cfg.Brokers...),
		dialer:       cfg.Dialer,
		writerConfig: cfg.WriterConfig,
		readerConfig: cfg.ReaderConfig,
		writers:      map[string]*kafka.Writer{},
	}, nil
}

// Close shuts down every reader and writer this client created.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true

	var closables []io.Closer
	for _, w := range k.writers {
		closables = append(closables, w)
	}
	for _, r := range k.readers {
		closables = append(closables, r)
	}
	k.writers = nil
	k.readers = nil
	k.mu.Unlock()

	var closeErr error
	for _, c := range closables {
		closeErr = errors.Join(closeErr, c.Close())
	}
	return closeErr
}

// Publish writes a message to a Kafka topic. Delayed delivery is not a
// Kafka concept, so a non-zero Delay yields ErrUnsupported.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrKafkaTopicRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}
	if err := k.ensureOpen(); err != nil {
		return PublishResult{}, err
	}

	record := kafka.Message{
		Key:   msg.Key,
		Value: msg.Body,
		Time:  time.Now(),
	}
	for _, h := range msg.Headers {
		if h.Key == "" {
			continue
		}
		record.Headers = append(record.Headers, kafka.Header{Key: h.Key, Value: h.Value})
	}

	if err := k.writerFor(destination).WriteMessages(ctx, record); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: kafka publish: %w", err)
	}

	return PublishResult{
		Topic:     destination,
		Timestamp: record.Time,
	}, nil
}

// Consume reads a topic as part of the consumer group given by WithGroup
// and blocks until ctx is canceled or a worker fails.
func (k *Kafka) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	co := newConsumeOptions(opts...)
	if err := kafkaConsumeArgs(ctx, source, handler, co); err != nil {
		return err
	}
	if err := k.ensureOpen(); err != nil {
		return err
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader := k.readerFor(source, co)
	if err := k.trackReader(reader); err != nil {
		return errors.Join(err, reader.Close())
	}

	concurrency := co.concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	messages := make(chan kafka.Message)
	failure := make(chan error, 1)

	go fetchKafka(consumeCtx, reader, messages, failure)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for range concurrency {
		go func() {
			defer wg.Done()
			for m := range messages {
				if err := dispatchKafka(consumeCtx, reader, m, handler, co.autoAck); err != nil {
					reportErr(failure, err)
					cancel()
					return
				}
			}
		}()
	}

	waitErr := awaitKafka(ctx, failure, &wg)
	k.untrackReader(reader)
	if closeErr := reader.Close(); closeErr != nil {
		return errors.Join(waitErr, closeErr)
	}
	return waitErr
}

func (k *Kafka) ensureOpen() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return io.ErrClosedPipe
	}
	return nil
}

// writerFor returns the cached writer for a topic, creating it on first use.
func (k *Kafka) writerFor(topic string) *kafka.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writers == nil {
		k.writers = map[string]*kafka.Writer{}
	}
	if w, ok := k.writers[topic]; ok {
		return w
	}

	w := kafka.NewWriter(k.writerConfigFor(topic))
	k.writers[topic] = w
	return w
}

func (k *Kafka) writerConfigFor(topic string) kafka.WriterConfig {
	if k.writerConfig == nil {
		return kafka.WriterConfig{
			Brokers:  k.brokers,
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
			Dialer:   k.dialer,
		}
	}

	cfg := *k.writerConfig
	cfg.Topic = topic
	if len(cfg.Brokers) == 0 {
		cfg.Brokers = k.brokers
	}
	if cfg.Dialer == nil {
		cfg.Dialer = k.dialer
	}
	if cfg.Balancer == nil {
		cfg.Balancer = &kafka.LeastBytes{}
	}
	return cfg
}

func (k *Kafka) readerFor(topic string, opts consumeOptions) *kafka.Reader {
	if k.readerConfig == nil {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:  k.brokers,
			GroupID:  opts.group,
			Topic:    topic,
			MaxBytes: kafkaDefaultMaxBytes,
			Dialer:   k.dialer,
		})
	}

	cfg := *k.readerConfig
	cfg.Topic = topic
	cfg.GroupID = opts.group
	if len(cfg.Brokers) == 0 {
		cfg.Brokers = k.brokers
	}
	if cfg.Dialer == nil {
		cfg.Dialer = k.dialer
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = kafkaDefaultMaxBytes
	}
	return kafka.NewReader(cfg)
}

func (k *Kafka) trackReader(reader *kafka.Reader) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return io.ErrClosedPipe
	}
	k.readers = append(k.readers, reader)
	return nil
}

func (k *Kafka) untrackReader(reader *kafka.Reader) {
	if reader == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	for i := range k.readers {
		if k.readers[i] == reader {
			k.readers = append(k.readers[:i], k.readers[i+1:]...)
			return
		}
	}
}

func kafkaConsumeArgs(ctx context.Context, topic string, handler Handler, opts consumeOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrKafkaTopicRequired
	}
	if handler == nil {
		return ErrKafkaHandlerRequired
	}
	if opts.group == "" {
		return ErrKafkaGroupRequired
	}
	return nil
}

// dispatchKafka runs the handler for one fetched message and commits or
// requeues it when the handler did not respond itself.
func dispatchKafka(ctx context.Context, reader *kafka.Reader, m kafka.Message, handler Handler, autoAck bool) error {
	wrapped := newKafkaMessage(reader, m)
	herr := callHandlerWithRecover(ctx, "kafka", func() error {
		return handler(ctx, wrapped)
	})

	if wrapped.hasResponded() || !autoAck {
		return nil
	}

	if herr == nil {
		return wrapped.Ack(ctx)
	}
	return wrapped.Nack(ctx)
}

// reportErr records the first error without blocking; the channel has
// capacity one and only the first failure matters.
func reportErr(ch chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case ch <- err:
	default:
	}
}

func fetchKafka(ctx context.Context, reader *kafka.Reader, messages chan<- kafka.Message, failure chan<- error) {
	defer close(messages)

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			reportErr(failure, err)
			return
		}

		select {
		case messages <- m:
		case <-ctx.Done():
			reportErr(failure, ctx.Err())
			return
		}
	}
}

func awaitKafka(ctx context.Context, failure <-chan error, wg *sync.WaitGroup) error {
	select {
	case err := <-failure:
		wg.Wait()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("messaging: kafka consume: %w", err)
	case <-ctx.Done():
		wg.Wait()
		return ctx.Err()
	}
}
