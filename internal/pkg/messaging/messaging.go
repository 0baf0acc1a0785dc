package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when the selected broker cannot perform the
// requested feature, such as deferred delivery.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// Messaging combines publishing and consuming behind one broker-agnostic
// client. Implementations exist for NSQ, NATS, Kafka and Google Pub/Sub.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic, subject or queue).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a source (topic, subscription or subject).
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one received message. A non-nil error carries no
// broker-level meaning on its own; acknowledgement behavior is governed by
// the consume options.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is the broker-agnostic shape of a message to publish.
// Fields that a broker does not model are ignored by its driver.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte

	// Key is the partitioning key for Kafka-style brokers.
	Key []byte

	// Headers carry binary values and allow duplicate keys.
	Headers []Header

	// Attributes map to string attributes on brokers that have them (Pub/Sub).
	Attributes map[string]string

	// OrderingKey is honored by Google Pub/Sub.
	OrderingKey string

	// Delay defers delivery on brokers that support it.
	Delay time.Duration

	// Metadata passes broker-specific publish settings through untyped.
	Metadata map[string]any
}

// Header is a single message header.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult reports whatever publish metadata the broker exposes.
// Unused fields stay zero.
type PublishResult struct {
	// MessageID is the broker-assigned message ID.
	MessageID string

	// Topic, Partition and Offset describe where Kafka-style brokers wrote
	// the message.
	Topic     string
	Partition int32
	Offset    int64

	// Sequence is reported by NATS JetStream publishes.
	Sequence uint64

	// Timestamp is when the broker accepted the message.
	Timestamp time.Time

	// Raw holds the underlying driver result when one exists.
	Raw any
}

// Message is a received message. Accessors for concepts a broker lacks
// return zero values.
type Message interface {
	Body() []byte
	Key() []byte
	Headers() []Header
	Attributes() map[string]string

	ID() string
	Topic() string
	Subject() string
	Timestamp() time.Time

	// Ack marks the message as successfully processed.
	Ack(ctx context.Context) error
}

// Nackable is implemented by messages that can request redelivery.
type Nackable interface {
	Nack(ctx context.Context) error
}

// Extendable is implemented by messages whose ack deadline can be extended.
type Extendable interface {
	Extend(ctx context.Context, d time.Duration) error
}

// MetadataCarrier exposes driver-level delivery details such as attempt
// counts or delivery tags.
type MetadataCarrier interface {
	Metadata() map[string]any
}

// RawCarrier exposes the underlying driver message.
type RawCarrier interface {
	Raw() any
}
