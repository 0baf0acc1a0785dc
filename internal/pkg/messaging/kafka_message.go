package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// kafkaMessage adapts a fetched kafka.Message to the Message interface.
// Ack commits the offset; Nack is a no-op because Kafka has no negative
// acknowledgement, the uncommitted offset is simply refetched later.
type kafkaMessage struct {
	reader *kafka.Reader
	msg    kafka.Message

	ackOnce
}

func newKafkaMessage(reader *kafka.Reader, msg kafka.Message) *kafkaMessage {
	return &kafkaMessage{reader: reader, msg: msg}
}

func (k *kafkaMessage) Body() []byte { return k.msg.Value }

func (k *kafkaMessage) Key() []byte { return k.msg.Key }

func (k *kafkaMessage) Headers() []Header {
	if len(k.msg.Headers) == 0 {
		return nil
	}

	headers := make([]Header, 0, len(k.msg.Headers))
	for _, h := range k.msg.Headers {
		headers = append(headers, Header{Key: h.Key, Value: h.Value})
	}
	return headers
}

// Attributes flattens the headers, keeping the first value per key.
func (k *kafkaMessage) Attributes() map[string]string {
	if len(k.msg.Headers) == 0 {
		return nil
	}

	attrs := make(map[string]string, len(k.msg.Headers))
	for _, h := range k.msg.Headers {
		if _, seen := attrs[h.Key]; !seen {
			attrs[h.Key] = string(h.Value)
		}
	}
	return attrs
}

func (k *kafkaMessage) ID() string {
	return fmt.Sprintf("%s/%d/%d", k.msg.Topic, k.msg.Partition, k.msg.Offset)
}

func (k *kafkaMessage) Topic() string { return k.msg.Topic }

func (k *kafkaMessage) Subject() string { return "" }

func (k *kafkaMessage) Timestamp() time.Time { return k.msg.Time }

func (k *kafkaMessage) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if k.markResponded() {
		return nil
	}
	return k.reader.CommitMessages(ctx, k.msg)
}

func (k *kafkaMessage) Nack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k.markResponded()
	return nil
}

func (k *kafkaMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrUnsupported
}

func (k *kafkaMessage) Metadata() map[string]any {
	return map[string]any{
		"topic":     k.msg.Topic,
		"partition": k.msg.Partition,
		"offset":    k.msg.Offset,
	}
}

func (k *kafkaMessage) Raw() any { return k.msg }
