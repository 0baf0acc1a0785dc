package messaging

// consumeOptions collects the knobs shared by every consumer driver.
// Each driver reads only the fields that map onto its broker: group is
// the Kafka consumer group, channel the NSQ channel, queueGroup the
// NATS queue group, and subscription the Google Pub/Sub subscription ID.
type consumeOptions struct {
	concurrency  int
	autoAck      bool
	group        string
	channel      string
	queueGroup   string
	subscription string
	maxInFlight  int
	params       map[string]string
}

// ConsumeOption adjusts how Consume runs for a single subscription.
type ConsumeOption func(*consumeOptions)

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	var co consumeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	return co
}

// WithConcurrency sets how many handler goroutines process messages in parallel.
func WithConcurrency(n int) ConsumeOption {
	return func(co *consumeOptions) { co.concurrency = n }
}

// WithGroup sets the consumer group name (Kafka).
func WithGroup(name string) ConsumeOption {
	return func(co *consumeOptions) { co.group = name }
}

// WithChannel sets the channel name (NSQ).
func WithChannel(name string) ConsumeOption {
	return func(co *consumeOptions) { co.channel = name }
}

// WithQueueGroup sets the queue group name (NATS).
func WithQueueGroup(name string) ConsumeOption {
	return func(co *consumeOptions) { co.queueGroup = name }
}

// WithSubscription sets the subscription ID (Google Pub/Sub).
func WithSubscription(id string) ConsumeOption {
	return func(co *consumeOptions) { co.subscription = id }
}

// WithAutoAck controls whether the driver acks or nacks automatically once
// the handler returns.
func WithAutoAck(autoAck bool) ConsumeOption {
	return func(co *consumeOptions) { co.autoAck = autoAck }
}

// WithMaxInFlight limits the number of unacknowledged messages in flight.
func WithMaxInFlight(n int) ConsumeOption {
	return func(co *consumeOptions) { co.maxInFlight = n }
}

// WithParam sets a single driver-specific parameter by name.
func WithParam(key, value string) ConsumeOption {
	return func(co *consumeOptions) {
		if key == "" {
			return
		}
		if co.params == nil {
			co.params = make(map[string]string, 1)
		}
		co.params[key] = value
	}
}
