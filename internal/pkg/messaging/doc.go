// Package messaging abstracts message brokers behind a small publish and
// consume API.
//
// Application code depends on the Messaging interface only; the concrete
// broker (NSQ, NATS, Kafka or Google Pub/Sub) is chosen by configuration
// through NewFromDriver. Driver-specific knobs are expressed as consume
// options so call sites stay broker-neutral.
package messaging
