// Package messaging publishes domain events to a message broker.
//
// Business code depends on Publisher only; the concrete broker (Kafka, NATS,
// NSQ, Google Pub/Sub or the logging noop) is picked by NewFromDriver from
// configuration.
package messaging
